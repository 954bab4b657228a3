package leetcode

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/codeGROOVE-dev/statpath/pkg/report"
)

// chromeBinaries are the executable names probed for headless operation.
var chromeBinaries = []string{
	"google-chrome",
	"google-chrome-stable",
	"chromium",
	"chromium-browser",
	"chrome",
	"headless-shell",
}

// browserAvailable reports whether a Chrome binary is on PATH. Probed once;
// the capability does not change while the process runs.
var browserAvailable = sync.OnceValue(func() bool {
	for _, bin := range chromeBinaries {
		if _, err := exec.LookPath(bin); err == nil {
			return true
		}
	}
	return false
})

// browserStrategy drives a headless Chrome to the profile page and intercepts
// the GraphQL responses the page requests for itself. This sidesteps bot
// detection that blocks direct GraphQL calls, at the cost of a real browser.
type browserStrategy struct {
	c *Client
}

func (*browserStrategy) name() string           { return "browser" }
func (*browserStrategy) timeout() time.Duration { return browserTimeout }

func (*browserStrategy) valid(rpt *report.LeetCode) bool { return rpt.HasStats() }

func (s *browserStrategy) attempt(ctx context.Context, username string) (rawData, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	actx, acancel := chromedp.NewExecAllocator(ctx, opts...)
	defer acancel()

	bctx, bcancel := chromedp.NewContext(actx)
	defer bcancel()

	var mu sync.Mutex
	captured := make(map[string]any)

	chromedp.ListenTarget(bctx, func(ev any) {
		resp, ok := ev.(*network.EventResponseReceived)
		if !ok || !strings.Contains(resp.Response.URL, "graphql") {
			return
		}
		requestID := resp.RequestID
		go func() {
			body, err := network.GetResponseBody(requestID).Do(
				cdp.WithExecutor(bctx, chromedp.FromContext(bctx).Target))
			if err != nil {
				return
			}
			var payload struct {
				Data map[string]any `json:"data"`
			}
			if json.Unmarshal(body, &payload) != nil || len(payload.Data) == 0 {
				return
			}
			mu.Lock()
			maps.Copy(captured, payload.Data)
			mu.Unlock()
		}()
	})

	err := chromedp.Run(bctx,
		network.Enable(),
		chromedp.Navigate("https://leetcode.com/"+username+"/"),
		chromedp.WaitReady("body"),
		chromedp.Sleep(3*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("browser navigation: %w", err)
	}

	mu.Lock()
	data := make(map[string]any, len(captured))
	maps.Copy(data, captured)
	mu.Unlock()

	if len(data) > 0 {
		raw := rawData{"data": data}
		if normalize(raw)["matchedUser"] != nil {
			return raw, nil
		}
	}

	// No usable GraphQL traffic; fall back to the page's own state blob.
	var state map[string]any
	err = chromedp.Run(bctx,
		chromedp.Evaluate(`window.__NEXT_DATA__ || window.__INITIAL_DATA__ || null`, &state),
	)
	if err != nil {
		return nil, fmt.Errorf("read page state: %w", err)
	}
	if raw := dehydratedUser(state); raw != nil {
		return raw, nil
	}
	return nil, errNoUser
}
