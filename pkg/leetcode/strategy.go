package leetcode

import (
	"context"
	"errors"
	"time"

	"github.com/codeGROOVE-dev/statpath/pkg/report"
)

// rawData is a decoded upstream payload in whatever shape the source used.
// normalize reconciles the shapes; extract never sees a raw payload directly.
type rawData = map[string]any

// strategy is one acquisition technique in the cascade. attempt returns the
// decoded payload or an error; valid decides whether the extracted report is
// good enough to short-circuit the remaining strategies.
type strategy interface {
	name() string
	timeout() time.Duration
	attempt(ctx context.Context, username string) (rawData, error)
	valid(rpt *report.LeetCode) bool
}

const (
	browserTimeout  = 30 * time.Second
	graphqlTimeout  = 15 * time.Second
	statsAPITimeout = 15 * time.Second
	htmlTimeout     = 15 * time.Second
	mirrorTimeout   = 40 * time.Second
	perMirror       = 10 * time.Second
)

var errNoUser = errors.New("no matched user in response")
