// Package auth resolves LeetCode session cookies from the environment or from
// local browser cookie stores.
//
// Cookies are optional: the GraphQL strategy works unauthenticated for public
// profiles, but a real session noticeably improves its hit rate. Absence of
// cookies is never an error.
package auth

import (
	"context"
	"log/slog"
	"os"

	"github.com/browserutils/kooky"
	_ "github.com/browserutils/kooky/browser/all" // register all browser cookie stores
)

const cookieDomain = "leetcode.com"

// envVars maps environment variable names to cookie names.
var envVars = map[string]string{
	"LEETCODE_SESSION":   "LEETCODE_SESSION",
	"LEETCODE_CSRFTOKEN": "csrftoken",
}

// essentialCookies are the cookie names worth forwarding to leetcode.com.
var essentialCookies = []string{"LEETCODE_SESSION", "csrftoken"}

// Cookies returns LeetCode cookies from environment variables, falling back to
// browser cookie stores when readBrowser is set. Returns nil when none are
// available.
func Cookies(ctx context.Context, readBrowser bool, logger *slog.Logger) map[string]string {
	if logger == nil {
		logger = slog.Default()
	}

	if cookies := fromEnv(); len(cookies) > 0 {
		logger.DebugContext(ctx, "using leetcode cookies from environment", "count", len(cookies))
		return cookies
	}

	if !readBrowser {
		return nil
	}
	return fromBrowser(ctx, logger)
}

func fromEnv() map[string]string {
	cookies := make(map[string]string)
	for envVar, cookieName := range envVars {
		if value := os.Getenv(envVar); value != "" {
			cookies[cookieName] = value
		}
	}
	if len(cookies) == 0 {
		return nil
	}
	return cookies
}

func fromBrowser(ctx context.Context, logger *slog.Logger) map[string]string {
	kookies, err := kooky.ReadCookies(ctx, kooky.Valid, kooky.DomainHasSuffix(cookieDomain))
	if err != nil {
		logger.DebugContext(ctx, "failed to read browser cookies", "error", err)
		return nil
	}

	cookies := make(map[string]string)
	for _, k := range kookies {
		for _, name := range essentialCookies {
			if k.Name == name && k.Value != "" {
				cookies[name] = k.Value
			}
		}
	}
	if len(cookies) == 0 {
		return nil
	}

	logger.DebugContext(ctx, "found leetcode cookies in browser store", "count", len(cookies))
	return cookies
}
