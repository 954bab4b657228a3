package htmlutil

import "testing"

func TestStripTags(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "<p>Hello <b>world</b></p>", "Hello world"},
		{"entities", "Tom &amp; Jerry", "Tom & Jerry"},
		{"empty", "", ""},
		{"whitespace collapse", "<div>a</div>\n\n<div>b</div>", "a b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripTags(tt.in); got != tt.want {
				t.Errorf("StripTags(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTitle(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"title tag", "<html><title>Alice - LeetCode Profile</title></html>", "Alice - LeetCode Profile"},
		{"h1 fallback", "<body><h1>Alice</h1></body>", "Alice"},
		{"none", "<body><p>nothing</p></body>", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Title(tt.in); got != tt.want {
				t.Errorf("Title() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOGImage(t *testing.T) {
	htmlContent := `<meta property="og:image" content="https://example.com/avatar.png"/>`
	if got := OGImage(htmlContent); got != "https://example.com/avatar.png" {
		t.Errorf("OGImage() = %q", got)
	}

	reversed := `<meta content="https://example.com/alt.png" property="og:image"/>`
	if got := OGImage(reversed); got != "https://example.com/alt.png" {
		t.Errorf("OGImage() reversed order = %q", got)
	}
}

func TestIsNotFound(t *testing.T) {
	if !IsNotFound("<h1>404 Not Found</h1>") {
		t.Error("IsNotFound() = false for 404 page")
	}
	if IsNotFound("<h1>Welcome back</h1>") {
		t.Error("IsNotFound() = true for normal page")
	}
}

func TestBraceJSON(t *testing.T) {
	tests := []struct {
		name   string
		s      string
		marker string
		want   string
	}{
		{
			"next data blob",
			`window.x = 1; <script id="__NEXT_DATA__">{"props":{"a":1}}</script>`,
			"__NEXT_DATA__",
			`{"props":{"a":1}}`,
		},
		{
			"nested objects",
			`prefix {"a":{"b":{"c":3}},"d":4} suffix`,
			"",
			`{"a":{"b":{"c":3}},"d":4}`,
		},
		{
			"braces inside strings",
			`{"msg":"a { tricky } value","n":1}`,
			"",
			`{"msg":"a { tricky } value","n":1}`,
		},
		{
			"escaped quote in string",
			`{"msg":"quote \" and { brace","n":2}`,
			"",
			`{"msg":"quote \" and { brace","n":2}`,
		},
		{"marker missing", `{"a":1}`, "__NOPE__", ""},
		{"unbalanced", `{"a":{"b":1}`, "", ""},
		{"no object", "plain text", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BraceJSON(tt.s, tt.marker); got != tt.want {
				t.Errorf("BraceJSON() = %q, want %q", got, tt.want)
			}
		})
	}
}
