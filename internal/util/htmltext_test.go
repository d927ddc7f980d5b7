package util

import "testing"

func TestExtractText(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"<p>Hello <b>world</b></p>", "Hello world"},
		{"plain text", "plain text"},
		{"<div>a</div><div>b</div>", "a b"},
		{"<script>var x = 1;</script>visible", "visible"},
		{"  spaced\n\tout  ", "spaced out"},
		{"", ""},
	}
	for _, c := range cases {
		if got := ExtractText(c.in); got != c.want {
			t.Errorf("ExtractText(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestTruncateText(t *testing.T) {
	if got := TruncateText("short", 10); got != "short" {
		t.Errorf("got %q", got)
	}
	if got := TruncateText("hello world", 5); got != "hello..." {
		t.Errorf("got %q", got)
	}
	if got := TruncateText("anything", 0); got != "" {
		t.Errorf("got %q", got)
	}
}
