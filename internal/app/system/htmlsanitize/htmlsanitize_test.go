package htmlsanitize_test

import (
	"strings"
	"testing"

	"github.com/dalemusser/slothstore/internal/app/system/htmlsanitize"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"plain text", "Soft cotton tee", "Soft cotton tee"},
		{"safe formatting", "<p><strong>Bold</strong> and <em>italic</em></p>", "<p><strong>Bold</strong> and <em>italic</em></p>"},
		{"lists", "<ul><li>Cotton</li><li>Linen</li></ul>", "<ul><li>Cotton</li><li>Linen</li></ul>"},
		{"removes script", "<p>Hello</p><script>alert('xss')</script>", "<p>Hello</p>"},
		{"table", "<table><tbody><tr><td>S</td></tr></tbody></table>", "<table><tbody><tr><td>S</td></tr></tbody></table>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := htmlsanitize.Sanitize(tt.input); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitize_RemovesDangerousAttributes(t *testing.T) {
	for _, input := range []string{
		`<button onclick="alert('xss')">Click</button>`,
		`<a href="javascript:alert('xss')">Click</a>`,
		`<p>Content</p><iframe src="https://evil.com"></iframe>`,
		`<style>body { color: red; }</style><p>Text</p>`,
	} {
		got := htmlsanitize.Sanitize(input)
		for _, bad := range []string{"onclick", "javascript:", "iframe", "<style>"} {
			if strings.Contains(got, bad) {
				t.Errorf("Sanitize(%q) = %q still contains %q", input, got, bad)
			}
		}
	}
}

func TestSanitize_KeepsTableClass(t *testing.T) {
	got := htmlsanitize.Sanitize(`<table class="sizes"><tr><td class="c">M</td></tr></table>`)
	if !strings.Contains(got, `class="sizes"`) {
		t.Errorf("expected class attribute preserved, got %q", got)
	}
}

func TestStripTags(t *testing.T) {
	if got := htmlsanitize.StripTags("  <b>Sloth</b> Hoodie "); got != "Sloth Hoodie" {
		t.Errorf("StripTags = %q", got)
	}
}

func TestIsPlainText(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"Hello, World!", true},
		{"<p>Hello</p>", false},
		{"5 < 6", true},
	}
	for _, tt := range tests {
		if got := htmlsanitize.IsPlainText(tt.input); got != tt.want {
			t.Errorf("IsPlainText(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
