package markdown

import (
	"strings"
	"testing"

	"github.com/muesli/reflow/ansi"
)

func TestRenderBlank(t *testing.T) {
	for _, in := range []string{"", "\n\n", "   "} {
		if out := Render(40, in); out != "" {
			t.Errorf("Render(%q) = %q, want empty", in, out)
		}
	}
}

func TestRenderWraps(t *testing.T) {
	in := strings.Repeat("pack the winter coats before moving day ", 6)
	out := Render(30, in)
	if !strings.Contains(out, "winter") {
		t.Fatalf("rendered output lost text: %q", out)
	}
	for _, line := range strings.Split(out, "\n") {
		if w := ansi.PrintableRuneWidth(line); w > 30 {
			t.Errorf("line %q is %d columns wide", line, w)
		}
	}
}

func TestRenderList(t *testing.T) {
	out := Render(40, "- milk\n- eggs")
	if !strings.Contains(out, "- milk") || !strings.Contains(out, "- eggs") {
		t.Errorf("unexpected list rendering:\n%s", out)
	}
}

func TestRendererCached(t *testing.T) {
	if renderer(50) != renderer(50) {
		t.Error("expected the renderer for a width to be reused")
	}
}
