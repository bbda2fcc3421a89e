package ui

import (
	"strings"
	"testing"
)

func TestRender_Color(t *testing.T) {
	noColor = false
	t.Cleanup(func() { noColor = false })

	for name, fn := range map[string]func(string) string{
		"accent":  RenderAccent,
		"muted":   RenderMuted,
		"success": RenderSuccess,
		"failure": RenderFailure,
	} {
		got := fn("x")
		if !strings.HasPrefix(got, "\x1b[38;5;") || !strings.HasSuffix(got, "x\x1b[0m") {
			t.Errorf("%s: %q is not an ANSI256 sequence", name, got)
		}
	}

	ForceNoColor()
	if got := RenderSuccess("x"); got != "x" {
		t.Errorf("RenderSuccess with no color = %q, want plain", got)
	}
}

func TestShouldUseColor_NoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	t.Setenv("CLICOLOR_FORCE", "1")
	if ShouldUseColor() {
		t.Error("NO_COLOR must win over CLICOLOR_FORCE")
	}
}

func TestShouldUseColor_Force(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	t.Setenv("CLICOLOR_FORCE", "1")
	if !ShouldUseColor() {
		t.Error("CLICOLOR_FORCE=1 should enable color")
	}
}
