package main

import (
	"regexp"
	"strings"
	"testing"
)

var ansi = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func TestColorizeHelpOutput_PreservesText(t *testing.T) {
	help := `Usage:
  gate [flags]
  gate [command]

Client:
  open        Send one open request and print the log line
  events      List recent access events recorded by the backend

Flags:
      --endpoint string    open URL (overrides config; development only)
  -n, --limit int          maximum number of events (default "50")
`
	got := ansi.ReplaceAllString(colorizeHelpOutput(help), "")
	if got != help {
		t.Errorf("colorized help changed text:\n%s", got)
	}
}

func TestHelp_ListsGroups(t *testing.T) {
	out, err := execute(t, "--help")
	if err != nil {
		t.Fatalf("help: %v", err)
	}
	for _, want := range []string{"Client:", "System:", "open", "serve", "controller"} {
		if !strings.Contains(out, want) {
			t.Errorf("help missing %q:\n%s", want, out)
		}
	}
}
