package main

import (
	"errors"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/gate/internal/gate"
	"github.com/alfredjeanlab/gate/internal/logging"
	"github.com/alfredjeanlab/gate/internal/logstore"
	"github.com/alfredjeanlab/gate/internal/ui"
)

var screenCmd = &cobra.Command{
	Use:     "screen",
	Short:   "Interactive screen: an open button above the attempt log",
	GroupID: "client",
	Args:    cobra.NoArgs,
	RunE:    runScreen,
}

func runScreen(cmd *cobra.Command, args []string) error {
	// Diagnostics would corrupt the alternate screen.
	quiet := logging.Discard()
	slog.SetDefault(quiet)

	c := gate.NewClient(clientEndpoint())
	store := logstore.New()
	opener := gate.NewOpener(c, store).WithLogger(quiet)

	screen, release := ui.NewScreen(cmd.Context(), opener, store, c.Endpoint())
	defer release()

	if err := screen.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}
