package system

import (
	"context"
	"fmt"
	"os"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	m := tui.NewModel(ctx.Session, ctx.Habits, ctx.Poller)
	p := tea.NewProgram(m, tea.WithAltScreen())

	pollCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctx.Poller.SetOnUpdateRequired(func(serverVersion string) {
		p.Send(tui.UpdateRequiredMsg{ServerVersion: serverVersion})
	})
	go ctx.Poller.Run(pollCtx)

	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("tui exited: %w", err)
	}
	cancel()

	if fm, ok := final.(tui.Model); ok && fm.ReloadRequested() {
		return reload(ctx)
	}
	return nil
}

// reload replaces the process with a fresh copy of the binary so the
// updated client is picked up
func reload(ctx *cli.Context) error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to locate executable: %w", err)
	}
	logger.Info("reloading client", "exe", exe)
	if err := ctx.Close(); err != nil {
		logger.Warn("failed to close storage before reload", "err", err)
	}
	return syscall.Exec(exe, os.Args, os.Environ())
}
