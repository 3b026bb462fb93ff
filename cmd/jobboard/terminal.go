package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/jobhub/jobboard/internal/core/domain"
)

// terminalNavigator reports redirects instead of rendering pages.
type terminalNavigator struct {
	out  io.Writer
	last string
}

func (n *terminalNavigator) Navigate(to string, state domain.NavState) {
	n.last = to
	if state.Message != "" {
		fmt.Fprintf(n.out, "→ %s (%s)\n", to, state.Message)
		return
	}
	fmt.Fprintf(n.out, "→ %s\n", to)
}

// terminalAlerter prints pushed notifications when attached to a TTY.
type terminalAlerter struct {
	out       io.Writer
	permitted bool
}

func newTerminalAlerter(out io.Writer) *terminalAlerter {
	permitted := false
	if f, ok := out.(*os.File); ok {
		permitted = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &terminalAlerter{out: out, permitted: permitted}
}

func (a *terminalAlerter) Permitted() bool {
	return a.permitted
}

func (a *terminalAlerter) Alert(_ context.Context, n domain.Notification) {
	fmt.Fprintf(a.out, "\a🔔 %s: %s\n", n.Title, n.Message)
}

func printNotification(out io.Writer, n domain.Notification) {
	mark := " "
	if !n.Read {
		mark = "•"
	}
	fmt.Fprintf(out, "%s %s  %-8s %s\n", mark, n.ID, n.Type, n.Message)
}
