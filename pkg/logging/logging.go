// Package logging configures the pterm printers and structured logger used by
// every command.
package logging

import (
	"io"
	"os"

	"github.com/pterm/pterm"
	"golang.org/x/term"
)

// Options select how diagnostics are written
type Options struct {
	Verbose bool
	JSON    bool
	NoColor bool
	Output  io.Writer
}

// Setup applies opts to pterm and returns the logger handed to the generator.
// Colors are disabled when requested or when stdout is not a terminal.
func Setup(opts Options) *pterm.Logger {
	if opts.NoColor || !isTerminal(os.Stdout) {
		pterm.DisableStyling()
	} else {
		pterm.EnableStyling()
	}

	level := pterm.LogLevelInfo
	if opts.Verbose {
		level = pterm.LogLevelDebug
		pterm.EnableDebugMessages()
	}

	logger := pterm.DefaultLogger.WithLevel(level)
	if opts.JSON {
		logger = logger.WithFormatter(pterm.LogFormatterJSON)
	}
	if opts.Output != nil {
		logger = logger.WithWriter(opts.Output)
	}
	return logger
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
