package web

import (
	"os/exec"
	"runtime"

	"github.com/pterm/pterm"
)

// browserCommand returns the command that opens url in the default browser
func browserCommand(goos, url string) *exec.Cmd {
	switch goos {
	case "linux", "freebsd", "openbsd":
		return exec.Command("xdg-open", url)
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	case "darwin":
		return exec.Command("open", url)
	}
	return nil
}

// openBrowser tries to open the default browser with the given URL
func openBrowser(url string) {
	cmd := browserCommand(runtime.GOOS, url)
	if cmd == nil {
		return
	}
	// The server keeps running; the user can navigate to the URL manually
	if err := cmd.Start(); err != nil {
		pterm.Debug.Printf("Could not open browser: %v\n", err)
	}
}
