package ui

import (
	"os/exec"
	"runtime"

	"github.com/go-pkgz/lgr"
)

// openInBrowser launches the system browser for a link, best effort
func openInBrowser(url string) {
	if url == "" {
		return
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}

	if err := cmd.Start(); err != nil {
		lgr.Printf("[WARN] can't open browser for %s: %v", url, err)
	}
}
