// Package browser opens URLs in the user's default browser.
package browser

import (
	"fmt"
	"os/exec"
	"runtime"
)

// commandFor returns the platform launcher invocation for a URL.
func commandFor(goos, url string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{url}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}
	default:
		return "xdg-open", []string{url}
	}
}

// Open launches the default browser on url. It does not wait for the
// browser to exit.
func Open(url string) error {
	program, args := commandFor(runtime.GOOS, url)
	if _, err := exec.LookPath(program); err != nil {
		return fmt.Errorf("no browser launcher available: %w", err)
	}
	if err := exec.Command(program, args...).Start(); err != nil {
		return fmt.Errorf("opening browser: %w", err)
	}
	return nil
}
