package report

import (
	"fmt"
	"os/exec"
	"runtime"
)

// launchViewer starts the platform file opener. Swapped out in tests.
var launchViewer = func(path string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", path)
	default:
		cmd = exec.Command("xdg-open", path)
	}
	return cmd.Start()
}

// openInViewer opens the written report in the default system viewer.
// Fire-and-forget: the viewer process is not waited on.
func openInViewer(path string) error {
	if err := launchViewer(path); err != nil {
		return fmt.Errorf("launching viewer: %w", err)
	}
	return nil
}
