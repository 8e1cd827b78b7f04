package shared

import (
	"fmt"
	"os/exec"
	"runtime"
)

var getRuntime = func() string { return runtime.GOOS }

// launchers maps a GOOS value to the command that hands a URL to the desktop.
var launchers = map[string][]string{
	"darwin":  {"open"},
	"linux":   {"xdg-open"},
	"freebsd": {"xdg-open"},
	"windows": {"rundll32", "url.dll,FileProtocolHandler"},
}

// browserCommand builds the launcher for link on the current platform.
func browserCommand(link string) (*exec.Cmd, error) {
	rt := getRuntime()
	launcher, ok := launchers[rt]
	if !ok {
		return nil, fmt.Errorf("%w: cannot open a browser on %s", ErrNotImplemented, rt)
	}
	args := append(launcher[1:len(launcher):len(launcher)], link)
	return exec.Command(launcher[0], args...), nil
}

// OpenBrowser opens link in the default browser without waiting for it to exit.
func OpenBrowser(link string) error {
	cmd, err := browserCommand(link)
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return nil
}
