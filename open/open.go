// Package open hands locators to the system's default handler: the browser for
// http links, the torrent client for magnet links.
package open

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/cinesrc/cinesrc/constant"
)

// ErrUnsupportedScheme is returned for locators no system handler should receive.
var ErrUnsupportedScheme = errors.New("unsupported locator scheme")

var schemes = []string{"http", "https", "magnet"}

// Check reports whether locator may be handed to the system.
func Check(locator string) error {
	u, err := url.Parse(locator)
	if err != nil {
		return err
	}

	for _, s := range schemes {
		if strings.EqualFold(u.Scheme, s) {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
}

// Start opens locator without waiting for the handler to exit.
func Start(locator string) error {
	cmd, err := command(locator)
	if err != nil {
		return err
	}
	return cmd.Start()
}

// Run opens locator and waits for the handler to exit.
func Run(locator string) error {
	cmd, err := command(locator)
	if err != nil {
		return err
	}
	return cmd.Run()
}

func command(locator string) (*exec.Cmd, error) {
	if err := Check(locator); err != nil {
		return nil, err
	}

	name, args, ok := launcher(runtime.GOOS, locator)
	if !ok {
		return nil, fmt.Errorf("unsupported OS: %s", runtime.GOOS)
	}
	return exec.Command(name, args...), nil
}

func launcher(goos, locator string) (name string, args []string, ok bool) {
	switch goos {
	case constant.Windows:
		// rundll32 would cut magnet links at the first '&'.
		if strings.HasPrefix(strings.ToLower(locator), "magnet:") {
			return "cmd", []string{"/C", "start", "", strings.ReplaceAll(locator, "&", "^&")}, true
		}
		rundll := filepath.Join(os.Getenv("SYSTEMROOT"), "System32", "rundll32.exe")
		return rundll, []string{"url.dll,FileProtocolHandler", locator}, true
	case constant.Darwin:
		return "open", []string{locator}, true
	case constant.Linux:
		return "xdg-open", []string{locator}, true
	case constant.Android:
		return "termux-open", []string{locator}, true
	default:
		return "", nil, false
	}
}
