package chromecapture

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/playwright-community/playwright-go"
)

// ChromePathEnv names the environment variable consulted for the browser.
const ChromePathEnv = "CHROME_PATH"

// ErrChromeNotFound is returned when no browser is available and automatic
// installation is disabled.
var ErrChromeNotFound = errors.New("chrome not found: install Chrome/Chromium, set CHROME_PATH, use --chrome-path, or pass --auto-install")

// ResolveChromePath resolves the Chrome executable path in the following order:
// 1. If explicitPath is non-empty, use it
// 2. If CHROME_PATH environment variable is set, use it
// 3. Fall back to system defaults (chromium → chrome order per platform)
func ResolveChromePath(explicitPath string) string {
	if explicitPath != "" {
		return explicitPath
	}

	if envPath := os.Getenv(ChromePathEnv); envPath != "" {
		return envPath
	}

	return findSystemChrome()
}

// InstallChromium downloads Chromium through Playwright and returns the
// path of its executable.
func InstallChromium() (string, error) {
	runOpts := &playwright.RunOptions{
		Browsers: []string{"chromium"},
		Verbose:  false,
	}
	if err := playwright.Install(runOpts); err != nil {
		return "", fmt.Errorf("install chromium: %w", err)
	}

	pw, err := playwright.Run(runOpts)
	if err != nil {
		return "", fmt.Errorf("start playwright: %w", err)
	}
	defer pw.Stop()

	path := pw.Chromium.ExecutablePath()
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("installed chromium missing at %s: %w", path, err)
	}
	return path, nil
}

// ResolveURL turns bare file paths into file:// URLs. Anything with a
// scheme is returned unchanged.
func ResolveURL(raw string) (string, error) {
	if u, err := url.Parse(raw); err == nil && len(u.Scheme) > 1 {
		return raw, nil
	}
	abs, err := filepath.Abs(raw)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", raw, err)
	}
	path := filepath.ToSlash(abs)
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return (&url.URL{Scheme: "file", Path: path}).String(), nil
}

// findSystemChrome searches for Chrome/Chromium in system default locations.
// It tries Chromium first, then Chrome, to prefer the more lightweight browser.
func findSystemChrome() string {
	var candidates []string

	switch runtime.GOOS {
	case "darwin":
		candidates = []string{
			"/Applications/Chromium.app/Contents/MacOS/Chromium",
			"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
			"/Applications/Google Chrome Canary.app/Contents/MacOS/Google Chrome Canary",
		}
	case "linux":
		candidates = []string{
			"chromium",
			"chromium-browser",
			"google-chrome-stable",
			"google-chrome",
		}
	case "windows":
		for _, env := range []string{"PROGRAMFILES", "PROGRAMFILES(X86)", "LOCALAPPDATA"} {
			base := os.Getenv(env)
			if base == "" {
				continue
			}
			candidates = append(candidates,
				base+"\\Chromium\\Application\\chrome.exe",
				base+"\\Google\\Chrome\\Application\\chrome.exe",
			)
		}
	}

	for _, candidate := range candidates {
		if path := resolveExecutable(candidate); path != "" {
			return path
		}
	}

	return ""
}

// resolveExecutable checks if the given path/name exists as an executable.
// For full paths, it checks if the file exists.
// For command names, it uses exec.LookPath.
func resolveExecutable(nameOrPath string) string {
	if filepath.IsAbs(nameOrPath) || (len(nameOrPath) > 1 && nameOrPath[1] == ':') {
		if _, err := os.Stat(nameOrPath); err == nil {
			return nameOrPath
		}
		return ""
	}

	if path, err := exec.LookPath(nameOrPath); err == nil {
		return path
	}

	return ""
}
