//go:build windows

package platform

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

const registryRunKey = `HKCU\Software\Microsoft\Windows\CurrentVersion\Run`

func (service *platformService) EnableAutostart(appName, execPath string) error {
	if appName == "" {
		return fmt.Errorf("enable autostart: app name is empty")
	}
	if execPath == "" {
		return fmt.Errorf("enable autostart: exec path is empty")
	}

	output, err := runReg("add", registryRunKey, "/v", appName, "/t", "REG_SZ", "/d", quoteWindowsPath(execPath), "/f")
	if err != nil {
		return fmt.Errorf("enable autostart: reg add failed: %w: %s", err, output)
	}
	return nil
}

func (service *platformService) DisableAutostart(appName string) error {
	if appName == "" {
		return fmt.Errorf("disable autostart: app name is empty")
	}

	enabled, err := service.IsAutostartEnabled(appName)
	if err != nil || !enabled {
		return err
	}
	output, err := runReg("delete", registryRunKey, "/v", appName, "/f")
	if err != nil {
		return fmt.Errorf("disable autostart: reg delete failed: %w: %s", err, output)
	}
	return nil
}

func (service *platformService) IsAutostartEnabled(appName string) (bool, error) {
	if appName == "" {
		return false, fmt.Errorf("check autostart: app name is empty")
	}
	// reg query exits non-zero when the value is missing.
	if _, err := runReg("query", registryRunKey, "/v", appName); err != nil {
		if _, ok := err.(*exec.ExitError); ok {
			return false, nil
		}
		return false, fmt.Errorf("check autostart: %w", err)
	}
	return true, nil
}

func runReg(args ...string) (string, error) {
	output, err := exec.Command("reg", args...).CombinedOutput()
	return strings.TrimSpace(string(output)), err
}

func fallbackConfigDir(homeDir string) string {
	return filepath.Join(homeDir, "AppData", "Roaming")
}

func quoteWindowsPath(execPath string) string {
	trimmed := strings.Trim(execPath, `"`)
	return fmt.Sprintf(`"%s"`, trimmed)
}
