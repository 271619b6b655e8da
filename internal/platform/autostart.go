package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Service defines OS-specific helpers needed by the application.
type Service interface {
	GetConfigDir() (string, error)
	EnableAutostart(appName, execPath string) error
	DisableAutostart(appName string) error
	IsAutostartEnabled(appName string) (bool, error)
}

type platformService struct{}

// NewService returns a platform-specific implementation.
func NewService() Service {
	return &platformService{}
}

// GetConfigDir returns the OS-standard configuration directory.
func (service *platformService) GetConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err == nil && configDir != "" {
		return configDir, nil
	}

	homeDir, homeErr := os.UserHomeDir()
	if homeErr != nil {
		if err != nil {
			return "", fmt.Errorf("get config dir: %w", err)
		}
		return "", fmt.Errorf("get config dir: %w", homeErr)
	}

	return fallbackConfigDir(homeDir), nil
}

// AppConfigDir returns the per-application directory holding settings.yaml.
func AppConfigDir(service Service, appName string) (string, error) {
	base, err := service.GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, appName), nil
}

// Autostarter binds the launch-at-login toggle to this executable.
type Autostarter struct {
	service  Service
	appName  string
	execPath string
}

// NewAutostarter resolves the running executable for autostart entries.
func NewAutostarter(service Service, appName string) (*Autostarter, error) {
	execPath, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("resolve executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(execPath); err == nil {
		execPath = resolved
	}
	return &Autostarter{service: service, appName: appName, execPath: execPath}, nil
}

// SetAutostart registers or removes the login entry.
func (autostarter *Autostarter) SetAutostart(enabled bool) error {
	if enabled {
		return autostarter.service.EnableAutostart(autostarter.appName, autostarter.execPath)
	}
	return autostarter.service.DisableAutostart(autostarter.appName)
}

// Enabled reports whether the login entry exists.
func (autostarter *Autostarter) Enabled() (bool, error) {
	return autostarter.service.IsAutostartEnabled(autostarter.appName)
}

// entrySlug turns an app name into a file-name friendly identifier.
func entrySlug(appName string) string {
	name := strings.TrimSpace(appName)
	if name == "" {
		name = "eyedoro"
	}
	name = strings.ToLower(name)
	return strings.ReplaceAll(name, " ", "-")
}
