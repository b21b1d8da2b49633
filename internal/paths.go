package internal

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetHomeDir returns the directory instances are created under, from
// environment or the current user's home
func GetHomeDir() string {
	if dir := os.Getenv("GAIANET_DEPLOY_HOME"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

// InstanceDir returns the base directory for instance i (1-based)
func InstanceDir(home string, i int) string {
	return filepath.Join(home, fmt.Sprintf("gaianet%d", i))
}

// ShellRCPath returns the interactive shell startup file PATH entries are
// appended to
func ShellRCPath(home string) string {
	return filepath.Join(home, ".bashrc")
}

// DefaultConfigPath returns the default deploy config file location
func DefaultConfigPath(home string) string {
	return filepath.Join(home, ".gaianet-deploy.yaml")
}
