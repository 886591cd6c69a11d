package config

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/joho/godotenv"
)

// EnvHome overrides the runtime data directory.
const EnvHome = "HUNTOVERLAY_HOME"

const appDirName = "HuntOverlay"

// LoadEnv reads optional KEY=VALUE pairs from the given .env files into the process env.
// Missing files are ignored; variables already set win.
func LoadEnv(files ...string) {
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		_ = godotenv.Load(f)
	}
}

// ResolveDataDir returns the folder holding the dataset, styles and user settings.
// Order: HUNTOVERLAY_HOME, paths.data_dir, %LOCALAPPDATA%\HuntOverlay (Windows), the user config dir, then ./data.
func (c *Config) ResolveDataDir() string {
	if home := os.Getenv(EnvHome); home != "" {
		return home
	}
	if c.Paths.DataDir != "" {
		return c.Paths.DataDir
	}
	if runtime.GOOS == "windows" {
		if local := os.Getenv("LOCALAPPDATA"); local != "" {
			return filepath.Join(local, appDirName)
		}
	}
	if dir, err := os.UserConfigDir(); err == nil && dir != "" {
		return filepath.Join(dir, appDirName)
	}
	return filepath.Join(".", "data")
}

// DataFile joins a file name onto the data dir unless it is already absolute.
func (c *Config) DataFile(dataDir, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dataDir, name)
}
