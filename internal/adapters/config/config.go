// Copyright 2025.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// AppDirName is the directory created under the user config dir.
const AppDirName = "sshdock"

type OSConfig struct {
	homeDir   string
	configDir string
}

// NewOSConfig resolves the config directory. An empty configDir selects
// os.UserConfigDir()/sshdock; a leading ~/ is expanded.
func NewOSConfig(configDir string) (*OSConfig, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("cannot determine home directory: %w", err)
	}
	c := &OSConfig{homeDir: home}

	if configDir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			base = filepath.Join(home, ".config")
		}
		configDir = filepath.Join(base, AppDirName)
	}
	c.configDir = filepath.Clean(c.ExpandHome(configDir))
	return c, nil
}

func (c *OSConfig) HomeDir() string {
	return c.homeDir
}

func (c *OSConfig) ConfigDir() string {
	return c.configDir
}

func (c *OSConfig) ConfigPath(elems ...string) string {
	return filepath.Join(c.configDir, filepath.Join(elems...))
}

func (c *OSConfig) LogPath(filename string) string {
	return c.ConfigPath("logs", filename)
}

// StorePath is where profiles and settings are kept.
func (c *OSConfig) StorePath() string {
	return c.ConfigPath("store.yaml")
}

// KnownHostsPath is the user's OpenSSH known_hosts file.
func (c *OSConfig) KnownHostsPath() string {
	return filepath.Join(c.homeDir, ".ssh", "known_hosts")
}

// ExpandHome replaces a leading ~ with the home directory.
func (c *OSConfig) ExpandHome(path string) string {
	switch {
	case path == "~":
		return c.homeDir
	case strings.HasPrefix(path, "~/"):
		return filepath.Join(c.homeDir, path[2:])
	}
	return path
}

// EnsureDirs creates the config and log directories with owner-only permissions.
func (c *OSConfig) EnsureDirs() error {
	for _, dir := range []string{c.configDir, c.ConfigPath("logs")} {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}
