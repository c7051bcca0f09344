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

package domain

import (
	"fmt"
	"strings"
)

// Theme names understood by the UI.
const (
	ThemeDefault = "default"
	ThemeDark    = "dark"
	ThemeLight   = "light"
)

var Themes = []string{ThemeDefault, ThemeDark, ThemeLight}

const DefaultSSHCommand = "ssh"

// Settings is the process-wide configuration persisted next to the profiles.
type Settings struct {
	// KeySearchPaths are directories scanned for auto-discovered keys, in order.
	KeySearchPaths []string
	DefaultPort    int
	Theme          string
	SSHCommand     string
}

// DefaultSettings returns the settings used when the store has none.
func DefaultSettings() Settings {
	return Settings{
		KeySearchPaths: []string{"~/.ssh"},
		DefaultPort:    DefaultPort,
		Theme:          ThemeDefault,
		SSHCommand:     DefaultSSHCommand,
	}
}

// WithDefaults fills zero values from DefaultSettings.
func (s Settings) WithDefaults() Settings {
	d := DefaultSettings()
	if len(s.KeySearchPaths) == 0 {
		s.KeySearchPaths = d.KeySearchPaths
	}
	if s.DefaultPort == 0 {
		s.DefaultPort = d.DefaultPort
	}
	if s.Theme == "" {
		s.Theme = d.Theme
	}
	if s.SSHCommand == "" {
		s.SSHCommand = d.SSHCommand
	}
	return s
}

func ValidateSettings(s Settings) error {
	var fields []FieldError
	if len(s.KeySearchPaths) == 0 {
		fields = append(fields, FieldError{Field: FieldKeySearchPaths, Message: "at least one key directory is required"})
	}
	for _, p := range s.KeySearchPaths {
		if strings.TrimSpace(p) == "" {
			fields = append(fields, FieldError{Field: FieldKeySearchPaths, Message: "key directories must not be empty"})
			break
		}
	}
	if s.DefaultPort < MinPort || s.DefaultPort > MaxPort {
		fields = append(fields, FieldError{
			Field:   FieldDefaultPort,
			Message: fmt.Sprintf("default port must be between %d and %d", MinPort, MaxPort),
		})
	}
	known := false
	for _, t := range Themes {
		if t == s.Theme {
			known = true
		}
	}
	if !known {
		fields = append(fields, FieldError{Field: FieldTheme, Message: "unknown theme " + s.Theme})
	}
	if strings.TrimSpace(s.SSHCommand) == "" || strings.ContainsAny(s.SSHCommand, " \t") {
		fields = append(fields, FieldError{Field: FieldSSHCommand, Message: "ssh command must be a single executable name or path"})
	}
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}
