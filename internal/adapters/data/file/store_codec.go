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

package file

import (
	"fmt"
	"time"

	"github.com/Adembc/sshdock/internal/core/domain"
)

// StoreVersion is the newest store layout this build reads and writes.
const StoreVersion = 1

// The record types mirror the YAML layout. Each carries an inline Extra map so
// keys written by a newer build survive a load/save cycle.

type storeDocument struct {
	Version  int             `yaml:"version"`
	Settings settingsRecord  `yaml:"settings"`
	Profiles []profileRecord `yaml:"profiles"`
	Extra    map[string]any  `yaml:",inline"`
}

type settingsRecord struct {
	KeySearchPaths []string       `yaml:"key_search_paths,omitempty"`
	DefaultPort    int            `yaml:"default_port,omitempty"`
	Theme          string         `yaml:"theme,omitempty"`
	SSHCommand     string         `yaml:"ssh_command,omitempty"`
	Extra          map[string]any `yaml:",inline"`
}

type authRecord struct {
	Method  string         `yaml:"method"`
	KeyPath string         `yaml:"key_path,omitempty"`
	Extra   map[string]any `yaml:",inline"`
}

type profileRecord struct {
	ID              string         `yaml:"id"`
	Name            string         `yaml:"name"`
	Host            string         `yaml:"host"`
	Port            int            `yaml:"port"`
	User            string         `yaml:"user"`
	Auth            authRecord     `yaml:"auth"`
	PasswordRef     string         `yaml:"password_ref,omitempty"`
	CreatedAt       time.Time      `yaml:"created_at"`
	UpdatedAt       time.Time      `yaml:"updated_at"`
	LastConnectedAt *time.Time     `yaml:"last_connected_at,omitempty"`
	ConnectCount    int            `yaml:"connect_count,omitempty"`
	Extra           map[string]any `yaml:",inline"`
}

// unknownFields keeps what this build does not interpret, keyed by profile id.
type unknownFields struct {
	document map[string]any
	settings map[string]any
	profiles map[string]map[string]any
	auth     map[string]map[string]any
}

func newUnknownFields() unknownFields {
	return unknownFields{
		profiles: make(map[string]map[string]any),
		auth:     make(map[string]map[string]any),
	}
}

func settingsFromRecord(r settingsRecord) domain.Settings {
	return domain.Settings{
		KeySearchPaths: append([]string(nil), r.KeySearchPaths...),
		DefaultPort:    r.DefaultPort,
		Theme:          r.Theme,
		SSHCommand:     r.SSHCommand,
	}.WithDefaults()
}

func settingsToRecord(s domain.Settings, extra map[string]any) settingsRecord {
	return settingsRecord{
		KeySearchPaths: append([]string(nil), s.KeySearchPaths...),
		DefaultPort:    s.DefaultPort,
		Theme:          s.Theme,
		SSHCommand:     s.SSHCommand,
		Extra:          extra,
	}
}

func profileFromRecord(r profileRecord) (domain.Profile, error) {
	var auth domain.Auth
	switch domain.AuthKind(r.Auth.Method) {
	case domain.AuthPassword:
		auth = domain.PasswordAuth()
	case domain.AuthAutoKey:
		auth = domain.AutoKeyAuth()
	case domain.AuthKeyFile:
		if r.Auth.KeyPath == "" {
			return domain.Profile{}, fmt.Errorf("profile %q: key_file auth without key_path", r.Name)
		}
		auth = domain.KeyFileAuth(r.Auth.KeyPath)
	default:
		return domain.Profile{}, fmt.Errorf("profile %q: unknown auth method %q", r.Name, r.Auth.Method)
	}

	port := r.Port
	if port == 0 {
		port = domain.DefaultPort
	}
	if port < domain.MinPort || port > domain.MaxPort {
		return domain.Profile{}, fmt.Errorf("profile %q: port %d out of range", r.Name, r.Port)
	}

	p := domain.Profile{
		ID:           r.ID,
		Name:         r.Name,
		Host:         r.Host,
		Port:         port,
		User:         r.User,
		Auth:         auth,
		PasswordRef:  r.PasswordRef,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
		ConnectCount: r.ConnectCount,
	}
	if r.LastConnectedAt != nil {
		p.LastConnectedAt = *r.LastConnectedAt
	}
	if err := domain.ValidateProfile(p); err != nil {
		return domain.Profile{}, fmt.Errorf("profile %q: %w", r.Name, err)
	}
	return p, nil
}

func profileToRecord(p domain.Profile, extra, authExtra map[string]any) profileRecord {
	r := profileRecord{
		ID:   p.ID,
		Name: p.Name,
		Host: p.Host,
		Port: p.Port,
		User: p.User,
		Auth: authRecord{
			Method:  string(p.Auth.Kind),
			KeyPath: p.Auth.KeyPath,
			Extra:   authExtra,
		},
		PasswordRef:  p.PasswordRef,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
		ConnectCount: p.ConnectCount,
		Extra:        extra,
	}
	if !p.LastConnectedAt.IsZero() {
		t := p.LastConnectedAt
		r.LastConnectedAt = &t
	}
	return r
}
