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
	"net"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// AuthKind tags the single active authentication method of a profile.
type AuthKind string

const (
	AuthPassword AuthKind = "password"
	AuthKeyFile  AuthKind = "key_file"
	AuthAutoKey  AuthKind = "auto_key"
)

// Auth is the tagged authentication method. KeyPath is only meaningful for AuthKeyFile.
type Auth struct {
	Kind    AuthKind
	KeyPath string
}

func PasswordAuth() Auth        { return Auth{Kind: AuthPassword} }
func AutoKeyAuth() Auth         { return Auth{Kind: AuthAutoKey} }
func KeyFileAuth(p string) Auth { return Auth{Kind: AuthKeyFile, KeyPath: p} }

func (a Auth) String() string {
	switch a.Kind {
	case AuthPassword:
		return "password"
	case AuthKeyFile:
		return "key " + a.KeyPath
	case AuthAutoKey:
		return "auto-discovered key"
	default:
		return "unknown"
	}
}

const (
	DefaultPort = 22
	MinPort     = 1
	MaxPort     = 65535
)

type Profile struct {
	ID   string
	Name string
	Host string
	Port int
	User string
	Auth Auth
	// PasswordRef points at a secret outside the store ("env:NAME" or "file:/path").
	// The password itself is never stored.
	PasswordRef string

	CreatedAt time.Time
	UpdatedAt time.Time

	LastConnectedAt time.Time
	ConnectCount    int
}

// Address returns host:port suitable for dialing.
func (p Profile) Address() string {
	port := p.Port
	if port == 0 {
		port = DefaultPort
	}
	return net.JoinHostPort(p.Host, strconv.Itoa(port))
}

// Destination returns user@host, or just host when no user is set.
func (p Profile) Destination() string {
	if p.User == "" {
		return p.Host
	}
	return p.User + "@" + p.Host
}

var (
	hostnamePattern = regexp.MustCompile(`^[A-Za-z0-9.-]+$`)
	userPattern     = regexp.MustCompile(`^[A-Za-z0-9._@\\-]+$`)
)

// ValidateProfile checks the invariants every stored profile must hold.
// All field problems are reported together.
func ValidateProfile(p Profile) error {
	var fields []FieldError
	add := func(field, msg string) { fields = append(fields, FieldError{Field: field, Message: msg}) }

	if strings.TrimSpace(p.Name) == "" {
		add(FieldName, "name is required")
	}
	if msg := validateHost(p.Host); msg != "" {
		add(FieldHost, msg)
	}
	if p.Port < MinPort || p.Port > MaxPort {
		add(FieldPort, fmt.Sprintf("port must be a number between %d and %d", MinPort, MaxPort))
	}
	switch {
	case strings.TrimSpace(p.User) == "":
		add(FieldUser, "user is required")
	case !userPattern.MatchString(p.User):
		add(FieldUser, "user contains invalid characters")
	case strings.HasPrefix(p.User, "-"):
		// ssh would read it as an option.
		add(FieldUser, "user must not start with a hyphen")
	}
	switch p.Auth.Kind {
	case AuthPassword, AuthAutoKey:
		if p.Auth.KeyPath != "" {
			add(FieldKeyPath, "key path is only used with key file auth")
		}
	case AuthKeyFile:
		if strings.TrimSpace(p.Auth.KeyPath) == "" {
			add(FieldKeyPath, "key path is required for key file auth")
		}
	default:
		add(FieldAuth, "choose exactly one auth method")
	}
	if p.PasswordRef != "" && !ValidPasswordRef(p.PasswordRef) {
		add(FieldPasswordRef, `password reference must look like "env:NAME" or "file:/path"`)
	}

	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

func validateHost(host string) string {
	if strings.TrimSpace(host) == "" {
		return "host is required"
	}
	if ip := net.ParseIP(host); ip != nil {
		return ""
	}
	if strings.Contains(host, " ") {
		return "host must not contain spaces"
	}
	if !hostnamePattern.MatchString(host) {
		return "host contains invalid characters"
	}
	if strings.HasPrefix(host, ".") || strings.HasSuffix(host, ".") {
		return "host must not start or end with a dot"
	}
	for _, lbl := range strings.Split(host, ".") {
		if lbl == "" {
			return "host must not contain empty labels"
		}
		if strings.HasPrefix(lbl, "-") || strings.HasSuffix(lbl, "-") {
			return "hostname labels must not start or end with a hyphen"
		}
	}
	return ""
}

// ValidPasswordRef reports whether ref uses a supported scheme.
func ValidPasswordRef(ref string) bool {
	scheme, rest, ok := strings.Cut(ref, ":")
	if !ok || strings.TrimSpace(rest) == "" {
		return false
	}
	return scheme == "env" || scheme == "file"
}
