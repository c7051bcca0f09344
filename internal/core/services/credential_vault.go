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

package services

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/Adembc/sshdock/internal/core/domain"
	"github.com/Adembc/sshdock/internal/core/ports"
)

// keyPreference is the fixed order in which conventional key names are tried.
var keyPreference = []string{
	"id_ed25519",
	"id_ed25519_sk",
	"id_ecdsa",
	"id_ecdsa_sk",
	"id_rsa",
	"id_dsa",
}

// ignoredKeyFilePrefixes are files in a key directory that are never private keys.
var ignoredKeyFilePrefixes = []string{"known_hosts", "authorized_keys", "config", "environment"}

type credentialVault struct {
	fileSystem ports.FileSystem
	logger     *zap.SugaredLogger
	settings   func() domain.Settings
	expandHome func(string) string
	getenv     func(string) string

	mu    sync.Mutex
	cache map[string]string
}

// NewCredentialVault resolves auth against the key directories returned by settings.
// It never writes to disk; remembered passwords live only in process memory.
func NewCredentialVault(
	logger *zap.SugaredLogger,
	fileSystem ports.FileSystem,
	config ports.ConfigProvider,
	settings func() domain.Settings,
) *credentialVault {
	return &credentialVault{
		fileSystem: fileSystem,
		logger:     logger,
		settings:   settings,
		expandHome: config.ExpandHome,
		getenv:     os.Getenv,
		cache:      make(map[string]string),
	}
}

func (v *credentialVault) ResolveAuth(p domain.Profile) (domain.ResolvedAuth, error) {
	switch p.Auth.Kind {
	case domain.AuthKeyFile:
		path := v.expandHome(p.Auth.KeyPath)
		if err := v.checkReadable(path); err != nil {
			v.logger.Warnw("key file unreadable", "profile", p.ID, "path", path, "error", err)
			return domain.ResolvedAuth{}, domain.WrapError(err, domain.KindKeyUnreadable,
				fmt.Sprintf("key file %s is not readable", p.Auth.KeyPath))
		}
		return domain.ResolvedAuth{Kind: domain.AuthKeyFile, KeyPath: path}, nil

	case domain.AuthAutoKey:
		path, err := v.discoverKey()
		if err != nil {
			v.logger.Warnw("no key discovered", "profile", p.ID, "error", err)
			return domain.ResolvedAuth{}, err
		}
		v.logger.Debugw("key discovered", "profile", p.ID, "path", path)
		return domain.ResolvedAuth{Kind: domain.AuthAutoKey, KeyPath: path}, nil

	case domain.AuthPassword:
		return domain.ResolvedAuth{
			Kind:           domain.AuthPassword,
			PromptRequired: true,
			Password:       v.lookupPassword(p),
		}, nil
	}
	return domain.ResolvedAuth{}, domain.NewError(domain.KindValidation,
		fmt.Sprintf("profile %q has no auth method", p.Name))
}

// Remember caches a password for the rest of the process lifetime.
func (v *credentialVault) Remember(profileID, password string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if password == "" {
		delete(v.cache, profileID)
		return
	}
	v.cache[profileID] = password
}

func (v *credentialVault) Forget(profileID string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.cache, profileID)
}

// Clear drops every cached password.
func (v *credentialVault) Clear() {
	v.mu.Lock()
	defer v.mu.Unlock()
	for id := range v.cache {
		delete(v.cache, id)
	}
}

func (v *credentialVault) lookupPassword(p domain.Profile) string {
	v.mu.Lock()
	cached := v.cache[p.ID]
	v.mu.Unlock()
	if cached != "" {
		return cached
	}
	if p.PasswordRef == "" {
		return ""
	}

	scheme, rest, _ := strings.Cut(p.PasswordRef, ":")
	switch scheme {
	case "env":
		return v.getenv(rest)
	case "file":
		data, err := v.fileSystem.ReadFile(v.expandHome(rest))
		if err != nil {
			v.logger.Warnw("password reference unreadable", "profile", p.ID, "error", err)
			return ""
		}
		return strings.TrimRight(string(data), "\r\n")
	}
	return ""
}

// KeyCandidates lists private keys in discovery order. A KeySearchPaths entry is
// either a directory to scan or a single key file.
func (v *credentialVault) KeyCandidates() []string {
	var candidates []string
	seen := make(map[string]bool)
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			candidates = append(candidates, path)
		}
	}

	for _, entry := range v.settings().KeySearchPaths {
		path := v.expandHome(entry)
		info, err := v.fileSystem.Stat(path)
		if err != nil {
			if !v.fileSystem.IsNotExist(err) {
				v.logger.Debugw("cannot stat key search path", "path", path, "error", err)
			}
			continue
		}
		if !info.IsDir() {
			add(path)
			continue
		}

		entries, err := v.fileSystem.ReadDir(path)
		if err != nil {
			v.logger.Debugw("cannot scan key directory", "dir", path, "error", err)
			continue
		}
		var names []string
		for _, e := range entries {
			if isCandidateKey(e) {
				names = append(names, e.Name())
			}
		}
		sortKeyNames(names)
		for _, name := range names {
			add(filepath.Join(path, name))
		}
	}
	return candidates
}

// discoverKey returns the first readable key candidate.
func (v *credentialVault) discoverKey() (string, error) {
	for _, path := range v.KeyCandidates() {
		if err := v.checkReadable(path); err == nil {
			return path, nil
		}
	}
	return "", domain.NewError(domain.KindNoKeyFound,
		fmt.Sprintf("no private key found in %s", strings.Join(v.settings().KeySearchPaths, ", ")))
}

func (v *credentialVault) checkReadable(path string) error {
	info, err := v.fileSystem.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	f, err := v.fileSystem.Open(path)
	if err != nil {
		return err
	}
	return f.Close()
}

func isCandidateKey(entry fs.DirEntry) bool {
	if entry.IsDir() {
		return false
	}
	if !entry.Type().IsRegular() && entry.Type()&fs.ModeSymlink == 0 {
		return false
	}
	name := entry.Name()
	if strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".pub") {
		return false
	}
	for _, prefix := range ignoredKeyFilePrefixes {
		if strings.HasPrefix(name, prefix) {
			return false
		}
	}
	return true
}

// sortKeyNames orders names by the fixed preference list, then by key type hint, then by name.
func sortKeyNames(names []string) {
	sort.SliceStable(names, func(i, j int) bool {
		ri, rj := keyRank(names[i]), keyRank(names[j])
		if ri != rj {
			return ri < rj
		}
		return names[i] < names[j]
	})
}

func keyRank(name string) int {
	for i, preferred := range keyPreference {
		if name == preferred {
			return i
		}
	}
	base := len(keyPreference)
	switch {
	case strings.Contains(name, "ed25519"):
		return base
	case strings.Contains(name, "ecdsa"):
		return base + 1
	case strings.Contains(name, "rsa"):
		return base + 2
	default:
		return base + 3
	}
}
