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
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Adembc/sshdock/internal/adapters/data/file"
	"github.com/Adembc/sshdock/internal/core/domain"
)

type fakeConfig struct {
	home string
}

func (c fakeConfig) HomeDir() string                   { return c.home }
func (c fakeConfig) ConfigDir() string                 { return filepath.Join(c.home, ".config", "sshdock") }
func (c fakeConfig) ConfigPath(elems ...string) string { return filepath.Join(append([]string{c.ConfigDir()}, elems...)...) }
func (c fakeConfig) LogPath(name string) string        { return filepath.Join(c.ConfigDir(), "logs", name) }
func (c fakeConfig) ExpandHome(path string) string {
	if path == "~" {
		return c.home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(c.home, path[2:])
	}
	return path
}

func newTestVault(t *testing.T, dirs ...string) (*credentialVault, string) {
	t.Helper()
	home := t.TempDir()
	if len(dirs) == 0 {
		dirs = []string{"~/.ssh"}
	}
	settings := domain.DefaultSettings()
	settings.KeySearchPaths = dirs
	vault := NewCredentialVault(
		zaptest.NewLogger(t).Sugar(),
		file.NewOSFileSystem(),
		fakeConfig{home: home},
		func() domain.Settings { return settings },
	)
	return vault, home
}

func writeKeys(t *testing.T, dir string, names ...string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o700))
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("KEY "+name), 0o600))
	}
}

func TestCredentialVault_AutoKeyPrefersEd25519(t *testing.T) {
	vault, home := newTestVault(t)
	sshDir := filepath.Join(home, ".ssh")
	writeKeys(t, sshDir, "id_rsa", "id_rsa.pub", "id_ed25519", "id_ed25519.pub", "known_hosts", "config")

	got, err := vault.ResolveAuth(domain.Profile{ID: "p", Auth: domain.AutoKeyAuth()})

	require.NoError(t, err)
	assert.Equal(t, domain.AuthAutoKey, got.Kind)
	assert.Equal(t, filepath.Join(sshDir, "id_ed25519"), got.KeyPath)
	assert.False(t, got.PromptRequired)
}

func TestCredentialVault_AutoKeyFallsBackToCustomNames(t *testing.T) {
	vault, home := newTestVault(t)
	sshDir := filepath.Join(home, ".ssh")
	writeKeys(t, sshDir, "work_rsa", "deploy_ed25519", "authorized_keys", ".hidden")

	got, err := vault.ResolveAuth(domain.Profile{ID: "p", Auth: domain.AutoKeyAuth()})

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(sshDir, "deploy_ed25519"), got.KeyPath)
}

func TestCredentialVault_AutoKeySearchesDirectoriesInOrder(t *testing.T) {
	vault, home := newTestVault(t, "~/missing", "~/first", "~/second")
	writeKeys(t, filepath.Join(home, "first"), "id_rsa")
	writeKeys(t, filepath.Join(home, "second"), "id_ed25519")

	got, err := vault.ResolveAuth(domain.Profile{ID: "p", Auth: domain.AutoKeyAuth()})

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "first", "id_rsa"), got.KeyPath)
}

func TestCredentialVault_AutoKeyNoKeyFound(t *testing.T) {
	vault, home := newTestVault(t)
	writeKeys(t, filepath.Join(home, ".ssh"), "id_ed25519.pub", "known_hosts")

	_, err := vault.ResolveAuth(domain.Profile{ID: "p", Auth: domain.AutoKeyAuth()})

	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindNoKeyFound))
}

func TestCredentialVault_SearchPathMayBeAKeyFile(t *testing.T) {
	vault, home := newTestVault(t, "~/keys/work.pem", "~/.ssh")
	writeKeys(t, filepath.Join(home, "keys"), "work.pem")
	writeKeys(t, filepath.Join(home, ".ssh"), "id_ed25519")

	got, err := vault.ResolveAuth(domain.Profile{ID: "p", Auth: domain.AutoKeyAuth()})

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "keys", "work.pem"), got.KeyPath)
	assert.Equal(t, []string{
		filepath.Join(home, "keys", "work.pem"),
		filepath.Join(home, ".ssh", "id_ed25519"),
	}, vault.KeyCandidates())
}

func TestCredentialVault_KeyCandidates(t *testing.T) {
	vault, home := newTestVault(t, "~/.ssh", "~/.ssh/id_rsa", "~/gone.pem")
	writeKeys(t, filepath.Join(home, ".ssh"), "id_rsa", "id_rsa.pub", "id_ed25519", "config")

	assert.Equal(t, []string{
		filepath.Join(home, ".ssh", "id_ed25519"),
		filepath.Join(home, ".ssh", "id_rsa"),
	}, vault.KeyCandidates(), "listed once, missing entries skipped")
}

func TestCredentialVault_KeyFile(t *testing.T) {
	vault, home := newTestVault(t)
	writeKeys(t, filepath.Join(home, "keys"), "prod")

	got, err := vault.ResolveAuth(domain.Profile{ID: "p", Auth: domain.KeyFileAuth("~/keys/prod")})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "keys", "prod"), got.KeyPath)

	for _, path := range []string{"~/keys/absent", "~/keys"} {
		_, err = vault.ResolveAuth(domain.Profile{ID: "p", Auth: domain.KeyFileAuth(path)})
		require.Error(t, err, path)
		assert.True(t, domain.IsKind(err, domain.KindKeyUnreadable), path)
	}
}

func TestCredentialVault_PasswordNeedsPromptAndUsesCache(t *testing.T) {
	vault, _ := newTestVault(t)
	p := domain.Profile{ID: "p", Auth: domain.PasswordAuth()}

	got, err := vault.ResolveAuth(p)
	require.NoError(t, err)
	assert.True(t, got.PromptRequired)
	assert.False(t, got.HasSecret())

	vault.Remember("p", "hunter2")
	got, err = vault.ResolveAuth(p)
	require.NoError(t, err)
	assert.True(t, got.PromptRequired)
	assert.Equal(t, "hunter2", got.Password)

	vault.Forget("p")
	got, _ = vault.ResolveAuth(p)
	assert.False(t, got.HasSecret())

	vault.Remember("p", "again")
	vault.Clear()
	got, _ = vault.ResolveAuth(p)
	assert.False(t, got.HasSecret())
}

func TestCredentialVault_PasswordReferences(t *testing.T) {
	vault, home := newTestVault(t)
	vault.getenv = func(name string) string {
		if name == "WEB_PASS" {
			return "from-env"
		}
		return ""
	}
	require.NoError(t, os.WriteFile(filepath.Join(home, "pw"), []byte("from-file\n"), 0o600))

	got, err := vault.ResolveAuth(domain.Profile{ID: "a", Auth: domain.PasswordAuth(), PasswordRef: "env:WEB_PASS"})
	require.NoError(t, err)
	assert.Equal(t, "from-env", got.Password)

	got, err = vault.ResolveAuth(domain.Profile{ID: "b", Auth: domain.PasswordAuth(), PasswordRef: "file:~/pw"})
	require.NoError(t, err)
	assert.Equal(t, "from-file", got.Password)

	got, err = vault.ResolveAuth(domain.Profile{ID: "c", Auth: domain.PasswordAuth(), PasswordRef: "file:~/nope"})
	require.NoError(t, err)
	assert.Empty(t, got.Password)
}

func TestSortKeyNames(t *testing.T) {
	names := []string{"zz", "id_rsa", "my_ecdsa", "id_dsa", "id_ed25519_sk", "other_rsa", "id_ed25519"}
	sortKeyNames(names)
	assert.Equal(t, []string{"id_ed25519", "id_ed25519_sk", "id_rsa", "id_dsa", "my_ecdsa", "other_rsa", "zz"}, names)
}
