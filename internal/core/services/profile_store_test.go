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
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gopkg.in/yaml.v3"

	"github.com/Adembc/sshdock/internal/adapters/data/file"
	"github.com/Adembc/sshdock/internal/core/domain"
)

type mockProfileRepository struct {
	data    domain.StoreData
	saves   int
	saveErr error
	loadErr error
	copied  [][2]string
}

func (m *mockProfileRepository) Load() (domain.StoreData, error) {
	if m.loadErr != nil {
		return domain.StoreData{}, m.loadErr
	}
	return m.data, nil
}

func (m *mockProfileRepository) Save(data domain.StoreData) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.data = domain.StoreData{
		Settings: data.Settings,
		Profiles: append([]domain.Profile(nil), data.Profiles...),
	}
	return nil
}

func (m *mockProfileRepository) Path() string { return "/tmp/store.yaml" }

func (m *mockProfileRepository) CopyExtras(from, to string) {
	m.copied = append(m.copied, [2]string{from, to})
}

func newTestStore(t *testing.T, repo *mockProfileRepository) *profileStore {
	t.Helper()
	store := NewProfileStore(zaptest.NewLogger(t).Sugar(), repo)
	ids := 0
	store.newID = func() string {
		ids++
		return fmt.Sprintf("id-%d", ids)
	}
	store.now = func() time.Time { return time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC) }
	require.NoError(t, store.Load())
	return store
}

func web1() domain.Profile {
	return domain.Profile{Name: "web1", Host: "10.0.0.5", Port: 22, User: "root", Auth: domain.PasswordAuth()}
}

func TestProfileStore_AddAssignsIDAndPersists(t *testing.T) {
	repo := &mockProfileRepository{}
	store := newTestStore(t, repo)

	require.NoError(t, store.Add(web1()))

	list := store.List()
	require.Len(t, list, 1)
	assert.Equal(t, "id-1", list[0].ID)
	assert.False(t, list[0].CreatedAt.IsZero())
	assert.Equal(t, list[0].CreatedAt, list[0].UpdatedAt)
	assert.Equal(t, 1, repo.saves)
	assert.Equal(t, list, repo.data.Profiles)
}

func TestProfileStore_AddRejectsDuplicateID(t *testing.T) {
	store := newTestStore(t, &mockProfileRepository{})
	p := web1()
	p.ID = "fixed"
	require.NoError(t, store.Add(p))

	p.Name = "other"
	err := store.Add(p)
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindDuplicateID))
	assert.Len(t, store.List(), 1)
}

func TestProfileStore_AddRejectsInvalidProfile(t *testing.T) {
	repo := &mockProfileRepository{}
	store := newTestStore(t, repo)
	p := web1()
	p.Port = 70000
	p.Host = ""

	err := store.Add(p)

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.NotEmpty(t, verr.For(domain.FieldPort))
	assert.NotEmpty(t, verr.For(domain.FieldHost))
	assert.Empty(t, store.List())
	assert.Zero(t, repo.saves)
}

func TestProfileStore_UpdateKeepsPositionAndCreatedAt(t *testing.T) {
	store := newTestStore(t, &mockProfileRepository{})
	require.NoError(t, store.Add(web1()))
	second := web1()
	second.Name = "web2"
	require.NoError(t, store.Add(second))

	orig, ok := store.Get("id-1")
	require.True(t, ok)
	store.now = func() time.Time { return orig.CreatedAt.Add(time.Hour) }

	changed := orig
	changed.Host = "10.0.0.6"
	changed.CreatedAt = time.Time{}
	require.NoError(t, store.Update(changed))

	list := store.List()
	assert.Equal(t, "id-1", list[0].ID)
	assert.Equal(t, "10.0.0.6", list[0].Host)
	assert.Equal(t, orig.CreatedAt, list[0].CreatedAt)
	assert.True(t, list[0].UpdatedAt.After(orig.UpdatedAt))
}

func TestProfileStore_UpdateAndRemoveUnknownID(t *testing.T) {
	store := newTestStore(t, &mockProfileRepository{})
	p := web1()
	p.ID = "missing"

	assert.True(t, domain.IsKind(store.Update(p), domain.KindNotFound))
	assert.True(t, domain.IsKind(store.Remove("missing"), domain.KindNotFound))
	_, err := store.Duplicate("missing")
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestProfileStore_Remove(t *testing.T) {
	repo := &mockProfileRepository{}
	store := newTestStore(t, repo)
	require.NoError(t, store.Add(web1()))

	require.NoError(t, store.Remove("id-1"))

	assert.Empty(t, store.List())
	assert.Empty(t, repo.data.Profiles)
	_, ok := store.Get("id-1")
	assert.False(t, ok)
}

func TestProfileStore_DuplicateNamesAndHistory(t *testing.T) {
	repo := &mockProfileRepository{}
	store := newTestStore(t, repo)
	require.NoError(t, store.Add(web1()))
	require.NoError(t, store.RecordConnect("id-1"))

	first, err := store.Duplicate("id-1")
	require.NoError(t, err)
	second, err := store.Duplicate("id-1")
	require.NoError(t, err)

	assert.Equal(t, "web1 (copy)", first.Name)
	assert.Equal(t, "web1 (copy 2)", second.Name)
	assert.NotEqual(t, "id-1", first.ID)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Zero(t, first.ConnectCount)
	assert.True(t, first.LastConnectedAt.IsZero())
	assert.Equal(t, "10.0.0.5", first.Host)
	assert.Len(t, store.List(), 3)
	assert.Equal(t, [][2]string{{"id-1", first.ID}, {"id-1", second.ID}}, repo.copied)
}

func TestProfileStore_DuplicateKeepsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.yaml")
	raw := `version: 1
profiles:
  - id: a1
    name: web1
    host: 10.0.0.5
    port: 22
    user: root
    jump_host: bastion
    auth:
      method: password
      hint: totp
`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))

	log := zaptest.NewLogger(t).Sugar()
	store := NewProfileStore(log, file.NewProfileRepo(log, file.NewOSFileSystem(), path))
	require.NoError(t, store.Load())

	dup, err := store.Duplicate("a1")
	require.NoError(t, err)

	saved, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc struct {
		Profiles []map[string]any `yaml:"profiles"`
	}
	require.NoError(t, yaml.Unmarshal(saved, &doc))
	require.Len(t, doc.Profiles, 2)

	for _, p := range doc.Profiles {
		assert.Equal(t, "bastion", p["jump_host"], "profile %v", p["id"])
		assert.Equal(t, "totp", p["auth"].(map[string]any)["hint"], "profile %v", p["id"])
	}
	assert.Equal(t, dup.ID, doc.Profiles[1]["id"])
	assert.Equal(t, "web1 (copy)", doc.Profiles[1]["name"])
}

func TestProfileStore_RecordConnect(t *testing.T) {
	store := newTestStore(t, &mockProfileRepository{})
	require.NoError(t, store.Add(web1()))

	require.NoError(t, store.RecordConnect("id-1"))
	require.NoError(t, store.RecordConnect("id-1"))

	p, _ := store.Get("id-1")
	assert.Equal(t, 2, p.ConnectCount)
	assert.False(t, p.LastConnectedAt.IsZero())
}

func TestProfileStore_FailedSaveRollsBack(t *testing.T) {
	repo := &mockProfileRepository{}
	store := newTestStore(t, repo)
	require.NoError(t, store.Add(web1()))
	before := store.List()

	repo.saveErr = domain.WrapError(errors.New("disk full"), domain.KindIO, "failed to write store")

	second := web1()
	second.Name = "web2"
	err := store.Add(second)
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindIO))
	assert.Equal(t, before, store.List())

	changed := before[0]
	changed.Host = "10.9.9.9"
	require.Error(t, store.Update(changed))
	assert.Equal(t, before, store.List())

	require.Error(t, store.Remove("id-1"))
	assert.Equal(t, before, store.List())
}

func TestProfileStore_ListReturnsCopy(t *testing.T) {
	store := newTestStore(t, &mockProfileRepository{})
	require.NoError(t, store.Add(web1()))

	list := store.List()
	list[0].Name = "mutated"

	p, _ := store.Get("id-1")
	assert.Equal(t, "web1", p.Name)
}

func TestProfileStore_UpdateSettings(t *testing.T) {
	repo := &mockProfileRepository{}
	store := newTestStore(t, repo)

	next := domain.DefaultSettings()
	next.DefaultPort = 2222
	next.Theme = domain.ThemeLight
	require.NoError(t, store.UpdateSettings(next))
	assert.Equal(t, 2222, store.Settings().DefaultPort)
	assert.Equal(t, 2222, repo.data.Settings.DefaultPort)

	bad := next
	bad.Theme = "neon"
	err := store.UpdateSettings(bad)
	assert.True(t, domain.IsKind(err, domain.KindValidation))
	assert.Equal(t, domain.ThemeLight, store.Settings().Theme)

	repo.saveErr = errors.New("read-only")
	other := next
	other.DefaultPort = 2022
	require.Error(t, store.UpdateSettings(other))
	assert.Equal(t, 2222, store.Settings().DefaultPort)
}

func TestProfileStore_LoadAppliesSettingDefaults(t *testing.T) {
	repo := &mockProfileRepository{data: domain.StoreData{Settings: domain.Settings{Theme: domain.ThemeDark}}}
	store := newTestStore(t, repo)

	s := store.Settings()
	assert.Equal(t, domain.ThemeDark, s.Theme)
	assert.Equal(t, []string{"~/.ssh"}, s.KeySearchPaths)
	assert.Equal(t, domain.DefaultPort, s.DefaultPort)
}

func TestProfileStore_LoadErrorIsReturned(t *testing.T) {
	repo := &mockProfileRepository{loadErr: domain.NewError(domain.KindCorruptStore, "bad store")}
	store := NewProfileStore(zaptest.NewLogger(t).Sugar(), repo)

	err := store.Load()
	assert.True(t, domain.IsKind(err, domain.KindCorruptStore))

	store.Reset()
	assert.Empty(t, store.List())
	assert.Equal(t, domain.DefaultSettings(), store.Settings())
}
