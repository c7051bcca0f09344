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
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Adembc/sshdock/internal/core/domain"
	"github.com/Adembc/sshdock/internal/core/ports"
)

const copySuffix = " (copy)"

type profileStore struct {
	repo     ports.ProfileRepository
	logger   *zap.SugaredLogger
	now      func() time.Time
	newID    func() string
	profiles []domain.Profile
	settings domain.Settings
}

// NewProfileStore wraps repo with an in-memory, insertion-ordered profile list.
// Call Load before use.
func NewProfileStore(logger *zap.SugaredLogger, repo ports.ProfileRepository) *profileStore {
	return &profileStore{
		repo:     repo,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC().Truncate(time.Second) },
		newID:    uuid.NewString,
		settings: domain.DefaultSettings(),
	}
}

// Load replaces the in-memory state with the durable one.
func (s *profileStore) Load() error {
	data, err := s.repo.Load()
	if err != nil {
		s.logger.Errorw("failed to load store", "path", s.repo.Path(), "error", err)
		return err
	}
	s.profiles = data.Profiles
	s.settings = data.Settings.WithDefaults()
	s.logger.Infow("store loaded", "path", s.repo.Path(), "profiles", len(s.profiles))
	return nil
}

// Reset starts over with an empty store and default settings, without saving.
func (s *profileStore) Reset() {
	s.profiles = nil
	s.settings = domain.DefaultSettings()
}

// List returns a copy of the profiles in insertion order.
func (s *profileStore) List() []domain.Profile {
	out := make([]domain.Profile, len(s.profiles))
	copy(out, s.profiles)
	return out
}

func (s *profileStore) Get(id string) (domain.Profile, bool) {
	if i := s.indexOf(id); i >= 0 {
		return s.profiles[i], true
	}
	return domain.Profile{}, false
}

func (s *profileStore) Settings() domain.Settings {
	out := s.settings
	out.KeySearchPaths = append([]string(nil), s.settings.KeySearchPaths...)
	return out
}

// Add appends p. An empty id is filled in; timestamps are set when missing.
func (s *profileStore) Add(p domain.Profile) error {
	if p.ID == "" {
		p.ID = s.newID()
	}
	if s.indexOf(p.ID) >= 0 {
		err := domain.NewError(domain.KindDuplicateID, fmt.Sprintf("profile id %q already exists", p.ID))
		s.logger.Errorw("failed to add profile", "error", err, "id", p.ID)
		return err
	}
	if err := domain.ValidateProfile(p); err != nil {
		s.logger.Warnw("validation failed on add", "error", err, "name", p.Name)
		return err
	}
	now := s.now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	return s.mutate("add", func(profiles []domain.Profile) []domain.Profile {
		return append(profiles, p)
	})
}

// Update replaces the profile with the same id, keeping its position and creation time.
func (s *profileStore) Update(p domain.Profile) error {
	i := s.indexOf(p.ID)
	if i < 0 {
		err := domain.NewError(domain.KindNotFound, fmt.Sprintf("profile %q not found", p.ID))
		s.logger.Errorw("failed to update profile", "error", err)
		return err
	}
	if err := domain.ValidateProfile(p); err != nil {
		s.logger.Warnw("validation failed on update", "error", err, "id", p.ID)
		return err
	}
	p.CreatedAt = s.profiles[i].CreatedAt
	p.UpdatedAt = s.now()

	return s.mutate("update", func(profiles []domain.Profile) []domain.Profile {
		profiles[i] = p
		return profiles
	})
}

func (s *profileStore) Remove(id string) error {
	i := s.indexOf(id)
	if i < 0 {
		err := domain.NewError(domain.KindNotFound, fmt.Sprintf("profile %q not found", id))
		s.logger.Errorw("failed to remove profile", "error", err)
		return err
	}
	return s.mutate("remove", func(profiles []domain.Profile) []domain.Profile {
		return append(profiles[:i], profiles[i+1:]...)
	})
}

// Duplicate copies the profile under a fresh id and a name that is not taken yet.
// Connection history is not copied.
func (s *profileStore) Duplicate(id string) (domain.Profile, error) {
	src, ok := s.Get(id)
	if !ok {
		err := domain.NewError(domain.KindNotFound, fmt.Sprintf("profile %q not found", id))
		s.logger.Errorw("failed to duplicate profile", "error", err)
		return domain.Profile{}, err
	}

	dup := src
	dup.ID = s.newID()
	dup.Name = s.copyName(src.Name)
	dup.CreatedAt = time.Time{}
	dup.LastConnectedAt = time.Time{}
	dup.ConnectCount = 0
	s.repo.CopyExtras(src.ID, dup.ID)

	if err := s.Add(dup); err != nil {
		return domain.Profile{}, err
	}
	added, _ := s.Get(dup.ID)
	return added, nil
}

// RecordConnect notes a completed session on the profile.
func (s *profileStore) RecordConnect(id string) error {
	i := s.indexOf(id)
	if i < 0 {
		return domain.NewError(domain.KindNotFound, fmt.Sprintf("profile %q not found", id))
	}
	return s.mutate("record connect", func(profiles []domain.Profile) []domain.Profile {
		profiles[i].LastConnectedAt = s.now()
		profiles[i].ConnectCount++
		return profiles
	})
}

func (s *profileStore) UpdateSettings(settings domain.Settings) error {
	if err := domain.ValidateSettings(settings); err != nil {
		s.logger.Warnw("validation failed on settings update", "error", err)
		return err
	}
	prev := s.settings
	s.settings = settings
	if err := s.Flush(); err != nil {
		s.settings = prev
		return err
	}
	return nil
}

// Flush writes the current state to disk.
func (s *profileStore) Flush() error {
	err := s.repo.Save(domain.StoreData{Settings: s.settings, Profiles: s.profiles})
	if err != nil {
		s.logger.Errorw("failed to save store", "path", s.repo.Path(), "error", err)
	}
	return err
}

// mutate applies change to a copy of the list, saves it, and only then makes it current.
// On a failed save the in-memory list stays at the last durable state.
func (s *profileStore) mutate(op string, change func([]domain.Profile) []domain.Profile) error {
	next := change(s.List())
	if err := s.repo.Save(domain.StoreData{Settings: s.settings, Profiles: next}); err != nil {
		s.logger.Errorw("failed to save store, mutation rolled back", "op", op, "error", err)
		return err
	}
	s.profiles = next
	s.logger.Debugw("store mutated", "op", op, "profiles", len(next))
	return nil
}

func (s *profileStore) indexOf(id string) int {
	for i, p := range s.profiles {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (s *profileStore) nameTaken(name string) bool {
	for _, p := range s.profiles {
		if strings.EqualFold(p.Name, name) {
			return true
		}
	}
	return false
}

func (s *profileStore) copyName(name string) string {
	candidate := name + copySuffix
	for n := 2; s.nameTaken(candidate); n++ {
		candidate = fmt.Sprintf("%s (copy %d)", name, n)
	}
	return candidate
}
