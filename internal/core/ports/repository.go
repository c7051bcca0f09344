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

package ports

import "github.com/Adembc/sshdock/internal/core/domain"

// ProfileRepository persists the whole store document at once.
type ProfileRepository interface {
	Load() (domain.StoreData, error)
	Save(data domain.StoreData) error
	Path() string
	// CopyExtras makes the stored fields this build does not interpret for
	// profile from also apply to profile to.
	CopyExtras(from, to string)
}

// ProfileService is the in-memory, always-flushed profile collection.
type ProfileService interface {
	List() []domain.Profile
	Get(id string) (domain.Profile, bool)
	Add(p domain.Profile) error
	Update(p domain.Profile) error
	Remove(id string) error
	Duplicate(id string) (domain.Profile, error)
	RecordConnect(id string) error
	Settings() domain.Settings
	UpdateSettings(s domain.Settings) error
	Flush() error
}

// SSHConfigImporter reads host entries from an OpenSSH client config.
type SSHConfigImporter interface {
	Import(path string) ([]domain.Profile, error)
}
