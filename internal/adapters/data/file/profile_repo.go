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
	"bytes"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Adembc/sshdock/internal/core/domain"
	"github.com/Adembc/sshdock/internal/core/ports"
)

const (
	MaxBackups   = 10
	TempPattern  = ".store-*.tmp"
	BackupSuffix = "sshdock.backup"
	BackupDir    = "backups"
	StorePerms   = 0o600
	DirPerms     = 0o700
)

type profileRepo struct {
	path       string
	fileSystem ports.FileSystem
	logger     *zap.SugaredLogger
	unknown    unknownFields
	newID      func() string
}

// NewProfileRepo returns a repository for the store file at path.
func NewProfileRepo(logger *zap.SugaredLogger, fileSystem ports.FileSystem, path string) *profileRepo {
	return &profileRepo{
		path:       path,
		fileSystem: fileSystem,
		logger:     logger,
		unknown:    newUnknownFields(),
		newID:      uuid.NewString,
	}
}

func (r *profileRepo) Path() string {
	return r.path
}

// Load reads the store. A missing file yields an empty store with default settings.
func (r *profileRepo) Load() (domain.StoreData, error) {
	empty := domain.StoreData{Settings: domain.DefaultSettings()}

	data, err := r.fileSystem.ReadFile(r.path)
	if err != nil {
		if r.fileSystem.IsNotExist(err) {
			r.logger.Infow("store file not found, starting empty", "path", r.path)
			return empty, nil
		}
		return empty, domain.WrapError(err, domain.KindIO, "failed to read store "+r.path)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return empty, nil
	}

	var doc storeDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return empty, domain.WrapError(err, domain.KindCorruptStore, "store file is not valid YAML")
	}
	if doc.Version > StoreVersion {
		return empty, domain.NewError(domain.KindCorruptStore,
			fmt.Sprintf("store version %d is newer than supported version %d", doc.Version, StoreVersion))
	}
	if doc.Version < 0 {
		return empty, domain.NewError(domain.KindCorruptStore, fmt.Sprintf("invalid store version %d", doc.Version))
	}

	unknown := newUnknownFields()
	unknown.document = doc.Extra
	unknown.settings = doc.Settings.Extra

	seen := make(map[string]bool, len(doc.Profiles))
	profiles := make([]domain.Profile, 0, len(doc.Profiles))
	for _, rec := range doc.Profiles {
		p, err := profileFromRecord(rec)
		if err != nil {
			return empty, domain.WrapError(err, domain.KindCorruptStore, "store contains an invalid profile")
		}
		if p.ID == "" {
			// Entries written by hand may lack an id; give them one.
			p.ID = r.newID()
			r.logger.Infow("assigned id to profile without one", "name", p.Name, "id", p.ID)
		}
		if seen[p.ID] {
			return empty, domain.NewError(domain.KindCorruptStore, fmt.Sprintf("duplicate profile id %q", p.ID))
		}
		seen[p.ID] = true
		if len(rec.Extra) > 0 {
			unknown.profiles[p.ID] = rec.Extra
		}
		if len(rec.Auth.Extra) > 0 {
			unknown.auth[p.ID] = rec.Auth.Extra
		}
		profiles = append(profiles, p)
	}

	r.unknown = unknown
	r.logger.Debugw("store loaded", "path", r.path, "profiles", len(profiles), "version", doc.Version)
	return domain.StoreData{
		Settings: settingsFromRecord(doc.Settings),
		Profiles: profiles,
	}, nil
}

// Save atomically replaces the store file: the content goes to a temporary file in
// the same directory, is synced, and is then renamed over the canonical path.
func (r *profileRepo) Save(data domain.StoreData) error {
	doc := storeDocument{
		Version:  StoreVersion,
		Settings: settingsToRecord(data.Settings, r.unknown.settings),
		Profiles: make([]profileRecord, 0, len(data.Profiles)),
		Extra:    r.unknown.document,
	}
	for _, p := range data.Profiles {
		doc.Profiles = append(doc.Profiles, profileToRecord(p, r.unknown.profiles[p.ID], r.unknown.auth[p.ID]))
	}

	content, err := yaml.Marshal(&doc)
	if err != nil {
		return domain.WrapError(err, domain.KindIO, "failed to encode store")
	}

	dir := filepath.Dir(r.path)
	if err := r.fileSystem.MkdirAll(dir, DirPerms); err != nil {
		return domain.WrapError(err, domain.KindIO, "failed to create store directory")
	}

	tempFile, err := r.writeTempFile(dir, content)
	if err != nil {
		return domain.WrapError(err, domain.KindIO, "failed to write temporary store file")
	}
	renamed := false
	defer func() {
		if renamed {
			return
		}
		if removeErr := r.fileSystem.Remove(tempFile); removeErr != nil && !r.fileSystem.IsNotExist(removeErr) {
			r.logger.Warnf("failed to remove temporary file %s: %v", tempFile, removeErr)
		}
	}()

	if err := r.createBackup(); err != nil {
		// A missing backup must not block the save itself.
		r.logger.Warnw("failed to create store backup", "error", err)
	}

	if err := r.fileSystem.Rename(tempFile, r.path); err != nil {
		return domain.WrapError(err, domain.KindIO, "failed to replace store file")
	}
	renamed = true

	r.logger.Debugw("store saved", "path", r.path, "profiles", len(data.Profiles))
	return nil
}

func (r *profileRepo) CopyExtras(from, to string) {
	if extra, ok := r.unknown.profiles[from]; ok {
		r.unknown.profiles[to] = maps.Clone(extra)
	}
	if extra, ok := r.unknown.auth[from]; ok {
		r.unknown.auth[to] = maps.Clone(extra)
	}
}

// Quarantine moves a damaged store out of the way and returns its new location.
func (r *profileRepo) Quarantine() (string, error) {
	target := fmt.Sprintf("%s.corrupt-%s", r.path, time.Now().Format("20060102150405"))
	if err := r.fileSystem.Rename(r.path, target); err != nil {
		return "", domain.WrapError(err, domain.KindIO, "failed to move damaged store aside")
	}
	r.unknown = newUnknownFields()
	r.logger.Warnw("damaged store moved aside", "from", r.path, "to", target)
	return target, nil
}

func (r *profileRepo) writeTempFile(dir string, content []byte) (string, error) {
	file, err := r.fileSystem.CreateTemp(dir, TempPattern)
	if err != nil {
		return "", err
	}
	name := file.Name()

	fail := func(err error) (string, error) {
		_ = file.Close()
		_ = r.fileSystem.Remove(name)
		return "", err
	}

	if err := file.Chmod(StorePerms); err != nil {
		return fail(err)
	}
	if _, err := file.Write(content); err != nil {
		return fail(err)
	}
	if err := file.Sync(); err != nil {
		return fail(err)
	}
	if err := file.Close(); err != nil {
		_ = r.fileSystem.Remove(name)
		return "", err
	}
	return name, nil
}

// createBackup copies the current store into the backup directory and prunes old copies.
func (r *profileRepo) createBackup() error {
	if _, err := r.fileSystem.Stat(r.path); r.fileSystem.IsNotExist(err) {
		return nil
	} else if err != nil {
		return fmt.Errorf("failed to check if store file exists: %w", err)
	}

	backupDir := filepath.Join(filepath.Dir(r.path), BackupDir)
	if err := r.fileSystem.MkdirAll(backupDir, DirPerms); err != nil {
		return err
	}

	backupPath := filepath.Join(backupDir,
		fmt.Sprintf("%s-%d-%s", filepath.Base(r.path), time.Now().UnixNano(), BackupSuffix))
	if err := r.copyFile(r.path, backupPath); err != nil {
		return fmt.Errorf("failed to copy store to backup: %w", err)
	}

	backupFiles, err := r.findBackupFiles(backupDir)
	if err != nil {
		return err
	}
	if len(backupFiles) <= MaxBackups {
		return nil
	}

	sort.Slice(backupFiles, func(i, j int) bool {
		return backupFiles[i].Name() > backupFiles[j].Name()
	})
	for _, old := range backupFiles[MaxBackups:] {
		oldPath := filepath.Join(backupDir, old.Name())
		if err := r.fileSystem.Remove(oldPath); err != nil {
			r.logger.Warnf("failed to remove old backup %s: %v", oldPath, err)
			continue
		}
		r.logger.Debugf("removed old backup: %s", oldPath)
	}
	return nil
}

func (r *profileRepo) copyFile(src, dst string) error {
	srcFile, err := r.fileSystem.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := srcFile.Close(); cerr != nil {
			r.logger.Warnf("failed to close source file %s: %v", src, cerr)
		}
	}()

	destFile, err := r.fileSystem.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, StorePerms)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := destFile.Close(); cerr != nil {
			r.logger.Warnf("failed to close destination file %s: %v", dst, cerr)
		}
	}()

	if _, err := io.Copy(destFile, srcFile); err != nil {
		return err
	}
	return destFile.Sync()
}

func (r *profileRepo) findBackupFiles(dir string) ([]os.FileInfo, error) {
	entries, err := r.fileSystem.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var backupFiles []os.FileInfo
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, BackupSuffix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			r.logger.Warnf("failed to get info for backup file %s: %v", name, err)
			continue
		}
		backupFiles = append(backupFiles, info)
	}
	return backupFiles, nil
}
