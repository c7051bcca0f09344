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

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/user"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/Adembc/sshdock/internal/core/domain"
	"github.com/Adembc/sshdock/internal/core/ports"
)

var errNotInteractive = errors.New("stdin is not a terminal")

type storeLoader interface {
	Load() error
	Reset()
}

type quarantiner interface {
	Path() string
	Quarantine() (string, error)
}

type confirmer interface {
	Confirm(question string) (bool, error)
}

// loadStore reads the store. A corrupt file is moved aside and replaced by an
// empty store when reset is set or the user agrees; otherwise startup fails.
func loadStore(log *zap.SugaredLogger, store storeLoader, repo quarantiner, reset bool, prompt confirmer) error {
	err := store.Load()
	if err == nil {
		return nil
	}
	if !domain.IsKind(err, domain.KindCorruptStore) {
		return fmt.Errorf("failed to read %s: %w", repo.Path(), err)
	}

	if !reset {
		question := fmt.Sprintf("The profile store %s cannot be parsed (%v).\nMove it aside and start empty?", repo.Path(), err)
		ok, perr := prompt.Confirm(question)
		if perr != nil {
			log.Warnw("cannot ask about damaged store", "error", perr)
			return fmt.Errorf("%w; rerun with --reset-corrupt to start with an empty store", err)
		}
		if !ok {
			return fmt.Errorf("%w; store left untouched", err)
		}
	}

	moved, qerr := repo.Quarantine()
	if qerr != nil {
		return qerr
	}
	log.Warnw("starting with an empty store", "damaged", moved)
	store.Reset()
	return nil
}

// importSSHConfig adds every host from path whose name is not already taken.
func importSSHConfig(log *zap.SugaredLogger, importer ports.SSHConfigImporter, store ports.ProfileService, path string) (int, error) {
	profiles, err := importer.Import(path)
	if err != nil {
		return 0, err
	}

	taken := make(map[string]bool)
	for _, p := range store.List() {
		taken[p.Name] = true
	}

	added := 0
	for _, p := range profiles {
		if taken[p.Name] {
			log.Debugw("skipping imported host, name taken", "name", p.Name)
			continue
		}
		if err := store.Add(p); err != nil {
			return added, err
		}
		taken[p.Name] = true
		added++
	}
	log.Infow("ssh config imported", "path", path, "added", added, "found", len(profiles))
	return added, nil
}

type terminalPrompt struct {
	in  *os.File
	out io.Writer
}

func (p terminalPrompt) Confirm(question string) (bool, error) {
	if !term.IsTerminal(int(p.in.Fd())) {
		return false, errNotInteractive
	}
	return askYesNo(p.in, p.out, question)
}

func askYesNo(in io.Reader, out io.Writer, question string) (bool, error) {
	if _, err := fmt.Fprintf(out, "%s [y/N] ", question); err != nil {
		return false, err
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

func currentUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return os.Getenv("USER")
}
