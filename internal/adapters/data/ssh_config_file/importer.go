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

package ssh_config_file

import (
	"strconv"
	"strings"

	"github.com/kevinburke/ssh_config"
	"go.uber.org/zap"

	"github.com/Adembc/sshdock/internal/core/domain"
	"github.com/Adembc/sshdock/internal/core/ports"
)

// Importer turns concrete Host blocks of an OpenSSH client config into profiles.
type Importer struct {
	fileSystem  ports.FileSystem
	logger      *zap.SugaredLogger
	defaultUser string
}

func NewImporter(logger *zap.SugaredLogger, fileSystem ports.FileSystem, defaultUser string) *Importer {
	return &Importer{fileSystem: fileSystem, logger: logger, defaultUser: defaultUser}
}

// Import parses the config at path. Profiles come back without ids; the store assigns them.
func (i *Importer) Import(path string) ([]domain.Profile, error) {
	file, err := i.fileSystem.Open(path)
	if err != nil {
		if i.fileSystem.IsNotExist(err) {
			return nil, domain.WrapError(err, domain.KindNotFound, "ssh config not found at "+path)
		}
		return nil, domain.WrapError(err, domain.KindIO, "failed to open ssh config")
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			i.logger.Warnf("failed to close ssh config %s: %v", path, cerr)
		}
	}()

	cfg, err := ssh_config.Decode(file)
	if err != nil {
		return nil, domain.WrapError(err, domain.KindCorruptStore, "failed to decode ssh config")
	}
	return i.toProfiles(cfg), nil
}

func (i *Importer) toProfiles(cfg *ssh_config.Config) []domain.Profile {
	profiles := make([]domain.Profile, 0, len(cfg.Hosts))
	for _, host := range cfg.Hosts {
		alias := ""
		for _, pattern := range host.Patterns {
			s := pattern.String()
			// Wildcard patterns are defaults, not destinations.
			if strings.ContainsAny(s, "!*?[]") {
				continue
			}
			alias = s
			break
		}
		if alias == "" {
			continue
		}

		p := domain.Profile{
			Name: alias,
			Host: alias,
			Port: domain.DefaultPort,
			User: i.defaultUser,
			Auth: domain.AutoKeyAuth(),
		}
		for _, node := range host.Nodes {
			kv, ok := node.(*ssh_config.KV)
			if !ok {
				continue
			}
			i.mapKVToProfile(&p, kv)
		}

		if err := domain.ValidateProfile(p); err != nil {
			i.logger.Warnw("skipping ssh config host", "alias", alias, "error", err)
			continue
		}
		profiles = append(profiles, p)
	}
	return profiles
}

func (i *Importer) mapKVToProfile(p *domain.Profile, kv *ssh_config.KV) {
	switch strings.ToLower(kv.Key) {
	case "hostname":
		p.Host = kv.Value
	case "user":
		p.User = kv.Value
	case "port":
		if port, err := strconv.Atoi(kv.Value); err == nil {
			p.Port = port
		} else {
			i.logger.Debugw("ignoring bad port in ssh config", "alias", p.Name, "value", kv.Value)
		}
	case "identityfile":
		// Only the first IdentityFile is kept, matching ssh's own preference order.
		if p.Auth.Kind != domain.AuthKeyFile {
			p.Auth = domain.KeyFileAuth(kv.Value)
		}
	}
}

