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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOSConfig_ExplicitDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cfg")

	c, err := NewOSConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, dir, c.ConfigDir())
	assert.Equal(t, filepath.Join(dir, "store.yaml"), c.StorePath())
	assert.Equal(t, filepath.Join(dir, "logs", "sshdock.log"), c.LogPath("sshdock.log"))

	require.NoError(t, c.EnsureDirs())
	info, err := os.Stat(filepath.Join(dir, "logs"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestOSConfig_DefaultDir(t *testing.T) {
	c, err := NewOSConfig("")
	require.NoError(t, err)

	assert.Equal(t, AppDirName, filepath.Base(c.ConfigDir()))
}

func TestOSConfig_ExpandHome(t *testing.T) {
	c, err := NewOSConfig("~/custom")
	require.NoError(t, err)
	home := c.HomeDir()

	assert.Equal(t, filepath.Join(home, "custom"), c.ConfigDir())
	assert.Equal(t, home, c.ExpandHome("~"))
	assert.Equal(t, filepath.Join(home, ".ssh", "id_rsa"), c.ExpandHome("~/.ssh/id_rsa"))
	assert.Equal(t, "/etc/ssh", c.ExpandHome("/etc/ssh"))
	assert.Equal(t, "~user/x", c.ExpandHome("~user/x"))
	assert.Equal(t, filepath.Join(home, ".ssh", "known_hosts"), c.KnownHostsPath())
}
