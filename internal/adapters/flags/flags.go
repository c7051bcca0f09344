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

package flags

import (
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Adembc/sshdock/internal/core/ports"
)

const (
	EnvPrefix = "SSHDOCK"

	FlagDebug           = "debug"
	FlagConfigDir       = "config-dir"
	FlagProbeTimeout    = "probe-timeout"
	FlagImportSSHConfig = "import-ssh-config"
	FlagResetCorrupt    = "reset-corrupt"

	// DefaultSSHConfigPath is used when --import-ssh-config is given without a value.
	DefaultSSHConfigPath = "~/.ssh/config"
)

type CobraFlags struct {
	rootCmd *cobra.Command
	v       *viper.Viper
}

// NewCobraFlags registers the global flags on rootCmd. Every flag can also be
// set through an SSHDOCK_ environment variable, e.g. SSHDOCK_PROBE_TIMEOUT=10s.
func NewCobraFlags(rootCmd *cobra.Command, probeTimeout time.Duration) ports.FlagsProvider {
	g := &CobraFlags{rootCmd: rootCmd, v: viper.New()}
	g.globalFlags(probeTimeout)
	return g
}

func (g *CobraFlags) globalFlags(probeTimeout time.Duration) {
	pf := g.rootCmd.PersistentFlags()
	pf.Bool(FlagDebug, false, "Enable debug logging")
	pf.String(FlagConfigDir, "", "Config directory path (default: <user config dir>/sshdock)")
	pf.Duration(FlagProbeTimeout, probeTimeout, "Ceiling for a single connectivity test")
	pf.String(FlagImportSSHConfig, "", "Import Host entries from an OpenSSH config file before starting")
	pf.Lookup(FlagImportSSHConfig).NoOptDefVal = DefaultSSHConfigPath
	pf.Bool(FlagResetCorrupt, false, "Move an unreadable store aside and start empty without asking")

	g.v.SetEnvPrefix(EnvPrefix)
	g.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	g.v.AutomaticEnv()
	_ = g.v.BindPFlags(pf)
}

func (c *CobraFlags) IsDebug() bool {
	return c.v.GetBool(FlagDebug)
}

func (c *CobraFlags) GetFlag(name string) string {
	return c.v.GetString(name)
}

func (c *CobraFlags) GetBool(name string) bool {
	return c.v.GetBool(name)
}

func (c *CobraFlags) GetDuration(name string) time.Duration {
	return c.v.GetDuration(name)
}

// Changed reports whether the flag was given on the command line or through the environment.
func (c *CobraFlags) Changed(name string) bool {
	if f := c.rootCmd.PersistentFlags().Lookup(name); f != nil && f.Changed {
		return true
	}
	return c.v.IsSet(name) && c.v.GetString(name) != ""
}
