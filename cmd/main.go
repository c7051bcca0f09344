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
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Adembc/sshdock/internal/adapters/config"
	"github.com/Adembc/sshdock/internal/adapters/data/file"
	"github.com/Adembc/sshdock/internal/adapters/data/ssh_config_file"
	"github.com/Adembc/sshdock/internal/adapters/flags"
	"github.com/Adembc/sshdock/internal/adapters/logger"
	"github.com/Adembc/sshdock/internal/adapters/sshprobe"
	"github.com/Adembc/sshdock/internal/adapters/ui"
	"github.com/Adembc/sshdock/internal/core/appstate"
	"github.com/Adembc/sshdock/internal/core/domain"
	"github.com/Adembc/sshdock/internal/core/ports"
	"github.com/Adembc/sshdock/internal/core/services"
)

var (
	version   = "develop"
	gitCommit = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   ui.AppName,
		Short: "Keyboard-driven SSH connection manager",
	}
	rootCmd.SilenceUsage = true

	fl := flags.NewCobraFlags(rootCmd, services.DefaultProbeTimeout)
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return run(fl)
	}
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\n", ui.AppName, version, gitCommit)
		},
	})

	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(fl ports.FlagsProvider) error {
	cfg, err := config.NewOSConfig(fl.GetFlag(flags.FlagConfigDir))
	if err != nil {
		return err
	}
	if err := cfg.EnsureDirs(); err != nil {
		return fmt.Errorf("failed to create config directory %s: %w", cfg.ConfigDir(), err)
	}

	log, err := logger.New(cfg.LogPath(logger.FileName), fl.IsDebug())
	if err != nil {
		return err
	}
	//nolint:errcheck // log.Sync may return an error which is safe to ignore here
	defer log.Sync()

	fs := file.NewOSFileSystem()
	repo := file.NewProfileRepo(log, fs, cfg.StorePath())
	store := services.NewProfileStore(log, repo)
	prompt := terminalPrompt{in: os.Stdin, out: os.Stderr}
	if err := loadStore(log, store, repo, fl.GetBool(flags.FlagResetCorrupt), prompt); err != nil {
		return err
	}

	if fl.Changed(flags.FlagImportSSHConfig) {
		path := cfg.ExpandHome(fl.GetFlag(flags.FlagImportSSHConfig))
		importer := ssh_config_file.NewImporter(log, fs, currentUser())
		added, err := importSSHConfig(log, importer, store, path)
		if err != nil {
			return fmt.Errorf("failed to import %s: %w", path, err)
		}
		_, _ = fmt.Fprintf(os.Stderr, "imported %d profiles from %s\n", added, path)
	}

	vault := services.NewCredentialVault(log, fs, cfg, store.Settings)
	inbox := make(chan appstate.Event, 64)
	done := make(chan struct{})
	engine := services.NewProbeEngine(log, sshprobe.New(log, cfg.KnownHostsPath()), fl.GetDuration(flags.FlagProbeTimeout),
		func(req domain.ProbeRequest, outcome domain.ProbeOutcome, at time.Time) {
			ev := appstate.ProbeCompleted{ProfileID: req.ProfileID, Generation: req.Generation, Outcome: outcome, At: at}
			select {
			case inbox <- ev:
			case <-done:
			}
		})
	launcher := services.NewSessionLauncher(log, func() string { return store.Settings().SSHCommand })
	state := appstate.New(log, store, vault, engine, launcher)

	err = ui.NewTUI(log, state, launcher, inbox, version, gitCommit).Run()
	close(done)
	engine.Close()
	vault.Clear()
	return err
}
