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
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Adembc/sshdock/internal/core/domain"
)

type sessionLauncher struct {
	logger     *zap.SugaredLogger
	sshCommand func() string
	newCommand func(name string, args ...string) *exec.Cmd
	stdin      io.Reader
	stdout     io.Writer
	stderr     io.Writer
}

// NewSessionLauncher runs the ssh executable named by sshCommand on the process' own terminal.
func NewSessionLauncher(logger *zap.SugaredLogger, sshCommand func() string) *sessionLauncher {
	return &sessionLauncher{
		logger:     logger,
		sshCommand: sshCommand,
		newCommand: exec.Command,
		stdin:      os.Stdin,
		stdout:     os.Stdout,
		stderr:     os.Stderr,
	}
}

// Launch blocks until the ssh process exits. The caller must have released the terminal.
func (l *sessionLauncher) Launch(p domain.Profile, auth domain.ResolvedAuth) error {
	name := l.sshCommand()
	args := BuildSSHArgs(p, auth)

	cmd := l.newCommand(name, args...)
	if cmd == nil {
		return &domain.LaunchFailedError{ExitStatus: -1, Cause: errors.New("no command to run")}
	}
	if cmd.Stdin == nil {
		cmd.Stdin = l.stdin
	}
	if cmd.Stdout == nil {
		cmd.Stdout = l.stdout
	}
	if cmd.Stderr == nil {
		cmd.Stderr = l.stderr
	}
	env := cmd.Env
	if env == nil {
		env = os.Environ()
	}
	cmd.Env = append(env, "TERM=xterm-256color")

	l.logger.Infow("connection start", "profile", p.ID, "name", p.Name, "command", name, "args", args)

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			l.logger.Errorw("ssh exited abnormally", "profile", p.ID, "status", exitErr.ExitCode())
			return &domain.LaunchFailedError{ExitStatus: exitErr.ExitCode(), Cause: err}
		}
		l.logger.Errorw("ssh could not be started", "profile", p.ID, "error", err)
		return &domain.LaunchFailedError{ExitStatus: -1, Cause: err}
	}

	l.logger.Infow("connection end", "profile", p.ID)
	return nil
}

// Command renders the invocation as a copy-pasteable shell line.
func (l *sessionLauncher) Command(p domain.Profile, auth domain.ResolvedAuth) string {
	parts := []string{l.sshCommand()}
	for _, a := range BuildSSHArgs(p, auth) {
		parts = append(parts, quoteIfNeeded(a))
	}
	return strings.Join(parts, " ")
}

// BuildSSHArgs constructs the ssh arguments for a profile.
// Format: [-p PORT if not 22] [-i KEY -o IdentitiesOnly=yes] [-o PreferredAuthentications=...] user@host
func BuildSSHArgs(p domain.Profile, auth domain.ResolvedAuth) []string {
	var args []string
	if p.Port != 0 && p.Port != domain.DefaultPort {
		args = append(args, "-p", strconv.Itoa(p.Port))
	}
	switch {
	case auth.KeyPath != "":
		args = append(args, "-i", auth.KeyPath, "-o", "IdentitiesOnly=yes")
	case auth.PromptRequired:
		args = append(args, "-o", "PreferredAuthentications=keyboard-interactive,password")
	}
	return append(args, p.Destination())
}

func quoteIfNeeded(val string) string {
	if strings.ContainsAny(val, " \t\"'") {
		return fmt.Sprintf("%q", val)
	}
	return val
}
