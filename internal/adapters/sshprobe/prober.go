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

package sshprobe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/Adembc/sshdock/internal/core/domain"
)

const clientVersion = "SSH-2.0-sshdock-probe"

// HostKeyMismatchError means the server presented a key that differs from known_hosts.
type HostKeyMismatchError struct {
	Hostname     string
	ReceivedType string
	KnownHosts   string
}

func (e *HostKeyMismatchError) Error() string {
	return fmt.Sprintf("host key mismatch for %s (got %s, see %s)", e.Hostname, e.ReceivedType, e.KnownHosts)
}

// EncryptedKeyError means a private key needs a passphrase we do not have.
type EncryptedKeyError struct {
	Path string
}

func (e *EncryptedKeyError) Error() string {
	return "key " + e.Path + " is passphrase-protected"
}

// Prober opens an SSH connection, authenticates, and closes it again.
type Prober struct {
	logger         *zap.SugaredLogger
	knownHostsPath string
	agentSocket    func() string
	readFile       func(string) ([]byte, error)
	dialer         net.Dialer
	now            func() time.Time
}

// New returns a Prober that checks host keys against knownHostsPath when that file exists.
func New(logger *zap.SugaredLogger, knownHostsPath string) *Prober {
	return &Prober{
		logger:         logger,
		knownHostsPath: knownHostsPath,
		agentSocket:    func() string { return os.Getenv("SSH_AUTH_SOCK") },
		readFile:       os.ReadFile,
		now:            time.Now,
	}
}

// Probe never returns an error; every failure maps onto an outcome.
func (p *Prober) Probe(ctx context.Context, target domain.ProbeTarget) domain.ProbeOutcome {
	start := p.now()

	auth, closeAuth, authErr := p.authMethods(target.Auth)
	defer closeAuth()
	if authErr != nil {
		var encErr *EncryptedKeyError
		if !errors.As(authErr, &encErr) {
			return domain.AuthFailed(authErr.Error())
		}
		p.logger.Debugw("falling back to handshake-only probe", "address", target.Address, "reason", authErr)
	}
	verifyAuth := len(auth) > 0

	conn, err := p.dialer.DialContext(ctx, "tcp", target.Address)
	if err != nil {
		return categorize(ctx, err)
	}
	defer conn.Close()
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	var keyExchanged atomic.Bool
	hostKeyCallback, err := p.hostKeyCallback()
	if err != nil {
		p.logger.Warnw("ignoring unreadable known_hosts", "path", p.knownHostsPath, "error", err)
		hostKeyCallback = ssh.InsecureIgnoreHostKey() //nolint:gosec // probe never sends data
	}
	config := &ssh.ClientConfig{
		User: target.User,
		Auth: auth,
		HostKeyCallback: func(hostname string, remote net.Addr, key ssh.PublicKey) error {
			if err := hostKeyCallback(hostname, remote, key); err != nil {
				return err
			}
			keyExchanged.Store(true)
			return nil
		},
		ClientVersion: clientVersion,
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, target.Address, config)
	if err != nil {
		if !verifyAuth && keyExchanged.Load() && ctx.Err() == nil && isAuthError(err) {
			return domain.Succeeded(p.now().Sub(start), false)
		}
		return categorize(ctx, err)
	}
	client := ssh.NewClient(sshConn, chans, reqs)
	latency := p.now().Sub(start)
	_ = client.Close()

	return domain.Succeeded(latency, verifyAuth)
}

// authMethods builds what the probe may authenticate with. An empty result means
// only the handshake can be checked.
func (p *Prober) authMethods(auth domain.ResolvedAuth) ([]ssh.AuthMethod, func(), error) {
	var methods []ssh.AuthMethod
	closeAuth := func() {}

	switch auth.Kind {
	case domain.AuthPassword:
		if auth.HasSecret() {
			methods = append(methods, ssh.Password(auth.Password), ssh.KeyboardInteractive(answerAll(auth.Password)))
		}
		return methods, closeAuth, nil

	case domain.AuthKeyFile, domain.AuthAutoKey:
		signer, keyErr := p.keySigner(auth.KeyPath)
		if keyErr == nil {
			methods = append(methods, ssh.PublicKeys(signer))
		}
		var encErr *EncryptedKeyError
		if keyErr != nil && !errors.As(keyErr, &encErr) {
			return nil, closeAuth, keyErr
		}
		if agentAuth, closer := p.agentAuth(); agentAuth != nil {
			methods = append(methods, agentAuth)
			closeAuth = closer
			keyErr = nil
		}
		return methods, closeAuth, keyErr
	}
	return nil, closeAuth, nil
}

func (p *Prober) keySigner(path string) (ssh.Signer, error) {
	data, err := p.readFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read key %s: %w", path, err)
	}
	signer, err := ssh.ParsePrivateKey(data)
	if err != nil {
		var missing *ssh.PassphraseMissingError
		if errors.As(err, &missing) || strings.Contains(err.Error(), "encrypted") {
			return nil, &EncryptedKeyError{Path: path}
		}
		return nil, fmt.Errorf("cannot parse key %s: %w", path, err)
	}
	return signer, nil
}

// agentAuth offers the agent's keys when an agent with at least one key is running.
func (p *Prober) agentAuth() (ssh.AuthMethod, func()) {
	socket := p.agentSocket()
	if socket == "" {
		return nil, nil
	}
	conn, err := net.Dial("unix", socket)
	if err != nil {
		return nil, nil
	}
	client := agent.NewClient(conn)
	signers, err := client.Signers()
	if err != nil || len(signers) == 0 {
		conn.Close()
		return nil, nil
	}
	return ssh.PublicKeysCallback(client.Signers), func() { conn.Close() }
}

// hostKeyCallback accepts hosts missing from known_hosts and rejects changed keys.
func (p *Prober) hostKeyCallback() (ssh.HostKeyCallback, error) {
	if p.knownHostsPath == "" {
		return ssh.InsecureIgnoreHostKey(), nil //nolint:gosec // no known_hosts configured
	}
	if _, err := os.Stat(p.knownHostsPath); os.IsNotExist(err) {
		return ssh.InsecureIgnoreHostKey(), nil //nolint:gosec // nothing to compare against
	}
	callback, err := knownhosts.New(p.knownHostsPath)
	if err != nil {
		return nil, err
	}
	return func(hostname string, remote net.Addr, key ssh.PublicKey) error {
		err := callback(hostname, remote, key)
		var keyErr *knownhosts.KeyError
		if errors.As(err, &keyErr) {
			if len(keyErr.Want) == 0 {
				return nil
			}
			return &HostKeyMismatchError{
				Hostname:     hostname,
				ReceivedType: key.Type(),
				KnownHosts:   p.knownHostsPath,
			}
		}
		return err
	}, nil
}

func answerAll(password string) ssh.KeyboardInteractiveChallenge {
	return func(_, _ string, questions []string, _ []bool) ([]string, error) {
		answers := make([]string, len(questions))
		for i := range answers {
			answers[i] = password
		}
		return answers, nil
	}
}
