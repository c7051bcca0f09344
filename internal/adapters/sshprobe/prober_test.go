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
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/Adembc/sshdock/internal/core/domain"
)

const testPassword = "hunter2"

type testServer struct {
	addr    string
	hostKey ssh.Signer
}

func newSigner(t *testing.T) (ssh.Signer, ed25519.PrivateKey) {
	t.Helper()
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	signer, err := ssh.NewSignerFromKey(priv)
	require.NoError(t, err)
	return signer, priv
}

// startServer accepts SSH connections on loopback until the test ends.
func startServer(t *testing.T, authorized ssh.PublicKey) *testServer {
	t.Helper()
	hostKey, _ := newSigner(t)
	config := &ssh.ServerConfig{
		PasswordCallback: func(_ ssh.ConnMetadata, password []byte) (*ssh.Permissions, error) {
			if string(password) == testPassword {
				return nil, nil
			}
			return nil, errors.New("wrong password")
		},
		PublicKeyCallback: func(_ ssh.ConnMetadata, key ssh.PublicKey) (*ssh.Permissions, error) {
			if authorized != nil && string(key.Marshal()) == string(authorized.Marshal()) {
				return nil, nil
			}
			return nil, errors.New("unknown key")
		},
	}
	config.AddHostKey(hostKey)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func() {
				defer conn.Close()
				sconn, chans, reqs, err := ssh.NewServerConn(conn, config)
				if err != nil {
					return
				}
				go ssh.DiscardRequests(reqs)
				go func() {
					for ch := range chans {
						_ = ch.Reject(ssh.Prohibited, "probe server")
					}
				}()
				_ = sconn.Wait()
			}()
		}
	}()

	return &testServer{addr: ln.Addr().String(), hostKey: hostKey}
}

func newTestProber(t *testing.T, knownHosts string) *Prober {
	t.Helper()
	p := New(zaptest.NewLogger(t).Sugar(), knownHosts)
	p.agentSocket = func() string { return "" }
	return p
}

func probe(t *testing.T, p *Prober, target domain.ProbeTarget) domain.ProbeOutcome {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return p.Probe(ctx, target)
}

func TestProbe_PasswordAccepted(t *testing.T) {
	srv := startServer(t, nil)
	p := newTestProber(t, "")

	out := probe(t, p, domain.ProbeTarget{
		Address: srv.addr,
		User:    "root",
		Auth:    domain.ResolvedAuth{Kind: domain.AuthPassword, PromptRequired: true, Password: testPassword},
	})

	assert.Equal(t, domain.ProbeSuccess, out.Status, out.String())
	assert.True(t, out.AuthVerified)
	assert.Positive(t, out.Latency)
}

func TestProbe_PasswordRejected(t *testing.T) {
	srv := startServer(t, nil)
	p := newTestProber(t, "")

	out := probe(t, p, domain.ProbeTarget{
		Address: srv.addr,
		User:    "root",
		Auth:    domain.ResolvedAuth{Kind: domain.AuthPassword, PromptRequired: true, Password: "nope"},
	})

	assert.Equal(t, domain.ProbeAuthFailed, out.Status, out.String())
}

func TestProbe_PasswordUnknownChecksHandshakeOnly(t *testing.T) {
	srv := startServer(t, nil)
	p := newTestProber(t, "")

	out := probe(t, p, domain.ProbeTarget{
		Address: srv.addr,
		User:    "root",
		Auth:    domain.ResolvedAuth{Kind: domain.AuthPassword, PromptRequired: true},
	})

	assert.Equal(t, domain.ProbeSuccess, out.Status, out.String())
	assert.False(t, out.AuthVerified)
}

func TestProbe_KeyFile(t *testing.T) {
	signer, priv := newSigner(t)
	srv := startServer(t, signer.PublicKey())
	p := newTestProber(t, "")

	block, err := ssh.MarshalPrivateKey(priv, "")
	require.NoError(t, err)
	keyPath := filepath.Join(t.TempDir(), "id_ed25519")
	require.NoError(t, os.WriteFile(keyPath, pem.EncodeToMemory(block), 0o600))

	out := probe(t, p, domain.ProbeTarget{
		Address: srv.addr,
		User:    "deploy",
		Auth:    domain.ResolvedAuth{Kind: domain.AuthKeyFile, KeyPath: keyPath},
	})
	assert.Equal(t, domain.ProbeSuccess, out.Status, out.String())
	assert.True(t, out.AuthVerified)

	_, otherPriv := newSigner(t)
	block, err = ssh.MarshalPrivateKey(otherPriv, "")
	require.NoError(t, err)
	otherPath := filepath.Join(t.TempDir(), "id_other")
	require.NoError(t, os.WriteFile(otherPath, pem.EncodeToMemory(block), 0o600))

	out = probe(t, p, domain.ProbeTarget{
		Address: srv.addr,
		User:    "deploy",
		Auth:    domain.ResolvedAuth{Kind: domain.AuthAutoKey, KeyPath: otherPath},
	})
	assert.Equal(t, domain.ProbeAuthFailed, out.Status, out.String())
}

func TestProbe_UnparseableKeyIsAuthFailure(t *testing.T) {
	keyPath := filepath.Join(t.TempDir(), "garbage")
	require.NoError(t, os.WriteFile(keyPath, []byte("not a key"), 0o600))
	p := newTestProber(t, "")

	out := probe(t, p, domain.ProbeTarget{
		Address: "127.0.0.1:1",
		User:    "u",
		Auth:    domain.ResolvedAuth{Kind: domain.AuthKeyFile, KeyPath: keyPath},
	})

	assert.Equal(t, domain.ProbeAuthFailed, out.Status)
}

func TestProbe_ConnectionRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	out := probe(t, newTestProber(t, ""), domain.ProbeTarget{Address: addr, User: "u"})

	assert.Equal(t, domain.ProbeUnreachable, out.Status)
	assert.Equal(t, "connection refused", out.Reason)
}

func TestProbe_SilentServerTimesOut(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	done := make(chan struct{})
	t.Cleanup(func() {
		close(done)
		ln.Close()
	})
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		<-done
		conn.Close()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	out := newTestProber(t, "").Probe(ctx, domain.ProbeTarget{Address: ln.Addr().String(), User: "u"})

	assert.Equal(t, domain.ProbeTimedOut, out.Status)
}

func TestProbe_HostKeyMismatch(t *testing.T) {
	srv := startServer(t, nil)
	imposter, _ := newSigner(t)
	knownHosts := filepath.Join(t.TempDir(), "known_hosts")
	line := knownhosts.Line([]string{knownhosts.Normalize(srv.addr)}, imposter.PublicKey())
	require.NoError(t, os.WriteFile(knownHosts, []byte(line+"\n"), 0o600))

	out := probe(t, newTestProber(t, knownHosts), domain.ProbeTarget{
		Address: srv.addr,
		User:    "root",
		Auth:    domain.ResolvedAuth{Kind: domain.AuthPassword, Password: testPassword},
	})

	assert.Equal(t, domain.ProbeUnreachable, out.Status)
	assert.Contains(t, out.Reason, "host key")
}

func TestProbe_UnknownHostIsAccepted(t *testing.T) {
	srv := startServer(t, nil)
	other, _ := newSigner(t)
	knownHosts := filepath.Join(t.TempDir(), "known_hosts")
	line := knownhosts.Line([]string{"elsewhere.example.com"}, other.PublicKey())
	require.NoError(t, os.WriteFile(knownHosts, []byte(line+"\n"), 0o600))

	out := probe(t, newTestProber(t, knownHosts), domain.ProbeTarget{
		Address: srv.addr,
		User:    "root",
		Auth:    domain.ResolvedAuth{Kind: domain.AuthPassword, Password: testPassword},
	})

	assert.Equal(t, domain.ProbeSuccess, out.Status, out.String())
}

func TestCategorize(t *testing.T) {
	tests := []struct {
		err    error
		status domain.ProbeStatus
		reason string
	}{
		{errors.New("dial tcp 10.0.0.5:22: i/o timeout"), domain.ProbeTimedOut, ""},
		{errors.New("dial tcp 10.0.0.5:22: connect: connection refused"), domain.ProbeUnreachable, "connection refused"},
		{errors.New("dial tcp 10.0.0.5:22: connect: no route to host"), domain.ProbeUnreachable, "host unreachable"},
		{errors.New("dial tcp: lookup nope.invalid: no such host"), domain.ProbeUnreachable, "unknown host"},
		{errors.New("ssh: handshake failed: ssh: unable to authenticate, attempted methods [none password], no supported methods remain"), domain.ProbeAuthFailed, "permission denied"},
		{fmt.Errorf("ssh: handshake failed: %w", &HostKeyMismatchError{Hostname: "h", ReceivedType: "ssh-ed25519"}), domain.ProbeUnreachable, "host key mismatch"},
		{errors.New("ssh: handshake failed: EOF"), domain.ProbeUnreachable, "connection closed by remote"},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			out := categorize(context.Background(), tt.err)
			assert.Equal(t, tt.status, out.Status)
			assert.Equal(t, tt.reason, out.Reason)
		})
	}
}

func TestCategorize_DeadlineWins(t *testing.T) {
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	out := categorize(ctx, errors.New("use of closed network connection"))

	assert.Equal(t, domain.ProbeTimedOut, out.Status)
}
