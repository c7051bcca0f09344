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

import (
	"context"

	"github.com/Adembc/sshdock/internal/core/domain"
)

// CredentialVault resolves how a profile authenticates. Secrets stay in memory.
type CredentialVault interface {
	ResolveAuth(p domain.Profile) (domain.ResolvedAuth, error)
	// KeyCandidates lists the discoverable private keys in preference order.
	KeyCandidates() []string
	Remember(profileID, password string)
	Forget(profileID string)
	Clear()
}

// ProbeDispatcher starts a probe and returns immediately.
type ProbeDispatcher interface {
	Dispatch(req domain.ProbeRequest)
}

// Prober performs one blocking connectivity attempt. It must honor ctx.
type Prober interface {
	Probe(ctx context.Context, target domain.ProbeTarget) domain.ProbeOutcome
}

// SessionLauncher runs the external ssh client in the foreground.
type SessionLauncher interface {
	Launch(p domain.Profile, auth domain.ResolvedAuth) error
	Command(p domain.Profile, auth domain.ResolvedAuth) string
}
