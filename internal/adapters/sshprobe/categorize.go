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
	"net"
	"strings"

	"github.com/Adembc/sshdock/internal/core/domain"
)

// categorize maps a dial or handshake error onto a probe outcome.
func categorize(ctx context.Context, err error) domain.ProbeOutcome {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return domain.TimedOut()
	}

	var mismatch *HostKeyMismatchError
	if errors.As(err, &mismatch) {
		return domain.Unreachable("host key mismatch")
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return domain.TimedOut()
	}

	errStr := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errStr, "timeout"):
		return domain.TimedOut()
	case strings.Contains(errStr, "connection refused"):
		return domain.Unreachable("connection refused")
	case strings.Contains(errStr, "no route to host"),
		strings.Contains(errStr, "network is unreachable"),
		strings.Contains(errStr, "host is down"):
		return domain.Unreachable("host unreachable")
	case strings.Contains(errStr, "no such host"):
		return domain.Unreachable("unknown host")
	case isAuthError(err):
		return domain.AuthFailed("permission denied")
	case strings.Contains(errStr, "host key"):
		return domain.Unreachable("host key rejected")
	case strings.Contains(errStr, "connection reset"), strings.Contains(errStr, "eof"):
		return domain.Unreachable("connection closed by remote")
	}
	return domain.Unreachable(err.Error())
}

func isAuthError(err error) bool {
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "unable to authenticate") ||
		strings.Contains(errStr, "no supported methods") ||
		strings.Contains(errStr, "permission denied") ||
		strings.Contains(errStr, "authentication failed")
}
