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

package domain

import (
	"fmt"
	"time"
)

// ProbeStatus is the tag of a probe outcome.
type ProbeStatus int

const (
	ProbePending ProbeStatus = iota
	ProbeSuccess
	ProbeAuthFailed
	ProbeUnreachable
	ProbeTimedOut
)

func (s ProbeStatus) String() string {
	switch s {
	case ProbePending:
		return "pending"
	case ProbeSuccess:
		return "ok"
	case ProbeAuthFailed:
		return "auth failed"
	case ProbeUnreachable:
		return "unreachable"
	case ProbeTimedOut:
		return "timed out"
	default:
		return "unknown"
	}
}

// ProbeOutcome carries the status plus the payload of the tagged variants.
type ProbeOutcome struct {
	Status  ProbeStatus
	Latency time.Duration
	Reason  string
	// AuthVerified is false when a successful probe could only check the handshake.
	AuthVerified bool
}

func Pending() ProbeOutcome { return ProbeOutcome{Status: ProbePending} }

func Succeeded(latency time.Duration, authVerified bool) ProbeOutcome {
	return ProbeOutcome{Status: ProbeSuccess, Latency: latency, AuthVerified: authVerified}
}

func AuthFailed(reason string) ProbeOutcome {
	return ProbeOutcome{Status: ProbeAuthFailed, Reason: reason}
}

func Unreachable(reason string) ProbeOutcome {
	return ProbeOutcome{Status: ProbeUnreachable, Reason: reason}
}

func TimedOut() ProbeOutcome { return ProbeOutcome{Status: ProbeTimedOut} }

func (o ProbeOutcome) String() string {
	switch o.Status {
	case ProbeSuccess:
		s := fmt.Sprintf("ok (%s)", o.Latency.Round(time.Millisecond))
		if !o.AuthVerified {
			s += ", auth not verified"
		}
		return s
	case ProbeUnreachable, ProbeAuthFailed:
		if o.Reason != "" {
			return fmt.Sprintf("%s: %s", o.Status, o.Reason)
		}
	}
	return o.Status.String()
}

// ProbeResult is the latest known probe state of one profile.
type ProbeResult struct {
	ProfileID  string
	Generation uint64
	Outcome    ProbeOutcome
	At         time.Time
}

// ProbeTarget is everything the network layer needs for one attempt.
type ProbeTarget struct {
	Address string
	User    string
	Auth    ResolvedAuth
}

// ProbeRequest is one issued probe. Generation identifies it among probes of the same profile.
type ProbeRequest struct {
	ProfileID  string
	Generation uint64
	Target     ProbeTarget
}

// ResolvedAuth is the authentication material produced by the credential vault.
// Password is only ever held in memory.
type ResolvedAuth struct {
	Kind           AuthKind
	KeyPath        string
	PromptRequired bool
	Password       string
}

// HasSecret reports whether a password is available without prompting.
func (r ResolvedAuth) HasSecret() bool {
	return r.Password != ""
}
