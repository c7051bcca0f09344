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
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/Adembc/sshdock/internal/core/domain"
	"github.com/Adembc/sshdock/internal/core/ports"
)

const (
	// DefaultProbeTimeout bounds every probe; a probe still running then resolves to TimedOut.
	DefaultProbeTimeout = 5 * time.Second
	// DefaultProbeWorkers is how many probes may touch the network at once.
	DefaultProbeWorkers = 4
)

// ProbeReport delivers a finished probe. It is called from a probe goroutine and
// must hand the result over to the UI loop rather than touching UI state itself.
type ProbeReport func(req domain.ProbeRequest, outcome domain.ProbeOutcome, at time.Time)

type inflightProbe struct {
	generation uint64
	cancel     context.CancelFunc
}

type probeEngine struct {
	prober  ports.Prober
	report  ProbeReport
	logger  *zap.SugaredLogger
	timeout time.Duration
	workers *semaphore.Weighted
	now     func() time.Time

	base     context.Context
	stop     context.CancelFunc
	wg       sync.WaitGroup
	mu       sync.Mutex
	inflight map[string]inflightProbe
}

// NewProbeEngine runs probes in the background. timeout <= 0 selects DefaultProbeTimeout.
func NewProbeEngine(logger *zap.SugaredLogger, prober ports.Prober, timeout time.Duration, report ProbeReport) *probeEngine {
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	base, stop := context.WithCancel(context.Background())
	return &probeEngine{
		prober:   prober,
		report:   report,
		logger:   logger,
		timeout:  timeout,
		workers:  semaphore.NewWeighted(DefaultProbeWorkers),
		now:      time.Now,
		base:     base,
		stop:     stop,
		inflight: make(map[string]inflightProbe),
	}
}

// Dispatch starts req and returns immediately. A probe already running for the
// same profile is cancelled; its result, if it still arrives, is not reported.
func (e *probeEngine) Dispatch(req domain.ProbeRequest) {
	ctx, cancel := context.WithTimeout(e.base, e.timeout)

	e.mu.Lock()
	if prev, ok := e.inflight[req.ProfileID]; ok {
		prev.cancel()
		e.logger.Debugw("probe superseded", "profile", req.ProfileID, "generation", prev.generation)
	}
	e.inflight[req.ProfileID] = inflightProbe{generation: req.Generation, cancel: cancel}
	e.mu.Unlock()

	e.wg.Add(1)
	go e.run(ctx, cancel, req)
}

// Close cancels running probes and waits for their goroutines to finish,
// including prober calls that keep running after cancellation.
func (e *probeEngine) Close() {
	e.stop()
	e.wg.Wait()
}

func (e *probeEngine) run(ctx context.Context, cancel context.CancelFunc, req domain.ProbeRequest) {
	defer e.wg.Done()
	defer cancel()
	defer e.release(req)

	start := e.now()
	outcome, ok := e.attempt(ctx, req)
	if !ok {
		e.logger.Debugw("probe dropped", "profile", req.ProfileID, "generation", req.Generation)
		return
	}
	e.logger.Infow("probe finished",
		"profile", req.ProfileID,
		"generation", req.Generation,
		"status", outcome.Status.String(),
		"reason", outcome.Reason,
		"elapsed", e.now().Sub(start))
	e.report(req, outcome, e.now())
}

// attempt waits for a worker slot and the prober, whichever of them or the
// deadline comes first. ok is false when the probe was cancelled rather than timed out.
// The worker slot is held until the prober returns, even after attempt gave up on it.
func (e *probeEngine) attempt(ctx context.Context, req domain.ProbeRequest) (domain.ProbeOutcome, bool) {
	if err := e.workers.Acquire(ctx, 1); err != nil {
		return e.fromContext(ctx)
	}

	done := make(chan domain.ProbeOutcome, 1)
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer e.workers.Release(1)
		done <- e.prober.Probe(ctx, req.Target)
	}()

	select {
	case outcome := <-done:
		if ctx.Err() != nil {
			return e.fromContext(ctx)
		}
		return outcome, true
	case <-ctx.Done():
		return e.fromContext(ctx)
	}
}

func (e *probeEngine) fromContext(ctx context.Context) (domain.ProbeOutcome, bool) {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return domain.TimedOut(), true
	}
	return domain.ProbeOutcome{}, false
}

func (e *probeEngine) release(req domain.ProbeRequest) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if cur, ok := e.inflight[req.ProfileID]; ok && cur.generation == req.Generation {
		delete(e.inflight, req.ProfileID)
	}
}

// InFlight reports how many profiles currently have a probe running.
func (e *probeEngine) InFlight() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.inflight)
}
