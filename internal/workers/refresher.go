// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"
	"time"

	"github.com/MKhiriev/go-otp-keeper/internal/adapter"
	"github.com/MKhiriev/go-otp-keeper/internal/clock"
	"github.com/MKhiriev/go-otp-keeper/internal/logger"
	"github.com/MKhiriev/go-otp-keeper/internal/totp"
	"github.com/MKhiriev/go-otp-keeper/models"
	"github.com/sethvargo/go-retry"
)

const maxRetryDelay = time.Minute

// Snapshot is one refresh of the account list.
type Snapshot struct {
	Accounts  []models.AccountView
	FetchedAt time.Time
	Err       error
}

// CodeRefresher keeps the client's account list current. It fetches the
// list once on start, then again whenever the earliest code in the last
// snapshot rolls over, or when Trigger is called. Failed fetches are retried
// with an exponential backoff capped at one minute.
type CodeRefresher struct {
	adapter  adapter.ServerAdapter
	clock    clock.Clock
	interval time.Duration

	updates chan Snapshot
	trigger chan struct{}
	backoff retry.Backoff

	logger *logger.Logger
}

// NewCodeRefresher creates a refresher that checks for rollovers every
// interval.
func NewCodeRefresher(serverAdapter adapter.ServerAdapter, clk clock.Clock, interval time.Duration, logger *logger.Logger) *CodeRefresher {
	return &CodeRefresher{
		adapter:  serverAdapter,
		clock:    clk,
		interval: interval,
		updates:  make(chan Snapshot),
		trigger:  make(chan struct{}, 1),
		logger:   logger,
	}
}

// Updates delivers snapshots. The channel is unbuffered and is closed when
// the refresher stops.
func (r *CodeRefresher) Updates() <-chan Snapshot {
	return r.updates
}

// Trigger requests an immediate refresh. Calls made before the resulting
// snapshot has been received are coalesced into one refresh.
func (r *CodeRefresher) Trigger() {
	select {
	case r.trigger <- struct{}{}:
	default:
	}
}

// Run implements [Worker].
func (r *CodeRefresher) Run(ctx context.Context) {
	go r.loop(ctx)
}

func (r *CodeRefresher) loop(ctx context.Context) {
	defer close(r.updates)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	next, ok := r.refresh(ctx)
	if !ok {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.trigger:
		case <-ticker.C:
			if r.clock.Now().Before(next) {
				continue
			}
		}

		if next, ok = r.refresh(ctx); !ok {
			return
		}
	}
}

// refresh fetches and publishes one snapshot and returns when the next one
// is due. ok is false once ctx is done.
func (r *CodeRefresher) refresh(ctx context.Context) (next time.Time, ok bool) {
	now := r.clock.Now()
	accounts, err := r.adapter.ListAccounts(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return time.Time{}, false
		}
		r.logger.Err(err).Msg("refresh account list")
	} else {
		r.logger.Debug().Int("accounts", len(accounts)).Msg("account list refreshed")
	}

	snapshot := Snapshot{Accounts: accounts, FetchedAt: now, Err: err}

	select {
	case <-ctx.Done():
		return time.Time{}, false
	case r.updates <- snapshot:
	}

	// the snapshot just delivered already answers any pending trigger
	select {
	case <-r.trigger:
	default:
	}

	if err != nil {
		return now.Add(r.retryDelay()), true
	}
	r.backoff = nil
	return NextRollover(now, accounts), true
}

func (r *CodeRefresher) retryDelay() time.Duration {
	if r.backoff == nil {
		r.backoff = retry.WithCappedDuration(maxRetryDelay, retry.NewExponential(r.interval))
	}
	delay, _ := r.backoff.Next()
	return delay
}

// NextRollover returns the earliest instant at which one of the codes
// fetched at now stops being valid. Without accounts the next default period
// boundary is used.
func NextRollover(now time.Time, accounts []models.AccountView) time.Time {
	remaining := totp.RemainingSeconds(now.Unix(), totp.DefaultPeriod)
	if len(accounts) > 0 {
		remaining = 0
	}

	for _, account := range accounts {
		left := totp.RemainingSeconds(now.Unix(), account.Code.Period)
		if remaining == 0 || left < remaining {
			remaining = left
		}
	}

	return time.Unix(now.Unix()+int64(remaining), 0)
}
