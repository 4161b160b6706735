package workers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/MKhiriev/go-otp-keeper/internal/logger"
	"github.com/MKhiriev/go-otp-keeper/internal/mock"
	"github.com/MKhiriev/go-otp-keeper/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const testInterval = 5 * time.Millisecond

// manualClock is a clock the test moves by hand.
type manualClock struct {
	mu sync.Mutex
	at time.Time
}

func newManualClock(unix int64) *manualClock {
	return &manualClock{at: time.Unix(unix, 0)}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.at
}

func (c *manualClock) Set(unix int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.at = time.Unix(unix, 0)
}

func account(id string, period int) models.AccountView {
	return models.AccountView{ID: id, Code: models.Code{Code: "123456", Period: period, Digits: 6}}
}

func receive(t *testing.T, r *CodeRefresher) Snapshot {
	t.Helper()
	select {
	case s, ok := <-r.Updates():
		require.True(t, ok, "updates channel closed")
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return Snapshot{}
	}
}

func assertQuiet(t *testing.T, r *CodeRefresher) {
	t.Helper()
	select {
	case s := <-r.Updates():
		t.Fatalf("unexpected snapshot: %+v", s)
	case <-time.After(20 * testInterval):
	}
}

func TestNextRollover(t *testing.T) {
	tests := []struct {
		name     string
		now      int64
		accounts []models.AccountView
		want     int64
	}{
		{name: "single account", now: 50, accounts: []models.AccountView{account("a", 30)}, want: 60},
		{name: "earliest of mixed periods", now: 65, accounts: []models.AccountView{account("a", 60), account("b", 30)}, want: 90},
		{name: "exact boundary is a full period", now: 60, accounts: []models.AccountView{account("a", 30)}, want: 90},
		{name: "zero period uses default", now: 10, accounts: []models.AccountView{account("a", 0)}, want: 30},
		{name: "no accounts", now: 65, want: 90},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextRollover(time.Unix(tt.now, 0), tt.accounts)
			assert.Equal(t, tt.want, got.Unix())
		})
	}
}

func TestCodeRefresher_RefreshesOnRollover(t *testing.T) {
	ctrl := gomock.NewController(t)
	adapter := mock.NewMockServerAdapter(ctrl)
	clk := newManualClock(50)

	adapter.EXPECT().ListAccounts(gomock.Any()).Return([]models.AccountView{account("a", 30)}, nil).Times(2)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := NewCodeRefresher(adapter, clk, testInterval, logger.Nop())
	r.Run(ctx)

	first := receive(t, r)
	require.NoError(t, first.Err)
	assert.Len(t, first.Accounts, 1)
	assert.Equal(t, int64(50), first.FetchedAt.Unix())

	// still inside the same period
	assertQuiet(t, r)

	clk.Set(60)
	second := receive(t, r)
	assert.Equal(t, int64(60), second.FetchedAt.Unix())

	// next rollover is at 90
	assertQuiet(t, r)
}

func TestCodeRefresher_Trigger(t *testing.T) {
	ctrl := gomock.NewController(t)
	adapter := mock.NewMockServerAdapter(ctrl)

	adapter.EXPECT().ListAccounts(gomock.Any()).Return(nil, nil).Times(2)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := NewCodeRefresher(adapter, newManualClock(50), testInterval, logger.Nop())
	r.Run(ctx)

	receive(t, r)

	r.Trigger()
	r.Trigger()
	r.Trigger()
	receive(t, r)

	assertQuiet(t, r)
}

func TestCodeRefresher_TriggerAfterSnapshot(t *testing.T) {
	ctrl := gomock.NewController(t)
	adapter := mock.NewMockServerAdapter(ctrl)

	adapter.EXPECT().ListAccounts(gomock.Any()).Return(nil, nil).Times(3)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := NewCodeRefresher(adapter, newManualClock(50), testInterval, logger.Nop())
	r.Run(ctx)

	receive(t, r)

	r.Trigger()
	receive(t, r)

	r.Trigger()
	receive(t, r)

	assertQuiet(t, r)
}

func TestCodeRefresher_RetriesAfterError(t *testing.T) {
	ctrl := gomock.NewController(t)
	adapter := mock.NewMockServerAdapter(ctrl)
	clk := newManualClock(50)
	errDown := errors.New("connection refused")

	gomock.InOrder(
		adapter.EXPECT().ListAccounts(gomock.Any()).Return(nil, errDown),
		adapter.EXPECT().ListAccounts(gomock.Any()).Return([]models.AccountView{account("a", 30)}, nil),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := NewCodeRefresher(adapter, clk, testInterval, logger.Nop())
	r.Run(ctx)

	failed := receive(t, r)
	assert.ErrorIs(t, failed.Err, errDown)
	assert.Empty(t, failed.Accounts)

	// the backoff delay has not elapsed on the frozen clock
	assertQuiet(t, r)

	clk.Set(51)
	recovered := receive(t, r)
	require.NoError(t, recovered.Err)
	assert.Len(t, recovered.Accounts, 1)
}

func TestCodeRefresher_StopsOnCancel(t *testing.T) {
	ctrl := gomock.NewController(t)
	adapter := mock.NewMockServerAdapter(ctrl)

	adapter.EXPECT().ListAccounts(gomock.Any()).Return(nil, nil).AnyTimes()

	ctx, cancel := context.WithCancel(context.Background())

	r := NewCodeRefresher(adapter, newManualClock(50), testInterval, logger.Nop())
	r.Run(ctx)

	receive(t, r)
	cancel()

	select {
	case _, ok := <-r.Updates():
		assert.False(t, ok, "expected closed channel")
	case <-time.After(2 * time.Second):
		t.Fatal("refresher did not stop")
	}
}
