package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MKhiriev/go-otp-keeper/internal/clock"
	"github.com/MKhiriev/go-otp-keeper/internal/config"
	"github.com/MKhiriev/go-otp-keeper/internal/logger"
	"github.com/MKhiriev/go-otp-keeper/internal/mock"
	"github.com/MKhiriev/go-otp-keeper/internal/tui"
	"github.com/MKhiriev/go-otp-keeper/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// scriptedUI replays login results and main loop outcomes in order.
type scriptedUI struct {
	logins  []error
	logouts []bool
	mainErr error

	mainCalls int
	snapshots int
}

func (u *scriptedUI) LoginFlow(context.Context) (models.User, error) {
	if len(u.logins) == 0 {
		return models.User{}, tui.ErrUserQuit
	}
	err := u.logins[0]
	u.logins = u.logins[1:]
	if err != nil {
		return models.User{}, err
	}
	return models.User{UserID: 1, Login: "alice"}, nil
}

func (u *scriptedUI) MainLoop(ctx context.Context, _ models.User, source tui.CodeSource) (bool, error) {
	u.mainCalls++

	select {
	case <-source.Updates():
		u.snapshots++
	case <-time.After(2 * time.Second):
	}

	if u.mainErr != nil {
		return false, u.mainErr
	}
	logout := u.logouts[0]
	u.logouts = u.logouts[1:]
	return logout, nil
}

func newTestApp(t *testing.T, ui UI) *App {
	t.Helper()

	ctrl := gomock.NewController(t)
	serverAdapter := mock.NewMockServerAdapter(ctrl)
	serverAdapter.EXPECT().ListAccounts(gomock.Any()).Return(nil, nil).AnyTimes()
	serverAdapter.EXPECT().SetToken("").AnyTimes()

	app, err := NewApp(serverAdapter, ui, clock.NewFixed(50), config.ClientWorkers{RefreshInterval: 10 * time.Millisecond}, logger.Nop())
	require.NoError(t, err)
	return app
}

func TestNewApp_RejectsZeroInterval(t *testing.T) {
	_, err := NewApp(nil, &scriptedUI{}, clock.New(), config.ClientWorkers{}, logger.Nop())
	assert.ErrorIs(t, err, config.ErrInvalidWorkerConfigs)
}

func TestRun_QuitOnLoginScreen(t *testing.T) {
	ui := &scriptedUI{}
	app := newTestApp(t, ui)

	require.NoError(t, app.Run(context.Background()))
	assert.Equal(t, 0, ui.mainCalls)
}

func TestRun_SessionThenQuit(t *testing.T) {
	ui := &scriptedUI{logins: []error{nil}, logouts: []bool{false}}
	app := newTestApp(t, ui)

	require.NoError(t, app.Run(context.Background()))
	assert.Equal(t, 1, ui.mainCalls)
	assert.Equal(t, 1, ui.snapshots)
}

func TestRun_LogoutReturnsToLogin(t *testing.T) {
	ui := &scriptedUI{logins: []error{nil, nil}, logouts: []bool{true, false}}
	app := newTestApp(t, ui)

	require.NoError(t, app.Run(context.Background()))
	assert.Equal(t, 2, ui.mainCalls)
	assert.Equal(t, 2, ui.snapshots)
}

func TestRun_LoginFailure(t *testing.T) {
	errBroken := errors.New("terminal is broken")
	ui := &scriptedUI{logins: []error{errBroken}}
	app := newTestApp(t, ui)

	err := app.Run(context.Background())
	assert.ErrorIs(t, err, errBroken)
}

func TestRun_MainLoopFailure(t *testing.T) {
	errBroken := errors.New("terminal is broken")
	ui := &scriptedUI{logins: []error{nil}, mainErr: errBroken}
	app := newTestApp(t, ui)

	err := app.Run(context.Background())
	assert.ErrorIs(t, err, errBroken)
}
