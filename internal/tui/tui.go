// Package tui is the terminal interface of the client: a login screen and a
// live list of one-time codes.
package tui

import (
	"context"

	"github.com/MKhiriev/go-otp-keeper/internal/adapter"
	"github.com/MKhiriev/go-otp-keeper/internal/clock"
	"github.com/MKhiriev/go-otp-keeper/internal/logger"
	"github.com/MKhiriev/go-otp-keeper/models"
	tea "github.com/charmbracelet/bubbletea"
)

type TUI struct {
	adapter   adapter.ServerAdapter
	clock     clock.Clock
	buildInfo models.AppBuildInfo
	logger    *logger.Logger
}

func New(serverAdapter adapter.ServerAdapter, clk clock.Clock, buildInfo models.AppBuildInfo, logger *logger.Logger) *TUI {
	return &TUI{adapter: serverAdapter, clock: clk, buildInfo: buildInfo, logger: logger}
}

// LoginFlow shows the login screen until the server accepts the credentials.
// It returns ErrUserQuit when the user leaves instead.
func (t *TUI) LoginFlow(ctx context.Context) (models.User, error) {
	finalModel, err := tea.NewProgram(newLoginModel(ctx, t.adapter), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil {
		return models.User{}, err
	}

	result, ok := finalModel.(loginModel)
	if !ok {
		return models.User{}, tea.ErrProgramKilled
	}
	if result.quitByUser || !result.loggedIn {
		return models.User{}, ErrUserQuit
	}

	t.logger.Info().Int64("user_id", result.user.UserID).Msg("logged in")
	return result.user, nil
}

// MainLoop shows the code list fed by source. logout is true when the user
// asked to switch accounts or the session expired.
func (t *TUI) MainLoop(ctx context.Context, user models.User, source CodeSource) (logout bool, err error) {
	model := newCodesModel(ctx, t.adapter, source, t.clock, user, t.buildInfo)
	finalModel, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil {
		return false, err
	}

	result, ok := finalModel.(codesModel)
	if !ok {
		return false, tea.ErrProgramKilled
	}
	return result.logout, nil
}
