package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-otp-keeper/internal/adapter"
	"github.com/MKhiriev/go-otp-keeper/internal/clock"
	"github.com/MKhiriev/go-otp-keeper/internal/config"
	"github.com/MKhiriev/go-otp-keeper/internal/logger"
	"github.com/MKhiriev/go-otp-keeper/internal/tui"
	"github.com/MKhiriev/go-otp-keeper/internal/workers"
	"github.com/MKhiriev/go-otp-keeper/models"
)

type App struct {
	adapter adapter.ServerAdapter
	ui      UI
	clock   clock.Clock
	cfg     config.ClientWorkers

	logger *logger.Logger
}

func NewApp(serverAdapter adapter.ServerAdapter, ui UI, clk clock.Clock, cfg config.ClientWorkers, logger *logger.Logger) (*App, error) {
	if cfg.RefreshInterval <= 0 {
		return nil, config.ErrInvalidWorkerConfigs
	}

	return &App{adapter: serverAdapter, ui: ui, clock: clk, cfg: cfg, logger: logger}, nil
}

// Run implements [Client]. Each login starts a session with its own code
// refresher; the session ends on logout, which returns to the login screen.
func (a *App) Run(ctx context.Context) error {
	for {
		user, err := a.ui.LoginFlow(ctx)
		if err != nil {
			if errors.Is(err, tui.ErrUserQuit) {
				return nil
			}
			return fmt.Errorf("login flow: %w", err)
		}

		logout, err := a.session(ctx, user)
		if err != nil {
			return err
		}
		if !logout {
			return nil
		}

		a.logger.Info().Int64("user_id", user.UserID).Msg("logged out")
	}
}

func (a *App) session(ctx context.Context, user models.User) (bool, error) {
	sessionCtx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		a.adapter.SetToken("")
	}()

	refresher := workers.NewCodeRefresher(a.adapter, a.clock, a.cfg.RefreshInterval, a.logger)
	workers.NewWorkers(refresher).Run(sessionCtx)

	logout, err := a.ui.MainLoop(sessionCtx, user, refresher)
	if err != nil {
		return false, fmt.Errorf("main loop: %w", err)
	}

	return logout, nil
}
