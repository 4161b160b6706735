package tui

import (
	"time"

	"github.com/MKhiriev/go-otp-keeper/internal/workers"
	"github.com/MKhiriev/go-otp-keeper/models"
)

type loginResultMsg struct {
	user models.User
	err  error
}

type snapshotMsg struct {
	snapshot workers.Snapshot
	closed   bool
}

type tickMsg time.Time

type secretLoadedMsg struct {
	secret models.SecretView
	err    error
}

type remarkSavedMsg struct {
	account models.AccountView
	err     error
}

type serverVersionMsg struct {
	version string
	err     error
}

type copiedMsg struct {
	name string
	err  error
}

type clearStatusMsg struct{}
