// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MKhiriev/go-otp-keeper/internal/adapter"
	"github.com/MKhiriev/go-otp-keeper/internal/clock"
	"github.com/MKhiriev/go-otp-keeper/internal/totp"
	"github.com/MKhiriev/go-otp-keeper/internal/workers"
	"github.com/MKhiriev/go-otp-keeper/models"
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	statusTimeout   = 2 * time.Second
	expiringSeconds = 5
	barWidth        = 10
	nameWidth       = 32
)

// CodeSource delivers refreshed account lists to the code screen.
type CodeSource interface {
	Updates() <-chan workers.Snapshot
	Trigger()
}

type viewMode int

const (
	modeList viewMode = iota
	modeSecret
	modeRemark
	modeInfo
)

// codesModel is the main screen: every visible account with its live code
// and a countdown until the code rolls over.
type codesModel struct {
	ctx       context.Context
	adapter   adapter.ServerAdapter
	source    CodeSource
	clock     clock.Clock
	copy      func(string) error
	buildInfo models.AppBuildInfo

	user      models.User
	accounts  []models.AccountView
	fetchedAt time.Time
	loaded    bool
	idx       int

	mode          viewMode
	secret        models.SecretView
	remarkInput   textinput.Model
	serverVersion string

	status string
	errMsg string

	logout bool
}

func newCodesModel(ctx context.Context, serverAdapter adapter.ServerAdapter, source CodeSource, clk clock.Clock, user models.User, buildInfo models.AppBuildInfo) codesModel {
	remark := textinput.New()
	remark.Placeholder = "заметка"
	remark.CharLimit = 1024
	remark.Width = 48

	return codesModel{
		ctx:         ctx,
		adapter:     serverAdapter,
		source:      source,
		clock:       clk,
		copy:        clipboard.WriteAll,
		buildInfo:   buildInfo,
		user:        user,
		remarkInput: remark,
	}
}

func (m codesModel) Init() tea.Cmd {
	return tea.Batch(waitForSnapshot(m.source), tick())
}

func (m codesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case snapshotMsg:
		return m.applySnapshot(msg)

	case tickMsg:
		return m, tick()

	case secretLoadedMsg:
		if msg.err != nil {
			m.errMsg = humanizeError(msg.err)
			return m, nil
		}
		m.errMsg = ""
		m.secret = msg.secret
		m.mode = modeSecret
		return m, nil

	case remarkSavedMsg:
		if msg.err != nil {
			m.errMsg = humanizeError(msg.err)
			return m, nil
		}
		for i := range m.accounts {
			if m.accounts[i].ID == msg.account.ID {
				m.accounts[i].Remark = msg.account.Remark
			}
		}
		m.mode = modeList
		m.errMsg = ""
		return m, m.setStatus("Заметка сохранена")

	case serverVersionMsg:
		if msg.err != nil {
			m.serverVersion = ""
			return m, nil
		}
		m.serverVersion = msg.version
		return m, nil

	case copiedMsg:
		if msg.err != nil {
			m.errMsg = "Не удалось скопировать: " + msg.err.Error()
			return m, nil
		}
		return m, m.setStatus(msg.name + " скопирован в буфер обмена")

	case clearStatusMsg:
		m.status = ""
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case modeRemark:
			return m.updateRemark(msg)
		case modeSecret:
			return m.updateSecret(msg)
		case modeInfo:
			if key.Matches(msg, keys.esc) || key.Matches(msg, keys.enter) {
				m.mode = modeList
			}
			return m, nil
		default:
			return m.updateList(msg)
		}
	}

	return m, nil
}

func (m codesModel) applySnapshot(msg snapshotMsg) (tea.Model, tea.Cmd) {
	if msg.closed {
		return m, tea.Quit
	}

	if err := msg.snapshot.Err; err != nil {
		if errors.Is(err, adapter.ErrUnauthorized) {
			m.logout = true
			return m, tea.Quit
		}
		m.errMsg = humanizeError(err)
		return m, waitForSnapshot(m.source)
	}

	selected := ""
	if account, ok := m.current(); ok {
		selected = account.ID
	}

	m.accounts = msg.snapshot.Accounts
	m.fetchedAt = msg.snapshot.FetchedAt
	m.loaded = true
	m.errMsg = ""

	m.idx = 0
	for i, account := range m.accounts {
		if account.ID == selected {
			m.idx = i
			break
		}
	}

	return m, waitForSnapshot(m.source)
}

func (m codesModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.quit):
		return m, tea.Quit
	case key.Matches(msg, keys.logout):
		m.logout = true
		return m, tea.Quit
	case key.Matches(msg, keys.up):
		if m.idx > 0 {
			m.idx--
		}
	case key.Matches(msg, keys.down):
		if m.idx < len(m.accounts)-1 {
			m.idx++
		}
	case key.Matches(msg, keys.refresh):
		m.source.Trigger()
		return m, m.setStatus("Обновление...")
	case key.Matches(msg, keys.info):
		m.mode = modeInfo
		return m, m.cmdServerVersion()
	case key.Matches(msg, keys.copy):
		account, ok := m.current()
		if !ok {
			return m, nil
		}
		if m.expired(account) {
			m.source.Trigger()
			return m, m.setStatus("Код обновляется, попробуйте ещё раз")
		}
		return m, m.cmdCopy("Код", account.Code.Code)
	case key.Matches(msg, keys.reveal):
		account, ok := m.current()
		if !ok {
			return m, nil
		}
		return m, m.cmdReveal(account.ID)
	case key.Matches(msg, keys.remark):
		account, ok := m.current()
		if !ok {
			return m, nil
		}
		m.mode = modeRemark
		m.remarkInput.SetValue(account.Remark)
		m.remarkInput.CursorEnd()
		return m, m.remarkInput.Focus()
	}

	return m, nil
}

func (m codesModel) updateSecret(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.esc), msg.String() == "enter":
		m.mode = modeList
		m.secret = models.SecretView{}
		return m, nil
	case msg.String() == "c":
		return m, m.cmdCopy("Секрет", m.secret.Secret)
	}
	return m, nil
}

func (m codesModel) updateRemark(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.esc):
		m.mode = modeList
		m.remarkInput.Blur()
		return m, nil
	case key.Matches(msg, keys.enter):
		account, ok := m.current()
		if !ok {
			m.mode = modeList
			return m, nil
		}
		m.remarkInput.Blur()
		return m, m.cmdSaveRemark(account.ID, strings.TrimSpace(m.remarkInput.Value()))
	}

	var cmd tea.Cmd
	m.remarkInput, cmd = m.remarkInput.Update(msg)
	return m, cmd
}

func (m codesModel) View() string {
	switch m.mode {
	case modeInfo:
		return renderBuildInfoWindow(m.buildInfo, m.serverVersion)
	case modeSecret:
		return m.viewSecret()
	case modeRemark:
		return m.viewRemark()
	default:
		return m.viewList()
	}
}

func (m codesModel) viewList() string {
	var b strings.Builder

	now := m.clock.Now()

	switch {
	case !m.loaded:
		b.WriteString("Загрузка...\n")
	case len(m.accounts) == 0:
		b.WriteString("Нет доступных аккаунтов\n")
	default:
		for i, account := range m.accounts {
			b.WriteString(m.renderRow(account, now, i == m.idx))
			b.WriteString("\n")
		}
	}

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(m.status)
		b.WriteString("\n")
	}
	if m.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("Ошибка: " + m.errMsg))
		b.WriteString("\n")
	}

	title := fmt.Sprintf("OTP KEEPER │ %s", m.user.Login)
	if m.user.IsAdmin() {
		title += " (admin)"
	}

	return renderPage(title, strings.TrimRight(b.String(), "\n"),
		"↑/↓: выбор │ c/enter: копировать код │ s: секрет │ e: заметка │ r: обновить │ v: о программе │ l: выйти из аккаунта │ q: выход")
}

func (m codesModel) renderRow(account models.AccountView, now time.Time, selected bool) string {
	cursor := "  "
	if selected {
		cursor = "> "
	}

	code := "··· ···"
	countdown := strings.Repeat(" ", barWidth+4)
	if !m.expired(account) {
		remaining := totp.RemainingSeconds(now.Unix(), account.Code.Period)
		style := codeStyle
		if remaining <= expiringSeconds {
			style = expiringStyle
		}
		code = style.Render(formatCode(account.Code.Code))
		countdown = fmt.Sprintf("%s %2ds", countdownBar(remaining, account.Code.Period, barWidth), remaining)
	}

	name := fitText(accountLabel(account), nameWidth)
	row := fmt.Sprintf("%s%-*s  %s  %s", cursor, nameWidth, name, code, countdown)
	if !account.IsOwner {
		row += "  [общий]"
	} else if len(account.SharedWith) > 0 {
		row += fmt.Sprintf("  [доступ: %d]", len(account.SharedWith))
	}
	if account.Remark != "" {
		row += "  " + helpStyle.Render(fitText(account.Remark, 40))
	}

	if selected {
		return selectedStyle.Render(row)
	}
	return row
}

func (m codesModel) viewSecret() string {
	var b strings.Builder
	b.WriteString("Аккаунт:  ")
	b.WriteString(valueOrDash(m.secret.Name))
	b.WriteString("\nИздатель: ")
	b.WriteString(valueOrDash(m.secret.Issuer))
	b.WriteString("\nСекрет:   ")
	b.WriteString(codeStyle.Render(groupSecret(m.secret.Secret)))
	b.WriteString("\nURI:      ")
	b.WriteString(valueOrDash(m.secret.URI))

	return overlayBoxStyle.Render(renderPage("СЕКРЕТ", b.String(), "c: копировать секрет │ esc: назад"))
}

func (m codesModel) viewRemark() string {
	account, _ := m.current()

	var b strings.Builder
	b.WriteString("Аккаунт: ")
	b.WriteString(accountLabel(account))
	b.WriteString("\n\nЗаметка: [")
	b.WriteString(m.remarkInput.View())
	b.WriteString("]")
	if m.errMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(errorStyle.Render("Ошибка: " + m.errMsg))
	}

	return renderPage("ЗАМЕТКА", b.String(), "enter: сохранить │ esc: отмена")
}

func (m codesModel) current() (models.AccountView, bool) {
	if len(m.accounts) == 0 || m.idx < 0 || m.idx >= len(m.accounts) {
		return models.AccountView{}, false
	}
	return m.accounts[m.idx], true
}

// expired reports whether the period the account's code was fetched in has
// already ended.
func (m codesModel) expired(account models.AccountView) bool {
	fetched := m.fetchedAt.Unix()
	expiresAt := fetched + int64(totp.RemainingSeconds(fetched, account.Code.Period))
	return m.clock.Now().Unix() >= expiresAt
}

func (m *codesModel) setStatus(status string) tea.Cmd {
	m.status = status
	return tea.Tick(statusTimeout, func(time.Time) tea.Msg { return clearStatusMsg{} })
}

func (m codesModel) cmdCopy(name, value string) tea.Cmd {
	copyFn := m.copy
	return func() tea.Msg {
		return copiedMsg{name: name, err: copyFn(value)}
	}
}

func (m codesModel) cmdReveal(accountID string) tea.Cmd {
	ctx := m.ctx
	serverAdapter := m.adapter
	return func() tea.Msg {
		secret, err := serverAdapter.RevealSecret(ctx, accountID)
		return secretLoadedMsg{secret: secret, err: err}
	}
}

func (m codesModel) cmdSaveRemark(accountID, remark string) tea.Cmd {
	ctx := m.ctx
	serverAdapter := m.adapter
	return func() tea.Msg {
		account, err := serverAdapter.UpdateRemark(ctx, accountID, remark)
		return remarkSavedMsg{account: account, err: err}
	}
}

func (m codesModel) cmdServerVersion() tea.Cmd {
	ctx := m.ctx
	serverAdapter := m.adapter
	return func() tea.Msg {
		version, err := serverAdapter.GetServerVersion(ctx)
		return serverVersionMsg{version: version, err: err}
	}
}

func waitForSnapshot(source CodeSource) tea.Cmd {
	updates := source.Updates()
	return func() tea.Msg {
		snapshot, ok := <-updates
		return snapshotMsg{snapshot: snapshot, closed: !ok}
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func accountLabel(account models.AccountView) string {
	if account.Issuer == "" {
		return account.Name
	}
	return account.Issuer + ": " + account.Name
}

// formatCode splits a code in two halves for reading: 123456 becomes 123 456.
func formatCode(code string) string {
	if len(code) < 6 || len(code)%2 != 0 {
		return code
	}
	half := len(code) / 2
	return code[:half] + " " + code[half:]
}

func groupSecret(secret string) string {
	var b strings.Builder
	for i, r := range secret {
		if i > 0 && i%4 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}
