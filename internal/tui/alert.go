// Package tui is the terminal front end: a bubbletea program with the
// Login, Products and ProductInfo screens, plus the plain renderers shared
// with the one-shot commands.
package tui

import (
	"fmt"
	"io"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/powervision/estoque/internal/screen"
)

// PlainAlerter prints alerts as "Title: message" lines. It is used by the
// one-shot commands.
type PlainAlerter struct {
	mu sync.Mutex
	w  io.Writer
}

var _ screen.Alerter = (*PlainAlerter)(nil)

func NewPlainAlerter(w io.Writer) *PlainAlerter {
	return &PlainAlerter{w: w}
}

func (p *PlainAlerter) Alert(title, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "%s: %s\n", title, message)
}

type alertMsg struct{ title, message string }

// ProgramAlerter forwards alerts to a running bubbletea program, which
// shows them as a modal box. Alerts raised before SetProgram are queued.
// All methods are safe to call from any goroutine.
type ProgramAlerter struct {
	mu      sync.Mutex
	program *tea.Program
	pending []alertMsg
}

var _ screen.Alerter = (*ProgramAlerter)(nil)

// SetProgram attaches the program and flushes queued alerts.
func (t *ProgramAlerter) SetProgram(p *tea.Program) {
	t.mu.Lock()
	t.program = p
	pending := t.pending
	t.pending = nil
	t.mu.Unlock()
	for _, a := range pending {
		p.Send(a)
	}
}

func (t *ProgramAlerter) Alert(title, message string) {
	msg := alertMsg{title: title, message: message}
	t.mu.Lock()
	p := t.program
	if p == nil {
		t.pending = append(t.pending, msg)
	}
	t.mu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}
