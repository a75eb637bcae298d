// Package notify prints user-facing outcome messages.
package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	detailStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// Printer writes success lines to Out and errors to Err.
type Printer struct {
	mu       sync.Mutex
	Out      io.Writer
	Err      io.Writer
	reported bool
}

func NewPrinter(out, errOut io.Writer) *Printer {
	return &Printer{Out: out, Err: errOut}
}

func (p *Printer) Success(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.Out, successStyle.Render("✓ "+msg))
}

func (p *Printer) Error(msg string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reported = true
	line := errorStyle.Render("✗ " + msg)
	if err != nil {
		line += " " + detailStyle.Render("("+err.Error()+")")
	}
	fmt.Fprintln(p.Err, line)
}

// Reported reports whether an error has been shown.
func (p *Printer) Reported() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reported
}

// Kind tells a Message apart in the interactive board.
type Kind int

const (
	KindSuccess Kind = iota
	KindError
)

type Message struct {
	Kind Kind
	Text string
}

func (m Message) Render() string {
	if m.Kind == KindError {
		return errorStyle.Render("✗ " + m.Text)
	}
	return successStyle.Render("✓ " + m.Text)
}

// Latest keeps only the most recent message, for status bars.
type Latest struct {
	mu  sync.Mutex
	msg *Message
}

func (l *Latest) Success(msg string) {
	l.set(Message{Kind: KindSuccess, Text: msg})
}

func (l *Latest) Error(msg string, err error) {
	if err != nil {
		msg += ": " + err.Error()
	}
	l.set(Message{Kind: KindError, Text: msg})
}

func (l *Latest) set(m Message) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.msg = &m
}

// Take returns and clears the pending message.
func (l *Latest) Take() (Message, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.msg == nil {
		return Message{}, false
	}
	m := *l.msg
	l.msg = nil
	return m, true
}
