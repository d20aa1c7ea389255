package notify

import (
	"fmt"
	"os/exec"
	"strconv"
	"time"
)

// Urgency levels for notifications
type Urgency int

const (
	UrgencyLow Urgency = iota
	UrgencyNormal
	UrgencyCritical
)

// Notification represents a desktop notification
type Notification struct {
	Title   string
	Body    string
	Urgency Urgency
	Timeout time.Duration
	Icon    string // Optional icon name
}

// Runner executes notify-send. Tests swap it for a recorder.
type Runner func(name string, args ...string) error

func execRunner(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}

// Notifier handles sending desktop notifications
type Notifier struct {
	enabled bool
	run     Runner
}

// NewNotifier creates a notifier. Disabled notifiers drop every message.
func NewNotifier(enabled bool) *Notifier {
	return &Notifier{
		enabled: enabled,
		run:     execRunner,
	}
}

// WithRunner replaces the command runner
func (n *Notifier) WithRunner(r Runner) *Notifier {
	n.run = r
	return n
}

// Args builds the notify-send argument list
func (nt Notification) Args() []string {
	args := []string{}

	switch nt.Urgency {
	case UrgencyLow:
		args = append(args, "-u", "low")
	case UrgencyCritical:
		args = append(args, "-u", "critical")
	default:
		args = append(args, "-u", "normal")
	}

	// milliseconds
	if nt.Timeout > 0 {
		args = append(args, "-t", strconv.Itoa(int(nt.Timeout.Milliseconds())))
	}
	if nt.Icon != "" {
		args = append(args, "-i", nt.Icon)
	}

	args = append(args, "-a", "dsboard", nt.Title)
	if nt.Body != "" {
		args = append(args, nt.Body)
	}
	return args
}

// Send sends a desktop notification using notify-send
func (n *Notifier) Send(nt Notification) error {
	if n == nil || !n.enabled {
		return nil
	}
	return n.run("notify-send", nt.Args()...)
}

// SendSeedImported announces a completed seed import
func (n *Notifier) SendSeedImported(count int) error {
	return n.Send(Notification{
		Title:   "Design Sprint board ready",
		Body:    fmt.Sprintf("Imported %d tasks", count),
		Urgency: UrgencyLow,
		Timeout: 5 * time.Second,
		Icon:    "view-list-symbolic",
	})
}

// SendSaveFailed warns that the board could not be written to disk
func (n *Notifier) SendSaveFailed(err error) error {
	return n.Send(Notification{
		Title:   "dsboard could not save",
		Body:    fmt.Sprintf("Changes are kept in memory until the next successful save: %v", err),
		Urgency: UrgencyCritical,
		Timeout: 15 * time.Second,
		Icon:    "dialog-warning-symbolic",
	})
}
