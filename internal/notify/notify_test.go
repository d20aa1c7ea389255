package notify

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"
)

type recorder struct {
	calls [][]string
}

func (r *recorder) run(name string, args ...string) error {
	r.calls = append(r.calls, append([]string{name}, args...))
	return nil
}

func TestArgs(t *testing.T) {
	got := Notification{
		Title:   "t",
		Body:    "b",
		Urgency: UrgencyCritical,
		Timeout: 2 * time.Second,
		Icon:    "i",
	}.Args()
	want := []string{"-u", "critical", "-t", "2000", "-i", "i", "-a", "dsboard", "t", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Args = %v, want %v", got, want)
	}

	got = Notification{Title: "only"}.Args()
	want = []string{"-u", "normal", "-a", "dsboard", "only"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Args = %v, want %v", got, want)
	}
}

func TestDisabledNotifierSendsNothing(t *testing.T) {
	rec := &recorder{}
	n := NewNotifier(false).WithRunner(rec.run)

	if err := n.SendSeedImported(15); err != nil {
		t.Fatal(err)
	}
	if len(rec.calls) != 0 {
		t.Errorf("disabled notifier ran %v", rec.calls)
	}

	var nilNotifier *Notifier
	if err := nilNotifier.SendSaveFailed(errors.New("x")); err != nil {
		t.Errorf("nil notifier: %v", err)
	}
}

func TestEnabledNotifier(t *testing.T) {
	rec := &recorder{}
	n := NewNotifier(true).WithRunner(rec.run)

	n.SendSeedImported(15)
	n.SendSaveFailed(errors.New("disk full"))

	if len(rec.calls) != 2 {
		t.Fatalf("got %d calls", len(rec.calls))
	}
	if rec.calls[0][0] != "notify-send" || !strings.Contains(strings.Join(rec.calls[0], " "), "Imported 15 tasks") {
		t.Errorf("seed call = %v", rec.calls[0])
	}
	if !strings.Contains(strings.Join(rec.calls[1], " "), "disk full") || rec.calls[1][2] != "critical" {
		t.Errorf("save call = %v", rec.calls[1])
	}
}
