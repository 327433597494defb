// Package pomodoro implements the focus timer shown on the dashboard.
package pomodoro

import (
	"fmt"
	"time"
)

// Mode selects the timer length.
type Mode string

const (
	Focus Mode = "focus"
	Short Mode = "short"
	Long  Mode = "long"
)

// Modes lists the modes in display order.
var Modes = []Mode{Focus, Short, Long}

var durations = map[Mode]int{
	Focus: 25 * 60,
	Short: 5 * 60,
	Long:  15 * 60,
}

var labels = map[Mode]string{
	Focus: "Foco",
	Short: "Pausa curta",
	Long:  "Pausa longa",
}

// ParseMode converts a mode name.
func ParseMode(s string) (Mode, error) {
	m := Mode(s)
	if _, ok := durations[m]; !ok {
		return "", fmt.Errorf("unknown pomodoro mode %q (want focus, short or long)", s)
	}
	return m, nil
}

// Seconds is the full length of the mode.
func (m Mode) Seconds() int {
	return durations[m]
}

// Duration is the full length of the mode.
func (m Mode) Duration() time.Duration {
	return time.Duration(m.Seconds()) * time.Second
}

// Label is the mode's display name.
func (m Mode) Label() string {
	return labels[m]
}

// Timer counts a mode down one second per Tick. It is not safe for
// concurrent use. While a Countdown runs, read the Timer only from its
// onTick and onDone callbacks, or after Stop returns.
type Timer struct {
	mode      Mode
	remaining int
	running   bool
}

// NewTimer returns a stopped timer at the full length of mode.
func NewTimer(mode Mode) *Timer {
	if _, ok := durations[mode]; !ok {
		mode = Focus
	}
	return &Timer{mode: mode, remaining: durations[mode]}
}

// Mode returns the current mode.
func (t *Timer) Mode() Mode { return t.mode }

// Remaining returns the seconds left.
func (t *Timer) Remaining() int { return t.remaining }

// Running reports whether the timer is counting.
func (t *Timer) Running() bool { return t.running }

// Start resumes counting. A finished timer stays finished until Reset.
func (t *Timer) Start() {
	if t.remaining > 0 {
		t.running = true
	}
}

// Pause stops counting without resetting.
func (t *Timer) Pause() { t.running = false }

// Toggle starts a paused timer or pauses a running one.
func (t *Timer) Toggle() {
	if t.running {
		t.Pause()
	} else {
		t.Start()
	}
}

// SetMode switches mode, stopping the timer at the new mode's full length.
func (t *Timer) SetMode(m Mode) {
	if _, ok := durations[m]; !ok {
		return
	}
	t.mode = m
	t.Reset()
}

// Reset stops the timer at the full length of the current mode.
func (t *Timer) Reset() {
	t.running = false
	t.remaining = durations[t.mode]
}

// Tick advances a running timer by one second. When the timer reaches
// zero it stops and reports done along with the mode's whole minutes.
func (t *Timer) Tick() (done bool, minutes int) {
	if !t.running || t.remaining <= 0 {
		return false, 0
	}
	t.remaining--
	if t.remaining > 0 {
		return false, 0
	}
	t.running = false
	return true, durations[t.mode] / 60
}

// Display renders the remaining time as MM:SS.
func (t *Timer) Display() string {
	return fmt.Sprintf("%02d:%02d", t.remaining/60, t.remaining%60)
}

// Progress is the elapsed fraction of the mode, 0 to 1.
func (t *Timer) Progress() float64 {
	total := durations[t.mode]
	return float64(total-t.remaining) / float64(total)
}
