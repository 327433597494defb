package pomodoro

import (
	"context"
	"sync"
	"time"
)

// Countdown drives a Timer from a ticker on its own goroutine.
type Countdown struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// StartCountdown starts timer and ticks it every interval until it
// finishes, ctx ends, or Stop is called. onTick runs after every tick
// with the timer; onDone runs once when the timer reaches zero. Both run
// on the countdown goroutine and may be nil.
func StartCountdown(ctx context.Context, timer *Timer, interval time.Duration, onTick func(*Timer), onDone func(minutes int)) *Countdown {
	ctx, cancel := context.WithCancel(ctx)
	c := &Countdown{cancel: cancel, done: make(chan struct{})}

	timer.Start()
	go func() {
		defer close(c.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				finished, minutes := timer.Tick()
				if onTick != nil {
					onTick(timer)
				}
				if finished {
					if onDone != nil {
						onDone(minutes)
					}
					return
				}
				if !timer.Running() {
					return
				}
			}
		}
	}()
	return c
}

// Stop cancels the countdown and waits for its goroutine to exit. It is
// safe to call more than once.
func (c *Countdown) Stop() {
	c.once.Do(c.cancel)
	<-c.done
}

// Done is closed when the countdown goroutine has exited.
func (c *Countdown) Done() <-chan struct{} {
	return c.done
}
