package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/qpath/qpath/internal/pomodoro"
	"github.com/qpath/qpath/internal/views"
)

var pomodoroCmd = &cobra.Command{
	Use:   "pomodoro",
	Short: "Run a pomodoro timer and log the session when it ends",
	RunE: func(cmd *cobra.Command, args []string) error {
		modeName, _ := cmd.Flags().GetString("mode")
		mode, err := pomodoro.ParseMode(modeName)
		if err != nil {
			return err
		}

		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		user, err := e.currentUser(ctx)
		if err != nil {
			return err
		}

		timer := pomodoro.NewTimer(mode)
		finished := make(chan int, 1)
		fmt.Printf("%s: %s (Ctrl+C para cancelar)\n", mode.Label(), timer.Display())
		countdown := pomodoro.StartCountdown(ctx, timer, time.Second,
			func(t *pomodoro.Timer) { fmt.Printf("\r%s  %3.0f%%", t.Display(), t.Progress()*100) },
			func(minutes int) { finished <- minutes },
		)
		defer countdown.Stop()

		select {
		case <-ctx.Done():
			countdown.Stop()
			fmt.Println("\nPomodoro cancelado.")
			return nil
		case minutes := <-finished:
			fmt.Println()
			// The session is logged even when Ctrl+C arrives right after the end.
			view := e.dashboardView(user)
			if err := view.CompletePomodoro(context.WithoutCancel(ctx), minutes); err != nil {
				return fmt.Errorf("%s: %w", views.MsgPomodoro, err)
			}
			fmt.Printf("Sessão de %d min registrada. Sequência: %d dias.\n", minutes, view.Week().Streak)
			return nil
		}
	},
}

func init() {
	pomodoroCmd.Flags().String("mode", string(pomodoro.Focus), "Timer mode: focus, short or long")
}
