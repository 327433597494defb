package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/qpath/qpath/internal/app"
	"github.com/qpath/qpath/internal/levels"
	"github.com/qpath/qpath/internal/screens/home"
)

// runApp opens the store, builds the views, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	ctx := cmd.Context()
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	user, err := e.currentUser(ctx)
	if err != nil {
		return err
	}

	deps := home.Deps{
		UserName:      user.FullName,
		Dashboard:     e.dashboardView(user),
		Tracks:        e.tracksView(user),
		Profile:       e.profileView(user),
		MentorProfile: map[string]any{"name": user.FullName},
	}

	advisor, err := e.advisor(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Q-Mentor indisponível:", err)
	} else {
		deps.Mentor = advisor
	}

	if gp, err := e.client.GamificationProfile(ctx); err == nil {
		deps.MentorProfile["experience_level"] = levels.DisplayName(gp.CurrentLevel)
	}

	return app.Run(deps)
}
