package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/qpath/qpath/internal/views"
)

var tracksCmd = &cobra.Command{
	Use:   "tracks",
	Short: "Browse tracks and record lesson progress",
}

var tracksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracks, modules and lessons",
	RunE: func(cmd *cobra.Command, args []string) error {
		lessons, _ := cmd.Flags().GetBool("lessons")

		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		user, err := e.currentUser(ctx)
		if err != nil {
			return err
		}
		view := e.tracksView(user)
		if err := view.Load(ctx); err != nil {
			return fmt.Errorf("%s: %w", view.Err(), err)
		}

		progress := view.Progress()
		if len(progress) == 0 {
			fmt.Println(views.MsgNoData)
			return nil
		}
		for _, p := range progress {
			fmt.Printf("%s  %d/%d lições (%.0f%%)\n", p.Track.Name, p.Completed, p.Total, p.Percent())
			for _, m := range p.Track.Modules {
				fmt.Printf("  %s\n", m.Title)
				if !lessons {
					continue
				}
				for _, l := range m.Lessons {
					mark := "○"
					if l.Completed {
						mark = "●"
					}
					fmt.Printf("    %s %-40s %s\n", mark, l.Title, l.Slug)
				}
			}
		}
		return nil
	},
}

var tracksCompleteCmd = &cobra.Command{
	Use:   "complete <lição>",
	Short: "Mark a lesson, by slug or ID, as completed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		undo, _ := cmd.Flags().GetBool("undo")

		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		user, err := e.currentUser(ctx)
		if err != nil {
			return err
		}
		view := e.tracksView(user)
		if err := view.Load(ctx); err != nil {
			return fmt.Errorf("%s: %w", view.Err(), err)
		}

		lesson, ok := view.FindLesson(args[0])
		if !ok {
			return fmt.Errorf("lição %q não encontrada", args[0])
		}
		ok, err = view.SetLesson(ctx, lesson.ID, !undo)
		if err != nil {
			return fmt.Errorf("%s: %w", view.Err(), err)
		}
		if !ok {
			return fmt.Errorf("%s", views.MsgUpdateLesson)
		}
		if undo {
			fmt.Printf("Lição desmarcada: %s\n", lesson.Title)
		} else {
			fmt.Printf("Lição concluída: %s\n", lesson.Title)
		}
		return nil
	},
}

var tracksFinishCmd = &cobra.Command{
	Use:   "finish <trilha>",
	Short: "Record a completed track and earn its XP",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		xp, _ := cmd.Flags().GetInt("xp")

		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		name := strings.Join(args, " ")
		gp, err := e.client.CompleteTrilha(cmd.Context(), name, xp)
		if err != nil {
			return err
		}
		fmt.Printf("Trilha %q concluída! Total: %d XP, %d trilhas.\n", name, gp.TotalXP, gp.CompletedTrilhas)
		return nil
	},
}

func init() {
	tracksListCmd.Flags().Bool("lessons", false, "Also list every lesson")
	tracksCompleteCmd.Flags().Bool("undo", false, "Mark the lesson as not completed")
	tracksFinishCmd.Flags().Int("xp", 100, "XP awarded for the track")

	tracksCmd.AddCommand(tracksListCmd)
	tracksCmd.AddCommand(tracksCompleteCmd)
	tracksCmd.AddCommand(tracksFinishCmd)
}
