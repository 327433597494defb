package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/qpath/qpath/internal/api"
	"github.com/qpath/qpath/internal/levels"
	"github.com/qpath/qpath/internal/views"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show tasks, weekly progress and the track summary",
	RunE: func(cmd *cobra.Command, args []string) error {
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
		view := e.dashboardView(user)
		if err := view.Load(ctx); err != nil {
			return fmt.Errorf("%s: %w", view.Err(), err)
		}

		week := view.Week()
		fmt.Printf("Sequência: %d dias   Horas na semana: %.1f\n\n", week.Streak, week.TotalHours)
		for _, d := range week.Week {
			fmt.Printf("  %-4s %-20s %.1fh\n", d.Day, strings.Repeat("█", int(d.Hours*2)), d.Hours)
		}

		fmt.Println("\nTrilhas")
		fmt.Println(strings.Repeat("─", 48))
		for _, t := range view.TrackSummary() {
			fmt.Printf("  %-30s %5.0f%%\n", t.Name, t.Progress)
		}

		fmt.Println("\nTarefas")
		fmt.Println(strings.Repeat("─", 48))
		printTasks(view.Tasks())
		return nil
	},
}

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "List and complete tasks",
}

var tasksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
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
		view := e.dashboardView(user)
		if err := view.Load(ctx); err != nil {
			return fmt.Errorf("%s: %w", view.Err(), err)
		}
		printTasks(view.Tasks())
		return nil
	},
}

var tasksToggleCmd = &cobra.Command{
	Use:   "toggle <id>",
	Short: "Flip a task between pending and done",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid task ID %q: %w", args[0], err)
		}

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
		view := e.dashboardView(user)
		if err := view.Load(ctx); err != nil {
			return fmt.Errorf("%s: %w", view.Err(), err)
		}

		task, err := view.ToggleTask(ctx, id)
		if err != nil {
			return fmt.Errorf("%s: %w", views.Localize(err, views.MsgToggleTask), err)
		}
		state := "pendente"
		if task.Completed {
			state = "concluída"
		}
		fmt.Printf("Tarefa %d (%s) agora está %s.\n", task.ID, task.Title, state)
		return nil
	},
}

func printTasks(tasks []api.Task) {
	if len(tasks) == 0 {
		fmt.Println("  " + views.MsgNoData)
		return
	}
	for _, t := range tasks {
		box := "[ ]"
		if t.Completed {
			box = "[x]"
		}
		due := ""
		if t.DueDate != nil && *t.DueDate != "" {
			due = "  (" + views.FormatDate(*t.DueDate) + ")"
		}
		fmt.Printf("  %-5d %s %s%s\n", t.ID, box, t.Title, due)
	}
}

var rewardsCmd = &cobra.Command{
	Use:   "rewards",
	Short: "Manage personal rewards",
}

var rewardsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List rewards",
	RunE: func(cmd *cobra.Command, args []string) error {
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
		view := e.profileView(user)
		if err := view.Load(ctx); err != nil {
			return fmt.Errorf("%s: %w", view.Err(), err)
		}

		rewards := view.Rewards()
		if len(rewards) == 0 {
			fmt.Println("Nenhuma recompensa cadastrada.")
			return nil
		}
		for _, r := range rewards {
			mark := " "
			if r.Achieved {
				mark = "✓"
			}
			fmt.Printf("  %-5d %s %s → %s\n", r.ID, mark, r.Condition, r.Reward)
		}
		return nil
	},
}

var rewardsAddCmd = &cobra.Command{
	Use:   "add <condição> <recompensa>",
	Short: "Create a reward",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
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
		view := e.profileView(user)
		created, err := view.AddReward(ctx, args[0], args[1])
		if err != nil {
			return fmt.Errorf("%s: %w", view.Err(), err)
		}
		fmt.Printf("Recompensa %d criada: %s → %s\n", created.ID, created.Condition, created.Reward)
		return nil
	},
}

var rewardsAchieveCmd = &cobra.Command{
	Use:   "achieve <id>",
	Short: "Mark a reward as achieved",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid reward ID %q: %w", args[0], err)
		}
		undo, _ := cmd.Flags().GetBool("undo")

		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		achieved := !undo
		r, err := e.client.UpdateReward(cmd.Context(), id, api.RewardUpdate{Achieved: &achieved})
		if err != nil {
			return err
		}
		if r.Achieved {
			fmt.Printf("Parabéns! Recompensa conquistada: %s\n", r.Reward)
		} else {
			fmt.Printf("Recompensa %d reaberta.\n", r.ID)
		}
		return nil
	},
}

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Show the XP leaderboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		entries, err := e.client.Leaderboard(cmd.Context(), limit)
		if err != nil {
			return err
		}
		fmt.Printf("%-4s  %-20s  %8s  %-16s  %s\n", "#", "Usuário", "XP", "Nível", "Trilhas")
		fmt.Println(strings.Repeat("─", 64))
		for _, en := range entries {
			fmt.Printf("%-4d  %-20s  %8d  %-16s  %d\n",
				en.Rank, en.Username, en.TotalXP, levels.DisplayName(en.Level), en.CompletedTrilhas)
		}
		return nil
	},
}

var activityCmd = &cobra.Command{
	Use:   "activity",
	Short: "List recent XP-earning activity",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		logs, err := e.client.ActivityLogs(cmd.Context(), 0, limit)
		if err != nil {
			return err
		}
		if len(logs) == 0 {
			fmt.Println("Nenhuma atividade registrada.")
			return nil
		}
		for _, l := range logs {
			fmt.Printf("%-16s  %-24s  +%-4d  %s\n",
				l.CreatedAt.Time.Local().Format("2006-01-02 15:04"), l.ActivityType, l.XPEarned, l.Description)
		}
		return nil
	},
}

func init() {
	tasksCmd.AddCommand(tasksListCmd)
	tasksCmd.AddCommand(tasksToggleCmd)

	rewardsAchieveCmd.Flags().Bool("undo", false, "Mark the reward as not achieved")
	rewardsCmd.AddCommand(rewardsListCmd)
	rewardsCmd.AddCommand(rewardsAddCmd)
	rewardsCmd.AddCommand(rewardsAchieveCmd)

	leaderboardCmd.Flags().Int("limit", 10, "Number of entries")
	activityCmd.Flags().Int("limit", 20, "Number of entries")
}
