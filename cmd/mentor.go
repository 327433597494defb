package cmd

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/qpath/qpath/internal/api"
	"github.com/qpath/qpath/internal/mentor"
	"github.com/qpath/qpath/internal/store"
)

var mentorCmd = &cobra.Command{
	Use:   "mentor",
	Short: "Ask Q-Mentor for career guidance",
}

var mentorAskCmd = &cobra.Command{
	Use:   "ask <pergunta>",
	Short: "Ask a free-form career question",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		advisor, err := e.advisor(ctx)
		if err != nil {
			return err
		}

		profile := map[string]any{}
		if e.client.Authenticated() {
			if user, err := e.client.CurrentUser(ctx); err == nil {
				profile["name"] = user.FullName
			}
		}
		if area, _ := cmd.Flags().GetString("area"); area != "" {
			profile["career_area"] = area
		}

		g, err := advisor.Guidance(ctx, api.GuidanceRequest{Query: strings.Join(args, " "), UserProfile: profile})
		if err != nil {
			return err
		}
		if g.Status != mentor.StatusSuccess {
			return fmt.Errorf("Q-Mentor: %s", g.Response)
		}
		fmt.Println(g.Response)
		return nil
	},
}

var mentorTipsCmd = &cobra.Command{
	Use:   "tips <área>",
	Short: "Quick tips for a career area",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		advisor, err := e.advisor(ctx)
		if err != nil {
			return err
		}
		tips, err := advisor.QuickTips(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}
		if tips.Status != mentor.StatusSuccess {
			return fmt.Errorf("Q-Mentor: %s", tips.Tips)
		}
		fmt.Println(tips.Tips)
		return nil
	},
}

var mentorRecommendCmd = &cobra.Command{
	Use:   "recommend <área>",
	Short: "Recommend quantum-safe technologies, skills and courses",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		level, _ := cmd.Flags().GetString("level")

		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		advisor, err := e.advisor(ctx)
		if err != nil {
			return err
		}
		rec, err := advisor.Recommendations(ctx, api.RecommendationRequest{
			CareerArea:      strings.Join(args, " "),
			ExperienceLevel: level,
		})
		if err != nil {
			return err
		}
		if rec.Status != mentor.StatusSuccess {
			return fmt.Errorf("Q-Mentor: %v", rec.Recommendations["error"])
		}
		printRecommendations(rec.Recommendations)
		return nil
	},
}

// printRecommendations prints each section of a recommendations map in
// key order. List sections become bullet lists.
func printRecommendations(rec map[string]any) {
	if raw, ok := rec["raw_response"].(string); ok {
		fmt.Println(raw)
		return
	}
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for i, k := range keys {
		if i > 0 {
			fmt.Println()
		}
		fmt.Println(strings.ToUpper(strings.ReplaceAll(k, "_", " ")))
		switch v := rec[k].(type) {
		case []any:
			for _, item := range v {
				fmt.Printf("  • %v\n", item)
			}
		case []string:
			for _, item := range v {
				fmt.Printf("  • %s\n", item)
			}
		default:
			fmt.Printf("  %v\n", v)
		}
	}
}

var mentorPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Analyse the gap between current skills and a target role",
	RunE: func(cmd *cobra.Command, args []string) error {
		skills, _ := cmd.Flags().GetStringSlice("skills")
		role, _ := cmd.Flags().GetString("role")
		if role == "" {
			return fmt.Errorf("--role é obrigatório")
		}

		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		advisor, err := e.advisor(ctx)
		if err != nil {
			return err
		}
		lp, err := advisor.LearningPath(ctx, api.LearningPathRequest{CurrentSkills: skills, TargetRole: role})
		if err != nil {
			return err
		}
		if lp.Status != mentor.StatusSuccess {
			return fmt.Errorf("Q-Mentor: %s", lp.Analysis)
		}
		fmt.Println(lp.Analysis)
		return nil
	},
}

var mentorHealthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check whether Q-Mentor is available",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		advisor, err := e.advisor(ctx)
		if err != nil {
			return err
		}
		h, err := advisor.Health(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Serviço:     %s\n", h.Service)
		fmt.Printf("Origem:      %s\n", advisor.Source())
		fmt.Printf("Status:      %s\n", h.Status)
		fmt.Printf("Disponível:  %v\n", h.Available)
		if h.Message != "" {
			fmt.Printf("Mensagem:    %s\n", h.Message)
		}
		return nil
	},
}

var mentorHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent Q-Mentor calls",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		kind, _ := cmd.Flags().GetString("kind")
		since, _ := cmd.Flags().GetDuration("since")

		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		opts := store.QueryOpts{Limit: limit, Kind: kind}
		if since > 0 {
			opts.From = time.Now().Add(-since)
		}
		events, err := e.store.MentorEventRepo().Query(cmd.Context(), opts)
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}
		if len(events) == 0 {
			fmt.Println("Nenhuma chamada ao Q-Mentor registrada.")
			return nil
		}

		fmt.Printf("%-5s  %-19s  %-14s  %-24s  %-7s  %s\n", "ID", "Timestamp", "Kind", "Source", "Ms", "OK")
		fmt.Println(strings.Repeat("─", 84))
		for _, ev := range events {
			ok := "✓"
			if !ev.Success {
				ok = "✗"
			}
			source := ev.Source
			if len(source) > 24 {
				source = source[:24]
			}
			fmt.Printf("%-5d  %-19s  %-14s  %-24s  %-7d  %s\n",
				ev.ID,
				ev.Timestamp.Local().Format("2006-01-02 15:04:05"),
				ev.Kind,
				source,
				ev.LatencyMs,
				ok,
			)
		}
		return nil
	},
}

var mentorHistoryShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show the prompt and answer of a Q-Mentor call",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid ID %q: %w", args[0], err)
		}

		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ev, err := e.store.MentorEventRepo().Get(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("get event: %w", err)
		}
		if ev == nil {
			return fmt.Errorf("event %d not found", id)
		}

		sep := strings.Repeat("─", 60)
		fmt.Printf("ID:        %d\n", ev.ID)
		fmt.Printf("Time:      %s\n", ev.Timestamp.Local().Format("2006-01-02 15:04:05"))
		fmt.Printf("Kind:      %s\n", ev.Kind)
		fmt.Printf("Source:    %s\n", ev.Source)
		fmt.Printf("Latency:   %dms\n", ev.LatencyMs)
		fmt.Printf("Success:   %v\n", ev.Success)
		if ev.ErrorMessage != "" {
			fmt.Printf("Error:     %s\n", ev.ErrorMessage)
		}
		for _, section := range []struct{ title, body string }{
			{"PROMPT", ev.Prompt},
			{"ANSWER", ev.Answer},
		} {
			fmt.Println()
			fmt.Println(sep)
			fmt.Println(section.title)
			fmt.Println(sep)
			if section.body == "" {
				fmt.Println("(not captured)")
			} else {
				fmt.Println(section.body)
			}
		}
		return nil
	},
}

func init() {
	mentorAskCmd.Flags().String("area", "", "Career area to tailor the answer to")
	mentorRecommendCmd.Flags().String("level", "iniciante", "Experience level")
	mentorPathCmd.Flags().StringSlice("skills", nil, "Current skills, comma separated")
	mentorPathCmd.Flags().String("role", "", "Target role")

	mentorHistoryCmd.Flags().Int("limit", 20, "Max events to show")
	mentorHistoryCmd.Flags().String("kind", "", "Filter by kind (guidance, tips, recommendations, learning-path, health)")
	mentorHistoryCmd.Flags().Duration("since", 0, "Only show calls newer than this (e.g. 24h)")
	mentorHistoryCmd.AddCommand(mentorHistoryShowCmd)

	mentorCmd.AddCommand(mentorAskCmd)
	mentorCmd.AddCommand(mentorTipsCmd)
	mentorCmd.AddCommand(mentorRecommendCmd)
	mentorCmd.AddCommand(mentorPathCmd)
	mentorCmd.AddCommand(mentorHealthCmd)
	mentorCmd.AddCommand(mentorHistoryCmd)
}
