package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "qpath",
	Short: "Q-Path learning dashboard",
	Long: "Q-Path: acompanhe trilhas de computação quântica, cibersegurança e software,\n" +
		"tarefas, pomodoro, recompensas e o Q-Mentor direto do terminal.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Path to the YAML config file (default $XDG_CONFIG_HOME/qpath/config.yaml)")
	flags.String("api-url", "", "Backend base URL (overrides QPATH_API_URL)")
	flags.String("db", "", "Path to SQLite database file (overrides QPATH_DB env var)")
	flags.String("log-level", "", "Log level: debug, info, warn, error (overrides QPATH_LOG_LEVEL)")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(passwordCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(tasksCmd)
	rootCmd.AddCommand(rewardsCmd)
	rootCmd.AddCommand(leaderboardCmd)
	rootCmd.AddCommand(activityCmd)
	rootCmd.AddCommand(tracksCmd)
	rootCmd.AddCommand(pomodoroCmd)
	rootCmd.AddCommand(mentorCmd)
	rootCmd.AddCommand(projectsCmd)
	rootCmd.AddCommand(legacyCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(versionCmd)
}
