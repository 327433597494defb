package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/qpath/qpath/internal/api"
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "Submit and follow project hub submissions",
}

var projectsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your submissions",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		projects, err := e.client.Projects(cmd.Context())
		if err != nil {
			return err
		}
		if len(projects) == 0 {
			fmt.Println("Nenhum projeto enviado.")
			return nil
		}
		fmt.Printf("%-5s  %-9s  %-13s  %-16s  %s\n", "ID", "Tipo", "Status", "Atualizado", "Título")
		fmt.Println(strings.Repeat("─", 72))
		for _, p := range projects {
			fmt.Printf("%-5d  %-9s  %-13s  %-16s  %s\n",
				p.ID, p.ProjectType, p.Status, p.UpdatedAt.Time.Local().Format("2006-01-02 15:04"), p.Title)
		}
		return nil
	},
}

var projectsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a submission with reviewer feedback",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid project ID %q: %w", args[0], err)
		}

		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		p, err := e.client.Project(cmd.Context(), id)
		if err != nil {
			return err
		}
		printProject(p)
		return nil
	},
}

func printProject(p *api.Project) {
	fmt.Printf("ID:         %d\n", p.ID)
	fmt.Printf("Título:     %s\n", p.Title)
	fmt.Printf("Tipo:       %s\n", p.ProjectType)
	fmt.Printf("Status:     %s\n", p.Status)
	fmt.Printf("Criado:     %s\n", p.CreatedAt.Time.Local().Format("2006-01-02 15:04"))
	if p.GithubURL != nil && *p.GithubURL != "" {
		fmt.Printf("GitHub:     %s\n", *p.GithubURL)
	}
	if p.DemoURL != nil && *p.DemoURL != "" {
		fmt.Printf("Demo:       %s\n", *p.DemoURL)
	}
	fmt.Println()
	fmt.Println(p.Description)
	if p.SubmissionNotes != nil && *p.SubmissionNotes != "" {
		fmt.Printf("\nNotas: %s\n", *p.SubmissionNotes)
	}
	if p.ReviewerFeedback != nil && *p.ReviewerFeedback != "" {
		fmt.Printf("\nFeedback da revisão: %s\n", *p.ReviewerFeedback)
		if p.ReviewedAt != nil {
			fmt.Printf("Revisado em %s\n", p.ReviewedAt.Time.Local().Format("2006-01-02 15:04"))
		}
	}
}

var projectsSubmitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit a research or startup project",
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		typ, _ := flags.GetString("type")
		in := api.ProjectInput{ProjectType: api.ProjectType(typ)}
		if in.ProjectType != api.ProjectResearch && in.ProjectType != api.ProjectStartup {
			return fmt.Errorf("--type must be research or startup, got %q", typ)
		}
		in.Title, _ = flags.GetString("title")
		in.Description, _ = flags.GetString("description")
		if in.Title == "" || in.Description == "" {
			return fmt.Errorf("--title e --description são obrigatórios")
		}
		in.GithubURL = optionalString(flags, "github")
		in.DemoURL = optionalString(flags, "demo")
		in.SubmissionNotes = optionalString(flags, "notes")

		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		p, err := e.client.SubmitProject(cmd.Context(), in)
		if err != nil {
			return err
		}
		fmt.Printf("Projeto %d enviado (%s).\n", p.ID, p.Status)
		return nil
	},
}

var projectsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change fields of a submission",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid project ID %q: %w", args[0], err)
		}

		flags := cmd.Flags()
		in := api.ProjectUpdate{
			Title:           optionalString(flags, "title"),
			Description:     optionalString(flags, "description"),
			GithubURL:       optionalString(flags, "github"),
			DemoURL:         optionalString(flags, "demo"),
			SubmissionNotes: optionalString(flags, "notes"),
		}
		if s := optionalString(flags, "status"); s != nil {
			status := api.ProjectStatus(*s)
			in.Status = &status
		}
		if in == (api.ProjectUpdate{}) {
			return fmt.Errorf("nothing to update")
		}

		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		p, err := e.client.UpdateProject(cmd.Context(), id, in)
		if err != nil {
			return err
		}
		fmt.Printf("Projeto %d atualizado (%s).\n", p.ID, p.Status)
		return nil
	},
}

// optionalString returns the flag value only when it was set.
func optionalString(flags *pflag.FlagSet, name string) *string {
	if !flags.Changed(name) {
		return nil
	}
	v, _ := flags.GetString(name)
	return &v
}

func init() {
	projectsSubmitCmd.Flags().String("type", string(api.ProjectResearch), "Project type: research or startup")
	for _, c := range []*cobra.Command{projectsSubmitCmd, projectsUpdateCmd} {
		c.Flags().String("title", "", "Title")
		c.Flags().String("description", "", "Description")
		c.Flags().String("github", "", "GitHub repository URL")
		c.Flags().String("demo", "", "Demo URL")
		c.Flags().String("notes", "", "Notes for the reviewers")
	}
	projectsUpdateCmd.Flags().String("status", "", "New status (draft, submitted)")

	projectsCmd.AddCommand(projectsListCmd)
	projectsCmd.AddCommand(projectsShowCmd)
	projectsCmd.AddCommand(projectsSubmitCmd)
	projectsCmd.AddCommand(projectsUpdateCmd)
}
