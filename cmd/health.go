package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the backend is reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		start := time.Now()
		h, err := e.client.Health(ctx)
		if err != nil {
			return fmt.Errorf("backend em %s indisponível: %w", e.cfg.API.BaseURL, err)
		}
		fmt.Printf("Backend:    %s\n", e.cfg.API.BaseURL)
		fmt.Printf("Status:     %s\n", h.Status)
		if h.Environment != "" {
			fmt.Printf("Ambiente:   %s\n", h.Environment)
		}
		fmt.Printf("Latência:   %dms\n", time.Since(start).Milliseconds())
		if info, err := e.client.ServerInfo(ctx); err == nil && info.Version != "" {
			fmt.Printf("Versão:     %s\n", info.Version)
		}
		return nil
	},
}
