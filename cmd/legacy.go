package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/qpath/qpath/internal/migrate"
)

var legacyCmd = &cobra.Command{
	Use:   "legacy",
	Short: "Import data exported from the browser client",
	Long: "Imports values exported from the old browser client (localStorage).\n" +
		"They are sent to the backend the next time the matching view loads.",
}

var legacyImportCmd = &cobra.Command{
	Use:   "import <tasks|rewards|lessons> <arquivo|->",
	Short: "Queue a legacy JSON value for migration",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := migrate.ParseKind(args[0])
		if err != nil {
			return err
		}
		raw, err := readInput(args[1])
		if err != nil {
			return err
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
		key, err := migrate.Import(ctx, e.store.KV(), kind, strconv.Itoa(user.ID), raw)
		if err != nil {
			return err
		}
		fmt.Printf("Importado em %s. Será migrado ao abrir a próxima tela.\n", key)
		return nil
	},
}

var legacyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "List legacy values still waiting for migration",
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
		keys, err := migrate.Pending(ctx, e.store.KV(), strconv.Itoa(user.ID))
		if err != nil {
			return err
		}
		if len(keys) == 0 {
			fmt.Println("Nenhum dado legado pendente.")
			return nil
		}
		for _, k := range keys {
			fmt.Println(" ", k)
		}
		return nil
	},
}

// readInput reads the named file, or stdin for "-".
func readInput(name string) (string, error) {
	var (
		data []byte
		err  error
	)
	if name == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(name)
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	return strings.TrimSpace(string(data)), nil
}

func init() {
	legacyCmd.AddCommand(legacyImportCmd)
	legacyCmd.AddCommand(legacyStatusCmd)
}
