package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/qpath/qpath/internal/serverinfo"
)

// version is set via -ldflags at build time.
var version = serverinfo.DevVersion

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the client version and check the backend's",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("qpath", version)

		offline, _ := cmd.Flags().GetBool("offline")
		if offline {
			return
		}
		e, err := setup(cmd)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Aviso:", err)
			return
		}
		defer e.Close()

		res, err := serverinfo.NewChecker(e.client).Check(cmd.Context(), version)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Aviso: não foi possível verificar o servidor:", err)
			return
		}
		fmt.Println("servidor", res.ServerVersion)
		if !res.Compatible {
			fmt.Fprintln(os.Stderr, "Aviso: servidor incompatível:", res.Reason)
		}
	},
}

func init() {
	versionCmd.Flags().Bool("offline", false, "Skip the backend version check")
}
