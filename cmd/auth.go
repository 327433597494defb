package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/qpath/qpath/internal/api"
	"github.com/qpath/qpath/internal/levels"
)

var loginCmd = &cobra.Command{
	Use:   "login <email|usuário>",
	Short: "Log in and store the session locally",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		password, err := readSecret(cmd, "password", "QPATH_PASSWORD", "Senha: ")
		if err != nil {
			return err
		}

		session, err := e.client.Login(cmd.Context(), args[0], password)
		if err != nil {
			return err
		}
		fmt.Printf("Bem-vindo, %s! Sessão salva.\n", displayName(session.User))
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the session and forget the stored credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		if err := e.client.Logout(cmd.Context()); err != nil {
			fmt.Fprintln(os.Stderr, "Aviso:", err)
		}
		fmt.Println("Sessão encerrada.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user and session expiry",
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

		fmt.Printf("Nome:      %s\n", user.FullName)
		fmt.Printf("Usuário:   %s\n", user.Username)
		fmt.Printf("E-mail:    %s\n", user.Email)
		fmt.Printf("Papel:     %s\n", user.Role)
		if info, err := e.client.SessionInfo(); err == nil && !info.ExpiresAt.IsZero() {
			fmt.Printf("Sessão:    expira em %s\n", info.ExpiresAt.Local().Format("2006-01-02 15:04"))
			if info.Expired(time.Now()) {
				fmt.Println("           (expirada; será renovada na próxima chamada)")
			}
		}
		if gp, err := e.client.GamificationProfile(ctx); err == nil {
			st := levels.Compute(gp.TotalXP)
			fmt.Printf("Nível:     %d · %s (%d XP)\n", st.Level.Number, levels.DisplayName(st.Level.Name), gp.TotalXP)
		}
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account",
	RunE: func(cmd *cobra.Command, args []string) error {
		in := api.RegisterInput{}
		in.Email, _ = cmd.Flags().GetString("email")
		in.Username, _ = cmd.Flags().GetString("username")
		in.FullName, _ = cmd.Flags().GetString("name")
		if in.Email == "" || in.Username == "" || in.FullName == "" {
			return fmt.Errorf("--email, --username e --name são obrigatórios")
		}

		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		in.Password, err = readSecret(cmd, "password", "QPATH_PASSWORD", "Senha: ")
		if err != nil {
			return err
		}

		user, err := e.client.Register(cmd.Context(), in)
		if err != nil {
			return err
		}
		fmt.Printf("Conta criada para %s. Use `qpath login %s` para entrar.\n", user.Email, user.Username)
		return nil
	},
}

var passwordCmd = &cobra.Command{
	Use:   "password",
	Short: "Recover a forgotten password",
}

var passwordForgotCmd = &cobra.Command{
	Use:   "forgot <email>",
	Short: "Request a password reset token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		msg, err := e.client.ForgotPassword(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Println(msg)
		return nil
	},
}

var passwordResetCmd = &cobra.Command{
	Use:   "reset <token>",
	Short: "Set a new password with a reset token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		password, err := readSecret(cmd, "password", "QPATH_PASSWORD", "Nova senha: ")
		if err != nil {
			return err
		}
		msg, err := e.client.ResetPassword(cmd.Context(), args[0], password)
		if err != nil {
			return err
		}
		fmt.Println(msg)
		return nil
	},
}

// readSecret takes a secret from flag, then envKey, then one line of
// stdin.
func readSecret(cmd *cobra.Command, flag, envKey, prompt string) (string, error) {
	if v, _ := cmd.Flags().GetString(flag); v != "" {
		return v, nil
	}
	if v := os.Getenv(envKey); v != "" {
		return v, nil
	}

	fmt.Fprint(os.Stderr, prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		if err != nil {
			return "", fmt.Errorf("read %s: %w", flag, err)
		}
		return "", fmt.Errorf("%s must not be empty", flag)
	}
	return line, nil
}

func displayName(u *api.User) string {
	if u == nil {
		return ""
	}
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}

func init() {
	loginCmd.Flags().String("password", "", "Password (default: QPATH_PASSWORD or prompt)")

	registerCmd.Flags().String("email", "", "E-mail address")
	registerCmd.Flags().String("username", "", "Username")
	registerCmd.Flags().String("name", "", "Full name")
	registerCmd.Flags().String("password", "", "Password (default: QPATH_PASSWORD or prompt)")

	passwordResetCmd.Flags().String("password", "", "New password (default: QPATH_PASSWORD or prompt)")
	passwordCmd.AddCommand(passwordForgotCmd)
	passwordCmd.AddCommand(passwordResetCmd)
}
