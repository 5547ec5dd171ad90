package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/taskkeeper/internal/client/client"
	"github.com/dmitrijs2005/taskkeeper/internal/client/session"
)

func NewRegisterCommand(root *RootOptions) *cobra.Command {
	var name, email string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if name, err = root.prompts.valueOrPrompt(name, "Name: "); err != nil {
				return err
			}
			if email, err = root.prompts.valueOrPrompt(email, "Email: "); err != nil {
				return err
			}
			password, err := root.prompts.Password("Password: ")
			if err != nil {
				return err
			}

			msg, err := root.api.Register(cmd.Context(), name, email, password)
			if err != nil {
				return describe(err)
			}
			if root.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), map[string]string{"message": msg})
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s. You can now run `taskctl login`.\n", msg)
			return err
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	return cmd
}

func NewLoginCommand(root *RootOptions) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and remember the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if email, err = root.prompts.valueOrPrompt(email, "Email: "); err != nil {
				return err
			}
			password, err := root.prompts.Password("Password: ")
			if err != nil {
				return err
			}

			res, err := root.api.Login(cmd.Context(), email, password)
			if err != nil {
				return describe(err)
			}

			sess := &session.Session{
				JWT:  res.Token,
				User: client.Profile{Name: res.Name, Email: res.Email},
			}
			if err := root.store.Save(sess); err != nil {
				return fmt.Errorf("save session: %w", err)
			}

			if root.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), sess.User)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s <%s>\n", res.Name, res.Email)
			return err
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email address")
	return cmd
}

// NewLogoutCommand asks the server to revoke the token, then forgets the
// local session even if the server could not be reached.
func NewLogoutCommand(root *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := root.store.Load()
			if errors.Is(err, client.ErrNotLoggedIn) {
				return root.printMessage(cmd, "Not logged in.")
			}
			if err != nil {
				return err
			}

			root.api.SetToken(sess.JWT)
			if err := root.api.Logout(cmd.Context()); err != nil && !errors.Is(err, client.ErrUnauthorized) {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: server logout failed: %v\n", describe(err))
			}

			if err := root.store.Clear(); err != nil {
				return err
			}
			return root.printMessage(cmd, "Logged out.")
		},
	}
}

func NewWhoamiCommand(root *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return root.authorized(func() error {
				p, err := root.api.Me(cmd.Context())
				if err != nil {
					return err
				}
				if root.Format == "json" {
					return writeJSON(cmd.OutOrStdout(), p)
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s <%s>\n", p.Name, p.Email)
				return err
			})
		},
	}
}
