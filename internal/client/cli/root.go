// Package cli implements taskctl, the command-line client for TaskKeeper.
package cli

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/taskkeeper/internal/client/client"
	"github.com/dmitrijs2005/taskkeeper/internal/client/config"
	"github.com/dmitrijs2005/taskkeeper/internal/client/session"
)

// RootOptions holds global flags and the state resolved from them before
// any subcommand runs.
type RootOptions struct {
	ConfigPath  string
	SessionPath string
	ServerURL   string
	Format      string // "text" | "json"

	Getenv func(string) string

	cfg     *config.Config
	api     *client.HTTPClient
	store   *session.Store
	prompts *prompter
}

var ValidFormats = []string{"text", "json"}

var errSessionExpired = errors.New("session expired or revoked, run `taskctl login`")

// NewRootCommand creates the taskctl root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{Getenv: os.Getenv}

	cmd := &cobra.Command{
		Use:           "taskctl",
		Short:         "TaskKeeper command-line client",
		Long:          "Manage your TaskKeeper account and to-do list from the terminal.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolve(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to config.yaml")
	cmd.PersistentFlags().StringVar(&opts.SessionPath, "session", "", "path to session file")
	cmd.PersistentFlags().StringVar(&opts.ServerURL, "server", "", "server base URL (overrides config)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewRegisterCommand(opts))
	cmd.AddCommand(NewLoginCommand(opts))
	cmd.AddCommand(NewLogoutCommand(opts))
	cmd.AddCommand(NewWhoamiCommand(opts))
	cmd.AddCommand(NewTasksCommand(opts))

	return cmd
}

func (o *RootOptions) resolve(cmd *cobra.Command) error {
	if !slices.Contains(ValidFormats, o.Format) {
		return fmt.Errorf("invalid format %q: must be one of %v", o.Format, ValidFormats)
	}

	cfgPath := o.ConfigPath
	if cfgPath == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return err
		}
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath, o.Getenv)
	if err != nil {
		return err
	}
	if o.ServerURL != "" {
		cfg.ServerURL = o.ServerURL
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	sessPath := o.SessionPath
	if sessPath == "" {
		p, err := session.DefaultPath()
		if err != nil {
			return err
		}
		sessPath = p
	}

	o.cfg = cfg
	o.api = client.NewHTTPClient(cfg.ServerURL, cfg.Timeout)
	o.store = session.NewStore(sessPath)
	o.prompts = newPrompter(cmd.InOrStdin(), cmd.ErrOrStderr())
	return nil
}

// authorized loads the saved session, attaches its token and runs fn.
// A 401 from the server discards the session.
func (o *RootOptions) authorized(fn func() error) error {
	sess, err := o.store.Load()
	if errors.Is(err, client.ErrNotLoggedIn) {
		return errors.New("not logged in, run `taskctl login`")
	}
	if err != nil {
		return err
	}
	o.api.SetToken(sess.JWT)

	err = fn()
	if errors.Is(err, client.ErrUnauthorized) {
		if cerr := o.store.Clear(); cerr != nil {
			return errors.Join(errSessionExpired, cerr)
		}
		return errSessionExpired
	}
	return describe(err)
}

// describe turns transport errors into messages worth showing a user.
func describe(err error) error {
	var apiErr *client.APIError
	switch {
	case err == nil:
		return nil
	case errors.Is(err, client.ErrUnavailable):
		return fmt.Errorf("cannot reach server: %w", err)
	case errors.As(err, &apiErr):
		return errors.New(apiErr.Message)
	}
	return err
}
