package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"candle-labels/internal/client"
	"candle-labels/internal/config"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const (
	envServer    = "LABELCTL_SERVER"
	envToken     = "LABELCTL_TOKEN"
	envPassword  = "LABELCTL_PASSWORD"
	defaultURL   = "http://localhost:8201"
	tokenDirName = ".labelctl"
)

// app carries the global flags and lazily built client for one invocation.
type app struct {
	server    string
	tokenFile string
	timeout   time.Duration
	verbose   bool

	logger zerolog.Logger
	client *client.Client
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "labelctl",
		Short:         "Manage the candle catalogue and print label sheets",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.server, "server", "", "API base URL (or set "+envServer+")")
	root.PersistentFlags().StringVar(&a.tokenFile, "token-file", "", "Where the session token is kept (default ~/"+tokenDirName+"/token)")
	root.PersistentFlags().DurationVar(&a.timeout, "timeout", 60*time.Second, "Request timeout")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		a.loginCmd(),
		a.logoutCmd(),
		a.candlesCmd(),
		a.categoriesCmd(),
		a.setsCmd(),
		a.printCmd(),
		a.importCmd(),
		a.templateCmd(),
		a.uploadCmd(),
		hashPasswordCmd(),
	)

	return root
}

func (a *app) init(cmd *cobra.Command) error {
	level := "warn"
	if a.verbose {
		level = "debug"
	}
	a.logger = config.NewLogger(config.LoggerConfig{Level: level, Format: "console", Output: cmd.ErrOrStderr()})

	if a.server == "" {
		a.server = os.Getenv(envServer)
	}
	if a.server == "" {
		a.server = defaultURL
	}

	if a.tokenFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to locate home directory: %w", err)
		}
		a.tokenFile = filepath.Join(home, tokenDirName, "token")
	}

	token := os.Getenv(envToken)
	if token == "" {
		stored, err := a.readToken()
		if err != nil {
			return err
		}
		token = stored
	}

	a.client = client.New(client.Config{
		BaseURL: a.server,
		Token:   token,
		Timeout: a.timeout,
		OnUnauthorized: func() {
			if err := a.clearToken(); err != nil {
				a.logger.Warn().Err(err).Msg("failed to remove stale token")
			}
		},
	}, a.logger)

	return nil
}

func (a *app) readToken() (string, error) {
	data, err := os.ReadFile(a.tokenFile)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read token file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func (a *app) saveToken(token string) error {
	if err := os.MkdirAll(filepath.Dir(a.tokenFile), 0o700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}
	if err := os.WriteFile(a.tokenFile, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

func (a *app) clearToken() error {
	err := os.Remove(a.tokenFile)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove token file: %w", err)
	}
	return nil
}

// ctx bounds a single command; the client's own timeout still applies per request.
func (a *app) ctx(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), 5*a.timeout)
}
