package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/unijord/unitrigger/internal/app"
	"github.com/unijord/unitrigger/internal/config"
	"github.com/unijord/unitrigger/internal/logging"
	"github.com/unijord/unitrigger/pkg/transport/grpcapi"
	"github.com/unijord/unitrigger/pkg/trigger"
)

type clientFlags struct {
	addr     string
	database string
	timeout  time.Duration
}

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	var cf clientFlags

	rootCmd := &cobra.Command{
		Use:   "unitrigger",
		Short: "Replicated trigger registry",
		Long: `unitrigger stores database triggers in a raft-replicated system
database and runs them after commits on user databases.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return errors.New("no command specified")
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	rootCmd.PersistentFlags().StringVar(&cf.addr, "addr", "127.0.0.1:7100", "gRPC address of a node")
	rootCmd.PersistentFlags().StringVar(&cf.database, "database", trigger.SystemDatabase, "current database of the session")
	rootCmd.PersistentFlags().DurationVar(&cf.timeout, "timeout", 10*time.Second, "per-call deadline")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newInstallCmd(&cf))
	rootCmd.AddCommand(newNamedCmd(&cf, "drop", "Remove one trigger", (*grpcapi.Client).Drop))
	rootCmd.AddCommand(newNamedCmd(&cf, "stop", "Pause one trigger", (*grpcapi.Client).Stop))
	rootCmd.AddCommand(newNamedCmd(&cf, "start", "Resume one trigger", (*grpcapi.Client).Start))
	rootCmd.AddCommand(newDatabaseCmd(&cf, "drop-all", "Remove every trigger of a database", (*grpcapi.Client).DropAll))
	rootCmd.AddCommand(newDatabaseCmd(&cf, "show", "List the triggers of a database", (*grpcapi.Client).Show))
	rootCmd.AddCommand(newLeaderCmd(&cf))

	return rootCmd
}

func newServeCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a node",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger, err := logging.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			node, err := app.New(ctx, cfg, logger)
			if err != nil {
				return err
			}
			return node.Run(ctx)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	return cmd
}

func (cf *clientFlags) run(cmd *cobra.Command, call func(context.Context, *grpcapi.Client) (any, error)) error {
	client, err := grpcapi.Dial(cf.addr)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), cf.timeout)
	defer cancel()

	out, err := call(ctx, client.WithDatabase(cf.database))
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), out)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseObject(flag, raw string) (map[string]any, error) {
	if raw == "" {
		return nil, nil
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("--%s must be a JSON object: %w", flag, err)
	}
	return out, nil
}

func newInstallCmd(cf *clientFlags) *cobra.Command {
	var selector, cfgJSON string
	cmd := &cobra.Command{
		Use:   "install <database> <name> <statement>",
		Short: "Install or replace a trigger",
		Example: `  unitrigger install movies logPerson "MATCH (p:Person) SET p.seen = true" \
    --selector '{"assignedLabels":["Person"]}' --config '{"params":{"limit":5}}'`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			sel, err := parseObject("selector", selector)
			if err != nil {
				return err
			}
			conf, err := parseObject("config", cfgJSON)
			if err != nil {
				return err
			}
			return cf.run(cmd, func(ctx context.Context, c *grpcapi.Client) (any, error) {
				return c.Install(ctx, args[0], args[1], args[2], sel, conf)
			})
		},
	}
	cmd.Flags().StringVar(&selector, "selector", "", "selector as a JSON object")
	cmd.Flags().StringVar(&cfgJSON, "config", "", "config as a JSON object, e.g. {\"params\":{...}}")
	return cmd
}

type namedCall func(*grpcapi.Client, context.Context, string, string) ([]trigger.Info, error)

func newNamedCmd(cf *clientFlags, use, short string, call namedCall) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <database> <name>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cf.run(cmd, func(ctx context.Context, c *grpcapi.Client) (any, error) {
				return call(c, ctx, args[0], args[1])
			})
		},
	}
}

type databaseCall func(*grpcapi.Client, context.Context, string) ([]trigger.Info, error)

func newDatabaseCmd(cf *clientFlags, use, short string, call databaseCall) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <database>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cf.run(cmd, func(ctx context.Context, c *grpcapi.Client) (any, error) {
				return call(c, ctx, args[0])
			})
		},
	}
}

func newLeaderCmd(cf *clientFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "leader",
		Short: "Report the node and its view of the leader",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cf.run(cmd, func(ctx context.Context, c *grpcapi.Client) (any, error) {
				return c.Leader(ctx)
			})
		},
	}
}
