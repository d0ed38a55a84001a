package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"solar-prediction-api/config"
	"solar-prediction-api/database"
	"solar-prediction-api/logger"
	"solar-prediction-api/services"

	"github.com/spf13/cobra"
)

type accountStore interface {
	SetActive(ctx context.Context, id string, active bool) error
}

type openFunc func() (accountStore, func(), error)

func main() {
	if err := newRootCmd(openUsers, os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func openUsers() (accountStore, func(), error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return nil, nil, err
	}
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
		log.Sync()
	}
	return services.NewUserService(db, nil, log), closeFn, nil
}

func newRootCmd(open openFunc, out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "useradmin",
		Short:        "Manage solar prediction accounts",
		SilenceUsage: true,
	}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.AddCommand(
		newSetActiveCmd(open, "activate", "Re-enable a deactivated account", true),
		newSetActiveCmd(open, "deactivate", "Block logins and token use for an account", false),
	)
	return cmd
}

// Status changes go through the outbox, so the directory copy follows on the next sync cycle.
func newSetActiveCmd(open openFunc, use, short string, active bool) *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   use + " <user-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			users, closeFn, err := open()
			if err != nil {
				return err
			}
			if closeFn != nil {
				defer closeFn()
			}

			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			if err := users.SetActive(ctx, args[0], active); err != nil {
				return fmt.Errorf("%s %s: %w", use, args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "user %s %sd\n", args[0], use)
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "Database timeout")
	return cmd
}
