package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"recordmap/internal/config"
	"recordmap/internal/logger"
	"recordmap/internal/mapper"
	"recordmap/internal/model"
	"recordmap/internal/storage"

	// register all backends with the storage registry.
	_ "recordmap/internal/storage/all"
)

// app carries state shared by subcommands after the root pre-run.
type app struct {
	cfgPath string
	verbose bool

	cfg   config.Config
	log   zerolog.Logger
	flush func()
}

func newRootCmd() *cobra.Command {
	a := &app{log: zerolog.Nop(), flush: func() {}}

	root := &cobra.Command{
		Use:           "recordmap",
		Short:         "Single-table record mapper and JSON table printer",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			a.flush()
		},
	}
	root.PersistentFlags().StringVar(&a.cfgPath, "config", "", "config JSON path")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logs")

	root.AddCommand(
		newInitCmd(a),
		newUserCmd(a),
		newJSONTableCmd(a),
	)
	return root
}

// setup loads and validates configuration, then builds the logger and the
// metrics backend.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.cfgPath)
	if err != nil {
		return err
	}
	if a.verbose {
		cfg.Log.Level = "debug"
	}

	issues := config.Validate(cfg)
	for _, iss := range issues {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if err := config.Errors(issues); err != nil {
		return fmt.Errorf("configuration is invalid")
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Pretty, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = log
	a.flush = setupMetrics(cfg.Metrics, log)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(log.WithContext(ctx))
	return nil
}

// withUsers opens a session, builds the user store and runs fn. The session
// commits on success and rolls back otherwise.
func (a *app) withUsers(ctx context.Context, createTable bool, fn func(*storage.Session, *model.UserStore) error) (err error) {
	sess, err := storage.Open(ctx, storage.Config{
		Kind:        a.cfg.Storage.Kind,
		DSN:         a.cfg.Storage.DSN,
		PingTimeout: a.cfg.Storage.PingTimeout,
	}, a.log)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sess.Close(err == nil); cerr != nil && err == nil {
			err = cerr
		}
	}()

	users, err := model.NewUserStore(sess.Dialect(), mapper.WithLogger(sess.Logger()))
	if err != nil {
		return err
	}
	if createTable {
		if err := users.CreateTable(ctx, sess.Ext()); err != nil {
			return err
		}
	}
	return fn(sess, users)
}
