package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dukerupert/goshop/internal/config"
	"github.com/dukerupert/goshop/internal/database"
	"github.com/dukerupert/goshop/internal/live"
	"github.com/dukerupert/goshop/internal/logging"
	"github.com/dukerupert/goshop/internal/shopping"
	"github.com/dukerupert/goshop/internal/store"
)

// skipApp marks commands that run without opening the database.
const skipApp = "skip-app"

// app holds everything a command needs once PersistentPreRunE has run.
type app struct {
	configFile string
	envFile    string
	jsonOut    bool

	cfg      *config.Config
	logger   *slog.Logger
	db       *sql.DB
	registry *live.Registry
	svc      *shopping.Service
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "goshop",
		Short:         "Local shopping-list manager",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if _, ok := cmd.Annotations[skipApp]; ok {
				return nil
			}
			return a.open(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (default: ./goshop.yaml if present)")
	flags.StringVar(&a.envFile, "env-file", "", "dotenv file (default: ./.env if present)")
	flags.String("db", "", "SQLite database path (default: goshop.db)")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("log-format", "", "log format: text or json")
	flags.BoolVar(&a.jsonOut, "json", false, "print results as JSON")

	root.AddCommand(
		newItemCmd(a),
		newCategoryCmd(a),
		newSessionCmd(a),
		newBackupCmd(a),
		newCSVCmd(a),
		newServeCmd(a),
		newVersionCmd(),
	)
	return root
}

func (a *app) open(cmd *cobra.Command) error {
	cfg, err := config.Load(config.Options{
		ConfigFile: a.configFile,
		EnvFile:    a.envFile,
		Flags:      cmd.Flags(),
	})
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logging.Setup(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database %s: %w", cfg.DBPath, err)
	}
	a.db = db

	a.registry = live.NewRegistry(a.logger.With("component", "live"))
	items := store.NewItemStore(db, a.registry)
	notes := store.NewSessionNoteStore(db, a.registry)
	a.svc = shopping.NewService(items, notes, a.registry, a.logger)

	a.logger.Debug("database opened", "path", cfg.DBPath)
	return nil
}

func (a *app) close() error {
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	return err
}

// print writes v as indented JSON when --json is set, otherwise it calls
// text to render it.
func (a *app) print(w io.Writer, v any, text func(io.Writer)) error {
	if a.jsonOut {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(w)
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print the goshop version",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipApp: ""},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "goshop", version)
		},
	}
}

var version = "dev"
