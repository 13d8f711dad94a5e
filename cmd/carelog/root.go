package main

import (
	"io"
	"os"

	"github.com/rpggio/carelog/internal/config"
	"github.com/spf13/cobra"
)

// rootOptions carries state shared by every subcommand.
type rootOptions struct {
	configPath string
	cfg        config.Config
	app        *app
	closeLog   func() error
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "carelog",
		Short: "Daily activity log for a childcare center",
		Long: `carelog records what each child did during the day: bathroom visits,
naps, activities, meals and supply needs. Every edit and deletion is kept,
so the audit feed shows who changed what.

QUICK START:

  $ carelog children add Ava Smith          # Enroll a child
  $ carelog serve                           # HTTP: /mcp, /rpc, live timeline
  $ carelog stdio                           # MCP over stdio for local agents
  $ carelog audit --child <id> --kind delete

CONFIGURATION:

  Defaults, then the YAML file from --config or CARELOG_CONFIG_PATH, then
  CARELOG_* environment variables (e.g. CARELOG_DB_PATH,
  CARELOG_LOCALE_TIME_ZONE, CARELOG_AUTH_ENABLED).`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			path := opts.configPath
			if path == "" {
				path = os.Getenv("CARELOG_CONFIG_PATH")
			}
			cfg, err := config.LoadFile(path)
			if err != nil {
				return err
			}
			opts.cfg = cfg
			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			var err error
			if opts.app != nil {
				err = opts.app.Close()
				opts.app = nil
			}
			if opts.closeLog != nil {
				_ = opts.closeLog()
				opts.closeLog = nil
			}
			return err
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a YAML config file")

	root.AddCommand(
		newServeCmd(opts),
		newStdioCmd(opts),
		newAuditCmd(opts),
		newImportCmd(opts),
		newChildrenCmd(opts),
		newKeysCmd(opts),
	)
	return root
}

// open builds the logger and the app. console receives logs unless a log
// file is configured.
func (o *rootOptions) open(console io.Writer) (*app, error) {
	if o.app != nil {
		return o.app, nil
	}
	logger, closeLog := newLogger(console, o.cfg.Log.Path, o.cfg.Log.Level)
	o.closeLog = closeLog
	a, err := openApp(o.cfg, logger)
	if err != nil {
		return nil, err
	}
	o.app = a
	return a, nil
}
