package command

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/tokfactory/internal/cli/output"
	"github.com/yndnr/tokfactory/internal/infra/buildinfo"
	"github.com/yndnr/tokfactory/pkg/tokfactory"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "tokfactory-admin",
		Usage:   "Inspect and audit a persisted token registry",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			TokensCommand(),
			BalanceCommand(),
			AuditCommand(),
			BackupCommand(),
		},
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Configuration file (YAML)",
			EnvVars: []string{"TOKFACTORY_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "data-dir",
			Aliases: []string{"d"},
			Usage:   "Badger data directory (overrides storage.data_dir)",
			EnvVars: []string{"TOKFACTORY_STORAGE_DATA_DIR"},
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
			Value:   "table",
		},
	}
}

// GlobalFlags defines flags available to all commands.
type GlobalFlags struct {
	Config  string
	DataDir string
	Output  string
}

// ParseGlobalFlags extracts global flags from context.
func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	return &GlobalFlags{
		Config:  c.String("config"),
		DataDir: c.String("data-dir"),
		Output:  c.String("output"),
	}
}

// openFactory opens the persisted registry named by the global flags.
// The storage backend is always badger and metrics are off.
func openFactory(c *cli.Context) (*tokfactory.Factory, error) {
	flags := ParseGlobalFlags(c)

	overrides := map[string]any{
		"storage.backend": "badger",
		"metrics.enabled": false,
	}
	if flags.DataDir != "" {
		overrides["storage.data_dir"] = flags.DataDir
	}

	cfg, err := tokfactory.LoadConfig(flags.Config, overrides)
	if err != nil {
		return nil, err
	}

	log := slog.New(slog.NewTextHandler(errWriter(c), &slog.HandlerOptions{Level: slog.LevelWarn}))
	f, err := tokfactory.Open(c.Context, cfg, tokfactory.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("open registry at %s: %w", cfg.Storage.DataDir, err)
	}
	return f, nil
}

// render writes data in the format selected by --output.
func render(c *cli.Context, data any) error {
	format, err := output.ParseFormat(ParseGlobalFlags(c).Output)
	if err != nil {
		return err
	}
	return output.NewFormatter(format).Format(c.App.Writer, data)
}

func errWriter(c *cli.Context) io.Writer {
	if c.App.ErrWriter != nil {
		return c.App.ErrWriter
	}
	return os.Stderr
}
