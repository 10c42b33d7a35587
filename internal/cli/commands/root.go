package commands

import (
	"errors"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conduit-lang/annotate/internal/cli/config"
	"github.com/conduit-lang/annotate/internal/cli/ui"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = "unknown"
)

// errReported marks an error that has already been rendered for the user.
var errReported = errors.New("error reported")

// options is shared by every subcommand. Flags override config values.
type options struct {
	format  string
	noColor bool

	cfg    *config.Config
	logger *zap.Logger
}

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "annotate",
		Short: "Inspect metadata attached to Go methods",
		Long: color.CyanString(`annotate - method metadata inspector

Reads snapshots exported from a decorator registry and shows the
metadata attached to each method.`),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.format, "format", "", "Output format: json or table (default from config)")
	rootCmd.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(newVersionCommand(opts))
	rootCmd.AddCommand(newDemoCommand(opts))
	rootCmd.AddCommand(newInspectCommand(opts))

	return rootCmd
}

var newLogger = func(cfg *config.Config) (*zap.Logger, error) {
	return cfg.NewLogger()
}

func (o *options) load(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		cmd.PrintErr(ui.ConfigError(err.Error(), o.noColor))
		return errReported
	}
	o.cfg = cfg

	if !cmd.Flags().Changed("format") {
		o.format = cfg.Output.Format
	}
	if !cmd.Flags().Changed("no-color") {
		o.noColor = cfg.Output.NoColor
	}
	if o.format != "table" && o.format != "json" {
		cmd.PrintErr(ui.ConfigError("unsupported format: "+o.format+" (supported: json, table)", o.noColor))
		return errReported
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	o.logger = logger

	if !config.InProject() {
		o.logger.Debug("no annotate.yml found, using defaults")
	}
	return nil
}

// newVersionCommand creates the version command
func newVersionCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display the annotate version, Git commit, build date, and Go version",
		Run: func(cmd *cobra.Command, args []string) {
			goVer := GoVersion
			if goVer == "unknown" {
				goVer = runtime.Version()
			}

			kv := ui.NewKeyValueTable(cmd.OutOrStdout(), opts.noColor)
			kv.AddRow("annotate version", Version)
			kv.AddRow("Git commit", GitCommit)
			kv.AddRow("Build date", BuildDate)
			kv.AddRow("Go version", goVer)
			kv.Render()
		},
	}
}

// Execute runs the root command
func Execute() error {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			errorColor := color.New(color.FgRed, color.Bold)
			errorColor.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		}
		return err
	}
	return nil
}
