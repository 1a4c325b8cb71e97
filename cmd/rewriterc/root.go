package main

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/rewriterc/cmd/rewriterc/commands"
	"github.com/walteh/rewriterc/cmd/rewriterc/opts"
	"github.com/walteh/rewriterc/pkg/config"
	"gitlab.com/tozd/go/errors"
)

// configEnv overrides the default rule file path
const configEnv = "REWRITERC_CONFIG"

// newRootCmd builds the command tree. apply, check and rules get the rule file
// loaded before they run.
func newRootCmd() *cobra.Command {
	rootOpts := &opts.RootOpts{}

	cmd := &cobra.Command{
		Use:   "rewriterc",
		Short: "Apply ordered text rewrite rules across a source tree",
		Long: `rewriterc performs a large rename or API migration by applying an ordered
list of literal and regular expression rules to every selected file.

Rules come from a YAML, HCL or JSON rule file. Each rule sees the output of
the rules before it, so order matters.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctx := setupLogging(cmd.Context(), rootOpts.Debug)
			cmd.SetContext(ctx)

			switch cmd.Name() {
			case "apply", "check", "rules":
				return loadRules(ctx, rootOpts)
			default:
				return nil
			}
		},
	}

	addRootFlags(cmd, rootOpts)

	cmd.AddCommand(
		commands.NewApplyCmd(rootOpts),
		commands.NewCheckCmd(rootOpts),
		commands.NewRulesCmd(rootOpts),
		newVersionCmd(),
	)

	return cmd
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command, o *opts.RootOpts) {
	defaultConfig := os.Getenv(configEnv)
	if defaultConfig == "" {
		defaultConfig = ".rewriterc.yaml"
	}
	cmd.PersistentFlags().StringVarP(&o.ConfigFile, "config", "c", defaultConfig, "rule file path (env "+configEnv+")")
	cmd.PersistentFlags().BoolVarP(&o.Debug, "debug", "d", false, "enable debug logging")
}

// setupLogging configures zerolog based on flags
func setupLogging(ctx context.Context, debug bool) context.Context {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &logger
	if ctx == nil {
		ctx = context.Background()
	}
	return logger.WithContext(ctx)
}

// loadRules reads the rule file and compiles every rule
func loadRules(ctx context.Context, o *opts.RootOpts) error {
	cfg, err := config.Load(ctx, o.ConfigFile)
	if err != nil {
		return errors.Errorf("loading config: %w", err)
	}

	rules, err := cfg.RuleSet()
	if err != nil {
		return errors.Errorf("building rules from %s: %w", o.ConfigFile, err)
	}

	o.Config = cfg
	o.RuleSet = rules
	return nil
}
