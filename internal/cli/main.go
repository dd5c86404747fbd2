package cli

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/forPelevin/mediashop/internal/config"
	"github.com/forPelevin/mediashop/internal/logging"
)

// app is what every subcommand gets once the root has loaded config.
type app struct {
	cfg *config.Config
	log hclog.Logger
}

func Main() {
	_ = godotenv.Load() // best-effort: load .env if present

	root := newRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:          "mediashop",
		Short:        "Trim, adjust, caption and export videos and photos",
		SilenceUsage: true,
	}
	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)
	root.SilenceErrors = true

	root.PersistentFlags().String("config", "", "Config file (default ~/.config/mediashop/config.toml)")
	root.PersistentFlags().String("log-level", "", "Log level: trace, debug, info, warn, error")

	load := func(cmd *cobra.Command, _ []string) error {
		path, _ := cmd.Flags().GetString("config")
		cfg, _, _, err := config.Load(path)
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
			cfg.Logging.Level = lvl
		}
		log, err := logging.New(logging.Options{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
			Output: cmd.ErrOrStderr(),
		})
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		a.cfg, a.log = cfg, log
		return nil
	}

	for _, c := range []*cobra.Command{
		newExportCommand(a),
		newCaptionsCommand(a),
		newPhotoCommand(a),
		newPreviewCommand(a),
		newJobsCommand(a),
	} {
		c.PreRunE = load
		root.AddCommand(c)
	}
	root.AddCommand(newConfigCommand())
	return root
}
