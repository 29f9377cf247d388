// ABOUTME: Entry point for the mymanager admin backoffice
// ABOUTME: Builds the cobra command tree and loads configuration before every data command

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/walidgreens2005-svg/my-manager-de-Walid-Haiti-et-Imane-Hammouda/internal/config"
)

var version = "dev"

const banner = `
  _ __ ___  _   _ _ __ ___   __ _ _ __   __ _  __ _  ___ _ __
 | '_ ` + "`" + ` _ \| | | | '_ ` + "`" + ` _ \ / _` + "`" + ` | '_ \ / _` + "`" + ` |/ _` + "`" + ` |/ _ \ '__|
 | | | | | | |_| | | | | | | (_| | | | | (_| | (_| |  __/ |
 |_| |_| |_|\__, |_| |_| |_|\__,_|_| |_|\__,_|\__, |\___|_|
            |___/                             |___/
`

// skipConfig marks commands that run without a loaded configuration.
const skipConfig = "skip-config"

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// cli carries the state shared by every subcommand.
type cli struct {
	configFlag string
	levelFlag  string

	cfg     *config.Config
	cfgPath string
	logger  *slog.Logger

	out    io.Writer
	errOut io.Writer
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	c := &cli{out: out, errOut: errOut}

	root := &cobra.Command{
		Use:               "mymanager",
		Short:             "Admin backoffice for users, products, orders, customers and invoices",
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.loadConfig,
	}
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.StringVarP(&c.configFlag, "config", "c", "", "config file (default $"+config.EnvConfigPath+", ./mymanager.yaml or ./mymanager.toml)")
	flags.StringVar(&c.levelFlag, "log-level", "", "override logging.level (debug, info, warn, error)")

	root.AddCommand(
		c.serveCmd(),
		c.initCmd(),
		c.listCmd(),
		c.showCmd(),
		c.exportCmd(),
		c.activityCmd(),
		c.resetCmd(),
		c.passwdCmd(),
		c.healthCmd(),
	)
	return root
}

func (c *cli) loadConfig(cmd *cobra.Command, _ []string) error {
	if _, ok := cmd.Annotations[skipConfig]; ok {
		c.logger = setupLogger(config.LoggingConfig{Level: c.levelFlag}, c.errOut)
		return nil
	}

	cfg, path, err := config.Resolve(c.configFlag)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if c.levelFlag != "" {
		if !slices.Contains([]string{"debug", "info", "warn", "error"}, c.levelFlag) {
			return fmt.Errorf("invalid --log-level %q", c.levelFlag)
		}
		cfg.Logging.Level = c.levelFlag
	}

	c.cfg = cfg
	c.cfgPath = path
	c.logger = setupLogger(cfg.Logging, c.errOut)
	slog.SetDefault(c.logger)
	return nil
}

func (c *cli) printBanner() {
	cyan := color.New(color.FgCyan)
	cyan.Fprint(c.out, banner)
	fmt.Fprintf(c.out, "  mymanager %s\n\n", version)
}
