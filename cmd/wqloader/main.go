// Command wqloader loads laboratory water-quality exports into the warehouse.
package main

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/xerrors"

	"github.com/kernwater/wqloader/config"
)

type rootOptions struct {
	configPath  string
	envFile     string
	logLevel    string
	pretty      bool
	pushgateway string
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "wqloader",
		Short:        "Load laboratory water-quality exports into the warehouse",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return loadEnv(opts.envFile, cmd.Flags().Changed("env-file"))
		},
	}

	f := cmd.PersistentFlags()
	f.StringVarP(&opts.configPath, "config", "c", "wqloader.yaml", "Configuration file")
	f.StringVar(&opts.envFile, "env-file", ".env", "File with warehouse credentials")
	f.StringVar(&opts.logLevel, "log-level", "info", "Log level")
	f.BoolVar(&opts.pretty, "pretty", false, "Human friendly logs")
	f.StringVar(&opts.pushgateway, "pushgateway", "", "Prometheus Pushgateway URL for run metrics")

	cmd.AddCommand(newRunCmd(opts), newReplayCmd(opts), newNormalizeCmd())

	return cmd
}

// loadEnv reads the env file. A missing default file is not an error.
func loadEnv(path string, explicit bool) error {
	err := godotenv.Load(path)
	if err == nil {
		return nil
	}
	if !explicit && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return xerrors.Errorf("failed to load %s: %w", path, err)
}

func (o *rootOptions) config() (*config.Config, error) {
	return config.Load(o.configPath)
}

func (o *rootOptions) logger() (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(o.logLevel)
	if err != nil {
		return zerolog.Nop(), xerrors.Errorf("invalid log level %q: %w", o.logLevel, err)
	}

	var l zerolog.Logger
	if o.pretty {
		l = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		l = zerolog.New(os.Stderr)
	}
	return l.Level(lvl).With().Timestamp().Logger(), nil
}
