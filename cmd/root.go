package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/maastricht-university/lipsync-pipeline/config"
	"github.com/maastricht-university/lipsync-pipeline/logging"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	cfgFile  string
	logLevel string

	conf *config.Root
	log  *logrus.Logger
}

func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "lipsync",
		Short: "Audio to viseme pipeline",
		Long: `lipsync turns speech audio into per-frame viseme weights for
facial animation.

Commands:
  process   - extract visemes from a wav file and export them
  serve     - HTTP and websocket endpoints
  phonemes  - phoneme timings from text
  history   - recent runs`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			conf, err := config.Load(a.cfgFile)
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			if a.logLevel != "" {
				conf.Pipeline.LogLvl = a.logLevel
			}
			a.conf = conf
			a.log = logging.NewWithOutput(cmd.ErrOrStderr(), conf.Pipeline.LogLvl, conf.Pipeline.LogFormat)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default: config/$CONFIG_ENV/config.yaml)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(
		newProcessCmd(a),
		newServeCmd(a),
		newPhonemesCmd(a),
		newHistoryCmd(a),
	)
	return root
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("error: ")+err.Error())
		os.Exit(1)
	}
}
