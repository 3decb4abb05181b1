package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/maastricht-university/lipsync-pipeline/export"
	"github.com/maastricht-university/lipsync-pipeline/history"
	"github.com/maastricht-university/lipsync-pipeline/orchestrator"
)

func newProcessCmd(a *app) *cobra.Command {
	var (
		outDir    string
		formats   []string
		frameSize int
		quiet     bool
	)
	c := &cobra.Command{
		Use:   "process <audio.wav>",
		Short: "Extract visemes from a wav file",
		Long: `Runs the clip through the lip-sync extractor frame by frame and writes
the configured exports plus summary.json into a new session directory.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("formats") {
				for _, f := range formats {
					if _, err := export.Lookup(f); err != nil {
						return err
					}
				}
				a.conf.Export.Formats = formats
			}
			if frameSize > 0 {
				a.conf.Audio.FrameSize = frameSize
			}
			if outDir == "" {
				outDir = a.conf.Paths.Outputs
			}

			var opts []orchestrator.Option
			if a.conf.Paths.History != "" {
				store, err := history.Open(a.conf.Paths.History)
				if err != nil {
					return err
				}
				defer store.Close()
				opts = append(opts, orchestrator.WithHistory(store))
			}

			p := orchestrator.NewPipeline(a.conf, a.log, opts...)
			res, err := p.Run(cmd.Context(), args[0], outDir)
			if err != nil {
				return fmt.Errorf("process %s: %w", args[0], err)
			}
			if !quiet {
				renderSummary(cmd.OutOrStdout(), res)
			}
			return nil
		},
	}
	c.Flags().StringVarP(&outDir, "out-dir", "o", "", "outputs root (default paths.outputs)")
	c.Flags().StringSliceVarP(&formats, "formats", "f", nil, "export formats: json, csv, yaml")
	c.Flags().IntVar(&frameSize, "frame-size", 0, "samples per frame (default audio.frame_size)")
	c.Flags().BoolVarP(&quiet, "quiet", "q", false, "no summary output")
	return c
}
