package cmd

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/maastricht-university/lipsync-pipeline/audio"
	"github.com/maastricht-university/lipsync-pipeline/phoneme"
)

func newPhonemesCmd(a *app) *cobra.Command {
	var (
		duration float64
		wavPath  string
		explicit bool
	)
	c := &cobra.Command{
		Use:   "phonemes <text>",
		Short: "Print phoneme and viseme timings for text",
		Long: `Spreads the phonemes of text evenly over a clip. The clip length comes
from --duration or from the header of --audio. With --arpabet the
arguments are taken as explicit ARPAbet or IPA symbols, "|" between words.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if wavPath != "" {
				w, err := audio.Load(wavPath)
				if err != nil {
					return err
				}
				duration = w.Duration
			}
			if duration <= 0 {
				return errors.New("a positive --duration or an --audio clip is required")
			}

			text := strings.Join(args, " ")
			var symbols []string
			if explicit {
				symbols = phoneme.Parse(text)
			} else {
				symbols = phoneme.FromText(text)
			}
			a.log.WithField("phonemes", len(symbols)).Debug("phonemes distributed")

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(phoneme.Distribute(symbols, duration))
		},
	}
	c.Flags().Float64VarP(&duration, "duration", "d", 0, "clip length in seconds")
	c.Flags().StringVar(&wavPath, "audio", "", "wav clip to take the duration from")
	c.Flags().BoolVar(&explicit, "arpabet", false, "arguments are phoneme symbols, not text")
	return c
}
