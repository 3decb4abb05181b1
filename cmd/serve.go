package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/maastricht-university/lipsync-pipeline/clients"
	"github.com/maastricht-university/lipsync-pipeline/server"
	"github.com/maastricht-university/lipsync-pipeline/speech"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string
	c := &cobra.Command{
		Use:   "serve",
		Short: "Serve transcription, speech and viseme endpoints",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr != "" {
				a.conf.Server.Addr = addr
			}
			h := clients.NewHTTP()
			session := speech.NewSession(a.conf.Speech.Models, speech.NewFactory(h), a.log)
			if m := a.conf.Speech.DefaultModel; m != "" {
				if err := session.Swap(m); err != nil {
					a.log.WithError(err).Warn("default transcription model not loaded")
				}
			}

			srv := server.New(server.Deps{
				Config:  a.conf,
				Log:     a.log,
				Session: session,
				HTTP:    h,
			})
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.Run(ctx)
		},
	}
	c.Flags().StringVar(&addr, "addr", "", "listen address (default server.addr)")
	return c
}
