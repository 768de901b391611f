package cmd

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"skillshots/internal/server"
)

func newServeCmd(e *env) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve run manifests, logs and screenshots over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("port") {
				port = e.cfg.ServePort
			}
			srv := server.NewHTTPServer(port, server.New(e.cfg.OutputDir, e.logger).Routes())

			errCh := make(chan error, 1)
			go func() {
				e.logger.Info("serving captures", zap.String("addr", srv.Addr), zap.String("dir", e.cfg.OutputDir))
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-cmd.Context().Done():
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return srv.Shutdown(ctx)
			}
		},
	}

	cmd.Flags().IntVar(&port, "port", 8787, "Port to listen on (env SHOTS_SERVE_PORT)")
	return cmd
}
