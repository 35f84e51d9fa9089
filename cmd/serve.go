package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/adosprint/internal/api"
	"github.com/joescharf/adosprint/internal/sprints"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start the HTTP API server.

By default it listens on 0.0.0.0:8001. Use --host and --port to change it.
Callers authenticate every data request with their own PAT:

  curl -H 'Authorization: Bearer YOUR_PAT' http://localhost:8001/sprints`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveRun(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("host", "0.0.0.0", "interface to listen on")
	serveCmd.Flags().IntP("port", "p", 8001, "port to listen on")
	_ = viper.BindPFlag("host", serveCmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("port", serveCmd.Flags().Lookup("port"))
}

// newAPIServer wires the API server from the current configuration.
func newAPIServer(logger *slog.Logger) (*api.Server, error) {
	loc, err := time.LoadLocation(viper.GetString("timezone"))
	if err != nil {
		return nil, fmt.Errorf("load timezone: %w", err)
	}

	client := newDevopsClient(logger)
	if !client.Configured() {
		logger.Warn("AZURE_ORG or AZURE_PROJECT not set; data endpoints will answer 500")
	}

	var digester api.Digester
	if c := newLLMClient(); c != nil {
		digester = c
	}
	return api.NewServer(sprints.NewService(client, logger), digester, loc, logger), nil
}

func serveRun(ctx context.Context) error {
	logger := newLogger()
	srv, err := newAPIServer(logger)
	if err != nil {
		return err
	}

	addr := net.JoinHostPort(viper.GetString("host"), strconv.Itoa(viper.GetInt("port")))
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, shutdownSignals()...)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpSrv.ListenAndServe()
	}()
	ui.Info("Serving API at http://%s", addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	ui.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}
