package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"jobboard-engine/internal/events"
	"jobboard-engine/internal/httpapi"
)

var (
	serveNoPoll       bool
	serveSecretWrites bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the scheduled poller and the HTTP API",
	Long: `Migrates the store, runs one ingestion pass immediately and then every
polling.interval_minutes, and serves the job read API until interrupted.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveNoPoll, "no-poll", false, "Serve the API without the scheduled poller")
	serveCmd.Flags().BoolVar(&serveSecretWrites, "allow-secret-writes", false, "Expose PUT/DELETE /secrets/{account}")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, cfgPath, err := loadConfig()
	if err != nil {
		return err
	}

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	hub := events.NewHub()
	poller, err := buildPoller(cfg, st, hub)
	if err != nil {
		return err
	}

	schedulerDone := make(chan struct{})
	if serveNoPoll {
		close(schedulerDone)
	} else {
		go func() {
			defer close(schedulerDone)
			poller.Start(ctx, cfg.PollInterval())
		}()
	}
	// Runs write through st, so they must drain before the deferred Close.
	defer func() {
		stop()
		<-schedulerDone
		poller.Wait()
	}()

	ln, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler: httpapi.NewRouter(httpapi.Deps{
			Jobs:              st,
			Runs:              poller,
			Hub:               hub,
			Config:            cfg,
			ConfigPath:        cfgPath,
			RunContext:        ctx,
			AllowSecretWrites: serveSecretWrites,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[engine] listening on http://%s (config=%s store=%s)", ln.Addr(), cfgPath, cfg.Store.Driver)
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Printf("[engine] shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
