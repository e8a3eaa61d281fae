package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/alanjwade/tournament-manager-sub000/internal/api"
	"github.com/alanjwade/tournament-manager-sub000/internal/util/signal"
	"github.com/alanjwade/tournament-manager-sub000/internal/util/slogx"
)

const shutdownTimeout = 5 * time.Second

var aAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Args:  cobra.NoArgs,
	Short: "Serve the JSON API for document renderers",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer cancel()

		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()
		if aAddr != "" {
			a.opts.Addr = aAddr
		}
		log := a.log

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector())
		mux := http.NewServeMux()
		api.Handle(log, mux, "/api", a.keeper, reg, a.opts.API)

		eg, gctx := errgroup.WithContext(ctx)
		server := &http.Server{
			Addr:              a.opts.Addr,
			Handler:           mux,
			BaseContext:       func(net.Listener) context.Context { return gctx },
			ReadHeaderTimeout: 10 * time.Second,
		}
		eg.Go(func() error {
			log.Info("starting http server", slog.String("addr", a.opts.Addr))
			fmt.Fprintf(stderr, "Listening on http://%s\n", a.opts.Addr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("listen: %w", err)
			}
			return nil
		})
		eg.Go(func() error {
			<-gctx.Done()
			log.Info("stopping server")
			shutCtx, shutCancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer shutCancel()
			if err := server.Shutdown(shutCtx); err != nil {
				log.Warn("server shutdown failed", slogx.Err(err))
			}
			return nil
		})
		return eg.Wait()
	},
}

func init() {
	serveCmd.Flags().StringVarP(&aAddr, "addr", "a", "", "listen address (overrides the options file)")
}
