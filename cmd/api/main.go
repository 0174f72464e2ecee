package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "time/tzdata"

	"support-insights-go/internal/bootstrap"
	"support-insights-go/internal/config"
	"support-insights-go/internal/logger"
	"support-insights-go/internal/server"
)

func main() {
	log := logger.New()

	cfg, err := config.Load() // loads .env
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}
	st, err := bootstrap.Open(cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to build service graph")
	}
	defer st.Close()

	log.WithField("service", "support-insights-go").WithField("env", cfg.Environment).Info("starting service")

	addr := fmt.Sprintf(":%s", cfg.Port)
	srv := &http.Server{
		Addr:        addr,
		Handler:     server.New(st.Service, st.Auth).Handler(),
		ReadTimeout: 15 * time.Second,
		// insight generation may wait on the webhook for the full insight timeout
		WriteTimeout: cfg.InsightTimeout() + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.WithError(err).Fatal("listen failed")
	}
	log.WithField("addr", addr).Info("listening")
	// in-flight insight generations get their full timeout to finish
	if err := serve(ctx, srv, ln, cfg.InsightTimeout()+10*time.Second); err != nil {
		log.WithError(err).Error("server terminated")
		return
	}
	log.Info("server stopped")
}

// serve runs srv on ln until ctx is done, then drains in-flight requests for
// up to grace. It returns only after the drain finished.
func serve(ctx context.Context, srv *http.Server, ln net.Listener, grace time.Duration) error {
	done := make(chan error, 1)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
		defer cancel()
		done <- srv.Shutdown(shutdownCtx)
	}()

	if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return <-done
}
