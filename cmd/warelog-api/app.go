package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/antonkhm/warelog/internal/api/httpapi"
	"github.com/antonkhm/warelog/internal/realtime"
)

type warelogAPIOpts struct {
	httpAddr string

	topic         string
	consumerGroup string

	onListen func(httpAddr string)
}

func runWarelogAPI(ctx context.Context, opts warelogAPIOpts, srv *httpapi.Server, feed *realtime.Feed) error {
	lis, err := net.Listen("tcp", opts.httpAddr)
	if err != nil {
		return err
	}
	if opts.onListen != nil {
		opts.onListen(lis.Addr().String())
	}

	go func() {
		slog.Info("kafka consumer started", "topic", opts.topic, "group", opts.consumerGroup)
		if err := feed.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			slog.Warn("realtime feed stopped", "error", err.Error())
		}
	}()

	httpSrv := &http.Server{Handler: srv.Router()}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
		_ = lis.Close()
	}()

	slog.Info("HTTP server listening", "addr", lis.Addr().String())

	httpErr := make(chan error, 1)
	go func() {
		httpErr <- httpSrv.Serve(lis)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-httpErr:
		return err
	}
}
