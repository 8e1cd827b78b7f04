package main

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/m3ux/internal/server"
	"github.com/desertthunder/m3ux/internal/shared"
	"github.com/urfave/cli/v3"
)

// Serve publishes a playlist over HTTP until interrupted.
//
// Records are loaded once at startup; restart the server to pick up changes.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	result, _, err := r.resolve(ctx, cmd)
	if err != nil {
		return err
	}

	cfg := r.config.Server
	if host := cmd.String("host"); host != "" {
		cfg.Host = host
	}
	if port := cmd.Int("port"); port > 0 {
		cfg.Port = port
	}
	if token := cmd.String("token"); token != "" {
		cfg.Token = token
	}

	router := server.NewBasicRouter()
	router.Use(
		server.RecoverMiddleware(r.logger),
		server.LoggingMiddleware(r.logger),
		server.TokenMiddleware(cfg.Token),
	)
	router.Handler(server.NewPlaylistHandler(result.Name, result.Records, shared.WithLogger(r.logger, "playlist", result.Name)))

	ln, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.Addr(), err)
	}

	link := playlistURL(ln.Addr(), cfg.Token)
	r.writePlain("Serving %s (%d entries) at %s\n", result.Name, len(result.Records), link)

	if cmd.Bool("open") {
		if err := shared.OpenBrowser(link); err != nil {
			r.logger.Warn("failed to open browser", "error", err)
		}
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.Serve(ctx, ln, router, r.logger)
}

func playlistURL(addr net.Addr, token string) string {
	host, port, err := net.SplitHostPort(addr.String())
	if err != nil {
		host, port = addr.String(), ""
	}
	if ip := net.ParseIP(host); ip != nil && ip.IsUnspecified() {
		host = "127.0.0.1"
	}

	u := url.URL{Scheme: "http", Host: host, Path: "/playlist.m3u"}
	if port != "" {
		u.Host = net.JoinHostPort(host, port)
	}
	if token != "" {
		u.RawQuery = url.Values{"token": {token}}.Encode()
	}
	return u.String()
}
