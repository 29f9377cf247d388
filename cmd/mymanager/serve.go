// ABOUTME: serve and health subcommands: run the backoffice and check a running one
// ABOUTME: serve stops gracefully on SIGINT or SIGTERM

package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/walidgreens2005-svg/my-manager-de-Walid-Haiti-et-Imane-Hammouda/internal/server"
)

func (c *cli) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web backoffice and JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return c.runServe(ctx)
		},
	}
}

func (c *cli) runServe(ctx context.Context) error {
	c.printBanner()

	green := color.New(color.FgGreen)
	cyan := color.New(color.FgCyan)
	gray := color.New(color.FgHiBlack)

	configPath := c.cfgPath
	if configPath == "" {
		configPath = "(defaults)"
	}
	line := func(label, value string) {
		green.Fprint(c.out, "    ▶ ")
		fmt.Fprintf(c.out, "%-10s %s\n", label+":", value)
	}
	line("Config", configPath)
	line("Mode", c.cfg.Data.Mode)
	line("Storage", c.cfg.Storage.Driver)
	if c.cfg.Server.HTTPAddr != "" {
		line("HTTP", c.cfg.Server.HTTPAddr)
	}
	if c.cfg.Tailscale.Enabled {
		green.Fprint(c.out, "    ▶ ")
		fmt.Fprint(c.out, "Tailscale: ")
		cyan.Fprint(c.out, c.cfg.Tailscale.Hostname)
		if c.cfg.Tailscale.Funnel {
			color.New(color.FgYellow).Fprint(c.out, " [funnel]")
		}
		if c.cfg.Tailscale.Ephemeral {
			gray.Fprint(c.out, " (ephemeral)")
		}
		fmt.Fprintln(c.out)
	}
	fmt.Fprintln(c.out)

	c.logger.Info("starting mymanager",
		"config", configPath,
		"http_addr", c.cfg.Server.HTTPAddr,
		"mode", c.cfg.Data.Mode,
	)

	srv, err := server.New(ctx, c.cfg, c.logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	return srv.Run(ctx)
}

func (c *cli) healthCmd() *cobra.Command {
	var target string
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check the liveness and readiness endpoints of a running server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if target == "" {
				target = c.cfg.Server.BaseURL
			}
			if target == "" {
				target = "http://" + c.cfg.Server.HTTPAddr
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			return c.runHealth(ctx, strings.TrimRight(target, "/"))
		},
	}
	cmd.Flags().StringVar(&target, "url", "", "server base URL (default server.base_url or http://server.http_addr)")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "request timeout")
	return cmd
}

func (c *cli) runHealth(ctx context.Context, baseURL string) error {
	for _, path := range []string{"/health", "/health/ready"} {
		body, err := checkEndpoint(ctx, baseURL+path)
		if err != nil {
			color.New(color.FgRed).Fprintf(c.out, "✗ %s: %v\n", path, err)
			return fmt.Errorf("unhealthy: %w", err)
		}
		color.New(color.FgGreen).Fprintf(c.out, "✓ %s: %s\n", path, body)
	}
	fmt.Fprintln(c.out, "healthy")
	return nil
}

func checkEndpoint(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return strings.TrimSpace(string(body)), nil
}
