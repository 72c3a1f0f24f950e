package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"notepad-core/internal/config"
	"notepad-core/internal/logger"
	"notepad-core/internal/mcp"
	"notepad-core/internal/transport"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve [file]",
		Short: "Serve the file commands over HTTP, stdio JSON-RPC or MCP",
		Long: "Serve the file commands to the desktop shell.\n\n" +
			"An optional file argument is reported to the shell as the startup file.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				abs, err := filepath.Abs(args[0])
				if err != nil {
					return fmt.Errorf("resolve startup file: %w", err)
				}
				cfg.StartupFile = abs
			}
			return runServe(cmd.Context(), cfg)
		},
	}
}

func runServe(ctx context.Context, cfg *config.Config) error {
	log, err := newLogger(cfg, logger.OutputFor(cfg.Transport))
	if err != nil {
		return err
	}
	defer log.Sync()

	log.Infow("Effective configuration",
		"transport", cfg.Transport,
		"addr", cfg.Addr(),
		"data_dir", cfg.DataDir,
		"log_level", cfg.LogLevel,
		"operation_timeout", cfg.OperationTimeout(),
		"startup_file", cfg.StartupFile,
	)

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	runCtx, cancel := context.WithCancel(gctx)

	g.Go(func() error {
		defer cancel()
		switch cfg.Transport {
		case config.TransportHTTP:
			if cfg.LogLevel != "debug" {
				gin.SetMode(gin.ReleaseMode)
			}
			srv := transport.NewHTTPServer(transport.HTTPOptions{
				Addr:           cfg.Addr(),
				AllowedOrigins: cfg.AllowedOrigins,
			}, a.dispatcher, log)
			return srv.Serve(runCtx)
		case config.TransportStdio:
			return transport.NewStdioHandler(a.dispatcher, log).Start(runCtx, os.Stdin, os.Stdout)
		case config.TransportMCP:
			tools := mcp.NewToolServer(a.files, version, log,
				mcp.WithRecentFiles(a.recent),
				mcp.WithWorkDir(a.workDir),
			)
			return tools.Serve(runCtx, os.Stdin, os.Stdout)
		default:
			return fmt.Errorf("unsupported transport %q", cfg.Transport)
		}
	})
	g.Go(func() error {
		<-runCtx.Done()
		if ctx.Err() != nil {
			log.Infow("Shutdown signal received")
		}
		return nil
	})

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		return err
	}
	log.Infow("Server stopped")
	return nil
}
