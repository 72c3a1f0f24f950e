package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"notepad-core/internal/config"
	"notepad-core/internal/filesystem"
	"notepad-core/internal/lock"
	"notepad-core/internal/logger"
	"notepad-core/internal/rpc"
	"notepad-core/internal/service"
	"notepad-core/internal/store"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "notepad-core",
		Short:         "Text file backend for the notepad desktop shell",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", "", "Path to a YAML config file")
	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(
		newServeCmd(),
		newReadCmd(),
		newWriteCmd(),
		newListCmd(),
		newDeleteCmd(),
		newRenameCmd(),
		newGreetCmd(),
		newConfigCmd(),
	)
	return root
}

// loadConfig resolves flags, NOTEPAD_* env and the optional config file.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	v := config.NewViper()
	if err := config.BindFlags(v, cmd.Flags()); err != nil {
		return nil, err
	}
	configFile, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(v, configFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config, output string) (*zap.SugaredLogger, error) {
	return logger.NewSugaredLogger(logger.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Output: output,
	})
}

// app bundles the services shared by every command.
type app struct {
	cfg        *config.Config
	logger     *zap.SugaredLogger
	files      *service.DefaultTextFileService
	recent     *service.RecentFilesService
	workDir    *service.WorkDirService
	dispatcher *rpc.Dispatcher
}

func newApp(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger) (*app, error) {
	fsAdapter := filesystem.NewDefaultFileSystemAdapter()

	files, err := service.NewDefaultTextFileService(fsAdapter, log, service.WithStartupFile(cfg.StartupFile))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize text file service: %w", err)
	}

	locker := lock.NewLockManager(cfg.OperationTimeout())
	recentStore, err := store.Open(ctx, filepath.Join(cfg.DataDir, service.RecentFilesStoreName), fsAdapter, locker, store.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("failed to open recent files store: %w", err)
	}
	settingsStore, err := store.Open(ctx, filepath.Join(cfg.DataDir, service.SettingsStoreName), fsAdapter, locker, store.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("failed to open settings store: %w", err)
	}
	recent, err := service.NewRecentFilesService(recentStore, log)
	if err != nil {
		return nil, err
	}
	workDir, err := service.NewWorkDirService(settingsStore)
	if err != nil {
		return nil, err
	}

	dispatcher, err := rpc.NewDispatcher(files,
		rpc.WithTimeout(cfg.OperationTimeout()),
		rpc.WithLogger(log),
		rpc.WithRecentFiles(recent),
		rpc.WithWorkDir(workDir),
	)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:        cfg,
		logger:     log,
		files:      files,
		recent:     recent,
		workDir:    workDir,
		dispatcher: dispatcher,
	}, nil
}
