package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"docqa/internal/adapters/filewatcher"
	"docqa/internal/adapters/loader"
	"docqa/internal/domain/ports"
	httpserver "docqa/internal/infrastructure/http"
)

func newServeCmd() *cobra.Command {
	var watchDir string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			a, err := buildApp(logger)
			if err != nil {
				return err
			}
			defer a.close()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if watchDir == "" {
				watchDir = a.cfg.Ingest.WatchDir
			}
			if watchDir != "" {
				if err := a.watchFolder(ctx, watchDir); err != nil {
					return err
				}
			}

			server := httpserver.NewServer(
				a.ingest, a.answer, a.summarize,
				a.registry, a.extractor,
				a.cfg.Server.Addr, logger,
			)
			return server.Start(ctx)
		},
	}

	cmd.Flags().StringVar(&watchDir, "watch", "", "directory to watch for documents to auto-ingest")
	return cmd
}

// watchFolder ingests files dropped into dir while the server runs.
func (a *app) watchFolder(ctx context.Context, dir string) error {
	watcher, err := filewatcher.NewFSNotifyWatcher(nil, a.logger)
	if err != nil {
		return err
	}

	events, err := watcher.Watch(ctx, dir)
	if err != nil {
		watcher.Stop()
		return err
	}
	a.logger.Info("watching folder for documents", "dir", dir)

	go func() {
		defer watcher.Stop()
		for event := range events {
			if event.Operation == ports.FileDeleted {
				continue
			}
			a.ingestPath(ctx, event.Path)
		}
	}()
	return nil
}

func (a *app) ingestPath(ctx context.Context, path string) {
	l := loader.Select(a.loaders, path)
	if l == nil {
		a.logger.Warn("unsupported file format, skipping", "path", path)
		return
	}
	file, err := l.Load(ctx, path)
	if err != nil {
		a.logger.Warn("loading file failed", "path", path, "error", err)
		return
	}
	doc, err := a.ingest.Ingest(ctx, file.Pages, file.Filename)
	if err != nil {
		a.logger.Warn("ingesting file failed", "path", path, "error", err)
		return
	}
	a.logger.Info("auto-ingested document", "id", doc.ID, "filename", doc.Filename, "chunks", doc.ChunkCount)
}
