package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"docqa/internal/adapters/loader"
)

func newIngestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <path>...",
		Short: "Ingest documents from the filesystem",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			a, err := buildApp(logger)
			if err != nil {
				return err
			}
			defer a.close()

			ctx := cmd.Context()
			var failed int
			for _, pattern := range args {
				matches, _ := filepath.Glob(pattern)
				if matches == nil {
					matches = []string{pattern}
				}
				for _, path := range matches {
					l := loader.Select(a.loaders, path)
					if l == nil {
						fmt.Printf("skip %s: unsupported format\n", path)
						continue
					}
					file, err := l.Load(ctx, path)
					if err != nil {
						fmt.Printf("fail %s: %v\n", path, err)
						failed++
						continue
					}
					doc, err := a.ingest.Ingest(ctx, file.Pages, file.Filename)
					if err != nil {
						fmt.Printf("fail %s: %v\n", path, err)
						failed++
						continue
					}
					fmt.Printf("ok   %s: document %s, %d chunks\n", path, doc.ID, doc.ChunkCount)
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d document(s) failed to ingest", failed)
			}
			return nil
		},
	}
}
