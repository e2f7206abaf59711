package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"notekit/internal/config"
	"notekit/internal/logger"
	"notekit/internal/pipeline"
	"notekit/pkg/models"
)

var watchCmd = &cobra.Command{
	Use:   "watch [directory]",
	Short: "Import files dropped into a directory",
	Long: `Watch a directory and import every file created in it, one batch
per file. Writes are given a short settle delay so partially copied files
are not picked up mid-transfer. Stop with Ctrl-C.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().Duration("settle", 500*time.Millisecond, "Delay before importing a newly created file")
}

func runWatch(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("watch")
	settle, _ := cmd.Flags().GetDuration("settle")
	dir := args[0]

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("not a directory: %s", dir)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	manager, engineCfg, err := newEngineManager(cfg)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	log.Info().Str("dir", dir).Msg("Watching for new files")
	fmt.Printf("watching %s (Ctrl-C to stop)\n", dir)

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Watch stopped")
			return nil
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("Watcher error")
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) {
				continue
			}
			time.Sleep(settle)

			data, err := os.ReadFile(event.Name)
			if err != nil {
				log.Warn().Err(err).Str("file", event.Name).Msg("Skipping unreadable file")
				continue
			}

			// One batch per settled file; the engine handle is created and
			// released per batch by the orchestrator.
			orch := pipeline.New(manager, engineCfg, newEnricher(cfg), st)
			result, err := orch.Run(ctx, []models.Document{{
				Name: filepath.Base(event.Name),
				Data: data,
			}})
			if err != nil {
				log.Error().Err(err).Str("file", event.Name).Msg("Import batch failed")
				continue
			}
			printSummary(result)
		}
	}
}
