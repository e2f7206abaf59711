package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"notekit/internal/config"
	"notekit/internal/logger"
	"notekit/internal/pipeline"
	"notekit/pkg/models"
)

var importCmd = &cobra.Command{
	Use:   "import [files...]",
	Short: "Import documents as notes",
	Long: `Process one batch of files: classify each file, extract its text
(OCR for PDFs and images, direct read for plain text), enrich it with tags,
a summary and flashcards, and store the resulting notes.

Files are processed strictly in argument order. A file that fails does not
abort the batch; only OCR engine construction failure does. Unsupported file
kinds are rejected up front and never processed.`,
	Example: `  # Import a scanned PDF and an image
  notekit import lecture.pdf whiteboard.png

  # Import everything in a directory, quietly
  notekit import notes/*.txt --quiet`,
	Args: cobra.MinimumNArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().BoolP("quiet", "q", false, "Suppress per-file progress output")
}

func runImport(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("import")
	quiet, _ := cmd.Flags().GetBool("quiet")

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	docs, err := readDocuments(args)
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

	reporter := pipeline.NopReporter
	if !quiet {
		reporter = pipeline.ReporterFunc(func(p pipeline.Progress) {
			fmt.Printf("[%3d%%] %s\n", p.Percent, p.Message)
		})
	}

	orch := pipeline.NewWithDeps(manager, engineCfg, newEnricher(cfg), st, nil, reporter)

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	log.Info().Int("files", len(docs)).Str("engine", cfg.OCREngine).Msg("Starting import batch")
	result, err := orch.Run(ctx, docs)
	if err != nil {
		return fmt.Errorf("import batch failed: %w", err)
	}

	printSummary(result)
	return nil
}

// readDocuments loads the argument files into transient batch inputs. The
// media kind is left for the pipeline to classify from extension/content.
func readDocuments(paths []string) ([]models.Document, error) {
	docs := make([]models.Document, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		docs = append(docs, models.Document{
			Name: filepath.Base(path),
			Data: data,
		})
	}
	return docs, nil
}

func printSummary(result *pipeline.Result) {
	for _, r := range result.Rejected {
		fmt.Printf("rejected %s: %s\n", r.Name, r.Reason)
	}
	for _, f := range result.Failures {
		fmt.Printf("failed:  %s\n", f.Message)
	}
	for _, n := range result.Imported {
		fmt.Printf("imported %s (%s, %d tags, %d flashcards)\n", n.Title, n.Source, len(n.Tags), len(n.Flashcards))
	}

	switch {
	case result.NothingImported():
		fmt.Println("no files imported")
	case result.Attempted == 0:
		fmt.Println("nothing to import")
	default:
		fmt.Printf("%d of %d files imported\n", len(result.Imported), result.Attempted)
	}
}

// signalContext derives a context canceled on SIGINT/SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
