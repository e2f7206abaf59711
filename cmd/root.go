package cmd

import (
	"fmt"
	"os"

	"github.com/sashabaranov/go-openai"
	"github.com/spf13/cobra"
	"notekit/internal/config"
	"notekit/internal/enrich"
	"notekit/internal/logger"
	"notekit/internal/ocr"
	"notekit/internal/store"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "notekit",
	Short: "Notekit - import documents into searchable notes and flashcards",
	Long: `Notekit ingests scanned or typed PDFs, images and plain text files,
extracts their text with OCR, optionally enriches it with tags, a summary
and flashcards, and stores the result as structured notes.

Configuration is read from the environment (and an optional .env file):
  NOTEKIT_DATA_DIR   data directory (default: ~/.notekit)
  OCR_ENGINE         tesseract (default) or vision
  OCR_LANGUAGE       trained-data language code (default: eng)
  TESSDATA_DIR       tesseract trained data location
  ENRICH_PROVIDER    http, openai or none (default: none)
  ENRICH_URL         enrichment endpoint for ENRICH_PROVIDER=http
  OPENAI_API_KEY     API key for ENRICH_PROVIDER=openai`,
	Version: version,
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// openStore creates the file-backed store under the configured data dir.
func openStore(cfg *config.Config) (*store.Store, error) {
	kv, err := store.NewFileKV(cfg.DataDir)
	if err != nil {
		return nil, err
	}
	return store.New(kv), nil
}

// newEnricher builds the configured enrichment client. An unset provider
// means enrichment is skipped and every note gets the local fallback.
func newEnricher(cfg *config.Config) enrich.Enricher {
	switch cfg.EnrichProvider {
	case "http":
		return enrich.NewHTTPEnricher(cfg.EnrichURL, cfg.EnrichTimeout)
	case "openai":
		return enrich.NewOpenAIEnricher(openai.NewClient(cfg.OpenAIAPIKey), cfg.OpenAIModel)
	default:
		return enrich.Disabled{}
	}
}

// newEngineManager builds the OCR lifecycle manager for the configured
// provider plus the engine configuration handed to it at acquisition.
func newEngineManager(cfg *config.Config) (*ocr.Manager, ocr.Config, error) {
	factory, err := ocr.FactoryFor(cfg.OCREngine)
	if err != nil {
		return nil, ocr.Config{}, err
	}
	engineCfg := ocr.Config{
		Language:        cfg.OCRLanguage,
		DataDir:         cfg.TessdataDir,
		CredentialsFile: cfg.VisionCredentials,
	}
	return ocr.NewManager(factory), engineCfg, nil
}
