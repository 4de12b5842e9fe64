package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"donorscan/internal/config"
	"donorscan/internal/hubspot"
	"donorscan/internal/logger"
	"donorscan/internal/ocr"
	"donorscan/internal/pipeline"
	"donorscan/internal/raster"
	"donorscan/internal/routes"
	"donorscan/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the batch review API server",
	Long: `Start the HTTP server that accepts batch uploads, runs the extraction
pipeline in the background, and serves the review and submission API.

Required environment variables:
  DATABASE_URL - Postgres connection string

Optional environment variables:
  LISTEN_ADDR        - Listen address (default :8080)
  UPLOAD_DIR         - Directory for uploaded PDFs and page images (default uploads)
  HUBSPOT_API_KEY    - Enables contact matching and deal submission
  GOOGLE_CREDENTIALS - Enables the Vision secondary OCR engine`,
	Example: `  # Start on the default port
  donorscan serve

  # Start on a custom address
  LISTEN_ADDR=:9000 donorscan serve`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("serve")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	db, err := store.Open(cfg.DatabaseURL)
	if err != nil {
		log.Error().Err(err).Msg("Failed to connect to database")
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	st := store.New(db)

	crm := hubspot.NewClient(cfg.HubSpotAPIKey)
	matcher := hubspot.NewMatcher(crm)
	if !crm.Configured() {
		log.Warn().Msg("HUBSPOT_API_KEY not set, contact matching and submission disabled")
	}

	baseline := ocr.NewTesseractEngine()
	dual := ocr.NewDualEngine(baseline, func(ctx context.Context) (ocr.SecondaryEngine, error) {
		return ocr.NewVisionEngine(ctx)
	}, ocr.DualConfig{
		ConfidenceThreshold:  cfg.SecondaryConfidenceThreshold,
		AmountTolerance:      cfg.AmountTolerance,
		NameSimilarityCutoff: cfg.NameSimilarityCutoff,
	})

	status := pipeline.NewStatusStore()
	runner := pipeline.NewRunner(
		st,
		status,
		raster.New(cfg.RasterDPI),
		baseline,
		dual,
		matcher,
		filepath.Join(cfg.UploadDir, "pages"),
		cfg.MatchConfidenceThreshold,
	)

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, st, status, runner, crm, matcher, filepath.Join(cfg.UploadDir, "pdfs"))

	log.Info().Str("addr", cfg.ListenAddr).Msg("Starting API server")
	return r.Run(cfg.ListenAddr)
}
