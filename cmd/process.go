package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"donorscan/internal/config"
	"donorscan/internal/hubspot"
	"donorscan/internal/logger"
	"donorscan/internal/ocr"
	"donorscan/internal/pipeline"
	"donorscan/internal/raster"
	"donorscan/internal/store"
	"donorscan/pkg/models"
)

var processCmd = &cobra.Command{
	Use:   "process [pdf-file]",
	Short: "Process a batch PDF from the command line",
	Long: `Run the full extraction pipeline on a scanned batch PDF without the API
server: rasterize pages, OCR and extract each check, match contacts, and
print the resulting records as JSON.

The batch and its records are persisted the same way API uploads are, so
a processed batch can be reviewed through the server afterwards.`,
	Example: `  # Process a mail batch
  donorscan process mail-2024-03-01.pdf --kind mail

  # Process a deposit scan with a campaign code
  donorscan process deposit.pdf --kind deposit_scan --campaign SPRING24`,
	Args: cobra.ExactArgs(1),
	RunE: runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().String("kind", "mail", "Batch kind: mail or deposit_scan")
	processCmd.Flags().String("campaign", "", "Campaign code attached to the batch")
	processCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	processCmd.Flags().Int("timeout", 1800, "Processing timeout in seconds")
}

func runProcess(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("process")

	kindFlag, _ := cmd.Flags().GetString("kind")
	campaign, _ := cmd.Flags().GetString("campaign")
	outputPath, _ := cmd.Flags().GetString("output")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	kind := models.BatchKind(kindFlag)
	if kind != models.KindMail && kind != models.KindDepositScan {
		return fmt.Errorf("invalid --kind %q: must be mail or deposit_scan", kindFlag)
	}

	pdfPath := args[0]
	if info, err := os.Stat(pdfPath); err != nil {
		return fmt.Errorf("cannot read PDF file %s: %w", pdfPath, err)
	} else if info.Size() == 0 {
		return fmt.Errorf("PDF file is empty: %s", pdfPath)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	db, err := store.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	st := store.New(db)

	crm := hubspot.NewClient(cfg.HubSpotAPIKey)
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
		hubspot.NewMatcher(crm),
		filepath.Join(cfg.UploadDir, "pages"),
		cfg.MatchConfidenceThreshold,
	)

	batch := &models.Batch{
		ID:           uuid.New(),
		Filename:     filepath.Base(pdfPath),
		Kind:         kind,
		CampaignCode: campaign,
		Status:       models.BatchStatusConverting,
		CreatedAt:    time.Now().UTC(),
	}
	if err := st.Batches.Create(batch); err != nil {
		return fmt.Errorf("failed to create batch: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutSecs)*time.Second)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigChan:
			log.Info().Str("signal", sig.String()).Msg("Received interrupt signal, canceling batch processing")
			cancel()
		case <-ctx.Done():
		}
	}()

	log.Info().
		Str("batch_id", batch.ID.String()).
		Str("file", pdfPath).
		Str("kind", string(kind)).
		Msg("Processing batch")

	runner.Run(ctx, batch.ID, pdfPath, kind)

	final := status.Get(batch.ID)
	if final.Status == pipeline.StatusError {
		return fmt.Errorf("batch processing failed: %s", final.Message)
	}

	records, err := st.Records.ListByBatch(batch.ID)
	if err != nil {
		return fmt.Errorf("failed to load records: %w", err)
	}

	out := struct {
		BatchID uuid.UUID            `json:"batch_id"`
		Records []models.CheckRecord `json:"records"`
	}{BatchID: batch.ID, Records: records}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to create JSON output: %w", err)
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, data, 0o644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		log.Info().Str("output_file", outputPath).Int("records", len(records)).Msg("Results written to file")
		return nil
	}

	fmt.Println(string(data))
	return nil
}
