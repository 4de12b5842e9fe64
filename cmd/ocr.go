package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"donorscan/internal/config"
	"donorscan/internal/extract"
	"donorscan/internal/logger"
	"donorscan/internal/ocr"
)

var ocrCmd = &cobra.Command{
	Use:   "ocr [image-file]",
	Short: "Run OCR and field extraction on a single page image",
	Long: `Run the dual-engine OCR and the check field extractor on a single page
image. This is a debugging aid for tuning extraction: it shows the engine
that produced the text, the confidence, whether verification was flagged,
and every field the extractor parsed.

Optional environment variables:
  GOOGLE_CREDENTIALS - Enables the Vision secondary engine; without it,
                       only the Tesseract baseline runs`,
	Example: `  # OCR a check page and show extracted fields
  donorscan ocr page_3.png

  # Parse the page as a buckslip
  donorscan ocr page_4.png --buckslip

  # Save the full result as JSON
  donorscan ocr page_3.png -o result.json`,
	Args: cobra.ExactArgs(1),
	RunE: runOCR,
}

func init() {
	rootCmd.AddCommand(ocrCmd)

	ocrCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	ocrCmd.Flags().Bool("buckslip", false, "Parse the page as a buckslip instead of a check")
	ocrCmd.Flags().Int("timeout", 120, "Processing timeout in seconds")
}

// ocrOutput is the JSON shape printed by the ocr command.
type ocrOutput struct {
	Text              string         `json:"text"`
	Engine            string         `json:"engine"`
	Confidence        float64        `json:"confidence"`
	NeedsVerification bool           `json:"needs_verification"`
	Fields            extract.Fields `json:"fields"`
}

func runOCR(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("ocr")

	outputPath, _ := cmd.Flags().GetString("output")
	isBuckslip, _ := cmd.Flags().GetBool("buckslip")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	imagePath := args[0]
	if info, err := os.Stat(imagePath); err != nil {
		return fmt.Errorf("cannot read image file %s: %w", imagePath, err)
	} else if info.Size() == 0 {
		return fmt.Errorf("image file is empty: %s", imagePath)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dual := ocr.NewDualEngine(ocr.NewTesseractEngine(), func(ctx context.Context) (ocr.SecondaryEngine, error) {
		return ocr.NewVisionEngine(ctx)
	}, ocr.DualConfig{
		ConfidenceThreshold:  cfg.SecondaryConfidenceThreshold,
		AmountTolerance:      cfg.AmountTolerance,
		NameSimilarityCutoff: cfg.NameSimilarityCutoff,
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutSecs)*time.Second)
	defer cancel()

	log.Info().Str("file", imagePath).Bool("buckslip", isBuckslip).Msg("Starting OCR")

	start := time.Now()
	result := dual.Extract(ctx, imagePath)
	fields := extract.Parse(result.Text, isBuckslip)

	log.Info().
		Str("engine", result.Engine).
		Float64("confidence", result.Confidence).
		Bool("needs_verification", result.NeedsVerification).
		Dur("duration", time.Since(start)).
		Int("text_length", len(result.Text)).
		Msg("OCR completed")

	data, err := json.MarshalIndent(ocrOutput{
		Text:              result.Text,
		Engine:            result.Engine,
		Confidence:        result.Confidence,
		NeedsVerification: result.NeedsVerification,
		Fields:            fields,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to create JSON output: %w", err)
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, data, 0o644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		log.Info().Str("output_file", outputPath).Msg("OCR results written to file")
		return nil
	}

	fmt.Println(string(data))
	return nil
}
