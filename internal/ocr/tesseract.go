package ocr

import (
	"context"

	"github.com/otiai10/gosseract/v2"
)

// TesseractEngine implements BaselineEngine using the gosseract client.
type TesseractEngine struct {
	clientFactory func() *gosseract.Client
}

// NewTesseractEngine constructs the Tesseract-backed baseline engine.
func NewTesseractEngine() *TesseractEngine {
	return &TesseractEngine{clientFactory: gosseract.NewClient}
}

func (e *TesseractEngine) Name() string { return "tesseract" }

// Extract performs OCR on a single page image file.
func (e *TesseractEngine) Extract(ctx context.Context, imagePath string) (string, error) {
	const op = "TesseractEngine.Extract"

	select {
	case <-ctx.Done():
		return "", WrapOCRError(op, ctx.Err(), "context canceled before extraction")
	default:
	}

	client := e.clientFactory()
	defer client.Close()

	if err := client.SetImage(imagePath); err != nil {
		return "", WrapOCRError(op, err, "failed to set image")
	}

	text, err := client.Text()
	if err != nil {
		return "", WrapOCRError(op, ErrOCRFailed, err.Error())
	}

	return text, nil
}
