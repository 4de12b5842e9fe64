package ocr

import (
	"context"
	"io"
	"os"
	"strings"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/api/option"
	"google.golang.org/grpc/status"
)

// VisionEngine implements SecondaryEngine using Google Cloud Vision API's
// document text detection, which reports per-word confidence.
type VisionEngine struct {
	client *vision.ImageAnnotatorClient
}

// NewVisionEngine creates the secondary engine with credentials from the
// environment. It expects either GOOGLE_APPLICATION_CREDENTIALS path or
// GOOGLE_CREDENTIALS JSON in env, falling back to default credentials.
func NewVisionEngine(ctx context.Context) (*VisionEngine, error) {
	const op = "NewVisionEngine"

	var client *vision.ImageAnnotatorClient
	var err error

	// Check for inline credentials first
	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsJSON([]byte(credJSON)))
		if err != nil {
			return nil, WrapOCRError(op, err, "failed to create client with GOOGLE_CREDENTIALS")
		}
	} else if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsFile(credFile))
		if err != nil {
			return nil, WrapOCRError(op, err, "failed to create client with GOOGLE_APPLICATION_CREDENTIALS")
		}
	} else {
		// Try default credentials as fallback
		client, err = vision.NewImageAnnotatorClient(ctx)
		if err != nil {
			return nil, WrapOCRError(op, ErrMissingCredentials, "no credentials found in environment")
		}
	}

	return &VisionEngine{client: client}, nil
}

// NewVisionEngineWithClient creates the engine with an explicit client (for testing).
func NewVisionEngineWithClient(client *vision.ImageAnnotatorClient) *VisionEngine {
	return &VisionEngine{client: client}
}

func (v *VisionEngine) Name() string { return "vision" }

// Extract runs document text detection on a page image and averages the
// recognition confidence across all detected words.
func (v *VisionEngine) Extract(ctx context.Context, imagePath string) (SecondaryResult, error) {
	const op = "VisionEngine.Extract"

	file, err := os.Open(imagePath)
	if err != nil {
		return SecondaryResult{}, WrapOCRError(op, err, "failed to open image")
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return SecondaryResult{}, WrapOCRError(op, err, "failed to read image")
	}

	annotation, err := detectDocumentText(ctx, v.client, &visionpb.Image{Content: content})
	if err != nil {
		return SecondaryResult{}, WrapOCRError(op, ErrOCRFailed, err.Error())
	}
	if annotation == nil || strings.TrimSpace(annotation.Text) == "" {
		return SecondaryResult{}, WrapOCRError(op, ErrEmptyDocument, imagePath)
	}

	var confidenceSum float64
	var wordCount int
	for _, page := range annotation.Pages {
		for _, block := range page.Blocks {
			for _, paragraph := range block.Paragraphs {
				for _, word := range paragraph.Words {
					confidenceSum += float64(word.Confidence)
					wordCount++
				}
			}
		}
	}

	var avgConfidence float64
	if wordCount > 0 {
		avgConfidence = confidenceSum / float64(wordCount)
	}

	return SecondaryResult{
		Text:       annotation.Text,
		Confidence: avgConfidence,
	}, nil
}

// detectDocumentText reproduces the DetectDocumentText convenience helper
// that existed in cloud.google.com/go/vision/apiv1 before v2 removed the
// hand-written wrappers: a single-image BatchAnnotateImages call with the
// DOCUMENT_TEXT_DETECTION feature.
func detectDocumentText(ctx context.Context, client *vision.ImageAnnotatorClient, img *visionpb.Image) (*visionpb.TextAnnotation, error) {
	res, err := client.BatchAnnotateImages(ctx, &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{{
			Image:    img,
			Features: []*visionpb.Feature{{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION}},
		}},
	})
	if err != nil {
		return nil, err
	}
	resp := res.Responses[0]
	if resp.Error != nil {
		return nil, status.ErrorProto(resp.Error)
	}
	return resp.FullTextAnnotation, nil
}

// Close closes the underlying Vision client.
func (v *VisionEngine) Close() error {
	if v.client != nil {
		return v.client.Close()
	}
	return nil
}
