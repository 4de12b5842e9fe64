package ocr

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"donorscan/internal/extract"
	"donorscan/internal/logger"
	"donorscan/internal/similarity"
)

// DualConfig holds the reconciliation thresholds. The values are tunable
// because they were never formally derived; defaults match production.
type DualConfig struct {
	// ConfidenceThreshold is the minimum average per-word confidence at
	// which the secondary result is trusted as-is.
	ConfidenceThreshold float64

	// AmountTolerance is the maximum amount difference between the two
	// engines' parses that still counts as agreement.
	AmountTolerance float64

	// NameSimilarityCutoff is the minimum name-similarity ratio that still
	// counts as agreement.
	NameSimilarityCutoff float64
}

// DefaultDualConfig returns the production thresholds.
func DefaultDualConfig() DualConfig {
	return DualConfig{
		ConfidenceThreshold:  0.75,
		AmountTolerance:      0.01,
		NameSimilarityCutoff: 0.7,
	}
}

// secondary engine capability, decided once per process
type capability int

const (
	capUntried capability = iota
	capAvailable
	capUnavailable
)

// DualEngine runs the baseline engine on every page and reconciles its
// output against the optional secondary engine.
type DualEngine struct {
	baseline BaselineEngine
	factory  SecondaryFactory
	cfg      DualConfig
	log      zerolog.Logger

	mu        sync.Mutex
	state     capability
	secondary SecondaryEngine
}

// NewDualEngine builds the reconciling extractor. factory may be nil, in
// which case every result comes from the baseline engine.
func NewDualEngine(baseline BaselineEngine, factory SecondaryFactory, cfg DualConfig) *DualEngine {
	return &DualEngine{
		baseline: baseline,
		factory:  factory,
		cfg:      cfg,
		log:      logger.WithComponent("dual-ocr"),
	}
}

// Extract OCRs one page image. It never fails: a baseline error yields an
// empty-text result and any secondary engine failure is logged and ignored,
// leaving the baseline result untouched.
func (d *DualEngine) Extract(ctx context.Context, imagePath string) Result {
	baseText, err := d.baseline.Extract(ctx, imagePath)
	if err != nil {
		d.log.Error().Err(err).Str("image", imagePath).Msg("Baseline OCR failed")
		baseText = ""
	}
	base := Result{
		Text:       baseText,
		Confidence: BaselineConfidence,
		Engine:     EngineBaseline,
	}

	engine := d.secondaryEngine(ctx)
	if engine == nil {
		return base
	}

	secRes, err := d.runSecondary(ctx, engine, imagePath)
	if err != nil {
		d.log.Warn().Err(err).Str("image", imagePath).Msg("Secondary OCR failed, keeping baseline result")
		return base
	}

	if secRes.Confidence >= d.cfg.ConfidenceThreshold {
		return Result{
			Text:       secRes.Text,
			Confidence: secRes.Confidence,
			Engine:     engine.Name(),
		}
	}

	// Secondary is low-confidence: trust it only as a cross-check. If the
	// parsed fields contradict the baseline's, surface both texts.
	if reason := d.disagreement(baseText, secRes.Text); reason != "" {
		d.log.Info().
			Str("image", imagePath).
			Str("reason", reason).
			Float64("secondary_confidence", secRes.Confidence).
			Msg("Engines disagree, emitting composite result")
		return Result{
			Text:              compositeText(baseText, engine.Name(), secRes.Text),
			Confidence:        base.Confidence,
			Engine:            EngineDual,
			NeedsVerification: true,
		}
	}

	base.NeedsVerification = true
	return base
}

// secondaryEngine returns the lazily initialized secondary engine, or nil.
// Initialization happens at most once per process; failure sticks.
func (d *DualEngine) secondaryEngine(ctx context.Context) SecondaryEngine {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch d.state {
	case capAvailable:
		return d.secondary
	case capUnavailable:
		return nil
	}

	if d.factory == nil {
		d.state = capUnavailable
		return nil
	}

	engine, err := d.factory(ctx)
	if err != nil {
		d.log.Warn().Err(err).Msg("Secondary OCR engine initialization failed, disabled for process lifetime")
		d.state = capUnavailable
		return nil
	}

	d.log.Info().Str("engine", engine.Name()).Msg("Secondary OCR engine initialized")
	d.state = capAvailable
	d.secondary = engine
	return engine
}

func (d *DualEngine) runSecondary(ctx context.Context, engine SecondaryEngine, imagePath string) (result SecondaryResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = NewOCRError("runSecondary", ErrOCRFailed, fmt.Sprintf("panic: %v", r))
		}
	}()
	return engine.Extract(ctx, imagePath)
}

// disagreement parses both texts and reports the first contradiction found,
// or "" when the parses agree. A side with no text cannot contradict.
func (d *DualEngine) disagreement(baseText, secText string) string {
	if strings.TrimSpace(baseText) == "" || strings.TrimSpace(secText) == "" {
		return ""
	}

	baseFields := extract.Parse(baseText, false)
	secFields := extract.Parse(secText, false)

	if baseFields.Amount != nil && secFields.Amount != nil {
		if math.Abs(*baseFields.Amount-*secFields.Amount) > d.cfg.AmountTolerance {
			return "amount"
		}
	}
	if baseFields.CheckNumber != nil && secFields.CheckNumber != nil {
		if *baseFields.CheckNumber != *secFields.CheckNumber {
			return "check_number"
		}
	}
	if baseFields.Name != nil && secFields.Name != nil {
		if similarity.Ratio(*baseFields.Name, *secFields.Name) < d.cfg.NameSimilarityCutoff {
			return "name"
		}
	}

	return ""
}

func compositeText(baseText, secondaryName, secText string) string {
	return fmt.Sprintf("PRIMARY (%s):\n%s\n\nSECONDARY (%s):\n%s",
		EngineBaseline, baseText, secondaryName, secText)
}
