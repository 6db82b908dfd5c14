package analysis

import (
	"encoding/json"

	"github.com/charmbracelet/log"

	"github.com/rpattn/influencer-api/internal/domain"
)

// DefaultField is the record column holding the analysis text.
const DefaultField = "ai_analysis"

// Outcome reports what normalization did to a record.
type Outcome string

const (
	OutcomeAbsent    Outcome = "absent"
	OutcomeUntouched Outcome = "untouched"
	OutcomeParsed    Outcome = "parsed"
	OutcomeFailed    Outcome = "failed"
)

// ParseFailed returns the sentinel stored in place of analysis text that could not be parsed.
func ParseFailed() map[string]any {
	return map[string]any{"error": "parse failed"}
}

// Options is the per-endpoint normalization policy.
type Options struct {
	// ParseRaw parses unfenced text as JSON. When false, unfenced text is returned as is.
	ParseRaw bool
}

// Normalizer rewrites the analysis column of in-flight records.
type Normalizer struct {
	field    string
	detector *Detector
	logger   *log.Logger
	observe  func(Outcome)
}

// NormalizerOption customises a Normalizer.
type NormalizerOption func(*Normalizer)

// WithField overrides the analysis column name.
func WithField(field string) NormalizerOption {
	return func(n *Normalizer) {
		if field != "" {
			n.field = field
		}
	}
}

// WithDetector replaces the content detector.
func WithDetector(d *Detector) NormalizerOption {
	return func(n *Normalizer) {
		if d != nil {
			n.detector = d
		}
	}
}

// WithLogger sets the logger used to report parse failures.
func WithLogger(logger *log.Logger) NormalizerOption {
	return func(n *Normalizer) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// WithObserver registers a callback invoked once per normalized record.
func WithObserver(fn func(Outcome)) NormalizerOption {
	return func(n *Normalizer) {
		n.observe = fn
	}
}

// NewNormalizer builds a Normalizer.
func NewNormalizer(opts ...NormalizerOption) *Normalizer {
	n := &Normalizer{
		field:    DefaultField,
		detector: NewDetector(),
		logger:   log.Default(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Field returns the column the normalizer rewrites.
func (n *Normalizer) Field() string {
	return n.field
}

// Normalize converts raw analysis text into a structured value. The returned
// error is informational: on failure the value is already the sentinel.
func (n *Normalizer) Normalize(raw string, opts Options) (any, Outcome, error) {
	content := n.detector.Detect(raw)
	switch content.Kind {
	case ContentAbsent:
		return nil, OutcomeAbsent, nil
	case ContentRaw:
		if !opts.ParseRaw {
			return raw, OutcomeUntouched, nil
		}
	}

	var parsed any
	if err := json.Unmarshal([]byte(content.Body), &parsed); err != nil {
		return ParseFailed(), OutcomeFailed, err
	}
	return parsed, OutcomeParsed, nil
}

// Apply normalizes the analysis column of record in place. Missing, null or
// blank columns are left exactly as they were.
func (n *Normalizer) Apply(record domain.Record, opts Options) Outcome {
	outcome := n.apply(record, opts)
	if n.observe != nil {
		n.observe(outcome)
	}
	return outcome
}

func (n *Normalizer) apply(record domain.Record, opts Options) Outcome {
	if record == nil {
		return OutcomeAbsent
	}
	value, ok := record[n.field]
	if !ok || value == nil {
		return OutcomeAbsent
	}

	var raw string
	switch v := value.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		// Already structured, e.g. a json/jsonb column decoded by the driver.
		return OutcomeUntouched
	}

	normalized, outcome, err := n.Normalize(raw, opts)
	switch outcome {
	case OutcomeAbsent:
		return outcome
	case OutcomeFailed:
		n.logger.Warn("analysis parse failed", "id", record.ID(), "field", n.field, "err", err)
	}
	record[n.field] = normalized
	return outcome
}

// ApplyAll normalizes every record and returns how many failed to parse.
func (n *Normalizer) ApplyAll(records []domain.Record, opts Options) int {
	failed := 0
	for _, record := range records {
		if n.Apply(record, opts) == OutcomeFailed {
			failed++
		}
	}
	return failed
}
