// Package analysis normalizes the AI analysis text stored alongside influencer
// profiles. The column usually holds JSON, sometimes wrapped in a markdown
// code fence, occasionally neither.
package analysis

import "strings"

// ContentKind tags what a raw analysis string looks like.
type ContentKind int

const (
	ContentAbsent ContentKind = iota
	ContentFenced
	ContentRaw
)

func (k ContentKind) String() string {
	switch k {
	case ContentAbsent:
		return "absent"
	case ContentFenced:
		return "fenced"
	case ContentRaw:
		return "raw"
	default:
		return "unknown"
	}
}

// Wrapper describes a textual envelope around an embedded payload.
type Wrapper struct {
	Name  string
	Open  string
	Close string
}

// Order matters: the tagged json fence must be tried before the bare fence.
var defaultWrappers = []Wrapper{
	{Name: "json-fence", Open: "```json", Close: "```"},
	{Name: "fence", Open: "```", Close: "```"},
}

// DefaultWrappers returns the markdown fences recognised out of the box.
func DefaultWrappers() []Wrapper {
	return append([]Wrapper(nil), defaultWrappers...)
}

// Content is the result of detection. Body is the payload with any wrapper removed.
type Content struct {
	Kind    ContentKind
	Wrapper string
	Body    string
}

// Detector classifies raw analysis text.
type Detector struct {
	wrappers []Wrapper
}

// NewDetector builds a detector for the given wrappers, or the defaults when none are passed.
func NewDetector(wrappers ...Wrapper) *Detector {
	if len(wrappers) == 0 {
		wrappers = DefaultWrappers()
	}
	return &Detector{wrappers: wrappers}
}

// Detect classifies text. Leading and trailing whitespace around a fence is ignored.
func (d *Detector) Detect(text string) Content {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Content{Kind: ContentAbsent}
	}

	for _, w := range d.wrappers {
		if w.Open == "" || !strings.HasPrefix(trimmed, w.Open) {
			continue
		}
		body := strings.TrimPrefix(trimmed, w.Open)
		if w.Close != "" {
			body = strings.TrimSuffix(strings.TrimSpace(body), w.Close)
		}
		return Content{Kind: ContentFenced, Wrapper: w.Name, Body: strings.TrimSpace(body)}
	}

	return Content{Kind: ContentRaw, Body: trimmed}
}
