// Package export turns a finalized list of question records into one of the
// external deliverable formats (JSON dialects, QTI packages, CSV, Word).
package export

import (
	"fmt"
	"strings"

	"github.com/tentagen/tentagen/internal/question"
)

// Metadata carries everything an encoder needs besides the questions
// themselves. Language and Difficulty are trusted to be validated upstream;
// unrecognized values fall through to raw-string display, never to an error.
type Metadata struct {
	Subject    string              `json:"subject"`
	Topic      string              `json:"topic"`
	Difficulty question.Difficulty `json:"difficulty"`
	Language   question.Language   `json:"language"`
	Format     string              `json:"format"`

	Term           string `json:"term,omitempty"`
	Semester       string `json:"semester,omitempty"`
	ExamType       string `json:"exam_type,omitempty"`
	CourseCode     string `json:"course_code,omitempty"`
	AdditionalTags string `json:"additional_tags,omitempty"` // comma-separated
	TutorInitials  string `json:"tutor_initials,omitempty"`

	IncludeAITag       bool `json:"include_ai_tag,omitempty"`
	IncludeLanguageTag bool `json:"include_language_tag"`
}

// DefaultMetadata returns a Metadata with the defaults the UI layer applies:
// the language marker tag is on unless explicitly disabled.
func DefaultMetadata() Metadata {
	return Metadata{
		Difficulty:         question.DifficultyMedium,
		Language:           question.LanguageSwedish,
		IncludeLanguageTag: true,
	}
}

// Artifact is one complete downloadable export. Encoders either produce a
// whole artifact or fail; there is no partial output.
type Artifact struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Encoder renders a question list into one external format.
type Encoder interface {
	Encode(qs []question.Question, meta Metadata) (Artifact, error)
}

// Registry of encoders by format id. Encoder packages self-register from
// init(), mirroring how profile adapters register elsewhere in the codebase.
var registry = map[string]Encoder{}

// Register an encoder under a format id.
func Register(format string, e Encoder) { registry[format] = e }

// LookupEncoder returns a registered encoder for a format id.
func LookupEncoder(format string) (Encoder, bool) {
	e, ok := registry[strings.ToLower(format)]
	return e, ok
}

// Formats lists the registered format ids.
func Formats() []string {
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	return out
}

// Export runs the encoder selected by meta.Format (or the explicit format
// argument when meta.Format is empty).
func Export(format string, qs []question.Question, meta Metadata) (Artifact, error) {
	if format == "" {
		format = meta.Format
	}
	enc, ok := LookupEncoder(format)
	if !ok {
		return Artifact{}, fmt.Errorf("unknown export format %q", format)
	}
	a, err := enc.Encode(qs, meta)
	if err != nil {
		return Artifact{}, fmt.Errorf("export %s: %w", format, err)
	}
	return a, nil
}

// Slugify folds a free-text string into a filename-safe slug, the same way
// imported package titles are folded into exam ids.
func Slugify(s string) string {
	t := strings.ToLower(strings.TrimSpace(s))
	t = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		if r == '-' || r == '_' {
			return r
		}
		return '-'
	}, t)
	t = strings.Trim(t, "-")
	for strings.Contains(t, "--") {
		t = strings.ReplaceAll(t, "--", "-")
	}
	if t == "" {
		t = "export"
	}
	return t
}
