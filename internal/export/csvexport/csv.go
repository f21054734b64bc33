// Package csvexport renders questions into a spreadsheet-friendly CSV: a
// localized header row, one row per question, and a UTF-8 byte-order mark so
// the target spreadsheet application detects non-ASCII characters.
package csvexport

import (
	"fmt"
	"strings"
	"time"

	"github.com/tentagen/tentagen/internal/export"
	"github.com/tentagen/tentagen/internal/i18n"
	"github.com/tentagen/tentagen/internal/question"
)

var now = time.Now

type Encoder struct{}

func init() {
	export.Register("csv", Encoder{})
}

var headerKeys = []string{
	"csv.header.type",
	"csv.header.title",
	"csv.header.question",
	"csv.header.options",
	"csv.header.correct",
	"csv.header.notes",
	"csv.header.subject",
	"csv.header.difficulty",
	"csv.header.tags",
}

// Encode implements export.Encoder.
func (Encoder) Encode(qs []question.Question, meta export.Metadata) (export.Artifact, error) {
	lang := string(meta.Language)

	var b strings.Builder
	b.WriteString("\uFEFF") // BOM

	header := make([]string, 0, len(headerKeys))
	for _, k := range headerKeys {
		header = append(header, i18n.T(lang, k))
	}
	writeRow(&b, header)

	for _, q := range qs {
		writeRow(&b, []string{
			export.TypeDisplayName(meta.Language, q.Type),
			export.DeriveTitle(q.Title, q.Stimulus),
			export.StripMarkup(q.Stimulus),
			joinOptions(q.Options),
			strings.Join(q.CorrectAnswer, ", "),
			export.StripMarkup(q.InstructorStimulus),
			meta.Subject,
			export.DifficultyDisplayName(meta.Language, meta.Difficulty),
			strings.Join(export.AllTags(meta, q), ", "),
		})
	}

	name := fmt.Sprintf("tentagen-%s-%s.csv", export.Slugify(meta.Subject), now().Format("2006-01-02"))
	return export.Artifact{Filename: name, ContentType: "text/csv; charset=utf-8", Data: []byte(b.String())}, nil
}

func joinOptions(opts []question.Option) string {
	parts := make([]string, 0, len(opts))
	for _, o := range opts {
		parts = append(parts, fmt.Sprintf("%s. %s", o.Label, o.Value))
	}
	return strings.Join(parts, " | ")
}

func writeRow(b *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(escapeField(f))
	}
	b.WriteString("\n")
}

// escapeField quotes a field when it contains a comma, quote, newline or
// semicolon. Quoting on semicolons goes beyond RFC 4180 on purpose: the
// target spreadsheet application treats them as separators in some locales.
func escapeField(f string) string {
	if strings.ContainsAny(f, ",\"\n\r;") {
		return `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
	}
	return f
}
