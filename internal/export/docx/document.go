package docx

import (
	"fmt"
	"strings"

	"github.com/tentagen/tentagen/internal/export"
	"github.com/tentagen/tentagen/internal/i18n"
	"github.com/tentagen/tentagen/internal/question"
)

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func esc(s string) string { return xmlEscaper.Replace(s) }

type runOpts struct {
	bold   bool
	italic bool
}

func run(text string, o runOpts) string {
	var props strings.Builder
	if o.bold {
		props.WriteString("<w:b/>")
	}
	if o.italic {
		props.WriteString("<w:i/>")
	}
	rPr := ""
	if props.Len() > 0 {
		rPr = "<w:rPr>" + props.String() + "</w:rPr>"
	}
	return fmt.Sprintf(`<w:r>%s<w:t xml:space="preserve">%s</w:t></w:r>`, rPr, esc(text))
}

func para(style string, runs ...string) string {
	pPr := ""
	if style != "" {
		pPr = fmt.Sprintf(`<w:pPr><w:pStyle w:val="%s"/></w:pPr>`, style)
	}
	return "<w:p>" + pPr + strings.Join(runs, "") + "</w:p>"
}

// shadedPara renders a paragraph with light-grey shading, used for the
// instructor-notes blocks.
func shadedPara(runs ...string) string {
	return `<w:p><w:pPr><w:shd w:val="clear" w:color="auto" w:fill="EEEEEE"/></w:pPr>` + strings.Join(runs, "") + "</w:p>"
}

func tableRow(label, value string) string {
	cell := func(content string) string {
		return `<w:tc><w:tcPr><w:tcW w:w="0" w:type="auto"/></w:tcPr>` + content + "</w:tc>"
	}
	return "<w:tr>" + cell(para("", run(label, runOpts{bold: true}))) + cell(para("", run(value, runOpts{}))) + "</w:tr>"
}

func metadataTable(rows []string) string {
	return `<w:tbl><w:tblPr><w:tblW w:w="0" w:type="auto"/><w:tblBorders>` +
		`<w:top w:val="single" w:sz="4" w:color="999999"/>` +
		`<w:bottom w:val="single" w:sz="4" w:color="999999"/>` +
		`<w:left w:val="single" w:sz="4" w:color="999999"/>` +
		`<w:right w:val="single" w:sz="4" w:color="999999"/>` +
		`<w:insideH w:val="single" w:sz="4" w:color="999999"/>` +
		`<w:insideV w:val="single" w:sz="4" w:color="999999"/>` +
		`</w:tblBorders></w:tblPr>` + strings.Join(rows, "") + "</w:tbl>"
}

const logoDrawing = `<w:p><w:r><w:drawing><wp:inline distT="0" distB="0" distL="0" distR="0">` +
	`<wp:extent cx="1905000" cy="476250"/><wp:docPr id="1" name="logo"/>` +
	`<a:graphic xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main">` +
	`<a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/picture">` +
	`<pic:pic xmlns:pic="http://schemas.openxmlformats.org/drawingml/2006/picture">` +
	`<pic:nvPicPr><pic:cNvPr id="1" name="logo.png"/><pic:cNvPicPr/></pic:nvPicPr>` +
	`<pic:blipFill><a:blip r:embed="rIdLogo"/><a:stretch><a:fillRect/></a:stretch></pic:blipFill>` +
	`<pic:spPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="1905000" cy="476250"/></a:xfrm>` +
	`<a:prstGeom prst="rect"><a:avLst/></a:prstGeom></pic:spPr>` +
	`</pic:pic></a:graphicData></a:graphic></wp:inline></w:drawing></w:r></w:p>`

func buildDocument(qs []question.Question, meta export.Metadata, withLogo bool) string {
	lang := string(meta.Language)
	var b strings.Builder

	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" xmlns:wp="http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"><w:body>`)

	title := i18n.T(lang, "docx.title")
	if meta.Subject != "" {
		title += " — " + meta.Subject
	}
	b.WriteString(para("Title", run(title, runOpts{})))

	rows := []string{
		tableRow(i18n.T(lang, "docx.subject"), meta.Subject),
	}
	if meta.Topic != "" {
		rows = append(rows, tableRow(i18n.T(lang, "docx.topic"), meta.Topic))
	}
	rows = append(rows, tableRow(i18n.T(lang, "docx.question_count"), fmt.Sprintf("%d", len(qs))))
	if meta.TutorInitials != "" {
		rows = append(rows, tableRow(i18n.T(lang, "docx.examiner"), meta.TutorInitials))
	}
	b.WriteString(metadataTable(rows))
	b.WriteString(para(""))

	for i, q := range qs {
		writeQuestionBlock(&b, i+1, q, meta)
	}

	// branding block
	b.WriteString(para(""))
	if withLogo {
		b.WriteString(logoDrawing)
	}
	b.WriteString(para("", run(i18n.T(lang, "docx.branding"), runOpts{italic: true})))

	b.WriteString(`<w:sectPr/></w:body></w:document>`)
	return b.String()
}

func writeQuestionBlock(b *strings.Builder, n int, q question.Question, meta export.Metadata) {
	lang := string(meta.Language)
	def := question.Lookup(q.Type)
	score := export.ResolveScore(q, meta.Difficulty)

	header := fmt.Sprintf("%s %d (%s • %s • %g %s)",
		i18n.T(lang, "docx.question"), n,
		export.TypeDisplayName(meta.Language, q.Type),
		export.DifficultyDisplayName(meta.Language, meta.Difficulty),
		score, i18n.T(lang, "docx.points"))
	b.WriteString(para("Heading2", run(header, runOpts{})))
	b.WriteString(para("", run(export.StripMarkup(q.Stimulus), runOpts{})))

	writeAnswerBlock(b, q, def, lang)

	if q.InstructorStimulus != "" {
		b.WriteString(shadedPara(run(i18n.T(lang, "docx.notes")+": ", runOpts{bold: true}),
			run(export.StripMarkup(q.InstructorStimulus), runOpts{italic: true})))
	}
	b.WriteString(para(""))
}

// writeAnswerBlock mirrors the per-type conceptual groupings used by the QTI
// encoder, rendered as reviewer-friendly paragraphs.
func writeAnswerBlock(b *strings.Builder, q question.Question, def question.TypeDef, lang string) {
	correct := map[string]bool{}
	for _, c := range q.CorrectAnswer {
		correct[c] = true
	}

	switch def.Interaction {
	case question.InteractionChoice:
		for _, o := range q.Options {
			mark := "✗"
			if correct[o.Label] {
				mark = "✓"
			}
			b.WriteString(para("", run(fmt.Sprintf("%s %s. %s", mark, o.Label, o.Value), runOpts{bold: correct[o.Label]})))
		}

	case question.InteractionMatch:
		for i, o := range q.Options {
			target := ""
			if i < len(q.CorrectAnswer) {
				target = q.CorrectAnswer[i]
			} else if def.ID != "choicematrix" {
				target = o.Value
			}
			b.WriteString(para("", run(fmt.Sprintf("%s → %s ✓", o.Label, target), runOpts{})))
		}

	case question.InteractionOrder:
		b.WriteString(para("", run(i18n.T(lang, "docx.correct_order")+":", runOpts{bold: true})))
		sequence := q.CorrectAnswer
		if len(sequence) == 0 {
			for _, o := range q.Options {
				sequence = append(sequence, o.Label)
			}
		}
		valueByLabel := map[string]string{}
		for _, o := range q.Options {
			valueByLabel[o.Label] = o.Value
		}
		for i, label := range sequence {
			v, ok := valueByLabel[label]
			if !ok {
				v = label
			}
			b.WriteString(para("", run(fmt.Sprintf("%d. %s", i+1, v), runOpts{})))
		}

	case question.InteractionInlineChoice:
		for i, o := range q.Options {
			choices := strings.Split(o.Value, ",")
			for j := range choices {
				choices[j] = strings.TrimSpace(choices[j])
				if i < len(q.CorrectAnswer) && choices[j] == q.CorrectAnswer[i] {
					choices[j] = "✓ " + choices[j]
				}
			}
			b.WriteString(para("", run(fmt.Sprintf("%s: %s", o.Label, strings.Join(choices, " / ")), runOpts{})))
		}

	case question.InteractionTextEntry, question.InteractionHottext,
		question.InteractionGapMatch, question.InteractionGraphicGapMatch:
		if len(q.CorrectAnswer) > 0 {
			b.WriteString(para("", run(i18n.T(lang, "docx.answer")+": ", runOpts{bold: true}),
				run(strings.Join(q.CorrectAnswer, ", "), runOpts{})))
		}

	default:
		// essay-like: the rubric block below is the whole answer section
	}
}
