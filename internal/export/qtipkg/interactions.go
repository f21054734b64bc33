package qtipkg

import (
	"fmt"
	"strings"

	"github.com/tentagen/tentagen/internal/export"
	"github.com/tentagen/tentagen/internal/question"
)

type itemParts struct {
	responseDeclarations []string
	itemBody             string
}

// buildInteraction renders the responseDeclaration(s) and itemBody for one
// question according to its interaction kind. Unknown kinds end up in the
// extended-text branch via the registry fallback.
func buildInteraction(q question.Question, def question.TypeDef) itemParts {
	switch def.Interaction {
	case question.InteractionChoice:
		return buildChoice(q)
	case question.InteractionTextEntry:
		return buildTextEntry(q)
	case question.InteractionInlineChoice:
		return buildInlineChoice(q)
	case question.InteractionOrder:
		return buildOrder(q)
	case question.InteractionHottext:
		return buildHottext(q)
	case question.InteractionMatch:
		return buildMatch(q, def)
	case question.InteractionGapMatch:
		return buildGapMatch(q)
	case question.InteractionGraphicGapMatch:
		return buildGraphicGapMatch(q)
	default:
		return buildExtendedText(q, def)
	}
}

func prompt(q question.Question) string {
	return fmt.Sprintf("    <p>%s</p>", esc(export.StripMarkup(q.Stimulus)))
}

// Choice: single cardinality unless more than one correct answer.
func buildChoice(q question.Question) itemParts {
	correctIdx := map[string]bool{}
	var correctIDs []string
	for i, o := range q.Options {
		for _, c := range q.CorrectAnswer {
			if c == o.Label {
				id := fmt.Sprintf("choice_%d", i)
				if !correctIdx[id] {
					correctIdx[id] = true
					correctIDs = append(correctIDs, id)
				}
			}
		}
	}

	cardinality, maxChoices := "single", 1
	if len(correctIDs) > 1 {
		cardinality = "multiple"
		maxChoices = len(correctIDs)
	}

	var values strings.Builder
	for _, id := range correctIDs {
		fmt.Fprintf(&values, "\n      <value>%s</value>", id)
	}
	rd := fmt.Sprintf(`  <responseDeclaration identifier="RESPONSE" cardinality="%s" baseType="identifier">
    <correctResponse>%s
    </correctResponse>
  </responseDeclaration>`, cardinality, values.String())

	var body strings.Builder
	body.WriteString(prompt(q))
	fmt.Fprintf(&body, "\n    <choiceInteraction responseIdentifier=\"RESPONSE\" shuffle=\"false\" maxChoices=\"%d\">", maxChoices)
	for i, o := range q.Options {
		fmt.Fprintf(&body, "\n      <simpleChoice identifier=\"choice_%d\">%s</simpleChoice>", i, esc(o.Value))
	}
	body.WriteString("\n    </choiceInteraction>")
	return itemParts{responseDeclarations: []string{rd}, itemBody: body.String()}
}

// TextEntry: one interaction and one responseDeclaration per blank.
func buildTextEntry(q question.Question) itemParts {
	answers := q.CorrectAnswer
	if len(answers) == 0 {
		answers = []string{""}
	}
	var rds []string
	var body strings.Builder
	body.WriteString(prompt(q))
	for i, a := range answers {
		rds = append(rds, fmt.Sprintf(`  <responseDeclaration identifier="RESPONSE_%d" cardinality="single" baseType="string">
    <correctResponse>
      <value>%s</value>
    </correctResponse>
  </responseDeclaration>`, i+1, esc(a)))
		fmt.Fprintf(&body, "\n    <p><textEntryInteraction responseIdentifier=\"RESPONSE_%d\" expectedLength=\"20\"/></p>", i+1)
	}
	return itemParts{responseDeclarations: rds, itemBody: body.String()}
}

// InlineChoice: one dropdown per gap; each option row's value holds the
// comma-separated choice list for that gap.
func buildInlineChoice(q question.Question) itemParts {
	var rds []string
	var body strings.Builder
	body.WriteString(prompt(q))
	for i, o := range q.Options {
		choices := splitList(o.Value)
		correctID := ""
		if i < len(q.CorrectAnswer) {
			for j, c := range choices {
				if c == q.CorrectAnswer[i] {
					correctID = fmt.Sprintf("ic_%d_%d", i+1, j)
				}
			}
		}
		correctValue := ""
		if correctID != "" {
			correctValue = fmt.Sprintf("\n      <value>%s</value>", correctID)
		}
		rds = append(rds, fmt.Sprintf(`  <responseDeclaration identifier="RESPONSE_%d" cardinality="single" baseType="identifier">
    <correctResponse>%s
    </correctResponse>
  </responseDeclaration>`, i+1, correctValue))

		fmt.Fprintf(&body, "\n    <p>%s <inlineChoiceInteraction responseIdentifier=\"RESPONSE_%d\" shuffle=\"false\">", esc(o.Label), i+1)
		for j, c := range choices {
			fmt.Fprintf(&body, "\n      <inlineChoice identifier=\"ic_%d_%d\">%s</inlineChoice>", i+1, j, esc(c))
		}
		body.WriteString("\n    </inlineChoiceInteraction></p>")
	}
	return itemParts{responseDeclarations: rds, itemBody: body.String()}
}

// Order: ordered cardinality; the correct response lists choice ids in the
// answer sequence.
func buildOrder(q question.Question) itemParts {
	idByLabel := map[string]string{}
	for i, o := range q.Options {
		idByLabel[o.Label] = fmt.Sprintf("choice_%d", i)
	}
	sequence := make([]string, 0, len(q.CorrectAnswer))
	for _, c := range q.CorrectAnswer {
		if id, ok := idByLabel[c]; ok {
			sequence = append(sequence, id)
		}
	}
	if len(sequence) == 0 {
		// no explicit order: options are already in the correct sequence
		for i := range q.Options {
			sequence = append(sequence, fmt.Sprintf("choice_%d", i))
		}
	}

	var values strings.Builder
	for _, id := range sequence {
		fmt.Fprintf(&values, "\n      <value>%s</value>", id)
	}
	rd := fmt.Sprintf(`  <responseDeclaration identifier="RESPONSE" cardinality="ordered" baseType="identifier">
    <correctResponse>%s
    </correctResponse>
  </responseDeclaration>`, values.String())

	var body strings.Builder
	body.WriteString(prompt(q))
	body.WriteString("\n    <orderInteraction responseIdentifier=\"RESPONSE\" shuffle=\"true\">")
	for i, o := range q.Options {
		fmt.Fprintf(&body, "\n      <simpleChoice identifier=\"choice_%d\">%s</simpleChoice>", i, esc(o.Value))
	}
	body.WriteString("\n    </orderInteraction>")
	return itemParts{responseDeclarations: []string{rd}, itemBody: body.String()}
}

// Hottext: the stimulus is tokenized on whitespace and every token listed in
// the answer key becomes a selectable hottext.
func buildHottext(q question.Question) itemParts {
	correct := map[string]bool{}
	for _, c := range q.CorrectAnswer {
		correct[c] = true
	}

	tokens := strings.Fields(export.StripMarkup(q.Stimulus))
	var correctIDs []string
	var text strings.Builder
	for i, tok := range tokens {
		if i > 0 {
			text.WriteString(" ")
		}
		if correct[tok] {
			id := fmt.Sprintf("ht_%d", i)
			correctIDs = append(correctIDs, id)
			fmt.Fprintf(&text, `<hottext identifier="%s">%s</hottext>`, id, esc(tok))
		} else {
			text.WriteString(esc(tok))
		}
	}

	var values strings.Builder
	for _, id := range correctIDs {
		fmt.Fprintf(&values, "\n      <value>%s</value>", id)
	}
	rd := fmt.Sprintf(`  <responseDeclaration identifier="RESPONSE" cardinality="multiple" baseType="identifier">
    <correctResponse>%s
    </correctResponse>
  </responseDeclaration>`, values.String())

	body := fmt.Sprintf("    <hottextInteraction responseIdentifier=\"RESPONSE\" maxChoices=\"0\">\n      <p>%s</p>\n    </hottextInteraction>", text.String())
	return itemParts{responseDeclarations: []string{rd}, itemBody: body}
}

// Match: two simpleMatchSets, rows from option labels and value columns
// prefixed val_. choicematrix shares the branch; its columns come from the
// comma-separated value field shared by every row.
func buildMatch(q question.Question, def question.TypeDef) itemParts {
	var columns []string
	if def.ID == "choicematrix" {
		if len(q.Options) > 0 {
			columns = splitList(q.Options[0].Value)
		}
	} else {
		for _, o := range q.Options {
			columns = append(columns, o.Value)
		}
	}

	colID := func(name string) (string, bool) {
		for j, c := range columns {
			if c == name {
				return fmt.Sprintf("val_%d", j), true
			}
		}
		return "", false
	}

	var pairs []string
	for i := range q.Options {
		target := ""
		if i < len(q.CorrectAnswer) {
			if id, ok := colID(q.CorrectAnswer[i]); ok {
				target = id
			}
		}
		if target == "" && def.ID != "choicematrix" && i < len(columns) {
			// matching pairs line up row-for-row when no explicit key given
			target = fmt.Sprintf("val_%d", i)
		}
		if target != "" {
			pairs = append(pairs, fmt.Sprintf("row_%d %s", i, target))
		}
	}

	var values strings.Builder
	for _, p := range pairs {
		fmt.Fprintf(&values, "\n      <value>%s</value>", p)
	}
	rd := fmt.Sprintf(`  <responseDeclaration identifier="RESPONSE" cardinality="multiple" baseType="directedPair">
    <correctResponse>%s
    </correctResponse>
  </responseDeclaration>`, values.String())

	var body strings.Builder
	body.WriteString(prompt(q))
	fmt.Fprintf(&body, "\n    <matchInteraction responseIdentifier=\"RESPONSE\" shuffle=\"false\" maxAssociations=\"%d\">", len(q.Options))
	body.WriteString("\n      <simpleMatchSet>")
	for i, o := range q.Options {
		fmt.Fprintf(&body, "\n        <simpleAssociableChoice identifier=\"row_%d\" matchMax=\"1\">%s</simpleAssociableChoice>", i, esc(o.Label))
	}
	body.WriteString("\n      </simpleMatchSet>\n      <simpleMatchSet>")
	for j, c := range columns {
		fmt.Fprintf(&body, "\n        <simpleAssociableChoice identifier=\"val_%d\" matchMax=\"%d\">%s</simpleAssociableChoice>", j, len(q.Options), esc(c))
	}
	body.WriteString("\n      </simpleMatchSet>\n    </matchInteraction>")
	return itemParts{responseDeclarations: []string{rd}, itemBody: body.String()}
}

// gapPlaceholder splits the stimulus into gap-match segments.
const gapPlaceholder = "[___]"

// GapMatch: the stimulus is split on the placeholder token; each boundary
// becomes a gap, each option a draggable gapText.
func buildGapMatch(q question.Question) itemParts {
	parts := strings.Split(export.StripMarkup(q.Stimulus), gapPlaceholder)
	gapCount := len(parts) - 1

	idByLabel := map[string]string{}
	for i, o := range q.Options {
		idByLabel[o.Label] = fmt.Sprintf("gt_%d", i)
	}

	var pairs []string
	for g := 0; g < gapCount; g++ {
		if g < len(q.CorrectAnswer) {
			if id, ok := idByLabel[q.CorrectAnswer[g]]; ok {
				pairs = append(pairs, fmt.Sprintf("%s G_%d", id, g+1))
			}
		}
	}

	var values strings.Builder
	for _, p := range pairs {
		fmt.Fprintf(&values, "\n      <value>%s</value>", p)
	}
	rd := fmt.Sprintf(`  <responseDeclaration identifier="RESPONSE" cardinality="multiple" baseType="directedPair">
    <correctResponse>%s
    </correctResponse>
  </responseDeclaration>`, values.String())

	var body strings.Builder
	body.WriteString("    <gapMatchInteraction responseIdentifier=\"RESPONSE\" shuffle=\"false\">")
	for i, o := range q.Options {
		fmt.Fprintf(&body, "\n      <gapText identifier=\"gt_%d\" matchMax=\"1\">%s</gapText>", i, esc(o.Value))
	}
	body.WriteString("\n      <p>")
	for i, part := range parts {
		body.WriteString(esc(part))
		if i < gapCount {
			fmt.Fprintf(&body, `<gap identifier="G_%d"/>`, i+1)
		}
	}
	body.WriteString("</p>\n    </gapMatchInteraction>")
	return itemParts{responseDeclarations: []string{rd}, itemBody: body.String()}
}

// GraphicGapMatch: a background image placeholder with one evenly spaced
// hotspot rectangle per option.
func buildGraphicGapMatch(q question.Question) itemParts {
	const bgWidth, bgHeight, hotspotHeight = 800, 600, 100
	n := len(q.Options)
	if n == 0 {
		n = 1
	}
	cellW := bgWidth / n

	idByLabel := map[string]string{}
	for i, o := range q.Options {
		idByLabel[o.Label] = fmt.Sprintf("gap_%d", i)
	}

	var pairs []string
	for i, c := range q.CorrectAnswer {
		if id, ok := idByLabel[c]; ok && i < len(q.Options) {
			pairs = append(pairs, fmt.Sprintf("%s hotspot_%d", id, i))
		}
	}

	var values strings.Builder
	for _, p := range pairs {
		fmt.Fprintf(&values, "\n      <value>%s</value>", p)
	}
	rd := fmt.Sprintf(`  <responseDeclaration identifier="RESPONSE" cardinality="multiple" baseType="directedPair">
    <correctResponse>%s
    </correctResponse>
  </responseDeclaration>`, values.String())

	var body strings.Builder
	body.WriteString(prompt(q))
	body.WriteString("\n    <graphicGapMatchInteraction responseIdentifier=\"RESPONSE\">")
	fmt.Fprintf(&body, "\n      <object type=\"image/png\" data=\"background.png\" width=\"%d\" height=\"%d\"/>", bgWidth, bgHeight)
	for i, o := range q.Options {
		fmt.Fprintf(&body, "\n      <gapImg identifier=\"gap_%d\" matchMax=\"1\"><object type=\"image/png\" data=\"gap_%d.png\" width=\"%d\" height=\"%d\">%s</object></gapImg>",
			i, i, cellW, hotspotHeight, esc(o.Value))
	}
	for i := range q.Options {
		x0 := i * cellW
		fmt.Fprintf(&body, "\n      <associableHotspot identifier=\"hotspot_%d\" matchMax=\"1\" shape=\"rect\" coords=\"%d,%d,%d,%d\"/>",
			i, x0, bgHeight-hotspotHeight, x0+cellW, bgHeight)
	}
	body.WriteString("\n    </graphicGapMatchInteraction>")
	return itemParts{responseDeclarations: []string{rd}, itemBody: body.String()}
}

// ExtendedText: essay-like types; no correctResponse is emitted.
func buildExtendedText(q question.Question, def question.TypeDef) itemParts {
	expected := 5000
	if def.ID == "short_answer" {
		expected = 500
	}
	rd := `  <responseDeclaration identifier="RESPONSE" cardinality="single" baseType="string"/>`

	var body strings.Builder
	body.WriteString(prompt(q))
	fmt.Fprintf(&body, "\n    <extendedTextInteraction responseIdentifier=\"RESPONSE\" expectedLength=\"%d\">", expected)
	if q.InstructorStimulus != "" {
		fmt.Fprintf(&body, "\n      <prompt>%s</prompt>", esc(export.StripMarkup(q.InstructorStimulus)))
	}
	body.WriteString("\n    </extendedTextInteraction>")
	return itemParts{responseDeclarations: []string{rd}, itemBody: body.String()}
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
