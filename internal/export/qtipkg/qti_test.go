package qtipkg

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/tentagen/tentagen/internal/export"
	"github.com/tentagen/tentagen/internal/question"
)

func qtiMeta() export.Metadata {
	m := export.DefaultMetadata()
	m.Subject = "Kemi"
	m.Language = question.LanguageSwedish
	return m
}

func unzip(t *testing.T, data []byte) map[string]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open package: %v", err)
	}
	out := map[string]string{}
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", f.Name, err)
		}
		var b bytes.Buffer
		if _, err := b.ReadFrom(rc); err != nil {
			t.Fatalf("read %s: %v", f.Name, err)
		}
		rc.Close()
		out[f.Name] = b.String()
	}
	return out
}

func encodeOne(t *testing.T, e Encoder, q question.Question) string {
	t.Helper()
	a, err := e.Encode([]question.Question{q}, qtiMeta())
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	files := unzip(t, a.Data)
	item, ok := files["item_1.xml"]
	if !ok {
		t.Fatalf("package missing item_1.xml, has %v", keys(files))
	}
	return item
}

func keys(m map[string]string) []string {
	var out []string
	for k := range m {
		out = append(out, k)
	}
	return out
}

func TestPackageStructureAndManifest(t *testing.T) {
	qs := []question.Question{
		{Type: "mcq", Stimulus: "Q1", Options: []question.Option{{Label: "A", Value: "x"}}, CorrectAnswer: []string{"A"}},
		{Type: "essay", Stimulus: "Q2"},
	}
	a, err := Encoder{Version: Version21}.Encode(qs, qtiMeta())
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	files := unzip(t, a.Data)

	mf, ok := files["imsmanifest.xml"]
	if !ok {
		t.Fatal("package missing imsmanifest.xml")
	}
	for _, name := range []string{"item_1.xml", "item_2.xml"} {
		if _, ok := files[name]; !ok {
			t.Errorf("package missing %s", name)
		}
		if !strings.Contains(mf, `href="`+name+`"`) {
			t.Errorf("manifest does not reference %s", name)
		}
	}
	if !strings.Contains(mf, `type="imsqti_item_xmlv2p1"`) {
		t.Error("manifest resource type is not the 2.1 item type")
	}

	// every file in the package must be well-formed XML
	for name, content := range files {
		dec := xml.NewDecoder(strings.NewReader(content))
		for {
			_, err := dec.Token()
			if err != nil {
				if errors.Is(err, io.EOF) {
					break
				}
				t.Errorf("%s is not well-formed XML: %v", name, err)
				break
			}
		}
	}

	if !strings.HasPrefix(a.Filename, "qti21_kemi_") || !strings.HasSuffix(a.Filename, ".zip") {
		t.Errorf("filename = %q", a.Filename)
	}
	if a.ContentType != "application/zip" {
		t.Errorf("content type = %q", a.ContentType)
	}
}

func TestChoiceCardinality(t *testing.T) {
	t.Run("true_false is always single", func(t *testing.T) {
		item := encodeOne(t, Encoder{Version: Version21}, question.Question{
			Type:     "true_false",
			Stimulus: "Sant?",
			Options: []question.Option{
				{Label: "A", Value: "Sant"},
				{Label: "B", Value: "Falskt"},
			},
			CorrectAnswer: []string{"A"},
		})
		if !strings.Contains(item, `cardinality="single"`) {
			t.Error("want single cardinality")
		}
		if !strings.Contains(item, `maxChoices="1"`) {
			t.Error("want maxChoices=1")
		}
	})

	t.Run("multiple_response uses correct-answer count", func(t *testing.T) {
		item := encodeOne(t, Encoder{Version: Version21}, question.Question{
			Type:     "multiple_response",
			Stimulus: "Pick two",
			Options: []question.Option{
				{Label: "A", Value: "1"},
				{Label: "B", Value: "2"},
				{Label: "C", Value: "3"},
			},
			CorrectAnswer: []string{"A", "C"},
		})
		if !strings.Contains(item, `cardinality="multiple"`) {
			t.Error("want multiple cardinality")
		}
		if !strings.Contains(item, `maxChoices="2"`) {
			t.Error("want maxChoices equal to correct-answer count")
		}
		if !strings.Contains(item, "<value>choice_0</value>") || !strings.Contains(item, "<value>choice_2</value>") {
			t.Error("correct response values missing")
		}
	})
}

func TestTextEntryOneDeclarationPerBlank(t *testing.T) {
	item := encodeOne(t, Encoder{Version: Version21}, question.Question{
		Type:          "fill_blank",
		Stimulus:      "Fyll i",
		CorrectAnswer: []string{"väte", "syre"},
	})
	for _, id := range []string{"RESPONSE_1", "RESPONSE_2"} {
		if !strings.Contains(item, `identifier="`+id+`"`) {
			t.Errorf("missing declaration %s", id)
		}
	}
	if !strings.Contains(item, `baseType="string"`) {
		t.Error("text entry must use string baseType")
	}
	if n := strings.Count(item, "<textEntryInteraction"); n != 2 {
		t.Errorf("textEntryInteraction count = %d, want 2", n)
	}
}

func TestOrderInteraction(t *testing.T) {
	item := encodeOne(t, Encoder{Version: Version21}, question.Question{
		Type:     "ordering",
		Stimulus: "Sortera",
		Options: []question.Option{
			{Label: "A", Value: "först"},
			{Label: "B", Value: "sist"},
		},
		CorrectAnswer: []string{"B", "A"},
	})
	if !strings.Contains(item, `cardinality="ordered"`) {
		t.Error("want ordered cardinality")
	}
	first := strings.Index(item, "<value>choice_1</value>")
	second := strings.Index(item, "<value>choice_0</value>")
	if first == -1 || second == -1 || first > second {
		t.Error("correct response must list choices in answer order")
	}
}

func TestMatchInteraction(t *testing.T) {
	item := encodeOne(t, Encoder{Version: Version21}, question.Question{
		Type:     "matching",
		Stimulus: "Para ihop",
		Options: []question.Option{
			{Label: "Sverige", Value: "Stockholm"},
			{Label: "Norge", Value: "Oslo"},
		},
	})
	if !strings.Contains(item, `baseType="directedPair"`) {
		t.Error("want directedPair baseType")
	}
	if n := strings.Count(item, "<simpleMatchSet>"); n != 2 {
		t.Errorf("simpleMatchSet count = %d, want 2", n)
	}
	if !strings.Contains(item, `identifier="val_0"`) {
		t.Error("value identifiers must carry the val_ prefix")
	}
	if !strings.Contains(item, "<value>row_0 val_0</value>") || !strings.Contains(item, "<value>row_1 val_1</value>") {
		t.Error("row-for-row pairs missing")
	}
}

func TestChoiceMatrixColumns(t *testing.T) {
	item := encodeOne(t, Encoder{Version: Version21}, question.Question{
		Type:     "choicematrix",
		Stimulus: "Bedöm",
		Options: []question.Option{
			{Label: "Påstående 1", Value: "Sant, Falskt"},
			{Label: "Påstående 2", Value: "Sant, Falskt"},
		},
		CorrectAnswer: []string{"Sant", "Falskt"},
	})
	if !strings.Contains(item, "<value>row_0 val_0</value>") {
		t.Error("row 0 should map to its correct column")
	}
	if !strings.Contains(item, "<value>row_1 val_1</value>") {
		t.Error("row 1 should map to its correct column")
	}
}

func TestGapMatchSplitsOnPlaceholder(t *testing.T) {
	item := encodeOne(t, Encoder{Version: Version21}, question.Question{
		Type:     "clozeassociation",
		Stimulus: "Vatten består av [___] och [___].",
		Options: []question.Option{
			{Label: "A", Value: "väte"},
			{Label: "B", Value: "syre"},
		},
		CorrectAnswer: []string{"A", "B"},
	})
	if n := strings.Count(item, "<gap "); n != 2 {
		t.Errorf("gap count = %d, want 2", n)
	}
	if !strings.Contains(item, "<value>gt_0 G_1</value>") || !strings.Contains(item, "<value>gt_1 G_2</value>") {
		t.Error("gap pairs missing")
	}
}

func TestHottextWrapsAnswerTokens(t *testing.T) {
	item := encodeOne(t, Encoder{Version: Version21}, question.Question{
		Type:          "tokenhighlight",
		Stimulus:      "mitokondrien är cellens kraftverk",
		CorrectAnswer: []string{"mitokondrien", "kraftverk"},
	})
	if n := strings.Count(item, "<hottext "); n != 2 {
		t.Errorf("hottext count = %d, want 2", n)
	}
	if !strings.Contains(item, `cardinality="multiple"`) {
		t.Error("want multiple cardinality")
	}
}

func TestGraphicGapMatchHotspots(t *testing.T) {
	item := encodeOne(t, Encoder{Version: Version21}, question.Question{
		Type:     "imageclozeassociationV2",
		Stimulus: "Placera",
		Options: []question.Option{
			{Label: "A", Value: "hjärta"},
			{Label: "B", Value: "lunga"},
		},
		CorrectAnswer: []string{"A", "B"},
	})
	if !strings.Contains(item, "<graphicGapMatchInteraction") {
		t.Error("want graphicGapMatchInteraction")
	}
	if n := strings.Count(item, "<associableHotspot "); n != 2 {
		t.Errorf("hotspot count = %d, want 2", n)
	}
	if !strings.Contains(item, `data="background.png"`) {
		t.Error("background object placeholder missing")
	}
}

func TestExtendedTextBranch(t *testing.T) {
	t.Run("short_answer expectedLength", func(t *testing.T) {
		item := encodeOne(t, Encoder{Version: Version21}, question.Question{
			Type: "short_answer", Stimulus: "Förklara kort",
		})
		if !strings.Contains(item, `expectedLength="500"`) {
			t.Error("short_answer should get expectedLength 500")
		}
	})

	t.Run("essay rubric prompt, no correctResponse", func(t *testing.T) {
		item := encodeOne(t, Encoder{Version: Version21}, question.Question{
			Type: "essay", Stimulus: "Diskutera", InstructorStimulus: "Bedöm resonemanget",
		})
		if !strings.Contains(item, `expectedLength="5000"`) {
			t.Error("essay should get expectedLength 5000")
		}
		if !strings.Contains(item, "<prompt>Bedöm resonemanget</prompt>") {
			t.Error("rubric prompt missing")
		}
		if strings.Contains(item, "<correctResponse>") {
			t.Error("essay items must not emit a correctResponse")
		}
	})

	t.Run("unknown type falls back here", func(t *testing.T) {
		item := encodeOne(t, Encoder{Version: Version21}, question.Question{
			Type: "nonexistent_type", Stimulus: "???",
		})
		if !strings.Contains(item, "<extendedTextInteraction") {
			t.Error("unknown type should render as extended text")
		}
	})
}

func TestVersionDifferences(t *testing.T) {
	q := question.Question{Type: "essay", Stimulus: "Q"}

	item21 := encodeOne(t, Encoder{Version: Version21}, q)
	item22 := encodeOne(t, Encoder{Version: Version22}, q)

	if !strings.Contains(item21, "imsqti_v2p1") || strings.Contains(item21, "imsqti_v2p2") {
		t.Error("2.1 item references the wrong namespace")
	}
	if !strings.Contains(item22, "imsqti_v2p2") {
		t.Error("2.2 item must reference the 2.2 namespace")
	}
	if strings.Contains(item21, `identifier="FEEDBACK"`) {
		t.Error("2.1 item must not declare FEEDBACK")
	}
	if !strings.Contains(item22, `identifier="FEEDBACK"`) {
		t.Error("2.2 item must declare FEEDBACK")
	}
	if !strings.Contains(item21, "qti_v2p1/rptemplates/match_correct") {
		t.Error("2.1 responseProcessing template wrong")
	}
	if !strings.Contains(item22, "qti_v2p2/rptemplates/match_correct") {
		t.Error("2.2 responseProcessing template wrong")
	}
}

func TestEntityEscaping(t *testing.T) {
	item := encodeOne(t, Encoder{Version: Version21}, question.Question{
		Type:     "mcq",
		Stimulus: `Tom & Jerry <3 "quotes"`,
		Options: []question.Option{
			{Label: "A", Value: "a & b"},
		},
		CorrectAnswer: []string{"A"},
	})
	if strings.Contains(item, "Tom & Jerry <3") {
		t.Error("stimulus not escaped")
	}
	if !strings.Contains(item, "Tom &amp; Jerry") {
		t.Error("ampersand not entity-escaped")
	}
	if !strings.Contains(item, "a &amp; b") {
		t.Error("option text not escaped")
	}
}

func TestInsperaFilename(t *testing.T) {
	a, err := Encoder{Version: Version22, Inspera: true}.Encode(nil, qtiMeta())
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !strings.HasPrefix(a.Filename, "qti22_inspera_kemi_") {
		t.Errorf("filename = %q", a.Filename)
	}
}

func TestIdentifiersUniqueWithinPackage(t *testing.T) {
	qs := []question.Question{
		{Type: "essay", Stimulus: "1"},
		{Type: "essay", Stimulus: "2"},
		{Type: "essay", Stimulus: "3"},
	}
	a, err := Encoder{Version: Version21}.Encode(qs, qtiMeta())
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	mf := unzip(t, a.Data)["imsmanifest.xml"]

	var parsed struct {
		Resources []struct {
			Identifier string `xml:"identifier,attr"`
		} `xml:"resources>resource"`
	}
	if err := xml.Unmarshal([]byte(mf), &parsed); err != nil {
		t.Fatalf("parse manifest: %v", err)
	}
	seen := map[string]bool{}
	for _, r := range parsed.Resources {
		if seen[r.Identifier] {
			t.Errorf("duplicate identifier %q", r.Identifier)
		}
		seen[r.Identifier] = true
	}
	if len(seen) != 3 {
		t.Errorf("resource count = %d, want 3", len(seen))
	}
}
