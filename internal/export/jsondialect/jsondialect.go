// Package jsondialect renders questions into the two JSON shapes the
// downstream exam platform has expected over its lifetime: the "legacy"
// {data, metadata} document with UUID references and numeric label objects,
// and the "current" flat item array with index-derived numeric ids.
package jsondialect

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/tentagen/tentagen/internal/export"
	"github.com/tentagen/tentagen/internal/question"
)

const (
	DialectLegacy  = "legacy"
	DialectCurrent = "current"

	// Numeric id offsets in the current dialect are a downstream-system
	// contract; ids must be a pure function of array index.
	currentBaseIDOffset     = 3500001
	currentItemIDOffset     = 700001
	currentQuestionIDOffset = 6000001

	shortAnswerMaxWords = 200
	longTextMaxWords    = 10000
)

var now = time.Now

// Encoder renders one of the two JSON dialects.
type Encoder struct {
	Dialect string
}

func init() {
	export.Register(DialectLegacy, Encoder{Dialect: DialectLegacy})
	export.Register(DialectCurrent, Encoder{Dialect: DialectCurrent})
	// The UI still submits the current dialect under its old menu name.
	export.Register("utgaende", Encoder{Dialect: DialectCurrent})
}

type label struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

type questionData struct {
	Type               string        `json:"type"`
	Stimulus           string        `json:"stimulus"`
	Options            []indexOption `json:"options,omitempty"`
	ShuffleOptions     *bool         `json:"shuffle_options,omitempty"`
	MultipleResponses  bool          `json:"multiple_responses,omitempty"`
	MaxLength          int           `json:"max_length,omitempty"`
	InstructorStimulus string        `json:"instructor_stimulus,omitempty"`
	Validation         *validation   `json:"validation,omitempty"`
	Score              float64       `json:"score"`
	MinScore           float64       `json:"minScore"`
}

type indexOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type validation struct {
	ScoringType   string         `json:"scoring_type,omitempty"`
	ValidResponse *validResponse `json:"valid_response,omitempty"`
	Penalty       *float64       `json:"penalty,omitempty"`
	MaxScore      float64        `json:"max_score,omitempty"`
}

type validResponse struct {
	Score float64  `json:"score"`
	Value []string `json:"value"`
}

type legacyQuestion struct {
	Reference string       `json:"reference"`
	Type      string       `json:"type"`
	Data      questionData `json:"data"`
}

type legacyItem struct {
	Reference string           `json:"reference"`
	Title     string           `json:"title"`
	Status    string           `json:"status"`
	Questions []legacyQuestion `json:"questions"`
	Labels    []label          `json:"labels"`
}

type legacyDocument struct {
	Data     []legacyItem   `json:"data"`
	Metadata exportMetadata `json:"metadata"`
}

type exportMetadata struct {
	Subject       string `json:"subject"`
	Topic         string `json:"topic,omitempty"`
	Difficulty    string `json:"difficulty"`
	Language      string `json:"language"`
	QuestionCount int    `json:"question_count"`
	ExportedAt    string `json:"exported_at"`
}

type currentQuestion struct {
	ID   int          `json:"id"`
	Type string       `json:"type"`
	Data questionData `json:"data"`
}

type currentItem struct {
	ID       int             `json:"id"`
	ItemID   int             `json:"item_id"`
	Title    string          `json:"title"`
	Status   string          `json:"status"`
	Question currentQuestion `json:"question"`
	Tags     []string        `json:"tags"`
}

// Encode implements export.Encoder.
func (e Encoder) Encode(qs []question.Question, meta export.Metadata) (export.Artifact, error) {
	var (
		doc any
		err error
	)
	switch e.Dialect {
	case DialectCurrent:
		doc = buildCurrent(qs, meta)
	case DialectLegacy:
		doc = buildLegacy(qs, meta)
	default:
		return export.Artifact{}, fmt.Errorf("unknown json dialect %q", e.Dialect)
	}
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return export.Artifact{}, fmt.Errorf("marshal %s dialect: %w", e.Dialect, err)
	}
	name := fmt.Sprintf("%s_%s_%s.json", export.Slugify(meta.Subject), e.Dialect, now().Format("2006-01-02"))
	return export.Artifact{Filename: name, ContentType: "application/json", Data: b}, nil
}

func buildLegacy(qs []question.Question, meta export.Metadata) legacyDocument {
	items := make([]legacyItem, 0, len(qs))
	for _, q := range qs {
		tags := export.AllTags(meta, q)
		labels := make([]label, 0, len(tags))
		for _, t := range tags {
			labels = append(labels, label{ID: LabelID(t), Name: t, Type: "personal"})
		}
		items = append(items, legacyItem{
			Reference: uuid.NewString(),
			Title:     export.DeriveTitle(q.Title, q.Stimulus),
			Status:    "published",
			Questions: []legacyQuestion{{
				Reference: uuid.NewString(),
				Type:      question.Lookup(q.Type).SchemaType,
				Data:      buildQuestionData(q, meta),
			}},
			Labels: labels,
		})
	}
	return legacyDocument{
		Data: items,
		Metadata: exportMetadata{
			Subject:       meta.Subject,
			Topic:         meta.Topic,
			Difficulty:    string(meta.Difficulty),
			Language:      string(meta.Language),
			QuestionCount: len(qs),
			ExportedAt:    now().Format(time.RFC3339),
		},
	}
}

func buildCurrent(qs []question.Question, meta export.Metadata) []currentItem {
	items := make([]currentItem, 0, len(qs))
	for i, q := range qs {
		items = append(items, currentItem{
			ID:     currentBaseIDOffset + i,
			ItemID: currentItemIDOffset + i,
			Title:  export.DeriveTitle(q.Title, q.Stimulus),
			Status: "published",
			Question: currentQuestion{
				ID:   currentQuestionIDOffset + i,
				Type: question.Lookup(q.Type).SchemaType,
				Data: buildQuestionData(q, meta),
			},
			Tags: export.AllTags(meta, q),
		})
	}
	return items
}

// buildQuestionData branches on the downstream schema type: choice-like
// questions get re-indexed options and a valid-response block, everything
// else becomes a bounded or open-ended free-text block.
func buildQuestionData(q question.Question, meta export.Metadata) questionData {
	def := question.Lookup(q.Type)
	score := export.ResolveScore(q, meta.Difficulty)

	if def.SchemaType == "mcq" {
		return buildChoiceData(q, def, score)
	}

	d := questionData{
		Type:     def.SchemaType,
		Stimulus: q.Stimulus,
		Score:    score,
		MinScore: 0,
	}
	if q.InstructorStimulus != "" {
		d.InstructorStimulus = q.InstructorStimulus
	}
	if q.Type == "short_answer" {
		d.MaxLength = shortAnswerMaxWords
		return d
	}
	d.MaxLength = longTextMaxWords
	d.Validation = &validation{MaxScore: score}
	return d
}

func buildChoiceData(q question.Question, def question.TypeDef, score float64) questionData {
	// Re-index options: the display text becomes the label, the value is
	// the stringified index, and correct answers are remapped from the
	// original labels onto those indices.
	opts := make([]indexOption, 0, len(q.Options))
	indexByLabel := make(map[string]string, len(q.Options))
	for i, o := range q.Options {
		idx := strconv.Itoa(i)
		opts = append(opts, indexOption{Label: o.Value, Value: idx})
		indexByLabel[o.Label] = idx
	}
	correct := make([]string, 0, len(q.CorrectAnswer))
	for _, c := range q.CorrectAnswer {
		if idx, ok := indexByLabel[c]; ok {
			correct = append(correct, idx)
		}
	}

	shuffle := false
	d := questionData{
		Type:           def.SchemaType,
		Stimulus:       q.Stimulus,
		Options:        opts,
		ShuffleOptions: &shuffle,
		Score:          score,
		MinScore:       0,
	}
	v := &validation{
		ScoringType:   "exactMatch",
		ValidResponse: &validResponse{Score: score, Value: correct},
	}
	if def.ID == "multiple_response" {
		d.MultipleResponses = true
		v.ScoringType = "partialMatchV2"
		penalty := 0.0
		v.Penalty = &penalty
	}
	d.Validation = v
	return d
}

// LabelID folds a tag string into a stable six-digit numeric id via FNV-1a.
// The id is deterministic across processes; downstream treats label ids as
// opaque, so rare collisions across a large tag vocabulary are acceptable.
func LabelID(tag string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(tag))
	return int(h.Sum32()%900000) + 100000
}
