package question

// Difficulty of a generated question, as requested by the user.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Language of the exam content.
type Language string

const (
	LanguageSwedish Language = "sv"
	LanguageEnglish Language = "en"
)

// Option is one answer alternative. Label is a short key ("A", "B", a row
// key); Value is the display text. For choicematrix and clozedropdown the
// Value field holds a comma-separated list of column/choice names for that
// row or gap.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Question is one exam question as the export layer consumes it. The export
// layer never mutates it.
type Question struct {
	ID       string `json:"id,omitempty"`
	Type     string `json:"type"` // references a TypeDef id
	Stimulus string `json:"stimulus"`

	Options []Option `json:"options,omitempty"`

	// CorrectAnswer meaning depends on type: label references into Options
	// (choice/matching types), literal text (fill-in/short-answer types),
	// sequence order (ordering types), or per-row correct column name
	// (choicematrix/clozedropdown).
	CorrectAnswer []string `json:"correct_answer,omitempty"`

	// InstructorStimulus is a grading rubric / model answer for essay-like
	// types.
	InstructorStimulus string `json:"instructor_stimulus,omitempty"`

	Score    float64 `json:"score,omitempty"`
	MinScore float64 `json:"min_score,omitempty"`
	MaxScore float64 `json:"max_score,omitempty"`

	Title string   `json:"title,omitempty"`
	Tags  []string `json:"tags,omitempty"`
}
