package export

import "github.com/tentagen/tentagen/internal/question"

var difficultyDefaultScore = map[question.Difficulty]float64{
	question.DifficultyEasy:   1,
	question.DifficultyMedium: 2,
	question.DifficultyHard:   3,
}

// ResolveScore picks the point value an encoder emits for a question: the
// question's own score when positive, else its max score when positive, else
// a default keyed by the requested difficulty. Mismatched min/score/max
// values are passed through untouched, never "fixed" here.
func ResolveScore(q question.Question, difficulty question.Difficulty) float64 {
	if q.Score > 0 {
		return q.Score
	}
	if q.MaxScore > 0 {
		return q.MaxScore
	}
	if s, ok := difficultyDefaultScore[difficulty]; ok {
		return s
	}
	return 1
}
