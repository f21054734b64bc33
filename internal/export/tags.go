package export

import (
	"strings"

	"github.com/tentagen/tentagen/internal/i18n"
	"github.com/tentagen/tentagen/internal/question"
)

// TypeDisplayName translates a question type id for display. Unrecognized
// ids come back as the raw id string.
func TypeDisplayName(lang question.Language, typeID string) string {
	if s, ok := i18n.LookupMessage(string(lang), "qtype."+typeID); ok {
		return s
	}
	return typeID
}

// DifficultyDisplayName translates a difficulty for display. Unrecognized
// values come back as the raw string.
func DifficultyDisplayName(lang question.Language, d question.Difficulty) string {
	if s, ok := i18n.LookupMessage(string(lang), "difficulty."+string(d)); ok {
		return s
	}
	return string(d)
}

// AutoTags derives the auto-generated classification tags for one question:
// subject, topic, translated type name, translated difficulty, language
// marker, AI-origin marker, tutor initials, in that order. A tag is
// skipped when an equal string is already present in existing, so tags
// stored on the question are never duplicated.
func AutoTags(meta Metadata, typeID string, existing []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, t := range existing {
		seen[t] = true
	}

	var out []string
	add := func(tag string) {
		if tag == "" || seen[tag] {
			return
		}
		seen[tag] = true
		out = append(out, tag)
	}

	add(meta.Subject)
	add(meta.Topic)
	add(TypeDisplayName(meta.Language, typeID))
	add(DifficultyDisplayName(meta.Language, meta.Difficulty))
	if meta.IncludeLanguageTag {
		add(i18n.T(string(meta.Language), "tag.language_marker"))
	}
	if meta.IncludeAITag {
		add(i18n.T(string(meta.Language), "tag.ai_generated"))
	}
	add(strings.TrimSpace(meta.TutorInitials))
	return out
}

// ManualTags returns the user-supplied tagging fields: term, semester, exam
// type and course code when non-empty, followed by the comma-split entries
// of the additional-tags field.
func ManualTags(meta Metadata) []string {
	var out []string
	for _, t := range []string{meta.Term, meta.Semester, meta.ExamType, meta.CourseCode} {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	for _, t := range strings.Split(meta.AdditionalTags, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// AllTags is the full tag set an export carries for one question: the tags
// already stored on it, the auto-generated ones, and the manual ones, with
// exact-string duplicates dropped.
func AllTags(meta Metadata, q question.Question) []string {
	out := make([]string, 0, len(q.Tags)+8)
	seen := map[string]bool{}
	for _, t := range q.Tags {
		if t != "" && !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	for _, t := range AutoTags(meta, q.Type, out) {
		seen[t] = true
		out = append(out, t)
	}
	for _, t := range ManualTags(meta) {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}
