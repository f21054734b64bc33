// Package llm generates question drafts with an OpenAI-compatible API. The
// export layer never calls into here; generated questions flow through the
// store and come back to the encoders as plain data.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/tentagen/tentagen/internal/question"
)

// Client wraps an OpenAI-compatible API client.
type Client struct {
	api   *openai.Client
	model string
}

// New creates a new LLM client.
func New(baseURL, apiKey, modelName string) *Client {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &Client{
		api:   openai.NewClientWithConfig(config),
		model: modelName,
	}
}

// GenerateRequest describes one generation call.
type GenerateRequest struct {
	Subject    string
	Topic      string
	Difficulty question.Difficulty
	Language   question.Language
	TypeIDs    []string // requested question types; empty means the default-enabled set
	Count      int
	// SourceText is optional extracted material (uploaded document, URL
	// content, transcript) the questions should be grounded in.
	SourceText string
}

type generatedQuestion struct {
	Type               string            `json:"type"`
	Title              string            `json:"title"`
	Stimulus           string            `json:"stimulus"`
	Options            []question.Option `json:"options"`
	CorrectAnswer      []string          `json:"correct_answer"`
	InstructorStimulus string            `json:"instructor_stimulus"`
}

type generatedSet struct {
	Questions []generatedQuestion `json:"questions"`
}

// Generate asks the model for question drafts and maps them onto the
// internal question shape. Unknown type ids in the response are kept as-is;
// the registry's fallback handles them at export time.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) ([]question.Question, error) {
	if req.Count <= 0 {
		req.Count = 5
	}
	typeIDs := req.TypeIDs
	if len(typeIDs) == 0 {
		typeIDs = question.DefaultEnabledTypeIDs()
	}
	typeIDs = forceCoreTypes(typeIDs)

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: buildSystemPrompt(typeIDs, req.Language)},
			{Role: openai.ChatMessageRoleUser, Content: buildUserPrompt(req)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.7,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM API call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("LLM returned no choices")
	}

	var set generatedSet
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &set); err != nil {
		return nil, fmt.Errorf("parse LLM response: %w", err)
	}

	out := make([]question.Question, 0, len(set.Questions))
	for _, g := range set.Questions {
		out = append(out, question.Question{
			Type:               g.Type,
			Title:              g.Title,
			Stimulus:           g.Stimulus,
			Options:            g.Options,
			CorrectAnswer:      g.CorrectAnswer,
			InstructorStimulus: g.InstructorStimulus,
		})
	}
	return out, nil
}

// forceCoreTypes makes sure the core tier is always in the allowed set,
// regardless of what the user preference toggled off.
func forceCoreTypes(typeIDs []string) []string {
	have := map[string]bool{}
	for _, id := range typeIDs {
		have[id] = true
	}
	out := append([]string(nil), typeIDs...)
	for _, id := range question.CoreTypeIDs() {
		if !have[id] {
			out = append(out, id)
		}
	}
	return out
}

func languageName(lang question.Language) string {
	if lang == question.LanguageSwedish {
		return "Swedish"
	}
	return "English"
}

func buildSystemPrompt(typeIDs []string, lang question.Language) string {
	var b strings.Builder
	b.WriteString("You are an exam question writer for university-level courses.\n")
	fmt.Fprintf(&b, "Write all question text in %s.\n", languageName(lang))
	b.WriteString("Allowed question types: " + strings.Join(typeIDs, ", ") + ".\n")
	b.WriteString(`Respond with a JSON object: {"questions": [{"type", "title", "stimulus", "options": [{"label", "value"}], "correct_answer": ["..."], "instructor_stimulus"}]}.
For choice types, labels are "A", "B", ... and correct_answer references labels.
For essay-like types, omit options and put a grading rubric in instructor_stimulus.
`)
	return b.String()
}

func buildUserPrompt(req GenerateRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create %d exam questions.\nSubject: %s\n", req.Count, req.Subject)
	if req.Topic != "" {
		fmt.Fprintf(&b, "Topic: %s\n", req.Topic)
	}
	fmt.Fprintf(&b, "Difficulty: %s\n", req.Difficulty)
	if req.SourceText != "" {
		b.WriteString("Base the questions on the following material:\n---\n")
		b.WriteString(req.SourceText)
		b.WriteString("\n---\n")
	}
	return b.String()
}
