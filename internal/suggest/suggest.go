// Package suggest proposes category tags for a transaction using Gemini.
// The model sees the user's own tag catalog and must answer with tag ids
// from that catalog only; anything else is dropped.
package suggest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"github.com/dvloznov/zenmoney-bridge/internal/view"
)

// DefaultModel is used when no model name is configured.
const DefaultModel = "gemini-2.0-flash"

// Input describes the transaction to categorize.
type Input struct {
	Payee   string  `json:"payee"`
	Comment string  `json:"comment"`
	Amount  float64 `json:"amount"`
	Kind    string  `json:"kind"`
}

// Suggester asks a Gemini model to pick tags for a transaction.
type Suggester struct {
	client *genai.Client
	model  string
	log    zerolog.Logger
}

// New creates a suggester. Credentials are resolved from the environment
// the same way the genai SDK does everywhere else.
func New(ctx context.Context, model string, log zerolog.Logger) (*Suggester, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("suggest.New: create genai client: %w", err)
	}
	if model == "" {
		model = DefaultModel
	}
	return &Suggester{client: client, model: model, log: log}, nil
}

type rawSuggestion struct {
	TagID  string `json:"tag_id"`
	Reason string `json:"reason"`
}

// Suggest returns up to three tags from the catalog that fit the input,
// most likely first. Suggestions referencing unknown tag ids are discarded.
func (s *Suggester) Suggest(ctx context.Context, input Input, tags []view.Tag) ([]view.Suggestion, error) {
	if len(tags) == 0 {
		return nil, fmt.Errorf("Suggest: empty tag catalog")
	}

	prompt := buildPrompt(input, tags)

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: prompt},
			},
		},
	}

	resp, err := s.client.Models.GenerateContent(ctx, s.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("Suggest: generate content: %w", err)
	}

	rawText := resp.Text()
	if rawText == "" {
		return nil, fmt.Errorf("Suggest: empty response from model")
	}

	clean := cleanModelJSON(rawText)

	var raw []rawSuggestion
	if err := json.Unmarshal([]byte(clean), &raw); err != nil {
		return nil, fmt.Errorf("Suggest: unmarshal JSON: %w\nraw response: %s", err, rawText)
	}

	byID := make(map[string]view.Tag, len(tags))
	for _, t := range tags {
		byID[t.ID] = t
	}

	out := make([]view.Suggestion, 0, len(raw))
	for _, r := range raw {
		tag, ok := byID[r.TagID]
		if !ok {
			s.log.Warn().Str("tag_id", r.TagID).Msg("Model suggested unknown tag, dropping")
			continue
		}
		reason := r.Reason
		out = append(out, view.Suggestion{
			TagID:    tag.ID,
			TagTitle: tag.Title,
			Reason:   &reason,
		})
		if len(out) == 3 {
			break
		}
	}
	return out, nil
}

func buildPrompt(input Input, tags []view.Tag) string {
	var b strings.Builder

	b.WriteString("You are a personal finance categorizer.\n\n")
	b.WriteString("Task:\n")
	b.WriteString("- Pick up to 3 category tags for the transaction below, most likely first.\n")
	b.WriteString("- Use ONLY tag ids from the catalog.\n")
	b.WriteString("- Output STRICT JSON only (no comments, no extra text).\n")
	b.WriteString("- Output a JSON array of objects with fields:\n")
	b.WriteString("  - \"tag_id\": string (an id from the catalog)\n")
	b.WriteString("  - \"reason\": string (one short sentence)\n\n")

	b.WriteString("Tag catalog:\n")
	for _, t := range tags {
		b.WriteString("- id: ")
		b.WriteString(t.ID)
		b.WriteString(", title: ")
		b.WriteString(t.Title)
		if t.Parent != nil {
			b.WriteString(", parent: ")
			b.WriteString(*t.Parent)
		}
		b.WriteString("\n")
	}

	b.WriteString("\nTransaction:\n")
	b.WriteString(fmt.Sprintf("- payee: %q\n", input.Payee))
	b.WriteString(fmt.Sprintf("- comment: %q\n", input.Comment))
	b.WriteString(fmt.Sprintf("- amount: %.2f\n", input.Amount))
	b.WriteString(fmt.Sprintf("- kind: %s\n\n", input.Kind))

	b.WriteString("Return ONLY valid raw JSON.\n")
	b.WriteString("Do NOT wrap the response in code fences.\n")
	b.WriteString("Output must begin with \"[\" and end with \"]\".\n")

	return b.String()
}

func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	// Handle ```json ... ``` or ``` ... ``` wrappers.
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	s = strings.TrimSpace(s)

	// Keep only from the first '[' to the last ']' if there is still junk.
	if start := strings.Index(s, "["); start != -1 {
		if end := strings.LastIndex(s, "]"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}

	return s
}
