// Package assistant answers planning questions and proposes roadmap
// edits using the Anthropic API.
package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"hitched/api/internal/roadmap"
)

// Reply is what the assistant returns to the caller. UpdatedRoadmap is
// nil when the assistant only answered in prose.
type Reply struct {
	TextResponse   string               `json:"textResponse"`
	UpdatedRoadmap []roadmap.PhaseInput `json:"updatedRoadmap,omitempty"`
}

// RoadmapContext is the current roadmap serialized into the prompt.
type RoadmapContext struct {
	Phases []roadmap.PhaseInput `json:"phases"`
}

// Service wraps the Anthropic client.
type Service struct {
	client     anthropic.Client
	model      string
	configured bool
}

// New creates an assistant service. apiKey may be empty; Ask then
// returns an unconfigured error.
func New(apiKey, model string) *Service {
	return &Service{
		client:     anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:      model,
		configured: apiKey != "" && model != "",
	}
}

// IsConfigured reports whether an API key was provided.
func (s *Service) IsConfigured() bool {
	return s.configured
}

const systemPrompt = `You are a wedding planning assistant embedded in a planning app.
The user's current roadmap is provided as JSON. Answer planning questions helpfully and concisely.
When the user asks you to change the roadmap, respond with ONLY a JSON object of this exact shape:
{"textResponse": "<short summary of what you changed>", "updatedRoadmap": [{"id": "<existing id or null>", "title": "...", "tasks": [{"id": "<existing id or null>", "title": "..."}]}]}
Keep the id of every phase and task you are not renaming. Omit a phase or task to delete it. New items get "id": null.
When no roadmap change is needed, respond with {"textResponse": "<your answer>"}.
Respond with the JSON object only, no markdown fences.`

// Ask sends the user's message plus roadmap context to the model and
// parses the structured reply.
func (s *Service) Ask(ctx context.Context, message string, current RoadmapContext) (Reply, error) {
	if !s.IsConfigured() {
		return Reply{}, fmt.Errorf("assistant not configured")
	}

	roadmapJSON, err := json.Marshal(current)
	if err != nil {
		return Reply{}, fmt.Errorf("marshal roadmap context: %w", err)
	}

	prompt := fmt.Sprintf("Current roadmap:\n%s\n\nUser message:\n%s", roadmapJSON, message)

	resp, err := s.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(s.model),
		MaxTokens: 4096,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return Reply{}, fmt.Errorf("anthropic api call failed: %w", err)
	}

	var responseText string
	for _, block := range resp.Content {
		if block.Type == "text" {
			responseText += block.Text
		}
	}

	reply, err := parseReply(responseText)
	if err != nil {
		return Reply{}, err
	}
	return reply, nil
}

// parseReply decodes the model output, tolerating markdown code fences
// and falling back to treating the whole output as prose.
func parseReply(text string) (Reply, error) {
	trimmed := strings.TrimSpace(text)
	candidate := stripFences(trimmed)

	var reply Reply
	if err := json.Unmarshal([]byte(candidate), &reply); err == nil && reply.TextResponse != "" {
		return reply, nil
	}

	// Model occasionally wraps the JSON in explanatory prose.
	if start := strings.Index(candidate, "{"); start >= 0 {
		if end := strings.LastIndex(candidate, "}"); end > start {
			if err := json.Unmarshal([]byte(candidate[start:end+1]), &reply); err == nil && reply.TextResponse != "" {
				return reply, nil
			}
		}
	}

	if trimmed == "" {
		return Reply{}, fmt.Errorf("empty assistant response")
	}
	return Reply{TextResponse: trimmed}, nil
}

func stripFences(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	lines := strings.Split(text, "\n")
	if len(lines) < 2 {
		return text
	}
	lines = lines[1:]
	if strings.HasPrefix(strings.TrimSpace(lines[len(lines)-1]), "```") {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
