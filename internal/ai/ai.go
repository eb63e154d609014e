/*
Package ai summarises Oslo Børs announcements with the Gemini API so the
emailed notification carries a short digest next to the full text.
*/
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/shanehull/oslonotify/internal/types"
)

const DefaultModel = "gemini-2.5-flash"

// maxPromptChars bounds the announcement text sent to the model.
const maxPromptChars = 60000

type Fact struct {
	Category string `json:"category"`
	Details  string `json:"details"`
}

type Analysis struct {
	Summary  []string `json:"summary"`
	KeyFacts []Fact   `json:"key_facts"`
}

// Analyzer wraps a single Gemini client for the lifetime of a run.
type Analyzer struct {
	client *genai.Client
	model  string
}

func NewAnalyzer(ctx context.Context, apiKey, model string) (*Analyzer, error) {
	if apiKey == "" {
		return nil, errors.New("gemini API key is required")
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &Analyzer{client: client, model: model}, nil
}

// Analyze asks the model for a structured digest of one announcement.
func (a *Analyzer) Analyze(ctx context.Context, ann types.Announcement, content types.Content) (*Analysis, error) {
	resp, err := a.client.Models.GenerateContent(ctx, a.model,
		[]*genai.Content{genai.NewContentFromText(buildPrompt(ann, content), genai.RoleUser)},
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
			ResponseMIMEType:  "application/json",
			ResponseSchema:    getResponseSchema(),
		})
	if err != nil {
		return nil, fmt.Errorf("gemini API call failed: %w", err)
	}

	return parseAnalysis(resp.Text())
}

func parseAnalysis(respText string) (*Analysis, error) {
	var analysis Analysis
	if err := json.Unmarshal([]byte(respText), &analysis); err != nil {
		return nil, fmt.Errorf("failed to unmarshal gemini JSON response: %w", err)
	}
	return &analysis, nil
}

func getResponseSchema() *genai.Schema {
	factSchema := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"category": {Type: genai.TypeString, Description: "One of the defined fact categories."},
			"details":  {Type: genai.TypeString, Description: "The figure, date or term, stated concretely."},
		},
		Required: []string{"category", "details"},
	}

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"summary": {
				Type:        genai.TypeArray,
				Items:       &genai.Schema{Type: genai.TypeString},
				Description: "Two to four short bullet points summarising the announcement in English.",
			},
			"key_facts": {
				Type:        genai.TypeArray,
				Items:       factSchema,
				Description: "Quantitative facts stated in the announcement.",
			},
		},
		Required: []string{"summary", "key_facts"},
	}
}
