// Package gemini provides an llm.Client backed by the Google Gemini
// generateContent REST API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"radiomirchi/pkg/domain"
	"radiomirchi/pkg/llm"
	"radiomirchi/pkg/serrors"
	"strings"

	"github.com/tidwall/gjson"
)

// DefaultBaseURL is the public Generative Language API endpoint.
const DefaultBaseURL = "https://generativelanguage.googleapis.com"

// Options configures the client.
type Options struct {
	APIKey  string
	Model   string
	BaseURL string
}

// Client talks to the Gemini API and fulfills llm.Client. It is safe for
// concurrent use.
type Client struct {
	httpClient *http.Client
	opts       Options
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	ResponseMimeType string `json:"responseMimeType,omitempty"`
	ResponseSchema   any    `json:"responseSchema,omitempty"`
}

type generateReq struct {
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	Contents          []content         `json:"contents"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

// schema is the subset of the OpenAPI schema object Gemini accepts.
type schema struct {
	Type       string            `json:"type"`
	Properties map[string]schema `json:"properties,omitempty"`
	Items      *schema           `json:"items,omitempty"`
	Required   []string          `json:"required,omitempty"`
	Enum       []string          `json:"enum,omitempty"`
}

var propagandaSchema = schema{ //nolint: gochecknoglobals
	Type: "OBJECT",
	Properties: map[string]schema{
		"summary":         {Type: "STRING"},
		"proof_sentences": {Type: "ARRAY", Items: &schema{Type: "STRING"}},
		"speakers": {Type: "ARRAY", Items: &schema{
			Type: "OBJECT",
			Properties: map[string]schema{
				"name":   {Type: "STRING"},
				"gender": {Type: "STRING", Enum: []string{string(domain.GenderMale), string(domain.GenderFemale)}},
			},
			Required: []string{"name", "gender"},
		}},
		"initial_listeners": {Type: "INTEGER"},
	},
	Required: []string{"summary", "proof_sentences", "speakers", "initial_listeners"},
}

func dialogueSchema(withAwakening bool) schema {
	s := schema{
		Type: "OBJECT",
		Properties: map[string]schema{
			"dialogues": {Type: "ARRAY", Items: &schema{
				Type: "OBJECT",
				Properties: map[string]schema{
					"speaker_name": {Type: "STRING"},
					"line":         {Type: "STRING"},
				},
				Required: []string{"speaker_name", "line"},
			}},
		},
		Required: []string{"dialogues"},
	}
	if withAwakening {
		s.Properties["awakened_listeners_change"] = schema{Type: "NUMBER"}
		s.Required = append(s.Required, "awakened_listeners_change")
	}

	return s
}

// generate performs one generateContent call and returns the text of the
// first candidate.
func (c *Client) generate(ctx context.Context, body generateReq) (string, error) {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("could not marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent",
		strings.TrimRight(c.opts.BaseURL, "/"), url.PathEscape(c.opts.Model))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", c.opts.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		return "", serrors.Wrap(serrors.ErrUnavailable, err, "could not send request")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("could not read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", statusError(resp.StatusCode, b)
	}

	if reason := gjson.GetBytes(b, "promptFeedback.blockReason"); reason.Exists() {
		return "", serrors.With(serrors.ErrBadRequest, "prompt blocked: %s", reason.String())
	}
	text := gjson.GetBytes(b, "candidates.0.content.parts.0.text").String()
	if strings.TrimSpace(text) == "" {
		finish := gjson.GetBytes(b, "candidates.0.finishReason").String()

		return "", fmt.Errorf("empty response from model (finish reason %q)", finish)
	}

	return text, nil
}

// statusError converts a non-2xx response into an error of the matching kind.
func statusError(status int, body []byte) error {
	msg := gjson.GetBytes(body, "error.message").String()
	if msg == "" {
		msg = strings.TrimSpace(string(body))
	}

	switch {
	case status == http.StatusTooManyRequests:
		return serrors.With(serrors.ErrRateLimited, "rate limited: %s", msg)
	case status >= 500:
		return serrors.With(serrors.ErrUnavailable, "model unavailable (%d): %s", status, msg)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return serrors.With(serrors.ErrUnauthorized, "model rejected credentials: %s", msg)
	default:
		return fmt.Errorf("generate content failed (%d): %s", status, msg)
	}
}

// GeneratePropaganda implements llm.Client.
func (c *Client) GeneratePropaganda(ctx context.Context, topic string) (*domain.Propaganda, error) {
	text, err := c.generate(ctx, generateReq{
		Contents: []content{{Role: "user", Parts: []part{{Text: llm.PropagandaPrompt(topic)}}}},
		GenerationConfig: &generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   propagandaSchema,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("could not generate propaganda: %w", err)
	}

	p, err := parsePropaganda(text)
	if err != nil {
		return nil, fmt.Errorf("could not parse propaganda: %w", err)
	}

	return p, nil
}

func parsePropaganda(text string) (*domain.Propaganda, error) {
	if !gjson.Valid(text) {
		return nil, errors.New("model did not return valid json")
	}
	res := gjson.Parse(text)

	p := &domain.Propaganda{
		Summary:          strings.TrimSpace(res.Get("summary").String()),
		InitialListeners: int(res.Get("initial_listeners").Int()),
	}
	for _, s := range res.Get("proof_sentences").Array() {
		if v := strings.TrimSpace(s.String()); v != "" {
			p.ProofSentences = append(p.ProofSentences, v)
		}
		if len(p.ProofSentences) == domain.MaxProofSentences {
			break
		}
	}
	for _, s := range res.Get("speakers").Array() {
		gender := domain.Gender(strings.ToLower(strings.TrimSpace(s.Get("gender").String())))
		if gender != domain.GenderMale {
			gender = domain.GenderFemale
		}
		p.Speakers = append(p.Speakers, domain.Speaker{
			Name:   strings.TrimSpace(s.Get("name").String()),
			Gender: gender,
		})
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}

	return p, nil
}

// GenerateDialoguePrompt implements llm.Client.
func (c *Client) GenerateDialoguePrompt(ctx context.Context,
	topic string,
	propaganda *domain.Propaganda) (string, error) {
	if propaganda == nil {
		return "", serrors.With(serrors.ErrBadRequest, "propaganda is required")
	}

	text, err := c.generate(ctx, generateReq{
		Contents: []content{{Role: "user", Parts: []part{{Text: llm.DialoguePromptPrompt(topic, propaganda)}}}},
	})
	if err != nil {
		return "", fmt.Errorf("could not generate dialogue prompt: %w", err)
	}

	return strings.TrimSpace(text), nil
}

// GenerateDialogue implements llm.Client.
func (c *Client) GenerateDialogue(ctx context.Context, req llm.DialogueRequest) (*domain.DialogueBatch, error) {
	withAwakening := req.UserStatement != ""
	text, err := c.generate(ctx, generateReq{
		SystemInstruction: &content{Parts: []part{{Text: llm.DialogueSystemPrompt(req)}}},
		Contents:          []content{{Role: "user", Parts: []part{{Text: llm.DialogueUserPrompt(req)}}}},
		GenerationConfig: &generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   dialogueSchema(withAwakening),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("could not generate dialogue: %w", err)
	}

	batch, err := parseDialogue(text, req.Speakers, withAwakening)
	if err != nil {
		return nil, fmt.Errorf("could not parse dialogue: %w", err)
	}

	return batch, nil
}

func parseDialogue(text string, speakers []domain.Speaker, withAwakening bool) (*domain.DialogueBatch, error) {
	if !gjson.Valid(text) {
		return nil, errors.New("model did not return valid json")
	}
	res := gjson.Parse(text)

	known := make(map[string]string, len(speakers))
	for _, s := range speakers {
		known[strings.ToLower(s.Name)] = s.Name
	}

	batch := &domain.DialogueBatch{}
	for _, d := range res.Get("dialogues").Array() {
		line := strings.TrimSpace(d.Get("line").String())
		name, ok := known[strings.ToLower(strings.TrimSpace(d.Get("speaker_name").String()))]
		if line == "" || (!ok && len(known) > 0) {
			continue
		}
		if !ok {
			name = strings.TrimSpace(d.Get("speaker_name").String())
		}
		batch.Lines = append(batch.Lines, domain.DialogueLine{SpeakerName: name, Line: line})
		if len(batch.Lines) == domain.MaxDialogueLines {
			break
		}
	}
	if len(batch.Lines) == 0 {
		return nil, errors.New("model returned no usable dialogue lines")
	}
	if withAwakening {
		batch.AwakenedListenersChange = res.Get("awakened_listeners_change").Float()
	}

	return batch, nil
}

// Ensure Client conforms to the llm.Client interface at compile time.
var _ llm.Client = (*Client)(nil)

// New constructs a Client. Empty Model and BaseURL fall back to defaults.
func New(httpClient *http.Client, opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Model == "" {
		opts.Model = "gemini-1.5-flash-latest"
	}

	return &Client{
		httpClient: httpClient,
		opts:       opts,
	}
}
