// Package claude classifies review sentiment with an Anthropic model
// through the Messages API.
package claude

import (
	"context"
	"encoding/json"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"

	"github.com/dealscope/dealscope/internal/model"
)

// DefaultModel is the default classification model.
const DefaultModel = "claude-haiku-4-5-20251001"

const maxTokens = 64

const systemPrompt = `You classify the sentiment of product reviews.
Respond with a single JSON object and nothing else:
{"label": "POSITIVE" | "NEGATIVE" | "NEUTRAL", "confidence": <0.0-1.0>}`

// messageCreator is the slice of the SDK message service we use,
// extracted so tests can stub the API.
type messageCreator interface {
	New(ctx context.Context, params sdk.MessageNewParams, opts ...option.RequestOption) (*sdk.Message, error)
}

// Classifier labels review text via the Messages API. It satisfies the
// review stage's classifier contract.
type Classifier struct {
	messages messageCreator
	model    string
}

// Option configures the classifier.
type Option func(*Classifier)

// WithModel overrides the default model.
func WithModel(model string) Option {
	return func(c *Classifier) {
		c.model = model
	}
}

// NewClassifier creates a Messages API sentiment classifier.
func NewClassifier(apiKey string, opts ...Option) *Classifier {
	client := sdk.NewClient(option.WithAPIKey(apiKey))
	c := &Classifier{
		messages: &client.Messages,
		model:    DefaultModel,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type classification struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

func (c *Classifier) Classify(ctx context.Context, text string) (model.SentimentResult, error) {
	var zero model.SentimentResult

	msg, err := c.messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(c.model),
		MaxTokens: maxTokens,
		System:    []sdk.TextBlockParam{{Text: systemPrompt}},
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(text)),
		},
	})
	if err != nil {
		return zero, eris.Wrap(err, "claude: create message")
	}

	reply := textContent(msg)
	if reply == "" {
		return zero, eris.New("claude: empty response")
	}

	parsed, err := parseClassification(reply)
	if err != nil {
		return zero, err
	}
	return parsed, nil
}

func textContent(msg *sdk.Message) string {
	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return strings.TrimSpace(b.String())
}

// parseClassification extracts the JSON object from the reply. Models
// occasionally wrap the object in prose, so parsing is scoped to the
// outermost braces.
func parseClassification(reply string) (model.SentimentResult, error) {
	var zero model.SentimentResult

	start := strings.IndexByte(reply, '{')
	end := strings.LastIndexByte(reply, '}')
	if start < 0 || end <= start {
		return zero, eris.Errorf("claude: no JSON object in response: %s", reply)
	}

	var parsed classification
	if err := json.Unmarshal([]byte(reply[start:end+1]), &parsed); err != nil {
		return zero, eris.Wrap(err, "claude: unmarshal classification")
	}

	label := model.SentimentLabel(strings.ToUpper(parsed.Label))
	switch label {
	case model.SentimentPositive, model.SentimentNegative, model.SentimentNeutral:
	default:
		return zero, eris.Errorf("claude: unexpected label %q", parsed.Label)
	}

	confidence := parsed.Confidence
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}
	return model.SentimentResult{Label: label, Confidence: confidence}, nil
}
