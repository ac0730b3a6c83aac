package claude

import (
	"context"
	"testing"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealscope/dealscope/internal/model"
)

type fakeMessages struct {
	reply string
	err   error

	gotModel    string
	gotMessages int
}

func (f *fakeMessages) New(_ context.Context, params sdk.MessageNewParams, _ ...option.RequestOption) (*sdk.Message, error) {
	f.gotModel = string(params.Model)
	f.gotMessages = len(params.Messages)
	if f.err != nil {
		return nil, f.err
	}
	return &sdk.Message{
		Content: []sdk.ContentBlockUnion{{Type: "text", Text: f.reply}},
	}, nil
}

func newTestClassifier(fake *fakeMessages) *Classifier {
	return &Classifier{messages: fake, model: DefaultModel}
}

func TestClassify_Success(t *testing.T) {
	fake := &fakeMessages{reply: `{"label": "POSITIVE", "confidence": 0.93}`}
	c := newTestClassifier(fake)

	result, err := c.Classify(context.Background(), "Love these headphones!")
	require.NoError(t, err)
	assert.Equal(t, model.SentimentPositive, result.Label)
	assert.InDelta(t, 0.93, result.Confidence, 0.001)
	assert.Equal(t, DefaultModel, fake.gotModel)
	assert.Equal(t, 1, fake.gotMessages)
}

func TestClassify_WrappedJSON(t *testing.T) {
	fake := &fakeMessages{reply: "Here is my assessment:\n{\"label\": \"negative\", \"confidence\": 0.81}\nDone."}
	c := newTestClassifier(fake)

	result, err := c.Classify(context.Background(), "Broke after a week.")
	require.NoError(t, err)
	assert.Equal(t, model.SentimentNegative, result.Label)
	assert.InDelta(t, 0.81, result.Confidence, 0.001)
}

func TestClassify_ConfidenceClamped(t *testing.T) {
	fake := &fakeMessages{reply: `{"label": "NEUTRAL", "confidence": 1.7}`}
	c := newTestClassifier(fake)

	result, err := c.Classify(context.Background(), "It exists.")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, result.Confidence, 0.001)
}

func TestClassify_UnexpectedLabel(t *testing.T) {
	fake := &fakeMessages{reply: `{"label": "MIXED", "confidence": 0.5}`}
	c := newTestClassifier(fake)

	_, err := c.Classify(context.Background(), "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MIXED")
}

func TestClassify_NoJSON(t *testing.T) {
	fake := &fakeMessages{reply: "I cannot classify this."}
	c := newTestClassifier(fake)

	_, err := c.Classify(context.Background(), "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no JSON object")
}

func TestClassify_APIError(t *testing.T) {
	fake := &fakeMessages{err: eris.New("overloaded")}
	c := newTestClassifier(fake)

	_, err := c.Classify(context.Background(), "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create message")
}
