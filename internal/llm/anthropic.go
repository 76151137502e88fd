package llm

import (
	"context"
	"errors"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

type anthropicClient struct {
	client anthropic.Client
	model  string
}

func newAnthropic(key, model, baseURL string, extra ...option.RequestOption) *anthropicClient {
	opts := append([]option.RequestOption{option.WithAPIKey(key)}, extra...)
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &anthropicClient{client: anthropic.NewClient(opts...), model: model}
}

func (a *anthropicClient) Name() string    { return Anthropic }
func (a *anthropicClient) ModelID() string { return a.model }

func (a *anthropicClient) Generate(ctx context.Context, req Request) (*Response, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: int64(req.MaxTokens),
		Messages:  []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt))},
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}
	if req.Temperature > 0 {
		params.Temperature = anthropic.Float(req.Temperature)
	}
	if req.Schema != nil {
		params.OutputConfig = anthropic.OutputConfigParam{
			Format: anthropic.JSONOutputFormatParam{Schema: req.Schema.Definition},
		}
	}

	msg, err := a.client.Messages.New(ctx, params)
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return nil, statusError(Anthropic, apiErr.StatusCode, err)
		}
		return nil, statusError(Anthropic, 0, err)
	}

	var text string
	for _, block := range msg.Content {
		if block.Type == "text" {
			text = block.Text
			break
		}
	}
	if text == "" {
		return nil, &Error{Kind: KindInvalidOutput, Vendor: Anthropic, Err: errors.New("reply has no text block")}
	}
	resp, err := decode(Anthropic, req, text, msg.StopReason == anthropic.StopReasonMaxTokens)
	if err != nil {
		return nil, err
	}
	resp.Model = string(msg.Model)
	resp.InputTokens = int(msg.Usage.InputTokens)
	resp.OutputTokens = int(msg.Usage.OutputTokens)
	return resp, nil
}
