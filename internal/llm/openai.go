package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// openaiClient also serves OpenRouter and other compatible endpoints.
type openaiClient struct {
	client *openai.Client
	vendor string
	model  string
}

func newOpenAI(vendor, key, model, baseURL string) *openaiClient {
	cfg := openai.DefaultConfig(key)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &openaiClient{client: openai.NewClientWithConfig(cfg), vendor: vendor, model: model}
}

func (o *openaiClient) Name() string    { return o.vendor }
func (o *openaiClient) ModelID() string { return o.model }

func (o *openaiClient) Generate(ctx context.Context, req Request) (*Response, error) {
	chat := openai.ChatCompletionRequest{
		Model:               o.model,
		MaxCompletionTokens: req.MaxTokens,
		Temperature:         float32(req.Temperature),
	}
	if req.System != "" {
		chat.Messages = append(chat.Messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.System})
	}
	chat.Messages = append(chat.Messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.Prompt})
	if req.Schema != nil {
		def, err := json.Marshal(req.Schema.Definition)
		if err != nil {
			return nil, fmt.Errorf("encode schema %s: %w", req.Schema.Name, err)
		}
		chat.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:        req.Schema.Name,
				Description: req.Schema.Description,
				Schema:      json.RawMessage(def),
				Strict:      true,
			},
		}
	}

	out, err := o.client.CreateChatCompletion(ctx, chat)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return nil, statusError(o.vendor, apiErr.HTTPStatusCode, err)
		}
		var reqErr *openai.RequestError
		if errors.As(err, &reqErr) {
			return nil, statusError(o.vendor, reqErr.HTTPStatusCode, err)
		}
		return nil, statusError(o.vendor, 0, err)
	}
	if len(out.Choices) == 0 {
		return nil, &Error{Kind: KindInvalidOutput, Vendor: o.vendor, Err: errors.New("reply has no choices")}
	}

	choice := out.Choices[0]
	resp, err := decode(o.vendor, req, choice.Message.Content, choice.FinishReason == openai.FinishReasonLength)
	if err != nil {
		return nil, err
	}
	resp.Model = out.Model
	resp.InputTokens = out.Usage.PromptTokens
	resp.OutputTokens = out.Usage.CompletionTokens
	return resp, nil
}
