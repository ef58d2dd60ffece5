package vision

import (
	"context"
	"errors"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/your-org/argus/internal/config"
	"github.com/your-org/argus/internal/observability"
)

// Client sends one or two images plus a text instruction to the external
// multimodal model and returns its raw text output. The client performs no
// semantic interpretation and no retries; both belong to the caller.
type Client interface {
	Complete(ctx context.Context, instruction string, images ...string) (string, error)
}

type OpenAIClient struct {
	client    *openai.Client
	model     string
	maxTokens int64
	timeout   time.Duration
}

func NewOpenAIClient(cfg config.VisionConfig) *OpenAIClient {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := openai.NewClient(opts...)

	return &OpenAIClient{
		client:    &client,
		model:     cfg.Model,
		maxTokens: int64(cfg.MaxTokens),
		timeout:   time.Duration(cfg.RequestTimeoutSeconds) * time.Second,
	}
}

// Complete sends the instruction with the given image references (remote URLs
// or data URIs) as a single user message.
func (c *OpenAIClient) Complete(ctx context.Context, instruction string, images ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	parts := []openai.ChatCompletionContentPartUnionParam{
		openai.TextContentPart(instruction),
	}
	for _, img := range images {
		parts = append(parts, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
			URL: img,
		}))
	}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfArrayOfContentParts: parts,
					},
				},
			},
		},
		MaxTokens: openai.Int(c.maxTokens),
	})
	if err != nil {
		var apierr *openai.Error
		if errors.As(err, &apierr) {
			ue := classify(apierr.StatusCode, apierr.Message)
			observability.UpstreamErrors.WithLabelValues(string(ue.Kind)).Inc()
			return "", ue
		}
		observability.UpstreamErrors.WithLabelValues(string(KindUnavailable)).Inc()
		return "", &UpstreamError{Kind: KindUnavailable, Message: err.Error()}
	}

	if len(resp.Choices) == 0 {
		return "", &UpstreamError{Kind: KindUnavailable, Message: "no choices in model response"}
	}
	return resp.Choices[0].Message.Content, nil
}
