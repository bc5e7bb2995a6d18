package completion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/rs/zerolog/log"
)

type Config struct {
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://api.openai.com/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true" required:"true"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"2000"`
	Temperature        float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0.5"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
}

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Request carries the ordered prompt plus optional per-call overrides.
// Zero-valued overrides fall back to the client Config.
type Request struct {
	Messages    []Message
	Model       string
	Temperature *float32
	MaxTokens   *int
}

type Usage struct {
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
	TotalTokens      int64 `json:"total_tokens"`
}

type Response struct {
	Content string `json:"content"`
	Usage   Usage  `json:"usage"`
}

// Client is a thin wrapper over the OpenAI-compatible chat completion API.
type Client struct {
	api openaisdk.Client
	cfg Config
}

func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("completion api key is required")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, errors.New("completion default model is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	opts := []option.RequestOption{
		option.WithAPIKey(strings.TrimSpace(cfg.APIKey)),
		option.WithRequestTimeout(timeout),
		option.WithMaxRetries(0),
	}
	if trimmed := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"); trimmed != "" {
		opts = append(opts, option.WithBaseURL(trimmed))
	}

	return &Client{
		api: openaisdk.NewClient(opts...),
		cfg: cfg,
	}, nil
}

func MustNew(cfg Config) *Client {
	client, err := NewClient(cfg)
	if err != nil {
		panic(err)
	}
	return client
}

func (c *Client) Complete(ctx context.Context, req Request) (Response, error) {
	if len(req.Messages) == 0 {
		return Response{}, errors.New("completion request has no messages")
	}

	messages := make([]openaisdk.ChatCompletionMessageParamUnion, 0, len(req.Messages))
	for _, m := range req.Messages {
		switch m.Role {
		case RoleSystem:
			messages = append(messages, openaisdk.SystemMessage(m.Content))
		case RoleUser:
			messages = append(messages, openaisdk.UserMessage(m.Content))
		case RoleAssistant:
			messages = append(messages, openaisdk.AssistantMessage(m.Content))
		default:
			return Response{}, fmt.Errorf("unsupported message role %q", m.Role)
		}
	}

	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = strings.TrimSpace(c.cfg.Model)
	}
	temperature := c.cfg.Temperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}
	maxTokens := c.cfg.MaxCompletionToken
	if req.MaxTokens != nil {
		maxTokens = *req.MaxTokens
	}

	resp, err := c.api.Chat.Completions.New(ctx, openaisdk.ChatCompletionNewParams{
		Model:               model,
		Messages:            messages,
		Temperature:         openaisdk.Float(float64(temperature)),
		MaxCompletionTokens: openaisdk.Int(int64(maxTokens)),
	})
	if err != nil {
		return Response{}, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Response{}, errors.New("chat completion returned no choices")
	}

	usage := Usage{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}
	log.Debug().
		Str("model", model).
		Int64("prompt_tokens", usage.PromptTokens).
		Int64("completion_tokens", usage.CompletionTokens).
		Msg("completion call finished")

	return Response{
		Content: resp.Choices[0].Message.Content,
		Usage:   usage,
	}, nil
}
