// Package gemini implements llm.Generator on top of the Gemini API.
package gemini

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"google.golang.org/genai"

	"github.com/askiada/food-assistant/pkg/llm"
)

const (
	DefaultModel   = "gemini-2.0-flash"
	DefaultTimeout = 2 * time.Minute
)

var (
	ErrAPIKeyMustBeSet = errors.New("gemini api key must be set")
	ErrNoCandidates    = errors.New("gemini returned no candidates")
)

// ContentGenerator is the part of genai.Models used by the client.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Config configures a Client. Timeout bounds one generation call, DefaultTimeout when zero.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// Client is a llm.Generator backed by a Gemini model.
type Client struct {
	models ContentGenerator
	model  string
}

// New creates a client for the Gemini developer API.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrAPIKeyMustBeSet
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL, Timeout: &timeout},
	})
	if err != nil {
		return nil, errors.Wrap(err, "unable to create gemini client")
	}

	return NewWithModels(client.Models, cfg.Model), nil
}

// NewWithModels creates a client using an already configured content generator.
func NewWithModels(models ContentGenerator, model string) *Client {
	if model == "" {
		model = DefaultModel
	}

	return &Client{models: models, model: model}
}

func (c *Client) Generate(ctx context.Context, req llm.Request) (llm.Response, error) {
	contents, cfg := buildRequest(req)

	resp, err := c.models.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		return llm.Response{}, errors.Wrapf(err, "unable to generate content with %s", c.model)
	}

	return parseResponse(resp)
}

func buildRequest(req llm.Request) ([]*genai.Content, *genai.GenerateContentConfig) {
	cfg := &genai.GenerateContentConfig{}
	if req.Instruction != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.Instruction}}}
	}
	if len(req.Tools) > 0 {
		decls := make([]*genai.FunctionDeclaration, len(req.Tools))
		for i, spec := range req.Tools {
			decls[i] = declaration(spec)
		}
		cfg.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	}

	contents := make([]*genai.Content, 0, len(req.Messages))
	for _, msg := range req.Messages {
		content := &genai.Content{Role: string(msg.Role)}
		if msg.Text != "" {
			content.Parts = append(content.Parts, &genai.Part{Text: msg.Text})
		}
		for _, call := range msg.ToolCalls {
			content.Parts = append(content.Parts, &genai.Part{FunctionCall: &genai.FunctionCall{
				ID:   call.ID,
				Name: call.Name,
				Args: call.Args,
			}})
		}
		for _, res := range msg.ToolResults {
			content.Parts = append(content.Parts, &genai.Part{FunctionResponse: &genai.FunctionResponse{
				ID:       res.CallID,
				Name:     res.Name,
				Response: res.Payload,
			}})
		}
		if len(content.Parts) > 0 {
			contents = append(contents, content)
		}
	}

	return contents, cfg
}

func declaration(spec llm.ToolSpec) *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        spec.Name,
		Description: spec.Description,
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				spec.Param: {Type: genai.TypeString, Description: spec.ParamDescription},
			},
			Required: []string{spec.Param},
		},
	}
}

func parseResponse(resp *genai.GenerateContentResponse) (llm.Response, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return llm.Response{}, ErrNoCandidates
	}

	var out llm.Response
	var texts []string
	for _, part := range resp.Candidates[0].Content.Parts {
		switch {
		case part == nil || part.Thought:
			continue
		case part.FunctionCall != nil:
			out.ToolCalls = append(out.ToolCalls, llm.ToolCall{
				ID:   part.FunctionCall.ID,
				Name: part.FunctionCall.Name,
				Args: part.FunctionCall.Args,
			})
		default:
			texts = append(texts, part.Text)
		}
	}
	out.Text = llm.JoinText(texts)

	return out, nil
}

var _ llm.Generator = (*Client)(nil)
