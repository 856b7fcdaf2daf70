// Package anthropic implements llm.Generator on top of the Anthropic Messages API.
package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/food-assistant/pkg/llm"
)

const (
	DefaultModel   = "claude-sonnet-4-20250514"
	DefaultBaseURL = "https://api.anthropic.com"
	DefaultTimeout = 2 * time.Minute
	apiVersion     = "2023-06-01"
	maxTokens      = 4096
)

var ErrAPIKeyMustBeSet = errors.New("anthropic api key must be set")

// Config configures a Client. Timeout bounds one call to the Messages API, DefaultTimeout when zero. It is
// ignored when HTTPClient is set.
type Config struct {
	APIKey     string
	Model      string
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client is a llm.Generator backed by a Claude model.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrAPIKeyMustBeSet
	}
	client := &Client{
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		baseURL:    cfg.BaseURL,
		httpClient: cfg.HTTPClient,
	}
	if client.model == "" {
		client.model = DefaultModel
	}
	if client.baseURL == "" {
		client.baseURL = DefaultBaseURL
	}
	if client.httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		client.httpClient = &http.Client{Timeout: timeout}
	}

	return client, nil
}

type message struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

type toolDef struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	InputSchema map[string]any `json:"input_schema"`
}

type apiRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []message `json:"messages"`
	Tools     []toolDef `json:"tools,omitempty"`
}

type contentBlock struct {
	Type      string          `json:"type"`
	Text      string          `json:"text,omitempty"`
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name,omitempty"`
	Input     json.RawMessage `json:"input,omitempty"`
	ToolUseID string          `json:"tool_use_id,omitempty"`
	Content   string          `json:"content,omitempty"`
	IsError   bool            `json:"is_error,omitempty"`
}

type apiResponse struct {
	ID         string         `json:"id"`
	Content    []contentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
}

type apiError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) Generate(ctx context.Context, req llm.Request) (llm.Response, error) {
	body, err := json.Marshal(c.buildRequest(req))
	if err != nil {
		return llm.Response{}, errors.Wrap(err, "unable to marshal request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return llm.Response{}, errors.Wrap(err, "unable to create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", apiVersion)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return llm.Response{}, errors.Wrap(err, "request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return llm.Response{}, errors.Wrap(err, "unable to read response")
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Message != "" {
			return llm.Response{}, errors.Errorf("anthropic error (status %d): %s: %s", resp.StatusCode, apiErr.Error.Type, apiErr.Error.Message)
		}

		return llm.Response{}, errors.Errorf("anthropic error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var apiResp apiResponse
	err = json.Unmarshal(respBody, &apiResp)
	if err != nil {
		return llm.Response{}, errors.Wrap(err, "unable to parse response")
	}

	return parseResponse(apiResp)
}

func (c *Client) buildRequest(req llm.Request) apiRequest {
	out := apiRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		System:    req.Instruction,
	}

	for _, spec := range req.Tools {
		out.Tools = append(out.Tools, toolDef{
			Name:        spec.Name,
			Description: spec.Description,
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					spec.Param: map[string]any{"type": "string", "description": spec.ParamDescription},
				},
				"required": []string{spec.Param},
			},
		})
	}

	for _, msg := range req.Messages {
		role := "user"
		if msg.Role == llm.RoleModel {
			role = "assistant"
		}

		var blocks []contentBlock
		if msg.Text != "" {
			blocks = append(blocks, contentBlock{Type: "text", Text: msg.Text})
		}
		for _, call := range msg.ToolCalls {
			input := []byte("{}")
			if len(call.Args) > 0 {
				encoded, err := json.Marshal(call.Args)
				if err == nil {
					input = encoded
				}
			}
			blocks = append(blocks, contentBlock{Type: "tool_use", ID: call.ID, Name: call.Name, Input: input})
		}
		for _, res := range msg.ToolResults {
			payload, err := json.Marshal(res.Payload)
			if err != nil {
				payload = []byte(`{"status":"error","error_message":"unencodable tool result"}`)
			}
			blocks = append(blocks, contentBlock{
				Type:      "tool_result",
				ToolUseID: res.CallID,
				Content:   string(payload),
				IsError:   res.Payload["status"] == "error",
			})
		}
		if len(blocks) > 0 {
			out.Messages = append(out.Messages, message{Role: role, Content: blocks})
		}
	}

	return out
}

func parseResponse(resp apiResponse) (llm.Response, error) {
	var out llm.Response
	var texts []string
	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			texts = append(texts, block.Text)
		case "tool_use":
			args := map[string]any{}
			if len(block.Input) > 0 {
				err := json.Unmarshal(block.Input, &args)
				if err != nil {
					return llm.Response{}, errors.Wrapf(err, "unable to parse input of %s", block.Name)
				}
			}
			out.ToolCalls = append(out.ToolCalls, llm.ToolCall{ID: block.ID, Name: block.Name, Args: args})
		}
	}
	out.Text = llm.JoinText(texts)

	return out, nil
}

var _ llm.Generator = (*Client)(nil)
