package llm

import (
	"context"
	"strings"
)

// Role identifies the author of a message.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// ToolCall is a request from the generator to run one tool.
type ToolCall struct {
	ID   string
	Name string
	Args map[string]any
}

// ToolResult carries the payload computed for a ToolCall back to the generator.
type ToolResult struct {
	CallID  string
	Name    string
	Payload map[string]any
}

// Message is one turn of the exchange.
//
// A user message holds either Text or ToolResults. A model message holds either Text or ToolCalls.
type Message struct {
	Role        Role
	Text        string
	ToolCalls   []ToolCall
	ToolResults []ToolResult
}

// Request is what a step sends to a Generator.
type Request struct {
	Instruction string
	Messages    []Message
	Tools       []ToolSpec
}

// Response is the generator answer. When ToolCalls is not empty, Text is not final.
type Response struct {
	Text      string
	ToolCalls []ToolCall
}

// Final reports whether the response ends the exchange.
func (r Response) Final() bool {
	return len(r.ToolCalls) == 0
}

// Generator is a text-generation capability.
type Generator interface {
	Generate(ctx context.Context, req Request) (Response, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, req Request) (Response, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, req Request) (Response, error) {
	return f(ctx, req)
}

// UserText builds a user message.
func UserText(text string) Message {
	return Message{Role: RoleUser, Text: text}
}

// JoinText concatenates non empty text fragments the way backends return them.
func JoinText(parts []string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			continue
		}
		kept = append(kept, p)
	}

	return strings.Join(kept, "\n")
}
