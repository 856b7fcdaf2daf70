package llm

import (
	"context"
	"fmt"
	"strconv"
)

// ToolSpec describes a tool taking a single string parameter.
type ToolSpec struct {
	Name             string
	Description      string
	Param            string
	ParamDescription string
}

// Tool is something a generator may ask a step to run.
//
// Invoke never fails: problems are reported inside the payload so the generator can react to them.
type Tool interface {
	Spec() ToolSpec
	Invoke(ctx context.Context, arg string) map[string]any
}

type funcTool struct {
	spec ToolSpec
	fn   func(ctx context.Context, arg string) map[string]any
}

func (t *funcTool) Spec() ToolSpec {
	return t.spec
}

func (t *funcTool) Invoke(ctx context.Context, arg string) map[string]any {
	return t.fn(ctx, arg)
}

// NewTool creates a Tool from a function.
func NewTool(spec ToolSpec, fn func(ctx context.Context, arg string) map[string]any) Tool {
	return &funcTool{spec: spec, fn: fn}
}

// Argument extracts the single string argument of a call for the given spec.
//
// Generators sometimes send numbers or booleans for string parameters, those are formatted back to text without
// exponents so barcodes survive. When the expected parameter is missing and the call carries exactly one argument,
// that argument is used.
func Argument(spec ToolSpec, call ToolCall) (string, bool) {
	raw, ok := call.Args[spec.Param]
	if !ok && len(call.Args) == 1 {
		for _, v := range call.Args {
			raw, ok = v, true
		}
	}
	if !ok || raw == nil {
		return "", false
	}
	switch v := raw.(type) {
	case string:
		return v, true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	default:
		return fmt.Sprint(v), true
	}
}

// Success builds the payload of a successful tool call.
func Success(key string, value any) map[string]any {
	return map[string]any{"status": "success", key: value}
}

// Failure builds the payload of a failed tool call.
func Failure(message string) map[string]any {
	return map[string]any{"status": "error", "error_message": message}
}
