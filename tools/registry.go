// Package tools implements the registry of side-effecting tools offered to
// the model. The registry is built explicitly at construction; dispatch
// never resolves names against ambient state.
package tools

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"

	"github.com/kmalhotra18/Career-Conversations/notify"
	"github.com/kmalhotra18/Career-Conversations/types"
	"github.com/kmalhotra18/Career-Conversations/utils"
)

// emptyResult is what a failed or unknown dispatch reports back to the
// model. Tool trouble must never abort the conversation.
const emptyResult = "{}"

var validate = validator.New()

// Handler executes a tool against its raw JSON arguments.
type Handler func(ctx context.Context, args json.RawMessage) (any, error)

// Definition binds a tool name and its parameter schema to a handler.
type Definition struct {
	Name        string
	Description string
	Parameters  *jsonschema.Schema
	Handler     Handler
}

// Registry holds the fixed set of tools for a persona.
type Registry struct {
	defs     []Definition
	byName   map[string]Definition
	notifier notify.Notifier
	logger   utils.Logger
}

// NewRegistry builds the registry with the two assistant tools registered.
func NewRegistry(notifier notify.Notifier, logger utils.Logger) *Registry {
	r := &Registry{
		byName:   make(map[string]Definition),
		notifier: notifier,
		logger:   logger,
	}
	r.register(Definition{
		Name:        "record_user_details",
		Description: "Use this tool to record that a user is interested in being in touch and provided an email address",
		Parameters:  schemaFor(&UserDetailsArgs{}),
		Handler:     r.recordUserDetails,
	})
	r.register(Definition{
		Name:        "record_unknown_question",
		Description: "Always use this tool to record any question that couldn't be answered as you didn't know the answer",
		Parameters:  schemaFor(&UnknownQuestionArgs{}),
		Handler:     r.recordUnknownQuestion,
	})
	return r
}

func (r *Registry) register(def Definition) {
	r.defs = append(r.defs, def)
	r.byName[def.Name] = def
}

// schemaFor reflects a parameter schema from a typed arguments struct.
func schemaFor(args any) *jsonschema.Schema {
	reflector := &jsonschema.Reflector{
		DoNotReference:            true,
		ExpandedStruct:            true,
		AllowAdditionalProperties: false,
	}
	return reflector.Reflect(args)
}

// Specs returns the tool schema set offered to the model with a request.
func (r *Registry) Specs() []types.Tool {
	specs := make([]types.Tool, 0, len(r.defs))
	for _, def := range r.defs {
		specs = append(specs, types.Tool{
			Type: "function",
			Function: types.Function{
				Name:        def.Name,
				Description: def.Description,
				Parameters:  def.Parameters,
			},
		})
	}
	return specs
}

// Dispatch runs one tool call and packages its result. Unknown names,
// malformed arguments and handler failures all degrade to an empty result
// rather than an error.
func (r *Registry) Dispatch(ctx context.Context, call types.ToolCall) types.ToolResult {
	result := types.ToolResult{ToolCallID: call.ID, Content: emptyResult}

	def, ok := r.byName[call.Function.Name]
	if !ok {
		r.logger.Warn("Unknown tool requested", "tool", call.Function.Name)
		return result
	}
	r.logger.Info("Tool called", "tool", def.Name)

	out, err := def.Handler(ctx, call.Function.Arguments)
	if err != nil {
		r.logger.Warn("Tool handler failed", "tool", def.Name, "error", err)
		return result
	}

	content, err := json.Marshal(out)
	if err != nil {
		r.logger.Warn("Tool result not serializable", "tool", def.Name, "error", err)
		return result
	}

	result.Content = string(content)
	return result
}

// DispatchAll runs the requested calls in order and returns one result per
// call.
func (r *Registry) DispatchAll(ctx context.Context, calls []types.ToolCall) []types.ToolResult {
	results := make([]types.ToolResult, 0, len(calls))
	for _, call := range calls {
		results = append(results, r.Dispatch(ctx, call))
	}
	return results
}

// push sends a notification without blocking the conversation. Failures are
// logged and otherwise invisible above this boundary.
func (r *Registry) push(message string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := r.notifier.Send(ctx, message); err != nil {
			r.logger.Warn("Notification not delivered", "error", err)
		}
	}()
}
