package tools

import (
	"context"
	"encoding/json"
	"fmt"
)

// Acknowledgement is the trivial value every tool returns to the model,
// regardless of whether the underlying notification succeeded.
type Acknowledgement struct {
	Recorded string `json:"recorded"`
}

func acknowledged() Acknowledgement {
	return Acknowledgement{Recorded: "ok"}
}

// UserDetailsArgs are the arguments of record_user_details.
type UserDetailsArgs struct {
	Email string `json:"email" validate:"required,email" jsonschema:"description=The email address of this user"`
	Name  string `json:"name,omitempty" jsonschema:"description=The user's name if they provided it"`
	Notes string `json:"notes,omitempty" jsonschema:"description=Any additional information about the conversation that's worth recording to give context"`
}

// UnknownQuestionArgs are the arguments of record_unknown_question.
type UnknownQuestionArgs struct {
	Question string `json:"question" validate:"required" jsonschema:"description=The question that couldn't be answered"`
}

func (r *Registry) recordUserDetails(_ context.Context, raw json.RawMessage) (any, error) {
	var args UserDetailsArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("decode arguments: %w", err)
	}
	if err := validate.Struct(&args); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	if args.Name == "" {
		args.Name = "Name not provided"
	}
	if args.Notes == "" {
		args.Notes = "not provided"
	}

	r.push(fmt.Sprintf("Recording %s with email %s and notes %s", args.Name, args.Email, args.Notes))
	return acknowledged(), nil
}

func (r *Registry) recordUnknownQuestion(_ context.Context, raw json.RawMessage) (any, error) {
	var args UnknownQuestionArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("decode arguments: %w", err)
	}
	if err := validate.Struct(&args); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}

	r.push(fmt.Sprintf("Recording %s", args.Question))
	return acknowledged(), nil
}
