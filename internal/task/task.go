// Package task defines the named unit of work executed by the task engine.
// A task declares its prerequisites by name, optionally requests a
// configuration context, and tracks whether it already ran this session.
package task

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tyemirov/taskrun/internal/taskcfg"
)

const (
	taskNameRequiredMessageConstant = "task name must be provided"
	taskBodyRequiredMessageConstant = "task body must be provided"
	invocationErrorTemplateConstant = "task %q failed"
)

// Arguments carries the keyword arguments shared across a task chain.
type Arguments map[string]any

// Result is the value produced by a task body.
type Result any

// Body is the invocable capability backing a task. The configuration argument
// is nil unless the task is contextualized.
type Body func(executionContext context.Context, configuration *taskcfg.Context, arguments Arguments) (Result, error)

var (
	// ErrTaskNameRequired indicates a task definition without a name.
	ErrTaskNameRequired = errors.New(taskNameRequiredMessageConstant)
	// ErrTaskBodyRequired indicates a task definition without an invocable body.
	ErrTaskBodyRequired = errors.New(taskBodyRequiredMessageConstant)
)

// InvocationError wraps a failure raised by a task body.
type InvocationError struct {
	TaskName string
	Cause    error
}

// Error describes the failed invocation.
func (invocationError InvocationError) Error() string {
	return fmt.Sprintf(invocationErrorTemplateConstant, invocationError.TaskName)
}

// Unwrap exposes the task body failure.
func (invocationError InvocationError) Unwrap() error {
	return invocationError.Cause
}

// Definition describes the declarative properties of a task.
type Definition struct {
	Name           string
	Prerequisites  []string
	Contextualized bool
	Body           Body
}

// Task is a named unit of work with declared prerequisites and session state.
type Task struct {
	name           string
	prerequisites  []string
	contextualized bool
	called         bool
	body           Body
}

// New validates the definition and constructs a Task.
func New(definition Definition) (*Task, error) {
	trimmedName := strings.TrimSpace(definition.Name)
	if len(trimmedName) == 0 {
		return nil, ErrTaskNameRequired
	}
	if definition.Body == nil {
		return nil, ErrTaskBodyRequired
	}

	prerequisites := make([]string, 0, len(definition.Prerequisites))
	for prerequisiteIndex := range definition.Prerequisites {
		trimmedPrerequisite := strings.TrimSpace(definition.Prerequisites[prerequisiteIndex])
		if len(trimmedPrerequisite) == 0 {
			continue
		}
		prerequisites = append(prerequisites, trimmedPrerequisite)
	}

	return &Task{
		name:           trimmedName,
		prerequisites:  prerequisites,
		contextualized: definition.Contextualized,
		body:           definition.Body,
	}, nil
}

// Name returns the task name.
func (executableTask *Task) Name() string {
	return executableTask.name
}

// Prerequisites returns the declared prerequisite names in declaration order.
func (executableTask *Task) Prerequisites() []string {
	copied := make([]string, len(executableTask.prerequisites))
	copy(copied, executableTask.prerequisites)
	return copied
}

// Contextualized reports whether the task requires a configuration context.
func (executableTask *Task) Contextualized() bool {
	return executableTask.contextualized
}

// Called reports whether the task already ran this session. The flag is
// monotonic: it flips to true on the first successful invocation and is never
// reset within a session.
func (executableTask *Task) Called() bool {
	return executableTask.called
}

// Invoke runs the task body and marks the task called on success. Body
// failures are wrapped in InvocationError and leave the called flag untouched.
func (executableTask *Task) Invoke(executionContext context.Context, configuration *taskcfg.Context, arguments Arguments) (Result, error) {
	result, bodyError := executableTask.body(executionContext, configuration, arguments)
	if bodyError != nil {
		return nil, InvocationError{TaskName: executableTask.name, Cause: bodyError}
	}
	executableTask.called = true
	return result, nil
}
