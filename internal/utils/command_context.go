package utils

import (
	"context"
	"strings"
)

const (
	configurationFilePathContextKeyConstant = commandContextKey("configurationFilePath")
	taskfilePathContextKeyConstant          = commandContextKey("taskfilePath")
	executionFlagsContextKeyConstant        = commandContextKey("executionFlags")
)

type commandContextKey string

// ExecutionFlags captures standardized execution modifiers derived from CLI flags.
type ExecutionFlags struct {
	NoDedupe    bool
	NoDedupeSet bool
}

// CommandContextAccessor manages values stored in command execution contexts.
type CommandContextAccessor struct{}

// NewCommandContextAccessor constructs a CommandContextAccessor instance.
func NewCommandContextAccessor() CommandContextAccessor {
	return CommandContextAccessor{}
}

// WithConfigurationFilePath attaches the configuration file path to the provided context.
func (accessor CommandContextAccessor) WithConfigurationFilePath(parentContext context.Context, configurationFilePath string) context.Context {
	if parentContext == nil {
		parentContext = context.Background()
	}
	return context.WithValue(parentContext, configurationFilePathContextKeyConstant, configurationFilePath)
}

// ConfigurationFilePath extracts the configuration file path from the context.
func (accessor CommandContextAccessor) ConfigurationFilePath(executionContext context.Context) (string, bool) {
	if executionContext == nil {
		return "", false
	}
	storedValue, castSucceeded := executionContext.Value(configurationFilePathContextKeyConstant).(string)
	if !castSucceeded || len(strings.TrimSpace(storedValue)) == 0 {
		return "", false
	}
	return storedValue, true
}

// WithTaskfilePath attaches the taskfile path to the provided context when present.
func (accessor CommandContextAccessor) WithTaskfilePath(parentContext context.Context, taskfilePath string) context.Context {
	if parentContext == nil {
		parentContext = context.Background()
	}
	trimmedPath := strings.TrimSpace(taskfilePath)
	if len(trimmedPath) == 0 {
		return parentContext
	}
	return context.WithValue(parentContext, taskfilePathContextKeyConstant, trimmedPath)
}

// TaskfilePath extracts the taskfile path from the context.
func (accessor CommandContextAccessor) TaskfilePath(executionContext context.Context) (string, bool) {
	if executionContext == nil {
		return "", false
	}
	storedValue, castSucceeded := executionContext.Value(taskfilePathContextKeyConstant).(string)
	if !castSucceeded || len(storedValue) == 0 {
		return "", false
	}
	return storedValue, true
}

// WithExecutionFlags attaches execution flags to the provided context.
func (accessor CommandContextAccessor) WithExecutionFlags(parentContext context.Context, flags ExecutionFlags) context.Context {
	if parentContext == nil {
		parentContext = context.Background()
	}
	return context.WithValue(parentContext, executionFlagsContextKeyConstant, flags)
}

// ExecutionFlags extracts execution flags from the context.
func (accessor CommandContextAccessor) ExecutionFlags(executionContext context.Context) (ExecutionFlags, bool) {
	if executionContext == nil {
		return ExecutionFlags{}, false
	}
	storedValue, castSucceeded := executionContext.Value(executionFlagsContextKeyConstant).(ExecutionFlags)
	return storedValue, castSucceeded
}
