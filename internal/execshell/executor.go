// Package execshell runs the shell programs backing taskfile steps and logs
// their lifecycle events.
package execshell

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const (
	shellProgramNameStringConstant            = "sh"
	shellProgramCommandFlagConstant           = "-c"
	loggerNotConfiguredMessageConstant        = "shell executor logger not configured"
	commandRunnerNotConfiguredMessageConstant = "shell executor command runner not configured"
	commandScriptMissingMessageConstant       = "shell command script not provided"
	commandStartMessageConstant               = "command execution starting"
	commandSuccessMessageConstant             = "command execution completed"
	commandFailureMessageConstant             = "command returned non-zero status"
	commandRunnerErrorMessageConstant         = "command execution error"
	commandScriptFieldNameConstant            = "script"
	workingDirectoryFieldNameConstant         = "working_directory"
	exitCodeFieldNameConstant                 = "exit_code"
	standardErrorFieldNameConstant            = "stderr"
)

// CommandDetails describes command invocation properties.
type CommandDetails struct {
	Script               string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
	StandardInput        []byte
}

// ShellCommand represents a fully qualified shell invocation.
type ShellCommand struct {
	Details CommandDetails
}

// ProgramArguments returns the argument vector passed to the shell program.
func (command ShellCommand) ProgramArguments() []string {
	return []string{shellProgramCommandFlagConstant, command.Details.Script}
}

// ProgramName returns the shell program executed for every step.
func (command ShellCommand) ProgramName() string {
	return shellProgramNameStringConstant
}

// ExecutionResult captures observable command results.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// CommandRunner executes shell commands.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

var (
	// ErrLoggerNotConfigured indicates the logger dependency was missing.
	ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)
	// ErrCommandRunnerNotConfigured indicates the command runner dependency was missing.
	ErrCommandRunnerNotConfigured = errors.New(commandRunnerNotConfiguredMessageConstant)
	// ErrCommandScriptMissing indicates the command script was not provided.
	ErrCommandScriptMissing = errors.New(commandScriptMissingMessageConstant)
)

// CommandFailedError provides details about commands exiting with a non-zero code.
type CommandFailedError struct {
	Command ShellCommand
	Result  ExecutionResult
}

const commandFailureErrorMessageTemplateConstant = "command %q exited with code %d"

// Error describes the failure in a readable format.
func (commandError CommandFailedError) Error() string {
	baseMessage := fmt.Sprintf(
		commandFailureErrorMessageTemplateConstant,
		commandError.Command.Details.Script,
		commandError.Result.ExitCode,
	)

	detail := strings.TrimSpace(commandError.Result.StandardError)
	if len(detail) == 0 {
		detail = strings.TrimSpace(commandError.Result.StandardOutput)
	}
	if len(detail) > 0 {
		lines := strings.Split(detail, "\n")
		maxLines := 3
		if len(lines) > maxLines {
			lines = lines[:maxLines]
		}
		normalized := make([]string, 0, len(lines))
		for _, line := range lines {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" {
				continue
			}
			normalized = append(normalized, trimmed)
		}
		if len(normalized) > 0 {
			baseMessage = fmt.Sprintf("%s: %s", baseMessage, strings.Join(normalized, " | "))
		}
	}

	return baseMessage
}

// CommandExecutionError wraps unexpected execution failures from the runner.
type CommandExecutionError struct {
	Command ShellCommand
	Cause   error
}

const commandExecutionErrorMessageTemplateConstant = "command %q execution failed"

// Error describes the underlying runner failure.
func (executionError CommandExecutionError) Error() string {
	return fmt.Sprintf(commandExecutionErrorMessageTemplateConstant, executionError.Command.Details.Script)
}

// Unwrap exposes the underlying error.
func (executionError CommandExecutionError) Unwrap() error {
	return executionError.Cause
}

// ShellExecutor orchestrates running shell commands with logging.
type ShellExecutor struct {
	commandRunner CommandRunner
	logger        *zap.Logger
}

// NewShellExecutor builds an executor for the provided runner and logger.
func NewShellExecutor(logger *zap.Logger, commandRunner CommandRunner) (*ShellExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if commandRunner == nil {
		return nil, ErrCommandRunnerNotConfigured
	}
	return &ShellExecutor{commandRunner: commandRunner, logger: logger}, nil
}

// Execute runs the provided shell command and logs lifecycle events.
func (executor *ShellExecutor) Execute(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	if len(strings.TrimSpace(command.Details.Script)) == 0 {
		return ExecutionResult{}, ErrCommandScriptMissing
	}

	executor.logger.Debug(commandStartMessageConstant,
		zap.String(commandScriptFieldNameConstant, command.Details.Script),
		zap.String(workingDirectoryFieldNameConstant, command.Details.WorkingDirectory),
	)

	executionResult, runnerError := executor.commandRunner.Run(executionContext, command)
	if runnerError != nil {
		executor.logger.Error(commandRunnerErrorMessageConstant,
			zap.String(commandScriptFieldNameConstant, command.Details.Script),
			zap.Error(runnerError),
		)
		return ExecutionResult{}, CommandExecutionError{Command: command, Cause: runnerError}
	}

	if executionResult.ExitCode != 0 {
		executor.logger.Warn(commandFailureMessageConstant,
			zap.String(commandScriptFieldNameConstant, command.Details.Script),
			zap.Int(exitCodeFieldNameConstant, executionResult.ExitCode),
			zap.String(standardErrorFieldNameConstant, executionResult.StandardError),
		)
		return ExecutionResult{}, CommandFailedError{Command: command, Result: executionResult}
	}

	executor.logger.Debug(commandSuccessMessageConstant,
		zap.String(commandScriptFieldNameConstant, command.Details.Script),
		zap.Int(exitCodeFieldNameConstant, executionResult.ExitCode),
	)
	return executionResult, nil
}
