package execshell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
)

const environmentVariableTemplateConstant = "%s=%s"

// OSCommandRunner executes shell commands on the host operating system.
type OSCommandRunner struct{}

// NewOSCommandRunner constructs an operating system backed command runner.
func NewOSCommandRunner() *OSCommandRunner {
	return &OSCommandRunner{}
}

// Run executes the shell command and captures its observable results.
func (runner *OSCommandRunner) Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	executable := exec.CommandContext(executionContext, command.ProgramName(), command.ProgramArguments()...)
	executable.Dir = command.Details.WorkingDirectory
	executable.Env = mergeEnvironment(command.Details.EnvironmentVariables)
	if len(command.Details.StandardInput) > 0 {
		executable.Stdin = bytes.NewReader(command.Details.StandardInput)
	}

	var standardOutput bytes.Buffer
	var standardError bytes.Buffer
	executable.Stdout = &standardOutput
	executable.Stderr = &standardError

	runError := executable.Run()
	result := ExecutionResult{
		StandardOutput: standardOutput.String(),
		StandardError:  standardError.String(),
	}

	if runError != nil {
		var exitError *exec.ExitError
		if errors.As(runError, &exitError) {
			result.ExitCode = exitError.ExitCode()
			return result, nil
		}
		return result, runError
	}

	result.ExitCode = 0
	return result, nil
}

func mergeEnvironment(overrides map[string]string) []string {
	merged := os.Environ()
	if len(overrides) == 0 {
		return merged
	}

	overrideKeys := make([]string, 0, len(overrides))
	for key := range overrides {
		overrideKeys = append(overrideKeys, key)
	}
	sort.Strings(overrideKeys)

	for _, key := range overrideKeys {
		merged = append(merged, fmt.Sprintf(environmentVariableTemplateConstant, key, overrides[key]))
	}
	return merged
}
