package tests

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const (
	integrationUnexpectedSuccessMessageConstant = "command succeeded unexpectedly"
	integrationUnexpectedSuccessFormatConstant  = "%s\n%s"
	integrationCommandFailureFormatConstant     = "command failed: %v\n%s"
	environmentAssignmentSeparatorConstant      = "="
	goRunSubcommandConstant                     = "run"
	modulePathArgumentConstant                  = "."
)

func runIntegrationCommand(testInstance *testing.T, environmentOverrides map[string]string, timeout time.Duration, arguments []string) string {
	testInstance.Helper()
	outputText, commandError := executeIntegrationCommand(testInstance, environmentOverrides, timeout, arguments)
	requireNoError(testInstance, commandError, outputText)
	return outputText
}

func runFailingIntegrationCommand(testInstance *testing.T, environmentOverrides map[string]string, timeout time.Duration, arguments []string) (string, error) {
	testInstance.Helper()
	outputText, commandError := executeIntegrationCommand(testInstance, environmentOverrides, timeout, arguments)
	if commandError == nil {
		testInstance.Fatalf(integrationUnexpectedSuccessFormatConstant, integrationUnexpectedSuccessMessageConstant, outputText)
	}
	return outputText, commandError
}

func executeIntegrationCommand(testInstance *testing.T, environmentOverrides map[string]string, timeout time.Duration, arguments []string) (string, error) {
	testInstance.Helper()
	executionContext, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	goArguments := append([]string{goRunSubcommandConstant, modulePathArgumentConstant}, arguments...)
	command := exec.CommandContext(executionContext, "go", goArguments...)
	command.Dir = repositoryRoot(testInstance)
	command.Env = buildCommandEnvironment(environmentOverrides)

	outputBytes, runError := command.CombinedOutput()
	return string(outputBytes), runError
}

func buildCommandEnvironment(environmentOverrides map[string]string) []string {
	environmentValues := make(map[string]string)
	for _, assignment := range os.Environ() {
		separatorIndex := strings.Index(assignment, environmentAssignmentSeparatorConstant)
		if separatorIndex <= 0 {
			continue
		}
		environmentValues[assignment[:separatorIndex]] = assignment[separatorIndex+len(environmentAssignmentSeparatorConstant):]
	}

	for overrideName, overrideValue := range environmentOverrides {
		environmentValues[overrideName] = overrideValue
	}

	assignments := make([]string, 0, len(environmentValues))
	for name, value := range environmentValues {
		assignments = append(assignments, name+environmentAssignmentSeparatorConstant+value)
	}
	return assignments
}

func repositoryRoot(testInstance *testing.T) string {
	testInstance.Helper()

	workingDirectory, workingDirectoryError := os.Getwd()
	require.NoError(testInstance, workingDirectoryError)
	return filepath.Dir(workingDirectory)
}

func requireNoError(testInstance *testing.T, commandError error, outputText string) {
	testInstance.Helper()
	if commandError != nil {
		testInstance.Fatalf(integrationCommandFailureFormatConstant, commandError, outputText)
	}
}
