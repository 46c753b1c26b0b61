package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

const (
	internalTestTaskfileNameConstant = "tasks.yaml"
	internalTestTaskfileContent      = "config:\n" +
		"  color: green\n" +
		"tasks:\n" +
		"  - task:\n" +
		"      name: deps\n" +
		"      steps:\n" +
		"        - command: \"printf deps-done\"\n" +
		"  - task:\n" +
		"      name: build\n" +
		"      pre:\n" +
		"        - deps\n" +
		"      steps:\n" +
		"        - command: \"printf build-done\"\n" +
		"  - task:\n" +
		"      name: greet\n" +
		"      contextualized: true\n" +
		"      steps:\n" +
		"        - command: \"printf '{{.Args.name}}-{{.Config.color}}'\"\n" +
		"namespaces:\n" +
		"  - namespace:\n" +
		"      name: docs\n" +
		"      tasks:\n" +
		"        - task:\n" +
		"            name: generate\n" +
		"            steps:\n" +
		"              - command: \"printf docs-done\"\n"
)

// newTestApplication pins the configuration search path to an empty directory
// so a developer's local config.yaml cannot leak into the test run.
func newTestApplication(testInstance *testing.T) *Application {
	testInstance.Helper()

	testInstance.Setenv(configurationSearchPathEnvironmentVariableConstant, testInstance.TempDir())
	application := NewApplication()
	application.exitFunction = func(int) {}
	return application
}

func executeConfiguredApplication(testInstance *testing.T, application *Application, arguments ...string) (string, string, error) {
	testInstance.Helper()

	standardOutput := &bytes.Buffer{}
	standardError := &bytes.Buffer{}
	application.rootCommand.SetOut(standardOutput)
	application.rootCommand.SetErr(standardError)
	application.rootCommand.SetArgs(arguments)

	executionError := application.rootCommand.Execute()
	return standardOutput.String(), standardError.String(), executionError
}

func executeApplicationCommand(testInstance *testing.T, arguments ...string) (string, string, error) {
	testInstance.Helper()
	return executeConfiguredApplication(testInstance, newTestApplication(testInstance), arguments...)
}

func writeInternalTestTaskfile(testInstance *testing.T) string {
	testInstance.Helper()

	taskfilePath := filepath.Join(testInstance.TempDir(), internalTestTaskfileNameConstant)
	require.NoError(testInstance, os.WriteFile(taskfilePath, []byte(internalTestTaskfileContent), 0o644))
	return taskfilePath
}

func TestRunCommandExecutesTaskChain(t *testing.T) {
	taskfilePath := writeInternalTestTaskfile(t)

	standardOutput, standardError, executionError := executeApplicationCommand(t, "run", "build", "--taskfile", taskfilePath)
	require.NoError(t, executionError)
	require.Equal(t, "build-done\n", standardOutput)
	require.Empty(t, standardError)
}

func TestRunCommandSharesArgumentsAndConfiguration(t *testing.T) {
	taskfilePath := writeInternalTestTaskfile(t)

	standardOutput, _, executionError := executeApplicationCommand(t, "run", "greet", "name=gopher", "--taskfile", taskfilePath)
	require.NoError(t, executionError)
	require.Equal(t, "gopher-green\n", standardOutput)
}

func TestRunCommandPrintsSummaryForMultipleTasks(t *testing.T) {
	taskfilePath := writeInternalTestTaskfile(t)

	standardOutput, standardError, executionError := executeApplicationCommand(t, "run", "deps", "build", "--taskfile", taskfilePath)
	require.NoError(t, executionError)
	require.Equal(t, "deps-done\nbuild-done\n", standardOutput)
	require.Contains(t, standardError, "Summary:")
}

func TestRunCommandNoDedupeReexecutesCalledTasks(t *testing.T) {
	taskfilePath := writeInternalTestTaskfile(t)

	standardOutput, _, executionError := executeApplicationCommand(t, "run", "deps", "deps", "--no-dedupe", "--taskfile", taskfilePath)
	require.NoError(t, executionError)
	require.Equal(t, "deps-done\ndeps-done\n", standardOutput)

	_, _, dedupedError := executeApplicationCommand(t, "run", "deps", "deps", "--taskfile", taskfilePath)
	require.Error(t, dedupedError)
	require.Contains(t, dedupedError.Error(), "no result recorded")
}

func TestRunCommandUsesTaskfileFromConfiguration(t *testing.T) {
	taskfilePath := writeInternalTestTaskfile(t)

	configurationDirectory := t.TempDir()
	configurationDocument := "tasks:\n  taskfile: \"" + taskfilePath + "\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(configurationDirectory, configurationFileNameConstant), []byte(configurationDocument), 0o644))
	t.Setenv(configurationSearchPathEnvironmentVariableConstant, configurationDirectory)

	application := NewApplication()
	application.exitFunction = func(int) {}

	standardOutput, _, executionError := executeConfiguredApplication(t, application, "run", "build")
	require.NoError(t, executionError)
	require.Equal(t, "build-done\n", standardOutput)
}

func TestRunCommandReportsUnknownTask(t *testing.T) {
	taskfilePath := writeInternalTestTaskfile(t)

	_, _, executionError := executeApplicationCommand(t, "run", "missing", "--taskfile", taskfilePath)
	require.Error(t, executionError)
	require.Contains(t, executionError.Error(), "missing")
}

func TestRunCommandReportsMissingTaskfile(t *testing.T) {
	absentPath := filepath.Join(t.TempDir(), "absent.yaml")

	_, _, executionError := executeApplicationCommand(t, "run", "build", "--taskfile", absentPath)
	require.Error(t, executionError)
	require.Contains(t, executionError.Error(), absentPath)
}

func TestListCommandPrintsDeclaredTasks(t *testing.T) {
	taskfilePath := writeInternalTestTaskfile(t)

	standardOutput, _, executionError := executeApplicationCommand(t, "list", "--taskfile", taskfilePath)
	require.NoError(t, executionError)
	require.Contains(t, standardOutput, "build  (pre: deps)")
	require.Contains(t, standardOutput, "greet  [contextualized]")
	require.Contains(t, standardOutput, "docs.generate")
}

func TestVersionCommandPrintsResolvedVersion(t *testing.T) {
	application := newTestApplication(t)
	application.versionResolver = func(context.Context) string { return "v9.9.9" }

	standardOutput, _, executionError := executeConfiguredApplication(t, application, "version")
	require.NoError(t, executionError)
	require.Equal(t, "taskrun version: v9.9.9\n", standardOutput)
}

func TestRootCommandInitializationWritesConfiguration(t *testing.T) {
	workingDirectory := t.TempDir()
	previousWorkingDirectory, workingDirectoryError := os.Getwd()
	require.NoError(t, workingDirectoryError)
	require.NoError(t, os.Chdir(workingDirectory))
	t.Cleanup(func() {
		require.NoError(t, os.Chdir(previousWorkingDirectory))
	})

	_, _, executionError := executeApplicationCommand(t, "--init")
	require.NoError(t, executionError)

	writtenContent, readError := os.ReadFile(filepath.Join(workingDirectory, configurationFileNameConstant))
	require.NoError(t, readError)
	embeddedContent, _ := EmbeddedDefaultConfiguration()
	require.Equal(t, embeddedContent, writtenContent)

	_, _, repeatError := executeApplicationCommand(t, "--init")
	require.Error(t, repeatError)
	require.Contains(t, repeatError.Error(), "already exists")

	_, _, forcedError := executeApplicationCommand(t, "--init", "--force")
	require.NoError(t, forcedError)
}

func TestParseTaskArguments(t *testing.T) {
	testCases := []struct {
		name              string
		rawArguments      []string
		expectedTaskNames []string
		expectedArguments map[string]any
		expectError       bool
	}{
		{
			name:              "TaskNamesOnly",
			rawArguments:      []string{"build", "test"},
			expectedTaskNames: []string{"build", "test"},
			expectedArguments: map[string]any{},
		},
		{
			name:              "MixedNamesAndArguments",
			rawArguments:      []string{"build", "flavor=release", "test"},
			expectedTaskNames: []string{"build", "test"},
			expectedArguments: map[string]any{"flavor": "release"},
		},
		{
			name:              "EmptyArgumentValue",
			rawArguments:      []string{"build", "flavor="},
			expectedTaskNames: []string{"build"},
			expectedArguments: map[string]any{"flavor": ""},
		},
		{
			name:         "MissingArgumentKey",
			rawArguments: []string{"build", "=release"},
			expectError:  true,
		},
		{
			name:         "ArgumentsWithoutTaskNames",
			rawArguments: []string{"flavor=release"},
			expectError:  true,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			taskNames, sharedArguments, parseError := parseTaskArguments(testCase.rawArguments)
			if testCase.expectError {
				require.Error(t, parseError)
				return
			}

			require.NoError(t, parseError)
			require.Equal(t, testCase.expectedTaskNames, taskNames)
			require.Equal(t, testCase.expectedArguments, map[string]any(sharedArguments))
		})
	}
}

func TestResolveTaskfilePathPrecedence(t *testing.T) {
	application := newTestApplication(t)

	require.Equal(t, "tasks.yaml", application.resolveTaskfilePath(nil, ""))

	application.configuration.Tasks.TaskfilePath = "configured.yaml"
	require.Equal(t, "configured.yaml", application.resolveTaskfilePath(nil, ""))

	command := &cobra.Command{Use: runCommandUseNameConstant}
	command.SetContext(application.commandContextAccessor.WithTaskfilePath(context.Background(), "contextual.yaml"))
	require.Equal(t, "contextual.yaml", application.resolveTaskfilePath(command, ""))
	require.Equal(t, "flagged.yaml", application.resolveTaskfilePath(command, "flagged.yaml"))
}

func TestCollectExecutionFlagsPrefersChangedFlag(t *testing.T) {
	application := newTestApplication(t)
	application.configuration.Tasks.NoDedupe = true

	flagsWithoutCommand := application.collectExecutionFlags(nil)
	require.True(t, flagsWithoutCommand.NoDedupe)
	require.False(t, flagsWithoutCommand.NoDedupeSet)

	command := &cobra.Command{Use: runCommandUseNameConstant}
	command.Flags().Bool(noDedupeFlagNameConstant, false, noDedupeFlagUsageConstant)
	require.NoError(t, command.Flags().Set(noDedupeFlagNameConstant, "false"))

	collectedFlags := application.collectExecutionFlags(command)
	require.False(t, collectedFlags.NoDedupe)
	require.True(t, collectedFlags.NoDedupeSet)
}
