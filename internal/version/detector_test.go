package version_test

import (
	"context"
	"errors"
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tyemirov/taskrun/internal/execshell"
	"github.com/tyemirov/taskrun/internal/version"
)

type stubBuildInfoProvider struct {
	info      *debug.BuildInfo
	available bool
}

func (provider stubBuildInfoProvider) Read() (*debug.BuildInfo, bool) {
	if !provider.available {
		return nil, false
	}
	return provider.info, true
}

type stubShellRunner struct {
	testInstance *testing.T
	commands     []stubShellCommand
}

type stubShellCommand struct {
	expectedScript string
	output         string
	executionError error
}

func (runner *stubShellRunner) Execute(_ context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
	runner.testInstance.Helper()
	require.Greater(runner.testInstance, len(runner.commands), 0)

	expected := runner.commands[0]
	runner.commands = runner.commands[1:]

	require.Equal(runner.testInstance, expected.expectedScript, command.Details.Script)
	require.Equal(runner.testInstance, "0", command.Details.EnvironmentVariables["GIT_TERMINAL_PROMPT"])
	return execshell.ExecutionResult{StandardOutput: expected.output}, expected.executionError
}

func TestVersionUsesBuildInfoWhenAvailable(t *testing.T) {
	provider := stubBuildInfoProvider{info: &debug.BuildInfo{Main: debug.Module{Version: "v1.2.3"}}, available: true}
	detector, creationError := version.NewDetector(version.Dependencies{BuildInfoProvider: provider, ShellRunner: &stubShellRunner{testInstance: t}})
	require.NoError(t, creationError)

	versionString := detector.Version(context.Background())
	require.Equal(t, "v1.2.3", versionString)
}

func TestVersionFallsBackToExactDescribe(t *testing.T) {
	runner := &stubShellRunner{
		testInstance: t,
		commands: []stubShellCommand{
			{expectedScript: "git describe --tags --exact-match", output: "v0.9.0\n"},
		},
	}
	detector, creationError := version.NewDetector(version.Dependencies{
		BuildInfoProvider: stubBuildInfoProvider{info: &debug.BuildInfo{Main: debug.Module{Version: "devel"}}, available: true},
		ShellRunner:       runner,
	})
	require.NoError(t, creationError)

	versionString := detector.Version(context.Background())
	require.Equal(t, "v0.9.0", versionString)
	require.Len(t, runner.commands, 0)
}

func TestVersionUsesLongDescribeWhenExactMissing(t *testing.T) {
	runner := &stubShellRunner{
		testInstance: t,
		commands: []stubShellCommand{
			{expectedScript: "git describe --tags --exact-match", executionError: errors.New("not tagged")},
			{expectedScript: "git describe --tags --long --dirty", output: "v0.9.0-1-gabcdef\n"},
		},
	}
	detector, creationError := version.NewDetector(version.Dependencies{
		BuildInfoProvider: stubBuildInfoProvider{info: &debug.BuildInfo{Main: debug.Module{Version: "devel"}}, available: true},
		ShellRunner:       runner,
	})
	require.NoError(t, creationError)

	versionString := detector.Version(context.Background())
	require.Equal(t, "v0.9.0-1-gabcdef", versionString)
}

func TestVersionReturnsUnknownWhenAllSourcesFail(t *testing.T) {
	runner := &stubShellRunner{
		testInstance: t,
		commands: []stubShellCommand{
			{expectedScript: "git describe --tags --exact-match", executionError: errors.New("failure")},
			{expectedScript: "git describe --tags --long --dirty", executionError: errors.New("failure")},
		},
	}
	detector, creationError := version.NewDetector(version.Dependencies{
		BuildInfoProvider: stubBuildInfoProvider{info: &debug.BuildInfo{Main: debug.Module{Version: "devel"}}, available: true},
		ShellRunner:       runner,
	})
	require.NoError(t, creationError)

	versionString := detector.Version(context.Background())
	require.Equal(t, "unknown", versionString)
}

var _ version.ShellRunner = (*stubShellRunner)(nil)
