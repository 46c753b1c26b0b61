package cli_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tyemirov/taskrun/cmd/cli"
)

const (
	testConfigurationFileNameConstant   = "config.yaml"
	testConfigurationSearchPathEnvName  = "TASKRUN_CONFIG_SEARCH_PATH"
	testConfigurationDocumentConstant   = "common:\n  log_level: debug\n  log_format: structured\ntasks:\n  taskfile: pipeline.yaml\n"
	testEnvironmentLogLevelVariableName = "TASKRUN_COMMON_LOG_LEVEL"
)

func TestEmbeddedDefaultConfigurationContent(t *testing.T) {
	configurationContent, configurationType := cli.EmbeddedDefaultConfiguration()
	require.NotEmpty(t, configurationContent)
	require.Equal(t, "yaml", configurationType)
	require.Contains(t, string(configurationContent), "log_level")
	require.Contains(t, string(configurationContent), "taskfile")
}

func TestInitializeForCommandUsesConfigurationFromSearchPath(t *testing.T) {
	configurationDirectory := t.TempDir()
	configurationFilePath := filepath.Join(configurationDirectory, testConfigurationFileNameConstant)
	require.NoError(t, os.WriteFile(configurationFilePath, []byte(testConfigurationDocumentConstant), 0o644))

	t.Setenv(testConfigurationSearchPathEnvName, configurationDirectory)

	application := cli.NewApplication()
	require.NoError(t, application.InitializeForCommand("run"))
	require.Equal(t, configurationFilePath, application.ConfigFileUsed())
}

func TestInitializeForCommandToleratesMissingConfiguration(t *testing.T) {
	t.Setenv(testConfigurationSearchPathEnvName, t.TempDir())

	application := cli.NewApplication()
	require.NoError(t, application.InitializeForCommand("run"))
	require.Empty(t, application.ConfigFileUsed())
}

func TestInitializeForCommandAppliesEnvironmentOverrides(t *testing.T) {
	t.Setenv(testConfigurationSearchPathEnvName, t.TempDir())
	t.Setenv(testEnvironmentLogLevelVariableName, "warn")

	application := cli.NewApplication()
	require.NoError(t, application.InitializeForCommand("run"))
}
