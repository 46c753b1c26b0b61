package taskfile_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tyemirov/taskrun/internal/taskfile"
)

const testTaskfileDocumentConstant = `
config:
  greeting: hello
tasks:
  - task:
      name: build
      pre: [deps]
      contextualized: true
      config:
        flags: "-v"
      steps:
        - command: "go build {{.Config.flags}}"
  - task:
      name: deps
      steps:
        - command: "go mod download"
namespaces:
  - namespace:
      name: docs
      config:
        out_dir: docs/_build
      tasks:
        - task:
            name: render
            steps:
              - command: "make docs"
                dir: docs
                env:
                  OUT: "{{.Config.out_dir}}"
`

func TestParseDecodesDocument(testInstance *testing.T) {
	definition, parseError := taskfile.Parse([]byte(testTaskfileDocumentConstant))
	require.NoError(testInstance, parseError)

	require.Equal(testInstance, map[string]any{"greeting": "hello"}, definition.Configuration)
	require.Len(testInstance, definition.Tasks, 2)

	buildTask := definition.Tasks[0]
	require.Equal(testInstance, "build", buildTask.Name)
	require.Equal(testInstance, []string{"deps"}, buildTask.Prerequisites)
	require.True(testInstance, buildTask.Contextualized)
	require.Equal(testInstance, map[string]any{"flags": "-v"}, buildTask.Configuration)
	require.Len(testInstance, buildTask.Steps, 1)
	require.Equal(testInstance, "go build {{.Config.flags}}", buildTask.Steps[0].Command)

	require.Len(testInstance, definition.Namespaces, 1)
	docsNamespace := definition.Namespaces[0]
	require.Equal(testInstance, "docs", docsNamespace.Name)
	require.Len(testInstance, docsNamespace.Tasks, 1)
	require.Equal(testInstance, "docs", docsNamespace.Tasks[0].Steps[0].WorkingDirectory)
	require.Equal(testInstance, map[string]string{"OUT": "{{.Config.out_dir}}"}, docsNamespace.Tasks[0].Steps[0].Environment)
}

func TestParseValidationFailures(testInstance *testing.T) {
	testCases := []struct {
		name            string
		document        string
		expectedMessage string
	}{
		{
			name:            "empty_document",
			document:        "config: {}\n",
			expectedMessage: "taskfile must define at least one task",
		},
		{
			name:            "task_without_name",
			document:        "tasks:\n  - task:\n      steps:\n        - command: ls\n",
			expectedMessage: "taskfile task missing name",
		},
		{
			name:            "task_without_steps",
			document:        "tasks:\n  - task:\n      name: build\n",
			expectedMessage: `taskfile task "build" must define at least one step`,
		},
		{
			name:            "step_without_command",
			document:        "tasks:\n  - task:\n      name: build\n      steps:\n        - dir: src\n",
			expectedMessage: `taskfile task "build" has a step without a command`,
		},
		{
			name:            "namespace_without_name",
			document:        "namespaces:\n  - namespace:\n      tasks:\n        - task:\n            name: render\n            steps:\n              - command: make\n",
			expectedMessage: "taskfile namespace missing name",
		},
		{
			name:            "invalid_yaml",
			document:        "tasks: [",
			expectedMessage: "failed to parse taskfile",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtestInstance *testing.T) {
			_, parseError := taskfile.Parse([]byte(testCase.document))
			require.Error(subtestInstance, parseError)
			require.Contains(subtestInstance, parseError.Error(), testCase.expectedMessage)
		})
	}
}

func TestLoadReadsDocumentFromDisk(testInstance *testing.T) {
	taskfilePath := filepath.Join(testInstance.TempDir(), "tasks.yaml")
	require.NoError(testInstance, os.WriteFile(taskfilePath, []byte(testTaskfileDocumentConstant), 0o644))

	definition, loadError := taskfile.Load(taskfilePath)
	require.NoError(testInstance, loadError)
	require.Len(testInstance, definition.Tasks, 2)
}

func TestLoadRejectsBlankPath(testInstance *testing.T) {
	_, loadError := taskfile.Load("   ")
	require.EqualError(testInstance, loadError, "taskfile path must be provided")
}

func TestLoadReportsMissingFile(testInstance *testing.T) {
	_, loadError := taskfile.Load(filepath.Join(testInstance.TempDir(), "absent.yaml"))
	require.Error(testInstance, loadError)
	require.Contains(testInstance, loadError.Error(), "failed to load taskfile")
}
