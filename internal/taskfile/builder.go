package taskfile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"text/template"

	"github.com/tyemirov/taskrun/internal/collection"
	"github.com/tyemirov/taskrun/internal/execshell"
	"github.com/tyemirov/taskrun/internal/task"
	"github.com/tyemirov/taskrun/internal/taskcfg"
)

const (
	shellRunnerRequiredMessageConstant      = "taskfile builder requires a shell runner"
	stepTemplateParseErrorTemplateConstant  = "task %q step %d: invalid command template: %w"
	stepTemplateRenderErrorTemplateConstant = "task %q step %d: rendering command failed: %w"
	stepTemplateNameTemplateConstant        = "%s-step-%d"
	templateMissingKeyOptionConstant        = "missingkey=error"
)

// ShellRunner executes the rendered shell command for a step.
type ShellRunner interface {
	Execute(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error)
}

// ErrShellRunnerRequired indicates the builder was invoked without a shell runner.
var ErrShellRunnerRequired = errors.New(shellRunnerRequiredMessageConstant)

type stepTemplateData struct {
	Args   map[string]any
	Config map[string]any
}

// Build constructs the task collection declared by the definition. Task bodies
// render each step command against the invocation arguments and configuration
// context, then run it through the shell runner. A task's result is the
// standard output of its final step.
func Build(definition Definition, shellRunner ShellRunner) (*collection.Collection, error) {
	if shellRunner == nil {
		return nil, ErrShellRunnerRequired
	}

	registry := collection.New()
	if len(definition.Configuration) > 0 {
		registry.SetConfiguration(definition.Configuration)
	}

	if populateError := populateCollection(registry, definition.Tasks, definition.Namespaces, shellRunner); populateError != nil {
		return nil, populateError
	}
	return registry, nil
}

func populateCollection(registry *collection.Collection, tasks []TaskDeclaration, namespaces []NamespaceDeclaration, shellRunner ShellRunner) error {
	for declarationIndex := range tasks {
		declaration := tasks[declarationIndex]

		constructedTask, constructionError := task.New(task.Definition{
			Name:           declaration.Name,
			Prerequisites:  declaration.Prerequisites,
			Contextualized: declaration.Contextualized,
			Body:           newStepSequenceBody(declaration, shellRunner),
		})
		if constructionError != nil {
			return constructionError
		}

		if additionError := registry.AddWithConfiguration(constructedTask, declaration.Configuration); additionError != nil {
			return additionError
		}
	}

	for declarationIndex := range namespaces {
		declaration := namespaces[declarationIndex]

		namespace, namespaceError := collection.NewNamespace(declaration.Name)
		if namespaceError != nil {
			return namespaceError
		}
		if len(declaration.Configuration) > 0 {
			namespace.SetConfiguration(declaration.Configuration)
		}
		if populateError := populateCollection(namespace, declaration.Tasks, declaration.Namespaces, shellRunner); populateError != nil {
			return populateError
		}
		if additionError := registry.AddNamespace(namespace); additionError != nil {
			return additionError
		}
	}

	return nil
}

// newStepSequenceBody builds the invocable capability running the declared steps in order.
func newStepSequenceBody(declaration TaskDeclaration, shellRunner ShellRunner) task.Body {
	return func(executionContext context.Context, configuration *taskcfg.Context, arguments task.Arguments) (task.Result, error) {
		templateData := stepTemplateData{
			Args:   map[string]any(arguments),
			Config: map[string]any{},
		}
		if configuration != nil {
			templateData.Config = configuration.Snapshot()
		}

		var lastResult execshell.ExecutionResult
		for stepIndex := range declaration.Steps {
			step := declaration.Steps[stepIndex]

			renderedCommand, renderError := renderStepCommand(declaration.Name, stepIndex, step.Command, templateData)
			if renderError != nil {
				return nil, renderError
			}

			stepResult, stepError := shellRunner.Execute(executionContext, execshell.ShellCommand{
				Details: execshell.CommandDetails{
					Script:               renderedCommand,
					WorkingDirectory:     step.WorkingDirectory,
					EnvironmentVariables: step.Environment,
				},
			})
			if stepError != nil {
				return nil, stepError
			}
			lastResult = stepResult
		}

		return lastResult.StandardOutput, nil
	}
}

func renderStepCommand(taskName string, stepIndex int, commandTemplate string, templateData stepTemplateData) (string, error) {
	templateName := fmt.Sprintf(stepTemplateNameTemplateConstant, taskName, stepIndex+1)
	parsedTemplate, parseError := template.New(templateName).Option(templateMissingKeyOptionConstant).Parse(commandTemplate)
	if parseError != nil {
		return "", fmt.Errorf(stepTemplateParseErrorTemplateConstant, taskName, stepIndex+1, parseError)
	}

	var renderedCommand bytes.Buffer
	if renderError := parsedTemplate.Execute(&renderedCommand, templateData); renderError != nil {
		return "", fmt.Errorf(stepTemplateRenderErrorTemplateConstant, taskName, stepIndex+1, renderError)
	}
	return renderedCommand.String(), nil
}
