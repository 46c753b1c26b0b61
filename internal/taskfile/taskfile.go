// Package taskfile loads declarative task definitions from YAML and builds
// the collection consumed by the execution engine.
package taskfile

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	taskfileLoadErrorTemplateConstant           = "failed to load taskfile: %w"
	taskfileParseErrorTemplateConstant          = "failed to parse taskfile: %w"
	taskfilePathRequiredMessageConstant         = "taskfile path must be provided"
	taskfileEmptyMessageConstant                = "taskfile must define at least one task"
	taskfileTaskNameMissingMessageConstant      = "taskfile task missing name"
	taskfileTaskStepsMissingTemplateConstant    = "taskfile task %q must define at least one step"
	taskfileStepCommandMissingTemplateConstant  = "taskfile task %q has a step without a command"
	taskfileNamespaceNameMissingMessageConstant = "taskfile namespace missing name"
)

// Definition is the parsed top level taskfile document.
type Definition struct {
	Configuration map[string]any
	Tasks         []TaskDeclaration
	Namespaces    []NamespaceDeclaration
}

// TaskDeclaration describes a single declared task.
type TaskDeclaration struct {
	Name           string            `yaml:"name"`
	Prerequisites  []string          `yaml:"pre"`
	Contextualized bool              `yaml:"contextualized"`
	Configuration  map[string]any    `yaml:"config"`
	Steps          []StepDeclaration `yaml:"steps"`
}

// StepDeclaration describes one shell step of a task body.
type StepDeclaration struct {
	Command          string            `yaml:"command"`
	WorkingDirectory string            `yaml:"dir"`
	Environment      map[string]string `yaml:"env"`
}

// NamespaceDeclaration describes a nested namespace of tasks.
type NamespaceDeclaration struct {
	Name          string
	Configuration map[string]any
	Tasks         []TaskDeclaration
	Namespaces    []NamespaceDeclaration
}

type definitionFile struct {
	Configuration map[string]any     `yaml:"config"`
	Tasks         []taskWrapper      `yaml:"tasks"`
	Namespaces    []namespaceWrapper `yaml:"namespaces"`
}

type taskWrapper struct {
	Task TaskDeclaration `yaml:"task"`
}

type namespaceWrapper struct {
	Namespace namespaceFile `yaml:"namespace"`
}

type namespaceFile struct {
	Name          string             `yaml:"name"`
	Configuration map[string]any     `yaml:"config"`
	Tasks         []taskWrapper      `yaml:"tasks"`
	Namespaces    []namespaceWrapper `yaml:"namespaces"`
}

// Load reads the taskfile from disk and performs basic validation.
func Load(filePath string) (Definition, error) {
	trimmedPath := strings.TrimSpace(filePath)
	if len(trimmedPath) == 0 {
		return Definition{}, errors.New(taskfilePathRequiredMessageConstant)
	}

	contentBytes, readError := os.ReadFile(trimmedPath)
	if readError != nil {
		return Definition{}, fmt.Errorf(taskfileLoadErrorTemplateConstant, readError)
	}

	return Parse(contentBytes)
}

// Parse decodes and validates the taskfile document.
func Parse(contentBytes []byte) (Definition, error) {
	var parsedFile definitionFile
	if unmarshalError := yaml.Unmarshal(contentBytes, &parsedFile); unmarshalError != nil {
		return Definition{}, fmt.Errorf(taskfileParseErrorTemplateConstant, unmarshalError)
	}

	definition := Definition{
		Configuration: parsedFile.Configuration,
		Tasks:         unwrapTasks(parsedFile.Tasks),
		Namespaces:    unwrapNamespaces(parsedFile.Namespaces),
	}

	if len(definition.Tasks) == 0 && len(definition.Namespaces) == 0 {
		return Definition{}, errors.New(taskfileEmptyMessageConstant)
	}

	if validationError := validateTasks(definition.Tasks); validationError != nil {
		return Definition{}, validationError
	}
	if validationError := validateNamespaces(definition.Namespaces); validationError != nil {
		return Definition{}, validationError
	}

	return definition, nil
}

func unwrapTasks(wrappers []taskWrapper) []TaskDeclaration {
	declarations := make([]TaskDeclaration, 0, len(wrappers))
	for wrapperIndex := range wrappers {
		declarations = append(declarations, wrappers[wrapperIndex].Task)
	}
	return declarations
}

func unwrapNamespaces(wrappers []namespaceWrapper) []NamespaceDeclaration {
	declarations := make([]NamespaceDeclaration, 0, len(wrappers))
	for wrapperIndex := range wrappers {
		parsedNamespace := wrappers[wrapperIndex].Namespace
		declarations = append(declarations, NamespaceDeclaration{
			Name:          parsedNamespace.Name,
			Configuration: parsedNamespace.Configuration,
			Tasks:         unwrapTasks(parsedNamespace.Tasks),
			Namespaces:    unwrapNamespaces(parsedNamespace.Namespaces),
		})
	}
	return declarations
}

func validateTasks(declarations []TaskDeclaration) error {
	for declarationIndex := range declarations {
		declaration := declarations[declarationIndex]
		trimmedName := strings.TrimSpace(declaration.Name)
		if len(trimmedName) == 0 {
			return errors.New(taskfileTaskNameMissingMessageConstant)
		}
		if len(declaration.Steps) == 0 {
			return fmt.Errorf(taskfileTaskStepsMissingTemplateConstant, trimmedName)
		}
		for stepIndex := range declaration.Steps {
			if len(strings.TrimSpace(declaration.Steps[stepIndex].Command)) == 0 {
				return fmt.Errorf(taskfileStepCommandMissingTemplateConstant, trimmedName)
			}
		}
	}
	return nil
}

func validateNamespaces(declarations []NamespaceDeclaration) error {
	for declarationIndex := range declarations {
		declaration := declarations[declarationIndex]
		if len(strings.TrimSpace(declaration.Name)) == 0 {
			return errors.New(taskfileNamespaceNameMissingMessageConstant)
		}
		if validationError := validateTasks(declaration.Tasks); validationError != nil {
			return validationError
		}
		if validationError := validateNamespaces(declaration.Namespaces); validationError != nil {
			return validationError
		}
	}
	return nil
}
