// Package collection provides the registry that resolves dotted task names to
// tasks and supplies the merged, namespace-scoped configuration for each task.
package collection

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tyemirov/taskrun/internal/task"
)

const (
	taskNotFoundTemplateConstant       = "task %q not found in collection"
	duplicateTaskTemplateConstant      = "task %q already registered in collection"
	duplicateNamespaceTemplateConstant = "namespace %q already registered in collection"
	namespaceNameRequiredMessage       = "namespace requires a name"
	nilTaskMessageConstant             = "collection cannot register a nil task"
	namespaceSeparatorConstant         = "."
)

// TaskNotFoundError indicates a dotted name that does not resolve to a task.
type TaskNotFoundError struct {
	Name string
}

// Error describes the failed lookup.
func (lookupError TaskNotFoundError) Error() string {
	return fmt.Sprintf(taskNotFoundTemplateConstant, lookupError.Name)
}

// DuplicateTaskError indicates a task name registered twice within a namespace.
type DuplicateTaskError struct {
	Name string
}

// Error describes the duplicate registration.
func (duplicateError DuplicateTaskError) Error() string {
	return fmt.Sprintf(duplicateTaskTemplateConstant, duplicateError.Name)
}

// DuplicateNamespaceError indicates a namespace name registered twice.
type DuplicateNamespaceError struct {
	Name string
}

// Error describes the duplicate registration.
func (duplicateError DuplicateNamespaceError) Error() string {
	return fmt.Sprintf(duplicateNamespaceTemplateConstant, duplicateError.Name)
}

// Collection resolves dotted task names and supplies per-task configuration.
// A collection spans one invocation session: the called flags of its tasks
// persist for the collection's lifetime.
type Collection struct {
	name               string
	tasks              map[string]*task.Task
	taskConfigurations map[string]map[string]any
	namespaces         map[string]*Collection
	configuration      map[string]any
}

// New constructs an empty root collection.
func New() *Collection {
	return &Collection{
		tasks:              make(map[string]*task.Task),
		taskConfigurations: make(map[string]map[string]any),
		namespaces:         make(map[string]*Collection),
		configuration:      make(map[string]any),
	}
}

// NewNamespace constructs a named collection suitable for nesting.
func NewNamespace(name string) (*Collection, error) {
	trimmedName := strings.TrimSpace(name)
	if len(trimmedName) == 0 {
		return nil, fmt.Errorf(namespaceNameRequiredMessage)
	}
	namespace := New()
	namespace.name = trimmedName
	return namespace, nil
}

// Name returns the namespace name; the root collection has an empty name.
func (registry *Collection) Name() string {
	return registry.name
}

// SetConfiguration replaces the configuration scoped to this collection level.
func (registry *Collection) SetConfiguration(configuration map[string]any) {
	copied := make(map[string]any, len(configuration))
	for key, value := range configuration {
		copied[key] = value
	}
	registry.configuration = copied
}

// Add registers a task under its own name.
func (registry *Collection) Add(executableTask *task.Task) error {
	return registry.AddWithConfiguration(executableTask, nil)
}

// AddWithConfiguration registers a task along with task-scoped configuration overrides.
func (registry *Collection) AddWithConfiguration(executableTask *task.Task, configuration map[string]any) error {
	if executableTask == nil {
		return fmt.Errorf(nilTaskMessageConstant)
	}
	taskName := executableTask.Name()
	if _, exists := registry.tasks[taskName]; exists {
		return DuplicateTaskError{Name: taskName}
	}
	registry.tasks[taskName] = executableTask
	if len(configuration) > 0 {
		copied := make(map[string]any, len(configuration))
		for key, value := range configuration {
			copied[key] = value
		}
		registry.taskConfigurations[taskName] = copied
	}
	return nil
}

// AddNamespace nests a named collection inside this one.
func (registry *Collection) AddNamespace(namespace *Collection) error {
	if namespace == nil || len(namespace.name) == 0 {
		return fmt.Errorf(namespaceNameRequiredMessage)
	}
	if _, exists := registry.namespaces[namespace.name]; exists {
		return DuplicateNamespaceError{Name: namespace.name}
	}
	registry.namespaces[namespace.name] = namespace
	return nil
}

// Lookup resolves a dotted name to a task, descending nested namespaces.
func (registry *Collection) Lookup(name string) (*task.Task, error) {
	trimmedName := strings.TrimSpace(name)
	segments := strings.Split(trimmedName, namespaceSeparatorConstant)

	currentCollection := registry
	for segmentIndex := 0; segmentIndex < len(segments)-1; segmentIndex++ {
		nestedCollection, exists := currentCollection.namespaces[segments[segmentIndex]]
		if !exists {
			return nil, TaskNotFoundError{Name: trimmedName}
		}
		currentCollection = nestedCollection
	}

	resolvedTask, exists := currentCollection.tasks[segments[len(segments)-1]]
	if !exists {
		return nil, TaskNotFoundError{Name: trimmedName}
	}
	return resolvedTask, nil
}

// Configuration returns the merged configuration applicable to the named task:
// the root configuration, overlaid by each namespace's configuration along the
// dotted path, overlaid by the task-scoped configuration. Later layers override
// earlier keys. The merge never fails for a resolvable name.
func (registry *Collection) Configuration(name string) map[string]any {
	merged := make(map[string]any)
	trimmedName := strings.TrimSpace(name)
	segments := strings.Split(trimmedName, namespaceSeparatorConstant)

	currentCollection := registry
	for key, value := range currentCollection.configuration {
		merged[key] = value
	}

	for segmentIndex := 0; segmentIndex < len(segments)-1; segmentIndex++ {
		nestedCollection, exists := currentCollection.namespaces[segments[segmentIndex]]
		if !exists {
			return merged
		}
		currentCollection = nestedCollection
		for key, value := range currentCollection.configuration {
			merged[key] = value
		}
	}

	if taskConfiguration, exists := currentCollection.taskConfigurations[segments[len(segments)-1]]; exists {
		for key, value := range taskConfiguration {
			merged[key] = value
		}
	}

	return merged
}

// TaskNames returns the sorted dotted names of every task reachable from this collection.
func (registry *Collection) TaskNames() []string {
	names := registry.collectTaskNames("")
	sort.Strings(names)
	return names
}

func (registry *Collection) collectTaskNames(prefix string) []string {
	names := make([]string, 0, len(registry.tasks))
	for taskName := range registry.tasks {
		names = append(names, prefix+taskName)
	}
	for namespaceName, nestedCollection := range registry.namespaces {
		names = append(names, nestedCollection.collectTaskNames(prefix+namespaceName+namespaceSeparatorConstant)...)
	}
	return names
}
