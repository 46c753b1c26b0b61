// Package executor implements the task execution engine: given a named task it
// expands the declared prerequisite chain one level, applies deduplication
// policy, builds per-task invocation arguments, and dispatches each task in
// order, returning the root task's result.
package executor

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/tyemirov/taskrun/internal/collection"
	"github.com/tyemirov/taskrun/internal/task"
	"github.com/tyemirov/taskrun/internal/taskcfg"
)

const (
	collectionRequiredMessageConstant = "executor requires a task collection"
	missingResultTemplateConstant     = "no result recorded for task %q: deduplication removed an already-called root task"

	examiningRootTaskMessageConstant = "examining top level task"
	expandedTaskListMessageConstant  = "task list including prerequisites"
	dedupeEnabledMessageConstant     = "deduplication is enabled"
	dedupeDisabledMessageConstant    = "deduplication is disabled, full task list will run"
	compactedTaskListMessageConstant = "task list with exact duplicates removed"
	filteredTaskListMessageConstant  = "task list with already-called tasks removed"
	executingTaskMessageConstant     = "executing task"
	taskNameFieldConstant            = "task"
	taskNamesFieldConstant           = "tasks"
	contextualizedFieldConstant      = "contextualized"
)

// ErrCollectionRequired indicates the executor was constructed without a collection.
var ErrCollectionRequired = errors.New(collectionRequiredMessageConstant)

// MissingResultError indicates the root task's result was never computed
// because deduplication filtered the already-called root out of the execution
// list. The engine reproduces this outcome rather than returning a cached
// prior result.
type MissingResultError struct {
	TaskName string
}

// Error describes the missing result.
func (missingResult MissingResultError) Error() string {
	return fmt.Sprintf(missingResultTemplateConstant, missingResult.TaskName)
}

// Executor dispatches named tasks from a collection, honoring prerequisites
// and session-wide deduplication. It holds no execution state of its own
// beyond the retained base context; session state lives on the collection's
// tasks.
type Executor struct {
	collection *collection.Collection
	context    *taskcfg.Context
	logger     *zap.Logger
}

// Option customizes executor construction.
type Option func(*Executor)

// WithContext supplies the base configuration context cloned for
// contextualized task invocations. Defaults to an empty context.
func WithContext(configurationContext *taskcfg.Context) Option {
	return func(engine *Executor) {
		if configurationContext != nil {
			engine.context = configurationContext
		}
	}
}

// WithLogger supplies the diagnostic logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(engine *Executor) {
		if logger != nil {
			engine.logger = logger
		}
	}
}

// New constructs an Executor bound to the provided collection.
func New(registry *collection.Collection, options ...Option) (*Executor, error) {
	if registry == nil {
		return nil, ErrCollectionRequired
	}
	engine := &Executor{
		collection: registry,
		context:    taskcfg.NewContext(),
		logger:     zap.NewNop(),
	}
	for _, option := range options {
		option(engine)
	}
	return engine, nil
}

// Execute runs the named task after its declared prerequisites and returns the
// named task's result.
//
// Prerequisites expand exactly one level: prerequisites of prerequisites are
// not visited. When dedupe is true the expanded list is first compacted to
// first-occurrence order and then stripped of tasks that already ran this
// session; when false the list runs unmodified, duplicates included. The same
// arguments map is shared by every invocation in the chain. Execution is
// strictly sequential and fail-fast: the first failing task aborts the
// remainder of the chain.
func (engine *Executor) Execute(executionContext context.Context, name string, arguments task.Arguments, dedupe bool) (task.Result, error) {
	if arguments == nil {
		arguments = task.Arguments{}
	}

	rootTask, lookupError := engine.collection.Lookup(name)
	if lookupError != nil {
		return nil, lookupError
	}
	engine.logger.Debug(examiningRootTaskMessageConstant, zap.String(taskNameFieldConstant, name))

	taskNames := append(rootTask.Prerequisites(), name)
	engine.logger.Debug(expandedTaskListMessageConstant, zap.Strings(taskNamesFieldConstant, taskNames))

	executionNames := taskNames
	if dedupe {
		engine.logger.Debug(dedupeEnabledMessageConstant)

		compactedNames := compactTaskNames(taskNames)
		engine.logger.Debug(compactedTaskListMessageConstant, zap.Strings(taskNamesFieldConstant, compactedNames))

		filteredNames, filterError := engine.filterCalledTasks(compactedNames)
		if filterError != nil {
			return nil, filterError
		}
		engine.logger.Debug(filteredTaskListMessageConstant, zap.Strings(taskNamesFieldConstant, filteredNames))

		executionNames = filteredNames
	} else {
		engine.logger.Debug(dedupeDisabledMessageConstant)
	}

	results := make(map[*task.Task]task.Result, len(executionNames))
	for _, taskName := range executionNames {
		resolvedTask, resolveError := engine.collection.Lookup(taskName)
		if resolveError != nil {
			return nil, resolveError
		}

		engine.logger.Debug(executingTaskMessageConstant,
			zap.String(taskNameFieldConstant, taskName),
			zap.Bool(contextualizedFieldConstant, resolvedTask.Contextualized()),
		)

		var invocationConfiguration *taskcfg.Context
		if resolvedTask.Contextualized() {
			invocationConfiguration = engine.context.Clone()
			invocationConfiguration.Update(engine.collection.Configuration(taskName))
		}

		result, invocationError := resolvedTask.Invoke(executionContext, invocationConfiguration, arguments)
		if invocationError != nil {
			return nil, invocationError
		}
		results[resolvedTask] = result
	}

	rootResult, rootResultRecorded := results[rootTask]
	if !rootResultRecorded {
		return nil, MissingResultError{TaskName: name}
	}
	return rootResult, nil
}

// compactTaskNames removes exact duplicate names preserving first-occurrence order.
func compactTaskNames(taskNames []string) []string {
	compacted := make([]string, 0, len(taskNames))
	seen := make(map[string]struct{}, len(taskNames))
	for _, taskName := range taskNames {
		if _, alreadySeen := seen[taskName]; alreadySeen {
			continue
		}
		seen[taskName] = struct{}{}
		compacted = append(compacted, taskName)
	}
	return compacted
}

// filterCalledTasks removes names whose resolved task already ran this session.
func (engine *Executor) filterCalledTasks(taskNames []string) ([]string, error) {
	filtered := make([]string, 0, len(taskNames))
	for _, taskName := range taskNames {
		resolvedTask, resolveError := engine.collection.Lookup(taskName)
		if resolveError != nil {
			return nil, resolveError
		}
		if resolvedTask.Called() {
			continue
		}
		filtered = append(filtered, taskName)
	}
	return filtered, nil
}
