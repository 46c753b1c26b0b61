package taskrunner

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tyemirov/taskrun/internal/collection"
	"github.com/tyemirov/taskrun/internal/executor"
	"github.com/tyemirov/taskrun/internal/task"
	"github.com/tyemirov/taskrun/internal/taskcfg"
)

// Dependencies configures shared collaborators for task execution.
type Dependencies struct {
	Collection     *collection.Collection
	Context        *taskcfg.Context
	Logger         *zap.Logger
	Errors         io.Writer
	DisableSummary bool
}

// RunOptions captures user-provided execution modifiers.
type RunOptions struct {
	Dedupe bool
}

// Outcome reports the observable results of one runner invocation.
type Outcome struct {
	Results   map[string]task.Result
	TaskCount int
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

// Runner executes named task chains against a shared session collection.
type Runner interface {
	Run(executionContext context.Context, taskNames []string, arguments task.Arguments, options RunOptions) (Outcome, error)
}

// Factory constructs a Runner given runner dependencies.
type Factory func(Dependencies) Runner

// Resolve returns either the provided factory result or the default engine
// runner, wrapped with summary reporting.
func Resolve(factory Factory, dependencies Dependencies) Runner {
	var base Runner
	if factory != nil {
		base = factory(dependencies)
	}
	if base == nil {
		base = engineRunner{dependencies: dependencies}
	}
	return summaryRunner{
		delegate:     base,
		dependencies: dependencies,
	}
}

type engineRunner struct {
	dependencies Dependencies
}

// Run executes each requested task name as a successive engine call against
// the same collection, so session state carries across the whole invocation.
func (runner engineRunner) Run(executionContext context.Context, taskNames []string, arguments task.Arguments, options RunOptions) (Outcome, error) {
	outcome := Outcome{
		Results:   make(map[string]task.Result, len(taskNames)),
		StartTime: time.Now(),
	}

	engineOptions := []executor.Option{}
	if runner.dependencies.Context != nil {
		engineOptions = append(engineOptions, executor.WithContext(runner.dependencies.Context))
	}
	if runner.dependencies.Logger != nil {
		engineOptions = append(engineOptions, executor.WithLogger(runner.dependencies.Logger))
	}

	engine, engineError := executor.New(runner.dependencies.Collection, engineOptions...)
	if engineError != nil {
		return outcome, engineError
	}

	for _, taskName := range taskNames {
		result, executionError := engine.Execute(executionContext, taskName, arguments, options.Dedupe)
		if executionError != nil {
			outcome.EndTime = time.Now()
			outcome.Duration = outcome.EndTime.Sub(outcome.StartTime)
			return outcome, executionError
		}
		outcome.Results[taskName] = result
		outcome.TaskCount++
	}

	outcome.EndTime = time.Now()
	outcome.Duration = outcome.EndTime.Sub(outcome.StartTime)
	return outcome, nil
}

type summaryRunner struct {
	delegate     Runner
	dependencies Dependencies
}

func (runner summaryRunner) Run(executionContext context.Context, taskNames []string, arguments task.Arguments, options RunOptions) (Outcome, error) {
	outcome, runError := runner.delegate.Run(executionContext, taskNames, arguments, options)
	runner.printSummary(outcome)
	return outcome, runError
}

func (runner summaryRunner) printSummary(outcome Outcome) {
	if runner.dependencies.DisableSummary || runner.dependencies.Errors == nil {
		return
	}

	summary := RenderSummaryLine(outcome)
	if len(strings.TrimSpace(summary)) == 0 {
		return
	}
	fmt.Fprintln(runner.dependencies.Errors, summary)
}
