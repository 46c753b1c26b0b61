package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tyemirov/taskrun/internal/collection"
	"github.com/tyemirov/taskrun/internal/execshell"
	"github.com/tyemirov/taskrun/internal/task"
	"github.com/tyemirov/taskrun/internal/taskcfg"
	"github.com/tyemirov/taskrun/internal/taskfile"
	"github.com/tyemirov/taskrun/internal/utils"
	"github.com/tyemirov/taskrun/pkg/taskrunner"
)

const (
	defaultTaskfileNameConstant = "tasks.yaml"

	runCommandUseNameConstant          = "run"
	runCommandUsageTemplateConstant    = runCommandUseNameConstant + " <task> [task ...] [key=value ...]"
	runCommandShortDescriptionConstant = "Execute one or more declared tasks"
	runCommandLongDescriptionConstant  = "run executes the named tasks in order. Prerequisites expand one level, duplicates and already-called tasks are skipped unless --no-dedupe is set, and key=value arguments are shared by every task in the chain."

	listCommandUseNameConstant          = "list"
	listCommandAliasConstant            = "ls"
	listCommandShortDescriptionConstant = "List the tasks declared in the taskfile"
	listCommandLongDescriptionConstant  = "list prints every task declared in the taskfile, including namespaced tasks, with prerequisite and contextualization details."

	taskfileFlagNameConstant      = "taskfile"
	taskfileFlagShorthandConstant = "f"
	taskfileFlagUsageConstant     = "Path to the taskfile"
	noDedupeFlagNameConstant      = "no-dedupe"
	noDedupeFlagUsageConstant     = "Disable prerequisite deduplication and already-called filtering"

	taskfileLoadErrorTemplateConstant      = "unable to load taskfile %q: %w"
	taskfileBuildErrorTemplateConstant     = "unable to build task collection from %q: %w"
	missingTaskNamesErrorMessageConstant   = "at least one task name is required"
	invalidTaskArgumentTemplateConstant    = "invalid task argument %q: expected <task> or key=value"
	taskArgumentSeparatorConstant          = "="
	listEntryPrerequisitesTemplateConstant = "  (pre: %s)"
	listEntryContextualizedSuffixConstant  = "  [contextualized]"
	listEntrySeparatorConstant             = ", "

	tasksCompletedMessageConstant = "tasks completed"
	logFieldTaskNamesConstant     = "tasks"
	logFieldTaskCountConstant     = "task_count"
	logFieldDurationConstant      = "duration"
	logFieldTaskfileConstant      = "taskfile"
	logFieldDedupeConstant        = "dedupe"
)

func (application *Application) registerCommands(cobraCommand *cobra.Command) {
	cobraCommand.AddCommand(application.newRunCommand())
	cobraCommand.AddCommand(application.newListCommand())
	cobraCommand.AddCommand(application.newVersionCommand())
}

func (application *Application) newRunCommand() *cobra.Command {
	var taskfileFlagValue string

	runCommand := &cobra.Command{
		Use:           runCommandUsageTemplateConstant,
		Short:         runCommandShortDescriptionConstant,
		Long:          runCommandLongDescriptionConstant,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.runTasks(command, arguments, taskfileFlagValue)
		},
	}

	runCommand.Flags().StringVarP(&taskfileFlagValue, taskfileFlagNameConstant, taskfileFlagShorthandConstant, "", taskfileFlagUsageConstant)
	runCommand.Flags().Bool(noDedupeFlagNameConstant, false, noDedupeFlagUsageConstant)

	return runCommand
}

func (application *Application) newListCommand() *cobra.Command {
	var taskfileFlagValue string

	listCommand := &cobra.Command{
		Use:           listCommandUseNameConstant,
		Aliases:       []string{listCommandAliasConstant},
		Short:         listCommandShortDescriptionConstant,
		Long:          listCommandLongDescriptionConstant,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.listTasks(command, taskfileFlagValue)
		},
	}

	listCommand.Flags().StringVarP(&taskfileFlagValue, taskfileFlagNameConstant, taskfileFlagShorthandConstant, "", taskfileFlagUsageConstant)

	return listCommand
}

func (application *Application) newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:           versionCommandUseNameConstant,
		Short:         versionCommandShortDescriptionConstant,
		Long:          versionCommandLongDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			application.printVersion(command.Context(), command)
			return nil
		},
	}
}

func (application *Application) runTasks(command *cobra.Command, rawArguments []string, taskfileFlagValue string) error {
	taskNames, sharedArguments, parseError := parseTaskArguments(rawArguments)
	if parseError != nil {
		return parseError
	}

	taskfilePath := application.resolveTaskfilePath(command, taskfileFlagValue)
	registry, buildError := application.buildTaskCollection(taskfilePath)
	if buildError != nil {
		return buildError
	}

	dedupeEnabled := !application.configuration.Tasks.NoDedupe
	if executionFlags, flagsPresent := application.commandContextAccessor.ExecutionFlags(command.Context()); flagsPresent {
		dedupeEnabled = !executionFlags.NoDedupe
	}

	runner := taskrunner.Resolve(nil, taskrunner.Dependencies{
		Collection: registry,
		Context:    taskcfg.NewContextFromValues(application.configuration.Tasks.Context),
		Logger:     application.logger,
		Errors:     utils.NewFlushingWriter(command.ErrOrStderr()),
	})

	outcome, runError := runner.Run(command.Context(), taskNames, sharedArguments, taskrunner.RunOptions{Dedupe: dedupeEnabled})
	if runError != nil {
		return runError
	}

	for _, taskName := range taskNames {
		printTaskResult(command, outcome.Results[taskName])
	}

	configurationFilePath, _ := application.commandContextAccessor.ConfigurationFilePath(command.Context())
	application.logger.Info(
		tasksCompletedMessageConstant,
		zap.Strings(logFieldTaskNamesConstant, taskNames),
		zap.Int(logFieldTaskCountConstant, outcome.TaskCount),
		zap.Duration(logFieldDurationConstant, outcome.Duration),
		zap.String(logFieldTaskfileConstant, taskfilePath),
		zap.String(configurationFileFieldConstant, configurationFilePath),
		zap.Bool(logFieldDedupeConstant, dedupeEnabled),
	)

	return nil
}

func (application *Application) listTasks(command *cobra.Command, taskfileFlagValue string) error {
	taskfilePath := application.resolveTaskfilePath(command, taskfileFlagValue)
	registry, buildError := application.buildTaskCollection(taskfilePath)
	if buildError != nil {
		return buildError
	}

	for _, taskName := range registry.TaskNames() {
		listedTask, lookupError := registry.Lookup(taskName)
		if lookupError != nil {
			return lookupError
		}

		entryBuilder := strings.Builder{}
		entryBuilder.WriteString(taskName)

		prerequisites := listedTask.Prerequisites()
		if len(prerequisites) > 0 {
			entryBuilder.WriteString(fmt.Sprintf(listEntryPrerequisitesTemplateConstant, strings.Join(prerequisites, listEntrySeparatorConstant)))
		}
		if listedTask.Contextualized() {
			entryBuilder.WriteString(listEntryContextualizedSuffixConstant)
		}

		fmt.Fprintln(command.OutOrStdout(), entryBuilder.String())
	}

	return nil
}

func (application *Application) resolveTaskfilePath(command *cobra.Command, taskfileFlagValue string) string {
	trimmedFlagValue := strings.TrimSpace(taskfileFlagValue)
	if len(trimmedFlagValue) > 0 {
		return trimmedFlagValue
	}

	if command != nil {
		if contextTaskfilePath, pathPresent := application.commandContextAccessor.TaskfilePath(command.Context()); pathPresent {
			return contextTaskfilePath
		}
	}

	configuredPath := strings.TrimSpace(application.configuration.Tasks.TaskfilePath)
	if len(configuredPath) > 0 {
		return configuredPath
	}

	return defaultTaskfileNameConstant
}

func (application *Application) buildTaskCollection(taskfilePath string) (*collection.Collection, error) {
	definition, loadError := taskfile.Load(taskfilePath)
	if loadError != nil {
		return nil, fmt.Errorf(taskfileLoadErrorTemplateConstant, taskfilePath, loadError)
	}

	shellExecutor, executorError := execshell.NewShellExecutor(application.logger, execshell.NewOSCommandRunner())
	if executorError != nil {
		return nil, executorError
	}

	registry, buildError := taskfile.Build(definition, shellExecutor)
	if buildError != nil {
		return nil, fmt.Errorf(taskfileBuildErrorTemplateConstant, taskfilePath, buildError)
	}

	return registry, nil
}

func parseTaskArguments(rawArguments []string) ([]string, task.Arguments, error) {
	taskNames := make([]string, 0, len(rawArguments))
	sharedArguments := task.Arguments{}

	for _, rawArgument := range rawArguments {
		separatorIndex := strings.Index(rawArgument, taskArgumentSeparatorConstant)
		if separatorIndex < 0 {
			trimmedName := strings.TrimSpace(rawArgument)
			if len(trimmedName) == 0 {
				return nil, nil, fmt.Errorf(invalidTaskArgumentTemplateConstant, rawArgument)
			}
			taskNames = append(taskNames, trimmedName)
			continue
		}

		argumentKey := strings.TrimSpace(rawArgument[:separatorIndex])
		if len(argumentKey) == 0 {
			return nil, nil, fmt.Errorf(invalidTaskArgumentTemplateConstant, rawArgument)
		}
		sharedArguments[argumentKey] = rawArgument[separatorIndex+1:]
	}

	if len(taskNames) == 0 {
		return nil, nil, errors.New(missingTaskNamesErrorMessageConstant)
	}

	return taskNames, sharedArguments, nil
}

func printTaskResult(command *cobra.Command, result task.Result) {
	resultText, isText := result.(string)
	if !isText {
		return
	}

	if len(strings.TrimSpace(resultText)) == 0 {
		return
	}

	if !strings.HasSuffix(resultText, "\n") {
		resultText += "\n"
	}
	fmt.Fprint(command.OutOrStdout(), resultText)
}
