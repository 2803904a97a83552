package execshell

import (
	"fmt"
	"strings"
)

const (
	commandLabelSeparatorConstant            = " "
	startedMessageTemplateConstant           = "Running %s"
	successMessageTemplateConstant           = "%s completed"
	failureMessageTemplateConstant           = "%s failed with exit code %d"
	failureWithOutputMessageTemplateConstant = "%s failed with exit code %d: %s"
	executionFailureMessageTemplateConstant  = "%s could not be executed: %v"
	workingDirectorySuffixTemplateConstant   = " (in %s)"
	commandLabelArgumentLimitConstant        = 4
	truncatedArgumentsMarkerConstant         = "…"
)

// CommandMessageFormatter renders human-readable descriptions of shell commands for console logging.
type CommandMessageFormatter struct{}

// BuildStartedMessage describes a command that is about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return fmt.Sprintf(startedMessageTemplateConstant, formatter.formatCommandLabel(command)) + formatter.formatWorkingDirectorySuffix(command)
}

// BuildSuccessMessage describes a command that completed successfully.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return fmt.Sprintf(successMessageTemplateConstant, formatter.formatCommandLabel(command))
}

// BuildFailureMessage describes a command that exited with a non-zero code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	trimmedStandardError := strings.TrimSpace(result.StandardError)
	if len(trimmedStandardError) == 0 {
		return fmt.Sprintf(failureMessageTemplateConstant, formatter.formatCommandLabel(command), result.ExitCode)
	}
	return fmt.Sprintf(failureWithOutputMessageTemplateConstant, formatter.formatCommandLabel(command), result.ExitCode, trimmedStandardError)
}

// BuildExecutionFailureMessage describes a command that never produced a result.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return fmt.Sprintf(executionFailureMessageTemplateConstant, formatter.formatCommandLabel(command), failure)
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	labelParts := []string{string(command.Name)}
	for argumentIndex, argument := range command.Details.Arguments {
		if argumentIndex >= commandLabelArgumentLimitConstant {
			labelParts = append(labelParts, truncatedArgumentsMarkerConstant)
			break
		}
		labelParts = append(labelParts, argument)
	}
	return strings.Join(labelParts, commandLabelSeparatorConstant)
}

func (formatter CommandMessageFormatter) formatWorkingDirectorySuffix(command ShellCommand) string {
	if len(command.Details.WorkingDirectory) == 0 {
		return ""
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, command.Details.WorkingDirectory)
}

func formatCommandFailed(commandName CommandName, exitCode int) string {
	return fmt.Sprintf(commandFailedErrorTemplateConstant, commandName, exitCode)
}

func formatCommandFailedWithOutput(commandName CommandName, exitCode int, standardError string) string {
	return fmt.Sprintf(commandFailedWithOutputErrorTemplateConstant, commandName, exitCode, standardError)
}

func formatCommandExecutionFailure(commandName CommandName, cause error) string {
	return fmt.Sprintf(commandExecutionErrorTemplateConstant, commandName, cause)
}
