package execshell_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/repomirror/internal/execshell"
)

const (
	shellInterpreterNameConstant   = "sh"
	shellInlineScriptFlagConstant  = "-c"
	environmentProbeScriptConstant = "printf %s \"$RUNNER_PROBE_VALUE\""
	environmentProbeValueConstant  = "injected-value"
	nonzeroExitScriptConstant      = "echo failure detail >&2; exit 3"
	missingExecutableNameConstant  = "repomirror-no-such-executable"
)

func TestOSCommandRunnerCapturesOutputAndInjectsEnvironment(testInstance *testing.T) {
	runner := execshell.NewOSCommandRunner()

	executionResult, runError := runner.Run(context.Background(), execshell.ShellCommand{
		Name: shellInterpreterNameConstant,
		Details: execshell.CommandDetails{
			Arguments: []string{shellInlineScriptFlagConstant, environmentProbeScriptConstant},
			EnvironmentVariables: map[string]string{
				"RUNNER_PROBE_VALUE": environmentProbeValueConstant,
			},
		},
	})

	require.NoError(testInstance, runError)
	require.Equal(testInstance, 0, executionResult.ExitCode)
	require.Equal(testInstance, environmentProbeValueConstant, executionResult.StandardOutput)
}

func TestOSCommandRunnerReportsNonzeroExitAsResult(testInstance *testing.T) {
	runner := execshell.NewOSCommandRunner()

	executionResult, runError := runner.Run(context.Background(), execshell.ShellCommand{
		Name: shellInterpreterNameConstant,
		Details: execshell.CommandDetails{
			Arguments: []string{shellInlineScriptFlagConstant, nonzeroExitScriptConstant},
		},
	})

	require.NoError(testInstance, runError)
	require.Equal(testInstance, 3, executionResult.ExitCode)
	require.Contains(testInstance, executionResult.StandardError, "failure detail")
}

func TestOSCommandRunnerSurfacesSpawnFailures(testInstance *testing.T) {
	runner := execshell.NewOSCommandRunner()

	_, runError := runner.Run(context.Background(), execshell.ShellCommand{
		Name: missingExecutableNameConstant,
	})

	require.Error(testInstance, runError)
}
