package mirror

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/temirov/repomirror/internal/execshell"
	"github.com/temirov/repomirror/internal/platform"
)

const (
	cloneSubcommandConstant              = "clone"
	pushSubcommandConstant               = "push"
	mirrorFlagConstant                   = "--mirror"
	workspacePatternConstant             = "repomirror-*"
	loggerNotConfiguredMessageConstant   = "logger not configured"
	executorNotConfiguredMessageConstant = "git executor not configured"
	stageFailureErrorTemplateConstant    = "repository %s: %s stage failed: %v"
	workspaceErrorTemplateConstant       = "unable to create workspace: %w"
	dryRunMessageConstant                = "Dry run, repository transfer suppressed"
	destinationExistsMessageConstant     = "Destination repository already exists, skipping"
	transferCompletedMessageConstant     = "Repository transfer completed"
	workspaceCleanupMessageConstant      = "Workspace cleanup failed"
	logFieldRepositoryConstant           = "repository"
	logFieldDestinationConstant          = "destination"
	logFieldWorkspaceConstant            = "workspace"
)

// Stage names one phase of a repository transfer.
type Stage string

// Transfer stages in execution order.
const (
	StageResolve Stage = "resolve"
	StageClone   Stage = "clone"
	StageCreate  Stage = "create"
	StagePush    Stage = "push"
)

// Outcome classifies a finished transfer.
type Outcome string

// Transfer outcomes.
const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeFailed    Outcome = "failed"
)

// StageFailureError reports the transfer stage that failed for a repository.
type StageFailureError struct {
	RepositoryName string
	Stage          Stage
	Cause          error
}

// Error names the repository and the failed stage.
func (stageFailure StageFailureError) Error() string {
	return fmt.Sprintf(stageFailureErrorTemplateConstant, stageFailure.RepositoryName, stageFailure.Stage, stageFailure.Cause)
}

// Unwrap exposes the underlying cause.
func (stageFailure StageFailureError) Unwrap() error {
	return stageFailure.Cause
}

// Job describes one repository transfer.
type Job struct {
	SourceRepository platform.RepositoryDescriptor
	DestinationName  string
	DryRun           bool
}

// Result captures the outcome of one repository transfer.
type Result struct {
	RepositoryName  string
	DestinationName string
	Outcome         Outcome
	Failure         error
}

// GitExecutor is the subset of execshell.ShellExecutor used by the engine.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// EngineDependencies describes the collaborators required by the engine.
// WorkspaceRoot optionally pins ephemeral clones under a fixed directory;
// when empty the system temporary directory is used.
type EngineDependencies struct {
	Logger        *zap.Logger
	GitExecutor   GitExecutor
	WorkspaceRoot string
}

// Engine transfers repositories between platform providers.
type Engine struct {
	logger        *zap.Logger
	gitExecutor   GitExecutor
	workspaceRoot string
}

// Construction sentinels.
var (
	ErrLoggerNotConfigured      = errors.New(loggerNotConfiguredMessageConstant)
	ErrGitExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)
)

// NewEngine constructs an Engine from the provided collaborators.
func NewEngine(dependencies EngineDependencies) (*Engine, error) {
	if dependencies.Logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if dependencies.GitExecutor == nil {
		return nil, ErrGitExecutorNotConfigured
	}

	return &Engine{
		logger:        dependencies.Logger,
		gitExecutor:   dependencies.GitExecutor,
		workspaceRoot: dependencies.WorkspaceRoot,
	}, nil
}

// Transfer mirrors one repository from the source provider to the destination
// provider. Failures never abort the caller's run; they are reported through
// the result so remaining repositories can proceed.
func (engine *Engine) Transfer(executionContext context.Context, sourceProvider platform.Provider, destinationProvider platform.Provider, transferJob Job) Result {
	transferResult := Result{
		RepositoryName:  transferJob.SourceRepository.Name,
		DestinationName: transferJob.DestinationName,
	}

	if transferJob.DryRun {
		engine.logger.Info(
			dryRunMessageConstant,
			zap.String(logFieldRepositoryConstant, transferJob.SourceRepository.Name),
			zap.String(logFieldDestinationConstant, transferJob.DestinationName),
		)
		transferResult.Outcome = OutcomeSucceeded
		return transferResult
	}

	sourceRepository, resolveError := sourceProvider.GetRepository(executionContext, transferJob.SourceRepository.Name)
	if resolveError != nil {
		return engine.failedResult(transferResult, StageResolve, resolveError)
	}

	workspaceDirectory, workspaceError := os.MkdirTemp(engine.workspaceRoot, workspacePatternConstant)
	if workspaceError != nil {
		return engine.failedResult(transferResult, StageClone, fmt.Errorf(workspaceErrorTemplateConstant, workspaceError))
	}
	defer engine.removeWorkspace(workspaceDirectory)

	_, cloneError := engine.gitExecutor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments: []string{cloneSubcommandConstant, mirrorFlagConstant, sourceRepository.CloneURL, workspaceDirectory},
	})
	if cloneError != nil {
		return engine.failedResult(transferResult, StageClone, cloneError)
	}

	destinationRepository, destinationError := engine.ensureDestination(executionContext, destinationProvider, transferJob.DestinationName, sourceRepository.Description)
	if destinationError != nil {
		return engine.failedResult(transferResult, StageCreate, destinationError)
	}
	if destinationRepository == nil {
		engine.logger.Info(
			destinationExistsMessageConstant,
			zap.String(logFieldRepositoryConstant, transferJob.SourceRepository.Name),
			zap.String(logFieldDestinationConstant, transferJob.DestinationName),
		)
		transferResult.Outcome = OutcomeSkipped
		return transferResult
	}

	_, pushError := engine.gitExecutor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{pushSubcommandConstant, mirrorFlagConstant, destinationRepository.CloneURL},
		WorkingDirectory: workspaceDirectory,
	})
	if pushError != nil {
		return engine.failedResult(transferResult, StagePush, pushError)
	}

	engine.logger.Info(
		transferCompletedMessageConstant,
		zap.String(logFieldRepositoryConstant, transferJob.SourceRepository.Name),
		zap.String(logFieldDestinationConstant, transferJob.DestinationName),
	)
	transferResult.Outcome = OutcomeSucceeded
	return transferResult
}

// ensureDestination creates the destination repository when absent. A nil
// descriptor with a nil error signals a pre-existing destination.
func (engine *Engine) ensureDestination(executionContext context.Context, destinationProvider platform.Provider, destinationName string, repositoryDescription string) (*platform.RepositoryDescriptor, error) {
	_, lookupError := destinationProvider.GetRepository(executionContext, destinationName)
	if lookupError == nil {
		return nil, nil
	}
	if !errors.Is(lookupError, platform.ErrRepositoryNotFound) {
		return nil, lookupError
	}

	createdRepository, creationError := destinationProvider.CreateRepository(executionContext, destinationName, repositoryDescription)
	if creationError != nil {
		if errors.Is(creationError, platform.ErrRepositoryAlreadyExists) {
			return nil, nil
		}
		return nil, creationError
	}
	return &createdRepository, nil
}

func (engine *Engine) failedResult(transferResult Result, failedStage Stage, failureCause error) Result {
	transferResult.Outcome = OutcomeFailed
	transferResult.Failure = StageFailureError{
		RepositoryName: transferResult.RepositoryName,
		Stage:          failedStage,
		Cause:          failureCause,
	}
	return transferResult
}

func (engine *Engine) removeWorkspace(workspaceDirectory string) {
	removalError := os.RemoveAll(workspaceDirectory)
	if removalError != nil {
		engine.logger.Warn(
			workspaceCleanupMessageConstant,
			zap.String(logFieldWorkspaceConstant, workspaceDirectory),
			zap.Error(removalError),
		)
	}
}
