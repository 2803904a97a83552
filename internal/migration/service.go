package migration

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/temirov/repomirror/internal/mirror"
	"github.com/temirov/repomirror/internal/platform"
	"github.com/temirov/repomirror/internal/selection"
)

const (
	loggerNotConfiguredMessageConstant          = "logger not configured"
	providerFactoryNotConfiguredMessageConstant = "provider factory not configured"
	transferEngineNotConfiguredMessageConstant  = "transfer engine not configured"
	prompterNotConfiguredMessageConstant        = "selection prompter not configured"
	migrationAbortedMessageConstant             = "migration aborted"
	sourceProviderErrorTemplateConstant         = "unable to connect source platform: %w"
	destinationProviderErrorTemplateConstant    = "unable to connect destination platform: %w"
	listRepositoriesErrorTemplateConstant       = "unable to list source repositories: %w"
	exclusionSelectionErrorTemplateConstant     = "exclusion selection failed: %w"
	confirmationErrorTemplateConstant           = "confirmation failed: %w"
	noRepositoriesMessageConstant               = "No repositories found on the source platform"
	allRepositoriesExcludedMessageConstant      = "All repositories excluded, nothing to migrate"
	transferProgressMessageConstant             = "Transferring repository"
	transferFailedMessageConstant               = "Repository transfer failed"
	runSummaryMessageConstant                   = "Migration run completed"
	logFieldRepositoryConstant                  = "repository"
	logFieldDestinationConstant                 = "destination"
	logFieldPositionConstant                    = "position"
	logFieldTotalConstant                       = "total"
	logFieldAttemptedConstant                   = "attempted"
	logFieldSucceededConstant                   = "succeeded"
	logFieldSkippedConstant                     = "skipped"
	logFieldFailedConstant                      = "failed"
	logFieldDryRunConstant                      = "dry_run"
)

// ErrMigrationAborted reports a run declined at the confirmation prompt.
var ErrMigrationAborted = errors.New(migrationAbortedMessageConstant)

// Construction sentinels.
var (
	errLoggerNotConfigured          = errors.New(loggerNotConfiguredMessageConstant)
	errProviderFactoryNotConfigured = errors.New(providerFactoryNotConfiguredMessageConstant)
	errTransferEngineNotConfigured  = errors.New(transferEngineNotConfiguredMessageConstant)
	errPrompterNotConfigured        = errors.New(prompterNotConfiguredMessageConstant)
)

// ProviderFactory connects a provider for a platform configuration.
type ProviderFactory interface {
	CreateProvider(executionContext context.Context, configuration platform.Configuration) (platform.Provider, error)
}

// TransferEngine moves one repository between connected providers.
type TransferEngine interface {
	Transfer(executionContext context.Context, sourceProvider platform.Provider, destinationProvider platform.Provider, transferJob mirror.Job) mirror.Result
}

// ServiceDependencies describes the collaborators required by the service.
type ServiceDependencies struct {
	Logger          *zap.Logger
	ProviderFactory ProviderFactory
	TransferEngine  TransferEngine
	Prompter        SelectionPrompter
}

// RunOptions configures a migration run.
type RunOptions struct {
	Source           platform.Configuration
	Destination      platform.Configuration
	RepositoryPrefix string
	MigrateAll       bool
	DryRun           bool
}

// RunSummary tallies the outcomes of a completed run.
type RunSummary struct {
	Attempted int
	Succeeded int
	Skipped   int
	Failed    int
	Results   []mirror.Result
}

// Service migrates repositories from a source platform to a destination platform.
type Service struct {
	logger          *zap.Logger
	providerFactory ProviderFactory
	transferEngine  TransferEngine
	prompter        SelectionPrompter
}

// NewService constructs a Service after validating dependencies.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.Logger == nil {
		return nil, errLoggerNotConfigured
	}
	if dependencies.ProviderFactory == nil {
		return nil, errProviderFactoryNotConfigured
	}
	if dependencies.TransferEngine == nil {
		return nil, errTransferEngineNotConfigured
	}
	if dependencies.Prompter == nil {
		return nil, errPrompterNotConfigured
	}

	return &Service{
		logger:          dependencies.Logger,
		providerFactory: dependencies.ProviderFactory,
		transferEngine:  dependencies.TransferEngine,
		prompter:        dependencies.Prompter,
	}, nil
}

// Run connects the source platform, selects the repositories to move,
// connects the destination, and transfers the selection sequentially.
// Per-repository failures are tallied in the summary; only setup and
// selection problems abort the run.
func (service *Service) Run(executionContext context.Context, options RunOptions) (RunSummary, error) {
	sourceProvider, sourceError := service.providerFactory.CreateProvider(executionContext, options.Source)
	if sourceError != nil {
		return RunSummary{}, fmt.Errorf(sourceProviderErrorTemplateConstant, sourceError)
	}

	repositories, listError := sourceProvider.ListRepositories(executionContext)
	if listError != nil {
		return RunSummary{}, fmt.Errorf(listRepositoriesErrorTemplateConstant, listError)
	}
	if len(repositories) == 0 {
		service.logger.Warn(noRepositoriesMessageConstant)
		return RunSummary{}, nil
	}

	selectedRepositories, selectionError := service.selectRepositories(repositories, options.MigrateAll)
	if selectionError != nil {
		return RunSummary{}, selectionError
	}
	if len(selectedRepositories) == 0 {
		service.logger.Warn(allRepositoriesExcludedMessageConstant)
		return RunSummary{}, nil
	}

	if !options.MigrateAll {
		confirmed, confirmationError := service.prompter.ConfirmMigration(selectedRepositories)
		if confirmationError != nil {
			return RunSummary{}, fmt.Errorf(confirmationErrorTemplateConstant, confirmationError)
		}
		if !confirmed {
			return RunSummary{}, ErrMigrationAborted
		}
	}

	// A declined or empty run never touches destination credentials.
	destinationProvider, destinationError := service.providerFactory.CreateProvider(executionContext, options.Destination)
	if destinationError != nil {
		return RunSummary{}, fmt.Errorf(destinationProviderErrorTemplateConstant, destinationError)
	}

	normalizedPrefix := NormalizeRepositoryPrefix(options.RepositoryPrefix)

	runSummary := RunSummary{Results: make([]mirror.Result, 0, len(selectedRepositories))}
	for repositoryIndex, repository := range selectedRepositories {
		destinationName := normalizedPrefix + repository.Name

		service.logger.Info(
			transferProgressMessageConstant,
			zap.String(logFieldRepositoryConstant, repository.Name),
			zap.String(logFieldDestinationConstant, destinationName),
			zap.Int(logFieldPositionConstant, repositoryIndex+1),
			zap.Int(logFieldTotalConstant, len(selectedRepositories)),
		)

		transferResult := service.transferEngine.Transfer(executionContext, sourceProvider, destinationProvider, mirror.Job{
			SourceRepository: repository,
			DestinationName:  destinationName,
			DryRun:           options.DryRun,
		})

		runSummary.Attempted++
		runSummary.Results = append(runSummary.Results, transferResult)

		switch transferResult.Outcome {
		case mirror.OutcomeSucceeded:
			runSummary.Succeeded++
		case mirror.OutcomeSkipped:
			runSummary.Skipped++
		case mirror.OutcomeFailed:
			runSummary.Failed++
			service.logger.Warn(
				transferFailedMessageConstant,
				zap.String(logFieldRepositoryConstant, repository.Name),
				zap.Error(transferResult.Failure),
			)
		}
	}

	service.logger.Info(
		runSummaryMessageConstant,
		zap.Int(logFieldAttemptedConstant, runSummary.Attempted),
		zap.Int(logFieldSucceededConstant, runSummary.Succeeded),
		zap.Int(logFieldSkippedConstant, runSummary.Skipped),
		zap.Int(logFieldFailedConstant, runSummary.Failed),
		zap.Bool(logFieldDryRunConstant, options.DryRun),
	)

	return runSummary, nil
}

// selectRepositories applies interactive exclusions unless the run migrates everything.
func (service *Service) selectRepositories(repositories []platform.RepositoryDescriptor, migrateAll bool) ([]platform.RepositoryDescriptor, error) {
	if migrateAll {
		return repositories, nil
	}

	exclusions, exclusionError := service.prompter.PromptExclusions(repositories)
	if exclusionError != nil {
		return nil, fmt.Errorf(exclusionSelectionErrorTemplateConstant, exclusionError)
	}

	return selection.Select(repositories, exclusions), nil
}
