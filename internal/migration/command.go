package migration

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/temirov/repomirror/internal/execshell"
	"github.com/temirov/repomirror/internal/mirror"
	"github.com/temirov/repomirror/internal/platform/providers"
	"github.com/temirov/repomirror/internal/utils"
)

const (
	commandUseConstant                        = "migrate"
	commandShortDescriptionConstant           = "Migrate repositories between hosting platforms"
	commandLongDescriptionConstant            = "migrate enumerates repositories on the source platform, lets you exclude entries interactively, and mirrors each remaining repository onto the destination platform."
	sourcePlatformFlagNameConstant            = "source-platform"
	sourcePlatformFlagUsageConstant           = "Source platform (codecommit, github, or gitlab)"
	destinationPlatformFlagNameConstant       = "destination-platform"
	destinationPlatformFlagUsageConstant      = "Destination platform (codecommit, github, or gitlab)"
	sourceProfileFlagNameConstant             = "source-profile"
	sourceProfileFlagUsageConstant            = "AWS profile for the source platform"
	destinationProfileFlagNameConstant        = "destination-profile"
	destinationProfileFlagUsageConstant       = "AWS profile for the destination platform"
	sourceRegionFlagNameConstant              = "source-region"
	sourceRegionFlagUsageConstant             = "AWS region for the source platform"
	destinationRegionFlagNameConstant         = "destination-region"
	destinationRegionFlagUsageConstant        = "AWS region for the destination platform"
	sourceOwnerFlagNameConstant               = "source-owner"
	sourceOwnerFlagUsageConstant              = "Owner or group on the source platform"
	destinationOwnerFlagNameConstant          = "destination-owner"
	destinationOwnerFlagUsageConstant         = "Owner or group on the destination platform"
	repositoryPrefixFlagNameConstant          = "repo-prefix"
	repositoryPrefixFlagUsageConstant         = "Prefix prepended to every destination repository name"
	migrateAllFlagNameConstant                = "migrate-all"
	migrateAllFlagUsageConstant               = "Migrate every repository without prompting"
	dryRunFlagNameConstant                    = "dry-run"
	dryRunFlagUsageConstant                   = "Report the planned transfers without cloning or pushing"
	sourcePlatformMissingMessageConstant      = "source platform not configured"
	destinationPlatformMissingMessageConstant = "destination platform not configured"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandExecutor runs git and GitHub CLI invocations.
type CommandExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
	ExecuteGitHubCLI(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// MigrationService runs a configured migration.
type MigrationService interface {
	Run(executionContext context.Context, options RunOptions) (RunSummary, error)
}

// ServiceProvider constructs a migration service from dependencies.
type ServiceProvider func(dependencies ServiceDependencies) (MigrationService, error)

// CommandBuilder assembles the migrate Cobra command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	Executor                     CommandExecutor
	Prompter                     SelectionPrompter
	ServiceProvider              ServiceProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
}

// Build constructs the migrate command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:           commandUseConstant,
		Short:         commandShortDescriptionConstant,
		Long:          commandLongDescriptionConstant,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		RunE:          builder.runMigrate,
	}

	command.Flags().String(sourcePlatformFlagNameConstant, "", sourcePlatformFlagUsageConstant)
	command.Flags().String(destinationPlatformFlagNameConstant, "", destinationPlatformFlagUsageConstant)
	command.Flags().String(sourceProfileFlagNameConstant, "", sourceProfileFlagUsageConstant)
	command.Flags().String(destinationProfileFlagNameConstant, "", destinationProfileFlagUsageConstant)
	command.Flags().String(sourceRegionFlagNameConstant, "", sourceRegionFlagUsageConstant)
	command.Flags().String(destinationRegionFlagNameConstant, "", destinationRegionFlagUsageConstant)
	command.Flags().String(sourceOwnerFlagNameConstant, "", sourceOwnerFlagUsageConstant)
	command.Flags().String(destinationOwnerFlagNameConstant, "", destinationOwnerFlagUsageConstant)
	command.Flags().String(repositoryPrefixFlagNameConstant, "", repositoryPrefixFlagUsageConstant)
	command.Flags().Bool(migrateAllFlagNameConstant, false, migrateAllFlagUsageConstant)
	command.Flags().Bool(dryRunFlagNameConstant, false, dryRunFlagUsageConstant)

	return command, nil
}

func (builder *CommandBuilder) runMigrate(command *cobra.Command, _ []string) error {
	runOptions, optionsError := builder.parseOptions(command)
	if optionsError != nil {
		return optionsError
	}

	logger := builder.resolveLogger(command)

	executor, executorError := builder.resolveExecutor(logger)
	if executorError != nil {
		return executorError
	}

	providerFactory, factoryError := providers.NewFactory(logger, executor)
	if factoryError != nil {
		return factoryError
	}

	transferEngine, engineError := mirror.NewEngine(mirror.EngineDependencies{
		Logger:      logger,
		GitExecutor: executor,
	})
	if engineError != nil {
		return engineError
	}

	service, serviceError := builder.resolveService(ServiceDependencies{
		Logger:          logger,
		ProviderFactory: providerFactory,
		TransferEngine:  transferEngine,
		Prompter:        builder.resolvePrompter(command),
	})
	if serviceError != nil {
		return serviceError
	}

	_, runError := service.Run(command.Context(), runOptions)
	return runError
}

func (builder *CommandBuilder) parseOptions(command *cobra.Command) (RunOptions, error) {
	configuration := builder.resolveConfiguration()

	applyStringFlag(command, sourcePlatformFlagNameConstant, &configuration.Source.Platform)
	applyStringFlag(command, destinationPlatformFlagNameConstant, &configuration.Destination.Platform)
	applyStringFlag(command, sourceProfileFlagNameConstant, &configuration.Source.Profile)
	applyStringFlag(command, destinationProfileFlagNameConstant, &configuration.Destination.Profile)
	applyStringFlag(command, sourceRegionFlagNameConstant, &configuration.Source.Region)
	applyStringFlag(command, destinationRegionFlagNameConstant, &configuration.Destination.Region)
	applyStringFlag(command, sourceOwnerFlagNameConstant, &configuration.Source.Owner)
	applyStringFlag(command, destinationOwnerFlagNameConstant, &configuration.Destination.Owner)
	applyStringFlag(command, repositoryPrefixFlagNameConstant, &configuration.RepositoryPrefix)
	applyBoolFlag(command, migrateAllFlagNameConstant, &configuration.MigrateAll)
	applyBoolFlag(command, dryRunFlagNameConstant, &configuration.DryRun)

	if len(strings.TrimSpace(configuration.Source.Platform)) == 0 {
		return RunOptions{}, errors.New(sourcePlatformMissingMessageConstant)
	}
	if len(strings.TrimSpace(configuration.Destination.Platform)) == 0 {
		return RunOptions{}, errors.New(destinationPlatformMissingMessageConstant)
	}

	return RunOptions{
		Source:           configuration.Source,
		Destination:      configuration.Destination,
		RepositoryPrefix: configuration.RepositoryPrefix,
		MigrateAll:       configuration.MigrateAll,
		DryRun:           configuration.DryRun,
	}, nil
}

func (builder *CommandBuilder) resolveLogger(command *cobra.Command) *zap.Logger {
	var logger *zap.Logger
	if builder.LoggerProvider != nil {
		logger = builder.LoggerProvider()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	if command != nil {
		contextAccessor := utils.NewCommandContextAccessor()
		if logLevel, available := contextAccessor.LogLevel(command.Context()); available {
			if strings.EqualFold(logLevel, string(utils.LogLevelDebug)) {
				logger = logger.WithOptions(zap.IncreaseLevel(zapcore.DebugLevel))
			}
		}
	}

	return logger
}

func (builder *CommandBuilder) resolveExecutor(logger *zap.Logger) (CommandExecutor, error) {
	if builder.Executor != nil {
		return builder.Executor, nil
	}

	commandRunner := execshell.NewOSCommandRunner()
	humanReadableLogging := false
	if builder.HumanReadableLoggingProvider != nil {
		humanReadableLogging = builder.HumanReadableLoggingProvider()
	}
	return execshell.NewShellExecutor(logger, commandRunner, humanReadableLogging)
}

func (builder *CommandBuilder) resolvePrompter(command *cobra.Command) SelectionPrompter {
	if builder.Prompter != nil {
		return builder.Prompter
	}
	return NewIOSelectionPrompter(command.InOrStdin(), command.OutOrStdout())
}

func (builder *CommandBuilder) resolveService(dependencies ServiceDependencies) (MigrationService, error) {
	if builder.ServiceProvider != nil {
		return builder.ServiceProvider(dependencies)
	}
	return NewService(dependencies)
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}

func applyStringFlag(command *cobra.Command, flagName string, target *string) {
	if command == nil || !command.Flags().Changed(flagName) {
		return
	}
	flagValue, _ := command.Flags().GetString(flagName)
	*target = strings.TrimSpace(flagValue)
}

func applyBoolFlag(command *cobra.Command, flagName string, target *bool) {
	if command == nil || !command.Flags().Changed(flagName) {
		return
	}
	flagValue, _ := command.Flags().GetBool(flagName)
	*target = flagValue
}
