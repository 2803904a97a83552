package migration

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/repomirror/internal/execshell"
	"github.com/temirov/repomirror/internal/platform"
	"github.com/temirov/repomirror/internal/platform/providers"
)

const (
	listCommandUseConstant               = "list"
	listCommandShortDescriptionConstant  = "List repositories on the source platform"
	listCommandLongDescriptionConstant   = "list connects to the configured source platform and prints every repository visible to the account."
	listEntryTemplateConstant            = "%4d. %s\n"
	listEntryWithDescriptionTemplate     = "%4d. %s - %s\n"
	listProvidersErrorTemplateConstant   = "unable to connect source platform: %w"
	listEnumerationErrorTemplateConstant = "unable to list repositories: %w"
	listNoRepositoriesMessageConstant    = "No repositories found\n"
)

// ProviderResolver connects a provider for a platform configuration.
type ProviderResolver func(executionContext context.Context, configuration platform.Configuration) (platform.Provider, error)

// ListCommandBuilder assembles the list Cobra command.
type ListCommandBuilder struct {
	LoggerProvider               LoggerProvider
	Executor                     CommandExecutor
	ProviderResolver             ProviderResolver
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
}

// Build constructs the list command.
func (builder *ListCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:           listCommandUseConstant,
		Short:         listCommandShortDescriptionConstant,
		Long:          listCommandLongDescriptionConstant,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		RunE:          builder.runList,
	}

	command.Flags().String(sourcePlatformFlagNameConstant, "", sourcePlatformFlagUsageConstant)
	command.Flags().String(sourceProfileFlagNameConstant, "", sourceProfileFlagUsageConstant)
	command.Flags().String(sourceRegionFlagNameConstant, "", sourceRegionFlagUsageConstant)
	command.Flags().String(sourceOwnerFlagNameConstant, "", sourceOwnerFlagUsageConstant)

	return command, nil
}

func (builder *ListCommandBuilder) runList(command *cobra.Command, _ []string) error {
	configuration := builder.resolveConfiguration()

	applyStringFlag(command, sourcePlatformFlagNameConstant, &configuration.Source.Platform)
	applyStringFlag(command, sourceProfileFlagNameConstant, &configuration.Source.Profile)
	applyStringFlag(command, sourceRegionFlagNameConstant, &configuration.Source.Region)
	applyStringFlag(command, sourceOwnerFlagNameConstant, &configuration.Source.Owner)

	if len(strings.TrimSpace(configuration.Source.Platform)) == 0 {
		return errors.New(sourcePlatformMissingMessageConstant)
	}

	logger := builder.resolveLogger()

	providerResolver, resolverError := builder.resolveProviderResolver(logger)
	if resolverError != nil {
		return resolverError
	}

	sourceProvider, providerError := providerResolver(command.Context(), configuration.Source)
	if providerError != nil {
		return fmt.Errorf(listProvidersErrorTemplateConstant, providerError)
	}

	repositories, listError := sourceProvider.ListRepositories(command.Context())
	if listError != nil {
		return fmt.Errorf(listEnumerationErrorTemplateConstant, listError)
	}

	outputWriter := command.OutOrStdout()
	if len(repositories) == 0 {
		fmt.Fprint(outputWriter, listNoRepositoriesMessageConstant)
		return nil
	}

	for repositoryIndex, repository := range repositories {
		if len(repository.Description) > 0 {
			fmt.Fprintf(outputWriter, listEntryWithDescriptionTemplate, repositoryIndex+1, repository.Name, repository.Description)
			continue
		}
		fmt.Fprintf(outputWriter, listEntryTemplateConstant, repositoryIndex+1, repository.Name)
	}

	return nil
}

func (builder *ListCommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func (builder *ListCommandBuilder) resolveProviderResolver(logger *zap.Logger) (ProviderResolver, error) {
	if builder.ProviderResolver != nil {
		return builder.ProviderResolver, nil
	}

	executor := builder.Executor
	if executor == nil {
		humanReadableLogging := false
		if builder.HumanReadableLoggingProvider != nil {
			humanReadableLogging = builder.HumanReadableLoggingProvider()
		}
		shellExecutor, executorError := execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner(), humanReadableLogging)
		if executorError != nil {
			return nil, executorError
		}
		executor = shellExecutor
	}

	providerFactory, factoryError := providers.NewFactory(logger, executor)
	if factoryError != nil {
		return nil, factoryError
	}
	return providerFactory.CreateProvider, nil
}

func (builder *ListCommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}
