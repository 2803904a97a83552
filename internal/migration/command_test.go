package migration_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/temirov/repomirror/internal/migration"
	"github.com/temirov/repomirror/internal/platform"
)

type capturingService struct {
	recordedOptions []migration.RunOptions
	runError        error
}

func (service *capturingService) Run(_ context.Context, options migration.RunOptions) (migration.RunSummary, error) {
	service.recordedOptions = append(service.recordedOptions, options)
	return migration.RunSummary{}, service.runError
}

func buildMigrateCommandForTest(testInstance *testing.T, service *capturingService, configuration migration.CommandConfiguration) *cobra.Command {
	builder := migration.CommandBuilder{
		Prompter: &fakePrompter{},
		ServiceProvider: func(migration.ServiceDependencies) (migration.MigrationService, error) {
			return service, nil
		},
		ConfigurationProvider: func() migration.CommandConfiguration {
			return configuration
		},
	}

	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)
	command.SetContext(context.Background())
	command.SetOut(&bytes.Buffer{})
	command.SetErr(&bytes.Buffer{})
	return command
}

func configuredMigration() migration.CommandConfiguration {
	return migration.CommandConfiguration{
		Source:      platform.Configuration{Platform: "codecommit", Profile: "source-account", Region: "eu-west-1"},
		Destination: platform.Configuration{Platform: "github", Owner: "fleet-ops"},
	}
}

func TestMigrateCommandUsesConfiguredValues(testInstance *testing.T) {
	service := &capturingService{}
	command := buildMigrateCommandForTest(testInstance, service, configuredMigration())

	command.SetArgs([]string{})
	require.NoError(testInstance, command.Execute())

	require.Len(testInstance, service.recordedOptions, 1)
	recordedOptions := service.recordedOptions[0]
	require.Equal(testInstance, "codecommit", recordedOptions.Source.Platform)
	require.Equal(testInstance, "source-account", recordedOptions.Source.Profile)
	require.Equal(testInstance, "github", recordedOptions.Destination.Platform)
	require.False(testInstance, recordedOptions.MigrateAll)
	require.False(testInstance, recordedOptions.DryRun)
}

func TestMigrateCommandFlagsOverrideConfiguration(testInstance *testing.T) {
	service := &capturingService{}
	command := buildMigrateCommandForTest(testInstance, service, configuredMigration())

	command.SetArgs([]string{
		"--source-platform", "github",
		"--source-owner", "legacy-team",
		"--destination-platform", "gitlab",
		"--repo-prefix", "mirrored",
		"--migrate-all",
		"--dry-run",
	})
	require.NoError(testInstance, command.Execute())

	require.Len(testInstance, service.recordedOptions, 1)
	recordedOptions := service.recordedOptions[0]
	require.Equal(testInstance, "github", recordedOptions.Source.Platform)
	require.Equal(testInstance, "legacy-team", recordedOptions.Source.Owner)
	require.Equal(testInstance, "gitlab", recordedOptions.Destination.Platform)
	require.Equal(testInstance, "mirrored", recordedOptions.RepositoryPrefix)
	require.True(testInstance, recordedOptions.MigrateAll)
	require.True(testInstance, recordedOptions.DryRun)
}

func TestMigrateCommandRequiresPlatforms(testInstance *testing.T) {
	testCases := []struct {
		name          string
		configuration migration.CommandConfiguration
	}{
		{
			name:          "missing source platform",
			configuration: migration.CommandConfiguration{Destination: platform.Configuration{Platform: "github"}},
		},
		{
			name:          "missing destination platform",
			configuration: migration.CommandConfiguration{Source: platform.Configuration{Platform: "codecommit"}},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtestInstance *testing.T) {
			service := &capturingService{}
			command := buildMigrateCommandForTest(subtestInstance, service, testCase.configuration)

			command.SetArgs([]string{})
			require.Error(subtestInstance, command.Execute())
			require.Empty(subtestInstance, service.recordedOptions)
		})
	}
}

func TestMigrateCommandPropagatesRunFailures(testInstance *testing.T) {
	service := &capturingService{runError: migration.ErrMigrationAborted}
	command := buildMigrateCommandForTest(testInstance, service, configuredMigration())

	command.SetArgs([]string{})
	require.ErrorIs(testInstance, command.Execute(), migration.ErrMigrationAborted)
}

func TestListCommandPrintsRepositories(testInstance *testing.T) {
	sourceProvider := &fakeListingProvider{
		repositories: []platform.RepositoryDescriptor{
			{Name: "alpha", Description: "alpha service"},
			{Name: "beta"},
		},
	}

	var resolvedConfiguration platform.Configuration
	builder := migration.ListCommandBuilder{
		ProviderResolver: func(_ context.Context, configuration platform.Configuration) (platform.Provider, error) {
			resolvedConfiguration = configuration
			return sourceProvider, nil
		},
		ConfigurationProvider: func() migration.CommandConfiguration {
			return configuredMigration()
		},
	}

	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)
	command.SetContext(context.Background())

	outputBuffer := &bytes.Buffer{}
	command.SetOut(outputBuffer)
	command.SetErr(&bytes.Buffer{})
	command.SetArgs([]string{"--source-region", "us-east-1"})

	require.NoError(testInstance, command.Execute())
	require.Equal(testInstance, "codecommit", resolvedConfiguration.Platform)
	require.Equal(testInstance, "us-east-1", resolvedConfiguration.Region)

	listOutput := outputBuffer.String()
	require.Contains(testInstance, listOutput, "1. alpha - alpha service")
	require.Contains(testInstance, listOutput, "2. beta")
}

func TestListCommandRequiresSourcePlatform(testInstance *testing.T) {
	builder := migration.ListCommandBuilder{
		ProviderResolver: func(context.Context, platform.Configuration) (platform.Provider, error) {
			return &fakeListingProvider{}, nil
		},
	}

	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)
	command.SetContext(context.Background())
	command.SetOut(&bytes.Buffer{})
	command.SetErr(&bytes.Buffer{})
	command.SetArgs([]string{})

	require.Error(testInstance, command.Execute())
}
