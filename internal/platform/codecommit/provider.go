// Package codecommit implements the AWS CodeCommit platform provider.
//
// Connections resolve an AWS shared-config profile and region, validate the
// session through STS caller identity, and hand out clone URLs in the
// git-remote-codecommit format so git can authenticate with the same profile.
package codecommit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	awscodecommit "github.com/aws/aws-sdk-go-v2/service/codecommit"
	codecommittypes "github.com/aws/aws-sdk-go-v2/service/codecommit/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"go.uber.org/zap"

	"github.com/temirov/repomirror/internal/platform"
)

const (
	repositoryClientMissingMessageConstant   = "codecommit repository client not configured"
	awsConfigurationErrorTemplateConstant    = "unable to load AWS configuration: %w"
	sessionValidationErrorTemplateConstant   = "session validation failed: %w"
	listRepositoriesErrorTemplateConstant    = "unable to list repositories: %w"
	getRepositoryErrorTemplateConstant       = "unable to get repository %s: %w"
	createRepositoryErrorTemplateConstant    = "unable to create repository %s: %w"
	sessionValidatedMessageConstant          = "CodeCommit session validated"
	logFieldCallerIdentityConstant           = "caller_identity"
	logFieldProfileConstant                  = "profile"
	logFieldRegionConstant                   = "region"
	cloneURLWithProfileTemplateConstant      = "codecommit::%s://%s@%s"
	cloneURLWithoutProfileTemplateConstant   = "codecommit::%s://%s"
	repositoryMetadataMissingMessageConstant = "repository metadata missing in response"
)

// RepositoryAPI is the subset of the CodeCommit client used by the provider.
type RepositoryAPI interface {
	ListRepositories(executionContext context.Context, input *awscodecommit.ListRepositoriesInput, options ...func(*awscodecommit.Options)) (*awscodecommit.ListRepositoriesOutput, error)
	GetRepository(executionContext context.Context, input *awscodecommit.GetRepositoryInput, options ...func(*awscodecommit.Options)) (*awscodecommit.GetRepositoryOutput, error)
	CreateRepository(executionContext context.Context, input *awscodecommit.CreateRepositoryInput, options ...func(*awscodecommit.Options)) (*awscodecommit.CreateRepositoryOutput, error)
}

// Settings configures a CodeCommit connection.
type Settings struct {
	Profile string
	Region  string
}

// Dependencies describes the collaborators required by the provider.
type Dependencies struct {
	Logger           *zap.Logger
	RepositoryClient RepositoryAPI
	Profile          string
	Region           string
}

// Provider implements platform.Provider backed by AWS CodeCommit.
type Provider struct {
	logger           *zap.Logger
	repositoryClient RepositoryAPI
	profile          string
	region           string
}

var errRepositoryClientMissing = errors.New(repositoryClientMissingMessageConstant)

// NewProviderFromDependencies constructs a provider from pre-built collaborators.
func NewProviderFromDependencies(dependencies Dependencies) (*Provider, error) {
	if dependencies.RepositoryClient == nil {
		return nil, errRepositoryClientMissing
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Provider{
		logger:           logger,
		repositoryClient: dependencies.RepositoryClient,
		profile:          strings.TrimSpace(dependencies.Profile),
		region:           strings.TrimSpace(dependencies.Region),
	}, nil
}

// NewProvider resolves the AWS shared configuration, validates the session via
// STS caller identity, and constructs a connected provider.
func NewProvider(executionContext context.Context, logger *zap.Logger, settings Settings) (*Provider, error) {
	loadOptions := []func(*config.LoadOptions) error{}
	if len(settings.Profile) > 0 {
		loadOptions = append(loadOptions, config.WithSharedConfigProfile(settings.Profile))
	}
	if len(settings.Region) > 0 {
		loadOptions = append(loadOptions, config.WithRegion(settings.Region))
	}

	awsConfiguration, configurationError := config.LoadDefaultConfig(executionContext, loadOptions...)
	if configurationError != nil {
		return nil, platform.CredentialResolutionError{
			Platform: platform.PlatformCodeCommit,
			Cause:    fmt.Errorf(awsConfigurationErrorTemplateConstant, configurationError),
		}
	}

	resolvedRegion := settings.Region
	if len(resolvedRegion) == 0 {
		resolvedRegion = awsConfiguration.Region
	}

	callerIdentity, identityError := sts.NewFromConfig(awsConfiguration).GetCallerIdentity(executionContext, &sts.GetCallerIdentityInput{})
	if identityError != nil {
		return nil, platform.CredentialResolutionError{
			Platform: platform.PlatformCodeCommit,
			Cause:    fmt.Errorf(sessionValidationErrorTemplateConstant, identityError),
		}
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	logger.Info(
		sessionValidatedMessageConstant,
		zap.String(logFieldCallerIdentityConstant, aws.ToString(callerIdentity.Arn)),
		zap.String(logFieldProfileConstant, settings.Profile),
		zap.String(logFieldRegionConstant, resolvedRegion),
	)

	return NewProviderFromDependencies(Dependencies{
		Logger:           logger,
		RepositoryClient: awscodecommit.NewFromConfig(awsConfiguration),
		Profile:          settings.Profile,
		Region:           resolvedRegion,
	})
}

// ListRepositories enumerates every repository, following pagination tokens to completion.
// The list API reports names only; descriptions are resolved by GetRepository.
func (provider *Provider) ListRepositories(executionContext context.Context) ([]platform.RepositoryDescriptor, error) {
	descriptors := []platform.RepositoryDescriptor{}

	listInput := &awscodecommit.ListRepositoriesInput{}
	for {
		listOutput, listError := provider.repositoryClient.ListRepositories(executionContext, listInput)
		if listError != nil {
			return nil, fmt.Errorf(listRepositoriesErrorTemplateConstant, listError)
		}

		for _, repositoryEntry := range listOutput.Repositories {
			repositoryName := aws.ToString(repositoryEntry.RepositoryName)
			if len(repositoryName) == 0 {
				continue
			}
			descriptors = append(descriptors, platform.RepositoryDescriptor{
				Name:     repositoryName,
				CloneURL: provider.buildCloneURL(repositoryName),
			})
		}

		if listOutput.NextToken == nil || len(aws.ToString(listOutput.NextToken)) == 0 {
			break
		}
		listInput = &awscodecommit.ListRepositoriesInput{NextToken: listOutput.NextToken}
	}

	return descriptors, nil
}

// GetRepository resolves repository metadata by name.
func (provider *Provider) GetRepository(executionContext context.Context, repositoryName string) (platform.RepositoryDescriptor, error) {
	getOutput, getError := provider.repositoryClient.GetRepository(executionContext, &awscodecommit.GetRepositoryInput{
		RepositoryName: aws.String(repositoryName),
	})
	if getError != nil {
		doesNotExistException := &codecommittypes.RepositoryDoesNotExistException{}
		if errors.As(getError, &doesNotExistException) {
			return platform.RepositoryDescriptor{}, fmt.Errorf(getRepositoryErrorTemplateConstant, repositoryName, platform.ErrRepositoryNotFound)
		}
		return platform.RepositoryDescriptor{}, fmt.Errorf(getRepositoryErrorTemplateConstant, repositoryName, getError)
	}

	if getOutput.RepositoryMetadata == nil {
		return platform.RepositoryDescriptor{}, errors.New(repositoryMetadataMissingMessageConstant)
	}

	return platform.RepositoryDescriptor{
		Name:        aws.ToString(getOutput.RepositoryMetadata.RepositoryName),
		Description: aws.ToString(getOutput.RepositoryMetadata.RepositoryDescription),
		CloneURL:    provider.buildCloneURL(repositoryName),
	}, nil
}

// CreateRepository creates a repository carrying the supplied description verbatim.
func (provider *Provider) CreateRepository(executionContext context.Context, repositoryName string, repositoryDescription string) (platform.RepositoryDescriptor, error) {
	createInput := &awscodecommit.CreateRepositoryInput{
		RepositoryName: aws.String(repositoryName),
	}
	if len(repositoryDescription) > 0 {
		createInput.RepositoryDescription = aws.String(repositoryDescription)
	}

	createOutput, createError := provider.repositoryClient.CreateRepository(executionContext, createInput)
	if createError != nil {
		nameExistsException := &codecommittypes.RepositoryNameExistsException{}
		if errors.As(createError, &nameExistsException) {
			return platform.RepositoryDescriptor{}, fmt.Errorf(createRepositoryErrorTemplateConstant, repositoryName, platform.ErrRepositoryAlreadyExists)
		}
		return platform.RepositoryDescriptor{}, fmt.Errorf(createRepositoryErrorTemplateConstant, repositoryName, createError)
	}

	createdDescription := repositoryDescription
	if createOutput.RepositoryMetadata != nil {
		createdDescription = aws.ToString(createOutput.RepositoryMetadata.RepositoryDescription)
	}

	return platform.RepositoryDescriptor{
		Name:        repositoryName,
		Description: createdDescription,
		CloneURL:    provider.buildCloneURL(repositoryName),
	}, nil
}

// buildCloneURL renders a git-remote-codecommit URL scoped to the connection profile.
func (provider *Provider) buildCloneURL(repositoryName string) string {
	if len(provider.profile) > 0 {
		return fmt.Sprintf(cloneURLWithProfileTemplateConstant, provider.region, provider.profile, repositoryName)
	}
	return fmt.Sprintf(cloneURLWithoutProfileTemplateConstant, provider.region, repositoryName)
}
