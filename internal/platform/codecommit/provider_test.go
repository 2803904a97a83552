package codecommit_test

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscodecommit "github.com/aws/aws-sdk-go-v2/service/codecommit"
	codecommittypes "github.com/aws/aws-sdk-go-v2/service/codecommit/types"
	"github.com/stretchr/testify/require"

	"github.com/temirov/repomirror/internal/platform"
	"github.com/temirov/repomirror/internal/platform/codecommit"
)

const (
	testProfileNameConstant             = "source-account"
	testRegionNameConstant              = "eu-west-1"
	testFirstRepositoryNameConstant     = "alpha"
	testSecondRepositoryNameConstant    = "beta"
	testThirdRepositoryNameConstant     = "gamma"
	testPaginationTokenConstant         = "next-page"
	testRepositoryDescriptionConstant   = "service alpha"
	testMissingRepositoryNameConstant   = "missing"
	testExpectedProfileCloneURLConstant = "codecommit::eu-west-1://source-account@alpha"
	testExpectedPlainCloneURLConstant   = "codecommit::eu-west-1://alpha"
)

type fakeRepositoryAPI struct {
	listPages       []*awscodecommit.ListRepositoriesOutput
	listCallCount   int
	getError        error
	getOutput       *awscodecommit.GetRepositoryOutput
	createError     error
	createOutput    *awscodecommit.CreateRepositoryOutput
	recordedCreates []*awscodecommit.CreateRepositoryInput
}

func (api *fakeRepositoryAPI) ListRepositories(_ context.Context, _ *awscodecommit.ListRepositoriesInput, _ ...func(*awscodecommit.Options)) (*awscodecommit.ListRepositoriesOutput, error) {
	page := api.listPages[api.listCallCount]
	api.listCallCount++
	return page, nil
}

func (api *fakeRepositoryAPI) GetRepository(_ context.Context, _ *awscodecommit.GetRepositoryInput, _ ...func(*awscodecommit.Options)) (*awscodecommit.GetRepositoryOutput, error) {
	if api.getError != nil {
		return nil, api.getError
	}
	return api.getOutput, nil
}

func (api *fakeRepositoryAPI) CreateRepository(_ context.Context, input *awscodecommit.CreateRepositoryInput, _ ...func(*awscodecommit.Options)) (*awscodecommit.CreateRepositoryOutput, error) {
	api.recordedCreates = append(api.recordedCreates, input)
	if api.createError != nil {
		return nil, api.createError
	}
	return api.createOutput, nil
}

func newProviderForTest(testInstance *testing.T, repositoryAPI codecommit.RepositoryAPI, profile string) *codecommit.Provider {
	provider, creationError := codecommit.NewProviderFromDependencies(codecommit.Dependencies{
		RepositoryClient: repositoryAPI,
		Profile:          profile,
		Region:           testRegionNameConstant,
	})
	require.NoError(testInstance, creationError)
	return provider
}

func TestProviderListRepositoriesFollowsPagination(testInstance *testing.T) {
	repositoryAPI := &fakeRepositoryAPI{
		listPages: []*awscodecommit.ListRepositoriesOutput{
			{
				Repositories: []codecommittypes.RepositoryNameIdPair{
					{RepositoryName: aws.String(testFirstRepositoryNameConstant)},
					{RepositoryName: aws.String(testSecondRepositoryNameConstant)},
				},
				NextToken: aws.String(testPaginationTokenConstant),
			},
			{
				Repositories: []codecommittypes.RepositoryNameIdPair{
					{RepositoryName: aws.String(testThirdRepositoryNameConstant)},
				},
			},
		},
	}

	provider := newProviderForTest(testInstance, repositoryAPI, testProfileNameConstant)

	descriptors, listError := provider.ListRepositories(context.Background())
	require.NoError(testInstance, listError)
	require.Equal(testInstance, 2, repositoryAPI.listCallCount)
	require.Len(testInstance, descriptors, 3)
	require.Equal(testInstance, testFirstRepositoryNameConstant, descriptors[0].Name)
	require.Equal(testInstance, testThirdRepositoryNameConstant, descriptors[2].Name)
	require.Equal(testInstance, testExpectedProfileCloneURLConstant, descriptors[0].CloneURL)
}

func TestProviderCloneURLOmitsMissingProfile(testInstance *testing.T) {
	repositoryAPI := &fakeRepositoryAPI{
		listPages: []*awscodecommit.ListRepositoriesOutput{
			{
				Repositories: []codecommittypes.RepositoryNameIdPair{
					{RepositoryName: aws.String(testFirstRepositoryNameConstant)},
				},
			},
		},
	}

	provider := newProviderForTest(testInstance, repositoryAPI, "")

	descriptors, listError := provider.ListRepositories(context.Background())
	require.NoError(testInstance, listError)
	require.Equal(testInstance, testExpectedPlainCloneURLConstant, descriptors[0].CloneURL)
}

func TestProviderGetRepositoryClassifiesAbsence(testInstance *testing.T) {
	repositoryAPI := &fakeRepositoryAPI{
		getError: &codecommittypes.RepositoryDoesNotExistException{},
	}

	provider := newProviderForTest(testInstance, repositoryAPI, testProfileNameConstant)

	_, getError := provider.GetRepository(context.Background(), testMissingRepositoryNameConstant)
	require.Error(testInstance, getError)
	require.ErrorIs(testInstance, getError, platform.ErrRepositoryNotFound)
}

func TestProviderGetRepositoryReturnsDetails(testInstance *testing.T) {
	repositoryAPI := &fakeRepositoryAPI{
		getOutput: &awscodecommit.GetRepositoryOutput{
			RepositoryMetadata: &codecommittypes.RepositoryMetadata{
				RepositoryName:        aws.String(testFirstRepositoryNameConstant),
				RepositoryDescription: aws.String(testRepositoryDescriptionConstant),
			},
		},
	}

	provider := newProviderForTest(testInstance, repositoryAPI, testProfileNameConstant)

	descriptor, getError := provider.GetRepository(context.Background(), testFirstRepositoryNameConstant)
	require.NoError(testInstance, getError)
	require.Equal(testInstance, testRepositoryDescriptionConstant, descriptor.Description)
	require.Equal(testInstance, testExpectedProfileCloneURLConstant, descriptor.CloneURL)
}

func TestProviderCreateRepositoryClassifiesDuplicates(testInstance *testing.T) {
	repositoryAPI := &fakeRepositoryAPI{
		createError: &codecommittypes.RepositoryNameExistsException{},
	}

	provider := newProviderForTest(testInstance, repositoryAPI, testProfileNameConstant)

	_, createError := provider.CreateRepository(context.Background(), testFirstRepositoryNameConstant, testRepositoryDescriptionConstant)
	require.Error(testInstance, createError)
	require.ErrorIs(testInstance, createError, platform.ErrRepositoryAlreadyExists)
}

func TestProviderCreateRepositoryCarriesDescription(testInstance *testing.T) {
	repositoryAPI := &fakeRepositoryAPI{
		createOutput: &awscodecommit.CreateRepositoryOutput{
			RepositoryMetadata: &codecommittypes.RepositoryMetadata{
				RepositoryName:        aws.String(testFirstRepositoryNameConstant),
				RepositoryDescription: aws.String(testRepositoryDescriptionConstant),
			},
		},
	}

	provider := newProviderForTest(testInstance, repositoryAPI, testProfileNameConstant)

	descriptor, createError := provider.CreateRepository(context.Background(), testFirstRepositoryNameConstant, testRepositoryDescriptionConstant)
	require.NoError(testInstance, createError)
	require.Len(testInstance, repositoryAPI.recordedCreates, 1)
	require.Equal(testInstance, testRepositoryDescriptionConstant, aws.ToString(repositoryAPI.recordedCreates[0].RepositoryDescription))
	require.Equal(testInstance, testExpectedProfileCloneURLConstant, descriptor.CloneURL)
	require.Equal(testInstance, testRepositoryDescriptionConstant, descriptor.Description)
}

func TestProviderRequiresRepositoryClient(testInstance *testing.T) {
	_, creationError := codecommit.NewProviderFromDependencies(codecommit.Dependencies{})
	require.Error(testInstance, creationError)
}
