// Package gitlab implements the GitLab platform provider on top of the
// official REST client. Connections validate the token against the current
// user endpoint before any repository operation runs.
package gitlab

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	gitlabclient "gitlab.com/gitlab-org/api/client-go"
	"go.uber.org/zap"

	"github.com/temirov/repomirror/internal/platform"
)

const (
	defaultBaseURLConstant                  = "https://gitlab.com/"
	clientConstructionErrorTemplateConstant = "unable to construct GitLab client: %w"
	tokenValidationErrorTemplateConstant    = "token validation failed: %w"
	listProjectsErrorTemplateConstant       = "unable to list projects: %w"
	getProjectErrorTemplateConstant         = "unable to get project %s: %w"
	createProjectErrorTemplateConstant      = "unable to create project %s: %w"
	namespaceLookupErrorTemplateConstant    = "unable to resolve namespace %s: %w"
	namespaceMissingErrorTemplateConstant   = "namespace %s not found"
	duplicateProjectFragmentConstant        = "already been taken"
	tokenValidatedMessageConstant           = "GitLab token validated"
	logFieldUsernameConstant                = "username"
	logFieldHostConstant                    = "host"
	projectPathTemplateConstant             = "%s/%s"
)

// Settings configures a GitLab connection.
type Settings struct {
	Token string
	Host  string
	Owner string
}

// ProjectAPI is the subset of the GitLab projects service used by the provider.
type ProjectAPI interface {
	ListProjects(options *gitlabclient.ListProjectsOptions, requestOptions ...gitlabclient.RequestOptionFunc) ([]*gitlabclient.Project, *gitlabclient.Response, error)
	GetProject(projectIdentifier interface{}, options *gitlabclient.GetProjectOptions, requestOptions ...gitlabclient.RequestOptionFunc) (*gitlabclient.Project, *gitlabclient.Response, error)
	CreateProject(options *gitlabclient.CreateProjectOptions, requestOptions ...gitlabclient.RequestOptionFunc) (*gitlabclient.Project, *gitlabclient.Response, error)
}

// NamespaceAPI is the subset of the GitLab namespaces service used by the provider.
type NamespaceAPI interface {
	SearchNamespace(query string, requestOptions ...gitlabclient.RequestOptionFunc) ([]*gitlabclient.Namespace, *gitlabclient.Response, error)
}

// Dependencies describes the collaborators required by the provider.
type Dependencies struct {
	Logger          *zap.Logger
	ProjectClient   ProjectAPI
	NamespaceClient NamespaceAPI
	CurrentUsername string
	RepositoryOwner string
}

// Provider implements platform.Provider backed by the GitLab REST API.
type Provider struct {
	logger          *zap.Logger
	projectClient   ProjectAPI
	namespaceClient NamespaceAPI
	currentUsername string
	repositoryOwner string
}

// NewProviderFromDependencies constructs a provider from pre-built collaborators.
func NewProviderFromDependencies(dependencies Dependencies) *Provider {
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Provider{
		logger:          logger,
		projectClient:   dependencies.ProjectClient,
		namespaceClient: dependencies.NamespaceClient,
		currentUsername: dependencies.CurrentUsername,
		repositoryOwner: strings.TrimSpace(dependencies.RepositoryOwner),
	}
}

// NewProvider builds a REST client for the configured host and validates the
// token against the current-user endpoint.
func NewProvider(executionContext context.Context, logger *zap.Logger, settings Settings) (*Provider, error) {
	baseURL := strings.TrimSpace(settings.Host)
	if len(baseURL) == 0 {
		baseURL = defaultBaseURLConstant
	}

	client, clientError := gitlabclient.NewClient(settings.Token, gitlabclient.WithBaseURL(baseURL))
	if clientError != nil {
		return nil, platform.CredentialResolutionError{
			Platform: platform.PlatformGitLab,
			Cause:    fmt.Errorf(clientConstructionErrorTemplateConstant, clientError),
		}
	}

	currentUser, _, userError := client.Users.CurrentUser(gitlabclient.WithContext(executionContext))
	if userError != nil {
		return nil, platform.CredentialResolutionError{
			Platform: platform.PlatformGitLab,
			Cause:    fmt.Errorf(tokenValidationErrorTemplateConstant, userError),
		}
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	logger.Info(
		tokenValidatedMessageConstant,
		zap.String(logFieldUsernameConstant, currentUser.Username),
		zap.String(logFieldHostConstant, baseURL),
	)

	return NewProviderFromDependencies(Dependencies{
		Logger:          logger,
		ProjectClient:   client.Projects,
		NamespaceClient: client.Namespaces,
		CurrentUsername: currentUser.Username,
		RepositoryOwner: settings.Owner,
	}), nil
}

// ListRepositories enumerates owned projects, following pagination to completion.
func (provider *Provider) ListRepositories(executionContext context.Context) ([]platform.RepositoryDescriptor, error) {
	descriptors := []platform.RepositoryDescriptor{}

	listOptions := &gitlabclient.ListProjectsOptions{
		Owned:       gitlabclient.Ptr(true),
		ListOptions: gitlabclient.ListOptions{PerPage: 100},
	}
	for {
		projects, listResponse, listError := provider.projectClient.ListProjects(listOptions, gitlabclient.WithContext(executionContext))
		if listError != nil {
			return nil, fmt.Errorf(listProjectsErrorTemplateConstant, listError)
		}

		for _, project := range projects {
			descriptors = append(descriptors, descriptorFromProject(project))
		}

		if listResponse == nil || listResponse.NextPage == 0 {
			break
		}
		listOptions.Page = listResponse.NextPage
	}

	return descriptors, nil
}

// GetRepository resolves one project by its namespaced path.
func (provider *Provider) GetRepository(executionContext context.Context, repositoryName string) (platform.RepositoryDescriptor, error) {
	projectPath := provider.buildProjectPath(repositoryName)

	project, getResponse, getError := provider.projectClient.GetProject(projectPath, &gitlabclient.GetProjectOptions{}, gitlabclient.WithContext(executionContext))
	if getError != nil {
		if getResponse != nil && getResponse.StatusCode == http.StatusNotFound {
			return platform.RepositoryDescriptor{}, fmt.Errorf(getProjectErrorTemplateConstant, projectPath, platform.ErrRepositoryNotFound)
		}
		return platform.RepositoryDescriptor{}, fmt.Errorf(getProjectErrorTemplateConstant, projectPath, getError)
	}

	return descriptorFromProject(project), nil
}

// CreateRepository creates a private project in the configured namespace.
func (provider *Provider) CreateRepository(executionContext context.Context, repositoryName string, repositoryDescription string) (platform.RepositoryDescriptor, error) {
	createOptions := &gitlabclient.CreateProjectOptions{
		Name:       gitlabclient.Ptr(repositoryName),
		Visibility: gitlabclient.Ptr(gitlabclient.PrivateVisibility),
	}
	if len(repositoryDescription) > 0 {
		createOptions.Description = gitlabclient.Ptr(repositoryDescription)
	}

	namespaceIdentifier, namespaceError := provider.resolveNamespaceIdentifier(executionContext)
	if namespaceError != nil {
		return platform.RepositoryDescriptor{}, namespaceError
	}
	if namespaceIdentifier != 0 {
		createOptions.NamespaceID = gitlabclient.Ptr(namespaceIdentifier)
	}

	project, _, createError := provider.projectClient.CreateProject(createOptions, gitlabclient.WithContext(executionContext))
	if createError != nil {
		if strings.Contains(strings.ToLower(createError.Error()), duplicateProjectFragmentConstant) {
			return platform.RepositoryDescriptor{}, fmt.Errorf(createProjectErrorTemplateConstant, repositoryName, platform.ErrRepositoryAlreadyExists)
		}
		return platform.RepositoryDescriptor{}, fmt.Errorf(createProjectErrorTemplateConstant, repositoryName, createError)
	}

	return descriptorFromProject(project), nil
}

// resolveNamespaceIdentifier looks up the configured owner group; the zero
// identifier leaves the project in the authenticated user's namespace.
func (provider *Provider) resolveNamespaceIdentifier(executionContext context.Context) (int, error) {
	if len(provider.repositoryOwner) == 0 || provider.repositoryOwner == provider.currentUsername {
		return 0, nil
	}

	namespaces, _, searchError := provider.namespaceClient.SearchNamespace(provider.repositoryOwner, gitlabclient.WithContext(executionContext))
	if searchError != nil {
		return 0, fmt.Errorf(namespaceLookupErrorTemplateConstant, provider.repositoryOwner, searchError)
	}

	for _, namespace := range namespaces {
		if namespace.Path == provider.repositoryOwner || namespace.FullPath == provider.repositoryOwner {
			return namespace.ID, nil
		}
	}

	return 0, fmt.Errorf(namespaceMissingErrorTemplateConstant, provider.repositoryOwner)
}

func (provider *Provider) buildProjectPath(repositoryName string) string {
	if strings.Contains(repositoryName, "/") {
		return repositoryName
	}

	namespacePath := provider.repositoryOwner
	if len(namespacePath) == 0 {
		namespacePath = provider.currentUsername
	}
	return fmt.Sprintf(projectPathTemplateConstant, namespacePath, repositoryName)
}

func descriptorFromProject(project *gitlabclient.Project) platform.RepositoryDescriptor {
	return platform.RepositoryDescriptor{
		Name:        project.Name,
		Description: project.Description,
		CloneURL:    project.SSHURLToRepo,
	}
}
