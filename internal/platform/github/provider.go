// Package github implements the GitHub platform provider on top of the gh CLI.
//
// Authentication follows gh's own resolution; a configured token or custom
// hostname is injected through GH_TOKEN and GH_HOST for every invocation.
package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/repomirror/internal/execshell"
	"github.com/temirov/repomirror/internal/platform"
)

const (
	repoSubcommandConstant                  = "repo"
	listSubcommandConstant                  = "list"
	viewSubcommandConstant                  = "view"
	createSubcommandConstant                = "create"
	apiSubcommandConstant                   = "api"
	jsonFlagConstant                        = "--json"
	limitFlagConstant                       = "--limit"
	privateFlagConstant                     = "--private"
	descriptionFlagConstant                 = "--description"
	jqFlagConstant                          = "--jq"
	viewerEndpointConstant                  = "user"
	viewerLoginQueryConstant                = ".login"
	repositoryListLimitConstant             = "1000"
	repositoryJSONFieldsConstant            = "name,description,sshUrl"
	tokenEnvironmentVariableConstant        = "GH_TOKEN"
	hostEnvironmentVariableConstant         = "GH_HOST"
	defaultHostConstant                     = "github.com"
	ownerRepositoryTemplateConstant         = "%s/%s"
	sshCloneURLTemplateConstant             = "git@%s:%s/%s.git"
	executorNotConfiguredMessageConstant    = "github executor not configured"
	repositoryNotFoundFragmentConstant      = "could not resolve to a repository"
	repositoryExistsFragmentConstant        = "already exists"
	viewerResolvedMessageConstant           = "GitHub viewer resolved"
	logFieldOwnerConstant                   = "owner"
	listRepositoriesOperationNameConstant   = OperationName("ListRepositories")
	getRepositoryOperationNameConstant      = OperationName("GetRepository")
	createRepositoryOperationNameConstant   = OperationName("CreateRepository")
	resolveOwnerOperationNameConstant       = OperationName("ResolveOwner")
	operationErrorTemplateConstant          = "%s operation failed: %v"
	responseDecodingErrorTemplateConstant   = "%s response decoding failed: %v"
	repositoryNotFoundErrorTemplateConstant = "repository %s: %w"
	repositoryExistsErrorTemplateConstant   = "repository %s: %w"
)

// OperationName describes a named gh workflow supported by the provider.
type OperationName string

// OperationError wraps execution issues for gh operations.
type OperationError struct {
	Operation OperationName
	Cause     error
}

// Error describes the operation failure.
func (operationError OperationError) Error() string {
	return fmt.Sprintf(operationErrorTemplateConstant, operationError.Operation, operationError.Cause)
}

// Unwrap exposes the underlying cause.
func (operationError OperationError) Unwrap() error {
	return operationError.Cause
}

// ResponseDecodingError indicates JSON decoding failures.
type ResponseDecodingError struct {
	Operation OperationName
	Cause     error
}

// Error describes the decoding failure.
func (decodingError ResponseDecodingError) Error() string {
	return fmt.Sprintf(responseDecodingErrorTemplateConstant, decodingError.Operation, decodingError.Cause)
}

// Unwrap exposes the underlying JSON error.
func (decodingError ResponseDecodingError) Unwrap() error {
	return decodingError.Cause
}

// CommandExecutor is the minimal interface required from execshell.ShellExecutor.
type CommandExecutor interface {
	ExecuteGitHubCLI(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Settings configures a GitHub connection.
type Settings struct {
	Token string
	Host  string
	Owner string
}

// Dependencies describes the collaborators required by the provider.
type Dependencies struct {
	Logger   *zap.Logger
	Executor CommandExecutor
	Settings Settings
}

// Provider implements platform.Provider through gh invocations.
type Provider struct {
	logger        *zap.Logger
	executor      CommandExecutor
	token         string
	host          string
	owner         string
	resolvedOwner string
}

// ErrExecutorNotConfigured indicates the provider was constructed without a gh executor.
var ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)

// NewProvider constructs a GitHub provider from the supplied collaborators.
func NewProvider(dependencies Dependencies) (*Provider, error) {
	if dependencies.Executor == nil {
		return nil, ErrExecutorNotConfigured
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Provider{
		logger:   logger,
		executor: dependencies.Executor,
		token:    strings.TrimSpace(dependencies.Settings.Token),
		host:     strings.TrimSpace(dependencies.Settings.Host),
		owner:    strings.TrimSpace(dependencies.Settings.Owner),
	}, nil
}

type repositoryResponse struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	SSHURL      string `json:"sshUrl"`
}

// ListRepositories enumerates the owner's repositories via gh repo list.
func (provider *Provider) ListRepositories(executionContext context.Context) ([]platform.RepositoryDescriptor, error) {
	repositoryOwner, ownerError := provider.resolveOwner(executionContext)
	if ownerError != nil {
		return nil, ownerError
	}

	commandDetails := execshell.CommandDetails{
		Arguments: []string{
			repoSubcommandConstant,
			listSubcommandConstant,
			repositoryOwner,
			limitFlagConstant,
			repositoryListLimitConstant,
			jsonFlagConstant,
			repositoryJSONFieldsConstant,
		},
		EnvironmentVariables: provider.commandEnvironment(),
	}

	executionResult, executionError := provider.executor.ExecuteGitHubCLI(executionContext, commandDetails)
	if executionError != nil {
		return nil, OperationError{Operation: listRepositoriesOperationNameConstant, Cause: executionError}
	}

	var listedRepositories []repositoryResponse
	decodingError := json.Unmarshal([]byte(executionResult.StandardOutput), &listedRepositories)
	if decodingError != nil {
		return nil, ResponseDecodingError{Operation: listRepositoriesOperationNameConstant, Cause: decodingError}
	}

	descriptors := make([]platform.RepositoryDescriptor, 0, len(listedRepositories))
	for _, listedRepository := range listedRepositories {
		descriptors = append(descriptors, platform.RepositoryDescriptor{
			Name:        listedRepository.Name,
			Description: listedRepository.Description,
			CloneURL:    listedRepository.SSHURL,
		})
	}

	return descriptors, nil
}

// GetRepository resolves one repository via gh repo view.
func (provider *Provider) GetRepository(executionContext context.Context, repositoryName string) (platform.RepositoryDescriptor, error) {
	repositoryOwner, ownerError := provider.resolveOwner(executionContext)
	if ownerError != nil {
		return platform.RepositoryDescriptor{}, ownerError
	}

	repositoryIdentifier := fmt.Sprintf(ownerRepositoryTemplateConstant, repositoryOwner, repositoryName)
	commandDetails := execshell.CommandDetails{
		Arguments: []string{
			repoSubcommandConstant,
			viewSubcommandConstant,
			repositoryIdentifier,
			jsonFlagConstant,
			repositoryJSONFieldsConstant,
		},
		EnvironmentVariables: provider.commandEnvironment(),
	}

	executionResult, executionError := provider.executor.ExecuteGitHubCLI(executionContext, commandDetails)
	if executionError != nil {
		if isRepositoryMissingFailure(executionError) {
			return platform.RepositoryDescriptor{}, fmt.Errorf(repositoryNotFoundErrorTemplateConstant, repositoryIdentifier, platform.ErrRepositoryNotFound)
		}
		return platform.RepositoryDescriptor{}, OperationError{Operation: getRepositoryOperationNameConstant, Cause: executionError}
	}

	var viewedRepository repositoryResponse
	decodingError := json.Unmarshal([]byte(executionResult.StandardOutput), &viewedRepository)
	if decodingError != nil {
		return platform.RepositoryDescriptor{}, ResponseDecodingError{Operation: getRepositoryOperationNameConstant, Cause: decodingError}
	}

	return platform.RepositoryDescriptor{
		Name:        viewedRepository.Name,
		Description: viewedRepository.Description,
		CloneURL:    viewedRepository.SSHURL,
	}, nil
}

// CreateRepository creates a private repository via gh repo create.
func (provider *Provider) CreateRepository(executionContext context.Context, repositoryName string, repositoryDescription string) (platform.RepositoryDescriptor, error) {
	repositoryOwner, ownerError := provider.resolveOwner(executionContext)
	if ownerError != nil {
		return platform.RepositoryDescriptor{}, ownerError
	}

	repositoryIdentifier := fmt.Sprintf(ownerRepositoryTemplateConstant, repositoryOwner, repositoryName)
	commandArguments := []string{
		repoSubcommandConstant,
		createSubcommandConstant,
		repositoryIdentifier,
		privateFlagConstant,
	}
	if len(repositoryDescription) > 0 {
		commandArguments = append(commandArguments, descriptionFlagConstant, repositoryDescription)
	}

	commandDetails := execshell.CommandDetails{
		Arguments:            commandArguments,
		EnvironmentVariables: provider.commandEnvironment(),
	}

	_, executionError := provider.executor.ExecuteGitHubCLI(executionContext, commandDetails)
	if executionError != nil {
		if isRepositoryExistsFailure(executionError) {
			return platform.RepositoryDescriptor{}, fmt.Errorf(repositoryExistsErrorTemplateConstant, repositoryIdentifier, platform.ErrRepositoryAlreadyExists)
		}
		return platform.RepositoryDescriptor{}, OperationError{Operation: createRepositoryOperationNameConstant, Cause: executionError}
	}

	return platform.RepositoryDescriptor{
		Name:        repositoryName,
		Description: repositoryDescription,
		CloneURL:    provider.buildSSHCloneURL(repositoryOwner, repositoryName),
	}, nil
}

// resolveOwner returns the configured owner, falling back to the authenticated viewer login.
func (provider *Provider) resolveOwner(executionContext context.Context) (string, error) {
	if len(provider.owner) > 0 {
		return provider.owner, nil
	}
	if len(provider.resolvedOwner) > 0 {
		return provider.resolvedOwner, nil
	}

	commandDetails := execshell.CommandDetails{
		Arguments: []string{
			apiSubcommandConstant,
			viewerEndpointConstant,
			jqFlagConstant,
			viewerLoginQueryConstant,
		},
		EnvironmentVariables: provider.commandEnvironment(),
	}

	executionResult, executionError := provider.executor.ExecuteGitHubCLI(executionContext, commandDetails)
	if executionError != nil {
		return "", OperationError{Operation: resolveOwnerOperationNameConstant, Cause: executionError}
	}

	viewerLogin := strings.TrimSpace(executionResult.StandardOutput)
	if len(viewerLogin) == 0 {
		return "", OperationError{Operation: resolveOwnerOperationNameConstant, Cause: platform.ErrRepositoryNotFound}
	}

	provider.resolvedOwner = viewerLogin
	provider.logger.Debug(viewerResolvedMessageConstant, zap.String(logFieldOwnerConstant, viewerLogin))
	return viewerLogin, nil
}

func (provider *Provider) commandEnvironment() map[string]string {
	environmentVariables := map[string]string{}
	if len(provider.token) > 0 {
		environmentVariables[tokenEnvironmentVariableConstant] = provider.token
	}
	if len(provider.host) > 0 {
		environmentVariables[hostEnvironmentVariableConstant] = provider.host
	}
	if len(environmentVariables) == 0 {
		return nil
	}
	return environmentVariables
}

func (provider *Provider) buildSSHCloneURL(repositoryOwner string, repositoryName string) string {
	cloneHost := provider.host
	if len(cloneHost) == 0 {
		cloneHost = defaultHostConstant
	}
	return fmt.Sprintf(sshCloneURLTemplateConstant, cloneHost, repositoryOwner, repositoryName)
}

func isRepositoryMissingFailure(executionError error) bool {
	return commandFailureContains(executionError, repositoryNotFoundFragmentConstant)
}

func isRepositoryExistsFailure(executionError error) bool {
	return commandFailureContains(executionError, repositoryExistsFragmentConstant)
}

func commandFailureContains(executionError error, fragment string) bool {
	commandFailure := execshell.CommandFailedError{}
	if !errors.As(executionError, &commandFailure) {
		return false
	}
	return strings.Contains(strings.ToLower(commandFailure.Result.StandardError), fragment)
}
