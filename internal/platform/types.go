package platform

import (
	"context"
	"errors"
	"fmt"
)

const (
	platformCodeCommitStringConstant               = "codecommit"
	platformGitHubStringConstant                   = "github"
	platformGitLabStringConstant                   = "gitlab"
	repositoryNotFoundMessageConstant              = "repository not found"
	repositoryAlreadyExistsMessageConstant         = "repository already exists"
	unsupportedPlatformErrorTemplateConstant       = "unsupported platform: %s"
	credentialResolutionErrorTemplateConstant      = "%s credential resolution failed: %v"
	credentialResolutionPlainErrorTemplateConstant = "%s credential resolution failed"
)

// Type identifies a supported hosting platform.
type Type string

// Supported platforms.
const (
	PlatformCodeCommit Type = Type(platformCodeCommitStringConstant)
	PlatformGitHub     Type = Type(platformGitHubStringConstant)
	PlatformGitLab     Type = Type(platformGitLabStringConstant)
)

// RepositoryDescriptor describes one repository as reported by a platform.
//
// Listing may leave Description empty when the platform list API omits it;
// GetRepository always returns authoritative details.
type RepositoryDescriptor struct {
	Name        string
	Description string
	CloneURL    string
}

// Configuration captures connection settings for one platform endpoint.
// Profile and Region apply to CodeCommit; Token, Host, and Owner apply to
// GitHub and GitLab.
type Configuration struct {
	Platform string `mapstructure:"platform"`
	Profile  string `mapstructure:"profile"`
	Region   string `mapstructure:"region"`
	Token    string `mapstructure:"token"`
	Host     string `mapstructure:"host"`
	Owner    string `mapstructure:"owner"`
}

// Provider exposes the repository operations a hosting platform must support.
type Provider interface {
	// ListRepositories returns every repository visible to the configured
	// account in the platform's listing order, paginating to completion.
	ListRepositories(executionContext context.Context) ([]RepositoryDescriptor, error)
	// GetRepository resolves one repository by name; ErrRepositoryNotFound
	// reports absence.
	GetRepository(executionContext context.Context, repositoryName string) (RepositoryDescriptor, error)
	// CreateRepository creates a repository carrying the supplied description
	// verbatim; ErrRepositoryAlreadyExists reports name collisions.
	CreateRepository(executionContext context.Context, repositoryName string, repositoryDescription string) (RepositoryDescriptor, error)
}

// Classification sentinels returned by Provider implementations.
var (
	ErrRepositoryNotFound      = errors.New(repositoryNotFoundMessageConstant)
	ErrRepositoryAlreadyExists = errors.New(repositoryAlreadyExistsMessageConstant)
)

// UnsupportedPlatformError reports a platform name with no registered provider.
type UnsupportedPlatformError struct {
	Platform string
}

// Error names the unsupported platform.
func (unsupportedError UnsupportedPlatformError) Error() string {
	return fmt.Sprintf(unsupportedPlatformErrorTemplateConstant, unsupportedError.Platform)
}

// CredentialResolutionError reports a platform connection that could not be established.
type CredentialResolutionError struct {
	Platform Type
	Cause    error
}

// Error describes the failed credential resolution.
func (credentialError CredentialResolutionError) Error() string {
	if credentialError.Cause == nil {
		return fmt.Sprintf(credentialResolutionPlainErrorTemplateConstant, credentialError.Platform)
	}
	return fmt.Sprintf(credentialResolutionErrorTemplateConstant, credentialError.Platform, credentialError.Cause)
}

// Unwrap exposes the underlying cause.
func (credentialError CredentialResolutionError) Unwrap() error {
	return credentialError.Cause
}
