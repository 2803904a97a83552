// Package providers selects and connects the platform provider matching a
// platform configuration.
package providers

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/repomirror/internal/platform"
	"github.com/temirov/repomirror/internal/platform/codecommit"
	"github.com/temirov/repomirror/internal/platform/github"
	"github.com/temirov/repomirror/internal/platform/gitlab"
)

const (
	executorNotConfiguredMessageConstant = "command executor not configured"
	loggerNotConfiguredMessageConstant   = "logger not configured"
)

// Construction sentinels.
var (
	ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)
	ErrLoggerNotConfigured   = errors.New(loggerNotConfiguredMessageConstant)
)

// Factory connects providers for the supported hosting platforms.
type Factory struct {
	logger   *zap.Logger
	executor github.CommandExecutor
}

// NewFactory constructs a Factory from a logger and a GitHub CLI executor.
func NewFactory(logger *zap.Logger, executor github.CommandExecutor) (*Factory, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}

	return &Factory{logger: logger, executor: executor}, nil
}

// CreateProvider connects the provider named by the configuration, validating
// platform credentials where the platform supports it.
func (factory *Factory) CreateProvider(executionContext context.Context, configuration platform.Configuration) (platform.Provider, error) {
	platformName := platform.Type(strings.ToLower(strings.TrimSpace(configuration.Platform)))

	switch platformName {
	case platform.PlatformCodeCommit:
		return codecommit.NewProvider(executionContext, factory.logger, codecommit.Settings{
			Profile: configuration.Profile,
			Region:  configuration.Region,
		})
	case platform.PlatformGitHub:
		return github.NewProvider(github.Dependencies{
			Logger:   factory.logger,
			Executor: factory.executor,
			Settings: github.Settings{
				Token: configuration.Token,
				Host:  configuration.Host,
				Owner: configuration.Owner,
			},
		})
	case platform.PlatformGitLab:
		return gitlab.NewProvider(executionContext, factory.logger, gitlab.Settings{
			Token: configuration.Token,
			Host:  configuration.Host,
			Owner: configuration.Owner,
		})
	default:
		return nil, platform.UnsupportedPlatformError{Platform: configuration.Platform}
	}
}
