package migration

import (
	"strings"

	"github.com/temirov/repomirror/internal/platform"
)

const (
	prefixSeparatorConstant             = "-"
	repositoryPrefixConfigurationKey    = ".repo_prefix"
	migrateAllConfigurationKeyConstant  = ".migrate_all"
	dryRunConfigurationKeyConstant      = ".dry_run"
	sourceConfigurationSegmentConstant  = ".source"
	destinationConfigurationSegment     = ".destination"
)

// Environment-only values are visible to viper's unmarshal only for keys with
// registered defaults, so every platform field gets one.
var platformConfigurationFieldKeys = []string{
	".platform",
	".profile",
	".region",
	".token",
	".host",
	".owner",
}

// CommandConfiguration captures persisted configuration for repository migration.
type CommandConfiguration struct {
	Source           platform.Configuration `mapstructure:"source"`
	Destination      platform.Configuration `mapstructure:"destination"`
	RepositoryPrefix string                 `mapstructure:"repo_prefix"`
	MigrateAll       bool                   `mapstructure:"migrate_all"`
	DryRun           bool                   `mapstructure:"dry_run"`
}

// DefaultCommandConfiguration returns baseline configuration values for migration.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{}
}

// DefaultConfigurationValues exposes viper defaults under the provided configuration key.
func DefaultConfigurationValues(configurationKey string) map[string]any {
	defaults := map[string]any{
		configurationKey + repositoryPrefixConfigurationKey:   "",
		configurationKey + migrateAllConfigurationKeyConstant: false,
		configurationKey + dryRunConfigurationKeyConstant:     false,
	}
	for _, platformSegment := range []string{sourceConfigurationSegmentConstant, destinationConfigurationSegment} {
		for _, fieldKey := range platformConfigurationFieldKeys {
			defaults[configurationKey+platformSegment+fieldKey] = ""
		}
	}
	return defaults
}

// Sanitize trims configured values.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.Source = sanitizePlatformConfiguration(configuration.Source)
	sanitized.Destination = sanitizePlatformConfiguration(configuration.Destination)
	sanitized.RepositoryPrefix = strings.TrimSpace(configuration.RepositoryPrefix)
	return sanitized
}

func sanitizePlatformConfiguration(configuration platform.Configuration) platform.Configuration {
	sanitized := configuration
	sanitized.Platform = strings.TrimSpace(configuration.Platform)
	sanitized.Profile = strings.TrimSpace(configuration.Profile)
	sanitized.Region = strings.TrimSpace(configuration.Region)
	sanitized.Token = strings.TrimSpace(configuration.Token)
	sanitized.Host = strings.TrimSpace(configuration.Host)
	sanitized.Owner = strings.TrimSpace(configuration.Owner)
	return sanitized
}

// NormalizeRepositoryPrefix guarantees a non-empty prefix ends with the
// separator so destination names read prefix-name.
func NormalizeRepositoryPrefix(repositoryPrefix string) string {
	trimmedPrefix := strings.TrimSpace(repositoryPrefix)
	if len(trimmedPrefix) == 0 {
		return ""
	}
	if strings.HasSuffix(trimmedPrefix, prefixSeparatorConstant) {
		return trimmedPrefix
	}
	return trimmedPrefix + prefixSeparatorConstant
}
