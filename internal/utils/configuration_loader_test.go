package utils_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/repomirror/internal/utils"
)

const (
	testConfigurationNameConstant        = "config"
	testConfigurationTypeConstant        = "yaml"
	testEnvironmentPrefixConstant        = "REPOMIRRORTEST"
	testConfigurationFileNameConstant    = "config.yaml"
	testConfigurationContentConstant     = "common:\n  log_level: debug\n"
	testDefaultLogLevelValueConstant     = "info"
	testCommonLogLevelKeyConstant        = "common.log_level"
	testExplicitFileCaseNameConstant     = "explicit_configuration_file"
	testMissingFileCaseNameConstant      = "missing_configuration_file_uses_defaults"
	testMalformedFileCaseNameConstant    = "malformed_configuration_file"
	testMalformedConfigurationConstant   = "common: [\n"
	testEnvironmentOverrideCaseConstant  = "environment_override"
	testEnvironmentVariableNameConstant  = "REPOMIRRORTEST_COMMON_LOG_LEVEL"
	testEnvironmentVariableValueConstant = "error"
)

type testConfiguration struct {
	Common struct {
		LogLevel string `mapstructure:"log_level"`
	} `mapstructure:"common"`
}

func TestConfigurationLoaderLoadConfiguration(testInstance *testing.T) {
	testCases := []struct {
		name                string
		configurationData   string
		useConfigurationFle bool
		environmentValue    string
		expectedLogLevel    string
		expectError         bool
	}{
		{
			name:                testExplicitFileCaseNameConstant,
			configurationData:   testConfigurationContentConstant,
			useConfigurationFle: true,
			expectedLogLevel:    "debug",
		},
		{
			name:             testMissingFileCaseNameConstant,
			expectedLogLevel: testDefaultLogLevelValueConstant,
		},
		{
			name:                testMalformedFileCaseNameConstant,
			configurationData:   testMalformedConfigurationConstant,
			useConfigurationFle: true,
			expectError:         true,
		},
		{
			name:             testEnvironmentOverrideCaseConstant,
			environmentValue: testEnvironmentVariableValueConstant,
			expectedLogLevel: testEnvironmentVariableValueConstant,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			temporaryDirectory := testInstance.TempDir()

			configurationFilePath := ""
			if testCase.useConfigurationFle {
				configurationFilePath = filepath.Join(temporaryDirectory, testConfigurationFileNameConstant)
				writeError := os.WriteFile(configurationFilePath, []byte(testCase.configurationData), 0o600)
				require.NoError(testInstance, writeError)
			}

			if len(testCase.environmentValue) > 0 {
				testInstance.Setenv(testEnvironmentVariableNameConstant, testCase.environmentValue)
			}

			loader := utils.NewConfigurationLoader(
				testConfigurationNameConstant,
				testConfigurationTypeConstant,
				testEnvironmentPrefixConstant,
				[]string{temporaryDirectory},
			)

			defaultValues := map[string]any{testCommonLogLevelKeyConstant: testDefaultLogLevelValueConstant}

			var loadedTarget testConfiguration
			loadedMetadata, loadError := loader.LoadConfiguration(configurationFilePath, defaultValues, &loadedTarget)

			if testCase.expectError {
				require.Error(testInstance, loadError)
				return
			}

			require.NoError(testInstance, loadError)
			require.Equal(testInstance, testCase.expectedLogLevel, loadedTarget.Common.LogLevel)

			if testCase.useConfigurationFle {
				require.Equal(testInstance, configurationFilePath, loadedMetadata.ConfigFileUsed)
			}
		})
	}
}
