package utils_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/repomirror/internal/utils"
)

const (
	testSupportedLevelCaseNameConstant   = "supported_level"
	testWarningAliasCaseNameConstant     = "warning_alias"
	testUppercaseLevelCaseNameConstant   = "uppercase_level"
	testUnsupportedLevelCaseNameConstant = "unsupported_level"
	testUnsupportedFormatCaseConstant    = "unsupported_format"
	testUnknownLevelValueConstant        = "verbose"
	testUnknownFormatValueConstant       = "pretty"
)

func TestLoggerFactoryCreateLogger(testInstance *testing.T) {
	testCases := []struct {
		name        string
		logLevel    utils.LogLevel
		logFormat   utils.LogFormat
		expectError bool
	}{
		{
			name:      testSupportedLevelCaseNameConstant,
			logLevel:  utils.LogLevelDebug,
			logFormat: utils.LogFormatStructured,
		},
		{
			name:      testWarningAliasCaseNameConstant,
			logLevel:  utils.LogLevel("warning"),
			logFormat: utils.LogFormatConsole,
		},
		{
			name:      testUppercaseLevelCaseNameConstant,
			logLevel:  utils.LogLevel("INFO"),
			logFormat: utils.LogFormatStructured,
		},
		{
			name:        testUnsupportedLevelCaseNameConstant,
			logLevel:    utils.LogLevel(testUnknownLevelValueConstant),
			logFormat:   utils.LogFormatStructured,
			expectError: true,
		},
		{
			name:        testUnsupportedFormatCaseConstant,
			logLevel:    utils.LogLevelInfo,
			logFormat:   utils.LogFormat(testUnknownFormatValueConstant),
			expectError: true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			factory := utils.NewLoggerFactory()
			logger, creationError := factory.CreateLogger(testCase.logLevel, testCase.logFormat)

			if testCase.expectError {
				require.Error(testInstance, creationError)
				require.Nil(testInstance, logger)
				return
			}

			require.NoError(testInstance, creationError)
			require.NotNil(testInstance, logger)
		})
	}
}

func TestNormalizeLogLevel(testInstance *testing.T) {
	require.Equal(testInstance, utils.LogLevelWarn, utils.NormalizeLogLevel(utils.LogLevel("WARNING")))
	require.Equal(testInstance, utils.LogLevelError, utils.NormalizeLogLevel(utils.LogLevel(" error ")))
}
