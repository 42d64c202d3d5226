package flags

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func TestConfig_InitConfigFile_EnvVars(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected string
	}{
		{
			name:     "env var value with extra white space",
			value:    "  /custom/path/fingate.toml  ",
			expected: "/custom/path/fingate.toml",
		},
		{
			name:     "env var missing",
			value:    "",
			expected: DefaultConfigFile,
		},
		{
			name:     "env var only white space",
			value:    "   ",
			expected: DefaultConfigFile,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(EnvVarConfigFile, tc.value)
			t.Cleanup(func() {
				ConfigFile = ""
			})

			fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
			initConfigFile(fs)

			require.Equal(t, tc.expected, ConfigFile)
			flag := fs.Lookup(FlagNameConfigFile)
			require.NotNil(t, flag)
			require.Equal(t, tc.expected, flag.Value.String())
		})
	}
}

func TestConfig_InitLogger_EnvVars(t *testing.T) {
	tests := []struct {
		name          string
		logPathValue  string
		logLevelValue string
		expectedPath  string
		expectedLevel string
	}{
		{
			name:          "both env vars set with extra whitespace",
			logPathValue:  "  /var/log/fingate.log  ",
			logLevelValue: "  DEBUG  ",
			expectedPath:  "/var/log/fingate.log",
			expectedLevel: "debug",
		},
		{
			name:          "env vars set to only whitespace",
			logPathValue:  "   ",
			logLevelValue: "   ",
			expectedPath:  DefaultLogPath,
			expectedLevel: DefaultLogLevel,
		},
		{
			name:          "no env vars set",
			expectedPath:  DefaultLogPath,
			expectedLevel: DefaultLogLevel,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(EnvVarLogPath, tc.logPathValue)
			t.Setenv(EnvVarLogLevel, tc.logLevelValue)
			t.Cleanup(func() {
				LogPath = ""
				LogLevel = ""
			})

			fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
			initLogger(fs)

			require.Equal(t, tc.expectedPath, LogPath)
			require.Equal(t, tc.expectedLevel, LogLevel)
		})
	}
}

func TestConfig_ConfigFile_FlagPrecedence(t *testing.T) {
	t.Setenv(EnvVarConfigFile, "/env/path/fingate.toml")
	t.Cleanup(func() {
		ConfigFile = ""
	})

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	initConfigFile(fs)
	require.Equal(t, "/env/path/fingate.toml", ConfigFile)

	require.NoError(t, fs.Parse([]string{"--" + FlagNameConfigFile, "/flag/path/fingate.toml"}))
	require.Equal(t, "/flag/path/fingate.toml", ConfigFile)
}

func TestFromEnv(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected string
	}{
		{name: "set", value: "trace", expected: "trace"},
		{name: "trimmed", value: "\tinfo\n", expected: "info"},
		{name: "blank", value: "  ", expected: "fallback"},
		{name: "empty", value: "", expected: "fallback"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("FINGATE_TEST_FROM_ENV", tc.value)
			require.Equal(t, tc.expected, fromEnv("FINGATE_TEST_FROM_ENV", "fallback"))
		})
	}
}
