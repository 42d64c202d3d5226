package options

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mozilla-ai/fingate/internal/config"
)

type fakeLoader struct {
	config.Loader
}

type fakeInitializer struct {
	config.Initializer
}

func TestDefaultOptions(t *testing.T) {
	t.Parallel()

	opts := defaultOptions()

	require.NotNil(t, opts.ConfigLoader)
	require.NotNil(t, opts.ConfigInitializer)
	require.NotNil(t, opts.LookupEnv)
}

func TestNewOptions_NoOverrides(t *testing.T) {
	t.Parallel()

	opts, err := NewOptions()
	require.NoError(t, err)

	require.NotNil(t, opts.ConfigLoader)
	require.NotNil(t, opts.ConfigInitializer)
	require.NotNil(t, opts.LookupEnv)
}

func TestNewOptions_WithOverrides(t *testing.T) {
	t.Parallel()

	loader := &fakeLoader{}
	initializer := &fakeInitializer{}
	lookup := func(string) (string, bool) { return "secret", true }

	opts, err := NewOptions(
		WithConfigLoader(loader),
		WithConfigInitializer(initializer),
		WithLookupEnv(lookup),
	)
	require.NoError(t, err)

	require.Equal(t, loader, opts.ConfigLoader)
	require.Equal(t, initializer, opts.ConfigInitializer)

	v, ok := opts.LookupEnv("KITE_API_KEY")
	require.True(t, ok)
	require.Equal(t, "secret", v)
}

func TestNewOptions_WithNilOption(t *testing.T) {
	t.Parallel()

	opts, err := NewOptions(nil)
	require.NoError(t, err)
	require.NotNil(t, opts.ConfigLoader)
}

func TestNewOptions_WithFailingOption(t *testing.T) {
	t.Parallel()

	badOpt := func(*CmdOptions) error {
		return errors.New("fail")
	}

	_, err := NewOptions(badOpt)
	require.EqualError(t, err, "fail")
}
