package transport

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mozilla-ai/fingate/internal/domain"
)

func TestError_FailureKind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind Kind
		want domain.FailureKind
	}{
		{KindTimeout, domain.FailureTimeout},
		{KindUnauthorized, domain.FailureUnauthorized},
		{KindProtocol, domain.FailureProtocol},
		{KindUnreachable, domain.FailureUnreachable},
		{KindCanceled, domain.FailureCanceled},
	}

	for _, tc := range tests {
		t.Run(string(tc.kind), func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, (&Error{Kind: tc.kind}).FailureKind())
		})
	}
}

func TestError_Error(t *testing.T) {
	t.Parallel()

	require.Equal(t, "protocol_error: rpc error -32601: no such tool",
		(&Error{Kind: KindProtocol, Status: 200, Code: CodeMethodNotFound, Message: "no such tool"}).Error())
	require.Equal(t, "unauthorized: http status 401: bad key",
		(&Error{Kind: KindUnauthorized, Status: 401, Message: "bad key"}).Error())
	require.Equal(t, "timeout: request timed out",
		(&Error{Kind: KindTimeout, Message: "request timed out"}).Error())
}

func TestAsError(t *testing.T) {
	t.Parallel()

	cause := errors.New("dial tcp: connection refused")
	wrapped := fmt.Errorf("calling server: %w", newError(KindUnreachable, "server unreachable", cause))

	te, ok := AsError(wrapped)
	require.True(t, ok)
	require.Equal(t, KindUnreachable, te.Kind)
	require.ErrorIs(t, wrapped, cause)

	_, ok = AsError(errors.New("plain"))
	require.False(t, ok)
}
