package printer

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mozilla-ai/fingate/internal/api"
)

func TestToolResultPrinter_Item(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		result   api.ToolResult
		expected string
	}{
		{
			name: "success",
			result: api.ToolResult{
				Kind:     "success",
				Server:   "market-data",
				Tool:     "get_ltp",
				Payload:  map[string]any{"ok": true},
				Latency:  "85ms",
				Attempts: 1,
			},
			expected: "✅ success  market-data/get_ltp  (85ms, 1 attempt)\n  {\n    \"ok\": true\n  }\n",
		},
		{
			name: "fallback",
			result: api.ToolResult{
				Kind:    "fallback",
				Server:  "payments",
				Tool:    "get_balance",
				Payload: map[string]any{"demo": true},
				Reason:  "disabled",
			},
			expected: "⚠️  fallback  payments/get_balance  (synthetic data, reason: disabled)\n  {\n    \"demo\": true\n  }\n",
		},
		{
			name: "failure",
			result: api.ToolResult{
				Kind:        "failure",
				Server:      "market-data",
				Tool:        "get_quotes",
				FailureKind: "timeout",
				Message:     "deadline exceeded",
				Attempts:    3,
			},
			expected: "❌ failure  market-data/get_quotes  (timeout after 3 attempts)\n  deadline exceeded\n",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			err := (&ToolResultPrinter{}).Item(&buf, tc.result)
			require.NoError(t, err)
			require.Equal(t, tc.expected, buf.String())
		})
	}
}

func TestToolResultPrinter_Item_UnencodablePayload(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := (&ToolResultPrinter{}).Item(&buf, api.ToolResult{Kind: "success", Payload: math.Inf(1)})
	require.ErrorContains(t, err, "failed to format payload")
}
