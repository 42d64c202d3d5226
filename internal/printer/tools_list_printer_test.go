package printer

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestToolsListPrinter_Item(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		result   ToolsListResult
		expected string
	}{
		{
			name: "server with multiple tools",
			result: ToolsListResult{
				Server:  "market-data",
				Enabled: true,
				Tools:   []string{"get_quotes", "get_ltp", "get_ohlc"},
				Count:   3,
			},
			expected: "Tools for 'market-data' (3 total):\n  get_quotes\n  get_ltp\n  get_ohlc\n",
		},
		{
			name: "server with single tool",
			result: ToolsListResult{
				Server:  "payments",
				Enabled: true,
				Tools:   []string{"get_balance"},
				Count:   1,
			},
			expected: "Tools for 'payments' (1 total):\n  get_balance\n",
		},
		{
			name: "disabled server",
			result: ToolsListResult{
				Server:  "payments",
				Enabled: false,
				Tools:   []string{"list_customers"},
				Count:   1,
			},
			expected: "Tools for 'payments' (1 total) demo mode:\n  list_customers\n",
		},
		{
			name: "server with no tools",
			result: ToolsListResult{
				Server:  "empty-server",
				Enabled: true,
				Tools:   []string{},
				Count:   0,
			},
			expected: "Tools for 'empty-server' (0 total):\n  (No tools allowed)\n",
		},
		{
			name: "server with nil tools",
			result: ToolsListResult{
				Server:  "nil-tools-server",
				Enabled: true,
				Tools:   nil,
				Count:   0,
			},
			expected: "Tools for 'nil-tools-server' (0 total):\n  (No tools allowed)\n",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			printer := &ToolsListPrinter{}

			err := printer.Item(&buf, tc.result)
			require.NoError(t, err)

			require.Equal(t, tc.expected, buf.String())
		})
	}
}

func TestToolsListPrinter_HeaderFooter(t *testing.T) {
	t.Parallel()

	t.Run("custom header", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		printer := &ToolsListPrinter{}

		printer.SetHeader(func(w io.Writer, count int) {
			_, _ = w.Write([]byte("=== HEADER ===\n"))
		})

		printer.Header(&buf, 1)
		require.Equal(t, "=== HEADER ===\n", buf.String())
	})

	t.Run("custom footer", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		printer := &ToolsListPrinter{}

		printer.SetFooter(func(w io.Writer, count int) {
			_, _ = w.Write([]byte("=== FOOTER ===\n"))
		})

		printer.Footer(&buf, 1)
		require.Equal(t, "=== FOOTER ===\n", buf.String())
	})

	t.Run("no header when not set", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		printer := &ToolsListPrinter{}

		printer.Header(&buf, 1)
		require.Empty(t, buf.String())
	})

	t.Run("no footer when not set", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		printer := &ToolsListPrinter{}

		printer.Footer(&buf, 1)
		require.Empty(t, buf.String())
	})
}
