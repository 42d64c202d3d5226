//go:build docsgen_cli
// +build docsgen_cli

package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFrontMatter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		filename string
		want     string
	}{
		{"root", "docs/cli/fingate.md", "---\ntitle: \"fingate\"\nsection: cli\n---\n\n"},
		{"subcommand", "docs/cli/fingate_call.md", "---\ntitle: \"fingate call\"\nsection: cli\n---\n\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, frontMatter(tc.filename))
		})
	}
}

func TestLink(t *testing.T) {
	t.Parallel()

	require.Equal(t, "./fingate_status.md", link("fingate_status.md"))
}
