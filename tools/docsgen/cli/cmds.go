//go:build docsgen_cli
// +build docsgen_cli

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"github.com/mozilla-ai/fingate/cmd"
	internalcmd "github.com/mozilla-ai/fingate/internal/cmd"
	"github.com/mozilla-ai/fingate/internal/perms"
)

// docsPath is the CLI reference directory, next to docs/api which holds the OpenAPI document.
const docsPath = "./docs/cli/"

// main assumes it is run from the repository root.
func main() {
	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "fingate.docsgen.cli",
		Level:  hclog.Info,
		Output: os.Stderr,
	})

	if err := generate(); err != nil {
		logger.Error("Failed to generate CLI docs", "path", docsPath, "error", err)
		os.Exit(1)
	}

	logger.Info("CLI docs generated", "path", docsPath)
}

func generate() error {
	rootCmd, err := cmd.NewRootCmd(&internalcmd.BaseCmd{})
	if err != nil {
		return fmt.Errorf("failed to create root command: %w", err)
	}
	// Keep the output stable between runs.
	rootCmd.DisableAutoGenTag = true

	if err := os.RemoveAll(docsPath); err != nil {
		return fmt.Errorf("failed to clear docs directory: %w", err)
	}
	if err := os.MkdirAll(docsPath, perms.Directory); err != nil {
		return fmt.Errorf("failed to create docs directory: %w", err)
	}

	if err := doc.GenMarkdownTreeCustom(rootCmd, docsPath, frontMatter, link); err != nil {
		return err
	}

	return writeIndex(rootCmd)
}

// frontMatter titles each page after its command path, e.g. fingate_call.md becomes "fingate call".
func frontMatter(filename string) string {
	name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	return fmt.Sprintf("---\ntitle: %q\nsection: cli\n---\n\n", strings.ReplaceAll(name, "_", " "))
}

// link keeps cross references relative to the docs/cli directory.
func link(name string) string {
	return "./" + name
}

// writeIndex lists the top level commands with their short descriptions.
func writeIndex(root *cobra.Command) error {
	var b strings.Builder
	b.WriteString(frontMatter("index.md"))
	b.WriteString("# fingate CLI reference\n\n")
	fmt.Fprintf(&b, "- [%s](./%s.md): %s\n", root.Name(), root.Name(), root.Short)

	for _, c := range root.Commands() {
		if !c.IsAvailableCommand() || c.IsAdditionalHelpTopicCommand() {
			continue
		}
		page := strings.ReplaceAll(c.CommandPath(), " ", "_")
		fmt.Fprintf(&b, "- [%s](./%s.md): %s\n", c.CommandPath(), page, c.Short)
	}

	return os.WriteFile(filepath.Join(docsPath, "index.md"), []byte(b.String()), perms.RegularFile)
}
