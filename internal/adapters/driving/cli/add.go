package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var addMeta []string

var addCmd = &cobra.Command{
	Use:   "add [file]",
	Short: "Ingest a document",
	Long: `Reads a file, splits it into sentence chunks, embeds every chunk
and stores the result. Pass "-" to read from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringArrayVarP(&addMeta, "meta", "m", nil, "metadata entry as key=value (repeatable)")
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	if retriever == nil {
		return errors.New("retrieval service not configured")
	}

	content, err := readSource(cmd, args[0])
	if err != nil {
		return err
	}

	metadata, err := parseMeta(addMeta)
	if err != nil {
		return err
	}

	id, err := retriever.AddDocument(context.Background(), content, metadata)
	if err != nil {
		return fmt.Errorf("add failed: %w", err)
	}

	cmd.Printf("Added document %s\n", id)
	return nil
}

func readSource(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

func parseMeta(entries []string) (map[string]any, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	metadata := make(map[string]any, len(entries))
	for _, entry := range entries {
		key, value, ok := strings.Cut(entry, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid metadata entry %q, expected key=value", entry)
		}
		metadata[key] = value
	}
	return metadata, nil
}
