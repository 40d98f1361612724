package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Remove a document and all derived state",
	Long: `Removes a document together with its chunks, their index entries and
their cached embeddings.`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	if retriever == nil {
		return errors.New("retrieval service not configured")
	}

	existed, err := retriever.DeleteDocument(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	if !existed {
		cmd.Printf("Document not found: %s\n", args[0])
		return nil
	}
	cmd.Printf("Deleted document %s\n", args[0])
	return nil
}
