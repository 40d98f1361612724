package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var getChunks bool

var getCmd = &cobra.Command{
	Use:   "get [doc-id]",
	Short: "Print a stored document",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

func init() {
	getCmd.Flags().BoolVar(&getChunks, "chunks", false, "print the document's chunks instead of its content")
	rootCmd.AddCommand(getCmd)
}

func runGet(cmd *cobra.Command, args []string) error {
	if retriever == nil {
		return errors.New("retrieval service not configured")
	}

	ctx := context.Background()
	id := args[0]

	if getChunks {
		chunks, err := retriever.GetChunks(ctx, id)
		if err != nil {
			return fmt.Errorf("get chunks failed: %w", err)
		}
		if len(chunks) == 0 {
			cmd.Printf("No chunks for document: %s\n", id)
			return nil
		}
		for i := range chunks {
			cmd.Printf("  [%d] %s\n", chunks[i].Position(), chunks[i].Text())
		}
		cmd.Printf("Total: %d chunks\n", len(chunks))
		return nil
	}

	doc, err := retriever.GetDocument(ctx, id)
	if err != nil {
		return fmt.Errorf("get failed: %w", err)
	}
	cmd.Println(doc.Content())
	return nil
}
