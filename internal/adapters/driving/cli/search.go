package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragcore/internal/core/domain"
)

var (
	searchLimit       int
	searchMaxDistance float64
	searchJSON        bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Find the chunks most similar to a query",
	Long: `Embeds the query and returns the nearest chunks by vector distance,
closest first.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", domain.DefaultTopK, "maximum number of results")
	searchCmd.Flags().Float64Var(&searchMaxDistance, "max-distance", domain.NoDistanceLimit, "drop results farther than this distance (negative disables)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if retriever == nil {
		return errors.New("retrieval service not configured")
	}

	matches, err := retriever.FindRelevantChunks(context.Background(), args[0], searchLimit, searchMaxDistance)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, matches)
	}
	return outputSearchTable(cmd, matches)
}

// searchResult is the JSON output shape for one match.
type searchResult struct {
	ChunkID    string  `json:"chunk_id"`
	DocumentID string  `json:"document_id"`
	Position   int     `json:"position"`
	Text       string  `json:"text"`
	Distance   float64 `json:"distance"`
}

func outputSearchJSON(cmd *cobra.Command, matches []domain.ChunkMatch) error {
	results := make([]searchResult, len(matches))
	for i := range matches {
		results[i] = searchResult{
			ChunkID:    matches[i].Chunk.ID(),
			DocumentID: matches[i].Chunk.DocumentID(),
			Position:   matches[i].Chunk.Position(),
			Text:       matches[i].Chunk.Text(),
			Distance:   matches[i].Distance,
		}
	}
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, matches []domain.ChunkMatch) error {
	if len(matches) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range matches {
		cmd.Printf("  [%d] %s (%.4f)\n", i+1, matches[i].Chunk.Text(), matches[i].Distance)
		cmd.Printf("      Document: %s\n", matches[i].Chunk.DocumentID())
		cmd.Println()
	}
	return nil
}
