package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/avandyck/shepherd/internal/models"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show knowledge base counts",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	entities, err := backend.ListEntities(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("list entities: %w", err)
	}
	evidence, err := backend.ListEvidence(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("list evidence: %w", err)
	}
	chunks, err := backend.ListChunks(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("list chunks: %w", err)
	}
	pending, err := backend.ListFollowUps(ctx, tenantID, models.FollowUpPending)
	if err != nil {
		return fmt.Errorf("list follow-ups: %w", err)
	}

	docs := map[string]bool{}
	for _, c := range chunks {
		docs[c.DocumentID] = true
	}

	fmt.Printf("Tenant: %s\n", tenantID)
	fmt.Printf("  People:             %d\n", len(entities))
	fmt.Printf("  Logged notes:       %d\n", len(evidence))
	fmt.Printf("  Documents:          %d (%d chunks)\n", len(docs), len(chunks))
	fmt.Printf("  Pending follow-ups: %d\n", len(pending))
	return nil
}
