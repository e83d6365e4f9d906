package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var ingestTitle string

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>...",
	Short: "Ingest documents for retrieval",
	Long: `Ingest plain-text documents into the knowledge base.

Each document is chunked, embedded, and becomes searchable from chat
and ask. The title defaults to the file name.

Examples:
  shepherd ingest handbook.txt
  shepherd ingest docs/*.txt
  shepherd ingest onboarding.md --title "Volunteer Onboarding"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestTitle, "title", "", "document title (single file only)")
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestTitle != "" && len(args) > 1 {
		return fmt.Errorf("--title only applies to a single file")
	}

	ingestor, err := getIngestor()
	if err != nil {
		return err
	}

	ctx := context.Background()
	for _, path := range args {
		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		title := ingestTitle
		if title == "" {
			title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		}

		n, err := ingestor.Ingest(ctx, tenantID, title, string(raw))
		if err != nil {
			return fmt.Errorf("ingest %s: %w", path, err)
		}
		fmt.Printf("Ingested %q: %d chunks\n", title, n)
	}
	return nil
}
