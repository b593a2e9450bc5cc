package cmd

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/Yates-Labs/lectern/internal/config"
	"github.com/Yates-Labs/lectern/internal/orchestrator"
)

var ingestClear bool

var ingestCmd = &cobra.Command{
	Use:   "ingest [docs-folder]",
	Short: "Index a folder of course scripts into the vector store",
	Long: `Parse, chunk and embed every course script in a folder and write the
results to the vector store. Courses already present in the catalog are
skipped unless --clear is given.

Examples:
  lectern ingest ./course-scripts
  lectern ingest ./course-scripts --clear`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().BoolVar(&ingestClear, "clear", false, "Drop the existing index before ingesting")
}

func runIngest(cmd *cobra.Command, args []string) error {
	dir := args[0]
	ctx := context.Background()

	successStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#50FA7B"))

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	pipeline, err := orchestrator.New(ctx, cfg.Pipeline())
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer pipeline.Close()

	if ingestClear {
		if err := pipeline.ClearIndex(ctx); err != nil {
			return fmt.Errorf("failed to clear index: %w", err)
		}
	}

	courses, chunks, err := pipeline.IngestFolder(ctx, dir)
	if err != nil {
		return fmt.Errorf("failed to ingest %s: %w", dir, err)
	}

	fmt.Println(successStyle.Render(fmt.Sprintf("✓ Indexed %d courses (%d chunks)", courses, chunks)))
	return nil
}
