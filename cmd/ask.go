package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/Yates-Labs/lectern/internal/config"
	"github.com/Yates-Labs/lectern/internal/orchestrator"
)

var askDocsDir string

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about the indexed course materials",
	Long: `Ask a natural language question about the indexed course materials.

This command:
1. Optionally ingests a docs folder into the vector store
2. Lets the language model search the index through tools
3. Prints the answer with its source citations

Required environment variables:
  OPENAI_API_KEY     - OpenAI API key for embeddings and the chat model
  MILVUS_ADDRESS     - Milvus server address (default: localhost:19530)

Examples:
  lectern ask "What does lesson 5 of the MCP course cover?"
  lectern ask "Are there courses about prompt caching?" --docs ./course-scripts`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringVar(&askDocsDir, "docs", "", "Ingest this docs folder before asking")
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := args[0]
	ctx := context.Background()

	var (
		headerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F780FF")).Bold(true)
		questionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8BE9FD")).Italic(true)
		answerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#E9E9F4"))
		sourceStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6272A4")).Italic(true)
	)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	pipeline, err := orchestrator.New(ctx, cfg.Pipeline())
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer pipeline.Close()

	if askDocsDir != "" {
		if _, _, err := pipeline.IngestFolder(ctx, askDocsDir); err != nil {
			return fmt.Errorf("failed to ingest %s: %w", askDocsDir, err)
		}
	}

	fmt.Println()
	fmt.Println(headerStyle.Render("Question:"))
	fmt.Println(questionStyle.Render(question))
	fmt.Println()

	sessionID := pipeline.Sessions().Create()
	answer, err := pipeline.Answer(ctx, question, sessionID)
	if err != nil {
		return fmt.Errorf("failed to generate answer: %w", err)
	}

	fmt.Println(headerStyle.Render("Answer:"))
	fmt.Println()
	fmt.Println(answerStyle.Render(strings.TrimSpace(answer.Text)))
	fmt.Println()

	if len(answer.Sources) > 0 {
		fmt.Println(headerStyle.Render("Sources:"))
		for _, source := range answer.Sources {
			line := source.Text
			if source.Link != "" {
				line = fmt.Sprintf("%s (%s)", source.Text, source.Link)
			}
			fmt.Println(sourceStyle.Render("- " + line))
		}
		fmt.Println()
	}

	return nil
}
