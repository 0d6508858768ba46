// docrag is the command line client: ingest a text file and query it from an
// interactive console or in one shot.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"docrag/internal/app"
	"docrag/internal/config"
	"docrag/internal/engine"
	"docrag/internal/observability"
	"docrag/internal/summarizer"
	"docrag/internal/tui"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string

	rootCmd := &cobra.Command{
		Use:   "docrag",
		Short: "Chunk a document, embed it, and query it by similarity",
	}
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/docrag/config.yaml if not provided)")

	searchCmd := &cobra.Command{
		Use:   "search <file>",
		Short: "Ingest a file and explore it interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cfgPath, args[0])
		},
	}

	var askK int
	askCmd := &cobra.Command{
		Use:   "ask <file> <question>",
		Short: "Ingest a file and answer one question",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(cfgPath, args[0], args[1], askK)
		},
	}
	askCmd.Flags().IntVar(&askK, "k", 0, "Number of chunks to return (default: retrieval.top_k)")

	rootCmd.AddCommand(searchCmd, askCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig(cfgPath string) (*config.AppConfig, error) {
	if cfgPath == "" {
		cfg, _, err := config.LoadDefault()
		return cfg, err
	}
	return config.Load(cfgPath)
}

// ingestFile builds the engine and loads one document into it. The caller
// must run cleanup when done.
func ingestFile(cfgPath, path string) (*engine.Engine, *config.AppConfig, func(), string, error) {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return nil, nil, nil, "", fmt.Errorf("failed to load config: %w", err)
	}

	logger := observability.NewLogger(os.Stderr, "warn", cfg.Log.Format)

	eng, cleanup, err := app.Build(cfg, logger)
	if err != nil {
		return nil, nil, nil, "", err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		cleanup()
		return nil, nil, nil, "", err
	}
	if _, err := eng.Ingest(context.Background(), path, string(data)); err != nil {
		cleanup()
		return nil, nil, nil, "", fmt.Errorf("ingest failed: %w", err)
	}

	summary := summarizer.New().Summarize(string(data), 3)
	return eng, cfg, cleanup, summary, nil
}

func runSearch(cfgPath, path string) error {
	eng, cfg, cleanup, summary, err := ingestFile(cfgPath, path)
	if err != nil {
		return err
	}
	defer cleanup()

	m := tui.New(eng, cfg.Retrieval.TopK, summary)
	if _, err := tea.NewProgram(m).Run(); err != nil {
		log.Fatal(err)
	}
	return nil
}

var (
	askTitleStyle = lipgloss.NewStyle().Bold(true)
	askScoreStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	askDimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func runAsk(cfgPath, path, question string, k int) error {
	eng, _, cleanup, summary, err := ingestFile(cfgPath, path)
	if err != nil {
		return err
	}
	defer cleanup()

	results, err := eng.Answer(context.Background(), question, k)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	fmt.Println(askDimStyle.Render("Summary: " + summary))
	fmt.Println()
	if len(results) == 0 {
		fmt.Println("No results.")
		return nil
	}
	for i, r := range results {
		fmt.Printf("%s  %s\n", askTitleStyle.Render(fmt.Sprintf("%d.", i+1)), askScoreStyle.Render(fmt.Sprintf("score=%.3f", r.Score)))
		fmt.Println(r.Chunk)
		fmt.Println()
	}
	return nil
}
