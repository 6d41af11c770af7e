// arcanite is the offline CLI: deterministic readings as markdown, no LLM
// and no server required.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"

	"github.com/spf13/cobra"

	"github.com/katelouie/arcanite/internal/adapters/decks"
	"github.com/katelouie/arcanite/internal/adapters/spreads"
	"github.com/katelouie/arcanite/internal/app"
	"github.com/katelouie/arcanite/internal/render"
)

type stdRNG struct{}

func (stdRNG) Intn(n int) int { return rand.IntN(n) }

var (
	flagSpread          string
	flagDeck            string
	flagQuestion        string
	flagCategory        string
	flagSeed            uint64
	flagNoReversals     bool
	flagNoRelationships bool
	flagSpreadsPath     string
	flagCardDataDir     string
)

var rootCmd = &cobra.Command{
	Use:           "arcanite",
	Short:         "Deterministic tarot readings from the command line",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var drawCmd = &cobra.Command{
	Use:   "draw",
	Short: "Draw a reading and print it as markdown",
	Long: `Draws cards for the chosen spread, assembles position-aware
interpretations, and prints the result as markdown. With --seed the draw is
reproducible.`,
	RunE: runDraw,
}

var spreadsCmd = &cobra.Command{
	Use:   "spreads",
	Short: "List available spreads",
	RunE:  runSpreads,
}

func init() {
	drawCmd.Flags().StringVar(&flagSpread, "spread", "three_card", "spread ID")
	drawCmd.Flags().StringVar(&flagDeck, "deck", "major_arcana", "deck ID")
	drawCmd.Flags().StringVarP(&flagQuestion, "question", "q", "", "question for the reading")
	drawCmd.Flags().StringVar(&flagCategory, "category", "", "question category (love, career, spiritual, financial, health, general)")
	drawCmd.Flags().Uint64Var(&flagSeed, "seed", 0, "seed for a reproducible draw")
	drawCmd.Flags().BoolVar(&flagNoReversals, "no-reversals", false, "draw upright cards only")
	drawCmd.Flags().BoolVar(&flagNoRelationships, "no-relationships", false, "skip the card relationship scan")
	drawCmd.Flags().StringVar(&flagSpreadsPath, "spreads-file", "", "YAML spreads file (defaults to embedded spreads)")
	drawCmd.Flags().StringVar(&flagCardDataDir, "card-data", "", "directory of <deck>.json card files")

	spreadsCmd.Flags().StringVar(&flagSpreadsPath, "spreads-file", "", "YAML spreads file (defaults to embedded spreads)")

	rootCmd.AddCommand(drawCmd)
	rootCmd.AddCommand(spreadsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func loadRegistry() (*spreads.Registry, error) {
	if flagSpreadsPath != "" {
		return spreads.NewFromFile(flagSpreadsPath)
	}
	return spreads.NewEmbedded()
}

func runDraw(cmd *cobra.Command, _ []string) error {
	registry, err := loadRegistry()
	if err != nil {
		return err
	}

	var deckOpts []decks.Option
	if flagCardDataDir != "" {
		deckOpts = append(deckOpts, decks.WithDataDir(flagCardDataDir))
	}
	store := decks.NewStore(deckOpts...)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := app.NewReadingService(store, registry, nil, nil, stdRNG{}, logger)

	req := app.CreateReadingRequest{
		DeckID:               flagDeck,
		SpreadID:             flagSpread,
		Question:             flagQuestion,
		QuestionType:         flagCategory,
		AllowReversals:       !flagNoReversals,
		IncludeRelationships: !flagNoRelationships,
	}
	if cmd.Flags().Changed("seed") {
		seed := flagSeed
		req.Seed = &seed
	}

	resp, err := svc.CreateReading(context.Background(), req)
	if err != nil {
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), render.Markdown(resp.Context))
	return nil
}

func runSpreads(cmd *cobra.Command, _ []string) error {
	registry, err := loadRegistry()
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	for _, info := range registry.Infos() {
		fmt.Fprintf(w, "%-18s %-24s %d positions  [%s, %s]\n",
			info.ID, info.Name, info.Positions, info.Category, info.Difficulty)
		if info.Description != "" {
			fmt.Fprintf(w, "    %s\n", info.Description)
		}
	}
	return nil
}
