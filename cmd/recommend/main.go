// Command recommend ranks RAK products for one requirements document and prints
// the result.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/ShivamTripathi028/rak-recommender-project/config"
	"github.com/ShivamTripathi028/rak-recommender-project/internal/app"
	"github.com/ShivamTripathi028/rak-recommender-project/internal/domain"
	"github.com/ShivamTripathi028/rak-recommender-project/internal/logging"
)

type options struct {
	requirements string
	topN         int
	jsonOutput   bool
	offline      bool
	verbose      bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCommand(os.Stdin, os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Rank RAK products against a client requirements document",
		Long: `Loads the product catalog, scores every product against the hard constraints
in the requirements document, adds text similarity when an embedding provider is
reachable, and prints the best matches.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts, stdin, stdout, stderr)
		},
	}

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.Flags().StringVarP(&opts.requirements, "requirements", "r", "", "requirements JSON file, - for stdin (required)")
	cmd.Flags().IntVarP(&opts.topN, "top-n", "n", -1, "number of recommendations (defaults to matching.top_n)")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "print JSON records instead of a listing")
	cmd.Flags().BoolVar(&opts.offline, "offline", false, "skip the embedding provider and rank on rule scores only")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "log progress to stderr")
	_ = cmd.MarkFlagRequired("requirements")

	return cmd
}

func run(ctx context.Context, opts *options, stdin io.Reader, stdout, stderr io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.offline {
		cfg.Embedding.Provider = "none"
	}

	level := "error"
	if opts.verbose {
		level = "debug"
	}
	logger := logging.New(logging.Config{Level: level, Format: "console", Output: stderr})

	data, err := readRequirements(opts.requirements, stdin)
	if err != nil {
		return err
	}
	raw, err := domain.DecodeRequirementPayload(data)
	if err != nil {
		return err
	}
	if err := domain.ValidateRequirementPayload(raw); err != nil {
		return err
	}
	req := domain.ParseRequirement(raw)

	store, closeCache := app.NewCache(ctx, cfg, logger)
	defer closeCache()

	service := app.BuildService(ctx, cfg, store, logger)

	topN := opts.topN
	if topN < 0 {
		topN = service.DefaultTopN()
	}

	recommendations, err := service.Recommend(ctx, &req, topN)
	if err != nil {
		return err
	}

	if opts.jsonOutput {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(recommendations)
	}
	printListing(stdout, recommendations)
	return nil
}

func readRequirements(path string, stdin io.Reader) ([]byte, error) {
	if path == "" {
		return nil, errors.New("--requirements is required")
	}
	if path == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read requirements: %w", err)
	}
	return data, nil
}

func printListing(w io.Writer, recommendations []domain.Recommendation) {
	if len(recommendations) == 0 {
		fmt.Fprintln(w, "No suitable products found based on the criteria.")
		return
	}

	fmt.Fprintf(w, "Top %d recommendation(s):\n", len(recommendations))
	for _, rec := range recommendations {
		fmt.Fprintf(w, "\nProduct ID: %s\n", rec.ProductID)
		fmt.Fprintf(w, "  Name: %s\n", rec.ProductName)
		fmt.Fprintf(w, "  Final Score: %.2f\n", rec.FinalScore)
		fmt.Fprintf(w, "  Text Similarity: %.4f\n", rec.Similarity)
		fmt.Fprintln(w, "  Explanation:")
		for _, item := range rec.Explanation {
			fmt.Fprintf(w, "    - %s\n", item)
		}
	}
}
