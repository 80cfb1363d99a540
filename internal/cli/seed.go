package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"chatbot/internal/seed"
)

var (
	seedFiles   string
	seedBuiltin bool
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Embed and insert services into the catalog",
	Long: `Embed service descriptions and insert them into the configured catalog.
Seed files are YAML documents with a top-level "services" list.

Examples:
  chatbot seed --builtin                  # The five demonstration services
  chatbot seed --file 'data/**/*.yaml'    # Every YAML file under data/`,
	Args: cobra.NoArgs,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringVar(&seedFiles, "file", "", "glob of YAML seed files (supports **)")
	seedCmd.Flags().BoolVar(&seedBuiltin, "builtin", false, "seed the built-in demonstration services")
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if cfg.Catalog.Type == "memory" {
		return fmt.Errorf("the memory catalog is seeded at chat start-up; configure a bolt, sqlite or redis catalog to seed")
	}
	if !seedBuiltin && seedFiles == "" {
		seedBuiltin = true
	}
	entries, err := seedEntries(seedBuiltin, seedFiles)
	if err != nil {
		return err
	}

	emb, err := newEmbedder(cfg)
	if err != nil {
		return err
	}
	cat, err := openCatalog(ctx, cfg, emb)
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	defer cat.Close()

	// the bar shares the terminal with the per-service lines unless stdout is redirected
	var opts []seed.Option
	if term.IsTerminal(int(os.Stderr.Fd())) && !term.IsTerminal(int(os.Stdout.Fd())) {
		opts = append(opts, seed.WithProgress(os.Stderr))
	}
	if err := seed.NewSeeder(emb, cat, cmd.OutOrStdout(), opts...).Seed(ctx, entries); err != nil {
		return fmt.Errorf("error inserting services: %w", err)
	}
	return nil
}
