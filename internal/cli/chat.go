package cli

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"chatbot/internal/chat"
	"chatbot/internal/console"
	"chatbot/internal/logger"
	"chatbot/internal/retrieval"
	"chatbot/internal/service"
	"chatbot/internal/session"
	"chatbot/internal/tui"
)

var (
	sessionID string
	useTUI    bool
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive conversation (default)",
	Long: `Start an interactive conversation. Type "exit" or "quit" to leave.
Lines starting with "/service " search the service catalog, e.g.

  /service something to reduce stress`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	addChatFlags(chatCmd)
	rootCmd.AddCommand(chatCmd)
}

func addChatFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&sessionID, "session", "", "session id (default is history.session_id, or a random id)")
	cmd.Flags().BoolVar(&useTUI, "tui", false, "use the full-screen interface")
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	log := logger.FromContext(ctx)

	emb, err := newEmbedder(cfg)
	if err != nil {
		return err
	}
	gen, err := newGenerator(cfg)
	if err != nil {
		return err
	}
	cat, err := openCatalog(ctx, cfg, emb)
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	defer cat.Close()

	rag := service.NewRAGService(emb, cat, gen, retrieval.NewAssembler(cfg.Retrieval.ExcerptChars), cfg.Retrieval.TopK)
	if err := rag.PrepareEmbedder(ctx); err != nil {
		return fmt.Errorf("failed to prepare embedder: %w", err)
	}

	id := sessionID
	if id == "" {
		id = cfg.History.SessionID
	}
	if id == "" {
		id = uuid.NewString()
	}
	opts := chat.Options{SessionID: id, MaxMessages: cfg.History.MaxMessages}
	store := session.NewStore(cfg.History.SystemPrompt)
	log.Info("starting chat",
		zap.String("session", id),
		zap.String("embedder", emb.Name()),
		zap.String("model", generatorModel(gen)),
		zap.String("catalog", cfg.Catalog.Type),
		zap.Bool("tui", useTUI),
	)

	if useTUI {
		return tui.Run(ctx, func(ctx context.Context, c *tui.Console) error {
			return chat.NewOrchestrator(c, store, gen, rag, opts).Run(ctx)
		})
	}
	return chat.NewOrchestrator(console.Stdio(), store, gen, rag, opts).Run(ctx)
}
