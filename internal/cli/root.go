package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"chatbot/internal/config"
	"chatbot/internal/logger"
)

var (
	cfgFile string
	cfg     *config.AppConfig
	appLog  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "chatbot",
	Short: "Terminal AI chatbot with service recommendations",
	Long: `chatbot is an interactive assistant for the terminal. Plain messages are
answered by a streamed chat completion that remembers the conversation;
lines starting with "/service " are answered from the service catalog.

Example usage:
  chatbot                          # Start chatting
  chatbot --tui                    # Full-screen interface
  chatbot seed --builtin           # Seed the demonstration services
  chatbot seed --file 'data/**/*.yaml'`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		var err error
		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, _, err = config.LoadDefault()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		appLog, err = logger.NewLogger(cfg.Logging.Env, cfg.Logging.Level, cfg.Logging.File)
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		cmd.SetContext(logger.ContextWithLogger(cmd.Context(), appLog))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if appLog != nil {
			_ = appLog.Sync()
		}
	},
	RunE: runChat,
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command
// context; any error exits with status 1.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml, then ~/.config/chatbot/config.yaml)")
	addChatFlags(rootCmd)
}
