package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"chatbot/internal/catalog/bolt"
	"chatbot/internal/catalog/memory"
	"chatbot/internal/catalog/redis"
	"chatbot/internal/catalog/sqlite"
	"chatbot/internal/config"
	"chatbot/internal/domain"
	"chatbot/internal/embedding/openai"
	"chatbot/internal/embedding/tfidf"
	genopenai "chatbot/internal/generation/openai"
	"chatbot/internal/logger"
	"chatbot/internal/seed"
)

func newEmbedder(cfg *config.AppConfig) (domain.Embedder, error) {
	switch cfg.Embedder.Type {
	case "tfidf", "":
		return tfidf.NewEmbedder(), nil
	case "openai":
		if cfg.Embedder.OpenAI == nil {
			return nil, fmt.Errorf("openai embedder config missing")
		}
		c := cfg.Embedder.OpenAI
		client, err := openai.NewClient(openai.Config{
			BaseURL:    c.BaseURL,
			APIKeyEnv:  c.APIKeyEnv,
			Model:      c.Model,
			Timeout:    time.Duration(c.TimeoutSecs) * time.Second,
			MaxRetries: c.MaxRetries,
		})
		if err != nil {
			return nil, fmt.Errorf("openai embedder init failed: %w", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown embedder: %s", cfg.Embedder.Type)
	}
}

func newGenerator(cfg *config.AppConfig) (domain.Generator, error) {
	switch cfg.Generator.Type {
	case "openai", "":
		if cfg.Generator.OpenAI == nil {
			return nil, fmt.Errorf("openai generator config missing")
		}
		c := cfg.Generator.OpenAI
		client, err := genopenai.NewClient(genopenai.Config{
			BaseURL:   c.BaseURL,
			APIKeyEnv: c.APIKeyEnv,
			Model:     c.Model,
			Timeout:   time.Duration(c.TimeoutSecs) * time.Second,
		})
		if err != nil {
			return nil, fmt.Errorf("openai generator init failed: %w", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown generator: %s", cfg.Generator.Type)
	}
}

// generatorModel reports the model name of generators that expose one.
func generatorModel(gen domain.Generator) string {
	if m, ok := gen.(interface{ Model() string }); ok {
		return m.Model()
	}
	return ""
}

// openCatalog opens the configured backend. The in-memory catalog starts
// empty and is seeded here with emb.
func openCatalog(ctx context.Context, cfg *config.AppConfig, emb domain.Embedder) (domain.Catalog, error) {
	switch cfg.Catalog.Type {
	case "memory", "":
		st := memory.NewStorage()
		if err := seedMemory(ctx, cfg.Catalog.Seed, emb, st); err != nil {
			return nil, err
		}
		return st, nil
	case "bolt":
		if cfg.Catalog.Bolt == nil {
			return nil, fmt.Errorf("bolt catalog config missing")
		}
		return bolt.NewStorage(cfg.Catalog.Bolt.Path)
	case "sqlite":
		if cfg.Catalog.SQLite == nil {
			return nil, fmt.Errorf("sqlite catalog config missing")
		}
		return sqlite.NewStorage(cfg.Catalog.SQLite.Path)
	case "redis":
		if cfg.Catalog.Redis == nil {
			return nil, fmt.Errorf("redis catalog config missing")
		}
		r := cfg.Catalog.Redis
		st, err := redis.NewStorage(redis.Config{
			Addrs:     r.Addrs,
			Username:  r.Username,
			Password:  r.Password,
			DB:        r.DB,
			KeyPrefix: r.KeyPrefix,
		})
		if err != nil {
			return nil, err
		}
		if err := st.Ping(ctx); err != nil {
			st.Close()
			return nil, err
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unknown catalog: %s", cfg.Catalog.Type)
	}
}

func seedMemory(ctx context.Context, sc *config.SeedConfig, emb domain.Embedder, st *memory.Storage) error {
	if sc == nil {
		return nil
	}
	entries, err := seedEntries(sc.Builtin, sc.Files)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}
	if err := seed.NewSeeder(emb, st, io.Discard).Seed(ctx, entries); err != nil {
		return fmt.Errorf("seed memory catalog: %w", err)
	}
	logger.FromContext(ctx).Debug("memory catalog seeded", zap.Int("services", st.Len()))
	return nil
}

func seedEntries(builtin bool, pattern string) ([]seed.Entry, error) {
	var entries []seed.Entry
	if builtin {
		b, err := seed.Builtin()
		if err != nil {
			return nil, err
		}
		entries = append(entries, b...)
	}
	if pattern != "" {
		f, err := seed.LoadFiles(pattern)
		if err != nil {
			return nil, err
		}
		entries = append(entries, f...)
	}
	return entries, nil
}
