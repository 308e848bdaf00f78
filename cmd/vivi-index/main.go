package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"vivi/internal/config"
	"vivi/internal/corpus"
	"vivi/internal/domain"
	"vivi/internal/embedding"
	"vivi/internal/index"
)

func main() {
	_ = godotenv.Load()

	cfgPath := flag.String("config", "config.yaml", "Path to config YAML")
	appendMode := flag.Bool("append", false, "Append the given corpus files to an existing index")
	flag.Parse()
	inputs := flag.Args()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if len(inputs) == 0 {
		inputs = cfg.Corpus
	}
	if len(inputs) == 0 {
		fmt.Println("Usage: vivi-index [--config=config.yaml] [--append] corpus1.json [corpus2.json ...]")
		os.Exit(1)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	emb, err := newEmbedder(cfg)
	if err != nil {
		log.Fatalf("failed to init embedder: %v", err)
	}

	docs, err := corpus.Load(inputs, logger)
	if err != nil {
		log.Fatalf("failed to load corpus: %v", err)
	}
	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Text
	}
	if err := emb.Prepare(texts); err != nil {
		log.Fatalf("failed to prepare embedder: %v", err)
	}

	ctx := context.Background()
	ix := index.New()
	if *appendMode {
		// Append needs a fixed-dimension embedder (openai); a TF-IDF
		// vocabulary built from the new files alone will not match the
		// existing index dimension and Append will reject it.
		if err := ix.Load(cfg.Index.VectorsPath, cfg.Index.TextsPath, cfg.Index.SubjectsPath); err != nil {
			log.Fatalf("cannot append, failed to load existing index: %v", err)
		}
		before := ix.Size()
		if err := ix.Append(ctx, docs, emb); err != nil {
			log.Fatalf("failed to append to index: %v", err)
		}
		logger.Info("index grown",
			zap.Int("existing", before),
			zap.Int("added", ix.Size()-before))
	} else {
		if err := ix.Build(ctx, docs, emb); err != nil {
			log.Fatalf("failed to build index: %v", err)
		}
		logger.Info("index built", zap.Int("documents", ix.Size()))
	}

	if err := ix.Save(cfg.Index.VectorsPath, cfg.Index.TextsPath, cfg.Index.SubjectsPath); err != nil {
		log.Fatalf("failed to save index: %v", err)
	}
	logger.Info("index saved",
		zap.String("vectors", cfg.Index.VectorsPath),
		zap.String("texts", cfg.Index.TextsPath),
		zap.String("subjects", cfg.Index.SubjectsPath))
}

func newEmbedder(cfg *config.AppConfig) (domain.Embedder, error) {
	switch cfg.Embedder.Type {
	case "tfidf", "":
		return embedding.NewTFIDFEmbedder(), nil
	case "openai":
		oc := cfg.Embedder.OpenAI
		if oc == nil {
			oc = &config.OpenAIEmbedderConfig{APIKeyEnv: "OPENAI_API_KEY"}
		}
		return embedding.NewOpenAIEmbedder(embedding.OpenAIConfig{
			BaseURL:   oc.BaseURL,
			APIKeyEnv: oc.APIKeyEnv,
			Model:     oc.Model,
		})
	default:
		return nil, fmt.Errorf("unknown embedder: %s", cfg.Embedder.Type)
	}
}
