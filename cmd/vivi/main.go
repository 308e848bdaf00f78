package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"vivi/internal/cache"
	"vivi/internal/config"
	"vivi/internal/corpus"
	"vivi/internal/domain"
	"vivi/internal/embedding"
	"vivi/internal/evaluation"
	"vivi/internal/eventlog"
	"vivi/internal/generation"
	"vivi/internal/index"
	"vivi/internal/pipeline"
	"vivi/internal/synthesizer"
	"vivi/internal/tui"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/vivi/config.yaml if not provided)")
	flag.Parse()

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := newFileLogger(cfg.Log.AppLogPath)
	if err != nil {
		log.Fatalf("failed to open log file: %v", err)
	}
	defer logger.Sync()

	// Index artifacts must all exist; serving cannot start without them.
	ix := index.New()
	if err := ix.Load(cfg.Index.VectorsPath, cfg.Index.TextsPath, cfg.Index.SubjectsPath); err != nil {
		log.Fatalf("failed to load index (run vivi-index first): %v", err)
	}

	emb, err := newEmbedder(cfg)
	if err != nil {
		log.Fatalf("failed to init embedder: %v", err)
	}
	if emb.Name() == "tfidf" {
		if err := prepareLocalEmbedder(emb, cfg); err != nil {
			log.Fatalf("failed to prepare embedder: %v", err)
		}
	}

	gen, err := generation.NewOpenAIGenerator(generation.OpenAIConfig{
		BaseURL:   cfg.Generator.BaseURL,
		APIKeyEnv: cfg.Generator.APIKeyEnv,
		Model:     cfg.Generator.Model,
	})
	if err != nil {
		log.Fatalf("failed to init generator: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	synth := synthesizer.New(gen, generation.NewWordTokenizer(), generation.DefaultParams(), cfg.Pipeline.ContextTokenBudget)

	p := pipeline.New(pipeline.Options{
		Cache:       cache.NewRedis(rdb, logger),
		Embedder:    emb,
		Searcher:    ix,
		Synthesizer: synth,
		Events:      eventlog.New(cfg.Log.EventsPath, logger),
		Evaluations: evaluation.NewRecorder(cfg.Log.EvaluationsPath, logger),
		Logger:      logger,
		TopK:        cfg.Pipeline.TopK,
		CacheTTL:    time.Duration(cfg.Redis.TTLSecs) * time.Second,
	})

	if _, err := tea.NewProgram(tui.New(p), tea.WithAltScreen()).Run(); err != nil {
		log.Fatal(err)
	}
}

// newFileLogger writes zap output to a file so it does not clobber the TUI.
func newFileLogger(path string) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	zcfg.OutputPaths = []string{path}
	zcfg.ErrorOutputPaths = []string{path}
	return zcfg.Build()
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

// prepareLocalEmbedder rebuilds the TF-IDF vocabulary from the corpus files
// so query vectors share the space the index was built in.
func prepareLocalEmbedder(emb domain.Embedder, cfg *config.AppConfig) error {
	docs, err := corpus.Load(cfg.Corpus, zap.NewNop())
	if err != nil {
		return err
	}
	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Text
	}
	return emb.Prepare(texts)
}
