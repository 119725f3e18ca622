package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"tabvec/internal/config"
	"tabvec/internal/dataset"
	"tabvec/internal/embedding"
	"tabvec/internal/embedding/openai"
	"tabvec/internal/embedding/tfidf"
	"tabvec/internal/logging"
	"tabvec/internal/metrics"
	"tabvec/internal/report"
	"tabvec/internal/service"
	"tabvec/internal/tui"
	"tabvec/internal/vectorstore"
	"tabvec/internal/vectorstore/memory"
	"tabvec/internal/vectorstore/qdrant"
)

func main() {
	_ = godotenv.Load()

	var (
		cfgPath string
		target  string
		columns string
		plain   bool
	)
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/tabvec/config.yaml if not provided)")
	flag.StringVar(&target, "target", "", "Target column (overrides data.target_column)")
	flag.StringVar(&columns, "columns", "", "Comma-separated feature columns to keep (overrides data.columns)")
	flag.BoolVar(&plain, "plain", false, "Print the report instead of starting the TUI")
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

	source := cfg.Data.Source
	if flag.NArg() > 0 {
		source = flag.Arg(0)
	}
	if source == "" {
		fmt.Println("Usage: tabvec [--config=config.yaml] [--target=col] [--columns=a,b] [--plain] dataset.csv|URL")
		os.Exit(1)
	}
	if target != "" {
		cfg.Data.TargetColumn = target
	}
	if columns != "" {
		cfg.Data.Columns = splitColumns(columns)
	}

	logger, err := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("invalid log config: %v", err)
	}
	if plain {
		logger = logging.NoopLogger()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var m *metrics.Metrics
	if cfg.Metrics.Addr != "" {
		m = metrics.New("tabvec")
		go serveMetrics(cfg.Metrics.Addr, m, logger)
	}

	// Assemble components
	router := embedding.NewRouter().Handle(tfidf.ModelID, tfidf.NewEmbedder())
	switch cfg.Embedder.Type {
	case "tfidf", "":
	case "openai":
		if cfg.Embedder.OpenAI == nil {
			log.Fatalf("openai embedder config missing")
		}
		client, err := openai.NewClient(openai.Config{
			BaseURL:         cfg.Embedder.OpenAI.BaseURL,
			APIKeyEnv:       cfg.Embedder.OpenAI.APIKeyEnv,
			Timeout:         time.Duration(cfg.Embedder.OpenAI.TimeoutSecs) * time.Second,
			BatchSize:       cfg.Embedder.OpenAI.BatchSize,
			AllowMissingKey: cfg.Embedder.OpenAI.NoAuth,
		})
		if err != nil {
			log.Fatalf("openai embedder init failed: %v", err)
		}
		for _, model := range cfg.Embedder.OpenAI.Models {
			router.Handle(model, client)
		}
	default:
		log.Fatalf("unknown embedder: %s", cfg.Embedder.Type)
	}

	var newStore service.StoreFactory
	switch cfg.VectorStore.Type {
	case "memory", "":
		newStore = func(context.Context) (vectorstore.Storage, error) { return memory.NewStorage(), nil }
	case "qdrant":
		if cfg.VectorStore.Qdrant == nil {
			log.Fatalf("qdrant config missing")
		}
		qcfg := qdrant.Config{
			Host:             cfg.VectorStore.Qdrant.Host,
			Port:             cfg.VectorStore.Qdrant.Port,
			APIKey:           cfg.VectorStore.Qdrant.APIKey,
			UseTLS:           cfg.VectorStore.Qdrant.UseTLS,
			CollectionPrefix: cfg.VectorStore.Qdrant.CollectionPrefix,
		}
		client, err := qdrant.Connect(qcfg)
		if err != nil {
			log.Fatalf("qdrant connect failed: %v", err)
		}
		defer client.Close()
		newStore = func(context.Context) (vectorstore.Storage, error) { return qdrant.NewStorage(client, qcfg), nil }
	default:
		log.Fatalf("unknown vector store: %s", cfg.VectorStore.Type)
	}

	table, err := cfg.Table()
	if err != nil {
		log.Fatalf("invalid domain table: %v", err)
	}
	pipeline, err := service.NewPipeline(service.Options{
		Embedder:   router,
		NewStore:   newStore,
		Table:      table,
		ModelID:    cfg.EmbeddingModel.ModelName,
		Components: cfg.Reducer.Components,
		Logger:     logger,
		Metrics:    m,
	})
	if err != nil {
		log.Fatalf("pipeline init failed: %v", err)
	}

	loader := &dataset.Loader{}
	ds, err := loader.Load(ctx, source, cfg.Data.TargetColumn)
	if err != nil {
		log.Fatalf("load dataset failed: %v", err)
	}
	if len(cfg.Data.Columns) > 0 {
		if ds, err = ds.Select(cfg.Data.Columns); err != nil {
			log.Fatalf("select columns failed: %v", err)
		}
	}

	res, err := pipeline.Run(ctx, ds)
	if err != nil {
		log.Fatalf("run failed: %v", err)
	}

	if plain {
		if err := report.Write(os.Stdout, res); err != nil {
			log.Fatal(err)
		}
		if res.Naive.Err != nil && res.Structured.Err != nil {
			os.Exit(1)
		}
		return
	}

	model := tui.New(res, cfg.Chart.Width, cfg.Chart.Height)
	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		log.Fatal(err)
	}
}

// splitColumns parses a comma-separated column list, trimming spaces and
// dropping empty entries.
func splitColumns(s string) []string {
	var out []string
	for _, c := range strings.Split(s, ",") {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}

func serveMetrics(addr string, m *metrics.Metrics, logger *logging.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("metrics server stopped", "error", err)
	}
}
