package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"chatbot-rag/internal/chunker"
	"chatbot-rag/internal/config"
	"chatbot-rag/internal/embedding"
	"chatbot-rag/internal/helper"
	"chatbot-rag/internal/ingest"
	"chatbot-rag/internal/models"
	"chatbot-rag/internal/rag"
	"chatbot-rag/internal/registry"
	"chatbot-rag/internal/retriever"
	"chatbot-rag/internal/source"
	"chatbot-rag/internal/vectordb"
)

const configFilePath = "./configs/config.yaml"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	name := flag.String("name", "", "Name for a new chatbot (triggers ingestion)")
	desc := flag.String("desc", "", "Description for a new chatbot")
	url := flag.String("url", "", "Website URL to ingest")
	files := flag.String("files", "", "Comma-separated document paths to ingest")
	text := flag.String("text", "", "Manual text to ingest")
	bot := flag.String("bot", "", "Chatbot ID to query, inspect or delete")
	query := flag.String("query", "", "Question to ask the chatbot")
	info := flag.Bool("info", false, "Show chunk counts for the chatbot")
	list := flag.Bool("list", false, "List all registered chatbots")
	del := flag.Bool("delete", false, "Delete the chatbot and its index bundle")
	flag.Parse()

	cfg, err := config.LoadConfig(configFilePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}

	ctx := context.Background()
	switch {
	case *name != "":
		createChatbot(ctx, cfg, *name, *desc, *url, *files, *text)
	case *bot != "" && *query != "":
		askChatbot(ctx, cfg, *bot, *query)
	case *bot != "" && *info:
		showInfo(ctx, cfg, *bot)
	case *list:
		listChatbots(ctx, cfg)
	case *bot != "" && *del:
		deleteChatbot(ctx, cfg, *bot)
	default:
		log.Fatal().Msg("Provide -name with sources to create a chatbot, -list, or -bot with -query, -info or -delete")
	}
}

func createChatbot(ctx context.Context, cfg *config.Config, name, desc, url, files, text string) {
	splitter := chunker.New(cfg.RAG.MaxChunkLen, cfg.RAG.MinChunkLen)

	var sources []source.Source
	if url != "" {
		sources = append(sources, source.NewWebsite(url, time.Duration(cfg.RAG.FetchTimeout)*time.Second, splitter))
	}
	var docs []string
	for _, f := range strings.Split(files, ",") {
		if f = strings.TrimSpace(f); f != "" {
			docs = append(docs, f)
			sources = append(sources, source.NewDocument(f, splitter))
		}
	}
	if strings.TrimSpace(text) != "" {
		sources = append(sources, source.NewManualText("", text, splitter))
	}
	if len(sources) == 0 {
		log.Fatal().Msg("Provide at least one of -url, -files, -text")
	}

	embedder, err := embedding.NewClient(&cfg.EmbedLLM, &cfg.RAG)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing embedder")
	}

	if err := helper.CreateFolder(cfg.RAG.DataDir); err != nil {
		log.Fatal().Err(err).Msg("Error creating data directory")
	}

	botID := helper.NewBotID()
	pipeline := ingest.NewPipeline(embedder, cfg.RAG.DataDir)
	report, err := pipeline.Run(ctx, botID, sources)
	if err != nil {
		log.Fatal().Err(err).Msg("Ingestion failed, chatbot was not created")
	}

	saveRegistryEntry(ctx, cfg, &registry.Chatbot{
		ID:          botID,
		Name:        name,
		Description: desc,
		WebsiteURL:  source.NormalizeURL(url),
		Documents:   docs,
		Branding:    registry.DefaultBranding(name),
	})

	log.Info().Str("bot", botID).Int("chunks", report.TotalChunks).Msg("Chatbot created")
	helper.PrettyPrint(report)
}

func askChatbot(ctx context.Context, cfg *config.Config, botID, query string) {
	embedder, err := embedding.NewClient(&cfg.EmbedLLM, &cfg.RAG)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing embedder")
	}

	pipeline := ingest.NewPipeline(embedder, cfg.RAG.DataDir)
	cache := retriever.NewCache(cfg.RAG.CacheSize, func(id string) (*vectordb.Store, error) {
		return vectordb.Load(pipeline.BundleDir(id))
	})
	engine := rag.NewEngine(retriever.New(cache, embedder), &cfg.ChatLLM, cfg.RAG.TopK)

	response, err := engine.Answer(ctx, botID, query, nil)
	switch {
	case errors.Is(err, models.ErrIndexNotReady), errors.Is(err, models.ErrCorruptIndex):
		log.Fatal().Err(err).Msg("Chatbot is not ready to answer yet")
	case err != nil:
		log.Fatal().Err(err).Msg("Service unavailable, please try again later")
	}

	fmt.Printf("%s\n\n", response.Content)
	for _, src := range response.Sources {
		fmt.Printf("  [%s] %s\n", src.Type, src.Title)
	}
}

func showInfo(ctx context.Context, cfg *config.Config, botID string) {
	if cfg.Database.DSN != "" {
		db := registry.NewDB(registry.ConnectDB(&cfg.Database), cfg.Database.Debug)
		defer db.Close()
		if entry, err := registry.GetChatbot(ctx, db, botID); err == nil {
			helper.PrettyPrint(entry)
		}
	}

	store, err := vectordb.Load(cfg.RAG.DataDir + "/" + botID)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading index bundle")
	}

	counts := map[string]int{}
	for _, c := range store.Chunks() {
		counts[fmt.Sprintf("%s: %s", c.SourceType, c.SourceName)]++
	}
	fmt.Printf("chunks: %d\n", store.Len())
	for src, n := range counts {
		fmt.Printf("  %s (%d)\n", src, n)
	}
}

func listChatbots(ctx context.Context, cfg *config.Config) {
	if cfg.Database.DSN == "" {
		log.Fatal().Msg("Listing requires a registry database, set database.dsn in the config")
	}
	db := registry.NewDB(registry.ConnectDB(&cfg.Database), cfg.Database.Debug)
	defer db.Close()

	bots, err := registry.ListChatbots(ctx, db)
	if err != nil {
		log.Fatal().Err(err).Msg("Error listing chatbots")
	}
	for _, b := range bots {
		fmt.Printf("%s  %s  %s\n", b.ID, b.Name, b.CreatedAt.Format(time.DateOnly))
	}
}

func deleteChatbot(ctx context.Context, cfg *config.Config, botID string) {
	if err := vectordb.Remove(cfg.RAG.DataDir + "/" + botID); err != nil {
		log.Fatal().Err(err).Msg("Error removing index bundle")
	}
	if cfg.Database.DSN != "" {
		db := registry.NewDB(registry.ConnectDB(&cfg.Database), cfg.Database.Debug)
		defer db.Close()
		if err := registry.DeleteChatbot(ctx, db, botID); err != nil {
			log.Error().Err(err).Msg("Error removing registry entry")
		}
	}
	log.Info().Str("bot", botID).Msg("Chatbot deleted")
}

func saveRegistryEntry(ctx context.Context, cfg *config.Config, bot *registry.Chatbot) {
	if cfg.Database.DSN == "" {
		log.Debug().Msg("No registry database configured, skipping registry entry")
		return
	}
	db := registry.NewDB(registry.ConnectDB(&cfg.Database), cfg.Database.Debug)
	defer db.Close()
	if err := registry.InitDB(ctx, db); err != nil {
		log.Error().Err(err).Msg("Error initializing registry")
		return
	}
	if err := registry.SaveChatbot(ctx, db, bot); err != nil {
		log.Error().Err(err).Msg("Error saving registry entry")
	}
}
