package main

import (
	"context"
	"log"

	einoopenai "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/joho/godotenv"

	"github.com/patrickmvla/shiru/internal/chunker"
	"github.com/patrickmvla/shiru/internal/config"
	"github.com/patrickmvla/shiru/internal/handler"
	"github.com/patrickmvla/shiru/internal/parser"
	"github.com/patrickmvla/shiru/internal/service"
	"github.com/patrickmvla/shiru/internal/vectorstore/qdrant"
)

func main() {
	// Load .env file if exists
	godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx := context.Background()

	chatModel, err := einoopenai.NewChatModel(ctx, &einoopenai.ChatModelConfig{
		APIKey:  cfg.LLMAPIKey,
		Model:   cfg.LLMModel,
		BaseURL: cfg.LLMBaseURL,
	})
	if err != nil {
		log.Fatalf("Failed to create chat model: %v", err)
	}

	parserClient := parser.New(parser.Config{
		BaseURL:         cfg.ParserBaseURL,
		APIKey:          cfg.ParserAPIKey,
		PollInterval:    cfg.ParserPollInterval,
		MaxPollAttempts: cfg.ParserMaxPollAttempts,
	})

	embeddingSvc := service.NewEmbeddingService(
		cfg.EmbeddingAPIKey,
		cfg.EmbeddingBaseURL,
		cfg.EmbeddingModel,
		cfg.EmbeddingDimensions,
	)

	store := qdrant.New(qdrant.Config{
		URL:        cfg.QdrantURL,
		APIKey:     cfg.QdrantAPIKey,
		Collection: cfg.CollectionName,
		VectorSize: embeddingSvc.Dimensions(),
	})

	splitter := chunker.New(cfg.ChunkSize, cfg.ChunkOverlap)

	ingestSvc := service.NewIngestService(parserClient, splitter, embeddingSvc, store)
	answerSvc := service.NewAnswerService(embeddingSvc, store, chatModel, cfg.TopK)

	r := handler.SetupRouter(cfg, ingestSvc, answerSvc)

	addr := cfg.Host + ":" + cfg.Port
	log.Printf("Study Buddy server starting on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
