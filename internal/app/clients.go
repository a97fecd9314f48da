package app

import (
	"fmt"
	"os"
	"strings"

	"github.com/yungbote/storyjam-backend/internal/clients/openai"
	"github.com/yungbote/storyjam-backend/internal/clients/pinecone"
	"github.com/yungbote/storyjam-backend/internal/clients/redis"
	"github.com/yungbote/storyjam-backend/internal/logger"
)

type Clients struct {
	SSEBus       redis.SSEBus
	EmbedCache   *redis.EmbedCache
	OpenaiClient openai.Client
	Pinecone     pinecone.Client
	VectorStore  pinecone.VectorStore
}

func wireClients(log *logger.Logger) (Clients, error) {
	log.Info("Wiring clients...")

	// Redis
	var bus redis.SSEBus
	var embedCache *redis.EmbedCache
	if strings.TrimSpace(os.Getenv("REDIS_ADDR")) != "" {
		b, err := redis.NewSSEBus(log)
		if err != nil {
			return Clients{}, fmt.Errorf("init redis SSE bus: %w", err)
		}
		bus = b
		ec, err := redis.NewEmbedCache(log)
		if err != nil {
			_ = b.Close()
			return Clients{}, fmt.Errorf("init redis embed cache: %w", err)
		}
		embedCache = ec
	}

	// Openai
	openaiClient, err := openai.NewClient(log)
	if err != nil {
		return Clients{}, fmt.Errorf("init openai client: %w", err)
	}

	// Pinecone
	pc, err := pinecone.New(log, pinecone.Config{
		APIKey: strings.TrimSpace(os.Getenv("PINECONE_API_KEY")),
	})
	if err != nil {
		return Clients{}, fmt.Errorf("init pinecone client: %w", err)
	}
	vectors, err := pinecone.NewVectorStore(log, pc)
	if err != nil {
		return Clients{}, fmt.Errorf("init pinecone vector store: %w", err)
	}

	return Clients{
		SSEBus:       bus,
		EmbedCache:   embedCache,
		OpenaiClient: openaiClient,
		Pinecone:     pc,
		VectorStore:  vectors,
	}, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.SSEBus != nil {
		_ = c.SSEBus.Close()
	}
	if c.EmbedCache != nil {
		_ = c.EmbedCache.Close()
	}
}
