package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/storyjam-backend/internal/logger"
	"github.com/yungbote/storyjam-backend/internal/pipeline"
	"github.com/yungbote/storyjam-backend/internal/services"
	"github.com/yungbote/storyjam-backend/internal/sse"
)

type Services struct {
	Bucket   services.BucketService
	Speech   services.SpeechProviderService
	Notifier services.StoryNotifier

	Auth   services.AuthService
	Story  services.StoryService
	Joke   services.JokeService
	Image  services.ImageService
	Search services.SearchService

	Orchestrator *pipeline.Orchestrator
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos, sseHub *sse.SSEHub, clients Clients) (Services, error) {
	log.Info("Wiring services...")

	bucketService, err := services.NewBucketService(log)
	if err != nil {
		return Services{}, fmt.Errorf("init bucket service: %w", err)
	}

	speechService, err := services.NewSpeechProviderService(log)
	if err != nil {
		return Services{}, fmt.Errorf("init speech service: %w", err)
	}

	providers, err := services.NewOpenAIProviders(log, clients.OpenaiClient)
	if err != nil {
		return Services{}, fmt.Errorf("init openai providers: %w", err)
	}

	transcriber, err := services.NewGCSTranscriber(log, speechService, bucketService)
	if err != nil {
		return Services{}, fmt.Errorf("init transcriber: %w", err)
	}

	notifier := services.NewStoryNotifier(log, sseHub, clients.SSEBus)

	orchestrator, err := pipeline.NewOrchestrator(log, pipeline.OrchestratorDeps{
		Stories: reposet.Story,
		Jokes:   reposet.Joke,
		Images:  reposet.Image,

		Transcriber:    transcriber,
		Summarizer:     providers,
		DetailExtract:  providers,
		JokeWriter:     providers,
		ImageDescriber: providers,
		ImageGenerator: providers,
		Embedder:       providers,

		Bucket:   bucketService,
		Vectors:  clients.VectorStore,
		Notifier: notifier,
	})
	if err != nil {
		return Services{}, fmt.Errorf("init pipeline orchestrator: %w", err)
	}

	authService := services.NewAuthService(
		db, log,
		reposet.User,
		reposet.UserToken,
		cfg.JWTSecretKey,
		cfg.AccessTokenTTL,
		cfg.RefreshTokenTTL,
	)

	storyService := services.NewStoryService(
		log,
		reposet.Story,
		reposet.Joke,
		reposet.Image,
		bucketService,
		clients.VectorStore,
		notifier,
		orchestrator,
	)
	jokeService := services.NewJokeService(log, reposet.Story, reposet.Joke, orchestrator)
	imageService := services.NewImageService(log, reposet.Story, reposet.Image, orchestrator)
	var embedCache services.EmbedCache
	if clients.EmbedCache != nil {
		embedCache = clients.EmbedCache
	}
	searchService := services.NewSearchService(log, providers, clients.VectorStore, embedCache)

	return Services{
		Bucket:   bucketService,
		Speech:   speechService,
		Notifier: notifier,

		Auth:   authService,
		Story:  storyService,
		Joke:   jokeService,
		Image:  imageService,
		Search: searchService,

		Orchestrator: orchestrator,
	}, nil
}
