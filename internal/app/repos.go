package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/storyjam-backend/internal/logger"
	"github.com/yungbote/storyjam-backend/internal/repos"
)

type Repos struct {
	User      repos.UserRepo
	UserToken repos.UserTokenRepo
	Story     repos.StoryRepo
	Joke      repos.JokeRepo
	Image     repos.ImageRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:      repos.NewUserRepo(db, log),
		UserToken: repos.NewUserTokenRepo(db, log),
		Story:     repos.NewStoryRepo(db, log),
		Joke:      repos.NewJokeRepo(db, log),
		Image:     repos.NewImageRepo(db, log),
	}
}
