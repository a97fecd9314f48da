package services

import (
	"context"

	"github.com/google/uuid"

	redisclient "github.com/yungbote/storyjam-backend/internal/clients/redis"
	"github.com/yungbote/storyjam-backend/internal/logger"
	"github.com/yungbote/storyjam-backend/internal/sse"
)

// StoryNotifier pushes story lifecycle events to the owner's SSE channel.
// When a redis bus is configured events also fan out to peer replicas.
type StoryNotifier interface {
	Notify(ctx context.Context, userID uuid.UUID, event sse.SSEEvent, data any)
}

type storyNotifier struct {
	log *logger.Logger
	hub *sse.SSEHub
	bus redisclient.SSEBus // optional
}

func NewStoryNotifier(log *logger.Logger, hub *sse.SSEHub, bus redisclient.SSEBus) StoryNotifier {
	return &storyNotifier{
		log: log.With("service", "StoryNotifier"),
		hub: hub,
		bus: bus,
	}
}

func (n *storyNotifier) Notify(ctx context.Context, userID uuid.UUID, event sse.SSEEvent, data any) {
	msg := sse.SSEMessage{
		Channel: sse.UserChannel(userID),
		Event:   event,
		Data:    data,
	}
	if n.hub != nil {
		n.hub.Broadcast(msg)
	}
	if n.bus != nil {
		if err := n.bus.Publish(ctx, msg); err != nil {
			n.log.Warn("Failed to publish SSE message to redis", "event", string(event), "error", err)
		}
	}
}
