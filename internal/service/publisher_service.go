package service

import (
	"context"
	"encoding/json"

	"sahayak-be/internal/dto"
	"sahayak-be/internal/pkg/logger"
	"sahayak-be/pkg/store"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// IPublisherService hands finished sessions to the archive worker. It
// satisfies session.Archiver, so the lifecycle manager can call it directly
// on a consented end.
type IPublisherService interface {
	Archive(ctx context.Context, sess *store.Session) error
}

type publisherService struct {
	topicName string
	pubSub    *gochannel.GoChannel
	logger    logger.ILogger
}

func NewPublisherService(
	topicName string,
	pubSub *gochannel.GoChannel,
	logger logger.ILogger,
) IPublisherService {
	return &publisherService{
		topicName: topicName,
		pubSub:    pubSub,
		logger:    logger,
	}
}

func (p *publisherService) Archive(ctx context.Context, sess *store.Session) error {
	payload, err := json.Marshal(dto.ArchiveSessionMessage{
		Session: sess,
		EndedAt: sess.LastAccessedAt,
	})
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := p.pubSub.Publish(p.topicName, msg); err != nil {
		p.logger.Error("PUBLISHER", "Failed to publish archive message", map[string]interface{}{
			"session_id": sess.ID,
			"error":      err.Error(),
		})
		return err
	}

	p.logger.Info("PUBLISHER", "Session queued for archival", map[string]interface{}{
		"session_id": sess.ID,
		"turns":      len(sess.History),
	})
	return nil
}
