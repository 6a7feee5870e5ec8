package service

import (
	"context"
	"encoding/json"

	"sahayak-be/internal/dto"
	"sahayak-be/internal/mapper"
	"sahayak-be/internal/pkg/logger"
	"sahayak-be/internal/repository/specification"
	"sahayak-be/internal/repository/unitofwork"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// IArchiveService consumes archive messages and writes the durable session
// record plus the transcript in one transaction.
type IArchiveService interface {
	Consume(ctx context.Context) error
}

type archiveService struct {
	pubSub        *gochannel.GoChannel
	topicName     string
	uowFactory    unitofwork.RepositoryFactory
	sessionMapper *mapper.SessionMapper
	logger        logger.ILogger
}

func NewArchiveService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	sessionMapper *mapper.SessionMapper,
	logger logger.ILogger,
) IArchiveService {
	return &archiveService{
		pubSub:        pubSub,
		topicName:     topicName,
		uowFactory:    uowFactory,
		sessionMapper: sessionMapper,
		logger:        logger,
	}
}

func (as *archiveService) Consume(ctx context.Context) error {
	messages, err := as.pubSub.Subscribe(ctx, as.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			as.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (as *archiveService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.ArchiveSessionMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		as.logger.Error("ARCHIVE", "Failed to unmarshal archive message", map[string]interface{}{"error": err.Error()})
		msg.Ack() // poison message, retrying cannot help
		return
	}
	if payload.Session == nil {
		as.logger.Error("ARCHIVE", "Archive message carries no session", nil)
		msg.Ack()
		return
	}

	record, err := as.sessionMapper.ToRecord(payload.Session, payload.EndedAt)
	if err != nil {
		as.logger.Error("ARCHIVE", "Session id is not archivable", map[string]interface{}{
			"session_id": payload.Session.ID,
			"error":      err.Error(),
		})
		msg.Ack()
		return
	}
	turns, err := as.sessionMapper.ToTurnRecords(payload.Session)
	if err != nil {
		msg.Ack()
		return
	}

	uow := as.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		as.logger.Error("ARCHIVE", "Failed to begin archive transaction", map[string]interface{}{"error": err.Error()})
		msg.Nack()
		return
	}

	existing, err := uow.SessionRecordRepository().FindOne(ctx, specification.ByID{ID: payload.Session.ID})
	if err != nil {
		uow.Rollback()
		msg.Nack()
		return
	}
	if existing != nil && existing.EndedAt != nil {
		// Redelivery of an already archived session.
		uow.Rollback()
		msg.Ack()
		return
	}

	if existing != nil {
		if err := uow.SessionRecordRepository().Update(ctx, record); err != nil {
			uow.Rollback()
			msg.Nack()
			return
		}
	} else {
		if err := uow.SessionRecordRepository().Create(ctx, record); err != nil {
			uow.Rollback()
			msg.Nack()
			return
		}
	}

	if len(turns) > 0 {
		if err := uow.TurnRecordRepository().CreateBatch(ctx, turns); err != nil {
			uow.Rollback()
			msg.Nack()
			return
		}
	}

	if err := uow.Commit(); err != nil {
		as.logger.Error("ARCHIVE", "Failed to commit archive transaction", map[string]interface{}{
			"session_id": payload.Session.ID,
			"error":      err.Error(),
		})
		msg.Nack()
		return
	}

	as.logger.Info("ARCHIVE", "Session archived", map[string]interface{}{
		"session_id": payload.Session.ID,
		"turns":      len(turns),
	})
	msg.Ack()
}
