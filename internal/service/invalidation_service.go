package service

import (
	"context"
	"fmt"
	"os"

	"sahayak-be/internal/pkg/logger"
	"sahayak-be/pkg/events"
	pkgNats "sahayak-be/pkg/nats"
	"sahayak-be/pkg/scheme"

	"github.com/google/uuid"
)

// IInvalidationService listens for catalog change events from other
// instances and drops the affected scheme from the local cache. Each
// instance uses its own durable consumer; invalidations fan out to all
// replicas instead of being load-balanced across them.
type IInvalidationService interface {
	Start() error
}

type invalidationService struct {
	sub    *pkgNats.Subscriber
	cache  *scheme.Cache
	logger logger.ILogger
}

func NewInvalidationService(
	sub *pkgNats.Subscriber,
	cache *scheme.Cache,
	logger logger.ILogger,
) IInvalidationService {
	return &invalidationService{
		sub:    sub,
		cache:  cache,
		logger: logger,
	}
}

func (is *invalidationService) Start() error {
	subject := "events." + events.TypeSchemeUpdated
	durable := consumerName()

	return is.sub.Subscribe(subject, durable, func(ctx context.Context, event events.Event) error {
		id, _ := event.Payload()["scheme_id"].(string)
		if id == "" {
			// Nothing to invalidate; ack and move on.
			return nil
		}

		is.cache.Invalidate(id)
		is.logger.Info("invalidation_service", "scheme cache entry invalidated", map[string]interface{}{
			"scheme_id": id,
		})
		return nil
	})
}

// consumerName derives a per-instance durable name so every replica sees
// every invalidation. NATS durable names reject dots, hence the sanitizing.
func consumerName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return fmt.Sprintf("scheme_invalidator_%s", uuid.NewString()[:8])
	}
	safe := make([]rune, 0, len(host))
	for _, r := range host {
		if r == '.' || r == '*' || r == '>' || r == ' ' {
			r = '_'
		}
		safe = append(safe, r)
	}
	return fmt.Sprintf("scheme_invalidator_%s", string(safe))
}
