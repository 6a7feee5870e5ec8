package service

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"

	"sahayak-be/internal/pkg/logger"
	"sahayak-be/internal/websocket"
	"sahayak-be/pkg/apperror"
	"sahayak-be/pkg/i18n"
	"sahayak-be/pkg/session"
	"sahayak-be/pkg/store"
)

// SweepStore is the session backend as the sweeper sees it: the lifecycle
// store plus the full scan both concrete stores provide.
type SweepStore interface {
	session.Store
	All(ctx context.Context) ([]*store.Session, error)
}

// StatusPusher is the delivery side of guidance nudges. *websocket.Hub
// satisfies it.
type StatusPusher interface {
	Send(sessionID string, msg websocket.StatusMessage)
}

// ISweeperService periodically scans live sessions and nudges the idle ones
// over their websocket. One nudge per idle period: the GuidedAt watermark
// suppresses repeats until the user speaks again.
type ISweeperService interface {
	Run(ctx context.Context)
}

type sweeperService struct {
	store     SweepStore
	hub       StatusPusher
	clock     clockwork.Clock
	interval  time.Duration
	idleAfter time.Duration
	logger    logger.ILogger
}

func NewSweeperService(
	store SweepStore,
	hub StatusPusher,
	clock clockwork.Clock,
	interval time.Duration,
	idleAfter time.Duration,
	logger logger.ILogger,
) ISweeperService {
	return &sweeperService{
		store:     store,
		hub:       hub,
		clock:     clock,
		interval:  interval,
		idleAfter: idleAfter,
		logger:    logger,
	}
}

func (ss *sweeperService) Run(ctx context.Context) {
	ticker := ss.clock.NewTicker(ss.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			ss.sweep(ctx)
		}
	}
}

func (ss *sweeperService) sweep(ctx context.Context) {
	sessions, err := ss.store.All(ctx)
	if err != nil {
		ss.logger.Warn("SWEEPER", "Failed to scan sessions", map[string]interface{}{"error": err.Error()})
		return
	}

	now := ss.clock.Now()
	for _, sess := range sessions {
		if sess.Ended || sess.Expired(now) {
			continue
		}
		if now.Sub(sess.LastAccessedAt) < ss.idleAfter {
			continue
		}
		if sess.GuidedAt.After(sess.LastAccessedAt) {
			continue
		}
		ss.guide(ctx, sess, now)
	}
}

func (ss *sweeperService) guide(ctx context.Context, sess *store.Session, now time.Time) {
	lang := sess.Language
	if lang == "" {
		lang = i18n.DefaultLanguage
	}
	ss.hub.Send(sess.ID, websocket.StatusMessage{
		Kind: websocket.StatusGuidance,
		Text: i18n.Render(lang, i18n.MsgInactivity),
	})

	// Watermark without touching LastAccessedAt, so guidance never extends
	// the session's life. Losing the race to a real turn is fine.
	marked := sess.Clone()
	marked.GuidedAt = now
	marked.Version++
	if err := ss.store.CompareAndSwap(ctx, marked, sess.Version); err != nil {
		if apperror.KindOf(err) != apperror.KindConflict {
			ss.logger.Warn("SWEEPER", "Failed to mark guided session", map[string]interface{}{
				"session_id": sess.ID,
				"error":      err.Error(),
			})
		}
	}
}
