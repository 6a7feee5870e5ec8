package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"sahayak-be/pkg/apperror"
	"sahayak-be/pkg/store"
)

const keyPrefix = "session:"

// SessionStore keeps live sessions in Redis so multiple instances share one
// session space. The optimistic version check rides on WATCH: a write racing
// between read and EXEC fails the transaction and surfaces as a conflict.
type SessionStore struct {
	client *redis.Client
}

func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

func key(id string) string {
	return keyPrefix + id
}

// keyTTL leaves a grace window past the logical TTL so ended tombstones are
// still visible to late reads.
func keyTTL(sess *store.Session) time.Duration {
	return sess.TTL * 2
}

func (s *SessionStore) Save(ctx context.Context, sess *store.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, key(sess.ID), data, keyTTL(sess)).Err(); err != nil {
		return apperror.Wrap(apperror.KindTransient, err, "redis set")
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, id string) (*store.Session, error) {
	raw, err := s.client.Get(ctx, key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperror.Newf(apperror.KindNotFound, "session %s", id)
		}
		return nil, apperror.Wrap(apperror.KindTransient, err, "redis get")
	}
	var sess store.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *SessionStore) CompareAndSwap(ctx context.Context, sess *store.Session, expected int64) error {
	k := key(sess.ID)

	txn := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, k).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return apperror.Newf(apperror.KindNotFound, "session %s", sess.ID)
			}
			return apperror.Wrap(apperror.KindTransient, err, "redis get")
		}
		var current store.Session
		if err := json.Unmarshal(raw, &current); err != nil {
			return err
		}
		if current.Version != expected {
			return apperror.Newf(apperror.KindConflict, "session %s version %d != %d", sess.ID, current.Version, expected)
		}

		data, err := json.Marshal(sess)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, k, data, keyTTL(sess))
			return nil
		})
		return err
	}

	err := s.client.Watch(ctx, txn, k)
	if errors.Is(err, redis.TxFailedErr) {
		// Another writer touched the key between GET and EXEC.
		return apperror.Newf(apperror.KindConflict, "session %s modified concurrently", sess.ID)
	}
	return err
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, key(id)).Err(); err != nil {
		return apperror.Wrap(apperror.KindTransient, err, "redis del")
	}
	return nil
}

// All scans every live session for the inactivity sweeper. SCAN keeps Redis
// responsive; the snapshot is not point-in-time consistent, which the
// sweeper tolerates.
func (s *SessionStore) All(ctx context.Context) ([]*store.Session, error) {
	var out []*store.Session
	iter := s.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		raw, err := s.client.Get(ctx, iter.Val()).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			return nil, apperror.Wrap(apperror.KindTransient, err, "redis get")
		}
		var sess store.Session
		if err := json.Unmarshal(raw, &sess); err != nil {
			continue
		}
		out = append(out, &sess)
	}
	if err := iter.Err(); err != nil {
		return nil, apperror.Wrap(apperror.KindTransient, err, "redis scan")
	}
	return out, nil
}
