package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"ridebooking/internal/domain"
	"ridebooking/internal/domain/models"
)

// MemorySessionStore keeps admin sessions in process memory.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]models.Session
	now      func() time.Time
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]models.Session),
		now:      time.Now,
	}
}

func (s *MemorySessionStore) Save(_ context.Context, sess models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
	return nil
}

// Get returns the session, evicting it when expired.
func (s *MemorySessionStore) Get(_ context.Context, id string) (models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return models.Session{}, domain.NotFoundError{Resource: "session"}
	}
	if sess.Expired(s.now()) {
		delete(s.sessions, id)
		return models.Session{}, domain.NotFoundError{Resource: "session"}
	}
	return sess, nil
}

func (s *MemorySessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// RedisSessionStore keeps sessions as JSON values that expire with the
// session itself.
type RedisSessionStore struct {
	Client redis.UniversalClient
	Prefix string
}

func NewRedisSessionStore(client redis.UniversalClient) RedisSessionStore {
	return RedisSessionStore{Client: client, Prefix: "zgr:session:"}
}

func (s RedisSessionStore) key(id string) string {
	return s.Prefix + id
}

func (s RedisSessionStore) Save(ctx context.Context, sess models.Session) error {
	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return domain.ValidationError{Field: "session", Msg: "already expired"}
	}
	payload, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	if err := s.Client.Set(ctx, s.key(sess.ID), payload, ttl).Err(); err != nil {
		return domain.PersistenceError{Op: "save session", Err: err}
	}
	return nil
}

func (s RedisSessionStore) Get(ctx context.Context, id string) (models.Session, error) {
	raw, err := s.Client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.Session{}, domain.NotFoundError{Resource: "session"}
		}
		return models.Session{}, domain.PersistenceError{Op: "load session", Err: err}
	}
	var sess models.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return models.Session{}, domain.PersistenceError{Op: "decode session", Err: err}
	}
	return sess, nil
}

func (s RedisSessionStore) Delete(ctx context.Context, id string) error {
	if err := s.Client.Del(ctx, s.key(id)).Err(); err != nil {
		return domain.PersistenceError{Op: "delete session", Err: err}
	}
	return nil
}

// NewRedisClient connects to the configured Redis instance.
func NewRedisClient(addr, password string, db int) redis.UniversalClient {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}
