package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/servicecenter-api/internal/application/ports"
)

var _ ports.OTPStore = (*OTPStore)(nil)

// OTPStore guarda el hash del código en "otp:<email>" con SET EX; los intentos
// fallidos viven en un contador aparte con la misma expiración.
type OTPStore struct {
	client *goredis.Client
	prefix string
}

// NewOTPStore construye el store.
func NewOTPStore(client *goredis.Client) *OTPStore {
	return &OTPStore{client: client, prefix: "otp:"}
}

func (s *OTPStore) key(email string) string {
	return s.prefix + strings.ToLower(strings.TrimSpace(email))
}

func (s *OTPStore) attemptsKey(email string) string { return s.key(email) + ":attempts" }

func (s *OTPStore) Save(ctx context.Context, email string, entry ports.OTPEntry, ttl time.Duration) error {
	entry.ExpiresAt = time.Now().Add(ttl)
	entry.Attempts = 0
	payload, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key(email), payload, ttl)
	pipe.Del(ctx, s.attemptsKey(email))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis save otp: %w", err)
	}
	return nil
}

func (s *OTPStore) Get(ctx context.Context, email string) (*ports.OTPEntry, error) {
	val, err := s.client.Get(ctx, s.key(email)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get otp: %w", err)
	}
	var entry ports.OTPEntry
	if err := json.Unmarshal(val, &entry); err != nil {
		return nil, fmt.Errorf("redis decode otp: %w", err)
	}
	attempts, err := s.client.Get(ctx, s.attemptsKey(email)).Int()
	if err != nil && !errors.Is(err, goredis.Nil) {
		return nil, fmt.Errorf("redis get otp attempts: %w", err)
	}
	entry.Attempts = attempts
	return &entry, nil
}

// IncrementAttempts INCR atómico; el contador expira junto con el código.
func (s *OTPStore) IncrementAttempts(ctx context.Context, email string) (int, error) {
	ttl, err := s.client.TTL(ctx, s.key(email)).Result()
	if err != nil {
		return 0, fmt.Errorf("redis otp ttl: %w", err)
	}
	if ttl <= 0 {
		return 0, nil
	}
	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, s.attemptsKey(email))
	pipe.Expire(ctx, s.attemptsKey(email), ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("redis incr otp attempts: %w", err)
	}
	return int(incr.Val()), nil
}

// Consume DEL del código: solo quien borra la clave (DEL = 1) lo consume.
func (s *OTPStore) Consume(ctx context.Context, email string) (bool, error) {
	n, err := s.client.Del(ctx, s.key(email)).Result()
	if err != nil {
		return false, fmt.Errorf("redis consume otp: %w", err)
	}
	if err := s.client.Del(ctx, s.attemptsKey(email)).Err(); err != nil {
		return false, fmt.Errorf("redis consume otp attempts: %w", err)
	}
	return n == 1, nil
}

func (s *OTPStore) Delete(ctx context.Context, email string) error {
	if err := s.client.Del(ctx, s.key(email), s.attemptsKey(email)).Err(); err != nil {
		return fmt.Errorf("redis delete otp: %w", err)
	}
	return nil
}
