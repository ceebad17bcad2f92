package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jhoicas/servicecenter-api/internal/application/ports"
)

var _ ports.OTPStore = (*OTPStore)(nil)

// OTPStore códigos OTP en memoria. Las entradas vencidas no se devuelven y un
// janitor las elimina periódicamente.
type OTPStore struct {
	mu      sync.Mutex
	entries map[string]ports.OTPEntry
	now     func() time.Time
	stop    chan struct{}
	once    sync.Once
}

// NewOTPStore crea el store y arranca el janitor con el intervalo dado (0 = sin janitor).
func NewOTPStore(sweepEvery time.Duration) *OTPStore {
	s := &OTPStore{
		entries: map[string]ports.OTPEntry{},
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	if sweepEvery > 0 {
		go s.janitor(sweepEvery)
	}
	return s
}

func (s *OTPStore) janitor(every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			s.Sweep()
		case <-s.stop:
			return
		}
	}
}

// Sweep elimina las entradas vencidas y devuelve cuántas borró.
func (s *OTPStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	n := 0
	for k, e := range s.entries {
		if !now.Before(e.ExpiresAt) {
			delete(s.entries, k)
			n++
		}
	}
	return n
}

// Close detiene el janitor.
func (s *OTPStore) Close() error {
	s.once.Do(func() { close(s.stop) })
	return nil
}

func otpKey(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

func (s *OTPStore) Save(_ context.Context, email string, entry ports.OTPEntry, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry.ExpiresAt = s.now().Add(ttl)
	s.entries[otpKey(email)] = entry
	return nil
}

func (s *OTPStore) Get(_ context.Context, email string) (*ports.OTPEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[otpKey(email)]
	if !ok {
		return nil, nil
	}
	if !s.now().Before(e.ExpiresAt) {
		delete(s.entries, otpKey(email))
		return nil, nil
	}
	return &e, nil
}

func (s *OTPStore) IncrementAttempts(_ context.Context, email string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[otpKey(email)]
	if !ok || !s.now().Before(e.ExpiresAt) {
		return 0, nil
	}
	e.Attempts++
	s.entries[otpKey(email)] = e
	return e.Attempts, nil
}

func (s *OTPStore) Consume(_ context.Context, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[otpKey(email)]
	if !ok {
		return false, nil
	}
	delete(s.entries, otpKey(email))
	return s.now().Before(e.ExpiresAt), nil
}

func (s *OTPStore) Delete(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, otpKey(email))
	return nil
}
