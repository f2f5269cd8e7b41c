package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/inventory"
	"github.com/fekuna/omnipos-inventory-service/pkg/apperror"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LocalLocker is the in-process Locker used when Redis is disabled.
type LocalLocker struct {
	mu    sync.Mutex
	held  map[string]string
	until map[string]time.Time
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: map[string]string{}, until: map[string]time.Time{}}
}

func (l *LocalLocker) AcquireLock(_ context.Context, key, value string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.held[key]; ok && time.Now().Before(l.until[key]) {
		return false, nil
	}
	l.held[key] = value
	l.until[key] = time.Now().Add(ttl)
	return true, nil
}

func (l *LocalLocker) ReleaseLock(_ context.Context, key, value string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] == value {
		delete(l.held, key)
		delete(l.until, key)
	}
	return nil
}

// WithLock runs fn while holding key. The lock is retried a few times before
// the call gives up with a Busy error carrying busyMsg.
func WithLock(ctx context.Context, locker inventory.Locker, log logger.ZapLogger, key, busyMsg string, fn func() error) error {
	value := uuid.New().String()

	acquired := false
	for i := 0; i < lockAttempts; i++ {
		ok, err := locker.AcquireLock(ctx, key, value, lockTTL)
		if err != nil {
			log.Error("failed to acquire lock redis error", zap.String("key", key), zap.Error(err))
		}
		if ok {
			acquired = true
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(lockBackoff):
		}
	}
	if !acquired {
		return apperror.Busy("%s", busyMsg)
	}
	defer func() {
		if err := locker.ReleaseLock(context.Background(), key, value); err != nil {
			log.Warn("failed to release lock", zap.String("key", key), zap.Error(err))
		}
	}()

	return fn()
}
