// Package lease implementa a trava por Connection que impede duas
// sincronizações simultâneas da mesma conexão, mesmo em processos diferentes.
package lease

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/vfg2006/adsync-api/infrastructure/database/postgres"
	"github.com/vfg2006/adsync-api/internal/config"
	"github.com/vfg2006/adsync-api/internal/domain"
)

var (
	ErrLeaseHeld = errors.New("lease held by another holder")
	ErrLeaseLost = errors.New("lease no longer owned")
)

type Locker interface {
	// Acquire devolve ErrLeaseHeld quando outra execução detém a trava.
	Acquire(ctx context.Context, key string, ttl time.Duration) (*domain.Lease, error)
	Extend(ctx context.Context, lease *domain.Lease, ttl time.Duration) error
	Release(ctx context.Context, lease *domain.Lease) error
}

func newHolder() string {
	return uuid.New().String()
}

// New escolhe o backend pela configuração.
func New(cfg *config.Config, conn postgres.Conn, client *redis.Client) (Locker, error) {
	switch cfg.Lease.Backend {
	case "", config.LeaseBackendPostgres:
		return NewPostgresLocker(conn), nil
	case config.LeaseBackendRedis:
		if client == nil {
			return nil, fmt.Errorf("lease: redis backend selected without redis client")
		}
		return NewRedisLocker(client), nil
	default:
		return nil, fmt.Errorf("lease: unknown backend %q", cfg.Lease.Backend)
	}
}
