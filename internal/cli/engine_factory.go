package cli

import (
	"fmt"
	"log/slog"

	"github.com/aretw0/weft"
	"github.com/aretw0/weft/internal/config"
	"github.com/aretw0/weft/pkg/adapters/memory"
	"github.com/aretw0/weft/pkg/adapters/redis"
	"github.com/aretw0/weft/pkg/observability"
	"github.com/aretw0/weft/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
)

// NewEngine initializes a weft engine with standard CLI conventions.
// When metrics are enabled it also returns the registry they are
// registered with; otherwise the registry is nil.
func NewEngine(cfg config.Config, logger *slog.Logger) (*weft.Engine, *prometheus.Registry, error) {
	opts := []weft.Option{weft.WithLogger(logger)}

	var reg *prometheus.Registry
	if cfg.Metrics.Enabled {
		reg = prometheus.NewRegistry()
		metrics, err := observability.NewMetrics(reg)
		if err != nil {
			return nil, nil, fmt.Errorf("error initializing metrics: %w", err)
		}
		opts = append(opts, weft.WithObserver(metrics))
	}

	return weft.New(opts...), reg, nil
}

// Queue backends accepted by NewQueue.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// NewQueue opens the named record queue on the given backend. The returned
// close function releases backend connections.
func NewQueue(backend, name string, cfg config.RedisConfig) (ports.RecordQueue, func() error, error) {
	switch backend {
	case BackendMemory:
		return memory.NewQueue(), func() error { return nil }, nil
	case BackendRedis:
		var opts []redis.Option
		if cfg.Prefix != "" {
			opts = append(opts, redis.WithPrefix(cfg.Prefix))
		}
		if cfg.TTL > 0 {
			opts = append(opts, redis.WithTTL(cfg.TTL))
		}
		q := redis.New(cfg.Addr, cfg.Password, cfg.DB, name, opts...)
		return q, q.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown queue backend %q (want %s or %s)", backend, BackendMemory, BackendRedis)
	}
}

// NewLocker builds the stage locker matching a queue backend.
func NewLocker(backend string, cfg config.RedisConfig) (ports.StageLocker, func() error, error) {
	switch backend {
	case BackendMemory:
		return memory.NewLocker(), func() error { return nil }, nil
	case BackendRedis:
		client := redis.Dial(cfg.Addr, cfg.Password, cfg.DB)
		return redis.NewLocker(client, cfg.LockPrefix), client.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown queue backend %q (want %s or %s)", backend, BackendMemory, BackendRedis)
	}
}
