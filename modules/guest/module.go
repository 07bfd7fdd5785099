package guest

import (
	"context"
	"log"

	"github.com/go-monolith/mono"
	"github.com/redis/go-redis/v9"
)

// GuestModule provides the Redis-backed guest session store. It holds no
// relational state; sessions live and die with their TTL.
type GuestModule struct {
	store *Store
}

// Compile-time interface checks.
var _ mono.Module = (*GuestModule)(nil)
var _ mono.HealthCheckableModule = (*GuestModule)(nil)

// NewModule creates a new GuestModule.
func NewModule() *GuestModule {
	return &GuestModule{}
}

// Name returns the module name.
func (m *GuestModule) Name() string {
	return "guest"
}

// SetRedis wires the shared Redis client in. Called after application start,
// once the cache module has connected.
func (m *GuestModule) SetRedis(client *redis.Client) {
	if client != nil {
		m.store = NewStore(client, SessionTTL)
	}
}

// Start initializes the module. The store itself is wired in afterwards via
// SetRedis.
func (m *GuestModule) Start(_ context.Context) error {
	log.Println("[guest] Module started")
	return nil
}

// Stop shuts down the module. The Redis client is owned by the cache module.
func (m *GuestModule) Stop(_ context.Context) error {
	log.Println("[guest] Module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *GuestModule) Health(ctx context.Context) mono.HealthStatus {
	if m.store == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "guest store not wired",
		}
	}
	if err := m.store.client.Ping(ctx).Err(); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "redis unreachable",
		}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
	}
}

// GetStore returns the guest store for wiring into the API module.
func (m *GuestModule) GetStore() *Store {
	return m.store
}
