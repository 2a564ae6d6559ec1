package auth

import (
	"hash/fnv"
	"sync"
	"time"
)

// Table is an ephemeral TTL keyspace. Entries past their expiry must be
// treated as absent; implementations are free to evict them lazily on
// lookup rather than sweeping in the background.
type Table[V any] interface {
	Get(key string) (V, bool)
	Put(key string, value V, ttl time.Duration)
	Delete(key string)
	// Sweep evicts every expired entry and returns how many were removed.
	Sweep() int
}

const tableShards = 32

type tableEntry[V any] struct {
	value     V
	expiresAt time.Time
}

type tableShard[V any] struct {
	mu      sync.Mutex
	entries map[string]tableEntry[V]
}

// MemoryTable is the single-process Table implementation. Keys are sharded
// so writes to distinct keys rarely contend; within a shard, last writer
// wins. Nothing survives a restart.
type MemoryTable[V any] struct {
	shards [tableShards]tableShard[V]
	now    func() time.Time
}

func NewMemoryTable[V any]() *MemoryTable[V] {
	table := &MemoryTable[V]{now: time.Now}
	for i := range table.shards {
		table.shards[i].entries = make(map[string]tableEntry[V])
	}
	return table
}

func (t *MemoryTable[V]) shard(key string) *tableShard[V] {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return &t.shards[h.Sum32()%tableShards]
}

func (t *MemoryTable[V]) Get(key string) (V, bool) {
	shard := t.shard(key)
	shard.mu.Lock()
	defer shard.mu.Unlock()

	entry, ok := shard.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	if t.now().After(entry.expiresAt) {
		delete(shard.entries, key)
		var zero V
		return zero, false
	}
	return entry.value, true
}

func (t *MemoryTable[V]) Put(key string, value V, ttl time.Duration) {
	shard := t.shard(key)
	shard.mu.Lock()
	defer shard.mu.Unlock()

	shard.entries[key] = tableEntry[V]{value: value, expiresAt: t.now().Add(ttl)}
}

func (t *MemoryTable[V]) Delete(key string) {
	shard := t.shard(key)
	shard.mu.Lock()
	defer shard.mu.Unlock()

	delete(shard.entries, key)
}

func (t *MemoryTable[V]) Sweep() int {
	now := t.now()
	removed := 0
	for i := range t.shards {
		shard := &t.shards[i]
		shard.mu.Lock()
		for key, entry := range shard.entries {
			if now.After(entry.expiresAt) {
				delete(shard.entries, key)
				removed++
			}
		}
		shard.mu.Unlock()
	}
	return removed
}
