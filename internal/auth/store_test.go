package auth

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryTablePutGetDelete(t *testing.T) {
	table := NewMemoryTable[string]()

	table.Put("a", "first", time.Minute)
	value, ok := table.Get("a")
	require.True(t, ok)
	require.Equal(t, "first", value)

	table.Put("a", "second", time.Minute)
	value, ok = table.Get("a")
	require.True(t, ok)
	require.Equal(t, "second", value)

	table.Delete("a")
	_, ok = table.Get("a")
	require.False(t, ok)
}

func TestMemoryTableLazyExpiry(t *testing.T) {
	table := NewMemoryTable[string]()
	current := time.Now()
	table.now = func() time.Time { return current }

	table.Put("a", "value", time.Minute)

	current = current.Add(59 * time.Second)
	_, ok := table.Get("a")
	require.True(t, ok)

	current = current.Add(2 * time.Second)
	_, ok = table.Get("a")
	require.False(t, ok)

	// The expired entry was evicted by the lookup itself.
	require.Equal(t, 0, table.Sweep())
}

func TestMemoryTableSweep(t *testing.T) {
	table := NewMemoryTable[int]()
	current := time.Now()
	table.now = func() time.Time { return current }

	for i := 0; i < 10; i++ {
		table.Put(fmt.Sprintf("short-%d", i), i, time.Second)
		table.Put(fmt.Sprintf("long-%d", i), i, time.Hour)
	}

	current = current.Add(time.Minute)
	require.Equal(t, 10, table.Sweep())

	for i := 0; i < 10; i++ {
		_, ok := table.Get(fmt.Sprintf("long-%d", i))
		require.True(t, ok)
	}
}

func TestMemoryTableConcurrentKeys(t *testing.T) {
	table := NewMemoryTable[int]()

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("key-%d", i)
			for j := 0; j < 100; j++ {
				table.Put(key, j, time.Minute)
				_, _ = table.Get(key)
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < 64; i++ {
		value, ok := table.Get(fmt.Sprintf("key-%d", i))
		require.True(t, ok)
		require.Equal(t, 99, value)
	}
}
