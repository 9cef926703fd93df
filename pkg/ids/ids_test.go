package ids_test

import (
	"sync"
	"testing"

	"github.com/aretw0/eventstorm/pkg/ids"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUID_Unique(t *testing.T) {
	gen := ids.UUID()
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := gen.NewID()
		_, err := uuid.Parse(id)
		require.NoError(t, err)
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestSequential_Concurrent(t *testing.T) {
	gen := ids.NewSequential("el")
	assert.Equal(t, "el-1", gen.NewID())

	var wg sync.WaitGroup
	var mu sync.Mutex
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := gen.NewID()
			mu.Lock()
			seen[id] = true
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Len(t, seen, 50)
}
