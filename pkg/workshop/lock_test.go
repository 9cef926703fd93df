package workshop

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aretw0/eventstorm/pkg/adapters/memory"
	"github.com/aretw0/eventstorm/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager(memory.NewStore())
	ctx := context.Background()
	count := 1000

	for i := 0; i < count; i++ {
		id := fmt.Sprintf("workshop-%d", i)
		_ = mgr.Create(ctx, domain.NewDocument(id, "W", time.Now()))
		_ = mgr.Delete(ctx, id)
	}

	// If cleaned up properly, no lock entries survive.
	assert.Empty(t, mgr.locks, "locks leaked after delete")
}
