package runtime

import (
	"context"
	"fmt"
	"sync"
	"talky/domain"
	"talky/domain/event"
	"talky/errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type Sink struct{}

func (s Sink) Consume(_ context.Context, _ event.Event) error { return nil }

func TestRegistry_Register_One_Session(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	id := domain.NewSessionID()
	sink := Sink{}

	// Given no session is connected
	req.Zero(registry.Len())

	// When a session registers
	req.NoError(registry.Register(id, domain.NewIdentity("alice"), sink))

	// Then it is visible everywhere
	req.Equal(1, registry.Len())
	identity, ok := registry.Identity(id)
	req.True(ok)
	req.Equal("alice", identity.Username)
	req.NotNil(identity.State)

	got, ok := registry.Sink(id)
	req.True(ok)
	req.Equal(sink, got)
	req.Len(registry.Sinks(), 1)
}

func TestRegistry_Register_DuplicateHandle(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	id := domain.NewSessionID()

	req.NoError(registry.Register(id, domain.NewIdentity("alice"), Sink{}))

	// When the same handle is registered again
	err := registry.Register(id, domain.NewIdentity("mallory"), Sink{})

	// Then the invariant violation is reported and the entry untouched
	req.ErrorIs(err, errors.ErrSessionAlreadyRegistered)
	identity, _ := registry.Identity(id)
	req.Equal("alice", identity.Username)
}

func TestRegistry_Remove_Idempotent(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	alice := domain.NewSessionID()
	bob := domain.NewSessionID()
	req.NoError(registry.Register(alice, domain.NewIdentity("alice"), Sink{}))
	req.NoError(registry.Register(bob, domain.NewIdentity("bob"), Sink{}))

	// When alice is removed twice
	req.True(registry.Remove(alice))
	req.False(registry.Remove(alice))

	// Then only bob is left
	req.Equal(1, registry.Len())
	_, ok := registry.Identity(alice)
	req.False(ok)
	_, ok = registry.LookupByUsername("alice")
	req.False(ok)
	snapshot := registry.Snapshot()
	req.Len(snapshot, 1)
	req.Equal("bob", snapshot[bob].Username)
}

func TestRegistry_LookupByUsername(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	alice := domain.NewSessionID()
	req.NoError(registry.Register(alice, domain.NewIdentity("alice"), Sink{}))

	id, ok := registry.LookupByUsername("alice")
	req.True(ok)
	req.Equal(alice, id)

	_, ok = registry.LookupByUsername("carol")
	req.False(ok)
}

func TestRegistry_LookupByUsername_DuplicateNames(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	first := domain.NewSessionID()
	second := domain.NewSessionID()

	// Given two sessions claiming the same name
	req.NoError(registry.Register(first, domain.NewIdentity("alice"), Sink{}))
	req.NoError(registry.Register(second, domain.NewIdentity("alice"), Sink{}))

	// Then one of them is returned, which one is unspecified
	id, ok := registry.LookupByUsername("alice")
	req.True(ok)
	req.Contains([]domain.SessionID{first, second}, id)
}

func TestRegistry_Snapshot_IsACopy(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	id := domain.NewSessionID()
	req.NoError(registry.Register(id, domain.NewIdentity("alice"), Sink{}))

	// When a caller mutates the snapshot
	snapshot := registry.Snapshot()
	snapshot[id].State["typing"] = true
	delete(snapshot, id)

	// Then the registry is unaffected
	fresh := registry.Snapshot()
	req.Len(fresh, 1)
	req.Empty(fresh[id].State)
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := domain.NewSessionID()
			name := fmt.Sprintf("user-%d", i)
			_ = registry.Register(id, domain.NewIdentity(name), Sink{})
			registry.LookupByUsername(name)
			registry.Snapshot()
			if i%2 == 0 {
				registry.Remove(id)
				registry.Remove(id)
			}
		}(i)
	}
	wg.Wait()

	req.Equal(50, registry.Len())
	req.Len(registry.Snapshot(), 50)
}
