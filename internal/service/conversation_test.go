package service

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/liliang-cn/qualia/internal/domain"
)

func TestConversation_BeginIsExclusive(t *testing.T) {
	c := NewConversation()

	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if c.Begin() {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, admitted)
	require.True(t, c.Loading())

	c.End()
	require.False(t, c.Loading())
	require.True(t, c.Begin())
}

func TestConversation_BeginClearsEphemeralState(t *testing.T) {
	c := NewConversation()
	c.Append(domain.Message{ID: "a", Role: domain.RoleUser})
	c.AddThinking(domain.ThinkingStep{ID: "1"})
	c.SetResults([]domain.SearchResult{{Title: "t"}})

	require.True(t, c.Begin())
	snap := c.Snapshot()
	require.Len(t, snap.Messages, 1)
	require.Empty(t, snap.Thinking)
	require.Empty(t, snap.SearchResults)
	require.True(t, snap.Loading)
}

func TestConversation_SeedOnlyWhenEmpty(t *testing.T) {
	c := NewConversation()
	require.False(t, c.Seed(nil))

	require.True(t, c.Seed([]domain.Message{{ID: "a"}}))
	require.False(t, c.Seed([]domain.Message{{ID: "b"}}))
	require.Equal(t, "a", c.Messages()[0].ID)
}

func TestConversation_SnapshotIsACopy(t *testing.T) {
	c := NewConversation()
	c.Append(domain.Message{ID: "a"})

	snap := c.Snapshot()
	snap.Messages[0].ID = "changed"
	require.Equal(t, "a", c.Messages()[0].ID)
}
