// ABOUTME: Tests for the pending selection store and its state machine
// ABOUTME: Covers toggle semantics, commit/abandon transitions, and per-user concurrency

package subjects

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noopPersist(ctx context.Context, chosen []string) error { return nil }

func TestStore_Toggle_RequiresStart(t *testing.T) {
	s := NewStore()

	err := s.Toggle(1, "Математика")
	assert.ErrorIs(t, err, ErrNoSelection)
}

func TestStore_Toggle_UnknownSubject(t *testing.T) {
	s := NewStore()
	s.Start(1)

	err := s.Toggle(1, "Астрология")
	assert.ErrorIs(t, err, ErrUnknownSubject)

	chosen, err := s.Chosen(1)
	require.NoError(t, err)
	assert.Empty(t, chosen, "rejected toggle must not mutate the selection")
}

func TestStore_Toggle_FlipsMembership(t *testing.T) {
	s := NewStore()
	s.Start(1)

	require.NoError(t, s.Toggle(1, "Математика"))
	chosen, err := s.Chosen(1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Математика"}, chosen)

	// Second toggle of the same subject removes it
	require.NoError(t, s.Toggle(1, "Математика"))
	chosen, err = s.Chosen(1)
	require.NoError(t, err)
	assert.Empty(t, chosen)
}

// The final chosen set equals the XOR-fold of all toggles: a subject toggled
// an odd number of times is in, an even number of times is out.
func TestStore_Toggle_XORFold(t *testing.T) {
	s := NewStore()
	s.Start(1)

	toggles := []string{
		"Математика",
		"Физика",
		"Математика",
		"Химия",
		"Физика",
		"Физика",
		"Математика",
	}
	for _, subj := range toggles {
		require.NoError(t, s.Toggle(1, subj))
	}

	chosen, err := s.Chosen(1)
	require.NoError(t, err)
	// Математика x3 -> in, Физика x3 -> in, Химия x1 -> in
	assert.ElementsMatch(t, []string{"Математика", "Физика", "Химия"}, chosen)

	require.NoError(t, s.Toggle(1, "Химия"))
	chosen, err = s.Chosen(1)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Математика", "Физика"}, chosen)
}

func TestStore_Start_DiscardsPreviousSelection(t *testing.T) {
	s := NewStore()
	s.Start(1)
	require.NoError(t, s.Toggle(1, "Математика"))

	s.Start(1)

	chosen, err := s.Chosen(1)
	require.NoError(t, err)
	assert.Empty(t, chosen, "restart must begin from an empty selection")
}

func TestStore_Commit_EmptySelectionFails(t *testing.T) {
	s := NewStore()
	s.Start(1)

	persisted := false
	err := s.Commit(context.Background(), 1, func(ctx context.Context, chosen []string) error {
		persisted = true
		return nil
	})

	assert.ErrorIs(t, err, ErrEmptySelection)
	assert.False(t, persisted, "empty commit must not reach the persister")

	// Still Selecting: a toggle succeeds without a fresh Start
	assert.NoError(t, s.Toggle(1, "Физика"))
}

func TestStore_Commit_Success(t *testing.T) {
	s := NewStore()
	s.Start(1)
	require.NoError(t, s.Toggle(1, "Физика"))
	require.NoError(t, s.Toggle(1, "Математика"))

	var got []string
	err := s.Commit(context.Background(), 1, func(ctx context.Context, chosen []string) error {
		got = chosen
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Математика", "Физика"}, got)

	// Back to Idle
	_, err = s.Chosen(1)
	assert.ErrorIs(t, err, ErrNoSelection)
	assert.ErrorIs(t, s.Toggle(1, "Физика"), ErrNoSelection)
}

func TestStore_Commit_PersistFailureKeepsSelection(t *testing.T) {
	s := NewStore()
	s.Start(1)
	require.NoError(t, s.Toggle(1, "История"))

	persistErr := errors.New("database is down")
	err := s.Commit(context.Background(), 1, func(ctx context.Context, chosen []string) error {
		return persistErr
	})
	require.ErrorIs(t, err, persistErr)

	// Selection survives for retry
	chosen, err := s.Chosen(1)
	require.NoError(t, err)
	assert.Equal(t, []string{"История"}, chosen)

	require.NoError(t, s.Commit(context.Background(), 1, noopPersist))
	_, err = s.Chosen(1)
	assert.ErrorIs(t, err, ErrNoSelection)
}

func TestStore_Commit_WithoutStart(t *testing.T) {
	s := NewStore()

	err := s.Commit(context.Background(), 1, noopPersist)
	assert.ErrorIs(t, err, ErrNoSelection)
}

func TestStore_StartAfterCommit_IsEmpty(t *testing.T) {
	s := NewStore()
	s.Start(1)
	require.NoError(t, s.Toggle(1, "Биология"))
	require.NoError(t, s.Commit(context.Background(), 1, noopPersist))

	s.Start(1)
	chosen, err := s.Chosen(1)
	require.NoError(t, err)
	assert.Empty(t, chosen, "a new selection is independent of the prior commit")
}

func TestStore_Abandon(t *testing.T) {
	s := NewStore()
	s.Start(1)
	require.NoError(t, s.Toggle(1, "Химия"))

	s.Abandon(1)

	_, err := s.Chosen(1)
	assert.ErrorIs(t, err, ErrNoSelection)

	// Abandon when Idle is a no-op
	s.Abandon(1)
}

func TestStore_UsersAreIndependent(t *testing.T) {
	s := NewStore()
	s.Start(1)
	s.Start(2)

	require.NoError(t, s.Toggle(1, "Математика"))
	require.NoError(t, s.Toggle(2, "Физика"))

	chosen1, err := s.Chosen(1)
	require.NoError(t, err)
	chosen2, err := s.Chosen(2)
	require.NoError(t, err)

	assert.Equal(t, []string{"Математика"}, chosen1)
	assert.Equal(t, []string{"Физика"}, chosen2)

	require.NoError(t, s.Commit(context.Background(), 1, noopPersist))

	// User 2 is unaffected by user 1's commit
	chosen2, err = s.Chosen(2)
	require.NoError(t, err)
	assert.Equal(t, []string{"Физика"}, chosen2)
}

func TestStore_ConcurrentTogglesSameUser(t *testing.T) {
	s := NewStore()
	s.Start(1)

	all := Catalog()

	// Each subject is toggled exactly once from its own goroutine; the final
	// set must contain every subject regardless of interleaving.
	var wg sync.WaitGroup
	for _, subj := range all {
		wg.Add(1)
		go func(subj string) {
			defer wg.Done()
			assert.NoError(t, s.Toggle(1, subj))
		}(subj)
	}
	wg.Wait()

	chosen, err := s.Chosen(1)
	require.NoError(t, err)
	assert.ElementsMatch(t, all, chosen)
}

func TestStore_ConcurrentUsers(t *testing.T) {
	s := NewStore()

	const users = 50
	var wg sync.WaitGroup
	for id := int64(1); id <= users; id++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			s.Start(id)
			assert.NoError(t, s.Toggle(id, "Математика"))
			assert.NoError(t, s.Commit(context.Background(), id, noopPersist))
		}(id)
	}
	wg.Wait()

	for id := int64(1); id <= users; id++ {
		_, err := s.Chosen(id)
		assert.ErrorIs(t, err, ErrNoSelection)
	}
}

func TestCatalog_Known(t *testing.T) {
	for _, subj := range Catalog() {
		assert.True(t, Known(subj), subj)
	}
	assert.False(t, Known("Астрология"))
	assert.False(t, Known(""))
	assert.False(t, Known("математика"), "catalog lookup is case-sensitive")
}

func TestCatalog_ReturnsCopy(t *testing.T) {
	first := Catalog()
	first[0] = "mutated"
	assert.NotEqual(t, "mutated", Catalog()[0])
}
