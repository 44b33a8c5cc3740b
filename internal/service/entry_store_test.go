package service

import (
	"errors"
	"testing"

	"daily-tasks-bot/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntryStore_GetOrCreateKeepsOneEntryPerDay(t *testing.T) {
	f := newFixture(t, nil)

	first, err := f.store.GetOrCreate(f.ctx, 1, "2024-03-04")
	require.NoError(t, err)
	second, err := f.store.GetOrCreate(f.ctx, 1, "2024-03-04")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "1_2024-03-04", first.ID)

	userID := uint(1)
	entries, err := f.store.List(f.ctx, EntryFilter{UserID: &userID})
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestEntryStore_SaveOverwritesSameKey(t *testing.T) {
	f := newFixture(t, nil)

	f.seed(t, 1, "2024-03-04", []uint{1}, nil)
	f.seed(t, 1, "2024-03-04", []uint{2, 3}, []uint{1})

	entry := f.load(t, 1, "2024-03-04")
	require.NotNil(t, entry)
	assert.Equal(t, []uint{2, 3}, entry.AssignedTaskIDs)
	assert.Equal(t, []uint{1}, entry.CompletedTaskIDs)
}

func TestEntryStore_ReadsDoNotCreate(t *testing.T) {
	f := newFixture(t, nil)

	entry, err := f.store.Get(f.ctx, 7, "2024-03-04")
	require.NoError(t, err)
	assert.Nil(t, entry)

	empty, err := f.store.GetOrEmpty(f.ctx, 7, "2024-03-04")
	require.NoError(t, err)
	assert.Empty(t, empty.AssignedTaskIDs)
	assert.Empty(t, empty.CompletedTaskIDs)
	assert.False(t, empty.IsAbsent)

	assert.Nil(t, f.load(t, 7, "2024-03-04"))
}

func TestEntryStore_RejectsMalformedDates(t *testing.T) {
	f := newFixture(t, nil)

	for _, date := range []string{"", "2024-3-4", "04.03.2024", "2024-02-30"} {
		_, err := f.store.GetOrCreate(f.ctx, 1, date)

		var validationErr *ValidationError
		assert.True(t, errors.As(err, &validationErr), "date %q", date)
	}

	_, err := f.store.List(f.ctx, EntryFilter{DateFrom: "yesterday"})
	var validationErr *ValidationError
	assert.True(t, errors.As(err, &validationErr))
}

func TestEntryStore_ListByTeamUsesActiveMembers(t *testing.T) {
	f := newFixture(t, nil)

	alice := f.addUser(t, 100, "Alice", "core")
	bob := f.addUser(t, 200, "Bob", "core")
	carol := f.addUser(t, 300, "Carol", "ops")

	for _, u := range []uint{alice.ID, bob.ID, carol.ID} {
		f.seed(t, u, "2024-03-04", []uint{1}, nil)
	}

	entries, err := f.store.List(f.ctx, EntryFilter{TeamID: "core"})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, alice.ID, entries[0].UserID)
	assert.Equal(t, bob.ID, entries[1].UserID)

	require.NoError(t, f.users.SetActive(f.ctx, bob.ID, false))

	entries, err = f.store.List(f.ctx, EntryFilter{TeamID: "core"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, alice.ID, entries[0].UserID)

	entries, err = f.store.List(f.ctx, EntryFilter{TeamID: "core", UserID: &carol.ID})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestEntryStore_WrapsBackendFailures(t *testing.T) {
	f := newFixture(t, func(r repository.WorkEntryRepository) repository.WorkEntryRepository {
		return &flakyEntries{WorkEntryRepository: r, failGetDate: "2024-03-04"}
	})

	_, err := f.store.Get(f.ctx, 1, "2024-03-04")
	require.Error(t, err)

	var storeErr *StoreError
	require.True(t, errors.As(err, &storeErr))
	assert.Equal(t, "get", storeErr.Op)
	assert.ErrorIs(t, err, errBackendDown)
}
