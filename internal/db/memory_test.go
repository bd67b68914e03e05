package db

import (
	"context"
	"testing"
	"time"

	"github.com/jonathan/candidate-tracker/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCandidate(created time.Time) *types.Candidate {
	return &types.Candidate{
		ExtractedFields:   types.UnsetFields(),
		ApplicationStatus: types.ApplicationPending,
		FormStatus:        types.FormInactive,
		EvalStatus:        types.EvalInactive,
		HiringStatus:      types.HiringAwaitingClient,
		HiringFinalStatus: types.HiringFinalUnset,
		CreatedAt:         created,
	}
}

func TestMemoryStore_InsertAndFind(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	c := newCandidate(time.Now())
	c.LastName = "Benali"
	id, err := store.Insert(ctx, c)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := store.FindByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "Benali", got.LastName)
	assert.Equal(t, types.FormInactive, got.FormStatus)
}

func TestMemoryStore_FindByID_NotFound(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	got, err := store.FindByID(ctx, "not-a-uuid")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = store.FindByID(ctx, "8d1f4b0e-3f4c-4a53-9a4a-2f0e1f6f9a10")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryStore_FindByRawID_Fallback(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	raw := "8D1F4B0E-3F4C-4A53-9A4A-2F0E1F6F9A10"
	c := newCandidate(time.Now())
	c.ID = raw
	require.NoError(t, store.Import(c))

	got, err := store.FindByID(ctx, raw)
	require.NoError(t, err)
	assert.Nil(t, got, "canonical lookup should miss a non-canonical id")

	got, err = store.FindByRawID(ctx, raw)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, raw, got.ID)
}

func TestMemoryStore_FindOne(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	c := newCandidate(time.Now())
	c.FormToken = "abc123"
	id, err := store.Insert(ctx, c)
	require.NoError(t, err)

	got, err := store.FindOne(ctx, types.FieldFormToken, "abc123")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, id, got.ID)

	got, err = store.FindOne(ctx, types.FieldFormToken, "other")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryStore_ListNewestFirstWithFilters(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	for i, status := range []types.ApplicationStatus{types.ApplicationPending, types.ApplicationAccepted, types.ApplicationAccepted} {
		c := newCandidate(base.Add(time.Duration(i)*time.Hour))
		c.ApplicationStatus = status
		_, err := store.Insert(ctx, c)
		require.NoError(t, err)
	}

	all, err := store.List(ctx, ListOptions{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.True(t, all[0].CreatedAt.After(all[1].CreatedAt))
	assert.True(t, all[1].CreatedAt.After(all[2].CreatedAt))

	accepted, err := store.List(ctx, ListOptions{ApplicationStatus: types.ApplicationAccepted})
	require.NoError(t, err)
	assert.Len(t, accepted, 2)

	limited, err := store.List(ctx, ListOptions{Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.True(t, base.Add(2*time.Hour).Equal(limited[0].CreatedAt))
}

func TestMemoryStore_ConditionalUpdate(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	id, err := store.Insert(ctx, newCandidate(time.Now()))
	require.NoError(t, err)

	matched, err := store.Update(ctx, id,
		Fields{types.FieldFormStatus: types.FormActive, types.FieldFormToken: "tok"},
		Fields{types.FieldFormStatus: types.FormInactive, types.FieldFormToken: nil})
	require.NoError(t, err)
	assert.True(t, matched)

	before, err := store.Snapshot(id)
	require.NoError(t, err)

	matched, err = store.Update(ctx, id,
		Fields{types.FieldFormToken: "other"},
		Fields{types.FieldFormToken: nil})
	require.NoError(t, err)
	assert.False(t, matched, "token already present")

	after, err := store.Snapshot(id)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	got, err := store.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "tok", got.FormToken)
	assert.Equal(t, types.FormActive, got.FormStatus)
}

func TestMemoryStore_ConditionalUpdate_UnsetMatchesEmptyString(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	legacy := newCandidate(time.Now())
	legacy.ID = "legacy-1"
	legacy.EvalStatus = ""
	require.NoError(t, store.Import(legacy))

	matched, err := store.Update(ctx, "legacy-1",
		Fields{types.FieldEvalStatus: types.EvalActive},
		Fields{types.FieldEvalStatus: nil})
	require.NoError(t, err)
	assert.True(t, matched, "empty gate status counts as unset")

	matched, err = store.Update(ctx, "legacy-1",
		Fields{types.FieldEvalStatus: types.EvalSubmitted},
		Fields{types.FieldEvalStatus: nil})
	require.NoError(t, err)
	assert.False(t, matched, "status is now set")
}

func TestMemoryStore_UpdateStoresNestedValues(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	id, err := store.Insert(ctx, newCandidate(time.Now()))
	require.NoError(t, err)

	score := 2
	now := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)
	matched, err := store.Update(ctx, id, Fields{
		types.FieldEvalCorrection:  map[string]bool{"q1": true, "q2": true, "q3": false},
		types.FieldEvalScore:       &score,
		types.FieldEvalCorrectedAt: now,
	}, nil)
	require.NoError(t, err)
	require.True(t, matched)

	got, err := store.FindByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got.EvalScore)
	assert.Equal(t, 2, *got.EvalScore)
	assert.Equal(t, map[string]bool{"q1": true, "q2": true, "q3": false}, got.EvalCorrection)
	require.NotNil(t, got.EvalCorrectedAt)
	assert.True(t, now.Equal(*got.EvalCorrectedAt))
}

func TestMemoryStore_UpdateUnknownID(t *testing.T) {
	store := NewMemoryStore()
	matched, err := store.Update(context.Background(), "missing", Fields{types.FieldComment: "x"}, nil)
	require.NoError(t, err)
	assert.False(t, matched)
}

func TestMemoryStore_Delete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	id, err := store.Insert(ctx, newCandidate(time.Now()))
	require.NoError(t, err)

	deleted, err := store.Delete(ctx, id)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = store.Delete(ctx, id)
	require.NoError(t, err)
	assert.False(t, deleted)

	got, err := store.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: "sqlite"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown store driver")
}

func TestOpen_Memory(t *testing.T) {
	store, err := Open(context.Background(), Config{Driver: DriverMemory})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, store)
}

func TestBuildUpdate(t *testing.T) {
	query, args := buildUpdate("id-1", []byte(`{"formStatus":"submitted"}`), Fields{
		types.FieldFormStatus: types.FormActive,
		types.FieldFormToken:  nil,
	})

	assert.Equal(t,
		`UPDATE candidates SET doc = doc || $2::jsonb WHERE id = $1`+
			` AND doc->>($3::text) = $4`+
			` AND coalesce(doc->>($5::text), '') = ''`,
		query)
	require.Len(t, args, 5)
	assert.Equal(t, "id-1", args[0])
	assert.Equal(t, types.FieldFormStatus, args[2])
	assert.Equal(t, "active", args[3])
	assert.Equal(t, types.FieldFormToken, args[4])
}
