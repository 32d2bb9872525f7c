package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ycmovement/membership-api/internal/repository"
)

func TestListStatesSortedByName(t *testing.T) {
	db := setupTestDB(t)
	svc := NewReferenceService(repository.NewReferenceRepository(db))

	states, err := svc.ListStates(context.Background())
	require.NoError(t, err)
	require.Len(t, states, 3)
	assert.Equal(t, "Abia", states[0].Name)
	assert.Equal(t, "Kano", states[1].Name)
	assert.Equal(t, "Lagos", states[2].Name)
}

func TestListLGAsFilteredAndSorted(t *testing.T) {
	db := setupTestDB(t)
	svc := NewReferenceService(repository.NewReferenceRepository(db))

	lgas, err := svc.ListLGAs(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, lgas, 3)
	assert.Equal(t, "Agege", lgas[0].Name)
	assert.Equal(t, "Epe", lgas[1].Name)
	assert.Equal(t, "Ikeja", lgas[2].Name)
	for _, lga := range lgas {
		assert.Equal(t, uint(1), lga.StateID)
	}
}

func TestListLGAsUnknownStateIsEmpty(t *testing.T) {
	db := setupTestDB(t)
	svc := NewReferenceService(repository.NewReferenceRepository(db))

	lgas, err := svc.ListLGAs(context.Background(), 999)
	require.NoError(t, err)
	assert.Empty(t, lgas)
}

func TestListLGAsRejectsNonPositiveID(t *testing.T) {
	db := setupTestDB(t)
	svc := NewReferenceService(repository.NewReferenceRepository(db))

	for _, id := range []int{0, -5} {
		_, err := svc.ListLGAs(context.Background(), id)
		assert.ErrorIs(t, err, ErrInvalidStateID, "state id %d", id)
	}
}
