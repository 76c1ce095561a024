package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicxz/backend/internal/models"
)

func TestSchedule_CreateAndList(t *testing.T) {
	svc := NewSchedule(openTestDB(t))

	late, err := svc.Create(ctx, "Asha follow-up", "2024-05-02T15:30")
	require.NoError(t, err)
	assert.Equal(t, models.StatusScheduled, late.Status)

	_, err = svc.Create(ctx, "Meera intake", "2024-05-01T09:00:00Z")
	require.NoError(t, err)
	_, err = svc.Create(ctx, "Group session", "2024-05-01 18:00")
	require.NoError(t, err)

	evs, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, evs, 3)
	assert.Equal(t, "Meera intake", evs[0].Title)
	assert.Equal(t, "Group session", evs[1].Title)
	assert.Equal(t, "Asha follow-up", evs[2].Title)
}

func TestSchedule_ListOrdersAcrossOffsets(t *testing.T) {
	svc := NewSchedule(openTestDB(t))

	_, err := svc.Create(ctx, "later", "2024-05-01T06:00:00Z")
	require.NoError(t, err)
	earlier, err := svc.Create(ctx, "earlier", "2024-05-01T10:00:00+05:00")
	require.NoError(t, err)
	assert.Equal(t, time.UTC, earlier.Time.Location())
	assert.Equal(t, 5, earlier.Time.Hour())

	evs, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, evs, 2)
	assert.Equal(t, "earlier", evs[0].Title)
	assert.Equal(t, "later", evs[1].Title)
}

func TestSchedule_CreateValidation(t *testing.T) {
	svc := NewSchedule(openTestDB(t))

	_, err := svc.Create(ctx, "", "2024-05-01T09:00")
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = svc.Create(ctx, "x", "tomorrow at ten")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestSchedule_UpdateStatus(t *testing.T) {
	gdb := openTestDB(t)
	svc := NewSchedule(gdb)
	ev, err := svc.Create(ctx, "Asha", "2024-05-01T09:00")
	require.NoError(t, err)

	got, err := svc.UpdateStatus(ctx, ev.ID, models.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, got.Status)
	assert.Equal(t, "Asha", got.Title)

	_, err = svc.UpdateStatus(ctx, ev.ID, "Bogus")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	var stored models.ScheduleEvent
	require.NoError(t, gdb.First(&stored, ev.ID).Error)
	assert.Equal(t, models.StatusCompleted, stored.Status, "rejected status must not be stored")

	_, err = svc.UpdateStatus(ctx, 999, models.StatusCanceled)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSchedule_Delete(t *testing.T) {
	svc := NewSchedule(openTestDB(t))
	ev, err := svc.Create(ctx, "Asha", "2024-05-01T09:00")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, ev.ID))
	assert.ErrorIs(t, svc.Delete(ctx, ev.ID), ErrNotFound)

	evs, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, evs)
}
