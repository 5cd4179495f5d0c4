package mongodb_test

import (
	"context"
	"radiomirchi/pkg/domain"
	"radiomirchi/pkg/storage"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newMission(userID domain.UserID, status domain.MissionStatus, createdAt time.Time) domain.Mission {
	return domain.Mission{
		ID:        domain.NewMissionID(),
		UserID:    userID,
		Topic:     "rationing is freedom",
		Status:    status,
		CreatedAt: createdAt.UTC().Truncate(time.Millisecond),
	}
}

func ptr[T any](v T) *T { return &v }

func TestMongo_StoreAndGetMission(t *testing.T) {
	strg, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	in := newMission("u1", domain.MissionStatusPending, time.Now())
	stored, err := strg.StoreMission(ctx, in)
	require.NoError(t, err)
	require.Equal(t, in.ID, stored.ID)
	require.Equal(t, in.CreatedAt, stored.UpdatedAt)

	got, err := strg.MissionByID(ctx, in.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, domain.MissionStatusPending, got.Status)
	require.True(t, got.CreatedAt.Equal(in.CreatedAt))

	owned, err := strg.UserMission(ctx, "u1", in.ID)
	require.NoError(t, err)
	require.NotNil(t, owned)

	notOwned, err := strg.UserMission(ctx, "u2", in.ID)
	require.NoError(t, err)
	require.Nil(t, notOwned)

	missing, err := strg.MissionByID(ctx, domain.NewMissionID())
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestMongo_UpdateMission(t *testing.T) {
	strg, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	in := newMission("u1", domain.MissionStatusPending, time.Now())
	_, err := strg.StoreMission(ctx, in)
	require.NoError(t, err)

	propaganda := &domain.Propaganda{
		Summary:          "Rations keep us strong.",
		ProofSentences:   []string{"Obesity is down."},
		Speakers:         []domain.Speaker{{Name: "Vera", Gender: domain.GenderFemale}},
		InitialListeners: 9000,
	}
	updated, err := strg.UpdateMission(ctx, in.ID, storage.MissionUpdates{
		Status:      ptr(domain.MissionStatusStage1),
		Propaganda:  propaganda,
		LastError:   ptr("transient"),
		IncAttempts: true,
	})
	require.NoError(t, err)
	require.Equal(t, domain.MissionStatusStage1, updated.Status)
	require.Equal(t, propaganda, updated.Propaganda)
	require.Equal(t, "transient", updated.LastError)
	require.EqualValues(t, 1, updated.Attempts)
	require.False(t, updated.UpdatedAt.Before(updated.CreatedAt))

	updated, err = strg.UpdateMission(ctx, in.ID, storage.MissionUpdates{
		Status:         ptr(domain.MissionStatusStage2),
		DialoguePrompt: ptr("briefing"),
		LastError:      ptr(""),
	})
	require.NoError(t, err)
	require.Equal(t, domain.MissionStatusStage2, updated.Status)
	require.Equal(t, "briefing", updated.DialoguePrompt)
	require.Empty(t, updated.LastError)
	require.EqualValues(t, 1, updated.Attempts)

	missing, err := strg.UpdateMission(ctx, domain.NewMissionID(), storage.MissionUpdates{AwakenedListeners: ptr(1)})
	require.NoError(t, err)
	require.Nil(t, missing)

	_, err = strg.UpdateMission(ctx, in.ID, storage.MissionUpdates{})
	require.ErrorIs(t, err, storage.ErrInvalidUpdate)
}

func TestMongo_MissionsByStatus(t *testing.T) {
	strg, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	pending := newMission("u1", domain.MissionStatusPending, base.Add(2*time.Minute))
	stage1 := newMission("u2", domain.MissionStatusStage1, base.Add(time.Minute))
	done := newMission("u1", domain.MissionStatusStage2, base)
	for _, m := range []domain.Mission{pending, stage1, done} {
		_, err := strg.StoreMission(ctx, m)
		require.NoError(t, err)
	}

	got, err := strg.MissionsByStatus(ctx, domain.MissionStatusPending, domain.MissionStatusStage1)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, stage1.ID, got[0].ID)
	require.Equal(t, pending.ID, got[1].ID)

	none, err := strg.MissionsByStatus(ctx)
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestMongo_UserMissionsPagination(t *testing.T) {
	strg, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	var ids []domain.MissionID
	for i := range 5 {
		status := domain.MissionStatusStage2
		if i%2 == 0 {
			status = domain.MissionStatusPending
		}
		m := newMission("u1", status, base.Add(time.Duration(i)*time.Minute))
		_, err := strg.StoreMission(ctx, m)
		require.NoError(t, err)
		ids = append(ids, m.ID)
	}
	_, err := strg.StoreMission(ctx, newMission("u2", domain.MissionStatusPending, base))
	require.NoError(t, err)

	page, err := strg.UserMissions(ctx, "u1", "", storage.Cursor{}, 2)
	require.NoError(t, err)
	require.Len(t, page.Missions, 2)
	require.Equal(t, ids[4], page.Missions[0].ID)
	require.Equal(t, ids[3], page.Missions[1].ID)
	require.NotNil(t, page.NextCursor)

	page, err = strg.UserMissions(ctx, "u1", "", *page.NextCursor, 10)
	require.NoError(t, err)
	require.Len(t, page.Missions, 3)
	require.Nil(t, page.NextCursor)

	filtered, err := strg.UserMissions(ctx, "u1", domain.MissionStatusPending, storage.Cursor{}, 10)
	require.NoError(t, err)
	require.Len(t, filtered.Missions, 3)
}

func TestMongo_UserMissionsSameMillisecond(t *testing.T) {
	strg, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	createdAt := time.Now().Add(-time.Hour)
	want := make(map[domain.MissionID]bool)
	for range 5 {
		m := newMission("u1", domain.MissionStatusStage2, createdAt)
		_, err := strg.StoreMission(ctx, m)
		require.NoError(t, err)
		want[m.ID] = true
	}

	seen := make(map[domain.MissionID]bool)
	cursor := storage.Cursor{}
	for range 10 {
		page, err := strg.UserMissions(ctx, "u1", "", cursor, 2)
		require.NoError(t, err)
		for _, m := range page.Missions {
			require.False(t, seen[m.ID], "mission %s returned twice", m.ID)
			seen[m.ID] = true
		}
		if page.NextCursor == nil {
			break
		}
		cursor = *page.NextCursor
	}
	require.Equal(t, want, seen)
}

func TestMongo_DeleteMission(t *testing.T) {
	strg, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	m := newMission("u1", domain.MissionStatusStage2, time.Now())
	_, err := strg.StoreMission(ctx, m)
	require.NoError(t, err)

	deleted, err := strg.DeleteMission(ctx, "u2", m.ID)
	require.NoError(t, err)
	require.Nil(t, deleted, "other users cannot delete the mission")

	deleted, err = strg.DeleteMission(ctx, "u1", m.ID)
	require.NoError(t, err)
	require.NotNil(t, deleted)
	require.Equal(t, m.ID, deleted.ID)

	got, err := strg.MissionByID(ctx, m.ID)
	require.NoError(t, err)
	require.Nil(t, got)
}
