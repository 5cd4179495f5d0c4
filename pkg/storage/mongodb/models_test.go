package mongodb

import (
	"radiomirchi/pkg/domain"
	"radiomirchi/pkg/storage"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestMongoMission_RoundTrip(t *testing.T) {
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	in := domain.Mission{
		ID:     domain.NewMissionID(),
		UserID: "player-1",
		Topic:  "mandatory curfews",
		Status: domain.MissionStatusStage2,
		Propaganda: &domain.Propaganda{
			Summary:        "Curfews bring peace.",
			ProofSentences: []string{"Nights are quieter."},
			Speakers: []domain.Speaker{
				{Name: "Boris", Gender: domain.GenderMale},
				{Name: "Vera", Gender: domain.GenderFemale},
			},
			InitialListeners: 5000,
		},
		DialoguePrompt:    "briefing",
		AwakenedListeners: 120,
		Attempts:          1,
		LastError:         "llm unavailable",
		CreatedAt:         created,
		UpdatedAt:         created.Add(time.Minute),
	}

	var doc MongoMission
	doc.FromDomain(in)
	require.Equal(t, in.ID.String(), doc.ID)
	require.Equal(t, "stage2", doc.Status)
	require.Len(t, doc.Propaganda.Speakers, 2)

	out, err := doc.ToDomain()
	require.NoError(t, err)
	require.Equal(t, in, *out)
}

func TestMongoMission_ToDomainInvalidID(t *testing.T) {
	doc := MongoMission{ID: "not-a-uuid"}
	_, err := doc.ToDomain()
	require.Error(t, err)
}

func TestUpdateDocument(t *testing.T) {
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	status := domain.MissionStatusFailed
	lastErr := "boom"
	awakened := 7

	doc := updateDocument(storage.MissionUpdates{
		Status:            &status,
		AwakenedListeners: &awakened,
		LastError:         &lastErr,
		IncAttempts:       true,
	}, at)

	require.Equal(t, bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "updated_at", Value: at},
			{Key: "status", Value: "failed"},
			{Key: "awakened_listeners", Value: 7},
			{Key: "last_error", Value: "boom"},
		}},
		{Key: "$inc", Value: bson.D{{Key: "attempts", Value: 1}}},
	}, doc)
}

func TestUpdateDocument_ClearsLastError(t *testing.T) {
	at := time.Now()
	empty := ""
	prompt := "briefing"

	doc := updateDocument(storage.MissionUpdates{LastError: &empty, DialoguePrompt: &prompt}, at)

	require.Equal(t, bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "updated_at", Value: at},
			{Key: "dialogue_generator_prompt", Value: "briefing"},
		}},
		{Key: "$unset", Value: bson.D{{Key: "last_error", Value: ""}}},
	}, doc)
}
