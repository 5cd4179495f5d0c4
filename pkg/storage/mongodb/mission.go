package mongodb

import (
	"context"
	"errors"
	"fmt"
	"radiomirchi/pkg/domain"
	"radiomirchi/pkg/storage"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// now returns the current time at the precision BSON dates keep.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// StoreMission inserts a mission. CreatedAt and UpdatedAt are set when zero.
func (m *Mongo) StoreMission(ctx context.Context, mission domain.Mission) (*domain.Mission, error) {
	if mission.CreatedAt.IsZero() {
		mission.CreatedAt = now()
	}
	if mission.UpdatedAt.IsZero() {
		mission.UpdatedAt = mission.CreatedAt
	}

	var doc MongoMission
	doc.FromDomain(mission)
	if _, err := m.missions().InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("could not insert mission into mongodb: %w", err)
	}

	return doc.ToDomain()
}

func (m *Mongo) findOne(ctx context.Context, filter bson.D) (*domain.Mission, error) {
	var doc MongoMission
	if err := m.missions().FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}

		return nil, fmt.Errorf("could not find mission: %w", err)
	}

	return doc.ToDomain()
}

// MissionByID returns the mission or nil.
func (m *Mongo) MissionByID(ctx context.Context, id domain.MissionID) (*domain.Mission, error) {
	return m.findOne(ctx, bson.D{{Key: "_id", Value: id.String()}})
}

// UserMission returns the mission if it belongs to userID, nil otherwise.
func (m *Mongo) UserMission(ctx context.Context, userID domain.UserID, id domain.MissionID) (*domain.Mission, error) {
	return m.findOne(ctx, bson.D{
		{Key: "_id", Value: id.String()},
		{Key: "user_id", Value: string(userID)},
	})
}

// updateDocument translates storage.MissionUpdates into a MongoDB update document.
func updateDocument(updates storage.MissionUpdates, at time.Time) bson.D {
	set := bson.D{{Key: "updated_at", Value: at}}
	unset := bson.D{}

	if updates.Status != nil {
		set = append(set, bson.E{Key: "status", Value: string(*updates.Status)})
	}
	if updates.Propaganda != nil {
		set = append(set, bson.E{Key: "propaganda", Value: propagandaFromDomain(updates.Propaganda)})
	}
	if updates.DialoguePrompt != nil {
		set = append(set, bson.E{Key: "dialogue_generator_prompt", Value: *updates.DialoguePrompt})
	}
	if updates.AwakenedListeners != nil {
		set = append(set, bson.E{Key: "awakened_listeners", Value: *updates.AwakenedListeners})
	}
	if updates.LastError != nil {
		if *updates.LastError == "" {
			unset = append(unset, bson.E{Key: "last_error", Value: ""})
		} else {
			set = append(set, bson.E{Key: "last_error", Value: *updates.LastError})
		}
	}

	doc := bson.D{{Key: "$set", Value: set}}
	if len(unset) > 0 {
		doc = append(doc, bson.E{Key: "$unset", Value: unset})
	}
	if updates.IncAttempts {
		doc = append(doc, bson.E{Key: "$inc", Value: bson.D{{Key: "attempts", Value: 1}}})
	}

	return doc
}

// UpdateMission applies updates and returns the mission after the update.
func (m *Mongo) UpdateMission(ctx context.Context,
	id domain.MissionID,
	updates storage.MissionUpdates) (*domain.Mission, error) {
	if updates.Empty() {
		return nil, storage.ErrInvalidUpdate
	}

	var doc MongoMission
	err := m.missions().FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: id.String()}},
		updateDocument(updates, now()),
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}

		return nil, fmt.Errorf("could not update mission: %w", err)
	}

	return doc.ToDomain()
}

// MissionsByStatus returns the missions in any of statuses, oldest first.
func (m *Mongo) MissionsByStatus(ctx context.Context, statuses ...domain.MissionStatus) ([]domain.Mission, error) {
	if len(statuses) == 0 {
		return nil, nil
	}

	values := make(bson.A, 0, len(statuses))
	for _, s := range statuses {
		values = append(values, string(s))
	}

	cur, err := m.missions().Find(ctx,
		bson.D{{Key: "status", Value: bson.D{{Key: "$in", Value: values}}}},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("could not find missions by status: %w", err)
	}

	var docs []MongoMission
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("could not decode missions: %w", err)
	}

	return mongoMissionsToDomain(docs)
}

// UserMissions returns a page of userID's missions, newest first.
func (m *Mongo) UserMissions(ctx context.Context,
	userID domain.UserID,
	status domain.MissionStatus,
	cursor storage.Cursor,
	limit uint) (storage.UserMissions, error) {
	filter := bson.D{{Key: "user_id", Value: string(userID)}}
	if status != "" {
		filter = append(filter, bson.E{Key: "status", Value: string(status)})
	}
	if !cursor.IsZero() {
		at := cursor.CreatedAt.UTC()
		filter = append(filter, bson.E{Key: "$or", Value: bson.A{
			bson.D{{Key: "created_at", Value: bson.D{{Key: "$lt", Value: at}}}},
			bson.D{
				{Key: "created_at", Value: at},
				{Key: "_id", Value: bson.D{{Key: "$lt", Value: cursor.ID.String()}}},
			},
		}})
	}

	// fetch one extra to determine if there is a next page
	cur, err := m.missions().Find(ctx, filter, options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit)+1)) //nolint: gosec
	if err != nil {
		return storage.UserMissions{}, fmt.Errorf("could not find user missions: %w", err)
	}

	var docs []MongoMission
	if err := cur.All(ctx, &docs); err != nil {
		return storage.UserMissions{}, fmt.Errorf("could not decode user missions: %w", err)
	}

	more := uint(len(docs)) > limit
	if more {
		docs = docs[:limit]
	}

	missions, err := mongoMissionsToDomain(docs)
	if err != nil {
		return storage.UserMissions{}, err
	}

	var nextCursor *storage.Cursor
	if more && len(missions) > 0 {
		last := missions[len(missions)-1]
		nextCursor = &storage.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}
	}

	return storage.UserMissions{
		Missions:   missions,
		NextCursor: nextCursor,
	}, nil
}

// DeleteMission removes the mission owned by userID.
func (m *Mongo) DeleteMission(ctx context.Context, userID domain.UserID, id domain.MissionID) (*domain.Mission, error) {
	var doc MongoMission
	err := m.missions().FindOneAndDelete(ctx, bson.D{
		{Key: "_id", Value: id.String()},
		{Key: "user_id", Value: string(userID)},
	}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}

		return nil, fmt.Errorf("could not delete mission: %w", err)
	}

	return doc.ToDomain()
}
