package mongodb

import (
	"fmt"
	"radiomirchi/pkg/domain"
	"time"
)

type MongoSpeaker struct {
	Name   string `bson:"name"`
	Gender string `bson:"gender"`
}

type MongoPropaganda struct {
	Summary          string         `bson:"summary"`
	ProofSentences   []string       `bson:"proof_sentences"`
	Speakers         []MongoSpeaker `bson:"speakers"`
	InitialListeners int            `bson:"initial_listeners"`
}

type MongoMission struct {
	ID     string `bson:"_id"`
	UserID string `bson:"user_id"`

	Topic  string `bson:"topic"`
	Status string `bson:"status"`

	Propaganda        *MongoPropaganda `bson:"propaganda,omitempty"`
	DialoguePrompt    string           `bson:"dialogue_generator_prompt,omitempty"`
	AwakenedListeners int              `bson:"awakened_listeners"`

	Attempts  int64  `bson:"attempts"`
	LastError string `bson:"last_error,omitempty"`

	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at,omitempty"`
}

func propagandaFromDomain(p *domain.Propaganda) *MongoPropaganda {
	if p == nil {
		return nil
	}

	speakers := make([]MongoSpeaker, 0, len(p.Speakers))
	for _, s := range p.Speakers {
		speakers = append(speakers, MongoSpeaker{Name: s.Name, Gender: string(s.Gender)})
	}

	return &MongoPropaganda{
		Summary:          p.Summary,
		ProofSentences:   append([]string(nil), p.ProofSentences...),
		Speakers:         speakers,
		InitialListeners: p.InitialListeners,
	}
}

func (p *MongoPropaganda) toDomain() *domain.Propaganda {
	if p == nil {
		return nil
	}

	speakers := make([]domain.Speaker, 0, len(p.Speakers))
	for _, s := range p.Speakers {
		speakers = append(speakers, domain.Speaker{Name: s.Name, Gender: domain.Gender(s.Gender)})
	}

	return &domain.Propaganda{
		Summary:          p.Summary,
		ProofSentences:   p.ProofSentences,
		Speakers:         speakers,
		InitialListeners: p.InitialListeners,
	}
}

func (m *MongoMission) ToDomain() (*domain.Mission, error) {
	id, err := domain.ParseMissionID(m.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid mission document %q: %w", m.ID, err)
	}

	return &domain.Mission{
		ID:                id,
		UserID:            domain.UserID(m.UserID),
		Topic:             m.Topic,
		Status:            domain.MissionStatus(m.Status),
		Propaganda:        m.Propaganda.toDomain(),
		DialoguePrompt:    m.DialoguePrompt,
		AwakenedListeners: m.AwakenedListeners,
		Attempts:          uint(max(m.Attempts, 0)),
		LastError:         m.LastError,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}, nil
}

func (m *MongoMission) FromDomain(mission domain.Mission) {
	*m = MongoMission{
		ID:                mission.ID.String(),
		UserID:            string(mission.UserID),
		Topic:             mission.Topic,
		Status:            string(mission.Status),
		Propaganda:        propagandaFromDomain(mission.Propaganda),
		DialoguePrompt:    mission.DialoguePrompt,
		AwakenedListeners: mission.AwakenedListeners,
		Attempts:          int64(mission.Attempts), //nolint: gosec
		LastError:         mission.LastError,
		CreatedAt:         mission.CreatedAt,
		UpdatedAt:         mission.UpdatedAt,
	}
}

func mongoMissionsToDomain(in []MongoMission) ([]domain.Mission, error) {
	out := make([]domain.Mission, 0, len(in))
	for i := range in {
		m, err := in[i].ToDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}

	return out, nil
}
