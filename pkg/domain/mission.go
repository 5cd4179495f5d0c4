package domain

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// MissionID uniquely identifies a mission.
type MissionID uuid.UUID

// NewMissionID returns a random mission id.
func NewMissionID() MissionID { return MissionID(uuid.New()) }

// ParseMissionID parses the canonical string form of a mission id.
func ParseMissionID(s string) (MissionID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return MissionID{}, fmt.Errorf("could not parse mission id: %w", err)
	}

	return MissionID(id), nil
}

func (id MissionID) String() string { return uuid.UUID(id).String() }

func (id MissionID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

func (id *MissionID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

// IsZero reports whether id is the zero value.
func (id MissionID) IsZero() bool { return id == MissionID{} }

// MissionStatus is the lifecycle state of a mission.
type MissionStatus string

const (
	// MissionStatusPending means the mission is stored and waiting for generation.
	MissionStatusPending MissionStatus = "pending"
	// MissionStatusStage1 means the propaganda (summary, proofs, speakers) exists.
	MissionStatusStage1 MissionStatus = "stage1"
	// MissionStatusStage2 means the dialogue briefing exists and the mission is playable.
	MissionStatusStage2 MissionStatus = "stage2"
	// MissionStatusFailed means generation gave up; see Mission.LastError.
	MissionStatusFailed MissionStatus = "failed"
)

// Valid reports whether s is a known status.
func (s MissionStatus) Valid() bool {
	switch s {
	case MissionStatusPending, MissionStatusStage1, MissionStatusStage2, MissionStatusFailed:
		return true
	default:
		return false
	}
}

// Playable reports whether a game session may be opened for the mission.
func (s MissionStatus) Playable() bool { return s == MissionStatusStage2 }

// Gender of a radio host. Anything other than GenderMale is voiced as female.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// MaxSpeakers is the largest cast a show may have.
const MaxSpeakers = 4

// Bounds of the talking points a propaganda piece carries.
const (
	MinProofSentences = 3
	MaxProofSentences = 5
)

// Speaker is one of the hosts of the radio show.
type Speaker struct {
	Name   string `json:"name"`
	Gender Gender `json:"gender"`
}

// Propaganda is the first generation stage of a mission.
type Propaganda struct {
	// Summary is a 2-3 sentence description of the propaganda piece.
	Summary string `json:"summary"`
	// ProofSentences are the talking points the hosts treat as undeniable truths.
	ProofSentences []string `json:"proof_sentences"`
	// Speakers is the cast, between 1 and MaxSpeakers hosts.
	Speakers []Speaker `json:"speakers"`
	// InitialListeners is the audience size when the broadcast starts.
	InitialListeners int `json:"initial_listeners"`
}

// Validate checks the invariants generated content must satisfy.
func (p *Propaganda) Validate() error {
	switch {
	case p == nil:
		return errors.New("propaganda is empty")
	case p.Summary == "":
		return errors.New("propaganda summary is empty")
	case len(p.ProofSentences) < MinProofSentences || len(p.ProofSentences) > MaxProofSentences:
		return fmt.Errorf("propaganda must have %d-%d proof sentences, got %d",
			MinProofSentences, MaxProofSentences, len(p.ProofSentences))
	case len(p.Speakers) == 0 || len(p.Speakers) > MaxSpeakers:
		return fmt.Errorf("propaganda must have 1-%d speakers, got %d", MaxSpeakers, len(p.Speakers))
	case p.InitialListeners <= 0:
		return fmt.Errorf("initial listeners must be positive, got %d", p.InitialListeners)
	}
	for i, s := range p.Speakers {
		if s.Name == "" {
			return fmt.Errorf("speaker %d has no name", i)
		}
	}

	return nil
}

// SpeakerGender returns the gender of the named speaker, defaulting to female.
func (p *Propaganda) SpeakerGender(name string) Gender {
	if p != nil {
		for _, s := range p.Speakers {
			if s.Name == name {
				return s.Gender
			}
		}
	}

	return GenderFemale
}

// Mission is a single propaganda broadcast the player tries to disrupt.
type Mission struct {
	ID     MissionID `json:"_id"`
	UserID UserID    `json:"user_id"`
	// Topic is the subject of the propaganda as requested by the player.
	Topic  string        `json:"topic"`
	Status MissionStatus `json:"status"`

	Propaganda *Propaganda `json:"propaganda,omitempty"`
	// DialoguePrompt is the show and character briefing used to generate dialogue.
	DialoguePrompt string `json:"dialogue_generator_prompt,omitempty"`
	// AwakenedListeners counts listeners the player has turned so far.
	AwakenedListeners int `json:"awakened_listeners"`

	// Attempts is the number of failed generation attempts.
	Attempts  uint   `json:"attempts"`
	LastError string `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// InitialListeners returns the audience size or zero before stage1.
func (m *Mission) InitialListeners() int {
	if m.Propaganda == nil {
		return 0
	}

	return m.Propaganda.InitialListeners
}

// ApplyAwakening computes the awakened listener count after a change expressed
// as a percentage of the initial audience. The result stays in [0, initial].
// NaN counts as no change; anything beyond ±100% counts as ±100%.
func ApplyAwakening(awakened, initial int, changePercent float64) int {
	if initial <= 0 {
		return 0
	}
	if math.IsNaN(changePercent) {
		changePercent = 0
	}
	changePercent = max(-100, min(100, changePercent))

	next := float64(awakened) + math.Round(float64(initial)*changePercent/100)

	return int(max(0, min(float64(initial), next)))
}
