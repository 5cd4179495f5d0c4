// Package llm defines the contract of the language model that writes the
// propaganda, the show briefing and the live dialogue of a mission.
package llm

import (
	"context"
	"radiomirchi/pkg/domain"
)

// DialogueRequest is the input of a single dialogue generation round.
type DialogueRequest struct {
	// Context is the show and character briefing of the mission.
	Context string
	// History is the transcript so far, one "\n<speaker>: <line>" per line.
	History string
	// UserStatement is what the infiltrator said since the last round, if anything.
	UserStatement string
	// Speakers restricts the names generated lines may use.
	Speakers []domain.Speaker
}

// Client generates mission content.
//
//go:generate mockgen -package mockllm -source=interface.go -destination=mock/mockllm.go *
type Client interface {
	// GeneratePropaganda creates the summary, proof sentences, cast and
	// audience size for topic.
	GeneratePropaganda(ctx context.Context, topic string) (*domain.Propaganda, error)
	// GenerateDialoguePrompt writes the show and character briefing used as
	// the context of every dialogue round.
	GenerateDialoguePrompt(ctx context.Context, topic string, propaganda *domain.Propaganda) (string, error)
	// GenerateDialogue continues the broadcast. AwakenedListenersChange is
	// only set when req.UserStatement is not empty.
	GenerateDialogue(ctx context.Context, req DialogueRequest) (*domain.DialogueBatch, error)
}
