package domain

// InfiltratorName is the speaker name used for the player in dialogue history.
const InfiltratorName = "Infiltrator"

// MaxDialogueLines bounds a single generated batch.
const MaxDialogueLines = 15

// DialogueLine is one line spoken by a host.
type DialogueLine struct {
	SpeakerName string `json:"speaker_name"`
	Line        string `json:"line"`
}

// DialogueBatch is the result of one dialogue generation round.
type DialogueBatch struct {
	Lines []DialogueLine `json:"dialogues"`
	// AwakenedListenersChange is a percentage of the initial audience, only
	// meaningful when the round answered a player statement.
	AwakenedListenersChange float64 `json:"awakened_listeners_change"`
}
