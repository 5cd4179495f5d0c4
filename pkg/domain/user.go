package domain

// AnonymousUser owns missions created without any user identity.
const AnonymousUser UserID = "anonymous"

// UserID identifies the player that owns a mission. It is either the subject
// of a bearer token or the identifier supplied by the client.
type UserID string

func (u UserID) String() string { return string(u) }
