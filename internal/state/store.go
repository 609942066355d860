package state

import (
	"context"
	"encoding/json"
	"time"
)

// SchemaVersion is the envelope version written by this build.
const SchemaVersion = 1

// Keys for the slices of session state.
const (
	KeyCart      = "cart"
	KeyWishlist  = "wishlist"
	KeyAuthToken = "auth_token"
	KeyUser      = "user"
)

// Store persists named values per session.
type Store interface {
	Save(ctx context.Context, sessionID, key string, value any) error
	// Load decodes the stored value into dest and reports whether one was found.
	Load(ctx context.Context, sessionID, key string, dest any) (bool, error)
	Delete(ctx context.Context, sessionID string, keys ...string) error
}

type envelope struct {
	SchemaVersion int             `json:"schema_version"`
	SavedAt       time.Time       `json:"saved_at"`
	Payload       json.RawMessage `json:"payload"`
}

func encode(value any, now time.Time) ([]byte, error) {
	payload, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{SchemaVersion: SchemaVersion, SavedAt: now.UTC(), Payload: payload})
}

// decode reports false for envelopes written by another schema version.
func decode(raw []byte, dest any) (bool, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return false, err
	}
	if env.SchemaVersion != SchemaVersion {
		return false, nil
	}
	if err := json.Unmarshal(env.Payload, dest); err != nil {
		return false, err
	}
	return true, nil
}
