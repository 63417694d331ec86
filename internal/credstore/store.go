// Package credstore persists the console's session credentials: the
// API token and the cached user record. It is a plain key-value store;
// callers own any JSON encoding of complex values.
package credstore

import "context"

// Storage keys. The token and user record are always written and
// cleared together.
const (
	KeyToken = "niaxtu:auth:token"
	KeyUser  = "niaxtu:auth:user"
)

// Store is a minimal persistent key-value contract. Get returns an
// empty string, not an error, when the key is absent.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Credentials is the token/user pair held by the store.
type Credentials struct {
	Token    string
	UserJSON string
}

// Save writes the token and the serialized user record as a pair. The
// token is written last so a partial write never leaves a token without
// its matching user record.
func Save(ctx context.Context, store Store, creds Credentials) error {
	if err := store.Set(ctx, KeyUser, creds.UserJSON); err != nil {
		return err
	}
	return store.Set(ctx, KeyToken, creds.Token)
}

// Load reads the pair back. A pair missing either half is treated as
// absent and reported as empty credentials.
func Load(ctx context.Context, store Store) (Credentials, error) {
	token, err := store.Get(ctx, KeyToken)
	if err != nil {
		return Credentials{}, err
	}
	userJSON, err := store.Get(ctx, KeyUser)
	if err != nil {
		return Credentials{}, err
	}
	if token == "" || userJSON == "" {
		return Credentials{}, nil
	}
	return Credentials{Token: token, UserJSON: userJSON}, nil
}

// Clear removes both halves of the pair. Clearing an already empty
// store is a no-op.
func Clear(ctx context.Context, store Store) error {
	if err := store.Remove(ctx, KeyToken); err != nil {
		return err
	}
	return store.Remove(ctx, KeyUser)
}

// IsEmpty reports whether the credentials carry no usable session.
func (c Credentials) IsEmpty() bool {
	return c.Token == "" || c.UserJSON == ""
}
