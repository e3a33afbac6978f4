package app

import "github.com/google/uuid"

// newID produces a random UUIDv4 string. Isolated here so the id strategy
// can evolve independently.
func newID() string {
	return uuid.NewString()
}
