// Package commands holds the validated inputs of the messaging write
// paths. Validation runs before any I/O: a command that fails Validate
// never reaches the store.
package commands

import "github.com/google/uuid"

func nilUUID(id uuid.UUID) bool {
	return id == uuid.Nil
}
