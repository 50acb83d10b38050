package uid

import "github.com/google/uuid"

// New generates an identifier for orders, listings, images and
// browsing clients.
func New() string {
	return uuid.New().String()
}

// IsValid reports whether id is a well-formed identifier. Records
// imported from the platform keep their original ids, which may not be
// UUIDs, so this is only used for locally minted ones.
func IsValid(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
