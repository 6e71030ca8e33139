package security

import (
	"strings"

	"github.com/google/uuid"
)

// UUIDKeys generates API keys from random (version 4) UUIDs with the
// separators stripped: 32 lowercase hex characters.
type UUIDKeys struct{}

func (UUIDKeys) NewAPIKey() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
