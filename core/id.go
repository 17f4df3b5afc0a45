package core

import "github.com/google/uuid"

// NewID returns a new random identifier. Used for invocation ids when a
// provider does not supply them and for run correlation.
func NewID() string { return uuid.NewString() }
