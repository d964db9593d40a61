package repository

import "errors"

// ErrSceneNotFound is returned when no scene matches the lookup, including
// owner-scoped lookups where the scene exists but belongs to someone else.
var ErrSceneNotFound = errors.New("scene not found")
