package services

import "errors"

// ErrNotOwner is returned when a scene exists but belongs to another user.
// Delete and camera-state updates fetch by id alone and compare owners, so a
// foreign scene surfaces as unauthorized rather than not found.
var ErrNotOwner = errors.New("not authorized")
