package storage

import "errors"

// ErrSuperseded is the cancellation cause of a request replaced by a newer
// one from the same client.
var ErrSuperseded = errors.New("superseded by a newer request")
