package poll

import "errors"

// ErrNoClient is returned when a poller is created without a client.
var ErrNoClient = errors.New("poll: no client configured")
