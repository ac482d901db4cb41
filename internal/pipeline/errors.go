package pipeline

import "errors"

// ErrAborted is returned when the user declines to proceed with scoring.
var ErrAborted = errors.New("run aborted before scoring")
