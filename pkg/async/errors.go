package async

import "errors"

// ErrWaitTimeout indicates WaitTimeout gave up before the task completed.
var ErrWaitTimeout = errors.New("async: timed out waiting for task completion")
