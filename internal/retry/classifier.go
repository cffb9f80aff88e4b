package retry

import (
	"errors"
	"syscall"
)

// Classifier reports whether err is worth another attempt.
type Classifier func(err error) bool

// transientErrnos are host errors that usually clear on their own: a
// signal interrupted the call, or another process holds the file.
var transientErrnos = []syscall.Errno{
	syscall.EINTR,
	syscall.EAGAIN,
	syscall.EBUSY,
	syscall.ETXTBSY,
}

// HostErrors classifies errors returned by os and io/fs calls.
func HostErrors(err error) bool {
	if err == nil {
		return false
	}
	for _, errno := range transientErrnos {
		if errors.Is(err, errno) {
			return true
		}
	}
	return false
}

// Never classifies every error as fatal, which turns an Executor into a
// plain call.
func Never(error) bool { return false }
