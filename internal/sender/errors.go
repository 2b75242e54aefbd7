package sender

import "fmt"

// ErrClosed is returned by Invoke once the Sender has been shut down.
var ErrClosed = fmt.Errorf("sender: closed")

// ErrTimeout describes a request whose response did not arrive in time.
// Invoke does not return it: when ctx is done first, Invoke returns
// ctx.Err().
type ErrTimeout struct {
	MsgID int64
}

func (e *ErrTimeout) Error() string {
	return fmt.Sprintf("sender: request %d timed out waiting for a response", e.MsgID)
}
