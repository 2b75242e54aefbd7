package sender

import "time"

// pingInterval and pingDisconnectDelay drive the keepalive loop: a plain
// ping is sent every pingInterval, and pingDisconnectDelay bounds how
// long that ping's Invoke waits for its pong. No ping_delay_disconnect is
// sent, so the server is never asked to drop a silent connection.
const (
	pingInterval        = 60 * time.Second
	pingDisconnectDelay = 75 * time.Second
)
