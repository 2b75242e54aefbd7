// Package rpcerr classifies the error_code/error_message pairs returned in
// an rpc_error (spec §4.4 "Error recovery") into typed Go errors: plain
// errors, FLOOD_WAIT_N rate limits, *_MIGRATE_N datacenter redirections,
// and the bad_msg_notification/bad_server_salt recovery codes.
package rpcerr

import (
	"fmt"
	"regexp"
	"strconv"
)

// Error is a parsed rpc_error: Code is the numeric error_code (typically
// an HTTP-like status: 303 redirect, 400 bad request, 420 flood, 500
// internal), Message is the raw error_message text, and Tag/Arg split out
// a trailing "_N" placeholder when the message ends in one.
type Error struct {
	Code    int32
	Message string
	Tag     string // e.g. "FLOOD_WAIT", "PHONE_MIGRATE", "" if unparameterized
	Arg     int    // the captured _N value, 0 if Tag == ""
}

func (e *Error) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

var placeholderRe = regexp.MustCompile(`^([A-Z_]+?)_(-?\d+)$`)

// Parse splits an rpc_error's error_message into a typed Error, extracting
// the catalogue's "_X" numeric placeholder convention when present.
func Parse(code int32, message string) *Error {
	e := &Error{Code: code, Message: message}
	if m := placeholderRe.FindStringSubmatch(message); m != nil {
		if n, err := strconv.Atoi(m[2]); err == nil {
			e.Tag = m[1]
			e.Arg = n
		}
	}
	return e
}

// IsFloodWait reports whether e is a FLOOD_WAIT_N rate limit, returning
// the wait duration in seconds.
func (e *Error) IsFloodWait() (seconds int, ok bool) {
	if e.Tag == "FLOOD_WAIT" || e.Tag == "FLOOD_PREMIUM_WAIT" {
		return e.Arg, true
	}
	return 0, false
}

// migrateTags lists every *_MIGRATE_N suffix Telegram's servers use to
// redirect a client to a different datacenter.
var migrateTags = map[string]bool{
	"PHONE_MIGRATE":   true,
	"NETWORK_MIGRATE": true,
	"USER_MIGRATE":    true,
	"FILE_MIGRATE":    true,
	"STATS_MIGRATE":   true,
}

// IsMigrate reports whether e instructs the client to move to a different
// datacenter, returning its id.
func (e *Error) IsMigrate() (dcID int, ok bool) {
	if migrateTags[e.Tag] {
		return e.Arg, true
	}
	return 0, false
}

// Fatal is implemented by recovery-path errors (bad_msg_notification codes
// that can never be repaired by retrying) that Sender must surface to the
// caller instead of attempting automatic recovery.
type Fatal interface {
	error
	FatalMTProtoError()
}

// BadMsgError wraps a bad_msg_notification whose error_code spec §4.4
// marks unrecoverable (as opposed to 16/17/32/33/48). The Sender does not
// resend for those either: it resolves the affected request with a plain
// "retry required" error, adopting the new salt for bad_server_salt but
// leaving State's clock delta unchanged.
type BadMsgError struct {
	Code int32
}

func (e *BadMsgError) Error() string {
	return fmt.Sprintf("mtproto: unrecoverable bad_msg_notification code %d", e.Code)
}

func (e *BadMsgError) FatalMTProtoError() {}

// Recoverable reports whether a bad_msg_notification error_code belongs to
// the recoverable class: 16/17 (msg_id out of the server's tolerated
// clock skew window, correctable by adjusting State's clock delta), 32/33
// (msg_seqno too low/high), and 48 (bad server salt, carried via a
// dedicated bad_server_salt constructor rather than bad_msg_notification,
// but sharing the same recovery shape).
func Recoverable(code int32) bool {
	switch code {
	case 16, 17, 32, 33, 48:
		return true
	default:
		return false
	}
}
