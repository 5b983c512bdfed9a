package comm

import "errors"

var (
	// ErrTerminator indicates the command already contains the frame terminator.
	ErrTerminator = errors.New("command contains frame terminator")
	// ErrNoPort indicates the connection has no port attached.
	ErrNoPort = errors.New("no port")
)
