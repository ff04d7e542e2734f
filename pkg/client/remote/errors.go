package remote

import (
	"bytes"
	"errors"
	"fmt"
)

var (
	ErrFileDoesExist = errors.New("file does exist")
	ErrNotConnected  = errors.New("ssh client not connected")
	ErrNoAuthMethod  = errors.New("no ssh auth method, need a private key or a password")
)

// CommandError is returned when a remote command exits non-zero.
type CommandError struct {
	Command string
	Output  []byte
	Err     error
}

func (e *CommandError) Error() string {
	out := bytes.TrimSpace(e.Output)
	if len(out) == 0 {
		return fmt.Sprintf("command %q: %v", e.Command, e.Err)
	}
	return fmt.Sprintf("command %q: %v: %s", e.Command, e.Err, out)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}
