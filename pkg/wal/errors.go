package wal

import "errors"

var (
	ErrLogLocked     = errors.New("log file locked")
	ErrInvalidRecord = errors.New("invalid log record")
)
