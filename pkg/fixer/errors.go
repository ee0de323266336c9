package fixer

import "errors"

var (
	ErrNoIntents      = errors.New("transaction has no intent records")
	ErrTxTerminal     = errors.New("transaction already terminal")
	ErrMissingInverse = errors.New("intent has no inverse")
)
