package db

import "errors"

var (
	ErrNotReady    = errors.New("db: backend not configured")
	ErrKeyNotFound = errors.New("db: key not found")
)

// Op names recorded on Error for diagnostics.
const (
	OpPing      = "PING"
	OpFind      = "find"
	OpFindOne   = "findOne"
	OpAggregate = "aggregate"
	OpCount     = "countDocuments"
	OpInsert    = "insert"
	OpDelete    = "delete"
	OpReplace   = "replace"
	OpGet       = "GET"
	OpSet       = "SET"
	OpIncr      = "INCR"
	OpExpire    = "EXPIRE"
	OpSearch    = "search"
	OpQuery     = "query"
	OpUpsert    = "upsert"
	OpStats     = "stats"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
