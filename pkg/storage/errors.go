package storage

import "errors"

var (
	ErrDBConnection = errors.New("database connection error")
	ErrCreate       = errors.New("create error")
	ErrUpdate       = errors.New("update error")
	ErrDelete       = errors.New("delete error")
)
