package fuse

import "errors"

// ErrRerankerRequired is returned when an engine is built without a reranker.
var ErrRerankerRequired = errors.New("reranker required")
