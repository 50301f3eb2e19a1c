// Package storage persists rendered report documents.
package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
)

// ErrNotFound is returned by Open when no document exists at the path.
var ErrNotFound = errors.New("document not found")

// ContentTypePDF is the media type of every stored report.
const ContentTypePDF = "application/pdf"

// Store writes and reads whole documents. Put overwrites any existing
// document under the same key.
type Store interface {
	// Put stores data under key and returns the path to persist on the order.
	Put(ctx context.Context, key string, data []byte) (string, error)
	// Open returns a reader over the document at a path returned by Put and its size.
	Open(ctx context.Context, path string) (io.ReadCloser, int64, error)
}

// KeyForOrder derives the storage key of an order's report from its order number.
func KeyForOrder(orderNo string) string {
	name := path.Base(strings.ReplaceAll(orderNo, "\\", "/"))
	return name + ".pdf"
}
