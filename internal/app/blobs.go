package app

import (
	"context"
	"errors"
	"io"
)

var errBlobsUnavailable = errors.New("avatar storage is not configured")

// unavailableBlobs stands in when no bucket is reachable at startup.
type unavailableBlobs struct{}

func (unavailableBlobs) Put(context.Context, string, io.Reader, int64, string) error {
	return errBlobsUnavailable
}

func (unavailableBlobs) Remove(context.Context, string) error { return nil }

func (unavailableBlobs) PublicURL(string) string { return "" }
