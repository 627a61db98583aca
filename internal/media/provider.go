// Package media integrates the remote media provider used for post and
// profile assets. Uploads happen client-side against a server-issued
// signature; the server only signs upload requests and releases assets that
// their owning rows no longer reference.
package media

import "context"

// SignedUpload carries everything a client needs to perform a direct upload.
type SignedUpload struct {
	Timestamp int64  `json:"timestamp"`
	Signature string `json:"signature"`
	APIKey    string `json:"apiKey"`
	CloudName string `json:"cloudName"`
	Folder    string `json:"folder"`
}

// Provider signs uploads and releases remote assets.
type Provider interface {
	// SignUpload produces a signature over the upload parameters for the
	// configured folder.
	SignUpload(folder string) (*SignedUpload, error)

	// Release deletes the remote asset identified by publicID. Releasing an
	// already-deleted asset is not an error.
	Release(ctx context.Context, publicID, resourceType string) error
}
