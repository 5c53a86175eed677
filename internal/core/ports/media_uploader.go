package ports

import "context"

// MediaKind selects the storage prefix of an upload.
type MediaKind string

const (
	MediaAvatar     MediaKind = "avatars"
	MediaCoverImage MediaKind = "covers"
)

// UploadedMedia describes a file stored by the media host.
type UploadedMedia struct {
	URL string
	Key string
}

// MediaUploader pushes a staged local file to the media host. It removes the
// local file whether the upload succeeds or not. A nil result means failure.
type MediaUploader interface {
	Upload(ctx context.Context, kind MediaKind, localPath string) (*UploadedMedia, error)
}
