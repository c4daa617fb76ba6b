package service

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/njprem/TravelReel_BackEnd/internal/media"
	"github.com/njprem/TravelReel_BackEnd/internal/repository/ports"
)

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// imageUploader stores cover and avatar images, bounding them through the
// thumbnailer when one is configured.
type imageUploader struct {
	storage     ports.ObjectStorage
	thumbnailer media.Thumbnailer
	bucket      string
	maxBytes    int64
}

type storedObject struct {
	bucket string
	name   string
	url    string
}

func (u imageUploader) upload(ctx context.Context, prefix string, upload media.Upload) (*storedObject, error) {
	if upload.Reader == nil || upload.Size <= 0 {
		return nil, fmt.Errorf("%w: image is empty", ErrValidation)
	}
	if u.maxBytes > 0 && upload.Size > u.maxBytes {
		return nil, fmt.Errorf("%w: image exceeds size limit (%d bytes)", ErrValidation, u.maxBytes)
	}
	contentType := media.ImageContentType(upload.ContentType, upload.FileName)
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported image type %s", ErrValidation, contentType)
	}
	upload.ContentType = contentType

	reader, size := upload.Reader, upload.Size
	if u.thumbnailer != nil {
		result, err := u.thumbnailer.Thumbnail(ctx, upload)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		reader, size, contentType = bytes.NewReader(result.Bytes), int64(len(result.Bytes)), result.ContentType
	}

	name := objectName(prefix, ext)
	url, err := u.storage.Upload(ctx, u.bucket, name, contentType, reader, size)
	if err != nil {
		return nil, err
	}
	return &storedObject{bucket: u.bucket, name: name, url: url}, nil
}

func objectName(prefix, ext string) string {
	return path.Join(strings.Trim(prefix, "/"), uuid.NewString()+ext)
}

func removeObjects(ctx context.Context, storage ports.ObjectStorage, objects ...*storedObject) {
	for _, obj := range objects {
		if obj == nil {
			continue
		}
		_ = storage.Remove(ctx, obj.bucket, obj.name)
	}
}
