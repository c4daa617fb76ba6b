package media

import (
	"errors"
	"mime"
	"path/filepath"
	"strings"
)

var ErrUnsupportedVideo = errors.New("media: unsupported video type")

var videoTypes = map[string]string{
	".mp4":  "video/mp4",
	".m4v":  "video/mp4",
	".mov":  "video/quicktime",
	".webm": "video/webm",
}

var videoExtensions = map[string]string{
	"video/mp4":       ".mp4",
	"video/quicktime": ".mov",
	"video/webm":      ".webm",
}

// ImageContentType trusts the declared type and falls back to the extension.
func ImageContentType(declared, fileName string) string {
	ct := strings.ToLower(strings.TrimSpace(declared))
	if ct != "" {
		if ct == "image/jpg" {
			return "image/jpeg"
		}
		return ct
	}
	switch ext := strings.ToLower(filepath.Ext(fileName)); ext {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case "":
	default:
		if mt := mime.TypeByExtension(ext); mt != "" {
			return strings.ToLower(mt)
		}
	}
	return "image/jpeg"
}

// VideoContentType resolves a video upload's type and extension.
func VideoContentType(declared, fileName string) (string, string, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	ct := strings.ToLower(strings.TrimSpace(declared))
	if idx := strings.Index(ct, ";"); idx >= 0 {
		ct = strings.TrimSpace(ct[:idx])
	}
	if byExt, ok := videoTypes[ext]; ok {
		if ct == "" || ct == "application/octet-stream" {
			ct = byExt
		}
	}
	canonical, ok := videoExtensions[ct]
	if !ok {
		return "", "", ErrUnsupportedVideo
	}
	if _, known := videoTypes[ext]; !known {
		ext = canonical
	}
	return ct, ext, nil
}

// SizeMB reports a byte size in megabytes rounded to two decimals.
func SizeMB(size int64) float64 {
	if size <= 0 {
		return 0
	}
	mb := float64(size) / (1024 * 1024)
	return float64(int64(mb*100+0.5)) / 100
}
