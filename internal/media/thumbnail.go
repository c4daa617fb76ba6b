package media

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"math"
	"os/exec"
	"strconv"
	"strings"

	_ "golang.org/x/image/webp"
)

const (
	DefaultThumbnailDimension = 720
	thumbnailJPEGQuality      = 4
	thumbnailPNGLevel         = 6
	thumbnailWebPQuality      = 80
)

type Upload struct {
	Reader      io.Reader
	Size        int64
	FileName    string
	ContentType string
}

type Result struct {
	Bytes       []byte
	ContentType string
	Width       int
	Height      int
	Resized     bool
}

// Thumbnailer bounds a cover image to a square box, keeping aspect ratio.
type Thumbnailer interface {
	Thumbnail(ctx context.Context, upload Upload) (*Result, error)
}

type FFMPEGThumbnailer struct {
	path         string
	maxDimension int
}

func NewFFMPEGThumbnailer(binaryPath string, maxDimension int) *FFMPEGThumbnailer {
	path := strings.TrimSpace(binaryPath)
	if path == "" {
		path = "ffmpeg"
	}
	if maxDimension <= 0 {
		maxDimension = DefaultThumbnailDimension
	}
	return &FFMPEGThumbnailer{path: path, maxDimension: maxDimension}
}

func (p *FFMPEGThumbnailer) Thumbnail(ctx context.Context, upload Upload) (*Result, error) {
	if upload.Reader == nil {
		return nil, fmt.Errorf("media: empty reader")
	}
	data, err := io.ReadAll(upload.Reader)
	if err != nil {
		return nil, fmt.Errorf("media: read thumbnail: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("media: empty thumbnail data")
	}

	contentType := ImageContentType(upload.ContentType, upload.FileName)
	width, height, err := imageDimensions(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("media: decode thumbnail: %w", err)
	}
	if width <= p.maxDimension && height <= p.maxDimension {
		return &Result{Bytes: data, ContentType: contentType, Width: width, Height: height}, nil
	}

	targetW, targetH := scaleToFit(width, height, p.maxDimension)
	scaled, err := p.scale(ctx, data, contentType, targetW, targetH)
	if err != nil {
		return nil, err
	}
	return &Result{
		Bytes:       scaled,
		ContentType: contentType,
		Width:       targetW,
		Height:      targetH,
		Resized:     true,
	}, nil
}

func imageDimensions(r io.Reader) (int, int, error) {
	cfg, _, err := image.DecodeConfig(r)
	if err != nil {
		return 0, 0, err
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return 0, 0, fmt.Errorf("invalid dimensions %dx%d", cfg.Width, cfg.Height)
	}
	return cfg.Width, cfg.Height, nil
}

// scaleToFit shrinks the longer side to maxDim. ffmpeg needs even sizes >= 2.
func scaleToFit(width, height, maxDim int) (int, int) {
	if width >= height {
		h := int(math.Round(float64(height) * float64(maxDim) / float64(width)))
		return atLeastTwo(maxDim), atLeastTwo(h)
	}
	w := int(math.Round(float64(width) * float64(maxDim) / float64(height)))
	return atLeastTwo(w), atLeastTwo(maxDim)
}

func atLeastTwo(v int) int {
	if v < 2 {
		return 2
	}
	return v
}

func (p *FFMPEGThumbnailer) scale(ctx context.Context, data []byte, contentType string, width, height int) ([]byte, error) {
	codec, codecArgs, err := thumbnailCodec(contentType)
	if err != nil {
		return nil, err
	}

	args := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-i", "pipe:0",
		"-vf", fmt.Sprintf("scale=%d:%d:flags=lanczos", width, height),
		"-frames:v", "1",
		"-f", "image2",
		"-c:v", codec,
	}
	args = append(args, codecArgs...)
	args = append(args, "pipe:1")

	cmd := exec.CommandContext(ctx, p.path, args...)
	cmd.Stdin = bytes.NewReader(data)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("ffmpeg: %v: %s", err, msg)
		}
		return nil, fmt.Errorf("ffmpeg: %w", err)
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("ffmpeg: produced empty output")
	}
	return stdout.Bytes(), nil
}

func thumbnailCodec(contentType string) (string, []string, error) {
	switch contentType {
	case "image/jpeg":
		return "mjpeg", []string{"-q:v", strconv.Itoa(thumbnailJPEGQuality)}, nil
	case "image/png":
		return "png", []string{"-compression_level", strconv.Itoa(thumbnailPNGLevel)}, nil
	case "image/webp":
		return "libwebp", []string{"-quality", strconv.Itoa(thumbnailWebPQuality)}, nil
	default:
		return "", nil, fmt.Errorf("media: unsupported thumbnail type %s", contentType)
	}
}
