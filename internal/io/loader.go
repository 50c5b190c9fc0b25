// Image codec: decoding and encoding PixelBuffers through OpenCV
package io

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	"gocv.io/x/gocv"

	"cv-image-editor/internal/core"
)

// MaxDimension bounds either side of a decoded image.
const MaxDimension = 16384

// DefaultJPEGQuality is used when encoding JPEG without an explicit quality.
const DefaultJPEGQuality = 95

var (
	ErrDecode            = errors.New("decode failed")
	ErrEncode            = errors.New("encode failed")
	ErrUnsupportedFormat = errors.New("unsupported image format")
)

// CodecError carries the failed operation and the format involved.
// It matches ErrDecode or ErrEncode with errors.Is.
type CodecError struct {
	Op     string // "decode" or "encode"
	Format string
	Kind   error
	Err    error
}

func (e *CodecError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Format, e.Kind)
	}
	return fmt.Sprintf("%s %s: %v: %v", e.Op, e.Format, e.Kind, e.Err)
}

func (e *CodecError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func decodeError(format string, err error) error {
	return &CodecError{Op: "decode", Format: format, Kind: ErrDecode, Err: err}
}

func encodeError(format string, err error) error {
	return &CodecError{Op: "encode", Format: format, Kind: ErrEncode, Err: err}
}

var supportedExtensions = []string{".png", ".jpg", ".jpeg", ".bmp", ".tif", ".tiff"}

// SupportedExtensions lists the file extensions accepted for open and save.
func SupportedExtensions() []string {
	out := make([]string, len(supportedExtensions))
	copy(out, supportedExtensions)
	return out
}

// ImageLoader handles image file operations
type ImageLoader struct {
	logger      logrus.FieldLogger
	jpegQuality int
}

func NewImageLoader(logger logrus.FieldLogger) *ImageLoader {
	return &ImageLoader{
		logger:      logger,
		jpegQuality: DefaultJPEGQuality,
	}
}

// SetJPEGQuality sets the 1-100 quality used for JPEG output.
func (il *ImageLoader) SetJPEGQuality(q int) {
	if q < 1 {
		q = 1
	}
	if q > 100 {
		q = 100
	}
	il.jpegQuality = q
}

// Decode turns encoded bytes into a 3-channel buffer. Grayscale and alpha
// sources are converted to BGR.
func (il *ImageLoader) Decode(data []byte) (*core.PixelBuffer, error) {
	if len(data) == 0 {
		return nil, decodeError("unknown", errors.New("empty input"))
	}

	format := "unknown"
	if cfg, name, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		format = name
		if cfg.Width > MaxDimension || cfg.Height > MaxDimension {
			return nil, decodeError(format, fmt.Errorf("image too large: %dx%d (max: %d)", cfg.Width, cfg.Height, MaxDimension))
		}
	}

	mat, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return nil, decodeError(format, err)
	}
	defer mat.Close()
	if mat.Empty() {
		return nil, decodeError(format, errors.New("not a recognised image"))
	}
	if err := validateMat(mat); err != nil {
		return nil, decodeError(format, err)
	}

	buf, err := core.FromMat(mat)
	if err != nil {
		return nil, decodeError(format, err)
	}

	il.logger.WithFields(logrus.Fields{
		"format": format,
		"width":  buf.Width(),
		"height": buf.Height(),
	}).Debug("Image decoded")
	return buf, nil
}

// Encode writes buf in the format named by hint: an extension (".png"),
// a bare name ("jpeg") or a file path.
func (il *ImageLoader) Encode(buf *core.PixelBuffer, hint string) ([]byte, error) {
	ext, err := NormalizeFormat(hint)
	if err != nil {
		return nil, encodeError(hint, err)
	}
	if buf == nil {
		return nil, encodeError(ext, core.ErrNoImage)
	}

	mat, err := buf.ToMat()
	if err != nil {
		return nil, encodeError(ext, err)
	}
	defer mat.Close()

	var nb *gocv.NativeByteBuffer
	if ext == ".jpg" {
		nb, err = gocv.IMEncodeWithParams(gocv.FileExt(ext), mat, []int{int(gocv.IMWriteJpegQuality), il.jpegQuality})
	} else {
		nb, err = gocv.IMEncode(gocv.FileExt(ext), mat)
	}
	if err != nil {
		return nil, encodeError(ext, err)
	}
	defer nb.Close()

	out := append([]byte(nil), nb.GetBytes()...)
	if len(out) == 0 {
		return nil, encodeError(ext, errors.New("encoder produced no data"))
	}
	return out, nil
}

// LoadFile reads and decodes an image from disk.
func (il *ImageLoader) LoadFile(path string) (*core.PixelBuffer, error) {
	il.logger.WithField("filepath", path).Debug("Loading image")

	if !IsSupportedPath(path) {
		return nil, decodeError(filepath.Ext(path), fmt.Errorf("%w: %s", ErrUnsupportedFormat, path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, decodeError(filepath.Ext(path), err)
	}
	buf, err := il.Decode(data)
	if err != nil {
		return nil, err
	}

	il.logger.WithFields(logrus.Fields{
		"filepath": path,
		"width":    buf.Width(),
		"height":   buf.Height(),
	}).Info("Image loaded successfully")
	return buf, nil
}

// SaveFile encodes buf according to the path extension, defaulting to PNG.
func (il *ImageLoader) SaveFile(buf *core.PixelBuffer, path string) error {
	if filepath.Ext(path) == "" {
		path += ".png"
	}

	data, err := il.Encode(buf, path)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return encodeError(filepath.Ext(path), err)
	}

	il.logger.WithFields(logrus.Fields{
		"filepath": path,
		"width":    buf.Width(),
		"height":   buf.Height(),
		"bytes":    len(data),
	}).Info("Image saved successfully")
	return nil
}

// NormalizeFormat maps a format hint to the canonical extension used by OpenCV.
func NormalizeFormat(hint string) (string, error) {
	ext := strings.ToLower(strings.TrimSpace(hint))
	if e := filepath.Ext(ext); e != "" {
		ext = e
	}
	ext = "." + strings.TrimPrefix(ext, ".")

	switch ext {
	case ".png", ".bmp":
		return ext, nil
	case ".jpg", ".jpeg":
		return ".jpg", nil
	case ".tif", ".tiff":
		return ".tiff", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, hint)
	}
}

// IsSupportedPath reports whether the file extension is one we can open.
func IsSupportedPath(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, s := range supportedExtensions {
		if ext == s {
			return true
		}
	}
	return false
}

func validateMat(mat gocv.Mat) error {
	if mat.Cols() <= 0 || mat.Rows() <= 0 {
		return fmt.Errorf("invalid dimensions: %dx%d", mat.Cols(), mat.Rows())
	}
	if mat.Cols() > MaxDimension || mat.Rows() > MaxDimension {
		return fmt.Errorf("image too large: %dx%d (max: %d)", mat.Cols(), mat.Rows(), MaxDimension)
	}
	return nil
}
