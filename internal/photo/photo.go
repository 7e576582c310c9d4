// Package photo turns files and uploads into model.Image values.
//
// The media type is sniffed from the bytes, never taken from a file
// extension or a client-supplied header. Unsupported types are returned
// as detected; rejecting them is the analysis client's job.
package photo

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/webp"

	"github.com/Fuwaaaaaa/Goodmorning-Tweet-AIScore/internal/model"
)

// ErrTooLarge is returned when an image exceeds the configured size limit.
var ErrTooLarge = errors.New("image exceeds size limit")

// FromBytes builds an Image from raw data. Dimensions are filled in when
// the header decodes; a corrupt or exotic file keeps them at zero.
func FromBytes(name string, data []byte) model.Image {
	img := model.Image{Name: name, Data: data}
	if len(data) == 0 {
		return img
	}
	img.MIMEType = DetectMIMEType(data)
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		img.Width, img.Height = cfg.Width, cfg.Height
	}
	return img
}

// DetectMIMEType sniffs the media type of data, without parameters.
func DetectMIMEType(data []byte) string {
	mt := mimetype.Detect(data)
	for m := mt; m != nil; m = m.Parent() {
		if model.IsSupportedMIMEType(m.String()) {
			return m.String()
		}
	}
	return mt.String()
}

// Read reads at most maxBytes from r. maxBytes <= 0 means unlimited.
func Read(r io.Reader, name string, maxBytes int64) (model.Image, error) {
	if maxBytes > 0 {
		r = io.LimitReader(r, maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return model.Image{}, fmt.Errorf("read image: %w", err)
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return model.Image{}, fmt.Errorf("%w (%d bytes)", ErrTooLarge, maxBytes)
	}
	return FromBytes(name, data), nil
}

// Load reads the image file at path.
func Load(path string, maxBytes int64) (model.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.Image{}, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()
	return Read(f, filepath.Base(path), maxBytes)
}
