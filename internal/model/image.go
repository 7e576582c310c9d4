package model

import "fmt"

// Image is a photo submitted for analysis.
type Image struct {
	// Name is the uploaded file name, if known.
	Name string `json:"name"`
	// MIMEType is the media type the image is sent with.
	MIMEType string `json:"mime_type"`
	// Data is the raw encoded image.
	Data []byte `json:"-"`
	// Width and Height are the decoded dimensions; zero when unknown.
	Width  int `json:"width,omitempty"`
	Height int `json:"height,omitempty"`
}

// SupportedMIMETypes lists the raster formats accepted for analysis.
var SupportedMIMETypes = []string{"image/jpeg", "image/png", "image/webp"}

// IsSupportedMIMEType reports whether mimeType is accepted for analysis.
func IsSupportedMIMEType(mimeType string) bool {
	for _, t := range SupportedMIMETypes {
		if t == mimeType {
			return true
		}
	}
	return false
}

// Dimensions returns "WxH", or an empty string when unknown.
func (i Image) Dimensions() string {
	if i.Width <= 0 || i.Height <= 0 {
		return ""
	}
	return fmt.Sprintf("%dx%d", i.Width, i.Height)
}
