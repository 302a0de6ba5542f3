package validation

import (
	"encoding/base64"
	"net/http"
	"strings"
)

// MaxImageSize caps decoded profile pictures.
const MaxImageSize = 5 << 20 // 5MB

// allowedImageTypes maps sniffed MIME types to the file extension used in storage.
var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Image is a decoded and validated image upload.
type Image struct {
	Data        []byte
	ContentType string
	Ext         string
}

// DecodeImage accepts a data URL ("data:image/png;base64,...") or bare base64
// and validates the decoded bytes by their magic numbers, not the declared type.
func DecodeImage(payload string) (*Image, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, ErrProfilePicRequired
	}

	encoded := payload
	if strings.HasPrefix(payload, "data:") {
		_, after, found := strings.Cut(payload, ",")
		if !found {
			return nil, ErrImageInvalid
		}
		encoded = after
	}

	// Reject before decoding when the payload alone is already too big.
	if base64.StdEncoding.DecodedLen(len(encoded)) > MaxImageSize+3 {
		return nil, ErrImageTooLarge
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, ErrImageInvalid
		}
	}
	if len(data) == 0 {
		return nil, ErrImageInvalid
	}
	if len(data) > MaxImageSize {
		return nil, ErrImageTooLarge
	}

	// http.DetectContentType reads at most 512 bytes
	contentType := http.DetectContentType(data)
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		return nil, ErrImageType
	}

	return &Image{Data: data, ContentType: contentType, Ext: ext}, nil
}
