package media

import (
	"path/filepath"
	"strings"
)

// VideoExtensions lists container extensions ffmpeg is expected to open.
var VideoExtensions = map[string]bool{
	".mp4": true, ".mkv": true, ".avi": true, ".mov": true,
	".webm": true, ".wmv": true, ".flv": true, ".m4v": true,
	".mpg": true, ".mpeg": true, ".ts": true, ".3gp": true,
	".ogv": true,
}

// PreviewExtensions lists the image formats a contact sheet can be saved as.
var PreviewExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".bmp": true, ".tif": true, ".tiff": true,
}

// IsVideoFile reports whether path has a known video extension.
func IsVideoFile(path string) bool {
	return VideoExtensions[strings.ToLower(filepath.Ext(path))]
}

// IsPreviewFile reports whether path names a format SaveContactSheet can write.
func IsPreviewFile(path string) bool {
	return PreviewExtensions[strings.ToLower(filepath.Ext(path))]
}
