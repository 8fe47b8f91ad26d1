package cvs

import (
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"jobassist-backend/internal/shared/util"
)

const keyPrefix = "cvs/"

// ErrBadURL is returned when a stored URL is too short to carry an object key.
var ErrBadURL = errors.New("url does not contain an object key")

// BuildKey derives the blob key for an owner's CV upload. The original file
// name only contributes its extension; the owner id and upload time keep keys
// unique per user without leaking the uploaded name.
func BuildKey(ownerID, fileName string, now time.Time) string {
	ext := strings.ToLower(path.Ext(fileName))
	return fmt.Sprintf("%s%s_%d%s", keyPrefix, util.SafeKeySegment(ownerID), now.UnixMilli(), ext)
}

// ExtractKeyFromURL recovers the object key from a stored blob URL by
// dropping the scheme and host segments: everything after the third "/" is
// the key. Works for both S3-style and local-store URLs.
func ExtractKeyFromURL(url string) (string, error) {
	parts := strings.Split(url, "/")
	if len(parts) < 4 {
		return "", ErrBadURL
	}
	key := strings.Join(parts[3:], "/")
	if key == "" {
		return "", ErrBadURL
	}
	return key, nil
}
