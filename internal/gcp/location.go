package gcp

import (
	"fmt"
	"path/filepath"
	"strings"
)

const gcsScheme = "gs://"

// Location is either a local file path or a GCS object.
type Location struct {
	Path   string
	Bucket string
	Object string
}

// ParseLocation accepts a gs://bucket/object URI or an absolute local path.
func ParseLocation(s string) (Location, error) {
	if strings.HasPrefix(s, gcsScheme) {
		bucket, object, ok := strings.Cut(strings.TrimPrefix(s, gcsScheme), "/")
		if !ok || bucket == "" || object == "" {
			return Location{}, fmt.Errorf("invalid GCS URI %q: want gs://bucket/object", s)
		}
		return Location{Bucket: bucket, Object: object}, nil
	}
	if s == "" {
		return Location{}, fmt.Errorf("path must not be empty")
	}
	if !filepath.IsAbs(s) {
		return Location{}, fmt.Errorf("path %q must be absolute", s)
	}
	return Location{Path: filepath.Clean(s)}, nil
}

// IsGCS reports whether the location names a GCS object.
func (l Location) IsGCS() bool {
	return l.Bucket != ""
}

func (l Location) String() string {
	if l.IsGCS() {
		return fmt.Sprintf("gs://%s/%s", l.Bucket, l.Object)
	}
	return l.Path
}
