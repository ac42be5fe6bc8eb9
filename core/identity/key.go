package identity

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

const (
	// SchemeFile marks keys that point into a local filesystem.
	SchemeFile = "file"
	// SchemeS3 marks keys that point into an S3-compatible bucket.
	SchemeS3 = "s3"
)

// ErrInvalidKey is returned when a raw value cannot be parsed as a key.
var ErrInvalidKey = errors.New("invalid identity key")

// Key is the canonical URL of a catalog location.
type Key string

// FromPath returns the key of a filesystem path.
func FromPath(p string) (Key, error) {
	if strings.TrimSpace(p) == "" {
		return "", fmt.Errorf("%w: empty path", ErrInvalidKey)
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", p, err)
	}
	u := url.URL{Scheme: SchemeFile, Path: filepath.ToSlash(filepath.Clean(abs))}
	return Key(u.String()), nil
}

// FromObject returns the key of an object inside a bucket.
func FromObject(bucket, object string) Key {
	object = strings.Trim(path.Clean("/"+object), "/")
	u := url.URL{Scheme: SchemeS3, Host: bucket, Path: "/" + object}
	if object == "" {
		u.Path = ""
	}
	return Key(u.String())
}

// Parse validates a stored or user-supplied key.
func Parse(raw string) (Key, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	switch u.Scheme {
	case SchemeFile:
		if !strings.HasPrefix(u.Path, "/") {
			return "", fmt.Errorf("%w: %q is not absolute", ErrInvalidKey, raw)
		}
	case SchemeS3:
		if u.Host == "" {
			return "", fmt.Errorf("%w: %q has no bucket", ErrInvalidKey, raw)
		}
	default:
		return "", fmt.Errorf("%w: unsupported scheme %q", ErrInvalidKey, u.Scheme)
	}
	return Key(u.String()), nil
}

// ParseRoot accepts either a URL or a filesystem path, as typed by an operator.
func ParseRoot(raw string) (Key, error) {
	if strings.Contains(raw, "://") {
		return Parse(raw)
	}
	return FromPath(raw)
}

func (k Key) String() string {
	return string(k)
}

// Scheme returns the URL scheme of the key.
func (k Key) Scheme() string {
	u, err := url.Parse(string(k))
	if err != nil {
		return ""
	}
	return u.Scheme
}

// Path returns the local filesystem path of a file key.
func (k Key) Path() (string, error) {
	u, err := url.Parse(string(k))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	if u.Scheme != SchemeFile {
		return "", fmt.Errorf("%w: %q is not a file key", ErrInvalidKey, k)
	}
	return filepath.FromSlash(u.Path), nil
}

// Bucket returns the bucket and object prefix of an s3 key.
func (k Key) Bucket() (bucket, object string, err error) {
	u, err := url.Parse(string(k))
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	if u.Scheme != SchemeS3 {
		return "", "", fmt.Errorf("%w: %q is not an s3 key", ErrInvalidKey, k)
	}
	return u.Host, strings.TrimPrefix(u.Path, "/"), nil
}

// Strings converts keys to their raw form, for use in set queries.
func Strings(keys []Key) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = string(k)
	}
	return out
}
