package storage

import (
	"fmt"
	"net/url"
	"strings"
)

// Location is a file reference mapped onto the backend that serves it.
type Location struct {
	Source Source
	Key    string
	Remote bool
}

// Resolver maps document file URLs to storage backends.
type Resolver struct {
	local      *LocalStorage
	s3         *S3Storage
	http       *HTTPSource
	uploadsURL string
}

// NewResolver builds a resolver. s3 may be nil when S3 is not configured.
// uploadsURL is the public prefix under which local uploads are served.
func NewResolver(local *LocalStorage, s3 *S3Storage, http *HTTPSource, uploadsURL string) *Resolver {
	return &Resolver{
		local:      local,
		s3:         s3,
		http:       http,
		uploadsURL: strings.TrimSuffix(uploadsURL, "/") + "/",
	}
}

func (r *Resolver) Resolve(ref string) (*Location, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("%w: empty file reference", ErrNotFound)
	}

	// Site-hosted upload URLs are served from disk, not proxied to ourselves
	if r.uploadsURL != "/" && strings.HasPrefix(ref, r.uploadsURL) {
		key, err := url.PathUnescape(strings.TrimPrefix(ref, r.uploadsURL))
		if err != nil {
			return nil, fmt.Errorf("%w: bad upload path: %v", ErrNotFound, err)
		}
		return &Location{Source: r.local, Key: key}, nil
	}

	u, err := url.Parse(ref)
	if err != nil {
		return nil, fmt.Errorf("%w: bad file reference: %v", ErrNotFound, err)
	}

	switch u.Scheme {
	case "":
		return &Location{Source: r.local, Key: u.Path}, nil
	case "s3":
		if r.s3 == nil {
			return nil, fmt.Errorf("%w: s3 storage not configured", ErrUnavailable)
		}
		if u.Host != r.s3.Bucket() {
			return nil, fmt.Errorf("%w: unknown bucket %q", ErrNotFound, u.Host)
		}
		return &Location{Source: r.s3, Key: strings.TrimPrefix(u.Path, "/"), Remote: true}, nil
	case "http", "https":
		return &Location{Source: r.http, Key: ref, Remote: true}, nil
	}

	return nil, fmt.Errorf("%w: unsupported scheme %q", ErrNotFound, u.Scheme)
}
