package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"strconv"
	"strings"
	"unicode"

	"github.com/templui/securedocs/internal/model"
	"github.com/templui/securedocs/internal/storage"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	ErrResourceNotFound = errors.New("resource not found")
	ErrUnavailable      = errors.New("resource temporarily unavailable")
)

const defaultChunkSize = 1 << 20

// Delivery is an opened file ready to be streamed to a client.
type Delivery struct {
	Body        io.ReadCloser
	Filename    string
	ContentType string
	Size        int64 // -1 when unknown
	Remote      bool

	chunkSize int
}

// WriteHeaders sets the attachment and no-cache headers for the file.
func (d *Delivery) WriteHeaders(h http.Header) {
	h.Set("Content-Type", d.ContentType)
	h.Set("Content-Disposition", contentDisposition(d.Filename))
	if d.Size >= 0 {
		h.Set("Content-Length", strconv.FormatInt(d.Size, 10))
	}
	h.Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
	h.Set("Pragma", "no-cache")
	h.Set("Expires", "0")
	h.Set("X-Robots-Tag", "noindex, nofollow")
	h.Set("X-Content-Type-Options", "nosniff")
}

// Stream copies the body in fixed-size chunks, flushing after each one, and
// closes it. It stops at the first write error (client gone).
func (d *Delivery) Stream(w io.Writer) (int64, error) {
	defer d.Body.Close()

	size := d.chunkSize
	if size <= 0 {
		size = defaultChunkSize
	}
	buf := make([]byte, size)
	flusher, _ := w.(http.Flusher)

	var written int64
	for {
		n, readErr := d.Body.Read(buf)
		if n > 0 {
			m, err := w.Write(buf[:n])
			written += int64(m)
			if err != nil {
				return written, err
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
		if readErr == io.EOF {
			return written, nil
		}
		if readErr != nil {
			return written, readErr
		}
	}
}

func (d *Delivery) Close() error {
	return d.Body.Close()
}

type DeliveryService struct {
	resolver  *storage.Resolver
	chunkSize int
}

func NewDeliveryService(resolver *storage.Resolver, chunkSize int) *DeliveryService {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	return &DeliveryService{resolver: resolver, chunkSize: chunkSize}
}

// Deliver opens file index of doc. Missing local files and out-of-range
// indexes are ErrResourceNotFound; failed remote probes or fetches are
// ErrUnavailable.
func (s *DeliveryService) Deliver(ctx context.Context, doc *model.Document, index int) (*Delivery, error) {
	file, ok := doc.File(index)
	if !ok {
		return nil, fmt.Errorf("%w: document %s has no file %d", ErrResourceNotFound, doc.ID, index)
	}

	loc, err := s.resolver.Resolve(file.URL)
	if err != nil {
		return nil, mapStorageError(err)
	}

	info, err := loc.Source.Stat(ctx, loc.Key)
	if err != nil {
		if loc.Remote {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return nil, mapStorageError(err)
	}

	body, err := loc.Source.Open(ctx, loc.Key)
	if err != nil {
		if loc.Remote {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return nil, mapStorageError(err)
	}

	filename := file.Name
	if filename == "" {
		filename = info.Name
	}

	slog.Debug("delivery opened",
		"document_id", doc.ID,
		"file_index", index,
		"remote", loc.Remote,
		"size", info.Size,
	)

	return &Delivery{
		Body:        body,
		Filename:    filename,
		ContentType: contentType(filename, info.ContentType),
		Size:        info.Size,
		Remote:      loc.Remote,
		chunkSize:   s.chunkSize,
	}, nil
}

func mapStorageError(err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return fmt.Errorf("%w: %v", ErrResourceNotFound, err)
	case errors.Is(err, storage.ErrUnavailable):
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return err
}

// contentType prefers the extension, then the type reported by the source.
func contentType(filename, probed string) string {
	if ct := mime.TypeByExtension(strings.ToLower(path.Ext(filename))); ct != "" {
		return ct
	}
	if probed != "" {
		return probed
	}
	return "application/octet-stream"
}

var asciiFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// SanitizeFilename reduces name to a safe ASCII file name.
func SanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))

	folded, _, err := transform.String(asciiFold, name)
	if err != nil {
		folded = name
	}

	var b strings.Builder
	for _, r := range folded {
		switch {
		case r > unicode.MaxASCII || r < 0x20 || r == 0x7f:
			b.WriteByte('_')
		case r == '"' || r == '\\' || r == '/' || r == ';' || r == '%':
			b.WriteByte('_')
		default:
			b.WriteRune(r)
		}
	}

	clean := strings.Trim(b.String(), " .")
	if clean == "" {
		return "download"
	}
	return clean
}

func contentDisposition(name string) string {
	ascii := SanitizeFilename(name)
	header := mime.FormatMediaType("attachment", map[string]string{"filename": ascii})
	if header == "" {
		header = `attachment; filename="download"`
	}

	full := path.Base(strings.ReplaceAll(name, "\\", "/"))
	if full == ascii || full == "." || full == "/" {
		return header
	}
	if ext := mime.FormatMediaType("attachment", map[string]string{"filename": full}); strings.Contains(ext, "filename*=") {
		header += strings.TrimPrefix(ext, "attachment")
	}
	return header
}
