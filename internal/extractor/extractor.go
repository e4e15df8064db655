// Package extractor turns stored business-plan documents into bounded plain text.
package extractor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"github.com/fadilmartias/plan-analyzer/internal/service"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Kind is the layout family of a document.
type Kind int

const (
	KindUnknown Kind = iota
	// KindPaginated covers page based formats (PDF).
	KindPaginated
	// KindFlow covers paragraph based formats (DOCX).
	KindFlow
)

func (k Kind) String() string {
	switch k {
	case KindPaginated:
		return "paginated"
	case KindFlow:
		return "flow"
	default:
		return "unknown"
	}
}

const (
	maxPages      = 10
	maxParagraphs = 100

	pageTruncationNote      = "\n[Note: Document tronqué - %d pages au total, les %d premières pages ont été analysées]"
	paragraphTruncationNote = "\n[Note: Document tronqué - %d paragraphes au total, les %d premiers ont été analysés]"
)

var (
	ErrUnsupportedFormat = errors.New("format de fichier non supporté")
	ErrLegacyFormat      = fmt.Errorf("%w: Format .doc non supporté. Veuillez convertir en .docx ou .pdf", ErrUnsupportedFormat)
	ErrFetch             = errors.New("document fetch failed")
	ErrExtraction        = errors.New("document extraction failed")
)

// KindFromName maps a file name, path or URL to a Kind using its extension.
// Query strings and fragments are ignored.
func KindFromName(name string) (Kind, error) {
	clean := name
	if i := strings.IndexAny(clean, "?#"); i >= 0 {
		clean = clean[:i]
	}

	ext := strings.ToLower(path.Ext(clean))
	switch ext {
	case ".pdf":
		return KindPaginated, nil
	case ".docx":
		return KindFlow, nil
	case ".doc":
		return KindUnknown, ErrLegacyFormat
	case "":
		return KindUnknown, fmt.Errorf("%w: extension absente (%s)", ErrUnsupportedFormat, name)
	default:
		return KindUnknown, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

// DocumentFetcher reads documents kept in object storage.
type DocumentFetcher interface {
	Download(ctx context.Context, reference string) ([]byte, error)
}

type Extractor struct {
	http    *resty.Client
	store   DocumentFetcher
	logger  *zap.Logger
	openPDF func(data []byte) (pageReader, error)
}

// New builds an Extractor. store may be nil when no object storage is configured.
func New(store DocumentFetcher, fetchTimeout time.Duration, logger *zap.Logger) *Extractor {
	if fetchTimeout <= 0 {
		fetchTimeout = 30 * time.Second
	}
	client := resty.New().
		SetTimeout(fetchTimeout).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(10))

	return &Extractor{
		http:    client,
		store:   store,
		logger:  logger,
		openPDF: openFitz,
	}
}

// Extract loads the document behind reference and returns its text. The
// reference may be an http(s) URL, a storage reference or a local path.
func (e *Extractor) Extract(ctx context.Context, reference string, kind Kind) (string, error) {
	if kind != KindPaginated && kind != KindFlow {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, kind)
	}

	data, err := e.load(ctx, reference)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrFetch, reference, err)
	}

	var text string
	switch kind {
	case KindPaginated:
		text, err = e.extractPaginated(data)
	case KindFlow:
		text, err = extractFlow(data)
	}
	if err != nil {
		return "", err
	}

	e.logger.Debug("document extracted",
		zap.String("reference", reference),
		zap.Stringer("kind", kind),
		zap.Int("bytes", len(data)),
		zap.Int("chars", len(text)),
	)
	return text, nil
}

func (e *Extractor) load(ctx context.Context, reference string) ([]byte, error) {
	switch {
	case strings.HasPrefix(reference, "http://"), strings.HasPrefix(reference, "https://"):
		resp, err := e.http.R().SetContext(ctx).Get(reference)
		if err != nil {
			return nil, err
		}
		if resp.IsError() {
			return nil, fmt.Errorf("unexpected status %d", resp.StatusCode())
		}
		return resp.Body(), nil
	case service.IsReference(reference):
		if e.store == nil {
			return nil, errors.New("no document store configured")
		}
		return e.store.Download(ctx, reference)
	default:
		return os.ReadFile(reference)
	}
}
