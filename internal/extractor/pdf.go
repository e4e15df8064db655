package extractor

import (
	"fmt"
	"strings"

	"github.com/gen2brain/go-fitz"
)

type pageReader interface {
	NumPage() int
	Text(pageNumber int) (string, error)
	Close() error
}

func openFitz(data []byte) (pageReader, error) {
	return fitz.NewFromMemory(data)
}

func (e *Extractor) extractPaginated(data []byte) (string, error) {
	doc, err := e.openPDF(data)
	if err != nil {
		return "", fmt.Errorf("%w: failed to open PDF: %v", ErrExtraction, err)
	}
	defer doc.Close()

	total := doc.NumPage()

	var b strings.Builder
	for n := 0; n < min(total, maxPages); n++ {
		text, err := doc.Text(n)
		if err != nil {
			return "", fmt.Errorf("%w: page %d: %v", ErrExtraction, n+1, err)
		}
		b.WriteString(text)
		b.WriteString("\n")
	}

	if total > maxPages {
		fmt.Fprintf(&b, pageTruncationNote, total, maxPages)
	}
	return b.String(), nil
}
