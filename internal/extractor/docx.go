package extractor

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

const documentPart = "word/document.xml"

func extractFlow(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: failed to open DOCX: %v", ErrExtraction, err)
	}

	var part *zip.File
	for _, f := range zr.File {
		if f.Name == documentPart {
			part = f
			break
		}
	}
	if part == nil {
		return "", fmt.Errorf("%w: %s missing", ErrExtraction, documentPart)
	}

	rc, err := part.Open()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	defer rc.Close()

	paragraphs, err := readParagraphs(rc)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	total := len(paragraphs)
	lines := make([]string, 0, min(total, maxParagraphs))
	for _, p := range paragraphs[:min(total, maxParagraphs)] {
		if strings.TrimSpace(p) != "" {
			lines = append(lines, p)
		}
	}

	text := strings.Join(lines, "\n")
	if total > maxParagraphs {
		text += fmt.Sprintf(paragraphTruncationNote, total, maxParagraphs)
	}
	return text, nil
}

// readParagraphs returns the text of every paragraph that is a direct child of
// the document body. Paragraphs nested in tables are not counted.
func readParagraphs(r io.Reader) ([]string, error) {
	dec := xml.NewDecoder(r)

	var (
		paragraphs []string
		current    strings.Builder
		depth      int
		bodyDepth  = -1
		inPara     bool
		inText     bool
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			switch {
			case t.Name.Local == "body" && bodyDepth < 0:
				bodyDepth = depth
			case t.Name.Local == "p" && bodyDepth > 0 && depth == bodyDepth+1:
				inPara = true
				current.Reset()
			case !inPara:
			case t.Name.Local == "t":
				inText = true
			case t.Name.Local == "tab":
				current.WriteByte('\t')
			case t.Name.Local == "br", t.Name.Local == "cr":
				current.WriteByte('\n')
			}
		case xml.EndElement:
			switch {
			case inPara && t.Name.Local == "t":
				inText = false
			case inPara && t.Name.Local == "p" && depth == bodyDepth+1:
				paragraphs = append(paragraphs, current.String())
				inPara = false
			}
			depth--
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}
	return paragraphs, nil
}
