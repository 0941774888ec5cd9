package office

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// Paragraph is one paragraph of extracted word-processing text.
// HeadingLevel is 0 for body text, 1-6 for headings.
type Paragraph struct {
	Text         string
	HeadingLevel int
}

// Extractor pulls plain text out of office documents. Extraction is
// best-effort by design: only text content survives, never layout, images or
// formatting. Legacy binary formats (.doc/.xls/.ppt) are not parseable here
// and report an error, which callers degrade to their "unsupported" outcome.
type Extractor struct {
	logger *zap.Logger
}

// NewExtractor creates a new office text extractor
func NewExtractor(logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{logger: logger}
}

// docx XML shapes; namespace prefixes are matched by local name.
type docxDocument struct {
	Body docxBody `xml:"body"`
}

type docxBody struct {
	Paragraphs []docxParagraph `xml:"p"`
}

type docxParagraph struct {
	Props docxParaProps `xml:"pPr"`
	Runs  []docxRun     `xml:"r"`
}

type docxParaProps struct {
	Style docxStyleRef `xml:"pStyle"`
}

type docxStyleRef struct {
	Val string `xml:"val,attr"`
}

type docxRun struct {
	Text []string `xml:"t"`
}

// Paragraphs extracts up to maxParagraphs non-empty paragraphs from a .docx
// file, with heading levels detected from the paragraph style name.
func (e *Extractor) Paragraphs(path string, maxParagraphs int) ([]Paragraph, error) {
	data, err := readZipEntry(path, "word/document.xml")
	if err != nil {
		return nil, fmt.Errorf("failed to read document body: %w", err)
	}

	var doc docxDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse document body: %w", err)
	}

	paragraphs := make([]Paragraph, 0, len(doc.Body.Paragraphs))
	for _, p := range doc.Body.Paragraphs {
		var sb strings.Builder
		for _, r := range p.Runs {
			for _, t := range r.Text {
				sb.WriteString(t)
			}
		}
		text := strings.TrimSpace(sb.String())
		if text == "" {
			continue
		}

		paragraphs = append(paragraphs, Paragraph{
			Text:         text,
			HeadingLevel: headingLevel(p.Props.Style.Val),
		})
		if maxParagraphs > 0 && len(paragraphs) >= maxParagraphs {
			break
		}
	}

	return paragraphs, nil
}

// Rows extracts up to maxRows x maxCols cells from the first sheet of a
// spreadsheet file.
func (e *Extractor) Rows(path string, maxRows, maxCols int) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			e.logger.Warn("failed to close workbook", zap.String("path", path), zap.Error(cerr))
		}
	}()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	if maxRows > 0 && len(rows) > maxRows {
		rows = rows[:maxRows]
	}
	result := make([][]string, len(rows))
	for i, row := range rows {
		if maxCols > 0 && len(row) > maxCols {
			row = row[:maxCols]
		}
		result[i] = row
	}

	return result, nil
}

// Slides extracts the text runs of up to maxSlides slides from a .pptx file,
// in slide order. Each slide is returned as its list of text runs.
func (e *Extractor) Slides(path string, maxSlides int) ([][]string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open presentation: %w", err)
	}
	defer r.Close()

	var slideFiles []*zip.File
	for _, f := range r.File {
		if strings.HasPrefix(f.Name, "ppt/slides/slide") && strings.HasSuffix(f.Name, ".xml") {
			slideFiles = append(slideFiles, f)
		}
	}
	if len(slideFiles) == 0 {
		return nil, fmt.Errorf("presentation has no slides")
	}

	// slide2.xml sorts before slide10.xml numerically, not lexically
	sort.Slice(slideFiles, func(i, j int) bool {
		return slideNumber(slideFiles[i].Name) < slideNumber(slideFiles[j].Name)
	})
	if maxSlides > 0 && len(slideFiles) > maxSlides {
		slideFiles = slideFiles[:maxSlides]
	}

	slides := make([][]string, 0, len(slideFiles))
	for _, f := range slideFiles {
		texts, err := slideTexts(f)
		if err != nil {
			return nil, fmt.Errorf("failed to parse slide %s: %w", f.Name, err)
		}
		slides = append(slides, texts)
	}

	return slides, nil
}

// slideTexts collects the character data of every <a:t> element in a slide
func slideTexts(f *zip.File) ([]string, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var texts []string
	dec := xml.NewDecoder(rc)
	inTextRun := false
	var current strings.Builder

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
			if t.Name.Local == "t" {
				inTextRun = true
				current.Reset()
			}
		case xml.CharData:
			if inTextRun {
				current.Write(t)
			}
		case xml.EndElement:
			if t.Name.Local == "t" {
				inTextRun = false
				if text := strings.TrimSpace(current.String()); text != "" {
					texts = append(texts, text)
				}
			}
		}
	}

	return texts, nil
}

// headingLevel maps a docx paragraph style name to a heading level.
// Word names its built-in heading styles "Heading1".."Heading9".
func headingLevel(style string) int {
	if !strings.HasPrefix(style, "Heading") && !strings.HasPrefix(style, "heading") {
		return 0
	}
	suffix := strings.TrimPrefix(strings.TrimPrefix(style, "Heading"), "heading")
	level, err := strconv.Atoi(suffix)
	if err != nil || level < 1 {
		return 2
	}
	if level > 6 {
		return 6
	}
	return level
}

// slideNumber extracts the numeric suffix from a slide entry name
func slideNumber(name string) int {
	base := strings.TrimSuffix(strings.TrimPrefix(name, "ppt/slides/slide"), ".xml")
	n, err := strconv.Atoi(base)
	if err != nil {
		return 0
	}
	return n
}

// readZipEntry returns the decompressed content of one entry in a zip archive
func readZipEntry(path, entry string) ([]byte, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	for _, f := range r.File {
		if f.Name == entry {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}

	return nil, fmt.Errorf("archive entry %q not found", entry)
}
