package office

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// writeZip writes a zip archive with the given entries to a temp file
func writeZip(t *testing.T, name string, entries map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := zip.NewWriter(f)
	for entryName, content := range entries {
		entry, err := w.Create(entryName)
		require.NoError(t, err)
		_, err = entry.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return path
}

const docxBodyXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p>
      <w:pPr><w:pStyle w:val="Heading1"/></w:pPr>
      <w:r><w:t>Quarterly Report</w:t></w:r>
    </w:p>
    <w:p>
      <w:r><w:t>First </w:t></w:r>
      <w:r><w:t>paragraph.</w:t></w:r>
    </w:p>
    <w:p>
      <w:r><w:t>   </w:t></w:r>
    </w:p>
    <w:p>
      <w:pPr><w:pStyle w:val="Heading2"/></w:pPr>
      <w:r><w:t>Details</w:t></w:r>
    </w:p>
  </w:body>
</w:document>`

func TestExtractor_Paragraphs(t *testing.T) {
	e := NewExtractor(nil)

	t.Run("extracts text and heading levels", func(t *testing.T) {
		path := writeZip(t, "report.docx", map[string]string{
			"word/document.xml": docxBodyXML,
		})

		paragraphs, err := e.Paragraphs(path, 0)
		require.NoError(t, err)
		require.Len(t, paragraphs, 3) // blank paragraph skipped

		assert.Equal(t, "Quarterly Report", paragraphs[0].Text)
		assert.Equal(t, 1, paragraphs[0].HeadingLevel)
		assert.Equal(t, "First paragraph.", paragraphs[1].Text)
		assert.Equal(t, 0, paragraphs[1].HeadingLevel)
		assert.Equal(t, "Details", paragraphs[2].Text)
		assert.Equal(t, 2, paragraphs[2].HeadingLevel)
	})

	t.Run("respects paragraph limit", func(t *testing.T) {
		path := writeZip(t, "report.docx", map[string]string{
			"word/document.xml": docxBodyXML,
		})

		paragraphs, err := e.Paragraphs(path, 2)
		require.NoError(t, err)
		assert.Len(t, paragraphs, 2)
	})

	t.Run("missing body entry is an error", func(t *testing.T) {
		path := writeZip(t, "broken.docx", map[string]string{
			"other.xml": "<x/>",
		})
		_, err := e.Paragraphs(path, 0)
		assert.Error(t, err)
	})

	t.Run("legacy binary format is an error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "legacy.doc")
		require.NoError(t, os.WriteFile(path, []byte{0xd0, 0xcf, 0x11, 0xe0}, 0644))
		_, err := e.Paragraphs(path, 0)
		assert.Error(t, err)
	})
}

const slideXMLTemplate = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"
       xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">
  <p:cSld><p:spTree>
    <p:sp><p:txBody><a:p><a:r><a:t>TITLE</a:t></a:r></a:p></p:txBody></p:sp>
    <p:sp><p:txBody><a:p><a:r><a:t>BODY</a:t></a:r></a:p></p:txBody></p:sp>
  </p:spTree></p:cSld>
</p:sld>`

func TestExtractor_Slides(t *testing.T) {
	e := NewExtractor(nil)

	t.Run("extracts slides in numeric order", func(t *testing.T) {
		path := writeZip(t, "deck.pptx", map[string]string{
			"ppt/slides/slide2.xml":  slideXMLTemplate,
			"ppt/slides/slide1.xml":  slideXMLTemplate,
			"ppt/slides/slide10.xml": slideXMLTemplate,
		})

		slides, err := e.Slides(path, 0)
		require.NoError(t, err)
		require.Len(t, slides, 3)
		assert.Equal(t, []string{"TITLE", "BODY"}, slides[0])
	})

	t.Run("respects slide limit", func(t *testing.T) {
		path := writeZip(t, "deck.pptx", map[string]string{
			"ppt/slides/slide1.xml": slideXMLTemplate,
			"ppt/slides/slide2.xml": slideXMLTemplate,
			"ppt/slides/slide3.xml": slideXMLTemplate,
		})

		slides, err := e.Slides(path, 2)
		require.NoError(t, err)
		assert.Len(t, slides, 2)
	})

	t.Run("no slides is an error", func(t *testing.T) {
		path := writeZip(t, "empty.pptx", map[string]string{
			"ppt/presentation.xml": "<p/>",
		})
		_, err := e.Slides(path, 0)
		assert.Error(t, err)
	})
}

func TestExtractor_Rows(t *testing.T) {
	e := NewExtractor(nil)

	writeWorkbook := func(t *testing.T) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "book.xlsx")
		f := excelize.NewFile()
		require.NoError(t, f.SetCellValue("Sheet1", "A1", "Item"))
		require.NoError(t, f.SetCellValue("Sheet1", "B1", "Qty"))
		require.NoError(t, f.SetCellValue("Sheet1", "A2", "Widget"))
		require.NoError(t, f.SetCellValue("Sheet1", "B2", 3))
		require.NoError(t, f.SetCellValue("Sheet1", "A3", "Gadget"))
		require.NoError(t, f.SaveAs(path))
		require.NoError(t, f.Close())
		return path
	}

	t.Run("extracts cell values", func(t *testing.T) {
		rows, err := e.Rows(writeWorkbook(t), 0, 0)
		require.NoError(t, err)
		require.GreaterOrEqual(t, len(rows), 3)
		assert.Equal(t, []string{"Item", "Qty"}, rows[0])
		assert.Equal(t, []string{"Widget", "3"}, rows[1])
	})

	t.Run("respects row limit", func(t *testing.T) {
		rows, err := e.Rows(writeWorkbook(t), 2, 0)
		require.NoError(t, err)
		assert.Len(t, rows, 2)
	})

	t.Run("not a workbook is an error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bogus.xlsx")
		require.NoError(t, os.WriteFile(path, []byte("not a workbook"), 0644))
		_, err := e.Rows(path, 0, 0)
		assert.Error(t, err)
	})
}

func TestHeadingLevel(t *testing.T) {
	assert.Equal(t, 1, headingLevel("Heading1"))
	assert.Equal(t, 3, headingLevel("Heading3"))
	assert.Equal(t, 1, headingLevel("heading1"))
	assert.Equal(t, 4, headingLevel("heading4"))
	assert.Equal(t, 6, headingLevel("Heading9")) // clamped
	assert.Equal(t, 2, headingLevel("Heading"))  // no explicit level
	assert.Equal(t, 0, headingLevel("Normal"))
	assert.Equal(t, 0, headingLevel(""))
}
