// Package docx renders questions into a Word document. The .docx container
// is assembled the same way the QTI package is: templated XML parts written
// into a zip archive.
package docx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tentagen/tentagen/internal/export"
	"github.com/tentagen/tentagen/internal/question"
)

var now = time.Now

const contentTypeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// Encoder builds the Word artifact. LogoURL, when set, is fetched once per
// export on a best-effort basis; a fetch failure degrades to text-only
// branding and never fails the export.
type Encoder struct {
	LogoURL string
	Client  *http.Client
}

func init() {
	export.Register("docx", Encoder{})
}

// Encode implements export.Encoder.
func (e Encoder) Encode(qs []question.Question, meta export.Metadata) (export.Artifact, error) {
	logo := e.fetchLogo()

	doc := buildDocument(qs, meta, logo != nil)

	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)

	parts := []struct {
		name string
		data []byte
	}{
		{"[Content_Types].xml", []byte(contentTypesXML(logo != nil))},
		{"_rels/.rels", []byte(relsXML)},
		{"word/_rels/document.xml.rels", []byte(documentRelsXML(logo != nil))},
		{"word/styles.xml", []byte(stylesXML)},
		{"word/document.xml", []byte(doc)},
	}
	if logo != nil {
		parts = append(parts, struct {
			name string
			data []byte
		}{"word/media/logo.png", logo})
	}

	for _, p := range parts {
		w, err := zw.Create(p.name)
		if err != nil {
			return export.Artifact{}, fmt.Errorf("docx create %s: %w", p.name, err)
		}
		if _, err := w.Write(p.data); err != nil {
			return export.Artifact{}, fmt.Errorf("docx write %s: %w", p.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return export.Artifact{}, fmt.Errorf("close docx: %w", err)
	}

	name := fmt.Sprintf("tentagen_%s_%s.docx", export.Slugify(meta.Subject), now().Format("2006-01-02"))
	return export.Artifact{Filename: name, ContentType: contentTypeDocx, Data: buf.Bytes()}, nil
}

// fetchLogo returns the logo bytes, or nil when no URL is configured or the
// fetch fails for any reason.
func (e Encoder) fetchLogo() []byte {
	if e.LogoURL == "" {
		return nil
	}
	client := e.Client
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	resp, err := client.Get(e.LogoURL)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return nil
	}
	return b
}

const relsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

func contentTypesXML(withLogo bool) string {
	png := ""
	if withLogo {
		png = `
  <Default Extension="png" ContentType="image/png"/>`
	}
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>` + png + `
  <Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
  <Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>
</Types>`
}

func documentRelsXML(withLogo bool) string {
	logo := ""
	if withLogo {
		logo = `
  <Relationship Id="rIdLogo" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/image" Target="media/logo.png"/>`
	}
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rIdStyles" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>` + logo + `
</Relationships>`
}

const stylesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:style w:type="paragraph" w:styleId="Title">
    <w:name w:val="Title"/>
    <w:rPr><w:b/><w:sz w:val="48"/></w:rPr>
  </w:style>
  <w:style w:type="paragraph" w:styleId="Heading1">
    <w:name w:val="heading 1"/>
    <w:rPr><w:b/><w:sz w:val="32"/></w:rPr>
  </w:style>
  <w:style w:type="paragraph" w:styleId="Heading2">
    <w:name w:val="heading 2"/>
    <w:rPr><w:b/><w:sz w:val="26"/></w:rPr>
  </w:style>
</w:styles>`
