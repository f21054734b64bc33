// Package qtipkg builds IMS QTI 2.1 / 2.2 assessment packages: one
// imsmanifest.xml plus one item_<n>.xml per question, zipped.
package qtipkg

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/tentagen/tentagen/internal/export"
	"github.com/tentagen/tentagen/internal/question"
)

// Version selects the QTI sub-version. Items are structurally
// near-identical; 2.2 adds a FEEDBACK outcome declaration and references
// the 2.2 schema.
type Version string

const (
	Version21 Version = "2.1"
	Version22 Version = "2.2"
)

var now = time.Now

type versionInfo struct {
	ns           string
	schemaLoc    string
	resourceType string
	rpTemplate   string
	fileTag      string // filename prefix: qti21 / qti22
}

var versions = map[Version]versionInfo{
	Version21: {
		ns:           "http://www.imsglobal.org/xsd/imsqti_v2p1",
		schemaLoc:    "http://www.imsglobal.org/xsd/imsqti_v2p1 http://www.imsglobal.org/xsd/qti/qtiv2p1/imsqti_v2p1.xsd",
		resourceType: "imsqti_item_xmlv2p1",
		rpTemplate:   "http://www.imsglobal.org/question/qti_v2p1/rptemplates/match_correct",
		fileTag:      "qti21",
	},
	Version22: {
		ns:           "http://www.imsglobal.org/xsd/imsqti_v2p2",
		schemaLoc:    "http://www.imsglobal.org/xsd/imsqti_v2p2 http://www.imsglobal.org/xsd/qti/qtiv2p2/imsqti_v2p2.xsd",
		resourceType: "imsqti_item_xmlv2p2",
		rpTemplate:   "http://www.imsglobal.org/question/qti_v2p2/rptemplates/match_correct",
		fileTag:      "qti22",
	},
}

// Encoder builds a QTI package for one version. Inspera marks the package
// filename for the Inspera-flavored import profile.
type Encoder struct {
	Version Version
	Inspera bool
}

func init() {
	export.Register("qti21", Encoder{Version: Version21})
	export.Register("qti22", Encoder{Version: Version22})
	export.Register("qti21_inspera", Encoder{Version: Version21, Inspera: true})
	export.Register("qti22_inspera", Encoder{Version: Version22, Inspera: true})
}

// Encode implements export.Encoder.
func (e Encoder) Encode(qs []question.Question, meta export.Metadata) (export.Artifact, error) {
	vi, ok := versions[e.Version]
	if !ok {
		return export.Artifact{}, fmt.Errorf("unsupported qti version %q", e.Version)
	}

	ts := now()
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)

	mf := imsManifest{
		Identifier:    "MANIFEST_" + export.Slugify(meta.Subject),
		Xmlns:         "http://www.imsglobal.org/xsd/imscp_v1p1",
		Organizations: struct{}{},
	}

	for i, q := range qs {
		itemName := fmt.Sprintf("item_%d.xml", i+1)
		// Unique within the package; uniqueness, not randomness, is the
		// requirement here.
		identifier := fmt.Sprintf("tentagen_%d_%d", ts.Unix(), i+1)

		itemXML, err := buildItem(q, meta, vi, e.Version, identifier)
		if err != nil {
			return export.Artifact{}, fmt.Errorf("item %d: %w", i+1, err)
		}
		w, err := zw.Create(itemName)
		if err != nil {
			return export.Artifact{}, fmt.Errorf("zip create %s: %w", itemName, err)
		}
		if _, err := w.Write([]byte(itemXML)); err != nil {
			return export.Artifact{}, fmt.Errorf("zip write %s: %w", itemName, err)
		}
		mf.Resources = append(mf.Resources, imsResource{
			Identifier: identifier,
			Type:       vi.resourceType,
			Href:       itemName,
			Files:      []imsFile{{Href: itemName}},
		})
	}

	mw, err := zw.Create("imsmanifest.xml")
	if err != nil {
		return export.Artifact{}, fmt.Errorf("zip create manifest: %w", err)
	}
	mb, err := xml.MarshalIndent(mf, "", "  ")
	if err != nil {
		return export.Artifact{}, fmt.Errorf("marshal manifest: %w", err)
	}
	if _, err := mw.Write([]byte(xml.Header)); err != nil {
		return export.Artifact{}, err
	}
	if _, err := mw.Write(mb); err != nil {
		return export.Artifact{}, err
	}

	if err := zw.Close(); err != nil {
		return export.Artifact{}, fmt.Errorf("close package: %w", err)
	}

	tag := vi.fileTag
	if e.Inspera {
		tag += "_inspera"
	}
	name := fmt.Sprintf("%s_%s_%s.zip", tag, export.Slugify(meta.Subject), ts.Format("2006-01-02"))
	return export.Artifact{Filename: name, ContentType: "application/zip", Data: buf.Bytes()}, nil
}

type imsManifest struct {
	XMLName       xml.Name      `xml:"manifest"`
	Identifier    string        `xml:"identifier,attr"`
	Xmlns         string        `xml:"xmlns,attr"`
	Organizations struct{}      `xml:"organizations"`
	Resources     []imsResource `xml:"resources>resource"`
}

type imsResource struct {
	Identifier string    `xml:"identifier,attr"`
	Type       string    `xml:"type,attr"`
	Href       string    `xml:"href,attr"`
	Files      []imsFile `xml:"file"`
}

type imsFile struct {
	Href string `xml:"href,attr"`
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func esc(s string) string { return xmlEscaper.Replace(s) }

// buildItem renders one assessmentItem document for the question's
// interaction kind.
func buildItem(q question.Question, meta export.Metadata, vi versionInfo, v Version, identifier string) (string, error) {
	def := question.Lookup(q.Type)
	body := buildInteraction(q, def)

	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	fmt.Fprintf(&sb, `<assessmentItem xmlns="%s"
  xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"
  xsi:schemaLocation="%s"
  identifier="%s" title="%s" adaptive="false" timeDependent="false">`+"\n",
		vi.ns, vi.schemaLoc, esc(identifier), esc(export.DeriveTitle(q.Title, q.Stimulus)))

	for _, rd := range body.responseDeclarations {
		sb.WriteString(rd)
		sb.WriteString("\n")
	}
	sb.WriteString(`  <outcomeDeclaration identifier="SCORE" cardinality="single" baseType="float"/>` + "\n")
	if v == Version22 {
		sb.WriteString(`  <outcomeDeclaration identifier="FEEDBACK" cardinality="single" baseType="identifier"/>` + "\n")
	}
	sb.WriteString("  <itemBody>\n")
	sb.WriteString(body.itemBody)
	sb.WriteString("\n  </itemBody>\n")
	fmt.Fprintf(&sb, `  <responseProcessing template="%s"/>`+"\n", vi.rpTemplate)
	sb.WriteString("</assessmentItem>\n")
	return sb.String(), nil
}
