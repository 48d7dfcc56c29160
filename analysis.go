// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package xtract

// The per-page analyzer (C5): walks a page's content stream, resources,
// annotations and image XObjects, and assembles an AnalysisRecord — the
// unit the cache store (package store) persists and the query engine
// (package query) matches against.

import (
	"regexp"
	"sort"
	"strings"
)

// headerFooterBandFraction is the top/bottom slice of the page, by
// vertical coordinate, that counts as the header or footer band.
const headerFooterBandFraction = 0.10

// moneyPattern matches a Brazilian Real amount: "R$" followed by digits.
var moneyPattern = regexp.MustCompile(`R\$\s?\d`)

// cpfPattern matches a Brazilian CPF (national taxpayer id): either a
// bare 11-digit run, or the dotted/dashed 3-3-3-2 grouped form.
var cpfPattern = regexp.MustCompile(`\b(\d{11}|\d{3}[.\s]\d{3}[.\s]\d{3}-\d{2})\b`)

// ImageDescriptor records an image XObject's metadata without ever
// retaining its pixel data.
type ImageDescriptor struct {
	Name       string
	Width      int64
	Height     int64
	ColorSpace string
	Filters    []string
}

// Annotation records a page annotation's text fields, each decoded per
// its string's own encoding marker (PDFDocEncoding or UTF-16BE BOM).
type Annotation struct {
	Subtype  string
	Contents string
	Title    string
	Subject  string
}

// AnalysisRecord is the durable, per-page result of analyzing a PDF
// page: the artifacts the cache store indexes and the query engine
// matches against.
type AnalysisRecord struct {
	PageNumber  int
	Text        string
	Header      string
	Footer      string
	Body        string
	Fonts       []string
	Images      []ImageDescriptor
	Annotations []Annotation
	HasMoney    bool
	HasCPF      bool
	Orientation string // "portrait" or "landscape"
}

// AnalyzePage builds the AnalysisRecord for page number pageNumber (the
// caller's own 1-based numbering scheme; it is only carried through, not
// interpreted). fonts may be nil; see Page.GetPlainText.
func AnalyzePage(p Page, pageNumber int, fonts map[string]*Font) (AnalysisRecord, error) {
	rec := AnalysisRecord{PageNumber: pageNumber, Orientation: "portrait"}

	content := p.Content()
	sort.Sort(TextVertical(content.Text))

	width, height, haveBox := pageDimensions(p)
	if haveBox && width > height {
		rec.Orientation = "landscape"
	}

	var header, footer, body []string
	for _, t := range content.Text {
		if t.S == "" {
			continue
		}
		switch {
		case haveBox && t.Y >= height*(1-headerFooterBandFraction):
			header = append(header, t.S)
		case haveBox && t.Y <= height*headerFooterBandFraction:
			footer = append(footer, t.S)
		default:
			body = append(body, t.S)
		}
	}
	rec.Header = strings.Join(header, " ")
	rec.Footer = strings.Join(footer, " ")
	rec.Body = strings.Join(body, " ")
	rec.Text = strings.TrimSpace(rec.Header + " " + rec.Body + " " + rec.Footer)

	rec.Fonts = p.Fonts()
	rec.Images = p.Images()
	rec.Annotations = p.PageAnnotations()

	rec.HasMoney = moneyPattern.MatchString(rec.Body)
	rec.HasCPF = cpfPattern.MatchString(rec.Body)

	return rec, nil
}

// pageDimensions returns the page's MediaBox width and height, in
// points, and whether a MediaBox could be determined at all.
func pageDimensions(p Page) (width, height float64, ok bool) {
	box := p.MediaBox()
	if box.Kind() != Array || box.Len() != 4 {
		return 0, 0, false
	}
	llx, lly := box.Index(0).Float64(), box.Index(1).Float64()
	urx, ury := box.Index(2).Float64(), box.Index(3).Float64()
	return urx - llx, ury - lly, true
}

// Images walks /Resources /XObject for entries with /Subtype /Image and
// records their declared metadata: width, height, color space, and
// filter chain. No pixel data is read or retained.
func (p Page) Images() []ImageDescriptor {
	var out []ImageDescriptor
	xobjs := p.Resources().Key("XObject")
	if xobjs.Kind() != Dict {
		return out
	}
	for _, name := range xobjs.Keys() {
		img := xobjs.Key(name)
		if img.Key("Subtype").Name() != "Image" {
			continue
		}
		desc := ImageDescriptor{
			Name:       name,
			Width:      img.Key("Width").Int64(),
			Height:     img.Key("Height").Int64(),
			ColorSpace: colorSpaceName(img.Key("ColorSpace")),
			Filters:    filterNames(img.Key("Filter")),
		}
		out = append(out, desc)
	}
	return out
}

// colorSpaceName renders a /ColorSpace entry (a name, or an array such
// as [/Indexed /DeviceRGB ...]) as a short label.
func colorSpaceName(cs Value) string {
	switch cs.Kind() {
	case Name:
		return cs.Name()
	case Array:
		if cs.Len() == 0 {
			return ""
		}
		return cs.Index(0).Name()
	default:
		return ""
	}
}

// filterNames renders a /Filter entry (a name, or an array of names) as
// an ordered list of filter names.
func filterNames(f Value) []string {
	switch f.Kind() {
	case Name:
		return []string{f.Name()}
	case Array:
		var out []string
		for i := 0; i < f.Len(); i++ {
			out = append(out, f.Index(i).Name())
		}
		return out
	default:
		return nil
	}
}

// PageAnnotations walks /Annots and records each annotation's text
// fields. Each string is decoded through Value.Text, which already
// resolves PDFDocEncoding vs. UTF-16BE per string.
func (p Page) PageAnnotations() []Annotation {
	var out []Annotation
	annots := p.V.Key("Annots")
	if annots.Kind() != Array {
		return out
	}
	for i := 0; i < annots.Len(); i++ {
		a := annots.Index(i)
		if a.Kind() != Dict {
			continue
		}
		out = append(out, Annotation{
			Subtype:  a.Key("Subtype").Name(),
			Contents: a.Key("Contents").Text(),
			Title:    a.Key("T").Text(),
			Subject:  a.Key("Subj").Text(),
		})
	}
	return out
}
