// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

// Package forensic isolates the text added in a PDF document's last
// incremental revision (C6): it delineates revision boundaries, parses
// the last revision's own cross-reference declarations, classifies each
// declared object, and extracts whatever text that object carries.
package forensic

import (
	"sort"
	"strings"

	xtract "github.com/sindlinger/fpdf-portable-sub002"
	"github.com/sindlinger/fpdf-portable-sub002/logger"
)

// Kind classifies how a changed object was classified during analysis.
type Kind int

const (
	KindContentStream Kind = iota
	KindAnnotation
	KindPage
	KindResource
)

func (k Kind) String() string {
	switch k {
	case KindContentStream:
		return "content_stream"
	case KindAnnotation:
		return "annotation"
	case KindPage:
		return "page"
	case KindResource:
		return "resource"
	default:
		return "unknown"
	}
}

// Fragment is one piece of text (or a resource-only change with none)
// attributed to a single changed object.
type Fragment struct {
	PageNumber int
	ObjectID   uint32
	Generation uint16
	Kind       Kind
	Text       string
}

// Report is the outcome of analyzing one document's last revision.
type Report struct {
	// SingleSession is true when the document shows neither multiple
	// revisions nor any nonzero-generation object: there is nothing to
	// report as "added in the last session" because there has only ever
	// been one.
	SingleSession bool
	Fragments     []Fragment
	// CreationDate and ModDate are the /Info dictionary's raw string
	// values, populated only when both are present and differ — taken as
	// corroborating evidence, never used to filter fragments.
	CreationDate string
	ModDate      string
}

// Analyze runs the forensic pipeline against an opened document.
func Analyze(r *xtract.Reader) (Report, error) {
	idx := buildPageIndex(r)

	var candidates []xtract.ObjectRef
	fallback := false

	revisions, err := r.Revisions()
	if err != nil || len(revisions) <= 1 {
		fallback = true
		candidates = r.ChangedObjects()
		logger.Debug("forensic: no usable incremental-update chain, using generation>0 fallback", true)
	} else {
		last := revisions[len(revisions)-1]
		candidates = last.ObjectIDs
		logger.Debug("forensic: last revision declares a candidate set", true)
	}

	var rep Report
	if len(candidates) == 0 {
		rep.SingleSession = true
	}

	for _, ref := range candidates {
		rep.Fragments = append(rep.Fragments, classify(r, idx, ref)...)
	}
	_ = fallback

	sort.Slice(rep.Fragments, func(i, j int) bool {
		a, b := rep.Fragments[i], rep.Fragments[j]
		if a.PageNumber != b.PageNumber {
			return a.PageNumber < b.PageNumber
		}
		return a.ObjectID < b.ObjectID
	})

	info := r.Info()
	created := info.Key("CreationDate").Text()
	modified := info.Key("ModDate").Text()
	if created != "" && modified != "" && created != modified {
		rep.CreationDate = created
		rep.ModDate = modified
	}

	return rep, nil
}

// pageIndex maps object ids the forensic classifier needs a page number
// for: a page's own object, and the content streams and annotations it
// references.
type pageIndex struct {
	pageOfObject map[uint32]int // page object id -> page number
	contentPage  map[uint32]int // content stream object id -> page number
	annotPage    map[uint32]int // annotation object id -> page number
}

func buildPageIndex(r *xtract.Reader) pageIndex {
	idx := pageIndex{
		pageOfObject: map[uint32]int{},
		contentPage:  map[uint32]int{},
		annotPage:    map[uint32]int{},
	}
	n := r.NumPage()
	for i := 1; i <= n; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		idx.pageOfObject[p.V.ObjPtr().ID] = i

		contents := p.V.Key("Contents")
		switch contents.Kind() {
		case xtract.Stream:
			idx.contentPage[contents.ObjPtr().ID] = i
		case xtract.Array:
			for j := 0; j < contents.Len(); j++ {
				idx.contentPage[contents.Index(j).ObjPtr().ID] = i
			}
		}

		annots := p.V.Key("Annots")
		if annots.Kind() == xtract.Array {
			for j := 0; j < annots.Len(); j++ {
				a := annots.Index(j)
				idx.annotPage[a.ObjPtr().ID] = i
			}
		}
	}
	return idx
}

// classify resolves one candidate object and extracts its text, per the
// classification rules of §4.6. A single object ordinarily yields one
// fragment; a page object yields one fragment per line of page text is
// avoided in favor of one fragment for the whole page, matching the
// granularity of the other classifications.
func classify(r *xtract.Reader, idx pageIndex, ref xtract.ObjectRef) []Fragment {
	val := r.ResolveRef(ref)

	switch val.Kind() {
	case xtract.Stream:
		if pageNum, ok := idx.contentPage[ref.ID]; ok {
			p := r.Page(pageNum)
			content := p.ContentFrom(val)
			return []Fragment{{
				PageNumber: pageNum,
				ObjectID:   ref.ID,
				Generation: ref.Gen,
				Kind:       KindContentStream,
				Text:       joinText(content),
			}}
		}
		return []Fragment{{ObjectID: ref.ID, Generation: ref.Gen, Kind: KindResource}}

	case xtract.Dict:
		switch val.Key("Type").Name() {
		case "Annot":
			pageNum := idx.annotPage[ref.ID]
			text := strings.TrimSpace(strings.Join([]string{
				val.Key("Contents").Text(),
				val.Key("T").Text(),
				val.Key("Subj").Text(),
			}, " "))
			return []Fragment{{
				PageNumber: pageNum,
				ObjectID:   ref.ID,
				Generation: ref.Gen,
				Kind:       KindAnnotation,
				Text:       strings.TrimSpace(text),
			}}
		case "Page":
			pageNum := idx.pageOfObject[ref.ID]
			p := r.Page(pageNum)
			return []Fragment{{
				PageNumber: pageNum,
				ObjectID:   ref.ID,
				Generation: ref.Gen,
				Kind:       KindPage,
				Text:       joinText(p.Content()),
			}}
		default:
			return []Fragment{{ObjectID: ref.ID, Generation: ref.Gen, Kind: KindResource}}
		}

	default:
		return []Fragment{{ObjectID: ref.ID, Generation: ref.Gen, Kind: KindResource}}
	}
}

func joinText(c xtract.Content) string {
	var b strings.Builder
	for _, t := range c.Text {
		b.WriteString(t.S)
	}
	return b.String()
}
