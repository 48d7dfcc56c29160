// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package xtract

// Revision boundary delineation for the forensic analyzer (C6): scanning
// the file for every %%EOF marker and parsing each revision's own
// cross-reference section independently of any /Prev chain, the way
// NewReader's single composed xref never needs to. Grounded on the same
// readXrefTable/readXrefStream machinery NewReader already uses, applied
// per-revision instead of merged.

import (
	"bytes"
	"fmt"
	"io"

	"github.com/sindlinger/fpdf-portable-sub002/logger"
)

// ObjectRef identifies one indirect object generation.
type ObjectRef struct {
	ID  uint32
	Gen uint16
}

// RevisionBoundary is one incremental-update revision: the offset of the
// %%EOF that closes it, the startxref that opens its own cross-reference
// section, the object ids that section declares (excluding free entries
// and object 0), and its trailer dictionary.
type RevisionBoundary struct {
	EOFOffset int64
	StartXref int64
	ObjectIDs []ObjectRef
	Trailer   Value
}

// Revisions scans the file for every %%EOF marker and, for each,
// parses the cross-reference section its preceding startxref names — on
// its own, without following /Prev — returning revisions oldest first.
// A document with a single %%EOF yields a single revision.
func (r *Reader) Revisions() ([]RevisionBoundary, error) {
	buf := make([]byte, r.end)
	if _, err := r.f.ReadAt(buf, 0); err != nil && err != io.EOF {
		return nil, err
	}

	marker := []byte("%%EOF")
	var eofOffsets []int64
	for i := 0; i+len(marker) <= len(buf); {
		idx := bytes.Index(buf[i:], marker)
		if idx < 0 {
			break
		}
		eofOffsets = append(eofOffsets, int64(i+idx))
		i += idx + len(marker)
	}
	if len(eofOffsets) == 0 {
		return nil, newError(KindMalformed, "scanning for %%EOF markers", nil)
	}

	revs := make([]RevisionBoundary, 0, len(eofOffsets))
	for _, eofOff := range eofOffsets {
		si := bytes.LastIndex(buf[:eofOff], []byte("startxref"))
		if si < 0 {
			logger.Debug(fmt.Sprintf("revisions: no startxref preceding %%%%EOF at %d, skipping", eofOff), true)
			continue
		}
		startOff := int64(si)
		b := newBuffer(io.NewSectionReader(r.f, startOff, r.end-startOff), startOff)
		if tok := b.readToken(); tok != keyword("startxref") {
			continue
		}
		startxref, ok := b.readToken().(int64)
		if !ok {
			continue
		}

		table, trailer, err := r.readOwnXref(startxref)
		if err != nil {
			logger.Debug(fmt.Sprintf("revisions: skipping unparseable revision at startxref=%d: %v", startxref, err), true)
			continue
		}
		revs = append(revs, RevisionBoundary{
			EOFOffset: eofOff,
			StartXref: startxref,
			ObjectIDs: candidateIDs(table),
			Trailer:   Value{r, objptr{}, trailer},
		})
	}
	if len(revs) == 0 {
		return nil, newError(KindMalformed, "no revision's cross-reference section could be parsed", nil)
	}
	return revs, nil
}

// readOwnXref parses the single xref table or stream at offset without
// following its /Prev chain, returning only the entries declared there.
func (r *Reader) readOwnXref(offset int64) ([]xref, dict, error) {
	b := newBuffer(io.NewSectionReader(r.f, offset, r.end-offset), offset)
	tok := b.readToken()
	if tok == keyword("xref") {
		return parseXrefTableAndTrailer(b, nil)
	}
	if _, ok := tok.(int64); ok {
		b.unreadToken(tok)
		_, strm, err := parseXrefStreamObject(b)
		if err != nil {
			return nil, nil, err
		}
		size, err := xrefSize(strm)
		if err != nil {
			return nil, nil, err
		}
		table := make([]xref, size)
		table, err = readXrefStreamData(r, strm, table, size)
		if err != nil {
			return nil, nil, err
		}
		return table, strm.hdr, nil
	}
	return nil, nil, newOffsetError(KindMalformed, offset, "cross-reference table nor stream found", nil)
}

// candidateIDs returns the non-free, non-zero object ids a parsed xref
// table declares: the forensic analyzer's candidate set (§4.6). A free
// entry is either the zero Value (classic tables) or carries the
// xref-stream free sentinel objptr{0, 65535} (readXrefStreamData), and
// is excluded either way per §8's "free-entry for a previously defined
// id does not appear in forensic output" invariant.
func candidateIDs(table []xref) []ObjectRef {
	var ids []ObjectRef
	for i, x := range table {
		if i == 0 || x.ptr == (objptr{}) || x.ptr.gen == 65535 {
			continue
		}
		ids = append(ids, ObjectRef{ID: x.ptr.id, Gen: x.ptr.gen})
	}
	return ids
}

// ResolveRef resolves an explicit (id, generation) pair through the
// reader's composed object graph — the latest definition shadows earlier
// ones the same way Value navigation does.
func (r *Reader) ResolveRef(ref ObjectRef) Value {
	return r.resolve(objptr{}, objptr{id: ref.ID, gen: ref.Gen})
}

// Info returns the document's /Info dictionary (author, dates, …), or
// the null Value if the trailer declares none.
func (r *Reader) Info() Value {
	return r.resolve(objptr{}, r.trailer["Info"])
}

// ChangedObjects returns every object whose generation is greater than
// zero: the fallback candidate set (§4.6) used when a document carries
// no %%EOF-delineated incremental-update revisions.
func (r *Reader) ChangedObjects() []ObjectRef {
	var ids []ObjectRef
	for i, x := range r.xref {
		if i == 0 || x.ptr == (objptr{}) {
			continue
		}
		if x.ptr.gen > 0 {
			ids = append(ids, ObjectRef{ID: x.ptr.id, Gen: x.ptr.gen})
		}
	}
	return ids
}

// ObjPtr returns the indirect object identity a Value was resolved
// through. The forensic analyzer (C6) matches this against a revision's
// candidate id set to classify where a changed object lives.
func (v Value) ObjPtr() ObjectRef {
	return ObjectRef{ID: v.ptr.id, Gen: v.ptr.gen}
}
