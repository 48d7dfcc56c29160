// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package xtract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRevisions_SingleRevision(t *testing.T) {
	ra, size, done := openReaderAt(t, "pdf_test.pdf")
	defer done()

	r, err := NewReader(ra, size)
	require.NoError(t, err)

	revs, err := r.Revisions()
	require.NoError(t, err)
	require.Len(t, revs, 1)
	assert.NotEmpty(t, revs[0].ObjectIDs)
}

func TestRevisions_IncrementalUpdate(t *testing.T) {
	ra, size, done := openReaderAt(t, "prev_tag.pdf")
	defer done()

	r, err := NewReader(ra, size)
	require.NoError(t, err)

	revs, err := r.Revisions()
	require.NoError(t, err)
	require.Len(t, revs, 2)

	assert.Less(t, revs[0].EOFOffset, revs[1].EOFOffset)
	assert.Less(t, revs[0].StartXref, revs[1].StartXref)

	last := revs[len(revs)-1]
	var sawObj3 bool
	for _, id := range last.ObjectIDs {
		if id.ID == 3 {
			sawObj3 = true
		}
	}
	assert.True(t, sawObj3, "last revision should declare the revised object 3")
}

func TestChangedObjects_NoGenerationBump(t *testing.T) {
	ra, size, done := openReaderAt(t, "pdf_test.pdf")
	defer done()

	r, err := NewReader(ra, size)
	require.NoError(t, err)

	assert.Empty(t, r.ChangedObjects())
}

func TestResolveRef(t *testing.T) {
	ra, size, done := openReaderAt(t, "pdf_test.pdf")
	defer done()

	r, err := NewReader(ra, size)
	require.NoError(t, err)

	v := r.ResolveRef(ObjectRef{ID: 1, Gen: 0})
	assert.Equal(t, Dict, v.Kind())
	assert.Equal(t, "Catalog", v.Key("Type").Name())
}

func TestCandidateIDs_ExcludesFreeEntries(t *testing.T) {
	table := []xref{
		{},                                            // index 0, always skipped
		{ptr: objptr{id: 1, gen: 0}, offset: 10},       // in-use, classic or stream
		{ptr: objptr{}},                                // classic-table free entry (zero value)
		{ptr: objptr{id: 0, gen: 65535}},                // xref-stream free sentinel (readXrefStreamData)
		{ptr: objptr{id: 4, gen: 0}, offset: 40},        // in-use
	}

	ids := candidateIDs(table)
	require.Len(t, ids, 2)
	assert.Equal(t, uint32(1), ids[0].ID)
	assert.Equal(t, uint32(4), ids[1].ID)
}

func TestValue_ObjPtr(t *testing.T) {
	ra, size, done := openReaderAt(t, "pdf_test.pdf")
	defer done()

	r, err := NewReader(ra, size)
	require.NoError(t, err)

	v := r.Trailer().Key("Root")
	assert.Equal(t, uint32(1), v.ObjPtr().ID)
}
