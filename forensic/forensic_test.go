// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package forensic

import (
	"path/filepath"
	"testing"

	xtract "github.com/sindlinger/fpdf-portable-sub002"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestdata(t *testing.T, name string) *xtract.Reader {
	t.Helper()
	f, r, err := xtract.Open(filepath.Join("..", "testdata", name))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return r
}

func TestAnalyze_SingleSessionDocument(t *testing.T) {
	r := openTestdata(t, "pdf_test.pdf")

	rep, err := Analyze(r)
	require.NoError(t, err)

	assert.True(t, rep.SingleSession)
	assert.Empty(t, rep.Fragments)
}

func TestAnalyze_IncrementalUpdateRevisesPageObject(t *testing.T) {
	r := openTestdata(t, "prev_tag.pdf")

	rep, err := Analyze(r)
	require.NoError(t, err)
	require.NotEmpty(t, rep.Fragments)
	assert.False(t, rep.SingleSession)

	var sawPage, sawContent bool
	for _, f := range rep.Fragments {
		switch {
		case f.ObjectID == 3 && f.Kind == KindPage:
			sawPage = true
			assert.Equal(t, 1, f.PageNumber)
			assert.Contains(t, f.Text, "Hello World")
		case f.ObjectID == 4 && f.Kind == KindContentStream:
			sawContent = true
			assert.Equal(t, 1, f.PageNumber)
			assert.Contains(t, f.Text, "Hello World")
		}
	}
	assert.True(t, sawPage, "expected a Page fragment for the revised page object")
	assert.True(t, sawContent, "expected a ContentStream fragment for the page's content stream")

	// Fragments are sorted by ascending page number, then ascending object id.
	for i := 1; i < len(rep.Fragments); i++ {
		prev, cur := rep.Fragments[i-1], rep.Fragments[i]
		if prev.PageNumber != cur.PageNumber {
			assert.Less(t, prev.PageNumber, cur.PageNumber)
		} else {
			assert.Less(t, prev.ObjectID, cur.ObjectID)
		}
	}
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "content_stream", KindContentStream.String())
	assert.Equal(t, "annotation", KindAnnotation.String())
	assert.Equal(t, "page", KindPage.String())
	assert.Equal(t, "resource", KindResource.String())
	assert.Equal(t, "unknown", Kind(99).String())
}
