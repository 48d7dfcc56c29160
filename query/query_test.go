// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package query

import (
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sindlinger/fpdf-portable-sub002/store"
)

func TestParseWordExpr(t *testing.T) {
	include, exclude := ParseWordExpr("foo bar|baz !qux ~acento~")
	require.Len(t, include, 3)
	assert.Equal(t, []string{"foo"}, include[0].Alternatives)
	assert.False(t, include[0].Fuzzy)
	assert.Equal(t, []string{"bar", "baz"}, include[1].Alternatives)
	assert.Equal(t, []string{"acento"}, include[2].Alternatives)
	assert.True(t, include[2].Fuzzy)

	require.Len(t, exclude, 1)
	assert.Equal(t, []string{"qux"}, exclude[0].Alternatives)
}

func TestPredicate_IsPlainPositive(t *testing.T) {
	plain := Predicate{Include: []TermGroup{{Alternatives: []string{"invoice"}}}}
	assert.True(t, plain.IsPlainPositive())

	assert.False(t, Predicate{}.IsPlainPositive())

	fuzzy := Predicate{Include: []TermGroup{{Alternatives: []string{"invoice"}, Fuzzy: true}}}
	assert.False(t, fuzzy.IsPlainPositive())

	withExclude := Predicate{
		Include: []TermGroup{{Alternatives: []string{"invoice"}}},
		Exclude: []TermGroup{{Alternatives: []string{"draft"}}},
	}
	assert.False(t, withExclude.IsPlainPositive())

	withMoney := Predicate{
		Include:      []TermGroup{{Alternatives: []string{"invoice"}}},
		RequireMoney: true,
	}
	assert.False(t, withMoney.IsPlainPositive())
}

func TestPredicate_FTSQuery(t *testing.T) {
	p := Predicate{Include: []TermGroup{
		{Alternatives: []string{"invoice"}},
		{Alternatives: []string{"paid", "settled"}},
	}}
	assert.Equal(t, `"invoice" AND ("paid" OR "settled")`, p.FTSQuery())
}

func TestEvaluate_IncludeExclude(t *testing.T) {
	page := store.Page{Text: "this invoice is overdue"}

	pred := Predicate{Include: []TermGroup{{Alternatives: []string{"invoice"}}}}
	assert.True(t, Evaluate(pred, page))

	pred = Predicate{Include: []TermGroup{{Alternatives: []string{"receipt"}}}}
	assert.False(t, Evaluate(pred, page))

	pred = Predicate{Exclude: []TermGroup{{Alternatives: []string{"overdue"}}}}
	assert.False(t, Evaluate(pred, page))
}

func TestEvaluate_Fuzzy(t *testing.T) {
	page := store.Page{Text: "documento com acentuação"}
	pred := Predicate{Include: []TermGroup{{Alternatives: []string{"acentuacao"}, Fuzzy: true}}}
	assert.True(t, Evaluate(pred, page))

	pred = Predicate{Include: []TermGroup{{Alternatives: []string{"acentuacao"}}}}
	assert.False(t, Evaluate(pred, page))
}

func TestEvaluate_HeaderFooterScope(t *testing.T) {
	page := store.Page{Text: "body text", Header: "Company Letterhead", Footer: "page 1 of 2"}

	pred := Predicate{HeaderOnly: true, Include: []TermGroup{{Alternatives: []string{"letterhead"}}}}
	assert.True(t, Evaluate(pred, page))

	pred = Predicate{FooterOnly: true, Include: []TermGroup{{Alternatives: []string{"letterhead"}}}}
	assert.False(t, Evaluate(pred, page))
}

func TestEvaluate_MoneyCPF(t *testing.T) {
	page := store.Page{Text: "x", HasMoney: true}
	assert.True(t, Evaluate(Predicate{RequireMoney: true}, page))
	assert.False(t, Evaluate(Predicate{RequireCPF: true}, page))
}

func TestEvaluate_FontOrientation(t *testing.T) {
	page := store.Page{Text: "x", Fonts: []string{"Helvetica-Bold"}, Orientation: "landscape"}
	assert.True(t, Evaluate(Predicate{Font: "helvetica"}, page))
	assert.False(t, Evaluate(Predicate{Font: "times"}, page))
	assert.True(t, Evaluate(Predicate{Orientation: "Landscape"}, page))
	assert.False(t, Evaluate(Predicate{Orientation: "portrait"}, page))
}

func TestEvaluate_Regex(t *testing.T) {
	page := store.Page{Text: "order #12345 confirmed"}
	pred := Predicate{Regex: regexp.MustCompile(`#\d+`)}
	assert.True(t, Evaluate(pred, page))

	pred = Predicate{Regex: regexp.MustCompile(`#abc`)}
	assert.False(t, Evaluate(pred, page))
}

func TestEvaluate_WordCount(t *testing.T) {
	page := store.Page{Text: "one two three four"}
	assert.True(t, Evaluate(Predicate{MinWords: 2, MaxWords: 10}, page))
	assert.False(t, Evaluate(Predicate{MinWords: 10}, page))
	assert.False(t, Evaluate(Predicate{MaxWords: 2}, page))
}

func TestEvaluate_SignatureBand(t *testing.T) {
	page := store.Page{Text: "intro paragraph body text more body signed by Jane Doe"}
	pred := Predicate{Signature: []TermGroup{{Alternatives: []string{"jane"}}}}
	assert.True(t, Evaluate(pred, page))

	pred = Predicate{Signature: []TermGroup{{Alternatives: []string{"intro"}}}}
	assert.False(t, Evaluate(pred, page))
}

func openTestEngine(t *testing.T) *Engine {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return New(s)
}

func TestEngine_Run_PlainPositiveUsesFTS(t *testing.T) {
	e := openTestEngine(t)
	require.NoError(t, e.st.Upsert(store.Analysis{
		Name: "doc-a",
		Pages: []store.Page{
			{Number: 1, Text: "invoice paid in full"},
			{Number: 2, Text: "unrelated page"},
		},
	}))

	matches, err := e.Run(nil, Predicate{Include: []TermGroup{{Alternatives: []string{"invoice"}}}}, 0)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "doc-a", matches[0].Name)
	assert.Equal(t, 1, matches[0].PageNumber)
}

func TestEngine_Run_StructuralPredicateUsesSlowPath(t *testing.T) {
	e := openTestEngine(t)
	require.NoError(t, e.st.Upsert(store.Analysis{
		Name: "doc-b",
		Pages: []store.Page{
			{Number: 1, Text: "invoice total", HasMoney: true},
			{Number: 2, Text: "invoice notes", HasMoney: false},
		},
	}))

	pred := Predicate{
		Include:      []TermGroup{{Alternatives: []string{"invoice"}}},
		RequireMoney: true,
	}
	matches, err := e.Run(nil, pred, 0)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, 1, matches[0].PageNumber)
}

func TestEngine_Run_LimitStopsEarly(t *testing.T) {
	e := openTestEngine(t)
	require.NoError(t, e.st.Upsert(store.Analysis{
		Name: "doc-c",
		Pages: []store.Page{
			{Number: 1, Text: "alpha"},
			{Number: 2, Text: "alpha"},
			{Number: 3, Text: "alpha"},
		},
	}))

	pred := Predicate{Include: []TermGroup{{Alternatives: []string{"alpha"}}}, MinWords: 1}
	matches, err := e.Run(nil, pred, 2)
	require.NoError(t, err)
	assert.Len(t, matches, 2)
}
