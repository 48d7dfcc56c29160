// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

// Package query is the filter/query engine (C8): boolean term predicates
// (AND/OR/exclusion/fuzzy) and structural predicates (money, CPF, font,
// orientation, regex, word count, page range, signature band) evaluated
// over the cache store's pages, with an FTS fast path for plain queries.
package query

import (
	"context"
	"regexp"
	"runtime"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/sync/semaphore"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/sindlinger/fpdf-portable-sub002/store"
)

// signatureBandFraction is the trailing slice of a page's words counted
// as the "signature region" (§4.8).
const signatureBandFraction = 0.30

// TermGroup is one AND-position of a term expression: a set of OR'd
// alternatives, optionally fuzzy (accent- and case-folded, whitespace
// ignored).
type TermGroup struct {
	Alternatives []string
	Fuzzy        bool
}

// Predicate is a fully parsed C8 query expression.
type Predicate struct {
	Include   []TermGroup // AND-ed across groups; each group is OR-ed internally
	Exclude   []TermGroup
	Signature []TermGroup // like Include, but matched only against the signature band

	HeaderOnly bool
	FooterOnly bool

	Regex *regexp.Regexp

	RequireMoney bool
	RequireCPF   bool

	Font        string
	Orientation string // "portrait", "landscape", or "" for no filter

	MinWords int // 0 means unset
	MaxWords int // 0 means unset
	MinPages int // 0 means unset
	MaxPages int // 0 means unset

	PageNumbers []int // nil means every page
}

// ParseWordExpr parses one term expression per §4.8: space-separated
// tokens AND together; "|" within a token ORs alternatives; a leading
// "!" negates the token (it is collected as an exclusion instead); a
// token wrapped in "~...~" is matched fuzzily.
func ParseWordExpr(expr string) (include, exclude []TermGroup) {
	for _, tok := range strings.Fields(expr) {
		negate := strings.HasPrefix(tok, "!")
		if negate {
			tok = tok[1:]
		}
		fuzzy := false
		if len(tok) >= 2 && strings.HasPrefix(tok, "~") && strings.HasSuffix(tok, "~") {
			fuzzy = true
			tok = strings.Trim(tok, "~")
		}
		if tok == "" {
			continue
		}
		group := TermGroup{Alternatives: strings.Split(tok, "|"), Fuzzy: fuzzy}
		if negate {
			exclude = append(exclude, group)
		} else {
			include = append(include, group)
		}
	}
	return include, exclude
}

// IsPlainPositive reports whether p can be answered entirely by the FTS
// fast path (§4.8 evaluation strategy step 1): only plain, non-fuzzy,
// positive term atoms against the full page text, with no other
// structural restriction.
func (p Predicate) IsPlainPositive() bool {
	if len(p.Include) == 0 {
		return false
	}
	if len(p.Exclude) > 0 || len(p.Signature) > 0 {
		return false
	}
	if p.HeaderOnly || p.FooterOnly {
		return false
	}
	if p.Regex != nil || p.RequireMoney || p.RequireCPF || p.Font != "" || p.Orientation != "" {
		return false
	}
	if p.MinWords > 0 || p.MaxWords > 0 || p.MinPages > 0 || p.MaxPages > 0 {
		return false
	}
	if p.PageNumbers != nil {
		return false
	}
	for _, g := range p.Include {
		if g.Fuzzy {
			return false
		}
	}
	return true
}

// FTSQuery renders p's include groups as an FTS5 MATCH query string. Only
// meaningful when IsPlainPositive is true.
func (p Predicate) FTSQuery() string {
	var parts []string
	for _, g := range p.Include {
		if len(g.Alternatives) == 1 {
			parts = append(parts, quoteFTS(g.Alternatives[0]))
		} else {
			var alts []string
			for _, a := range g.Alternatives {
				alts = append(alts, quoteFTS(a))
			}
			parts = append(parts, "("+strings.Join(alts, " OR ")+")")
		}
	}
	return strings.Join(parts, " AND ")
}

func quoteFTS(term string) string {
	return `"` + strings.ReplaceAll(term, `"`, `""`) + `"`
}

// Match matches one predicate evaluation to a cached page.
type Match struct {
	Name       string
	PageNumber int
}

// Engine runs predicates against a cache store.
type Engine struct {
	st  *store.Store
	sem *semaphore.Weighted
}

// New wraps an opened store for querying. Slow-path pre-loads (§5: "pre-
// loading caches for a range query likewise runs in parallel") are gated
// by a semaphore sized to the host's hardware concurrency
// (runtime.NumCPU).
func New(st *store.Store) *Engine {
	return &Engine{st: st, sem: semaphore.NewWeighted(int64(runtime.NumCPU()))}
}

// Run evaluates pred over the analyses named in names (every cache if
// names is empty), returning matches in (cache, page) order, capped at
// limit rows (0 means unbounded).
func (e *Engine) Run(names []string, pred Predicate, limit int) ([]Match, error) {
	if len(names) == 0 {
		all, err := e.st.ListNames()
		if err != nil {
			return nil, err
		}
		names = all
	}

	if pred.IsPlainPositive() {
		refs, err := e.st.MatchFTS(names, pred.FTSQuery(), limit)
		if err != nil {
			return nil, err
		}
		out := make([]Match, len(refs))
		for i, r := range refs {
			out[i] = Match{Name: r.Name, PageNumber: r.PageNumber}
		}
		return out, nil
	}

	loaded := e.preload(names)

	var out []Match
	for i, name := range names {
		a := loaded[i]
		if a == nil {
			continue
		}
		if pred.MinPages > 0 && len(a.Pages) < pred.MinPages {
			continue
		}
		if pred.MaxPages > 0 && len(a.Pages) > pred.MaxPages {
			continue
		}
		for _, p := range a.Pages {
			if pred.PageNumbers != nil && !containsInt(pred.PageNumbers, p.Number) {
				continue
			}
			if !Evaluate(pred, p) {
				continue
			}
			out = append(out, Match{Name: name, PageNumber: p.Number})
			if limit > 0 && len(out) >= limit {
				return out, nil
			}
		}
	}
	return out, nil
}

// preload loads every named analysis concurrently, each task gated by
// e.sem, and returns them index-aligned with names (nil where the load
// failed). Callers still consume results in names' order, so completion
// order never affects the final (cache, page) ordering — matching §5's
// "engine buffers per-task output and emits it in canonical order" rule.
func (e *Engine) preload(names []string) []*store.Analysis {
	loaded := make([]*store.Analysis, len(names))
	ctx := context.Background()
	var wg sync.WaitGroup
	for i, name := range names {
		if err := e.sem.Acquire(ctx, 1); err != nil {
			continue
		}
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			defer e.sem.Release(1)
			a, err := e.st.Load(name)
			if err != nil {
				return
			}
			loaded[i] = &a
		}(i, name)
	}
	wg.Wait()
	return loaded
}

// Evaluate reports whether page satisfies every atom of pred.
func Evaluate(pred Predicate, page store.Page) bool {
	scope := page.Text
	if pred.HeaderOnly {
		scope = page.Header
	} else if pred.FooterOnly {
		scope = page.Footer
	}

	for _, g := range pred.Include {
		if !matchGroup(scope, g) {
			return false
		}
	}
	for _, g := range pred.Exclude {
		if matchGroup(scope, g) {
			return false
		}
	}
	if len(pred.Signature) > 0 {
		band := signatureBand(page.Text)
		for _, g := range pred.Signature {
			if !matchGroup(band, g) {
				return false
			}
		}
	}

	if pred.RequireMoney && !page.HasMoney {
		return false
	}
	if pred.RequireCPF && !page.HasCPF {
		return false
	}
	if pred.Font != "" && !fontMatch(page.Fonts, pred.Font) {
		return false
	}
	if pred.Orientation != "" && !strings.EqualFold(pred.Orientation, page.Orientation) {
		return false
	}
	if pred.Regex != nil && !pred.Regex.MatchString(page.Text) {
		return false
	}

	wc := len(strings.Fields(page.Text))
	if pred.MinWords > 0 && wc < pred.MinWords {
		return false
	}
	if pred.MaxWords > 0 && wc > pred.MaxWords {
		return false
	}

	return true
}

func containsInt(xs []int, n int) bool {
	for _, x := range xs {
		if x == n {
			return true
		}
	}
	return false
}

func fontMatch(fonts []string, term string) bool {
	for _, f := range fonts {
		if strings.Contains(strings.ToLower(f), strings.ToLower(term)) {
			return true
		}
	}
	return false
}

// signatureBand returns the trailing signatureBandFraction of text's
// words, joined back with spaces: the bottom of the page, where a
// signature block typically sits.
func signatureBand(text string) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	start := len(words) - int(float64(len(words))*signatureBandFraction)
	if start < 0 {
		start = 0
	}
	return strings.Join(words[start:], " ")
}

func matchGroup(haystack string, g TermGroup) bool {
	for _, alt := range g.Alternatives {
		if matchTerm(haystack, alt, g.Fuzzy) {
			return true
		}
	}
	return false
}

func matchTerm(haystack, term string, fuzzy bool) bool {
	if !fuzzy {
		return strings.Contains(strings.ToLower(haystack), strings.ToLower(term))
	}
	return strings.Contains(foldFuzzy(haystack), foldFuzzy(term))
}

// foldFuzzy normalizes text for fuzzy matching: accents stripped, folded
// to lower case, and internal whitespace removed so spacing differences
// between haystack and term never prevent a match.
func foldFuzzy(s string) string {
	folded, _, err := transform.String(stripAccentsTransformer, s)
	if err != nil {
		folded = s
	}
	folded = strings.ToLower(folded)
	return stripWhitespace(folded)
}

var stripAccentsTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func stripWhitespace(s string) string {
	var b strings.Builder
	for _, r := range s {
		if !unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
