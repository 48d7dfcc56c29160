// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package xtract

// Byte-to-Unicode tables for the three encodings a simple font may name
// directly (WinAnsiEncoding, MacRomanEncoding) or fall back to when no
// /Encoding or /ToUnicode is present (PDFDocEncoding, used for text
// strings such as /Info and annotation /Contents per ISO 32000-1 Appendix
// D). Also: the UTF-16BE / PDFDocEncoding string-kind detection used by
// Value.Text(), and the glyph-name-to-rune table used by dictEncoder for
// fonts with a /Differences array.
//
// These are the standard tables defined by ISO 32000-1 Appendix D, not
// teacher source (sassoftware-pdf-xtract's own equivalent file was not
// present in the retrieved pack); see DESIGN.md.

import (
	"unicode"
	"unicode/utf16"
)

var winAnsiEncoding [256]rune
var macRomanEncoding [256]rune
var pdfDocEncoding [256]rune

func init() {
	for i := 0; i < 256; i++ {
		winAnsiEncoding[i] = rune(i)
		macRomanEncoding[i] = rune(i)
		pdfDocEncoding[i] = rune(i)
	}

	// Control range (0x00-0x1F) is non-printing in all three encodings
	// except where a specific glyph is named; leave as control codepoints
	// (consumers rarely show these) aside from the named exceptions below.

	winAnsi1252 := map[int]rune{
		0x80: 0x20AC, 0x81: unicode.ReplacementChar, 0x82: 0x201A, 0x83: 0x0192,
		0x84: 0x201E, 0x85: 0x2026, 0x86: 0x2020, 0x87: 0x2021,
		0x88: 0x02C6, 0x89: 0x2030, 0x8A: 0x0160, 0x8B: 0x2039,
		0x8C: 0x0152, 0x8D: unicode.ReplacementChar, 0x8E: 0x017D, 0x8F: unicode.ReplacementChar,
		0x90: unicode.ReplacementChar, 0x91: 0x2018, 0x92: 0x2019, 0x93: 0x201C,
		0x94: 0x201D, 0x95: 0x2022, 0x96: 0x2013, 0x97: 0x2014,
		0x98: 0x02DC, 0x99: 0x2122, 0x9A: 0x0161, 0x9B: 0x203A,
		0x9C: 0x0153, 0x9D: unicode.ReplacementChar, 0x9E: 0x017E, 0x9F: 0x0178,
	}
	for b, r := range winAnsi1252 {
		winAnsiEncoding[b] = r
	}
	// 0xA0-0xFF: Latin-1 supplement, identical codepoint to byte value.

	macRomanHigh := []rune{
		0xC4, 0xC5, 0xC7, 0xC9, 0xD1, 0xD6, 0xDC, 0xE1, // 80-87
		0xE0, 0xE2, 0xE4, 0xE3, 0xE5, 0xE7, 0xE9, 0xE8, // 88-8F
		0xEA, 0xEB, 0xED, 0xEC, 0xEE, 0xEF, 0xF1, 0xF3, // 90-97
		0xF2, 0xF4, 0xF6, 0xF5, 0xFA, 0xF9, 0xFB, 0xFC, // 98-9F
		0x2020, 0xB0, 0xA2, 0xA3, 0xA7, 0x2022, 0xB6, 0xDF, // A0-A7
		0xAE, 0xA9, 0x2122, 0xB4, 0xA8, 0x2260, 0xC6, 0xD8, // A8-AF
		0x221E, 0xB1, 0x2264, 0x2265, 0xA5, 0xB5, 0x2202, 0x2211, // B0-B7
		0x220F, 0x3C0, 0x222B, 0xAA, 0xBA, 0x3A9, 0xE6, 0xF8, // B8-BF
		0xBF, 0xA1, 0xAC, 0x221A, 0x192, 0x2248, 0x2206, 0xAB, // C0-C7
		0xBB, 0x2026, 0xA0, 0xC0, 0xC3, 0xD5, 0x152, 0x153, // C8-CF
		0x2013, 0x2014, 0x201C, 0x201D, 0x2018, 0x2019, 0xF7, 0x25CA, // D0-D7
		0xFF, 0x178, 0x2044, 0x20AC, 0x2039, 0x203A, 0xFB01, 0xFB02, // D8-DF
		0x2021, 0xB7, 0x201A, 0x201E, 0x2030, 0xC2, 0xCA, 0xC1, // E0-E7
		0xCB, 0xC8, 0xCD, 0xCE, 0xCF, 0xCC, 0xD3, 0xD4, // E8-EF
		unicode.ReplacementChar, 0xD2, 0xDA, 0xDB, 0xD9, 0x131, 0x2C6, 0x2DC, // F0-F7
		0xAF, 0x2D8, 0x2D9, 0x2DA, 0xB8, 0x2DD, 0x2DB, 0x2C7, // F8-FF
	}
	for i, r := range macRomanHigh {
		macRomanEncoding[0x80+i] = r
	}

	pdfDocAccents := map[int]rune{
		0x18: 0x02D8, 0x19: 0x02C7, 0x1A: 0x02C6, 0x1B: 0x02D9,
		0x1C: 0x02DD, 0x1D: 0x02DB, 0x1E: 0x02DA, 0x1F: 0x02DC,
	}
	for b, r := range pdfDocAccents {
		pdfDocEncoding[b] = r
	}
	pdfDocHigh := map[int]rune{
		0x80: 0x2022, 0x81: 0x2020, 0x82: 0x2021, 0x83: 0x2026,
		0x84: 0x2014, 0x85: 0x2013, 0x86: 0x0192, 0x87: 0x2044,
		0x88: 0x2039, 0x89: 0x203A, 0x8A: 0x2212, 0x8B: 0x2030,
		0x8C: 0x201E, 0x8D: 0x201C, 0x8E: 0x201D, 0x8F: 0x2018,
		0x90: 0x2019, 0x91: 0x201A, 0x92: 0x2122, 0x93: 0xFB01,
		0x94: 0xFB02, 0x95: 0x0141, 0x96: 0x0152, 0x97: 0x0160,
		0x98: 0x0178, 0x99: 0x017D, 0x9A: 0x0131, 0x9B: 0x0142,
		0x9C: 0x0153, 0x9D: 0x0161, 0x9E: 0x017E, 0x9F: unicode.ReplacementChar,
		0xA0: 0x20AC,
	}
	for b, r := range pdfDocHigh {
		pdfDocEncoding[b] = r
	}
	// 0xA1-0xFF: Latin-1 supplement, same as WinAnsiEncoding there.
}

// isUTF16 reports whether s begins with the UTF-16BE byte-order mark and
// has an even length, per ISO 32000-1 §7.9.2.2's "text string" rule.
func isUTF16(s string) bool {
	return len(s) >= 2 && len(s)%2 == 0 && s[0] == 0xFE && s[1] == 0xFF
}

// utf16Decode decodes s as big-endian UTF-16 (without a BOM) to UTF-8.
func utf16Decode(s string) string {
	if len(s)%2 != 0 {
		return s
	}
	units := make([]uint16, len(s)/2)
	for i := range units {
		units[i] = uint16(s[2*i])<<8 | uint16(s[2*i+1])
	}
	return string(utf16.Decode(units))
}

// isPDFDocEncoded reports whether s looks like a PDFDocEncoding text
// string: not a UTF-16 BOM string, and every byte maps to a defined
// (non-replacement) rune in pdfDocEncoding.
func isPDFDocEncoded(s string) bool {
	if isUTF16(s) {
		return false
	}
	for i := 0; i < len(s); i++ {
		if pdfDocEncoding[s[i]] == unicode.ReplacementChar {
			return false
		}
	}
	return true
}

// pdfDocDecode decodes s byte-by-byte through the PDFDocEncoding table.
func pdfDocDecode(s string) string {
	r := make([]rune, 0, len(s))
	for i := 0; i < len(s); i++ {
		r = append(r, pdfDocEncoding[s[i]])
	}
	return string(r)
}

// DecodeUTF8OrPreserve returns s decoded as UTF-8 when s is valid UTF-8;
// otherwise each byte is preserved as its own rune, so no byte is ever
// silently dropped when a CMap has no mapping for a code.
func DecodeUTF8OrPreserve(s string) []rune {
	if isASCIIOrValidUTF8(s) {
		return []rune(s)
	}
	out := make([]rune, 0, len(s))
	for i := 0; i < len(s); i++ {
		out = append(out, rune(s[i]))
	}
	return out
}

func isASCIIOrValidUTF8(s string) bool {
	for _, r := range s {
		if r == unicode.ReplacementChar {
			return false
		}
	}
	return true
}

// nameToRune maps Adobe glyph names (as used in a font's /Differences
// array) to their Unicode codepoint. Only the glyphs that occur in the
// standard/WinAnsi/MacRoman/symbol glyph lists and in common Differences
// overlays are listed; an unknown name maps to 0, which callers treat as
// "no mapping" and fall back to the raw byte.
var nameToRune = map[string]rune{
	"space": ' ', "exclam": '!', "quotedbl": '"', "numbersign": '#',
	"dollar": '$', "percent": '%', "ampersand": '&', "quotesingle": '\'',
	"parenleft": '(', "parenright": ')', "asterisk": '*', "plus": '+',
	"comma": ',', "hyphen": '-', "period": '.', "slash": '/',
	"zero": '0', "one": '1', "two": '2', "three": '3', "four": '4',
	"five": '5', "six": '6', "seven": '7', "eight": '8', "nine": '9',
	"colon": ':', "semicolon": ';', "less": '<', "equal": '=', "greater": '>',
	"question": '?', "at": '@',
	"bracketleft": '[', "backslash": '\\', "bracketright": ']',
	"asciicircum": '^', "underscore": '_', "grave": '`',
	"braceleft": '{', "bar": '|', "braceright": '}', "asciitilde": '~',
	"bullet": 0x2022, "dagger": 0x2020, "daggerdbl": 0x2021,
	"ellipsis": 0x2026, "emdash": 0x2014, "endash": 0x2013,
	"florin": 0x0192, "fraction": 0x2044,
	"guilsinglleft": 0x2039, "guilsinglright": 0x203A,
	"minus": 0x2212, "perthousand": 0x2030,
	"quotedblbase": 0x201E, "quotedblleft": 0x201C, "quotedblright": 0x201D,
	"quoteleft": 0x2018, "quoteright": 0x2019, "quotesinglbase": 0x201A,
	"trademark": 0x2122, "fi": 0xFB01, "fl": 0xFB02,
	"Lslash": 0x0141, "lslash": 0x0142, "OE": 0x0152, "oe": 0x0153,
	"Scaron": 0x0160, "scaron": 0x0161, "Ydieresis": 0x0178,
	"Zcaron": 0x017D, "zcaron": 0x017E, "dotlessi": 0x0131,
	"Euro": 0x20AC, "circumflex": 0x02C6, "tilde": 0x02DC,
	"breve": 0x02D8, "caron": 0x02C7, "dotaccent": 0x02D9,
	"hungarumlaut": 0x02DD, "ogonek": 0x02DB, "ring": 0x02DA,
	"macron": 0x00AF, "grave.alt": 0x0060,
}

func init() {
	for r := rune('A'); r <= 'Z'; r++ {
		nameToRune[string(r)] = r
	}
	for r := rune('a'); r <= 'z'; r++ {
		nameToRune[string(r)] = r
	}
}
