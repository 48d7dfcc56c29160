// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package xtract

// Lexical scanning of PDF tokens from a raw byte stream: whitespace and
// comment skipping, numbers, names, literal and hex strings, and the
// handful of structural delimiters (<<, >>, [, ]). Grounded on the same
// rsc/pdf-lineage tokenizer present (in heavier, SIMD-augmented form) in
// the pack's Geek0x0-pdf/lex.go; this version keeps the plain, single-path
// algorithm to match the rest of this package's style.

import (
	"bufio"
	"io"
	"strconv"

	"github.com/sindlinger/fpdf-portable-sub002/logger"
)

// A token is any of: int64, float64, bool, name, keyword, or string (for
// literal/hex strings already unescaped to raw bytes).
type token interface{}

// name is a PDF name token, such as /Type, without the leading slash.
type name string

// keyword is a bare PDF keyword or structural delimiter ("obj", "R",
// "<<", ">>", "[", "]", "stream", operator names in content streams, ...).
type keyword string

// buffer tokenizes a PDF byte stream read through an io.Reader (usually an
// io.SectionReader anchored at some absolute file offset).
type buffer struct {
	r      *bufio.Reader
	offset int64 // absolute file offset of the next unread byte
	pos    int64 // bytes consumed since buffer creation (offset - start)
	start  int64

	unread []token

	allowEOF    bool
	allowObjptr bool
	allowStream bool
	objptr      objptr
	key         []byte
	useAES      bool
}

func newBuffer(r io.Reader, offset int64) *buffer {
	return &buffer{
		r:           bufio.NewReaderSize(r, 4096),
		offset:      offset,
		start:       offset,
		allowObjptr: true,
		allowStream: true,
	}
}

// seekForward discards bytes until the buffer's logical offset reaches off.
// Used to jump forward within the same section (e.g. ObjStm payloads).
func (b *buffer) seekForward(off int64) {
	for b.offset < off {
		if _, err := b.readByteErr(); err != nil {
			return
		}
	}
}

// readOffset reports the buffer's current absolute offset.
func (b *buffer) readOffset() int64 {
	return b.offset
}

func (b *buffer) readByteErr() (byte, error) {
	c, err := b.r.ReadByte()
	if err != nil {
		return 0, err
	}
	b.offset++
	b.pos++
	return c, nil
}

func (b *buffer) readByte() byte {
	c, err := b.readByteErr()
	if err != nil {
		return 0
	}
	return c
}

func (b *buffer) unreadByte() {
	if err := b.r.UnreadByte(); err != nil {
		return
	}
	b.offset--
	b.pos--
}

func (b *buffer) unreadToken(t token) {
	b.unread = append(b.unread, t)
}

func isSpace(c byte) bool {
	switch c {
	case '\x00', '\t', '\n', '\f', '\r', ' ':
		return true
	}
	return false
}

func isDelim(c byte) bool {
	switch c {
	case '<', '>', '(', ')', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func (b *buffer) skipWhitespaceAndComments() {
	for {
		c, err := b.readByteErr()
		if err != nil {
			return
		}
		if isSpace(c) {
			continue
		}
		if c == '%' {
			for {
				c, err := b.readByteErr()
				if err != nil || c == '\n' || c == '\r' {
					break
				}
			}
			continue
		}
		b.unreadByte()
		return
	}
}

// readToken returns the next lexical token, or io.EOF when the stream is
// exhausted.
func (b *buffer) readToken() token {
	if n := len(b.unread); n > 0 {
		t := b.unread[n-1]
		b.unread = b.unread[:n-1]
		return t
	}

	b.skipWhitespaceAndComments()

	c, err := b.readByteErr()
	if err != nil {
		return io.EOF
	}

	switch {
	case c == '<':
		c2, err2 := b.readByteErr()
		if err2 == nil && c2 == '<' {
			return keyword("<<")
		}
		if err2 == nil {
			b.unreadByte()
		}
		return b.readHexString()

	case c == '>':
		c2, err2 := b.readByteErr()
		if err2 == nil && c2 == '>' {
			return keyword(">>")
		}
		if err2 == nil {
			b.unreadByte()
		}
		return keyword(">")

	case c == '(':
		return b.readLiteralString()

	case c == '[':
		return keyword("[")
	case c == ']':
		return keyword("]")
	case c == '{':
		return keyword("{")
	case c == '}':
		return keyword("}")

	case c == '/':
		return b.readName()

	default:
		b.unreadByte()
		return b.readKeyword()
	}
}

func (b *buffer) readHexString() token {
	var buf []byte
	var hi byte
	haveHi := false
	for {
		c, err := b.readByteErr()
		if err != nil {
			break
		}
		if c == '>' {
			break
		}
		if isSpace(c) {
			continue
		}
		var v byte
		switch {
		case c >= '0' && c <= '9':
			v = c - '0'
		case c >= 'a' && c <= 'f':
			v = c - 'a' + 10
		case c >= 'A' && c <= 'F':
			v = c - 'A' + 10
		default:
			continue
		}
		if !haveHi {
			hi = v
			haveHi = true
		} else {
			buf = append(buf, hi<<4|v)
			haveHi = false
		}
	}
	if haveHi {
		buf = append(buf, hi<<4)
	}
	return string(buf)
}

func (b *buffer) readLiteralString() token {
	var buf []byte
	depth := 1
	for {
		c, err := b.readByteErr()
		if err != nil {
			break
		}
		switch c {
		case '(':
			depth++
			buf = append(buf, c)
		case ')':
			depth--
			if depth == 0 {
				return string(buf)
			}
			buf = append(buf, c)
		case '\\':
			c2, err2 := b.readByteErr()
			if err2 != nil {
				break
			}
			switch c2 {
			case 'n':
				buf = append(buf, '\n')
			case 'r':
				buf = append(buf, '\r')
			case 't':
				buf = append(buf, '\t')
			case 'b':
				buf = append(buf, '\b')
			case 'f':
				buf = append(buf, '\f')
			case '(', ')', '\\':
				buf = append(buf, c2)
			case '\r':
				// line continuation; swallow an optional following \n
				c3, err3 := b.readByteErr()
				if err3 == nil && c3 != '\n' {
					b.unreadByte()
				}
			case '\n':
				// line continuation
			case '0', '1', '2', '3', '4', '5', '6', '7':
				oct := []byte{c2}
				for i := 0; i < 2; i++ {
					c3, err3 := b.readByteErr()
					if err3 != nil || c3 < '0' || c3 > '7' {
						if err3 == nil {
							b.unreadByte()
						}
						break
					}
					oct = append(oct, c3)
				}
				n, _ := strconv.ParseUint(string(oct), 8, 16)
				buf = append(buf, byte(n))
			default:
				// unrecognized escape: the backslash is dropped and the
				// character is taken literally, per ISO 32000-1 §7.3.4.2.
				buf = append(buf, c2)
			}
		default:
			buf = append(buf, c)
		}
	}
	return string(buf)
}

func (b *buffer) readName() token {
	var buf []byte
	for {
		c, err := b.readByteErr()
		if err != nil {
			break
		}
		if isSpace(c) || isDelim(c) {
			b.unreadByte()
			break
		}
		if c == '#' {
			h1, err1 := b.readByteErr()
			h2, err2 := b.readByteErr()
			if err1 == nil && err2 == nil && isHex(h1) && isHex(h2) {
				buf = append(buf, hexVal(h1)<<4|hexVal(h2))
				continue
			}
			// malformed escape: tolerate, keep literal chars
			buf = append(buf, '#')
			if err1 == nil {
				buf = append(buf, h1)
			}
			if err2 == nil {
				buf = append(buf, h2)
			}
			continue
		}
		buf = append(buf, c)
	}
	return name(buf)
}

func isHex(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}

func hexVal(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	}
	return 0
}

func (b *buffer) readKeyword() token {
	var buf []byte
	for {
		c, err := b.readByteErr()
		if err != nil {
			break
		}
		if isSpace(c) || isDelim(c) {
			b.unreadByte()
			break
		}
		buf = append(buf, c)
	}
	if len(buf) == 0 {
		logger.Debug("readKeyword: no bytes consumed")
		return keyword("")
	}
	s := string(buf)
	if s == "true" {
		return true
	}
	if s == "false" {
		return false
	}
	if isInteger(s) {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
	}
	if isReal(s) {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	return keyword(s)
}

func isInteger(s string) bool {
	if s == "" {
		return false
	}
	i := 0
	if s[0] == '+' || s[0] == '-' {
		i++
	}
	if i == len(s) {
		return false
	}
	for ; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func isReal(s string) bool {
	if s == "" {
		return false
	}
	i := 0
	if s[0] == '+' || s[0] == '-' {
		i++
	}
	seenDigit := false
	seenDot := false
	for ; i < len(s); i++ {
		switch {
		case s[i] >= '0' && s[i] <= '9':
			seenDigit = true
		case s[i] == '.' && !seenDot:
			seenDot = true
		default:
			return false
		}
	}
	return seenDot && seenDigit || seenDigit && seenDot
}
