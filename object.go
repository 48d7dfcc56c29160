// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package xtract

// The untyped PDF object model read directly off the tokenizer: dict,
// array, stream, and the (object_number, generation) identity pair
// (objptr) and its definition (objdef). Value (in read.go) is the typed
// wrapper consumers use; object is its raw, pre-resolution counterpart.
// Grounded on the same rsc/pdf lineage as lex.go.

import (
	"io"
)

// object is any one of: nil, bool, int64, float64, string, name, dict,
// array, stream, objptr, or objdef.
type object interface{}

// dict is a PDF dictionary: name keys to object values.
type dict map[name]object

// array is a PDF array: an ordered, heterogeneous list of objects.
type array []object

// objptr identifies an indirect object by number and generation.
type objptr struct {
	id  uint32
	gen uint16
}

// objdef pairs an objptr with the object it names ("N G obj ... endobj").
type objdef struct {
	ptr objptr
	obj object
}

// stream is a dictionary followed by a filtered byte payload; offset is
// the absolute file position of the first byte of the (encoded) payload.
type stream struct {
	hdr    dict
	ptr    objptr
	offset int64
}

func newDict() dict {
	return make(dict)
}

// maxArrayElements bounds array growth against runaway allocation from
// malformed content streams (e.g. a truncated "[" with no matching "]").
const maxArrayElements = 100_000

// decryptString is the hook where RC4/AES string decryption would apply
// if this package implemented it; per this system's non-goals, encrypted
// documents are recognized but not decrypted, so raw (still-encrypted)
// bytes pass through unchanged rather than being garbled by a partial
// decrypt attempt.
func decryptString(key []byte, useAES bool, ptr objptr, s string) string {
	return s
}

// readObject parses one PDF object starting at the buffer's current
// position: a literal (number, string, name, bool, null), a compound
// value (dict, array), or — when allowObjptr is set — a full "N G obj
// ... endobj" definition or an "N G R" indirect reference.
func (b *buffer) readObject() object {
	tok := b.readToken()
	if kw, ok := tok.(keyword); ok {
		switch kw {
		case "null":
			return nil
		case "<<":
			return b.readDict()
		case "[":
			return b.readArray()
		case ">>", "]":
			// Stray closing delimiter: stop the object, let the caller's
			// own readArray/readDict loop observe it via unreadToken.
			b.unreadToken(tok)
			return nil
		case "endobj", "endstream", "stream":
			// Tolerate these appearing where an object was expected, as
			// happens in corrupted or truncated PDFs.
			b.unreadToken(tok)
			return nil
		}
		return kw
	}

	if str, ok := tok.(string); ok && len(b.key) > 0 && b.objptr.id != 0 {
		tok = decryptString(b.key, b.useAES, b.objptr, str)
	}

	if !b.allowObjptr {
		return tok
	}

	t1, ok := tok.(int64)
	if !ok || int64(uint32(t1)) != t1 {
		return tok
	}
	tok2 := b.readToken()
	t2, ok := tok2.(int64)
	if !ok || int64(uint16(t2)) != t2 {
		b.unreadToken(tok2)
		return tok
	}
	tok3 := b.readToken()
	switch tok3 {
	case keyword("R"):
		return objptr{uint32(t1), uint16(t2)}
	case keyword("obj"):
		old := b.objptr
		b.objptr = objptr{uint32(t1), uint16(t2)}
		obj := b.readObject()
		if _, ok := obj.(stream); !ok {
			tok4 := b.readToken()
			if tok4 != keyword("endobj") && tok4 != io.EOF {
				b.unreadToken(tok4)
			}
		}
		b.objptr = old
		return objdef{objptr{uint32(t1), uint16(t2)}, obj}
	}
	b.unreadToken(tok3)
	b.unreadToken(tok2)
	return tok
}

func (b *buffer) readArray() object {
	var x array
	for {
		tok := b.readToken()
		if tok == nil || tok == keyword("]") || tok == io.EOF {
			break
		}
		if len(x) >= maxArrayElements {
			break
		}
		b.unreadToken(tok)
		x = append(x, b.readObject())
	}
	return x
}

func (b *buffer) readDict() object {
	x := make(dict)
	for {
		tok := b.readToken()
		if tok == nil || tok == keyword(">>") || tok == io.EOF {
			break
		}
		n, ok := tok.(name)
		if !ok {
			// Non-name key: likely corrupted or a missing ">>"; stop
			// rather than loop forever.
			b.unreadToken(tok)
			break
		}
		x[n] = b.readObject()
	}

	if !b.allowStream {
		return x
	}

	tok := b.readToken()
	if tok != keyword("stream") {
		b.unreadToken(tok)
		return x
	}

	switch b.readByte() {
	case '\r':
		c := b.readByte()
		if c != '\n' {
			b.unreadByte()
		}
	case '\n':
		// ok
	default:
		b.unreadByte()
	}

	return stream{x, b.objptr, b.readOffset()}
}
