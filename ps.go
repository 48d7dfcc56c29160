// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package xtract

// A minimal PostScript-like operand/operator interpreter shared by the
// content-stream walkers in page.go and the ToUnicode CMap program reader
// in readCmap: operands push onto a Stack until a keyword token (the
// operator) is seen, at which point the registered callback runs with the
// accumulated stack.

import (
	"io"

	"github.com/sindlinger/fpdf-portable-sub002/logger"
)

// A Stack is a LIFO of Values used as the operand stack while interpreting
// a content stream or CMap program.
type Stack struct {
	stk []Value
}

// Push pushes v onto the stack.
func (s *Stack) Push(v Value) {
	s.stk = append(s.stk, v)
}

// Pop removes and returns the top of the stack, or the zero Value if empty.
func (s *Stack) Pop() Value {
	n := len(s.stk)
	if n == 0 {
		return Value{}
	}
	v := s.stk[n-1]
	s.stk = s.stk[:n-1]
	return v
}

// Len returns the number of operands currently on the stack.
func (s *Stack) Len() int {
	return len(s.stk)
}

// Interpret runs the operator/operand loop over the content described by
// strm (a Value of Kind Stream, or an Array of such streams whose payloads
// are concatenated — per §4.4/§8, a page's /Contents may be an ordered
// array of streams). For each operator keyword encountered, do is invoked
// with the operand stack built up since the previous operator; do is
// responsible for popping the operands it expects.
//
// Malformed operand syntax (a token that is neither an operand nor a
// recognized structural delimiter) does not abort the whole interpretation;
// it is skipped so the page yields whatever text precedes the malformation,
// consistent with the partial_text failure semantics described in §4.4/§7.
func Interpret(strm Value, do func(stk *Stack, op string)) {
	r := contentReader(strm)
	if r == nil {
		return
	}
	b := newBuffer(r, 0)
	b.allowObjptr = false
	b.allowStream = false

	var stk Stack
	for {
		tok := b.readToken()
		if tok == io.EOF {
			return
		}
		switch t := tok.(type) {
		case keyword:
			switch t {
			case "<<":
				d := b.readDict()
				stk.Push(Value{nil, objptr{}, d})
			case "[":
				a := b.readArray()
				stk.Push(Value{nil, objptr{}, a})
			case "true":
				stk.Push(Value{nil, objptr{}, true})
			case "false":
				stk.Push(Value{nil, objptr{}, false})
			case "null", "]", ">>":
				// ignore stray structural tokens
			default:
				do(&stk, string(t))
				stk.stk = stk.stk[:0]
			}
		case int64:
			stk.Push(Value{nil, objptr{}, t})
		case float64:
			stk.Push(Value{nil, objptr{}, t})
		case string:
			stk.Push(Value{nil, objptr{}, t})
		case name:
			stk.Push(Value{nil, objptr{}, t})
		case bool:
			stk.Push(Value{nil, objptr{}, t})
		default:
			logger.Debug("Interpret: skipping unrecognized token")
		}
	}
}

// contentReader returns a reader over strm's bytes: a single stream's
// decoded payload, or the concatenation of an array of streams' payloads
// in order (§8: "Page whose /Contents is an array of three streams: the
// three stream payloads are concatenated in order before interpretation").
func contentReader(strm Value) io.Reader {
	switch strm.Kind() {
	case Stream:
		return strm.Reader()
	case Array:
		var readers []io.Reader
		for i := 0; i < strm.Len(); i++ {
			el := strm.Index(i)
			if el.Kind() == Stream {
				readers = append(readers, el.Reader(), spaceReader{})
			}
		}
		if len(readers) == 0 {
			return nil
		}
		return io.MultiReader(readers...)
	default:
		return nil
	}
}

// spaceReader yields a single space separating concatenated content
// streams, so an operator split across the boundary of two streams is
// never accidentally glued into one token.
type spaceReader struct{ read bool }

func (s spaceReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	p[0] = ' '
	return 1, io.EOF
}
