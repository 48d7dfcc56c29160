// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package xtract

// Stream filter decoders beyond FlateDecode and ASCII85Decode (already in
// read.go): LZWDecode, ASCIIHexDecode, and RunLengthDecode are decoded
// in full; CCITTFaxDecode, JBIG2Decode, JPXDecode, and DCTDecode are
// image codecs this package does not rasterize, so their streams pass
// through unchanged — the page analyzer only needs their declared
// width/height/colorspace from the surrounding image dictionary, not
// decoded pixels.

import (
	"io"

	"github.com/hhrutter/lzw"
)

// lzwReader wraps github.com/hhrutter/lzw's decoder, selecting the PDF
// /EarlyChange DecodeParms entry (default true, matching ISO 32000-1
// Table 8's default), and applies a PNG-Up predictor on top when
// DecodeParms names one — LZW streams carry the same /Predictor /Columns
// pair Flate streams do.
func lzwReader(rd io.Reader, param Value) io.Reader {
	earlyChange := true
	if ec := param.Key("EarlyChange"); ec.Kind() != Null {
		earlyChange = ec.Int64() != 0
	}
	lr := lzw.NewReader(rd, earlyChange)

	pred := param.Key("Predictor")
	if pred.Kind() == Null || pred.Int64() != 12 {
		return lr
	}
	columns := param.Key("Columns").Int64()
	return &pngUpReader{r: lr, hist: make([]byte, 1+columns), tmp: make([]byte, 1+columns)}
}

// hexReader decodes ASCIIHexDecode: pairs of hex digits to bytes,
// whitespace ignored, '>' marks end of data; an odd trailing digit is
// padded with a low nibble of 0 per ISO 32000-1 §7.4.2.
type hexReader struct {
	r    io.Reader
	buf  [1]byte
	done bool
}

func newHexReader(r io.Reader) *hexReader {
	return &hexReader{r: r}
}

func (h *hexReader) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		if h.done {
			if n == 0 {
				return 0, io.EOF
			}
			return n, nil
		}
		hi, ok, err := h.nextHexDigit()
		if err != nil {
			h.done = true
			if n == 0 {
				return 0, err
			}
			return n, nil
		}
		if !ok {
			h.done = true
			continue
		}
		lo, ok, err := h.nextHexDigit()
		if err != nil {
			lo, ok = 0, true
			h.done = true
		} else if !ok {
			lo = 0
			h.done = true
		}
		p[n] = hi<<4 | lo
		n++
	}
	return n, nil
}

// nextHexDigit reads past whitespace and returns the next hex nibble, or
// ok=false at the '>' terminator.
func (h *hexReader) nextHexDigit() (byte, bool, error) {
	for {
		_, err := io.ReadFull(h.r, h.buf[:])
		if err != nil {
			return 0, false, err
		}
		c := h.buf[0]
		switch {
		case isSpace(c):
			continue
		case c == '>':
			return 0, false, nil
		case c >= '0' && c <= '9':
			return c - '0', true, nil
		case c >= 'a' && c <= 'f':
			return c - 'a' + 10, true, nil
		case c >= 'A' && c <= 'F':
			return c - 'A' + 10, true, nil
		default:
			continue
		}
	}
}

// runLengthReader decodes RunLengthDecode (ISO 32000-1 §7.4.5): a length
// byte in 0-127 means "copy the next length+1 bytes literally"; a length
// byte in 129-255 means "repeat the next byte 257-length times"; 128
// marks end of data.
type runLengthReader struct {
	r      io.Reader
	pend   []byte
	repeat byte
	count  int
	done   bool
}

func newRunLengthReader(r io.Reader) *runLengthReader {
	return &runLengthReader{r: r}
}

func (rl *runLengthReader) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		if len(rl.pend) > 0 {
			m := copy(p[n:], rl.pend)
			n += m
			rl.pend = rl.pend[m:]
			continue
		}
		if rl.count > 0 {
			m := 0
			for m < rl.count && n+m < len(p) {
				p[n+m] = rl.repeat
				m++
			}
			rl.count -= m
			n += m
			continue
		}
		if rl.done {
			if n == 0 {
				return 0, io.EOF
			}
			return n, nil
		}
		var lb [1]byte
		if _, err := io.ReadFull(rl.r, lb[:]); err != nil {
			rl.done = true
			if n == 0 {
				return 0, err
			}
			return n, nil
		}
		length := int(lb[0])
		switch {
		case length == 128:
			rl.done = true
		case length < 128:
			buf := make([]byte, length+1)
			if _, err := io.ReadFull(rl.r, buf); err != nil {
				rl.done = true
				if n == 0 {
					return 0, err
				}
				return n, nil
			}
			rl.pend = buf
		default:
			var rb [1]byte
			if _, err := io.ReadFull(rl.r, rb[:]); err != nil {
				rl.done = true
				if n == 0 {
					return 0, err
				}
				return n, nil
			}
			rl.repeat = rb[0]
			rl.count = 257 - length
		}
	}
	return n, nil
}
