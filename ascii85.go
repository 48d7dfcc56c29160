// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package xtract

// alphaReader sits in front of encoding/ascii85's decoder and filters the
// underlying byte stream down to the ASCII85 tuple alphabet ('!'..'u'),
// zeroing anything outside that range and anything after the "~>"
// end-of-data marker. Note this range excludes 'z' (0x7A > 'u'); the
// all-zero-quad shorthand is not special-cased at this layer.

import "io"

type alphaReader struct {
	r    io.Reader
	done bool
}

func newAlphaReader(r io.Reader) *alphaReader {
	return &alphaReader{r: r}
}

func (a *alphaReader) Read(p []byte) (int, error) {
	n, err := a.r.Read(p)
	for i := 0; i < n; i++ {
		if a.done {
			p[i] = 0
			continue
		}
		c := p[i]
		if c == '~' && i+1 < n && p[i+1] == '>' {
			a.done = true
			p[i] = 0
			continue
		}
		if c == '~' && i+1 >= n {
			// boundary case: '~' at the very end of this Read; treat
			// conservatively as the start of a terminator.
			a.done = true
			p[i] = 0
			continue
		}
		if c < '!' || c > 'u' {
			p[i] = 0
			continue
		}
	}
	return n, err
}
