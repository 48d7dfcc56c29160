// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package xtract

import (
	"bytes"
	"io"
	"testing"

	"github.com/hhrutter/lzw"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyFilter_LZWDecode(t *testing.T) {
	var buf bytes.Buffer
	w := lzw.NewWriter(&buf, true)
	_, err := w.Write([]byte("hello, hello, hello"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	rd := applyFilter(bytes.NewReader(buf.Bytes()), "LZWDecode", Value{})
	out, err := io.ReadAll(rd)
	require.NoError(t, err)
	assert.Equal(t, "hello, hello, hello", string(out))
}

func TestApplyFilter_ASCIIHexDecode(t *testing.T) {
	rd := applyFilter(bytes.NewReader([]byte("68 65 6C 6C 6F>")), "ASCIIHexDecode", Value{})
	out, err := io.ReadAll(rd)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(out))
}

func TestApplyFilter_ASCIIHexDecode_OddDigit(t *testing.T) {
	rd := applyFilter(bytes.NewReader([]byte("68656C6C6F6>")), "ASCIIHexDecode", Value{})
	out, err := io.ReadAll(rd)
	require.NoError(t, err)
	assert.Equal(t, []byte{'h', 'e', 'l', 'l', 'o', 0x60}, out)
}

func TestApplyFilter_RunLengthDecode(t *testing.T) {
	// literal run "abc" (length byte 2 => copy 3 bytes), then a repeat of
	// 'x' four times (length byte 253 => 257-253=4 repeats), then EOD (128).
	data := []byte{2, 'a', 'b', 'c', 253, 'x', 128}
	rd := applyFilter(bytes.NewReader(data), "RunLengthDecode", Value{})
	out, err := io.ReadAll(rd)
	require.NoError(t, err)
	assert.Equal(t, "abcxxxx", string(out))
}

func TestApplyFilter_ImagePassthrough(t *testing.T) {
	for _, name := range []string{"CCITTFaxDecode", "JBIG2Decode", "JPXDecode", "DCTDecode"} {
		payload := []byte{0xFF, 0xD8, 0x01, 0x02}
		rd := applyFilter(bytes.NewReader(payload), name, Value{})
		out, err := io.ReadAll(rd)
		require.NoError(t, err)
		assert.Equal(t, payload, out, "filter %s should pass bytes through unchanged", name)
	}
}

func TestHexReader_Whitespace(t *testing.T) {
	rd := newHexReader(bytes.NewReader([]byte("68 65\n6C 6C 6F >")))
	out, err := io.ReadAll(rd)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(out))
}

func TestRunLengthReader_EmptyInput(t *testing.T) {
	rd := newRunLengthReader(bytes.NewReader([]byte{128}))
	out, err := io.ReadAll(rd)
	require.NoError(t, err)
	assert.Empty(t, out)
}
