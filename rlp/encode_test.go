// Copyright 2014 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package rlp

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unhex(str string) []byte {
	b, err := hex.DecodeString(strings.ReplaceAll(str, " ", ""))
	if err != nil {
		panic(fmt.Sprintf("invalid hex string: %q", str))
	}
	return b
}

func bigint(s string) *big.Int {
	i, ok := new(big.Int).SetString(s, 0)
	if !ok {
		panic("invalid big int " + s)
	}
	return i
}

type encTest struct {
	val    Value
	output string
	error  string
}

var encTests = []encTest{
	// integers
	{val: Uint64(0), output: "80"},
	{val: Uint64(127), output: "7F"},
	{val: Uint64(128), output: "8180"},
	{val: Uint64(256), output: "820100"},
	{val: Uint64(1024), output: "820400"},
	{val: Uint64(0xFFFFFF), output: "83FFFFFF"},
	{val: Uint64(0xFFFFFFFF), output: "84FFFFFFFF"},
	{val: Uint64(0xFFFFFFFFFF), output: "85FFFFFFFFFF"},
	{val: Uint64(0xFFFFFFFFFFFF), output: "86FFFFFFFFFFFF"},
	{val: Uint64(0xFFFFFFFFFFFFFF), output: "87FFFFFFFFFFFFFF"},
	{val: Uint64(0xFFFFFFFFFFFFFFFF), output: "88FFFFFFFFFFFFFFFF"},

	// big integers
	{val: BigInt(nil), output: "80"},
	{val: BigInt(big.NewInt(0)), output: "80"},
	{val: BigInt(big.NewInt(1)), output: "01"},
	{val: BigInt(big.NewInt(127)), output: "7F"},
	{val: BigInt(big.NewInt(128)), output: "8180"},
	{val: BigInt(big.NewInt(256)), output: "820100"},
	{val: BigInt(big.NewInt(0xFFFFFF)), output: "83FFFFFF"},
	{
		val:    BigInt(bigint("0x102030405060708090A0B0C0D0E0F2")),
		output: "8F102030405060708090A0B0C0D0E0F2",
	},
	{
		val:    BigInt(bigint("0x0100020003000400050006000700080009000A000B000C000D000E01")),
		output: "9C0100020003000400050006000700080009000A000B000C000D000E01",
	},
	{
		val:    BigInt(bigint("0x010000000000000000000000000000000000000000000000000000000000000000")),
		output: "A1010000000000000000000000000000000000000000000000000000000000000000",
	},
	{val: BigInt(big.NewInt(-1)), error: "rlp: cannot encode negative big.Int"},

	// byte strings
	{val: Bytes(nil), output: "80"},
	{val: Bytes([]byte{}), output: "80"},
	{val: Bytes([]byte{0x7E}), output: "7E"},
	{val: Bytes([]byte{0x7F}), output: "7F"},
	{val: Bytes([]byte{0x80}), output: "8180"},
	{val: Bytes([]byte{1, 2, 3}), output: "83010203"},
	{val: Bytes([]byte{0}), output: "00"},
	{val: Bytes([]byte{0, 0}), output: "820000"},

	// strings
	{val: Str(""), output: "80"},
	{val: Str("\x7E"), output: "7E"},
	{val: Str("\x7F"), output: "7F"},
	{val: Str("\x80"), output: "8180"},
	{val: Str("dog"), output: "83646F67"},
	{
		val:    Str("Lorem ipsum dolor sit amet, consectetur adipisicing eli"),
		output: "B74C6F72656D20697073756D20646F6C6F722073697420616D65742C20636F6E7365637465747572206164697069736963696E6720656C69",
	},
	{
		val:    Str("Lorem ipsum dolor sit amet, consectetur adipisicing elit"),
		output: "B8384C6F72656D20697073756D20646F6C6F722073697420616D65742C20636F6E7365637465747572206164697069736963696E6720656C6974",
	},

	// lists
	{val: NewList(), output: "C0"},
	{val: NewList(Uint64(1), Uint64(2), Uint64(3)), output: "C3010203"},
	{val: NewList(Str("cat"), Str("dog")), output: "C88363617483646F67"},
	{
		// [ [], [[]], [ [], [[]] ] ]
		val:    NewList(NewList(), NewList(NewList()), NewList(NewList(), NewList(NewList()))),
		output: "C7C0C1C0C3C0C1C0",
	},
	{
		val:    NewList(Str("aaa"), Str("bbb"), Str("ccc"), Str("ddd"), Str("eee"), Str("fff"), Str("ggg"), Str("hhh"), Str("iii"), Str("jjj"), Str("kkk"), Str("lll"), Str("mmm"), Str("nnn"), Str("ooo")),
		output: "F83C836161618362626283636363836464648365656583666666836767678368686883696969836A6A6A836B6B6B836C6C6C836D6D6D836E6E6E836F6F6F",
	},
	{
		val:    NewList(NewList(Uint64(1), Uint64(2), Uint64(3)), NewList(Uint64(4), Uint64(5), Uint64(6)), NewList(Uint64(7), Uint64(8), Uint64(9))),
		output: "CCC3010203C3040506C3070809",
	},
	{val: NewList(Uint64(1), NewList(Uint64(2), Uint64(3)), Str("4"), NewList(Str("5"), NewList(Uint64(6)))), output: "C901C2020334C335C106"},
	{val: NewList(BigInt(big.NewInt(-3))), error: "rlp: cannot encode negative big.Int"},
}

func TestEncode(t *testing.T) {
	for i, test := range encTests {
		output, err := EncodeToBytes(test.val)
		if err != nil && test.error == "" {
			t.Errorf("test %d: unexpected error: %v\nvalue %v", i, err, test.val)
			continue
		}
		if test.error != "" && fmt.Sprint(err) != test.error {
			t.Errorf("test %d: error mismatch\ngot   %v\nwant  %v", i, err, test.error)
			continue
		}
		if err == nil && !bytes.Equal(output, unhex(test.output)) {
			t.Errorf("test %d: output mismatch:\ngot   %X\nwant  %s\nvalue %v", i, output, test.output, test.val)
		}
	}
}

func TestEncodeToWriter(t *testing.T) {
	for i, test := range encTests {
		if test.error != "" {
			continue
		}
		var buf bytes.Buffer
		require.NoError(t, Encode(&buf, test.val), "test %d", i)
		assert.Equal(t, unhex(test.output), buf.Bytes(), "test %d", i)
	}
}

// 长度超过 55 字节时使用长列表头。
func TestEncodeLongList(t *testing.T) {
	// A list whose payload crosses the 55 byte boundary nested in another list.
	inner := make([]Value, 30)
	for i := range inner {
		inner[i] = Uint64(0x80 + uint64(i)) // two bytes each
	}
	enc, err := EncodeToBytes(NewList(NewList(inner...), Str("x")))
	require.NoError(t, err)
	// outer: f8 3f, inner: f8 3c
	assert.Equal(t, []byte{0xF8, 0x3F, 0xF8, 0x3C, 0x81, 0x80}, enc[:6])
	assert.Equal(t, byte('x'), enc[len(enc)-1])
	assert.Len(t, enc, 2+2+60+1)
}

func TestAppendUint64(t *testing.T) {
	tests := []struct {
		input  uint64
		slice  []byte
		output string
	}{
		{0, nil, "80"},
		{1, nil, "01"},
		{2, nil, "02"},
		{127, nil, "7F"},
		{128, nil, "8180"},
		{129, nil, "8181"},
		{0xFFFFFF, nil, "83FFFFFF"},
		{127, []byte{1, 2, 3}, "0102037F"},
		{0xFFFFFF, []byte{1, 2, 3}, "01020383FFFFFF"},
	}
	for _, test := range tests {
		x := AppendUint64(test.slice, test.input)
		if !bytes.Equal(x, unhex(test.output)) {
			t.Errorf("AppendUint64(%v, %d): got %x, want %s", test.slice, test.input, x, test.output)
		}
		// Check that IntSize returns the appended size.
		length := len(x) - len(test.slice)
		if s := IntSize(test.input); s != length {
			t.Errorf("IntSize(%d): got %d, want %d", test.input, s, length)
		}
	}
}

func TestBytesSize(t *testing.T) {
	for _, test := range []struct {
		v    []byte
		size uint64
	}{
		{v: []byte{}, size: 1},
		{v: []byte{0x1}, size: 1},
		{v: []byte{0x7E}, size: 1},
		{v: []byte{0x7F}, size: 1},
		{v: []byte{0x80}, size: 2},
		{v: []byte{0xFF}, size: 2},
		{v: []byte{0xFF, 0xF0}, size: 3},
		{v: make([]byte, 55), size: 56},
		{v: make([]byte, 56), size: 58},
	} {
		s := BytesSize(test.v)
		if s != test.size {
			t.Errorf("BytesSize(%#x) -> %d, want %d", test.v, s, test.size)
		}
		enc, _ := EncodeToBytes(Bytes(test.v))
		if uint64(len(enc)) != test.size {
			t.Errorf("len(EncodeToBytes(%#x)) -> %d, test says %d", test.v, len(enc), test.size)
		}
	}
	assert.Equal(t, uint64(1), ListSize(0))
	assert.Equal(t, uint64(58), ListSize(56))
}

func BenchmarkEncodeList(b *testing.B) {
	items := make([]Value, 64)
	for i := range items {
		items[i] = Bytes(bytes.Repeat([]byte{byte(i)}, 20))
	}
	val := NewList(items...)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := EncodeToBytes(val); err != nil {
			b.Fatal(err)
		}
	}
}
