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
	"errors"
	"io"
	"math/big"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		input string
		err   error
	}{
		{"", io.ErrUnexpectedEOF},
		{"81", ErrValueTooLarge},
		{"8105", ErrCanonSize},           // single byte < 0x80 in string header
		{"B800", ErrCanonSize},           // long form for size 0
		{"B837" + "00", ErrCanonSize},    // long form for size 55
		{"B90037", ErrCanonSize},         // size with leading zero byte
		{"B9", io.ErrUnexpectedEOF},      // size bytes missing
		{"F800", ErrCanonSize},           // long list form for size 0
		{"C4010203", ErrValueTooLarge},   // list content shorter than header says
		{"C2820102", ErrElemTooLarge},    // element runs over its list
		{"C28301", ErrElemTooLarge},      // element header inside list claims too much
		{"C1C1", ErrElemTooLarge},        // nested list overruns outer list content
		{"0102", ErrMoreThanOneValue},
		{"C0C0", ErrMoreThanOneValue},
		{"80" + "80", ErrMoreThanOneValue},
	}
	for _, test := range tests {
		_, err := DecodeBytes(unhex(test.input))
		if !errors.Is(err, test.err) {
			t.Errorf("input %s: got error %v, want %v", test.input, err, test.err)
		}
	}
}

func TestDecodeErrorContext(t *testing.T) {
	_, err := DecodeBytes(unhex("C501C3810200"))
	assert.ErrorIs(t, err, ErrCanonSize)

	// [1, [2, 0x810A]] has a non-canonical string at [1][1]
	_, err = DecodeBytes(unhex("C501C302810A"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCanonSize)
	assert.Equal(t, "rlp: non-canonical size information, at [1][1]", err.Error())
}

func TestDecodeRoundTrip(t *testing.T) {
	for i, test := range encTests {
		if test.error != "" {
			continue
		}
		input := unhex(test.output)
		v, err := DecodeBytes(input)
		require.NoError(t, err, "test %d: input %s", i, test.output)
		if !v.Equal(test.val) {
			t.Errorf("test %d: decoded value mismatch\ngot  %s\nwant %s", i, spew.Sdump(v), test.val)
		}
		again, err := EncodeToBytes(v)
		require.NoError(t, err)
		assert.Equal(t, input, again, "test %d: re-encoding differs", i)
	}
}

func TestDecodeStream(t *testing.T) {
	// two values back to back, Decode must leave the second one in the reader
	r := bytes.NewReader(unhex("C88363617483646F67" + "B8384C6F72656D20697073756D20646F6C6F722073697420616D65742C20636F6E7365637465747572206164697069736963696E6720656C6974" + "7F"))

	v, err := Decode(r)
	require.NoError(t, err)
	assert.True(t, v.Equal(NewList(Str("cat"), Str("dog"))))

	v, err = Decode(r)
	require.NoError(t, err)
	b, _ := v.AsBytes()
	assert.Equal(t, "Lorem ipsum dolor sit amet, consectetur adipisicing elit", string(b))

	v, err = Decode(r)
	require.NoError(t, err)
	assert.Equal(t, Byte, v.Kind())

	_, err = Decode(r)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	_, err = Decode(bytes.NewReader(unhex("83646F")))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	_, err = Decode(bytes.NewReader(unhex("B800")))
	assert.ErrorIs(t, err, ErrCanonSize)
}

// 头部声明的长度远大于实际数据时，应返回错误而不是预先分配内存。
func TestDecodeStreamHugeSize(t *testing.T) {
	tests := []struct {
		input string
		err   error
	}{
		// string of 2^50 bytes, nothing follows
		{input: "BE04000000000000", err: io.ErrUnexpectedEOF},
		// list of 2^32 bytes with a little content
		{input: "FC01000000000102", err: io.ErrUnexpectedEOF},
		// header plus size would not fit in an int64
		{input: "BFFFFFFFFFFFFFFFFF", err: ErrValueTooLarge},
		{input: "FFFFFFFFFFFFFFFFFF", err: ErrValueTooLarge},
	}
	for _, tt := range tests {
		var (
			v   Value
			err error
		)
		require.NotPanics(t, func() { v, err = Decode(bytes.NewReader(unhex(tt.input))) }, tt.input)
		assert.ErrorIs(t, err, tt.err, tt.input)
		assert.True(t, v.Equal(Value{}), tt.input)
	}
}

func TestValueIntegers(t *testing.T) {
	tests := []struct {
		input string
		want  *big.Int
		err   error
	}{
		{input: "80", want: big.NewInt(0)},
		{input: "01", want: big.NewInt(1)},
		{input: "7F", want: big.NewInt(127)},
		{input: "8180", want: big.NewInt(128)},
		{input: "820400", want: big.NewInt(1024)},
		{input: "00", err: ErrCanonInt},
		{input: "820001", err: ErrCanonInt},
		{input: "8800000000000000FF", err: ErrCanonInt},
		{input: "C0", err: ErrExpectedString},
	}
	for _, test := range tests {
		v, err := DecodeBytes(unhex(test.input))
		require.NoError(t, err, "input %s", test.input)
		got, err := v.AsBigInt()
		if test.err != nil {
			assert.ErrorIs(t, err, test.err, "input %s", test.input)
			continue
		}
		require.NoError(t, err, "input %s", test.input)
		assert.Equal(t, 0, got.Cmp(test.want), "input %s: got %v", test.input, got)
	}

	v, _ := DecodeBytes(unhex("89FFFFFFFFFFFFFFFFFF"))
	_, err := v.AsUint64()
	assert.ErrorIs(t, err, errUintOverflow)

	v, _ = DecodeBytes(unhex("A1010000000000000000000000000000000000000000000000000000000000000000"))
	_, err = v.AsUint256()
	assert.ErrorIs(t, err, errUint256Large)
	n, err := v.AsBigInt()
	require.NoError(t, err)
	assert.Equal(t, 257, n.BitLen())
}

func TestSplit(t *testing.T) {
	k, content, rest, err := Split(unhex("83646F6701"))
	require.NoError(t, err)
	assert.Equal(t, String, k)
	assert.Equal(t, []byte("dog"), content)
	assert.Equal(t, []byte{1}, rest)

	_, _, err = SplitList(unhex("83646F67"))
	assert.ErrorIs(t, err, ErrExpectedList)
	_, _, err = SplitString(unhex("C0"))
	assert.ErrorIs(t, err, ErrExpectedString)

	x, rest, err := SplitUint64(unhex("820400FF"))
	require.NoError(t, err)
	assert.Equal(t, uint64(1024), x)
	assert.Equal(t, []byte{0xFF}, rest)
	_, _, err = SplitUint64(unhex("820004"))
	assert.ErrorIs(t, err, ErrCanonInt)

	n, err := CountValues(unhex("0102C3010203" + "80"))
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}
