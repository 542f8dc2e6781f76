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
	"fmt"
	"io"
	"math"
	"strings"
)

// decodeChunk bounds the buffer preallocated by Decode before content arrives.
const decodeChunk = 4096

var (
	ErrExpectedString   = errors.New("rlp: expected String or Byte")
	ErrExpectedList     = errors.New("rlp: expected List")
	ErrCanonInt         = errors.New("rlp: non-canonical integer format")
	ErrCanonSize        = errors.New("rlp: non-canonical size information")
	ErrElemTooLarge     = errors.New("rlp: element is larger than containing list")
	ErrValueTooLarge    = errors.New("rlp: value size exceeds available input length")
	ErrMoreThanOneValue = errors.New("rlp: input contains more than one value")

	// internal errors
	errUintOverflow = errors.New("rlp: uint overflow")
	errUint256Large = errors.New("rlp: value too large for uint256")
)

// decodeError annotates a decoding failure with the position of the offending
// element, e.g. "rlp: non-canonical size information, at [6][1]".
type decodeError struct {
	err error
	ctx []string
}

func (err *decodeError) Error() string {
	if len(err.ctx) == 0 {
		return err.err.Error()
	}
	// ctx is collected innermost first
	var sb strings.Builder
	for i := len(err.ctx) - 1; i >= 0; i-- {
		sb.WriteString(err.ctx[i])
	}
	return fmt.Sprintf("%v, at %s", err.err, sb.String())
}

func (err *decodeError) Unwrap() error { return err.err }

func addErrorContext(err error, ctx string) error {
	var derr *decodeError
	if errors.As(err, &derr) {
		derr.ctx = append(derr.ctx, ctx)
		return derr
	}
	return &decodeError{err: err, ctx: []string{ctx}}
}

// DecodeBytes parses the RLP value in b. The input must contain exactly one
// value and no trailing data.
func DecodeBytes(b []byte) (Value, error) {
	v, rest, err := decodeValue(b)
	if err != nil {
		return Value{}, err
	}
	if len(rest) > 0 {
		return Value{}, ErrMoreThanOneValue
	}
	return v, nil
}

// Decode reads exactly one RLP value from r. It reads the header first and then
// the announced content, so data following the value is left in r.
func Decode(r io.Reader) (Value, error) {
	var head [9]byte
	if _, err := io.ReadFull(r, head[:1]); err != nil {
		if err == io.EOF {
			return Value{}, io.ErrUnexpectedEOF
		}
		return Value{}, err
	}
	if head[0] < 0x80 {
		return Value{tag: tagString, str: []byte{head[0]}}, nil
	}
	var (
		b           = head[0]
		tagsize     = uint64(1)
		contentsize uint64
	)
	switch {
	case b < 0xB8:
		contentsize = uint64(b - 0x80)
	case b < 0xC0, b >= 0xF8:
		lenlen := b - 0xB7
		if b >= 0xF8 {
			lenlen = b - 0xF7
		}
		if _, err := io.ReadFull(r, head[1:1+lenlen]); err != nil {
			return Value{}, io.ErrUnexpectedEOF
		}
		size, err := readSize(head[1:1+lenlen], lenlen)
		if err != nil {
			return Value{}, err
		}
		tagsize, contentsize = uint64(1+lenlen), size
	default:
		contentsize = uint64(b - 0xC0)
	}
	if contentsize > math.MaxInt64-tagsize {
		return Value{}, ErrValueTooLarge
	}
	// 头部声明的长度不可信，按实际读到的数据增长缓冲区。
	input := bytes.NewBuffer(make([]byte, 0, tagsize+min(contentsize, decodeChunk)))
	input.Write(head[:tagsize])
	if _, err := io.CopyN(input, r, int64(contentsize)); err != nil {
		return Value{}, io.ErrUnexpectedEOF
	}
	return DecodeBytes(input.Bytes())
}

// decodeValue decodes the value at the start of b and returns the remaining input.
func decodeValue(b []byte) (Value, []byte, error) {
	k, content, rest, err := Split(b)
	if err != nil {
		return Value{}, b, err
	}
	switch k {
	case Byte, String:
		return Value{tag: tagString, str: bytes.Clone(content)}, rest, nil
	default:
		items, err := decodeList(content)
		if err != nil {
			return Value{}, b, err
		}
		return Value{tag: tagList, items: items}, rest, nil
	}
}

func decodeList(content []byte) ([]Value, error) {
	items := []Value{}
	for i := 0; len(content) > 0; i++ {
		item, rest, err := decodeValue(content)
		if err != nil {
			// The list content was bounded, an element running over it is too
			// large for its list rather than for the input.
			if err == ErrValueTooLarge || err == io.ErrUnexpectedEOF {
				err = ErrElemTooLarge
			}
			return nil, addErrorContext(err, fmt.Sprintf("[%d]", i))
		}
		items = append(items, item)
		content = rest
	}
	return items, nil
}
