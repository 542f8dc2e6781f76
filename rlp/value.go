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
	"math/big"
	"strings"
)

// Kind represents the kind of value contained in an RLP encoding.
type Kind int8

const (
	Byte Kind = iota
	String
	List
)

func (k Kind) String() string {
	switch k {
	case Byte:
		return "Byte"
	case String:
		return "String"
	case List:
		return "List"
	default:
		return "Unknown"
	}
}

type valueTag uint8

const (
	tagString valueTag = iota
	tagUint
	tagList
)

// Value is a canonical RLP value: an unsigned integer, a byte string or a list.
// The zero Value is the empty string.
//
// Value 是 RLP 的标签联合类型：无符号整数、字节串或列表。
type Value struct {
	tag   valueTag
	num   *big.Int
	str   []byte
	items []Value
}

// Uint64 returns an integer value.
func Uint64(i uint64) Value {
	return Value{tag: tagUint, num: new(big.Int).SetUint64(i)}
}

// BigInt returns an integer value. A nil pointer is treated as zero. Negative
// integers are accepted here but fail to encode.
func BigInt(i *big.Int) Value {
	if i == nil {
		return Value{tag: tagUint, num: new(big.Int)}
	}
	return Value{tag: tagUint, num: new(big.Int).Set(i)}
}

// Bytes returns a string value holding a copy of b.
func Bytes(b []byte) Value {
	return Value{tag: tagString, str: bytes.Clone(b)}
}

// Str returns a string value holding the bytes of s.
func Str(s string) Value {
	return Value{tag: tagString, str: []byte(s)}
}

// NewList returns a list value holding the given items.
func NewList(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{tag: tagList, items: items}
}

// Kind reports how the value appears on the wire. Integers are strings.
func (v Value) Kind() Kind {
	if v.tag == tagList {
		return List
	}
	if b := v.bytes(); len(b) == 1 && b[0] < 0x80 {
		return Byte
	}
	return String
}

// IsList reports whether v is a list.
func (v Value) IsList() bool { return v.tag == tagList }

// IsInt reports whether v was constructed as an integer. Decoded values are
// never integers, use AsBigInt to interpret them.
func (v Value) IsInt() bool { return v.tag == tagUint }

func (v Value) bytes() []byte {
	if v.tag == tagUint {
		return v.num.Bytes()
	}
	return v.str
}

// AsBytes returns the content of a string value. Integers are returned in their
// minimal big-endian form.
func (v Value) AsBytes() ([]byte, error) {
	if v.tag == tagList {
		return nil, ErrExpectedString
	}
	return v.bytes(), nil
}

// AsBigInt interprets v as an unsigned integer. Strings with leading zero bytes
// are rejected with ErrCanonInt.
func (v Value) AsBigInt() (*big.Int, error) {
	switch v.tag {
	case tagList:
		return nil, ErrExpectedString
	case tagUint:
		return new(big.Int).Set(v.num), nil
	}
	if len(v.str) > 0 && v.str[0] == 0 {
		return nil, ErrCanonInt
	}
	return new(big.Int).SetBytes(v.str), nil
}

// AsUint256 is like AsBigInt but rejects values wider than 256 bits.
func (v Value) AsUint256() (*big.Int, error) {
	i, err := v.AsBigInt()
	if err != nil {
		return nil, err
	}
	if i.BitLen() > 256 {
		return nil, errUint256Large
	}
	return i, nil
}

// AsUint64 interprets v as an unsigned integer that must fit 64 bits.
func (v Value) AsUint64() (uint64, error) {
	i, err := v.AsBigInt()
	if err != nil {
		return 0, err
	}
	if !i.IsUint64() {
		return 0, errUintOverflow
	}
	return i.Uint64(), nil
}

// Items returns the elements of a list value.
func (v Value) Items() ([]Value, error) {
	if v.tag != tagList {
		return nil, ErrExpectedList
	}
	return v.items, nil
}

// Equal reports whether a and b have the same encoding.
func (v Value) Equal(other Value) bool {
	if v.IsList() != other.IsList() {
		return false
	}
	if !v.IsList() {
		return bytes.Equal(v.bytes(), other.bytes())
	}
	if len(v.items) != len(other.items) {
		return false
	}
	for i := range v.items {
		if !v.items[i].Equal(other.items[i]) {
			return false
		}
	}
	return true
}

// String renders v as nested hex, e.g. [09, 04a817c800, []].
func (v Value) String() string {
	var sb strings.Builder
	v.format(&sb)
	return sb.String()
}

func (v Value) format(sb *strings.Builder) {
	if v.tag != tagList {
		sb.WriteString(hex.EncodeToString(v.bytes()))
		return
	}
	sb.WriteByte('[')
	for i, item := range v.items {
		if i > 0 {
			sb.WriteString(", ")
		}
		item.format(sb)
	}
	sb.WriteByte(']')
}
