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

/*
Package rlp implements the RLP serialization format over a small tagged value model.

The purpose of RLP (Recursive Linear Prefix) is to encode arbitrarily nested arrays of
binary data, and RLP is the main encoding method used to serialize transactions. The
only purpose of RLP is to encode structure; encoding specific atomic data types (eg.
strings, ints, floats) is left up to higher-order protocols.

# Values

A Value is one of three things: an unsigned integer, a byte string or a list of values.

	rlp.NewList(rlp.Uint64(9), rlp.Bytes(to[:]), rlp.BigInt(amount))

Integers are encoded as the shortest big-endian byte string without leading zero
bytes. Zero encodes as the empty string. Negative big integers cannot be encoded.

# Encoding rules

A single byte in the range [0x00, 0x7F] is its own encoding. Strings up to 55 bytes long
get a one byte header 0x80+len. Longer strings get the header 0xB7+len(len) followed by
the big-endian length. Lists use the same scheme with the bases 0xC0 and 0xF7 applied to
the length of the concatenated item encodings.

# Decoding rules

Decoding is strict. The decoder rejects:

  - a single byte below 0x80 wrapped in a string header (ErrCanonSize)
  - a size below 56 written in long form, or a size with leading zero bytes (ErrCanonSize)
  - integers with leading zero bytes (ErrCanonInt), checked when the value is read as integer
  - headers claiming more content than available (ErrValueTooLarge, ErrElemTooLarge)
  - trailing bytes after the top level value (ErrMoreThanOneValue)

Decoded atoms always come back as strings: RLP carries no type information, so the
reader decides whether a string is an integer by calling AsBigInt or AsUint64.

RLP 本身只编码结构，不携带类型信息，整数与字节串的区分由调用方决定。
*/
package rlp
