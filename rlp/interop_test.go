// Copyright 2024 The go-ethereum Authors
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
	"math/big"
	"testing"

	gethrlp "github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/require"
)

type refTx struct {
	Nonce    uint64
	GasPrice *big.Int
	Gas      uint64
	To       []byte
	Value    *big.Int
	Data     []byte
	V, R, S  *big.Int
}

// TestReferenceEncoding checks the output against the upstream reflection based encoder.
func TestReferenceEncoding(t *testing.T) {
	r, _ := new(big.Int).SetString("28ef61340bd939bc2195fe537567866003e1a15d3c71ff63e1590620aa636276", 16)
	s, _ := new(big.Int).SetString("67cbe9d8997f761aecb703304b3800ccf555c9f3dc64214b297fb1966a3b6d83", 16)
	tx := refTx{
		Nonce:    9,
		GasPrice: big.NewInt(20000000000),
		Gas:      21000,
		To:       bytes.Repeat([]byte{0x35}, 20),
		Value:    big.NewInt(1000000000000000000),
		Data:     bytes.Repeat([]byte{0xAB}, 300),
		V:        big.NewInt(37),
		R:        r,
		S:        s,
	}
	want, err := gethrlp.EncodeToBytes(&tx)
	require.NoError(t, err)

	got, err := EncodeToBytes(NewList(
		Uint64(tx.Nonce), BigInt(tx.GasPrice), Uint64(tx.Gas), Bytes(tx.To), BigInt(tx.Value),
		Bytes(tx.Data), BigInt(tx.V), BigInt(tx.R), BigInt(tx.S),
	))
	require.NoError(t, err)
	require.Equal(t, want, got)

	// and the other direction
	v, err := DecodeBytes(want)
	require.NoError(t, err)
	items, err := v.Items()
	require.NoError(t, err)
	require.Len(t, items, 9)
	nonce, err := items[0].AsUint64()
	require.NoError(t, err)
	require.Equal(t, tx.Nonce, nonce)
	data, err := items[5].AsBytes()
	require.NoError(t, err)
	require.Equal(t, tx.Data, data)
}

func TestReferenceNested(t *testing.T) {
	type nested struct {
		A []uint
		B [][]string
		C string
	}
	in := nested{A: []uint{1, 1024, 0}, B: [][]string{{}, {"x", "yz"}}, C: "dog"}
	want, err := gethrlp.EncodeToBytes(&in)
	require.NoError(t, err)

	got, err := EncodeToBytes(NewList(
		NewList(Uint64(1), Uint64(1024), Uint64(0)),
		NewList(NewList(), NewList(Str("x"), Str("yz"))),
		Str("dog"),
	))
	require.NoError(t, err)
	require.Equal(t, want, got)
}
