// Copyright 2016 The go-ethereum Authors
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

package params

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChainIDByName(t *testing.T) {
	tests := map[string]int64{
		"mainnet":         1,
		"Morden":          2,
		"ROPSTEN":         3,
		"rinkeby":         4,
		"kovan":           42,
		"classic":         61,
		"classic-testnet": 62,
	}
	for name, want := range tests {
		id, ok := ChainIDByName(name)
		require.True(t, ok, name)
		assert.Equal(t, 0, id.Cmp(big.NewInt(want)), name)
	}
	_, ok := ChainIDByName("goerli")
	assert.False(t, ok)
}

// 返回的是副本，修改它不影响内置的链 ID。
func TestChainIDByNameCopies(t *testing.T) {
	id, _ := ChainIDByName("mainnet")
	id.SetInt64(99)
	assert.Equal(t, int64(1), MainnetChainID.Int64())
}

func TestChainNames(t *testing.T) {
	names := ChainNames()
	assert.Len(t, names, 7)
	assert.Equal(t, "classic", names[0])
}
