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
	"sort"
	"strings"
)

// Well known chain ids used for replay protection (EIP-155).
var (
	MainnetChainID        = big.NewInt(1)
	MordenChainID         = big.NewInt(2)
	RopstenChainID        = big.NewInt(3)
	RinkebyChainID        = big.NewInt(4)
	KovanChainID          = big.NewInt(42)
	ClassicChainID        = big.NewInt(61)
	ClassicTestnetChainID = big.NewInt(62)
)

var namedChains = map[string]*big.Int{
	"mainnet":         MainnetChainID,
	"morden":          MordenChainID,
	"ropsten":         RopstenChainID,
	"rinkeby":         RinkebyChainID,
	"kovan":           KovanChainID,
	"classic":         ClassicChainID,
	"classic-testnet": ClassicTestnetChainID,
}

// ChainIDByName returns a copy of the chain id registered under name. Lookup
// ignores case.
//
// 名称查找不区分大小写。
func ChainIDByName(name string) (*big.Int, bool) {
	id, ok := namedChains[strings.ToLower(name)]
	if !ok {
		return nil, false
	}
	return new(big.Int).Set(id), true
}

// ChainNames lists the registered chain names in sorted order.
func ChainNames() []string {
	names := make([]string, 0, len(namedChains))
	for name := range namedChains {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
