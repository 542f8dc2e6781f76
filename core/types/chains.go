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

package types

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethsign/ethsign/common"
)

// ErrInvalidV is returned when a signature marker cannot be mapped to a
// recovery id under the given chain id.
var ErrInvalidV = errors.New("invalid signature marker")

// EIP-155 下 v = chainID*2 + 35 + recid；旧式签名 v = 27 + recid。

// IsLegacyV reports whether v is one of the pre EIP-155 markers 27 and 28.
func IsLegacyV(v *big.Int) bool {
	if v == nil || v.BitLen() > 8 {
		return false
	}
	u := v.Uint64()
	return u == 27 || u == 28
}

// NormalizeChainID maps the zero chain id onto nil, both meaning "no replay
// protection". Non-zero ids are copied.
func NormalizeChainID(id *big.Int) *big.Int {
	if id == nil || id.Sign() == 0 {
		return nil
	}
	return new(big.Int).Set(id)
}

// ToRecoveryID maps a signature marker onto the 0/1 recovery id.
//
// Legacy markers are accepted regardless of chain id. Any other marker needs
// a chain id and must be one of 2*chainID+35 and 2*chainID+36.
func ToRecoveryID(v, chainID *big.Int) (byte, error) {
	if v == nil {
		return 0, fmt.Errorf("%w: missing v", ErrInvalidV)
	}
	if IsLegacyV(v) {
		return byte(v.Uint64() - 27), nil
	}
	chainID = NormalizeChainID(chainID)
	if chainID == nil {
		return 0, fmt.Errorf("%w: invalid legacy v value %v", ErrInvalidV, v)
	}
	recid := new(big.Int).Sub(v, chainIDMul(chainID))
	recid.Sub(recid, common.Big35)
	if recid.Sign() < 0 || recid.Cmp(common.Big1) > 0 {
		return 0, fmt.Errorf("%w: invalid v value %v for chain %v", ErrInvalidV, v, chainID)
	}
	return byte(recid.Uint64()), nil
}

// ToV computes the signature marker for a recovery id. Without a chain id the
// legacy 27/28 marker is produced.
func ToV(recoveryID byte, chainID *big.Int) *big.Int {
	chainID = NormalizeChainID(chainID)
	if chainID == nil {
		return new(big.Int).SetUint64(27 + uint64(recoveryID))
	}
	v := chainIDMul(chainID)
	v.Add(v, common.Big35)
	return v.Add(v, new(big.Int).SetUint64(uint64(recoveryID)))
}

// ChainIDFromV returns the chain id a signature marker commits to, or nil for
// legacy markers and markers too small to carry a chain id.
func ChainIDFromV(v *big.Int) *big.Int {
	if v == nil || IsLegacyV(v) {
		return nil
	}
	id := new(big.Int).Sub(v, common.Big35)
	if id.Sign() < 0 {
		return nil
	}
	id.Rsh(id, 1)
	if id.Sign() < 1 {
		return nil
	}
	return id
}

func chainIDMul(chainID *big.Int) *big.Int {
	return new(big.Int).Lsh(chainID, 1)
}
