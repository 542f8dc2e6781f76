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

	"github.com/ethsign/ethsign/crypto"
)

// SignatureLength is the size of the fixed width v || r || s form.
const SignatureLength = 1 + 32 + 32

var (
	// ErrSignatureMarker is returned when v does not fit the single marker byte
	// of the fixed width signature form.
	ErrSignatureMarker = errors.New("signature marker does not fit in one byte")
	// ErrSignatureLength is returned for byte signatures of the wrong size.
	ErrSignatureLength = errors.New("invalid signature length")
	errSignatureValue  = errors.New("signature value exceeds 256 bits")
)

// Signature is a recoverable ECDSA signature with its chain aware marker.
//
// Signature 保存线上的 v、r、s。r、s 在 65 字节形式中左侧补零到 32 字节。
type Signature struct {
	V *big.Int
	R *big.Int
	S *big.Int
}

// NewSignature assembles a signature from the [R || S] pair returned by the
// recoverable signer and the recovery id, deriving V for the chain.
func NewSignature(rs [64]byte, recid byte, chainID *big.Int) *Signature {
	return &Signature{
		V: ToV(recid, chainID),
		R: new(big.Int).SetBytes(rs[:32]),
		S: new(big.Int).SetBytes(rs[32:]),
	}
}

// SignatureFromBytes parses the 65 byte v || r || s form.
func SignatureFromBytes(b []byte) (*Signature, error) {
	if len(b) != SignatureLength {
		return nil, fmt.Errorf("%w: %d", ErrSignatureLength, len(b))
	}
	return &Signature{
		V: new(big.Int).SetUint64(uint64(b[0])),
		R: new(big.Int).SetBytes(b[1:33]),
		S: new(big.Int).SetBytes(b[33:]),
	}, nil
}

// Bytes returns the 65 byte v || r || s form. R and S are left padded to 32
// bytes each.
func (sig *Signature) Bytes() ([]byte, error) {
	if sig.V == nil || sig.V.Sign() < 0 || sig.V.BitLen() > 8 {
		return nil, fmt.Errorf("%w: v=%v", ErrSignatureMarker, sig.V)
	}
	if err := sig.checkRS(); err != nil {
		return nil, err
	}
	out := make([]byte, SignatureLength)
	out[0] = byte(sig.V.Uint64())
	sig.R.FillBytes(out[1:33])
	sig.S.FillBytes(out[33:])
	return out, nil
}

// Compact returns the r || s || recid form consumed by crypto.Ecrecover. The
// recovery id is derived from V under chainID.
//
// 转换为 r || s || recid 形式，供公钥恢复使用。
func (sig *Signature) Compact(chainID *big.Int) ([]byte, error) {
	recid, err := ToRecoveryID(sig.V, chainID)
	if err != nil {
		return nil, err
	}
	if err := sig.checkRS(); err != nil {
		return nil, err
	}
	out := make([]byte, crypto.SignatureLength)
	sig.R.FillBytes(out[:32])
	sig.S.FillBytes(out[32:64])
	out[crypto.RecoveryIDOffset] = recid
	return out, nil
}

// IsZero reports whether all three values are zero or unset.
func (sig *Signature) IsZero() bool {
	return isZero(sig.V) && isZero(sig.R) && isZero(sig.S)
}

// Copy returns a deep copy of the signature.
func (sig *Signature) Copy() *Signature {
	return &Signature{V: copyBig(sig.V), R: copyBig(sig.R), S: copyBig(sig.S)}
}

func (sig *Signature) String() string {
	return fmt.Sprintf("Signature{V: %v, R: %#x, S: %#x}", sig.V, sig.R, sig.S)
}

func (sig *Signature) checkRS() error {
	if sig.R == nil || sig.S == nil || sig.R.Sign() < 0 || sig.S.Sign() < 0 {
		return errSignatureValue
	}
	if sig.R.BitLen() > 256 || sig.S.BitLen() > 256 {
		return errSignatureValue
	}
	return nil
}

func isZero(x *big.Int) bool {
	return x == nil || x.Sign() == 0
}

func copyBig(x *big.Int) *big.Int {
	if x == nil {
		return nil
	}
	return new(big.Int).Set(x)
}
