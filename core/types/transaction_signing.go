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
	"math/big"

	"github.com/ethsign/ethsign/common"
	"github.com/ethsign/ethsign/crypto"
	"github.com/ethsign/ethsign/log"
)

var errUnsigned = errors.New("transaction is not signed")

// HashSigner signs a 32 byte digest for a chain. The returned signature
// carries the chain aware v marker.
type HashSigner interface {
	SignHash(hash common.Hash, chainID *big.Int) (*Signature, error)
}

// sigCache is used to cache the derived sender.
//
// sigCache 缓存从签名恢复出的发送者；ok 为 false 表示恢复失败。
type sigCache struct {
	from common.Address
	ok   bool
}

// Sign signs the transaction for its own chain id and stores v, r, s. The
// preimage is computed without the previous signature, so a chain bound
// transaction always signs the chainID, 0, 0 preimage. On failure the
// transaction is left unchanged.
func (tx *Transaction) Sign(signer HashSigner) error {
	unsigned := tx.Copy()
	unsigned.inner.V, unsigned.inner.R, unsigned.inner.S = new(big.Int), new(big.Int), new(big.Int)

	sighash, err := unsigned.SigningHash()
	if err != nil {
		return err
	}
	sig, err := signer.SignHash(sighash, tx.chainID)
	if err != nil {
		return err
	}
	if sig.V == nil || sig.R == nil || sig.S == nil {
		return ErrInvalidSig
	}
	tx.inner.V, tx.inner.R, tx.inner.S = copyBig(sig.V), copyBig(sig.R), copyBig(sig.S)
	tx.invalidateCaches()
	log.Trace("Signed transaction", "hash", tx.Hash(), "chainid", tx.chainID, "v", tx.inner.V)
	return nil
}

// SignTx returns a signed copy of tx.
func SignTx(tx *Transaction, signer HashSigner) (*Transaction, error) {
	cpy := tx.Copy()
	if err := cpy.Sign(signer); err != nil {
		return nil, err
	}
	return cpy, nil
}

// From recovers the sender. It reports false when the transaction is unsigned
// or the signature does not recover under the chain id v commits to. The
// result is cached until the signature or chain id changes.
func (tx *Transaction) From() (common.Address, bool) {
	if sc := tx.from.Load(); sc != nil {
		return sc.from, sc.ok
	}
	addr, err := tx.sender()
	if err != nil {
		log.Trace("Sender recovery failed", "hash", tx.Hash(), "err", err)
	}
	tx.from.Store(&sigCache{from: addr, ok: err == nil})
	return addr, err == nil
}

// Sender is like From but returns the reason recovery failed.
func Sender(tx *Transaction) (common.Address, error) {
	return tx.sender()
}

func (tx *Transaction) sender() (common.Address, error) {
	if !tx.IsSigned() {
		return common.Address{}, errUnsigned
	}
	V, R, S := tx.RawSignatureValues()
	recid, err := ToRecoveryID(V, ChainIDFromV(V))
	if err != nil {
		return common.Address{}, err
	}
	sighash, err := tx.SigningHash()
	if err != nil {
		return common.Address{}, err
	}
	return recoverPlain(sighash, R, S, recid)
}

func recoverPlain(sighash common.Hash, R, S *big.Int, recid byte) (common.Address, error) {
	if !crypto.ValidateSignatureValues(recid, R, S, false) {
		return common.Address{}, ErrInvalidSig
	}
	// encode the signature in uncompressed format
	r, s := R.Bytes(), S.Bytes()
	sig := make([]byte, crypto.SignatureLength)
	copy(sig[32-len(r):32], r)
	copy(sig[64-len(s):64], s)
	sig[crypto.RecoveryIDOffset] = recid
	// recover the public key from the signature
	pub, err := crypto.Ecrecover(sighash[:], sig)
	if err != nil {
		return common.Address{}, err
	}
	if len(pub) == 0 || pub[0] != 4 {
		return common.Address{}, errors.New("invalid public key")
	}
	var addr common.Address
	copy(addr[:], crypto.Keccak256(pub[1:])[12:])
	return addr, nil
}
