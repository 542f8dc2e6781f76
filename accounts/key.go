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

package accounts

import (
	"bytes"
	"crypto/ecdsa"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethsign/ethsign/common"
	"github.com/ethsign/ethsign/core/types"
	"github.com/ethsign/ethsign/crypto"
	"github.com/ethsign/ethsign/log"
)

var _ types.HashSigner = (*Key)(nil)

// Key is a secp256k1 key pair. A Key is immutable once constructed and may be
// shared between goroutines.
//
// Key 持有私钥和对应的未压缩公钥，构造后不可变。
type Key struct {
	priv    *ecdsa.PrivateKey
	pub     []byte // uncompressed, 0x04 prefixed
	address common.Address
}

// NewKey generates a fresh random key.
func NewKey() (*Key, error) {
	priv, err := crypto.GenerateKey()
	if err != nil {
		return nil, err
	}
	return KeyFromECDSA(priv), nil
}

// KeyFromHex loads a key from its 32 byte private scalar in hex, with or
// without 0x prefix.
func KeyFromHex(privHex string) (*Key, error) {
	priv, err := crypto.HexToECDSA(privHex)
	if err != nil {
		return nil, err
	}
	return KeyFromECDSA(priv), nil
}

// KeyFromECDSA wraps an existing private key.
func KeyFromECDSA(priv *ecdsa.PrivateKey) *Key {
	return &Key{
		priv:    priv,
		pub:     crypto.FromECDSAPub(&priv.PublicKey),
		address: crypto.PubkeyToAddress(priv.PublicKey),
	}
}

// PrivateKey returns the underlying private key.
func (k *Key) PrivateKey() *ecdsa.PrivateKey { return k.priv }

// PrivateHex returns the private scalar as 64 lowercase hex digits.
func (k *Key) PrivateHex() string {
	return hex.EncodeToString(crypto.FromECDSA(k.priv))
}

// PublicBytes returns the 65 byte uncompressed public key.
func (k *Key) PublicBytes() []byte { return common.CopyBytes(k.pub) }

// PublicHex returns the uncompressed public key as hex, starting with 04.
func (k *Key) PublicHex() string { return hex.EncodeToString(k.pub) }

// Address returns the account address. Address.Hex yields the EIP-55 form.
func (k *Key) Address() common.Address { return k.address }

// Account returns the account controlled by the key.
func (k *Key) Account() Account { return Account{Address: k.address} }

// SignHash signs a 32 byte digest. The signature is low-s normalized and its
// v marker is derived from the recovery id under chainID.
func (k *Key) SignHash(hash common.Hash, chainID *big.Int) (*types.Signature, error) {
	if k.priv == nil {
		return nil, ErrNoPrivateKey
	}
	rs, recid, err := crypto.SignRecoverable(hash[:], k.priv)
	if err != nil {
		return nil, err
	}
	return types.NewSignature(rs, recid, chainID), nil
}

// Sign hashes message with keccak256 and signs the digest.
func (k *Key) Sign(message []byte, chainID *big.Int) (*types.Signature, error) {
	return k.SignHash(crypto.Keccak256Hash(message), chainID)
}

// Verify reports whether sig is a signature of keccak256(message) by this key.
// A v marker that does not fit chainID is an error. Any other mismatch is a
// false result.
func (k *Key) Verify(message []byte, sig *types.Signature, chainID *big.Int) (bool, error) {
	if sig == nil {
		return false, nil
	}
	compact, err := sig.Compact(chainID)
	if err != nil {
		if errors.Is(err, types.ErrInvalidV) {
			return false, err
		}
		return false, nil
	}
	pub, err := crypto.Ecrecover(crypto.Keccak256(message), compact)
	if err != nil {
		log.Debug("Signature recovery failed", "err", err)
		return false, nil
	}
	return bytes.Equal(pub, k.pub), nil
}

// VerifySignature is like Verify for the 65 byte v || r || s form. Signatures
// of any other length do not verify.
func (k *Key) VerifySignature(message, sig []byte, chainID *big.Int) (bool, error) {
	parsed, err := types.SignatureFromBytes(sig)
	if err != nil {
		return false, nil
	}
	return k.Verify(message, parsed, chainID)
}

// PersonalSign signs message under the personal message prefix and returns
// r || s || v with v derived from chainID. v is appended in big endian form,
// so chain ids above 109 may make the signature longer than 65 bytes.
//
// 个人消息签名：先加上 "\x19Ethereum Signed Message:\n" 前缀再哈希，
// 防止与交易签名混淆。
func (k *Key) PersonalSign(message []byte, chainID *big.Int) ([]byte, error) {
	rs, recid, err := k.signText(message)
	if err != nil {
		return nil, err
	}
	return append(rs[:], types.ToV(recid, chainID).Bytes()...), nil
}

// PersonalSignLegacy is like PersonalSign but always uses the 27/28 marker.
func (k *Key) PersonalSignLegacy(message []byte) ([]byte, error) {
	return k.PersonalSign(message, nil)
}

func (k *Key) signText(message []byte) ([64]byte, byte, error) {
	if k.priv == nil {
		return [64]byte{}, 0, ErrNoPrivateKey
	}
	return crypto.SignRecoverable(TextHash(message), k.priv)
}

// PersonalRecover returns the uncompressed public key that produced a
// personal message signature in r || s || v form. v may be a raw 0/1
// recovery id, a legacy 27/28 marker or a chain aware marker.
func PersonalRecover(message, sig []byte) ([]byte, error) {
	if len(sig) < 65 {
		return nil, fmt.Errorf("%w: have %d", ErrSignatureLength, len(sig))
	}
	v := new(big.Int).SetBytes(sig[64:])
	var recid byte
	if v.Cmp(common.Big1) <= 0 {
		recid = byte(v.Uint64())
	} else {
		var err error
		if recid, err = types.ToRecoveryID(v, types.ChainIDFromV(v)); err != nil {
			return nil, err
		}
	}
	compact := make([]byte, crypto.SignatureLength)
	copy(compact, sig[:64])
	compact[crypto.RecoveryIDOffset] = recid
	return crypto.Ecrecover(TextHash(message), compact)
}

// PersonalRecoverAddress is like PersonalRecover but returns the signer address.
func PersonalRecoverAddress(message, sig []byte) (common.Address, error) {
	pub, err := PersonalRecover(message, sig)
	if err != nil {
		return common.Address{}, err
	}
	key, err := crypto.UnmarshalPubkey(pub)
	if err != nil {
		return common.Address{}, err
	}
	return crypto.PubkeyToAddress(*key), nil
}
