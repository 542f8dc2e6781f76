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
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethsign/ethsign/common"
	"github.com/ethsign/ethsign/core/types"
	"github.com/ethsign/ethsign/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	momKey     = "5a37533acfa3ff9386aed01e16c0e7a79038ce05cc383e290d360b8ce9cd6fdf"
	momSig     = hexutil.MustDecode("0x1ce2f13b4123a23a4a280ac4adcba1ffa3f3848f494dc1de440af43f677e0e01260fb4667ed117d555659b249702c8215162b3f0ee09628813a4ef83616f99f180")
	momSigElse = hexutil.MustDecode("0x1b21a66b55af07a2b0981e3a0ba1768382c5bdbed3d16bcc58a8011425b3bbc090f881cc13d16792af55438637fbe9a2a81d85d6bb18b87b6c08aa9c20ce1341f4")

	addrKey = "c3a4349f6e57cfd2cbba275e3b3d15a2e4cf00c89e067f6e05bfee25208f9cbb"
)

func TestNewKeyUnique(t *testing.T) {
	k1, err := NewKey()
	require.NoError(t, err)
	k2, err := NewKey()
	require.NoError(t, err)
	assert.NotEqual(t, k1.PrivateHex(), k2.PrivateHex())
	assert.NotEqual(t, k1.PublicHex(), k2.PublicHex())

	again, err := KeyFromHex(k1.PrivateHex())
	require.NoError(t, err)
	assert.Equal(t, k1.PrivateHex(), again.PrivateHex())
	assert.Equal(t, k1.PublicHex(), again.PublicHex())
	assert.Equal(t, k1.Address(), again.Address())
}

func TestKeyFromHex(t *testing.T) {
	key, err := KeyFromHex("0x" + addrKey)
	require.NoError(t, err)
	assert.Equal(t, addrKey, key.PrivateHex())
	assert.Len(t, key.PublicBytes(), 65)
	assert.Equal(t, byte(4), key.PublicBytes()[0])
	assert.Equal(t, "04", key.PublicHex()[:2])

	_, err = KeyFromHex("zz")
	assert.Error(t, err)
	_, err = KeyFromHex("00")
	assert.Error(t, err)
}

func TestKeyAddress(t *testing.T) {
	key, err := KeyFromHex(addrKey)
	require.NoError(t, err)
	assert.Equal(t, "0x759b427456623a33030bbC2195439C22A8a51d25", key.Address().Hex())
	assert.Equal(t, key.Address(), key.Account().Address)
}

func TestVerifySignatureVectors(t *testing.T) {
	key, err := KeyFromHex(momKey)
	require.NoError(t, err)
	msg := []byte("Hi Mom!")

	ok, err := key.VerifySignature(msg, momSig, nil)
	require.NoError(t, err)
	assert.True(t, ok)

	// signed by another key
	ok, err = key.VerifySignature(msg, momSigElse, nil)
	require.NoError(t, err)
	assert.False(t, ok)

	// truncated
	ok, err = key.VerifySignature(msg, hexutil.MustDecode("0x1b21a66b"), nil)
	require.NoError(t, err)
	assert.False(t, ok)

	// legacy markers verify under any chain id
	ok, err = key.VerifySignature(msg, momSig, big.NewInt(1))
	require.NoError(t, err)
	assert.True(t, ok)

	// a marker that is neither legacy nor chain aware is an error, not false
	bad := common.CopyBytes(momSig)
	bad[0] = 29
	ok, err = key.VerifySignature(msg, bad, nil)
	assert.ErrorIs(t, err, types.ErrInvalidV)
	assert.False(t, ok)
}

func TestSignVector(t *testing.T) {
	key, err := KeyFromHex(addrKey)
	require.NoError(t, err)
	sig, err := key.Sign([]byte("Hi Mom!"), nil)
	require.NoError(t, err)
	assert.Equal(t, "0xb1b55ae30d36c2a1b2025853975c0c12798282c06e71b8ed498b0337c235a751", hexutil.EncodeBig(sig.R))
	assert.Equal(t, "0x28c4ceae38863e22a21ad3993f1d943cff465ee595a11a3f45416cd9568ee88b", hexutil.EncodeBig(sig.S))
	assert.Equal(t, int64(27), sig.V.Int64())

	sig, err = key.Sign([]byte("Hi Mom!"), big.NewInt(1))
	require.NoError(t, err)
	assert.Equal(t, int64(37), sig.V.Int64())
}

func TestSignVerifyChains(t *testing.T) {
	key, err := NewKey()
	require.NoError(t, err)
	other, err := NewKey()
	require.NoError(t, err)
	msg := []byte("Hi Mom!")
	halfN := new(big.Int).Rsh(crypto.S256().Params().N, 1)

	for _, id := range []*big.Int{nil, big.NewInt(1), big.NewInt(42), big.NewInt(416)} {
		for i := 0; i < 10; i++ {
			sig, err := key.Sign(msg, id)
			require.NoError(t, err)
			assert.True(t, sig.S.Cmp(halfN) <= 0, "s must be low")

			ok, err := key.Verify(msg, sig, id)
			require.NoError(t, err)
			assert.True(t, ok, "chain %v", id)

			ok, err = other.Verify(msg, sig, id)
			require.NoError(t, err)
			assert.False(t, ok)

			ok, err = key.Verify([]byte("Hi Dad!"), sig, id)
			require.NoError(t, err)
			assert.False(t, ok)
		}
	}

	// a chain aware signature replayed on another chain is rejected
	sig, err := key.Sign(msg, big.NewInt(1))
	require.NoError(t, err)
	_, err = key.Verify(msg, sig, big.NewInt(42))
	assert.ErrorIs(t, err, types.ErrInvalidV)
	_, err = key.Verify(msg, sig, nil)
	assert.ErrorIs(t, err, types.ErrInvalidV)
}

func TestSignWithoutPrivateKey(t *testing.T) {
	var key Key
	_, err := key.SignHash(common.Hash{}, nil)
	assert.ErrorIs(t, err, ErrNoPrivateKey)
	_, err = key.PersonalSign([]byte("x"), nil)
	assert.ErrorIs(t, err, ErrNoPrivateKey)
}

func TestPersonalRecoverVector(t *testing.T) {
	sig := hexutil.MustDecode("0x3eb24bd327df8c2b614c3f652ec86efe13aa721daf203820241c44861a26d37f2bffc6e03e68fc4c3d8d967054c9cb230ed34339b12ef89d512b42ae5bf8c2ae1c")
	want := "043e5b33f0080491e21f9f5f7566de59a08faabf53edbc3c32aaacc438552b25fdde531f8d1053ced090e9879cbf2b0d1c054e4b25941dab9254d2070f39418afc"

	pub, err := PersonalRecover([]byte("test"), sig)
	require.NoError(t, err)
	assert.Equal(t, want, common.Bytes2Hex(pub))

	addr, err := PersonalRecoverAddress([]byte("test"), sig)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0x101b17d50c01b555ccb7534d46caaca70d0b9b55"), addr)

	// raw recovery ids are accepted too
	raw := common.CopyBytes(sig)
	raw[64] = 1
	pub, err = PersonalRecover([]byte("test"), raw)
	require.NoError(t, err)
	assert.Equal(t, want, common.Bytes2Hex(pub))

	_, err = PersonalRecover([]byte("test"), sig[:64])
	assert.ErrorIs(t, err, ErrSignatureLength)
}

func TestPersonalSignVector(t *testing.T) {
	key, err := KeyFromHex(addrKey)
	require.NoError(t, err)
	sig, err := key.PersonalSignLegacy([]byte("Hi Mom!"))
	require.NoError(t, err)
	assert.Equal(t, "f488dc3dffcf64a641069ed29d616cc220f824eceb0cc09e9f2b84884473c927174d07e99af48a47062b391127e5e1363cbcf64d16282d94a1fa3ed7ebe1c4431c", common.Bytes2Hex(sig))
}

func TestPersonalSignRecover(t *testing.T) {
	key, err := NewKey()
	require.NoError(t, err)
	msg := []byte("Hi Mom!")

	for _, id := range []*big.Int{nil, big.NewInt(1), big.NewInt(416)} {
		for i := 0; i < 10; i++ {
			sig, err := key.PersonalSign(msg, id)
			require.NoError(t, err)
			pub, err := PersonalRecover(msg, sig)
			require.NoError(t, err, "chain %v", id)
			assert.Equal(t, key.PublicHex(), common.Bytes2Hex(pub))
		}
	}
	sig, err := key.PersonalSign(msg, big.NewInt(416))
	require.NoError(t, err)
	assert.Len(t, sig, 66)
}

func TestTextHash(t *testing.T) {
	hash, msg := TextAndHash([]byte("Hello Joe"))
	assert.Equal(t, "\x19Ethereum Signed Message:\n9Hello Joe", msg)
	assert.Equal(t, "0xa080337ae51c4e064c189e113edd0ba391df9206e2f49db658bb32cf2911730b", hexutil.Encode(hash))
	assert.Equal(t, hash, TextHash([]byte("Hello Joe")))
}

func TestKeySignsTransaction(t *testing.T) {
	key, err := KeyFromHex("4646464646464646464646464646464646464646464646464646464646464646")
	require.NoError(t, err)
	to := common.HexToAddress("0x3535353535353535353535353535353535353535")
	tx, err := types.NewTransaction(types.Config{ChainID: big.NewInt(1)}, types.TxData{
		Nonce:    big.NewInt(9),
		GasPrice: big.NewInt(20_000_000_000),
		GasLimit: big.NewInt(21000),
		To:       &to,
		Value:    new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil),
	})
	require.NoError(t, err)
	require.NoError(t, tx.Sign(key))
	assert.Equal(t, "0x33469b22e9f636356c4160a87eb19df52b7412e8eac32a4a55ffe88ea8350788", tx.ID())

	from, ok := tx.From()
	require.True(t, ok)
	assert.Equal(t, key.Address(), from)
}
