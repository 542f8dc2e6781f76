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

package types

import (
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethsign/ethsign/common"
	"github.com/ethsign/ethsign/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// keySigner is a minimal HashSigner over a raw private key.
type keySigner struct{ prv *ecdsa.PrivateKey }

func (k keySigner) SignHash(hash common.Hash, chainID *big.Int) (*Signature, error) {
	rs, recid, err := crypto.SignRecoverable(hash[:], k.prv)
	if err != nil {
		return nil, err
	}
	return NewSignature(rs, recid, chainID), nil
}

// The EIP-155 example: nonce 9, 20 gwei, 21000 gas, 1 ether to 0x3535...35.
var (
	eip155Key, _ = crypto.HexToECDSA("4646464646464646464646464646464646464646464646464646464646464646")
	eip155From   = common.HexToAddress("0x9d8A62f656a8d1615C1294fd71e9CFb3E4855A4F")
	eip155To     = common.HexToAddress("0x3535353535353535353535353535353535353535")

	eip155Signed   = "0xf86c098504a817c800825208943535353535353535353535353535353535353535880de0b6b3a76400008025a028ef61340bd939bc2195fe537567866003e1a15d3c71ff63e1590620aa636276a067cbe9d8997f761aecb703304b3800ccf555c9f3dc64214b297fb1966a3b6d83"
	eip155Unsigned = "0xec098504a817c800825208943535353535353535353535353535353535353535880de0b6b3a764000080018080"
	eip155SigHash  = common.HexToHash("0xdaf5a779ae972f972197303d7b574746c7ef83eadac0f2791ad23db92e4c8e53")
	eip155TxHash   = common.HexToHash("0x33469b22e9f636356c4160a87eb19df52b7412e8eac32a4a55ffe88ea8350788")

	legacySigned   = "0xf86c098504a817c800825208943535353535353535353535353535353535353535880de0b6b3a7640000801ba08383adc8b8ae116f918fb44ca7ff9dfd8012596a5c130c6246a2cc717ba41cdaa053ddfacf5bd4aa7e46d1575acf52636ea659b91f29e2fb91c75567a279738f38"
	legacyUnsigned = "0xe9098504a817c800825208943535353535353535353535353535353535353535880de0b6b3a764000080"
	legacyTxHash   = common.HexToHash("0x9eb247ec381302e0ac0c3c8d8d14969bb49d31ae3d266274d3112e1a86585d94")

	// A second signature of the same payload, produced by a non deterministic signer.
	eip155Alt     = "f86c098504a817c800825208943535353535353535353535353535353535353535880de0b6b3a76400008025a006f3c7fb391722beb8ae599a899fe6fd6f6eae4b0f3df4bbc54bc3c673aa92cda0423bb70e7f851514a73a14cee940ec0acab1bab6fb274fa7b922adbdcbf08611"
	eip155AltHash = common.HexToHash("0xa29482559151047fd1d2326b23ef560e3a4bfc49c3a13fb34e03993270098f29")

	chain416Tx   = "0xf8cb63843b9aca00830115cb9469351bffb36f3d1a6fa4374da03562a1935e704780b864c950f8f0000000000000000000000000762a441605c438742754bb357dd241c8326c25e0000000000000000000000000000000000000000000000000000000000000000a0000000000000000000000000000000000000000000000000000000000000028820364a03944cee478f84e7186b726858a03b7212281dfd0045df6c22bfb101042a8115ca07676eec5290861869cbd4e029cb8aecb17571dfd2de2499809e462595a956e39"
	chain416From = common.HexToAddress("0x22441c383A1E27ACBf99663f1861e4936AC86049")
	chain416Hash = common.HexToHash("0x293f01135ded581684c9232e4c33be940f8c6c3e9305f58db75e5d2fc810de67")
)

func eip155Fields() TxData {
	to := eip155To
	return TxData{
		Nonce:    big.NewInt(9),
		GasPrice: big.NewInt(20_000_000_000),
		GasLimit: big.NewInt(21000),
		To:       &to,
		Value:    new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil),
	}
}

func TestSignEIP155Vector(t *testing.T) {
	tx, err := NewTransaction(DefaultConfig(), eip155Fields(), WithChainID(big.NewInt(1)))
	require.NoError(t, err)
	assert.False(t, tx.IsSigned())
	assert.True(t, tx.Protected(), "unsigned chain bound transactions use the chain preimage")

	unsigned, err := tx.UnsignedEncoding()
	require.NoError(t, err)
	assert.Equal(t, eip155Unsigned, hexutil.Encode(unsigned))

	sighash, err := tx.SigningHash()
	require.NoError(t, err)
	assert.Equal(t, eip155SigHash, sighash)

	require.NoError(t, tx.Sign(keySigner{eip155Key}))
	assert.Equal(t, eip155Signed, tx.Hex())
	assert.Equal(t, eip155TxHash, tx.Hash())
	assert.Equal(t, eip155TxHash.Hex(), tx.ID())

	v, _, _ := tx.RawSignatureValues()
	assert.Equal(t, int64(37), v.Int64())

	from, ok := tx.From()
	require.True(t, ok)
	assert.Equal(t, eip155From, from)
}

func TestSignLegacyVector(t *testing.T) {
	tx, err := NewTransaction(DefaultConfig(), eip155Fields())
	require.NoError(t, err)
	assert.Nil(t, tx.ChainID())

	unsigned, err := tx.UnsignedEncoding()
	require.NoError(t, err)
	assert.Equal(t, legacyUnsigned, hexutil.Encode(unsigned))

	require.NoError(t, tx.Sign(keySigner{eip155Key}))
	assert.Equal(t, legacySigned, tx.Hex())
	assert.Equal(t, legacyTxHash, tx.Hash())
	assert.False(t, tx.Protected())

	from, ok := tx.From()
	require.True(t, ok)
	assert.Equal(t, eip155From, from)
}

func TestDecodeEIP155Vector(t *testing.T) {
	tx, err := DecodeTransaction(DefaultConfig(), []byte(eip155Alt))
	require.NoError(t, err, "decode")

	assert.Equal(t, int64(9), tx.Nonce().Int64())
	assert.Equal(t, int64(20_000_000_000), tx.GasPrice().Int64())
	assert.Equal(t, int64(21000), tx.Gas().Int64())
	assert.Equal(t, eip155To, *tx.To())
	assert.Equal(t, "1000000000000000000", tx.Value().String())
	assert.Empty(t, tx.Data())
	assert.Equal(t, "0x", tx.DataHex())
	assert.Equal(t, int64(1), tx.ChainID().Int64())

	v, r, s := tx.RawSignatureValues()
	assert.Equal(t, int64(37), v.Int64())
	assert.Equal(t, "3144601148722688608716531623347812328676993065715946531989621665587339629261", r.String())
	assert.Equal(t, "29958155393767630265145914935642492209353907522463775796041782419660953650705", s.String())

	sighash, err := tx.SigningHash()
	require.NoError(t, err)
	assert.Equal(t, eip155SigHash, sighash)

	from, ok := tx.From()
	require.True(t, ok)
	assert.Equal(t, eip155From, from)
	assert.Equal(t, eip155AltHash, tx.Hash())
	assert.Equal(t, "0x"+eip155Alt, tx.Hex())
}

func TestDecodeChain416(t *testing.T) {
	tx, err := DecodeTransaction(DefaultConfig(), []byte(chain416Tx))
	require.NoError(t, err, spew.Sdump(tx))

	assert.Equal(t, int64(416), tx.ChainID().Int64())
	assert.Equal(t, int64(99), tx.Nonce().Int64())
	assert.Equal(t, int64(1_000_000_000), tx.GasPrice().Int64())
	assert.Equal(t, int64(71115), tx.Gas().Int64())
	assert.Equal(t, common.HexToAddress("0x69351bffb36f3d1a6fa4374da03562a1935e7047"), *tx.To())
	assert.Len(t, tx.Data(), 100)

	v, _, _ := tx.RawSignatureValues()
	assert.Equal(t, int64(868), v.Int64())

	from, ok := tx.From()
	require.True(t, ok)
	assert.Equal(t, chain416From, from)
	assert.Equal(t, chain416Hash, tx.Hash())
	assert.Equal(t, chain416Tx, tx.Hex())
}

func TestDecodeFormats(t *testing.T) {
	raw := hexutil.MustDecode(eip155Signed)
	inputs := map[string][]byte{
		"binary":   raw,
		"prefixed": []byte(eip155Signed),
		"bare":     []byte(strings.TrimPrefix(eip155Signed, "0x")),
		"spaced":   []byte("  " + eip155Signed + "\n"),
		"upper":    []byte("0x" + strings.ToUpper(eip155Signed[2:])),
	}
	for name, input := range inputs {
		tx, err := DecodeTransaction(DefaultConfig(), input)
		require.NoError(t, err, name)
		assert.Equal(t, eip155TxHash, tx.Hash(), name)
	}
}

func TestDecodeErrors(t *testing.T) {
	// eight fields
	_, err := DecodeTransaction(DefaultConfig(), hexutil.MustDecode("0xc80102030405060708"))
	assert.ErrorIs(t, err, ErrTxFieldCount)

	// not a list
	_, err = DecodeTransaction(DefaultConfig(), []byte{0x83, 'd', 'o', 'g'})
	assert.Error(t, err)

	// invalid hex
	_, err = DecodeTransaction(DefaultConfig(), []byte("0xzz"))
	assert.Error(t, err)

	// recipient of the wrong size
	bad := hexutil.MustDecode("0xcb0102038201020405808080")
	_, err = DecodeTransaction(DefaultConfig(), bad)
	assert.Error(t, err)
}

func TestSignAndRecoverChains(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	want := crypto.PubkeyToAddress(key.PublicKey)

	for _, id := range []*big.Int{nil, big.NewInt(1), big.NewInt(42), big.NewInt(416)} {
		tx, err := NewTransaction(Config{ChainID: id, DataHex: true}, eip155Fields())
		require.NoError(t, err)
		require.NoError(t, tx.Sign(keySigner{key}))

		v, _, _ := tx.RawSignatureValues()
		if id == nil {
			assert.True(t, IsLegacyV(v))
		} else {
			assert.Equal(t, 0, ChainIDFromV(v).Cmp(id))
		}
		from, ok := tx.From()
		require.True(t, ok, "chain %v", id)
		assert.Equal(t, want, from, "chain %v", id)

		// the decoded form recovers the same sender
		dec, err := DecodeTransaction(DefaultConfig(), []byte(tx.Hex()))
		require.NoError(t, err)
		assert.True(t, dec.Equal(tx))
		from, ok = dec.From()
		require.True(t, ok)
		assert.Equal(t, want, from)
	}
}

func TestSetChainIDInvalidates(t *testing.T) {
	tx, err := NewTransaction(DefaultConfig(), eip155Fields(), WithChainID(big.NewInt(1)))
	require.NoError(t, err)
	require.NoError(t, tx.Sign(keySigner{eip155Key}))

	// populate every cache
	signedHash := tx.Hash()
	_, ok := tx.From()
	require.True(t, ok)
	require.NotNil(t, tx.Signature())

	// same id, nothing changes
	tx.SetChainID(big.NewInt(1))
	assert.True(t, tx.IsSigned())
	assert.Equal(t, signedHash, tx.Hash())

	tx.SetChainID(big.NewInt(42))
	assert.False(t, tx.IsSigned())
	assert.Nil(t, tx.Signature())
	_, ok = tx.From()
	assert.False(t, ok)
	assert.NotEqual(t, signedHash, tx.Hash())
	v, r, s := tx.RawSignatureValues()
	assert.Zero(t, v.Sign())
	assert.Zero(t, r.Sign())
	assert.Zero(t, s.Sign())

	require.NoError(t, tx.Sign(keySigner{eip155Key}))
	v, _, _ = tx.RawSignatureValues()
	assert.Contains(t, []int64{119, 120}, v.Int64())
	from, ok := tx.From()
	require.True(t, ok)
	assert.Equal(t, eip155From, from)

	// zero is the same as nil
	tx.SetChainID(new(big.Int))
	assert.Nil(t, tx.ChainID())
	assert.False(t, tx.IsSigned())
}

func TestResignReplacesSignature(t *testing.T) {
	tx, err := NewTransaction(DefaultConfig(), eip155Fields(), WithChainID(big.NewInt(1)))
	require.NoError(t, err)
	require.NoError(t, tx.Sign(keySigner{eip155Key}))
	require.NoError(t, tx.Sign(keySigner{eip155Key}))
	assert.Equal(t, eip155Signed, tx.Hex())

	other, _ := crypto.GenerateKey()
	signed, err := SignTx(tx, keySigner{other})
	require.NoError(t, err)
	from, _ := signed.From()
	assert.Equal(t, crypto.PubkeyToAddress(other.PublicKey), from)
	from, _ = tx.From()
	assert.Equal(t, eip155From, from, "SignTx must not touch the original")
}

type failingSigner struct{}

func (failingSigner) SignHash(common.Hash, *big.Int) (*Signature, error) {
	return nil, errors.New("device unplugged")
}

// 签名失败时原有签名和缓存保持不变。
func TestFailedSignKeepsSignature(t *testing.T) {
	tx, err := DecodeTransaction(DefaultConfig(), []byte(eip155Signed))
	require.NoError(t, err)
	require.True(t, tx.IsSigned())

	assert.EqualError(t, tx.Sign(failingSigner{}), "device unplugged")
	assert.True(t, tx.IsSigned())
	assert.Equal(t, eip155Signed, tx.Hex())
	assert.Equal(t, eip155TxHash, tx.Hash())
	from, ok := tx.From()
	require.True(t, ok)
	assert.Equal(t, eip155From, from)
}

func TestWrongChainRecovery(t *testing.T) {
	tx, err := DecodeTransaction(DefaultConfig(), []byte(eip155Signed))
	require.NoError(t, err)

	fields := tx.Fields()
	fields.V = big.NewInt(29)
	bad, err := NewTransaction(DefaultConfig(), fields)
	require.NoError(t, err)
	_, ok := bad.From()
	assert.False(t, ok)
	_, err = Sender(bad)
	assert.ErrorIs(t, err, ErrInvalidV)

	unsigned, err := NewTransaction(DefaultConfig(), eip155Fields())
	require.NoError(t, err)
	_, ok = unsigned.From()
	assert.False(t, ok)
}

func TestIntrinsicGas(t *testing.T) {
	assert.Equal(t, uint64(21000), IntrinsicGas(nil))
	assert.Equal(t, uint64(21000+4+68), IntrinsicGas([]byte{0, 1}))

	data := hexutil.MustDecode(chain416Tx)
	tx, err := DecodeTransaction(DefaultConfig(), data)
	require.NoError(t, err)
	assert.Equal(t, uint64(23064), IntrinsicGas(tx.Data()))
}

func TestGasLimitTooLow(t *testing.T) {
	fields := eip155Fields()
	fields.GasLimit = big.NewInt(20999)
	_, err := NewTransaction(DefaultConfig(), fields)
	assert.ErrorIs(t, err, ErrGasLimitTooLow)
	assert.ErrorIs(t, err, ErrInvalidTransaction)
	assert.ErrorIs(t, err, ErrValidation)

	fields.GasLimit = big.NewInt(21000)
	tx, err := NewTransaction(DefaultConfig(), fields)
	require.NoError(t, err)
	err = tx.SetData([]byte{1})
	assert.ErrorIs(t, err, ErrGasLimitTooLow)
	assert.Empty(t, tx.Data(), "rejected data must not be stored")
}

func TestValuesTooHigh(t *testing.T) {
	max := new(big.Int).Sub(new(big.Int).Lsh(common.Big1, 256), common.Big1)
	over := new(big.Int).Lsh(common.Big1, 256)

	for _, set := range []func(*TxData, *big.Int){
		func(d *TxData, x *big.Int) { d.Nonce = x },
		func(d *TxData, x *big.Int) { d.GasPrice = x },
		func(d *TxData, x *big.Int) { d.GasLimit = x },
		func(d *TxData, x *big.Int) { d.Value = x },
	} {
		fields := eip155Fields()
		set(&fields, max)
		_, err := NewTransaction(DefaultConfig(), fields)
		assert.NoError(t, err)

		set(&fields, over)
		_, err = NewTransaction(DefaultConfig(), fields)
		assert.ErrorIs(t, err, ErrValuesTooHigh)
		assert.Contains(t, err.Error(), "values way too high")

		set(&fields, big.NewInt(-1))
		_, err = NewTransaction(DefaultConfig(), fields)
		assert.ErrorIs(t, err, ErrValuesTooHigh)
	}
}

func TestContractCreation(t *testing.T) {
	fields := eip155Fields()
	fields.To = nil
	fields.GasLimit = big.NewInt(100000)
	fields.Data = []byte{0x60, 0x00}
	tx, err := NewTransaction(DefaultConfig(), fields)
	require.NoError(t, err)
	assert.Nil(t, tx.To())
	assert.Equal(t, "", tx.Map()["to"])

	require.NoError(t, tx.Sign(keySigner{eip155Key}))
	dec, err := DecodeTransaction(DefaultConfig(), []byte(tx.Hex()))
	require.NoError(t, err)
	assert.Nil(t, dec.To())
	assert.True(t, dec.Equal(tx))
}

func TestSetDataString(t *testing.T) {
	fields := eip155Fields()
	fields.GasLimit = big.NewInt(100000)

	tx, err := NewTransaction(Config{DataHex: true}, fields)
	require.NoError(t, err)
	require.NoError(t, tx.SetDataString("0xdeadbeef"))
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, tx.Data())
	require.NoError(t, tx.SetDataString("cafe"))
	assert.Equal(t, "0xcafe", tx.DataHex())
	assert.Equal(t, "0xcafe", tx.Map()["data"])
	assert.Error(t, tx.SetDataString("0xnope"))

	bin, err := NewTransaction(Config{DataHex: false}, fields)
	require.NoError(t, err)
	require.NoError(t, bin.SetDataString("hello"))
	assert.Equal(t, []byte("hello"), bin.DataBin())
	assert.Equal(t, []byte("hello"), bin.Map()["data"])
}

func TestSetDataInvalidatesHash(t *testing.T) {
	fields := eip155Fields()
	fields.GasLimit = big.NewInt(100000)
	tx, err := NewTransaction(DefaultConfig(), fields)
	require.NoError(t, err)
	before := tx.Hash()
	require.NoError(t, tx.SetData([]byte{1}))
	assert.NotEqual(t, before, tx.Hash())
}

func TestEqualAndCopy(t *testing.T) {
	a, err := DecodeTransaction(DefaultConfig(), []byte(eip155Signed))
	require.NoError(t, err)
	b := a.Copy()
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(nil))

	b.SetChainID(big.NewInt(5))
	assert.False(t, a.Equal(b))
	assert.True(t, a.IsSigned())

	c, err := DecodeTransaction(DefaultConfig(), []byte(eip155Alt))
	require.NoError(t, err)
	assert.False(t, a.Equal(c), "different signatures")

	// accessors hand out copies
	a.Nonce().SetInt64(100)
	a.To()[0] = 0xff
	assert.Equal(t, int64(9), a.Nonce().Int64())
	assert.Equal(t, eip155To, *a.To())
}

func TestTransactionMap(t *testing.T) {
	tx, err := DecodeTransaction(DefaultConfig(), []byte(eip155Signed))
	require.NoError(t, err)
	m := tx.Map()
	assert.Equal(t, int64(9), m["nonce"].(*big.Int).Int64())
	assert.Equal(t, int64(20_000_000_000), m["gas_price"].(*big.Int).Int64())
	assert.Equal(t, int64(21000), m["gas_limit"].(*big.Int).Int64())
	assert.Equal(t, eip155To.Hex(), m["to"])
	assert.Equal(t, "0x", m["data"])
	assert.Equal(t, int64(37), m["v"].(*big.Int).Int64())
	assert.Equal(t, int64(1), m["chain_id"].(*big.Int).Int64())

	legacy, err := DecodeTransaction(DefaultConfig(), []byte(legacySigned))
	require.NoError(t, err)
	_, ok := legacy.Map()["chain_id"]
	assert.False(t, ok)
}

func TestTransactionJSON(t *testing.T) {
	tx, err := DecodeTransaction(DefaultConfig(), []byte(chain416Tx))
	require.NoError(t, err)
	enc, err := json.Marshal(tx)
	require.NoError(t, err)

	var obj map[string]interface{}
	require.NoError(t, json.Unmarshal(enc, &obj))
	assert.Equal(t, "0x63", obj["nonce"])
	assert.Equal(t, "0x1a0", obj["chainId"])
	assert.Equal(t, chain416Hash.Hex(), obj["hash"])
	assert.True(t, strings.EqualFold(chain416From.Hex(), obj["from"].(string)))

	var dec Transaction
	require.NoError(t, json.Unmarshal(enc, &dec))
	assert.True(t, dec.Equal(tx))
	assert.Equal(t, chain416Hash, dec.Hash())
	from, ok := dec.From()
	require.True(t, ok)
	assert.Equal(t, chain416From, from)

	// unsigned chain bound transactions keep their chain id through chainId
	unsigned, err := NewTransaction(DefaultConfig(), eip155Fields(), WithChainID(big.NewInt(3)))
	require.NoError(t, err)
	enc, err = json.Marshal(unsigned)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(enc, &dec))
	assert.Equal(t, int64(3), dec.ChainID().Int64())
	assert.False(t, dec.IsSigned())

	err = json.Unmarshal([]byte(`{"gasPrice":"0x1","gas":"0x5208","value":"0x0"}`), &dec)
	assert.Error(t, err)
	err = json.Unmarshal([]byte(`{"nonce":"0x0","gasPrice":"0x1","gas":"0x1","value":"0x0"}`), &dec)
	assert.True(t, errors.Is(err, ErrGasLimitTooLow))
}

func TestParseAddress(t *testing.T) {
	for _, in := range []string{"", "0x"} {
		addr, err := ParseAddress(in)
		require.NoError(t, err)
		assert.Nil(t, addr)
	}
	for _, in := range []string{
		"3535353535353535353535353535353535353535",
		"0x3535353535353535353535353535353535353535",
	} {
		addr, err := ParseAddress(in)
		require.NoError(t, err)
		assert.Equal(t, eip155To, *addr)
	}
	_, err := ParseAddress("0x1234")
	assert.ErrorIs(t, err, common.ErrInvalidAddress)
}
