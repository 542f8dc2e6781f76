// Copyright 2017 The go-ethereum Authors
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

package keystore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethsign/ethsign/accounts"
	"github.com/ethsign/ethsign/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	pbkdf2Key      = "7a28b5ba57c53603b0b07b56bba752f7784bf506fa95edc395f5cf6c7514fe9d"
	pbkdf2Address  = "008aeeda4d805471df9b2a5b0f38a0c3bcba786b"
	pbkdf2Password = "testpassword"
	pbkdf2IV       = "6087dab2f9fdbbfaddc31a909735c1e6"
	pbkdf2Salt     = "ae3cd4e7013836a3df6bd7241b12db061dbe2c6785853cce422d148a624ce0bd"
	pbkdf2ID       = "3198bc9c-6672-5ab3-d995-4942343ae5b6"
	pbkdf2Cipher   = "5318b4d5bcd28de64ee5559e671353e16f075ecae9f99c7a79a38af5f869aa46"
	pbkdf2MAC      = "517ead924a9d0dc3124507e3393d175ce3ff7c1e96529c6c555ce9e51205e9b2"

	veryLightScryptJSON = `{"address":"45dea0fb0bba44f4fcf290bba71fd57d7117cbb8","crypto":{"cipher":"aes-128-ctr","ciphertext":"b87781948a1befd247bff51ef4063f716cf6c2d3481163e9a8f42e1f9bb74145","cipherparams":{"iv":"dc4926b48a105133d2f16b96833abf1e"},"kdf":"scrypt","kdfparams":{"dklen":32,"n":2,"p":1,"r":8,"salt":"004244bbdc51cadda545b1cfa43cff9ed2ae88e08c61f1479dbb45410722f8f0"},"mac":"39990c1684557447940d4c69e06b1b82b2aceacb43f284df65c956daf3046b85"},"id":"ce541d8d-c79b-40f8-9f8c-20f59616faba","version":3}`
)

// cheap scrypt parameters for round trips
var testOptions = ScryptOptions(2, 1)

func pbkdf2Options() Options {
	opts := DefaultOptions()
	opts.IV = pbkdf2IV
	opts.Salt = pbkdf2Salt
	opts.ID = pbkdf2ID
	return opts
}

func TestEncryptPBKDF2Vector(t *testing.T) {
	keyjson, err := Encrypt(pbkdf2Key, pbkdf2Password, pbkdf2Options())
	require.NoError(t, err)

	var k encryptedKeyJSONV3
	require.NoError(t, json.Unmarshal(keyjson, &k))
	assert.Equal(t, 3, k.Version)
	assert.Equal(t, pbkdf2ID, k.Id)
	assert.Equal(t, pbkdf2Address, k.Address)
	assert.Equal(t, "aes-128-ctr", k.Crypto.Cipher)
	assert.Equal(t, pbkdf2IV, k.Crypto.CipherParams.IV)
	assert.Equal(t, pbkdf2Cipher, k.Crypto.CipherText)
	assert.Equal(t, pbkdf2MAC, k.Crypto.MAC)
	assert.Equal(t, "pbkdf2", k.Crypto.KDF)
	assert.Equal(t, "hmac-sha256", k.Crypto.KDFParams["prf"])
	assert.EqualValues(t, DefaultPBKDF2Iterations, k.Crypto.KDFParams["c"])
	assert.Equal(t, pbkdf2Salt, k.Crypto.KDFParams["salt"])

	priv, err := Decrypt(keyjson, pbkdf2Password)
	require.NoError(t, err)
	assert.Equal(t, pbkdf2Key, priv)

	_, err = Decrypt(keyjson, "wrong")
	assert.ErrorIs(t, err, ErrDecrypt)
}

func TestDecryptScryptVector(t *testing.T) {
	key, err := DecryptKey([]byte(veryLightScryptJSON), "")
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("45dea0fb0bba44f4fcf290bba71fd57d7117cbb8"), key.Address())

	_, err = DecryptKey([]byte(veryLightScryptJSON), "x")
	assert.ErrorIs(t, err, ErrDecrypt)
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key, err := accounts.NewKey()
	require.NoError(t, err)

	for _, opts := range []Options{testOptions, {Iterations: 1024}} {
		keyjson, err := EncryptKey(key, "foo", opts)
		require.NoError(t, err)
		again, err := DecryptKey(keyjson, "foo")
		require.NoError(t, err)
		assert.Equal(t, key.PrivateHex(), again.PrivateHex())
		assert.Equal(t, key.Address(), again.Address())
	}
}

// 未指定 IV 和 Salt 时每次加密结果都不同。
func TestEncryptRandomParams(t *testing.T) {
	key, err := accounts.NewKey()
	require.NoError(t, err)
	a, err := EncryptKey(key, "foo", testOptions)
	require.NoError(t, err)
	b, err := EncryptKey(key, "foo", testOptions)
	require.NoError(t, err)

	var ka, kb encryptedKeyJSONV3
	require.NoError(t, json.Unmarshal(a, &ka))
	require.NoError(t, json.Unmarshal(b, &kb))
	assert.NotEqual(t, ka.Id, kb.Id)
	assert.NotEqual(t, ka.Crypto.CipherParams.IV, kb.Crypto.CipherParams.IV)
	assert.NotEqual(t, ka.Crypto.KDFParams["salt"], kb.Crypto.KDFParams["salt"])
}

func TestEncryptSkipAddress(t *testing.T) {
	opts := pbkdf2Options()
	opts.SkipAddress = true
	keyjson, err := Encrypt(pbkdf2Key, pbkdf2Password, opts)
	require.NoError(t, err)

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(keyjson, &fields))
	assert.NotContains(t, fields, "address")

	priv, err := Decrypt(keyjson, pbkdf2Password)
	require.NoError(t, err)
	assert.Equal(t, pbkdf2Key, priv)
}

func TestEncryptInvalidParams(t *testing.T) {
	opts := pbkdf2Options()
	opts.IV = "00"
	_, err := Encrypt(pbkdf2Key, pbkdf2Password, opts)
	assert.Error(t, err)

	opts = pbkdf2Options()
	opts.ID = "not-a-uuid"
	_, err = Encrypt(pbkdf2Key, pbkdf2Password, opts)
	assert.Error(t, err)

	opts = pbkdf2Options()
	opts.KDF = "argon2"
	_, err = Encrypt(pbkdf2Key, pbkdf2Password, opts)
	assert.ErrorIs(t, err, ErrUnsupportedKDF)

	_, err = Encrypt("zz", pbkdf2Password, DefaultOptions())
	assert.Error(t, err)
}

// mutate decodes the scrypt vector, applies fn and re-encodes it.
func mutate(t *testing.T, fn func(m map[string]interface{})) []byte {
	t.Helper()
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(veryLightScryptJSON), &m))
	fn(m)
	out, err := json.Marshal(m)
	require.NoError(t, err)
	return out
}

func TestDecryptRejects(t *testing.T) {
	tests := []struct {
		name string
		fn   func(m map[string]interface{})
		want error
	}{
		{"cipher", func(m map[string]interface{}) {
			m["crypto"].(map[string]interface{})["cipher"] = "aes-256-cbc"
		}, ErrUnsupportedCipher},
		{"kdf", func(m map[string]interface{}) {
			m["crypto"].(map[string]interface{})["kdf"] = "argon2"
		}, ErrUnsupportedKDF},
		{"prf", func(m map[string]interface{}) {
			c := m["crypto"].(map[string]interface{})
			c["kdf"] = "pbkdf2"
			c["kdfparams"].(map[string]interface{})["c"] = 2
			c["kdfparams"].(map[string]interface{})["prf"] = "hmac-sha512"
		}, ErrUnsupportedPRF},
		{"version", func(m map[string]interface{}) {
			m["version"] = 1
		}, ErrVersion},
		{"version string", func(m map[string]interface{}) {
			m["version"] = "3"
		}, ErrVersion},
		{"address", func(m map[string]interface{}) {
			m["address"] = pbkdf2Address
		}, ErrAddressMismatch},
		{"mac", func(m map[string]interface{}) {
			m["crypto"].(map[string]interface{})["mac"] = pbkdf2MAC
		}, ErrDecrypt},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecryptKey(mutate(t, tt.fn), "")
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := DecryptKey(mutate(t, func(m map[string]interface{}) { m["id"] = "xyz" }), "")
	assert.Error(t, err)
	_, err = DecryptKey([]byte("{"), "")
	assert.Error(t, err)
}

func TestKeyStoreLifecycle(t *testing.T) {
	dir := t.TempDir()
	ks, err := NewKeyStore(filepath.Join(dir, "keys"), testOptions)
	require.NoError(t, err)

	list, err := ks.Accounts()
	require.NoError(t, err)
	assert.Empty(t, list)

	a1, err := ks.NewAccount("foo")
	require.NoError(t, err)
	assert.Equal(t, KeyStoreScheme, a1.URL.Scheme)
	assert.FileExists(t, a1.URL.Path)
	assert.True(t, ks.HasAddress(a1.Address))

	key, err := accounts.KeyFromHex(pbkdf2Key)
	require.NoError(t, err)
	a2, err := ks.StoreKey(key, "bar")
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(pbkdf2Address), a2.Address)

	// stray files are ignored
	require.NoError(t, os.WriteFile(filepath.Join(ks.Dir(), "README"), []byte("hello"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(ks.Dir(), "backup~"), []byte("{}"), 0600))

	list, err = ks.Accounts()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, a1, list[0])
	assert.Equal(t, a2, list[1])

	got, err := ks.GetKey(a2.Address, "bar")
	require.NoError(t, err)
	assert.Equal(t, pbkdf2Key, got.PrivateHex())

	_, err = ks.GetKey(a2.Address, "foo")
	assert.ErrorIs(t, err, ErrDecrypt)
	assert.ErrorIs(t, ks.Delete(a2.Address, "foo"), ErrDecrypt)

	require.NoError(t, ks.Delete(a2.Address, "bar"))
	assert.NoFileExists(t, a2.URL.Path)
	assert.False(t, ks.HasAddress(a2.Address))

	_, err = ks.GetKey(a2.Address, "bar")
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestKeyFileName(t *testing.T) {
	addr := common.HexToAddress(pbkdf2Address)
	name := keyFileName(addr)
	assert.Regexp(t, `^UTC--\d{4}-\d{2}-\d{2}T\d{2}-\d{2}-\d{2}\.\d{9}Z--`+pbkdf2Address+`$`, name)
}
