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

/*

This key store behaves as KeyStorePlain with the difference that
the private key is encrypted and on disk uses another JSON encoding.

The crypto is documented at https://github.com/ethereum/wiki/wiki/Web3-Secret-Storage-Definition

*/

package keystore

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ethsign/ethsign/accounts"
	"github.com/ethsign/ethsign/crypto"
	"github.com/google/uuid"
	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/crypto/scrypt"
)

const (
	// KDFPBKDF2 selects PBKDF2-HMAC-SHA256 key derivation.
	KDFPBKDF2 = "pbkdf2"
	// KDFScrypt selects scrypt key derivation.
	KDFScrypt = "scrypt"

	// DefaultPBKDF2Iterations is the PBKDF2 round count used when none is given.
	DefaultPBKDF2Iterations = 262144

	// StandardScryptN is the N parameter of Scrypt encryption algorithm, using 256MB
	// memory and taking approximately 1s CPU time on a modern processor.
	StandardScryptN = 1 << 18

	// StandardScryptP is the P parameter of Scrypt encryption algorithm, using 256MB
	// memory and taking approximately 1s CPU time on a modern processor.
	StandardScryptP = 1

	// LightScryptN is the N parameter of Scrypt encryption algorithm, using 4MB
	// memory and taking approximately 100ms CPU time on a modern processor.
	LightScryptN = 1 << 12

	// LightScryptP is the P parameter of Scrypt encryption algorithm, using 4MB
	// memory and taking approximately 100ms CPU time on a modern processor.
	LightScryptP = 6

	scryptR     = 8
	scryptDKLen = 32

	cipherName = "aes-128-ctr"
	prfName    = "hmac-sha256"
	saltLength = 32
)

// Options tunes key encryption. The zero value gives PBKDF2 with the default
// round count and random salt, iv and id.
//
// Options 控制加密参数。IV、Salt、ID 仅用于复现测试向量，正常使用时留空即可随机生成。
type Options struct {
	KDF        string // KDFPBKDF2 (default) or KDFScrypt
	Iterations int    // PBKDF2 rounds
	ScryptN    int
	ScryptP    int

	IV   string // hex, 16 bytes
	Salt string // hex
	ID   string // uuid

	SkipAddress bool // leave the address out of the key file
}

// DefaultOptions returns PBKDF2 with DefaultPBKDF2Iterations rounds.
func DefaultOptions() Options {
	return Options{KDF: KDFPBKDF2, Iterations: DefaultPBKDF2Iterations}
}

// ScryptOptions returns scrypt options with the given cost parameters.
func ScryptOptions(n, p int) Options {
	return Options{KDF: KDFScrypt, ScryptN: n, ScryptP: p}
}

func (o Options) withDefaults() Options {
	if o.KDF == "" {
		o.KDF = KDFPBKDF2
	}
	if o.Iterations == 0 {
		o.Iterations = DefaultPBKDF2Iterations
	}
	if o.ScryptN == 0 {
		o.ScryptN = StandardScryptN
	}
	if o.ScryptP == 0 {
		o.ScryptP = StandardScryptP
	}
	return o
}

// Encrypt encrypts a private key given as hex into a v3 key file.
func Encrypt(privHex, password string, opts Options) ([]byte, error) {
	key, err := accounts.KeyFromHex(privHex)
	if err != nil {
		return nil, fmt.Errorf("invalid key: %w", err)
	}
	return EncryptKey(key, password, opts)
}

// EncryptKey encrypts key into a v3 key file.
func EncryptKey(key *accounts.Key, password string, opts Options) ([]byte, error) {
	opts = opts.withDefaults()
	keyBytes := crypto.FromECDSA(key.PrivateKey())
	defer zeroBytes(keyBytes)

	cryptoStruct, err := EncryptDataV3(keyBytes, []byte(password), opts)
	if err != nil {
		return nil, err
	}
	id := opts.ID
	if id == "" {
		id = uuid.NewString()
	} else if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("invalid key id: %w", err)
	}
	encryptedKeyJSONV3 := encryptedKeyJSONV3{
		Crypto:  cryptoStruct,
		Id:      id,
		Version: version,
	}
	if !opts.SkipAddress {
		addr := key.Address()
		encryptedKeyJSONV3.Address = hex.EncodeToString(addr[:])
	}
	return json.Marshal(encryptedKeyJSONV3)
}

// EncryptDataV3 encrypts the data given as 'data' with the password 'auth'.
//
// 加密流程：KDF 派生 32 字节密钥，前 16 字节做 AES-128-CTR 密钥，
// 后 16 字节与密文拼接后取 keccak256 作为 MAC。
func EncryptDataV3(data, auth []byte, opts Options) (CryptoJSON, error) {
	opts = opts.withDefaults()
	salt, err := paramOrRandom(opts.Salt, saltLength)
	if err != nil {
		return CryptoJSON{}, fmt.Errorf("invalid salt: %w", err)
	}
	iv, err := paramOrRandom(opts.IV, aes.BlockSize)
	if err != nil {
		return CryptoJSON{}, fmt.Errorf("invalid iv: %w", err)
	}
	if len(iv) != aes.BlockSize {
		return CryptoJSON{}, fmt.Errorf("invalid iv: want %d bytes, have %d", aes.BlockSize, len(iv))
	}

	var (
		derivedKey []byte
		kdfParams  = map[string]interface{}{
			"dklen": scryptDKLen,
			"salt":  hex.EncodeToString(salt),
		}
	)
	switch opts.KDF {
	case KDFPBKDF2:
		derivedKey = pbkdf2.Key(auth, salt, opts.Iterations, scryptDKLen, sha256.New)
		kdfParams["c"] = opts.Iterations
		kdfParams["prf"] = prfName
	case KDFScrypt:
		derivedKey, err = scrypt.Key(auth, salt, opts.ScryptN, scryptR, opts.ScryptP, scryptDKLen)
		if err != nil {
			return CryptoJSON{}, err
		}
		kdfParams["n"] = opts.ScryptN
		kdfParams["r"] = scryptR
		kdfParams["p"] = opts.ScryptP
	default:
		return CryptoJSON{}, fmt.Errorf("%w: %s", ErrUnsupportedKDF, opts.KDF)
	}
	defer zeroBytes(derivedKey)

	encryptKey := derivedKey[:16]
	cipherText, err := aesCTRXOR(encryptKey, data, iv)
	if err != nil {
		return CryptoJSON{}, err
	}
	mac := crypto.Keccak256(derivedKey[16:32], cipherText)

	return CryptoJSON{
		Cipher:       cipherName,
		CipherText:   hex.EncodeToString(cipherText),
		CipherParams: cipherparamsJSON{IV: hex.EncodeToString(iv)},
		KDF:          opts.KDF,
		KDFParams:    kdfParams,
		MAC:          hex.EncodeToString(mac),
	}, nil
}

// Decrypt decrypts a v3 key file and returns the private key as hex.
func Decrypt(keyjson []byte, password string) (string, error) {
	key, err := DecryptKey(keyjson, password)
	if err != nil {
		return "", err
	}
	return key.PrivateHex(), nil
}

// DecryptKey decrypts a key from a json blob, returning the private key itself.
// When the file names an address it must match the decrypted key.
func DecryptKey(keyjson []byte, password string) (*accounts.Key, error) {
	var header struct {
		Version interface{} `json:"version"`
	}
	if err := json.Unmarshal(keyjson, &header); err != nil {
		return nil, err
	}
	if v, ok := header.Version.(float64); !ok || v != version {
		return nil, fmt.Errorf("%w: %v", ErrVersion, header.Version)
	}
	k := new(encryptedKeyJSONV3)
	if err := json.Unmarshal(keyjson, k); err != nil {
		return nil, err
	}
	if k.Id != "" {
		if _, err := uuid.Parse(k.Id); err != nil {
			return nil, fmt.Errorf("invalid UUID: %w", err)
		}
	}
	keyBytes, err := DecryptDataV3(k.Crypto, password)
	if err != nil {
		return nil, err
	}
	defer zeroBytes(keyBytes)

	priv, err := crypto.ToECDSA(keyBytes)
	if err != nil {
		return nil, fmt.Errorf("invalid key: %w", err)
	}
	key := accounts.KeyFromECDSA(priv)
	if k.Address != "" {
		want, err := hex.DecodeString(strings.TrimPrefix(k.Address, "0x"))
		if err != nil {
			return nil, fmt.Errorf("invalid address: %w", err)
		}
		if addr := key.Address(); !bytes.Equal(addr[:], want) {
			return nil, fmt.Errorf("%w: have account %x, want %x", ErrAddressMismatch, addr, want)
		}
	}
	return key, nil
}

// DecryptDataV3 checks the MAC and decrypts the ciphertext of a crypto section.
// No plaintext is produced when the MAC does not match.
func DecryptDataV3(cryptoJson CryptoJSON, auth string) ([]byte, error) {
	if cryptoJson.Cipher != cipherName {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedCipher, cryptoJson.Cipher)
	}
	mac, err := hex.DecodeString(cryptoJson.MAC)
	if err != nil {
		return nil, err
	}

	iv, err := hex.DecodeString(cryptoJson.CipherParams.IV)
	if err != nil {
		return nil, err
	}

	cipherText, err := hex.DecodeString(cryptoJson.CipherText)
	if err != nil {
		return nil, err
	}

	derivedKey, err := getKDFKey(cryptoJson, auth)
	if err != nil {
		return nil, err
	}
	defer zeroBytes(derivedKey)

	calculatedMAC := crypto.Keccak256(derivedKey[16:32], cipherText)
	if !bytes.Equal(calculatedMAC, mac) {
		return nil, ErrDecrypt
	}
	return aesCTRXOR(derivedKey[:16], cipherText, iv)
}

func getKDFKey(cryptoJSON CryptoJSON, auth string) ([]byte, error) {
	authArray := []byte(auth)
	saltHex, ok := cryptoJSON.KDFParams["salt"].(string)
	if !ok {
		return nil, errKDFParam("salt")
	}
	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return nil, err
	}
	dkLen, err := ensureInt(cryptoJSON.KDFParams, "dklen")
	if err != nil {
		return nil, err
	}
	if dkLen < 32 {
		return nil, fmt.Errorf("derived key too short: %d", dkLen)
	}

	switch cryptoJSON.KDF {
	case KDFScrypt:
		var n, r, p int
		if n, err = ensureInt(cryptoJSON.KDFParams, "n"); err != nil {
			return nil, err
		}
		if r, err = ensureInt(cryptoJSON.KDFParams, "r"); err != nil {
			return nil, err
		}
		if p, err = ensureInt(cryptoJSON.KDFParams, "p"); err != nil {
			return nil, err
		}
		return scrypt.Key(authArray, salt, n, r, p, dkLen)

	case KDFPBKDF2:
		c, err := ensureInt(cryptoJSON.KDFParams, "c")
		if err != nil {
			return nil, err
		}
		if prf, _ := cryptoJSON.KDFParams["prf"].(string); prf != prfName {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedPRF, prf)
		}
		return pbkdf2.Key(authArray, salt, c, dkLen, sha256.New), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedKDF, cryptoJSON.KDF)
}

// ensureInt reads an integer KDF parameter. Decoded JSON numbers are float64,
// parameters built in memory are int.
func ensureInt(params map[string]interface{}, name string) (int, error) {
	switch x := params[name].(type) {
	case int:
		return x, nil
	case float64:
		return int(x), nil
	}
	return 0, errKDFParam(name)
}

func errKDFParam(name string) error {
	return fmt.Errorf("missing or invalid kdf parameter %q", name)
}

func aesCTRXOR(key, inText, iv []byte) ([]byte, error) {
	// AES-128 is selected due to size of encryptKey.
	aesBlock, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	if len(iv) != aes.BlockSize {
		return nil, fmt.Errorf("invalid iv length %d", len(iv))
	}
	stream := cipher.NewCTR(aesBlock, iv)
	outText := make([]byte, len(inText))
	stream.XORKeyStream(outText, inText)
	return outText, err
}

// paramOrRandom decodes a hex parameter, or reads n random bytes when it is
// empty.
func paramOrRandom(param string, n int) ([]byte, error) {
	if param != "" {
		return hex.DecodeString(strings.TrimPrefix(param, "0x"))
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		panic("reading from crypto/rand failed: " + err.Error())
	}
	return b, nil
}

func zeroBytes(b []byte) {
	clear(b)
}
