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

// Package keystore implements encrypted storage of secp256k1 private keys.
//
// Keys are stored as encrypted JSON files according to the Web3 Secret Storage specification.
// See https://ethereum.org/en/developers/docs/data-structures-and-encoding/web3-secret-storage/ for more information.
package keystore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/ethsign/ethsign/accounts"
	"github.com/ethsign/ethsign/common"
	"github.com/ethsign/ethsign/log"
	"github.com/gofrs/flock"
)

var (
	ErrNoMatch = errors.New("no key for given address or file")
	ErrDecrypt = errors.New("could not decrypt key with given password")

	// ErrUnsupportedCipher is returned for key files not using aes-128-ctr.
	ErrUnsupportedCipher = errors.New("cipher not supported")
	// ErrUnsupportedKDF is returned for key derivations other than pbkdf2 and scrypt.
	ErrUnsupportedKDF = errors.New("unsupported KDF")
	// ErrUnsupportedPRF is returned for pbkdf2 pseudo random functions other than hmac-sha256.
	ErrUnsupportedPRF = errors.New("unsupported PBKDF2 PRF")
	// ErrVersion is returned for key files that are not version 3.
	ErrVersion = errors.New("version not supported")
	// ErrAddressMismatch is returned when the address recorded in a key file
	// is not the address of the key it holds.
	ErrAddressMismatch = errors.New("key content mismatch")
)

// KeyStoreScheme is the protocol scheme prefixing account and wallet URLs.
const KeyStoreScheme = accounts.KeyStoreScheme

const lockFileName = ".lock"

// KeyStore manages a key storage directory on disk. Writers are serialized
// across processes by a lock file inside the directory.
//
// KeyStore 管理一个密钥目录，写操作通过目录内的 .lock 文件跨进程互斥。
type KeyStore struct {
	keydir string
	opts   Options
	lock   *flock.Flock
}

// NewKeyStore creates a keystore for the given directory, creating the
// directory if needed.
func NewKeyStore(keydir string, opts Options) (*KeyStore, error) {
	keydir, err := filepath.Abs(keydir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(keydir, 0700); err != nil {
		return nil, err
	}
	return &KeyStore{
		keydir: keydir,
		opts:   opts,
		lock:   flock.New(filepath.Join(keydir, lockFileName)),
	}, nil
}

// Dir returns the absolute key directory.
func (ks *KeyStore) Dir() string { return ks.keydir }

// NewAccount generates a new key and stores it into the key directory,
// encrypting it with the passphrase.
func (ks *KeyStore) NewAccount(passphrase string) (accounts.Account, error) {
	key, err := accounts.NewKey()
	if err != nil {
		return accounts.Account{}, err
	}
	return ks.StoreKey(key, passphrase)
}

// StoreKey encrypts key with the passphrase and writes it to a new key file.
// The file is written under a temporary name, verified by decrypting it and
// only then renamed into place.
func (ks *KeyStore) StoreKey(key *accounts.Key, passphrase string) (accounts.Account, error) {
	opts := ks.opts
	opts.SkipAddress = false
	opts.ID = ""
	keyjson, err := EncryptKey(key, passphrase, opts)
	if err != nil {
		return accounts.Account{}, err
	}
	a := accounts.Account{
		Address: key.Address(),
		URL:     accounts.URL{Scheme: KeyStoreScheme, Path: filepath.Join(ks.keydir, keyFileName(key.Address()))},
	}

	if err := ks.lock.Lock(); err != nil {
		return accounts.Account{}, fmt.Errorf("keystore lock: %w", err)
	}
	defer ks.lock.Unlock()

	tmpName, err := writeTemporaryKeyFile(a.URL.Path, keyjson)
	if err != nil {
		return accounts.Account{}, err
	}
	if _, err := ks.readKey(key.Address(), tmpName, passphrase); err != nil {
		msg := "An error was encountered when saving and verifying the keystore file. \n" +
			"This indicates that the keystore is corrupted. \n" +
			"The corrupted file is stored at \n%v\n" +
			"The error was : %w"
		return accounts.Account{}, fmt.Errorf(msg, tmpName, err)
	}
	if err := os.Rename(tmpName, a.URL.Path); err != nil {
		return accounts.Account{}, err
	}
	log.Debug("Stored key", "address", a.Address, "url", a.URL)
	return a, nil
}

// Accounts returns all key files present in the directory, ordered by URL.
// Files that do not name an address are skipped.
func (ks *KeyStore) Accounts() ([]accounts.Account, error) {
	entries, err := os.ReadDir(ks.keydir)
	if err != nil {
		return nil, err
	}
	var list []accounts.Account
	for _, fi := range entries {
		if nonKeyFile(fi) {
			log.Trace("Ignoring file on account scan", "path", fi.Name())
			continue
		}
		path := filepath.Join(ks.keydir, fi.Name())
		if a := readAccount(path); a != nil {
			list = append(list, *a)
		}
	}
	sort.Sort(accounts.AccountsByURL(list))
	return list, nil
}

// HasAddress reports whether a key with the given address is present.
func (ks *KeyStore) HasAddress(addr common.Address) bool {
	_, err := ks.Find(addr)
	return err == nil
}

// Find returns the first key file holding addr.
func (ks *KeyStore) Find(addr common.Address) (accounts.Account, error) {
	list, err := ks.Accounts()
	if err != nil {
		return accounts.Account{}, err
	}
	for _, a := range list {
		if a.Address == addr {
			return a, nil
		}
	}
	return accounts.Account{}, fmt.Errorf("%w: %s", ErrNoMatch, addr.Hex())
}

// GetKey loads and decrypts the key for addr.
func (ks *KeyStore) GetKey(addr common.Address, passphrase string) (*accounts.Key, error) {
	a, err := ks.Find(addr)
	if err != nil {
		return nil, err
	}
	return ks.readKey(addr, a.URL.Path, passphrase)
}

// Delete deletes the key matched by account if the passphrase is correct.
func (ks *KeyStore) Delete(addr common.Address, passphrase string) error {
	a, err := ks.Find(addr)
	if err != nil {
		return err
	}
	// Decrypting the key isn't really necessary, but we do
	// it anyway to check the password and zero out the key
	// immediately afterwards.
	if _, err := ks.readKey(addr, a.URL.Path, passphrase); err != nil {
		return err
	}
	if err := ks.lock.Lock(); err != nil {
		return fmt.Errorf("keystore lock: %w", err)
	}
	defer ks.lock.Unlock()
	return os.Remove(a.URL.Path)
}

func (ks *KeyStore) readKey(addr common.Address, filename, passphrase string) (*accounts.Key, error) {
	keyjson, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	key, err := DecryptKey(keyjson, passphrase)
	if err != nil {
		return nil, err
	}
	if key.Address() != addr {
		return nil, fmt.Errorf("%w: have account %x, want %x", ErrAddressMismatch, key.Address(), addr)
	}
	return key, nil
}

func readAccount(path string) *accounts.Account {
	var key struct {
		Address string `json:"address"`
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		log.Trace("Failed to open keystore file", "path", path, "err", err)
		return nil
	}
	err = json.Unmarshal(raw, &key)
	addr := common.HexToAddress(key.Address)
	switch {
	case err != nil:
		log.Debug("Failed to decode keystore key", "path", path, "err", err)
	case addr == common.Address{}:
		log.Debug("Failed to decode keystore key", "path", path, "err", "missing or zero address")
	default:
		return &accounts.Account{
			Address: addr,
			URL:     accounts.URL{Scheme: KeyStoreScheme, Path: path},
		}
	}
	return nil
}
