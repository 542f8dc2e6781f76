// Copyright 2015 The go-ethereum Authors
// This file is part of go-ethereum.
//
// go-ethereum is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// go-ethereum is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with go-ethereum. If not, see <http://www.gnu.org/licenses/>.

package utils

import (
	"errors"
	"fmt"
	"math/big"
	"os"

	"github.com/ethsign/ethsign/accounts"
	"github.com/ethsign/ethsign/accounts/keystore"
	"github.com/ethsign/ethsign/common"
	"github.com/ethsign/ethsign/internal/flags"
	"github.com/ethsign/ethsign/params"
	"github.com/urfave/cli/v2"
)

var (
	// Signer settings
	ChainIDFlag = &flags.BigFlag{
		Name:     "chainid",
		Usage:    "Chain id for replay protected (EIP-155) signatures, decimal or 0x hex. 0 signs legacy",
		Category: flags.SignerCategory,
		EnvVars:  []string{"ETHSIGN_CHAINID"},
	}
	ChainFlag = &cli.StringFlag{
		Name:     "chain",
		Usage:    "Named chain whose id to sign for (mainnet, kovan, classic, ...)",
		Category: flags.SignerCategory,
	}
	DataHexFlag = &cli.BoolFlag{
		Name:     "datahex",
		Usage:    "Present transaction data as 0x hex text rather than raw bytes",
		Value:    true,
		Category: flags.SignerCategory,
	}

	// Account settings
	KeyStoreDirFlag = &flags.DirectoryFlag{
		Name:     "keystore",
		Usage:    "Directory for the keystore",
		Category: flags.AccountCategory,
		EnvVars:  []string{"ETHSIGN_KEYSTORE"},
	}
	PrivateKeyFlag = &cli.StringFlag{
		Name:     "key",
		Usage:    "Private key as 64 hex digits (insecure, visible in the process list)",
		Category: flags.AccountCategory,
	}
	KeyFileFlag = &cli.StringFlag{
		Name:     "keyfile",
		Usage:    "Encrypted v3 key file to sign with",
		Category: flags.AccountCategory,
	}
	AccountFlag = &cli.StringFlag{
		Name:     "account",
		Usage:    "Address of a keystore account to sign with",
		Category: flags.AccountCategory,
	}
	PasswordFileFlag = &cli.StringFlag{
		Name:     "password",
		Usage:    "Password file to use for key files and keystore accounts",
		Category: flags.AccountCategory,
	}
	KDFFlag = &cli.StringFlag{
		Name:     "kdf",
		Usage:    "Key derivation for new key files (pbkdf2|scrypt)",
		Category: flags.AccountCategory,
	}
	KDFIterationsFlag = &cli.IntFlag{
		Name:     "kdf.iterations",
		Usage:    "PBKDF2 rounds for new key files",
		Category: flags.AccountCategory,
	}
	LightKDFFlag = &cli.BoolFlag{
		Name:     "lightkdf",
		Usage:    "Reduce scrypt RAM & CPU usage at expense of key file security",
		Category: flags.AccountCategory,
	}
)

// SignerFlags are the global flags selecting chain and data presentation.
var SignerFlags = []cli.Flag{
	ChainIDFlag,
	ChainFlag,
	DataHexFlag,
}

// AccountFlags are the global flags locating keys.
var AccountFlags = []cli.Flag{
	KeyStoreDirFlag,
	PasswordFileFlag,
	KDFFlag,
	KDFIterationsFlag,
	LightKDFFlag,
}

// KeyFlags select the key a command signs with.
var KeyFlags = []cli.Flag{
	PrivateKeyFlag,
	KeyFileFlag,
	AccountFlag,
}

var errNoKey = errors.New("no signing key, use one of --key, --keyfile or --account")

// ChainIDFromFlags returns the chain id chosen on the command line and
// whether one was chosen at all.
func ChainIDFromFlags(ctx *cli.Context) (*big.Int, bool, error) {
	if err := flags.CheckExclusive(ctx, ChainIDFlag.Name, ChainFlag.Name); err != nil {
		return nil, false, err
	}
	switch {
	case ctx.IsSet(ChainIDFlag.Name):
		return flags.GlobalBig(ctx, ChainIDFlag.Name), true, nil
	case ctx.IsSet(ChainFlag.Name):
		name := ctx.String(ChainFlag.Name)
		id, ok := params.ChainIDByName(name)
		if !ok {
			return nil, false, fmt.Errorf("unknown chain %q, known chains: %v", name, params.ChainNames())
		}
		return id, true, nil
	}
	return nil, false, nil
}

// Password reads the password file given by --password.
func Password(ctx *cli.Context) (string, error) {
	path := ctx.String(PasswordFileFlag.Name)
	if path == "" {
		return "", fmt.Errorf("password required, use --%s <file>", PasswordFileFlag.Name)
	}
	return ReadPassword(path)
}

// LoadKey returns the signing key selected by --key, --keyfile or
// --account. The keystore is only opened for --account.
//
// --key、--keyfile、--account 三选一。
func LoadKey(ctx *cli.Context, openKeyStore func() (*keystore.KeyStore, error)) (*accounts.Key, error) {
	if err := flags.CheckExclusive(ctx, PrivateKeyFlag.Name, KeyFileFlag.Name, AccountFlag.Name); err != nil {
		return nil, err
	}
	switch {
	case ctx.IsSet(PrivateKeyFlag.Name):
		return accounts.KeyFromHex(ctx.String(PrivateKeyFlag.Name))

	case ctx.IsSet(KeyFileFlag.Name):
		keyjson, err := os.ReadFile(ctx.String(KeyFileFlag.Name))
		if err != nil {
			return nil, err
		}
		password, err := Password(ctx)
		if err != nil {
			return nil, err
		}
		return keystore.DecryptKey(keyjson, password)

	case ctx.IsSet(AccountFlag.Name):
		s := ctx.String(AccountFlag.Name)
		if !common.IsHexAddress(s) {
			return nil, fmt.Errorf("%w: %s", common.ErrInvalidAddress, s)
		}
		password, err := Password(ctx)
		if err != nil {
			return nil, err
		}
		ks, err := openKeyStore()
		if err != nil {
			return nil, err
		}
		return ks.GetKey(common.HexToAddress(s), password)
	}
	return nil, errNoKey
}
