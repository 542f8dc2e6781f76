// Copyright 2016 The go-ethereum Authors
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

package main

import (
	"fmt"
	"os"

	"github.com/ethsign/ethsign/accounts"
	"github.com/ethsign/ethsign/accounts/keystore"
	"github.com/ethsign/ethsign/cmd/utils"
	"github.com/urfave/cli/v2"
)

var outFlag = &cli.StringFlag{
	Name:  "out",
	Usage: "Write the key file here instead of into the keystore (- for stdout)",
}

var keystoreCommand = &cli.Command{
	Name:  "keystore",
	Usage: "Manage encrypted key files",
	Description: `
Key files follow the Web3 Secret Storage (version 3) format. New files are
encrypted with PBKDF2-HMAC-SHA256 unless --kdf scrypt or --lightkdf is
given. Passwords are read from the file named by --password.`,
	Subcommands: []*cli.Command{
		{
			Name:      "encrypt",
			Usage:     "Encrypt a private key, or a new random key, into a key file",
			ArgsUsage: "[<hex private key>]",
			Flags:     []cli.Flag{outFlag},
			Action:    keystoreEncrypt,
		},
		{
			Name:      "decrypt",
			Usage:     "Decrypt a key file and print the private key",
			ArgsUsage: "<keyfile>",
			Flags:     []cli.Flag{jsonFlag},
			Action:    keystoreDecrypt,
		},
		{
			Name:   "list",
			Usage:  "Print summary of existing accounts",
			Action: keystoreList,
		},
	},
}

// 没有参数时生成新的随机私钥。
func keystoreEncrypt(ctx *cli.Context) error {
	var (
		key *accounts.Key
		err error
	)
	switch ctx.NArg() {
	case 0:
		key, err = accounts.NewKey()
	case 1:
		key, err = accounts.KeyFromHex(ctx.Args().First())
	default:
		return fmt.Errorf("expected at most one private key")
	}
	if err != nil {
		return err
	}
	password, err := utils.Password(ctx)
	if err != nil {
		return err
	}
	cfg := configFrom(ctx)

	if out := ctx.String(outFlag.Name); out != "" {
		keyjson, err := keystore.EncryptKey(key, password, cfg.keystoreOptions())
		if err != nil {
			return err
		}
		if out == "-" {
			fmt.Fprintln(ctx.App.Writer, string(keyjson))
			return nil
		}
		if err := os.WriteFile(out, keyjson, 0600); err != nil {
			return err
		}
		fmt.Fprintf(ctx.App.Writer, "Address: %s\nPath:    %s\n", key.Address().Hex(), out)
		return nil
	}

	ks, err := cfg.openKeyStore()
	if err != nil {
		return err
	}
	account, err := ks.StoreKey(key, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.App.Writer, "Address: %s\nPath:    %s\n", account.Address.Hex(), account.URL.Path)
	return nil
}

func keystoreDecrypt(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return fmt.Errorf("expected a key file")
	}
	keyjson, err := os.ReadFile(ctx.Args().First())
	if err != nil {
		return err
	}
	password, err := utils.Password(ctx)
	if err != nil {
		return err
	}
	key, err := keystore.DecryptKey(keyjson, password)
	if err != nil {
		return err
	}
	out := keyJSON{
		Address:    key.Address(),
		PublicKey:  "0x" + key.PublicHex(),
		PrivateKey: "0x" + key.PrivateHex(),
	}
	if ctx.Bool(jsonFlag.Name) {
		return printJSON(ctx, out)
	}
	fmt.Fprintln(ctx.App.Writer, "Address:    ", out.Address.Hex())
	fmt.Fprintln(ctx.App.Writer, "Private key:", out.PrivateKey)
	return nil
}

func keystoreList(ctx *cli.Context) error {
	cfg := configFrom(ctx)
	ks, err := cfg.openKeyStore()
	if err != nil {
		return err
	}
	list, err := ks.Accounts()
	if err != nil {
		return err
	}
	for i, acct := range list {
		fmt.Fprintf(ctx.App.Writer, "Account #%d: {%x} %s\n", i, acct.Address.Bytes(), acct.URL)
	}
	return nil
}
