// Copyright 2017 The go-ethereum Authors
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
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethsign/ethsign/accounts"
	"github.com/ethsign/ethsign/cmd/utils"
	"github.com/ethsign/ethsign/common"
	"github.com/urfave/cli/v2"
)

var (
	jsonFlag = &cli.BoolFlag{
		Name:  "json",
		Usage: "Output JSON instead of human-readable format",
	}
	msgHexFlag = &cli.BoolFlag{
		Name:  "msghex",
		Usage: "Treat the message argument as 0x hex data rather than text",
	}
)

var (
	keygenCommand = &cli.Command{
		Name:  "keygen",
		Usage: "Generate a new random private key",
		Description: `
Generate a new secp256k1 key and print its private key, public key and
address. The private key is printed in clear text, store it with
'ethsign keystore encrypt' for anything else than testing.`,
		Flags:  []cli.Flag{jsonFlag},
		Action: keygen,
	}
	addressCommand = &cli.Command{
		Name:   "address",
		Usage:  "Print the address of a key",
		Flags:  utils.KeyFlags,
		Action: address,
	}
	checksumCommand = &cli.Command{
		Name:      "checksum",
		Usage:     "Print addresses in EIP-55 mixed case form",
		ArgsUsage: "<address> [<address>...]",
		Action:    checksum,
	}
	personalSignCommand = &cli.Command{
		Name:      "personal-sign",
		Usage:     "Sign a message with the Ethereum signed message prefix",
		ArgsUsage: "<message>",
		Description: `
Sign keccak256("\x19Ethereum Signed Message:\n" + len(message) + message)
and print r || s || v in hex. v is 27/28 unless a chain id is configured.`,
		Flags:  append([]cli.Flag{msgHexFlag}, utils.KeyFlags...),
		Action: personalSign,
	}
	personalRecoverCommand = &cli.Command{
		Name:      "personal-recover",
		Usage:     "Recover the signer of a personal message signature",
		ArgsUsage: "<message> <signature>",
		Flags:     []cli.Flag{msgHexFlag, jsonFlag},
		Action:    personalRecover,
	}
)

type keyJSON struct {
	Address    common.Address `json:"address"`
	PublicKey  string         `json:"publicKey"`
	PrivateKey string         `json:"privateKey,omitempty"`
}

func keygen(ctx *cli.Context) error {
	key, err := accounts.NewKey()
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
	w := ctx.App.Writer
	fmt.Fprintln(w, "Address:    ", out.Address.Hex())
	fmt.Fprintln(w, "Public key: ", out.PublicKey)
	fmt.Fprintln(w, "Private key:", out.PrivateKey)
	return nil
}

func address(ctx *cli.Context) error {
	cfg := configFrom(ctx)
	key, err := utils.LoadKey(ctx, cfg.openKeyStore)
	if err != nil {
		return err
	}
	fmt.Fprintln(ctx.App.Writer, key.Address().Hex())
	return nil
}

func checksum(ctx *cli.Context) error {
	if ctx.NArg() == 0 {
		return fmt.Errorf("expected at least one address")
	}
	for _, arg := range ctx.Args().Slice() {
		sum, err := common.ChecksumAddress(arg)
		if err != nil {
			return err
		}
		fmt.Fprintln(ctx.App.Writer, sum)
	}
	return nil
}

// messageArg returns argument i as message bytes, decoding hex when
// --msghex is set.
func messageArg(ctx *cli.Context, i int) ([]byte, error) {
	arg := ctx.Args().Get(i)
	if ctx.Bool(msgHexFlag.Name) {
		return hexutil.Decode(arg)
	}
	return []byte(arg), nil
}

func personalSign(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return fmt.Errorf("expected a message")
	}
	msg, err := messageArg(ctx, 0)
	if err != nil {
		return err
	}
	cfg := configFrom(ctx)
	key, err := utils.LoadKey(ctx, cfg.openKeyStore)
	if err != nil {
		return err
	}
	sig, err := key.PersonalSign(msg, cfg.txConfig().ChainID)
	if err != nil {
		return err
	}
	fmt.Fprintln(ctx.App.Writer, hexutil.Encode(sig))
	return nil
}

// v 可以是 0/1、27/28 或带链 ID 的值，均可恢复。
func personalRecover(ctx *cli.Context) error {
	if ctx.NArg() != 2 {
		return fmt.Errorf("expected a message and a signature")
	}
	msg, err := messageArg(ctx, 0)
	if err != nil {
		return err
	}
	sig, err := hexutil.Decode(ctx.Args().Get(1))
	if err != nil {
		return fmt.Errorf("invalid signature: %w", err)
	}
	pub, err := accounts.PersonalRecover(msg, sig)
	if err != nil {
		return err
	}
	addr, err := accounts.PersonalRecoverAddress(msg, sig)
	if err != nil {
		return err
	}
	out := keyJSON{Address: addr, PublicKey: hexutil.Encode(pub)}
	if ctx.Bool(jsonFlag.Name) {
		return printJSON(ctx, out)
	}
	fmt.Fprintln(ctx.App.Writer, "Address:   ", out.Address.Hex())
	fmt.Fprintln(ctx.App.Writer, "Public key:", out.PublicKey)
	return nil
}

func printJSON(ctx *cli.Context, v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(ctx.App.Writer, string(out))
	return nil
}
