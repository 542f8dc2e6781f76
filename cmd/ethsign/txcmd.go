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
	"bufio"
	"fmt"
	"io"
	"math/big"
	"os"
	"runtime"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethsign/ethsign/cmd/utils"
	"github.com/ethsign/ethsign/core/types"
	"github.com/ethsign/ethsign/internal/flags"
	"github.com/ethsign/ethsign/log"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

var (
	nonceFlag = &flags.BigFlag{
		Name:  "nonce",
		Usage: "Transaction nonce",
	}
	gasPriceFlag = &flags.BigFlag{
		Name:  "gasprice",
		Usage: "Gas price in wei",
	}
	gasLimitFlag = &flags.BigFlag{
		Name:  "gas",
		Usage: "Gas limit (default: intrinsic gas of the data)",
	}
	valueFlag = &flags.BigFlag{
		Name:  "value",
		Usage: "Value to transfer in wei",
	}
	toFlag = &cli.StringFlag{
		Name:  "to",
		Usage: "Recipient address, empty for contract creation",
	}
	dataFlag = &cli.StringFlag{
		Name:  "data",
		Usage: "Transaction data as 0x hex",
	}
	fileFlag = &cli.StringFlag{
		Name:  "file",
		Usage: "Read transactions from the given file, one per line (- for stdin)",
	}
)

var (
	signCommand = &cli.Command{
		Name:  "sign",
		Usage: "Build and sign a transaction",
		Description: `
Build a transaction from the given fields, sign it and print the signed
encoding, its hash and the sender. The signature is replay protected when a
chain id is configured (--chainid, --chain or the config file).`,
		Flags: flags.Merge([]cli.Flag{
			nonceFlag,
			gasPriceFlag,
			gasLimitFlag,
			valueFlag,
			toFlag,
			dataFlag,
			jsonFlag,
		}, utils.KeyFlags),
		Action: signTx,
	}
	decodeCommand = &cli.Command{
		Name:      "decode",
		Usage:     "Decode a transaction and print its fields",
		ArgsUsage: "<hex>",
		Action:    decodeTx,
	}
	recoverCommand = &cli.Command{
		Name:      "recover",
		Usage:     "Recover the senders of signed transactions",
		ArgsUsage: "[<hex>...]",
		Description: `
Decode each transaction and print its hash, chain id and sender, one line
per transaction in input order. Transactions are taken from the arguments
or from --file.`,
		Flags:  []cli.Flag{fileFlag},
		Action: recoverTxs,
	}
)

// 未指定 --gas 时使用数据的内在 gas 作为默认值。
func signTx(ctx *cli.Context) error {
	cfg := configFrom(ctx)
	to, err := types.ParseAddress(ctx.String(toFlag.Name))
	if err != nil {
		return err
	}
	var data []byte
	if s := ctx.String(dataFlag.Name); s != "" {
		if data, err = hexutil.Decode(s); err != nil {
			return fmt.Errorf("invalid data: %w", err)
		}
	}
	gas := flags.GlobalBig(ctx, gasLimitFlag.Name)
	if !ctx.IsSet(gasLimitFlag.Name) {
		gas = new(big.Int).SetUint64(types.IntrinsicGas(data))
	}
	tx, err := types.NewTransaction(cfg.txConfig(), types.TxData{
		Nonce:    flags.GlobalBig(ctx, nonceFlag.Name),
		GasPrice: flags.GlobalBig(ctx, gasPriceFlag.Name),
		GasLimit: gas,
		To:       to,
		Value:    flags.GlobalBig(ctx, valueFlag.Name),
		Data:     data,
	})
	if err != nil {
		return err
	}
	key, err := utils.LoadKey(ctx, cfg.openKeyStore)
	if err != nil {
		return err
	}
	if err := tx.Sign(key); err != nil {
		return err
	}
	log.Debug("Signed transaction", "hash", tx.Hash(), "chain", tx.ChainID(), "from", key.Address())

	if ctx.Bool(jsonFlag.Name) {
		return printJSON(ctx, tx)
	}
	w := ctx.App.Writer
	fmt.Fprintln(w, "Transaction:", tx.Hex())
	fmt.Fprintln(w, "Hash:       ", tx.ID())
	fmt.Fprintln(w, "From:       ", key.Address().Hex())
	return nil
}

func decodeTx(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return fmt.Errorf("expected a transaction")
	}
	cfg := configFrom(ctx)
	tx, err := types.DecodeTransaction(cfg.txConfig(), []byte(ctx.Args().First()))
	if err != nil {
		return err
	}
	return printJSON(ctx, tx)
}

type recovered struct {
	tx   *types.Transaction
	from string
}

func recoverTxs(ctx *cli.Context) error {
	inputs := ctx.Args().Slice()
	if file := ctx.String(fileFlag.Name); file != "" {
		lines, err := readLines(ctx, file)
		if err != nil {
			return err
		}
		inputs = append(inputs, lines...)
	}
	if len(inputs) == 0 {
		return fmt.Errorf("expected at least one transaction")
	}
	results, err := recoverAll(configFrom(ctx).txConfig(), inputs)
	if err != nil {
		return err
	}
	for _, r := range results {
		chain := "legacy"
		if id := r.tx.ChainID(); id != nil {
			chain = id.String()
		}
		fmt.Fprintf(ctx.App.Writer, "%s %s %s\n", r.tx.ID(), chain, r.from)
	}
	return nil
}

// recoverAll decodes the inputs in parallel and recovers their senders.
// Results keep input order. The first failure is reported with its position.
//
// 并发解码，结果按输入顺序写回。
func recoverAll(cfg types.Config, inputs []string) ([]recovered, error) {
	results := make([]recovered, len(inputs))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, input := range inputs {
		g.Go(func() error {
			tx, err := types.DecodeTransaction(cfg, []byte(input))
			if err != nil {
				return fmt.Errorf("transaction %d: %w", i, err)
			}
			from, err := types.Sender(tx)
			if err != nil {
				return fmt.Errorf("transaction %d: %w", i, err)
			}
			results[i] = recovered{tx: tx, from: from.Hex()}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func readLines(ctx *cli.Context, file string) ([]string, error) {
	var r io.Reader
	if file == "-" {
		r = ctx.App.Reader
	} else {
		f, err := os.Open(file)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(nil, 1<<20)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, scanner.Err()
}
