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
	"errors"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"reflect"
	"unicode"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethsign/ethsign/accounts/keystore"
	"github.com/ethsign/ethsign/cmd/utils"
	"github.com/ethsign/ethsign/core/types"
	"github.com/ethsign/ethsign/internal/debug"
	"github.com/ethsign/ethsign/internal/flags"
	"github.com/naoina/toml"
	"github.com/urfave/cli/v2"
)

var (
	dumpConfigCommand = &cli.Command{
		Action:      dumpConfig,
		Name:        "dumpconfig",
		Usage:       "Export configuration values in a TOML format",
		ArgsUsage:   "<dumpfile (optional)>",
		Description: `Export configuration values in TOML format (to stdout by default).`,
	}

	configFileFlag = &cli.StringFlag{
		Name:     "config",
		Usage:    "TOML configuration file",
		Category: flags.MiscCategory,
	}
)

// These settings ensure that TOML keys use the same names as Go struct fields.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		var link string
		if unicode.IsUpper(rune(rt.Name()[0])) && rt.PkgPath() != "main" {
			link = fmt.Sprintf(", see https://godoc.org/%s#%s for available fields", rt.PkgPath(), rt.Name())
		}
		return fmt.Errorf("field '%s' is not defined in %s%s", field, rt.String(), link)
	},
}

type signerConfig struct {
	ChainID *math.HexOrDecimal256 `toml:",omitempty"`
	DataHex bool
}

type keystoreConfig struct {
	Dir        string
	KDF        string
	Iterations int `toml:",omitempty"`
	ScryptN    int `toml:",omitempty"`
	ScryptP    int `toml:",omitempty"`
}

// 配置文件的三个段：Signer、Keystore、Log。命令行参数优先于配置文件。
type ethsignConfig struct {
	Signer   signerConfig
	Keystore keystoreConfig
	Log      debug.LogConfig
}

func defaultConfig() ethsignConfig {
	return ethsignConfig{
		Signer: signerConfig{DataHex: types.DefaultConfig().DataHex},
		Keystore: keystoreConfig{
			Dir:        defaultKeyStoreDir(),
			KDF:        keystore.KDFPBKDF2,
			Iterations: keystore.DefaultPBKDF2Iterations,
		},
		Log: debug.DefaultLogConfig,
	}
}

func defaultKeyStoreDir() string {
	if home := flags.HomeDir(); home != "" {
		return filepath.Join(home, ".ethsign", "keystore")
	}
	return "keystore"
}

func loadConfig(file string, cfg *ethsignConfig) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	// Add file name to errors that have a line number.
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(file + ", " + err.Error())
	}
	return err
}

// makeConfig loads the configuration file, if any, and applies the command
// line flags on top of it.
func makeConfig(ctx *cli.Context) (ethsignConfig, error) {
	cfg := defaultConfig()
	if file := ctx.String(configFileFlag.Name); file != "" {
		if err := loadConfig(file, &cfg); err != nil {
			return cfg, err
		}
	}
	id, set, err := utils.ChainIDFromFlags(ctx)
	if err != nil {
		return cfg, err
	}
	if set {
		cfg.Signer.ChainID = (*math.HexOrDecimal256)(id)
	}
	if ctx.IsSet(utils.DataHexFlag.Name) {
		cfg.Signer.DataHex = ctx.Bool(utils.DataHexFlag.Name)
	}
	setKeyStoreConfig(ctx, &cfg.Keystore)
	debug.ApplyFlags(ctx, &cfg.Log)
	return cfg, nil
}

func setKeyStoreConfig(ctx *cli.Context, cfg *keystoreConfig) {
	if ctx.IsSet(utils.KeyStoreDirFlag.Name) {
		cfg.Dir = ctx.String(utils.KeyStoreDirFlag.Name)
	}
	if ctx.IsSet(utils.KDFFlag.Name) {
		cfg.KDF = ctx.String(utils.KDFFlag.Name)
	}
	if ctx.IsSet(utils.KDFIterationsFlag.Name) {
		cfg.Iterations = ctx.Int(utils.KDFIterationsFlag.Name)
	}
	if ctx.Bool(utils.LightKDFFlag.Name) {
		cfg.KDF = keystore.KDFScrypt
		cfg.ScryptN = keystore.LightScryptN
		cfg.ScryptP = keystore.LightScryptP
	}
}

// txConfig is the transaction configuration selected by cfg.
func (cfg ethsignConfig) txConfig() types.Config {
	c := types.Config{DataHex: cfg.Signer.DataHex}
	if cfg.Signer.ChainID != nil {
		c.ChainID = new(big.Int).Set((*big.Int)(cfg.Signer.ChainID))
	}
	return c
}

// keystoreOptions are the encryption options for new key files.
func (cfg ethsignConfig) keystoreOptions() keystore.Options {
	return keystore.Options{
		KDF:        cfg.Keystore.KDF,
		Iterations: cfg.Keystore.Iterations,
		ScryptN:    cfg.Keystore.ScryptN,
		ScryptP:    cfg.Keystore.ScryptP,
	}
}

func (cfg ethsignConfig) openKeyStore() (*keystore.KeyStore, error) {
	return keystore.NewKeyStore(cfg.Keystore.Dir, cfg.keystoreOptions())
}

// dumpConfig is the dumpconfig command.
func dumpConfig(ctx *cli.Context) error {
	cfg := configFrom(ctx)
	out, err := tomlSettings.Marshal(&cfg)
	if err != nil {
		return err
	}

	dump := ctx.App.Writer
	if ctx.NArg() > 0 {
		f, err := os.OpenFile(ctx.Args().Get(0), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return err
		}
		defer f.Close()
		dump = f
	}
	_, err = dump.Write(out)
	return err
}
