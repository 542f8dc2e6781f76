// Copyright 2014 The go-ethereum Authors
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

// ethsign signs and verifies legacy Ethereum transactions and messages.
package main

import (
	"os"

	"github.com/ethsign/ethsign/cmd/utils"
	"github.com/ethsign/ethsign/internal/debug"
	"github.com/ethsign/ethsign/internal/flags"
	"github.com/urfave/cli/v2"
)

const configKey = "ethsign.config"

var app = newApp()

// Before 钩子中加载配置并初始化日志，After 钩子中停止 profiling。
func newApp() *cli.App {
	app := flags.NewApp("sign and verify Ethereum transactions and messages offline")
	app.Flags = flags.Merge(
		[]cli.Flag{configFileFlag},
		utils.SignerFlags,
		utils.AccountFlags,
		debug.Flags,
	)
	app.Commands = []*cli.Command{
		keygenCommand,
		addressCommand,
		checksumCommand,
		signCommand,
		decodeCommand,
		recoverCommand,
		personalSignCommand,
		personalRecoverCommand,
		keystoreCommand,
		dumpConfigCommand,
	}
	app.Before = func(ctx *cli.Context) error {
		cfg, err := makeConfig(ctx)
		if err != nil {
			return err
		}
		if ctx.App.Metadata == nil {
			ctx.App.Metadata = make(map[string]interface{})
		}
		ctx.App.Metadata[configKey] = cfg
		return debug.Setup(ctx, cfg.Log)
	}
	app.After = func(ctx *cli.Context) error {
		debug.Exit()
		return nil
	}
	return app
}

// configFrom returns the configuration prepared before the command ran.
func configFrom(ctx *cli.Context) ethsignConfig {
	if cfg, ok := ctx.App.Metadata[configKey].(ethsignConfig); ok {
		return cfg
	}
	return defaultConfig()
}

func main() {
	if err := app.Run(os.Args); err != nil {
		utils.Fatalf("%v", err)
	}
}
