// Copyright 2016 The go-ethereum Authors
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


package debug

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ethsign/ethsign/internal/flags"
	"github.com/ethsign/ethsign/log"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	VerbosityFlag = &cli.IntFlag{
		Name:     "verbosity",
		Usage:    "Logging verbosity: 0=silent, 1=error, 2=warn, 3=info, 4=debug, 5=detail",
		Value:    3,
		Category: flags.LoggingCategory,
	}
	LogFormatFlag = &cli.StringFlag{
		Name:     "log.format",
		Usage:    "Log format to use (json|logfmt|terminal)",
		Category: flags.LoggingCategory,
	}
	LogFileFlag = &cli.StringFlag{
		Name:     "log.file",
		Usage:    "Write logs to a file",
		Category: flags.LoggingCategory,
	}
	LogRotateFlag = &cli.BoolFlag{
		Name:     "log.rotate",
		Usage:    "Enables log file rotation",
		Category: flags.LoggingCategory,
	}
	logMaxSizeMBsFlag = &cli.IntFlag{
		Name:     "log.maxsize",
		Usage:    "Maximum size in MBs of a single log file",
		Value:    100,
		Category: flags.LoggingCategory,
	}
	logMaxBackupsFlag = &cli.IntFlag{
		Name:     "log.maxbackups",
		Usage:    "Maximum number of log files to retain",
		Value:    10,
		Category: flags.LoggingCategory,
	}
	logMaxAgeFlag = &cli.IntFlag{
		Name:     "log.maxage",
		Usage:    "Maximum number of days to retain a log file",
		Value:    30,
		Category: flags.LoggingCategory,
	}
	logCompressFlag = &cli.BoolFlag{
		Name:     "log.compress",
		Usage:    "Compress the log files",
		Category: flags.LoggingCategory,
	}
	logSourceFlag = &cli.BoolFlag{
		Name:     "log.source",
		Usage:    "Print the source location of each terminal log line",
		Category: flags.LoggingCategory,
	}
	cpuprofileFlag = &cli.StringFlag{
		Name:     "pprof.cpuprofile",
		Usage:    "Write CPU profile to the given file",
		Category: flags.LoggingCategory,
	}
	memprofileFlag = &cli.StringFlag{
		Name:     "pprof.memprofile",
		Usage:    "Write an allocation profile to the given file on exit",
		Category: flags.LoggingCategory,
	}
	traceFlag = &cli.StringFlag{
		Name:     "go-execution-trace",
		Usage:    "Write Go execution trace to the given file",
		Category: flags.LoggingCategory,
	}
)

// Flags holds all command-line flags required for debugging.
var Flags = []cli.Flag{
	VerbosityFlag,
	LogFormatFlag,
	LogFileFlag,
	LogRotateFlag,
	logMaxSizeMBsFlag,
	logMaxBackupsFlag,
	logMaxAgeFlag,
	logCompressFlag,
	logSourceFlag,
	cpuprofileFlag,
	memprofileFlag,
	traceFlag,
}

// LogConfig is the [Log] section of the configuration file.
type LogConfig struct {
	Verbosity  int
	Format     string `toml:",omitempty"`
	File       string `toml:",omitempty"`
	Rotate     bool   `toml:",omitempty"`
	MaxSize    int
	MaxBackups int
	MaxAge     int
	Compress   bool `toml:",omitempty"`
	Source     bool `toml:",omitempty"`
}

// DefaultLogConfig mirrors the flag defaults.
var DefaultLogConfig = LogConfig{
	Verbosity:  3,
	MaxSize:    100,
	MaxBackups: 10,
	MaxAge:     30,
}

// ApplyFlags overrides cfg with the logging flags the user set.
func ApplyFlags(ctx *cli.Context, cfg *LogConfig) {
	if ctx.IsSet(VerbosityFlag.Name) {
		cfg.Verbosity = ctx.Int(VerbosityFlag.Name)
	}
	if ctx.IsSet(LogFormatFlag.Name) {
		cfg.Format = ctx.String(LogFormatFlag.Name)
	}
	if ctx.IsSet(LogFileFlag.Name) {
		cfg.File = ctx.String(LogFileFlag.Name)
	}
	if ctx.IsSet(LogRotateFlag.Name) {
		cfg.Rotate = ctx.Bool(LogRotateFlag.Name)
	}
	if ctx.IsSet(logMaxSizeMBsFlag.Name) {
		cfg.MaxSize = ctx.Int(logMaxSizeMBsFlag.Name)
	}
	if ctx.IsSet(logMaxBackupsFlag.Name) {
		cfg.MaxBackups = ctx.Int(logMaxBackupsFlag.Name)
	}
	if ctx.IsSet(logMaxAgeFlag.Name) {
		cfg.MaxAge = ctx.Int(logMaxAgeFlag.Name)
	}
	if ctx.IsSet(logCompressFlag.Name) {
		cfg.Compress = ctx.Bool(logCompressFlag.Name)
	}
	if ctx.IsSet(logSourceFlag.Name) {
		cfg.Source = ctx.Bool(logSourceFlag.Name)
	}
}

var (
	logOutputFile io.WriteCloser
	memProfile    string
)

// Setup initializes logging and profiling from cfg and the profiling flags.
// Log output goes to stderr so that command results on stdout stay clean.
func Setup(ctx *cli.Context, cfg LogConfig) error {
	stderr := os.Stderr
	useColor := (isatty.IsTerminal(stderr.Fd()) || isatty.IsCygwinTerminal(stderr.Fd())) && os.Getenv("TERM") != "dumb"
	var terminal io.Writer = stderr
	if useColor {
		terminal = colorable.NewColorableStderr()
	}
	handler, file, err := NewHandler(cfg, terminal, useColor)
	if err != nil {
		return err
	}
	logOutputFile = file
	log.SetDefault(log.NewLogger(handler))

	if traceFile := ctx.String(traceFlag.Name); traceFile != "" {
		if err := Handler.StartGoTrace(traceFile); err != nil {
			return err
		}
	}
	if cpuFile := ctx.String(cpuprofileFlag.Name); cpuFile != "" {
		if err := Handler.StartCPUProfile(cpuFile); err != nil {
			return err
		}
	}
	memProfile = ctx.String(memprofileFlag.Name)

	if cfg.File != "" || cfg.Rotate {
		log.Debug("Logging configured", "format", formatName(cfg.Format), "rotate", cfg.Rotate, "location", cfg.File)
	}
	return nil
}

// NewHandler builds the log handler for cfg writing to terminal, plus the
// log file when one is configured. Colour is only used on the terminal.
func NewHandler(cfg LogConfig, terminal io.Writer, useColor bool) (slog.Handler, io.WriteCloser, error) {
	var (
		output = terminal
		file   io.WriteCloser
	)
	switch {
	case cfg.Rotate:
		name := cfg.File
		if name == "" {
			name = filepath.Join(os.TempDir(), "ethsign-lumberjack.log")
		}
		if err := validateLogLocation(filepath.Dir(name)); err != nil {
			return nil, nil, fmt.Errorf("failed to initialize file logger: %v", err)
		}
		file = &lumberjack.Logger{
			Filename:   name,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		}
	case cfg.File != "":
		if err := validateLogLocation(filepath.Dir(cfg.File)); err != nil {
			return nil, nil, fmt.Errorf("failed to initialize file logger: %v", err)
		}
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, nil, err
		}
		file = f
	}
	if file != nil {
		output = io.MultiWriter(terminal, file)
		// 转义序列不应写入日志文件
		useColor = false
	}

	level := log.FromLegacyLevel(cfg.Verbosity)
	if cfg.Verbosity == 0 {
		level = log.LevelCrit + 1
	}
	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = log.JSONHandlerWithLevel(output, level)
	case "logfmt":
		handler = log.LogfmtHandlerWithLevel(output, level)
	case "", "terminal":
		handler = log.NewTerminalHandlerWithLevel(output, level, useColor).WithSource(cfg.Source)
	default:
		if file != nil {
			file.Close()
		}
		return nil, nil, fmt.Errorf("unknown log format: %v", cfg.Format)
	}
	return handler, file, nil
}

func formatName(f string) string {
	if f == "" {
		return "terminal"
	}
	return f
}

// Exit stops all running profiles, flushing their output to the
// respective file, and closes the log file.
func Exit() {
	Handler.StopCPUProfile()
	Handler.StopGoTrace()
	if memProfile != "" {
		if err := Handler.WriteMemProfile(memProfile); err != nil {
			log.Warn("Failed to write memory profile", "err", err)
		}
	}
	if logOutputFile != nil {
		logOutputFile.Close()
	}
}

func validateLogLocation(path string) error {
	if err := os.MkdirAll(path, os.ModePerm); err != nil {
		return fmt.Errorf("error creating the directory: %w", err)
	}
	// Check if the path is writable by trying to create a temporary file
	tmp := filepath.Join(path, "tmp")
	if f, err := os.Create(tmp); err != nil {
		return err
	} else {
		f.Close()
	}
	return os.Remove(tmp)
}
