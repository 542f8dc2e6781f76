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

package types

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethsign/ethsign/common"
	"github.com/ethsign/ethsign/params"
	"github.com/ethsign/ethsign/rlp"
	"github.com/holiman/uint256"
)

var (
	// ErrValidation is the root of all static validation failures.
	ErrValidation = errors.New("validation error")
	// ErrInvalidTransaction is returned when the fields of a transaction are not
	// well formed.
	ErrInvalidTransaction = fmt.Errorf("%w: invalid transaction", ErrValidation)
	// ErrGasLimitTooLow is returned when the gas limit is below the intrinsic gas.
	ErrGasLimitTooLow = fmt.Errorf("%w: gas limit too low", ErrInvalidTransaction)
	// ErrValuesTooHigh is returned when a numeric field leaves the uint256 range.
	ErrValuesTooHigh = fmt.Errorf("%w: values way too high", ErrInvalidTransaction)
	// ErrInvalidSig is returned for v, r, s values that cannot be encoded.
	ErrInvalidSig = fmt.Errorf("%w: invalid transaction v, r, s values", ErrInvalidTransaction)
	// ErrTxFieldCount is returned when a decoded transaction is not a 9 element list.
	ErrTxFieldCount = errors.New("transaction must have 9 fields")

	errInvalidTo = errors.New("recipient must be empty or 20 bytes")
)

// Config is the snapshot of the process wide signer settings a transaction is
// built with.
//
// Config 由调用者显式传入，替代进程级的全局配置。
type Config struct {
	// ChainID is the default chain id. nil means legacy, replayable signatures.
	ChainID *big.Int
	// DataHex selects whether Map presents data as 0x hex text or raw bytes.
	DataHex bool
}

// DefaultConfig returns the configuration used when nothing else is set: no
// chain id and hex data.
func DefaultConfig() Config {
	return Config{DataHex: true}
}

// TxData holds the wire fields of a transaction. Nil integers are zero.
type TxData struct {
	Nonce    *big.Int
	GasPrice *big.Int
	GasLimit *big.Int
	To       *common.Address // nil means contract creation
	Value    *big.Int
	Data     []byte
	V, R, S  *big.Int
}

// TxOption customizes NewTransaction.
type TxOption func(*txOptions)

type txOptions struct {
	chainID    *big.Int
	chainIDSet bool
}

// WithChainID overrides the chain id of the configuration. WithChainID(nil)
// explicitly requests a legacy transaction.
func WithChainID(id *big.Int) TxOption {
	return func(o *txOptions) {
		o.chainID = id
		o.chainIDSet = true
	}
}

// Transaction is a value transfer transaction. It is a single owner value: it
// holds no locks and callers must serialize access to a given instance.
//
// hash、sig、from 是派生缓存，任何改变签名原像的操作都必须同步清空它们。
type Transaction struct {
	inner   TxData
	chainID *big.Int
	dataHex bool

	// caches
	hash atomic.Pointer[common.Hash]
	sig  atomic.Pointer[Signature]
	from atomic.Pointer[sigCache]
}

// NewTransaction validates fields and creates a transaction. The chain id
// defaults to cfg.ChainID unless WithChainID is given. A zero chain id is the
// same as none.
func NewTransaction(cfg Config, fields TxData, opts ...TxOption) (*Transaction, error) {
	var o txOptions
	for _, opt := range opts {
		opt(&o)
	}
	chainID := cfg.ChainID
	if o.chainIDSet {
		chainID = o.chainID
	}
	tx := &Transaction{
		inner:   fields.copy(),
		chainID: NormalizeChainID(chainID),
		dataHex: cfg.DataHex,
	}
	if err := tx.validate(); err != nil {
		return nil, err
	}
	return tx, nil
}

// IntrinsicGas computes the minimum gas a transaction carrying data must
// provide.
func IntrinsicGas(data []byte) uint64 {
	z := uint64(bytes.Count(data, []byte{0}))
	nz := uint64(len(data)) - z
	return params.TxGas + z*params.TxDataZeroGas + nz*params.TxDataNonZeroGasFrontier
}

func (d TxData) copy() TxData {
	cpy := TxData{
		Nonce:    bigOrZero(d.Nonce),
		GasPrice: bigOrZero(d.GasPrice),
		GasLimit: bigOrZero(d.GasLimit),
		To:       copyAddressPtr(d.To),
		Value:    bigOrZero(d.Value),
		Data:     common.CopyBytes(d.Data),
		V:        bigOrZero(d.V),
		R:        bigOrZero(d.R),
		S:        bigOrZero(d.S),
	}
	if cpy.Data == nil {
		cpy.Data = []byte{}
	}
	return cpy
}

func (tx *Transaction) validate() error {
	for _, x := range []*big.Int{tx.inner.Nonce, tx.inner.GasPrice, tx.inner.GasLimit, tx.inner.Value} {
		if x.Sign() < 0 {
			return fmt.Errorf("%w: negative value %v", ErrValuesTooHigh, x)
		}
		if _, overflow := uint256.FromBig(x); overflow {
			return ErrValuesTooHigh
		}
	}
	for _, x := range []*big.Int{tx.inner.V, tx.inner.R, tx.inner.S} {
		if x.Sign() < 0 || x.BitLen() > 256 {
			return ErrInvalidSig
		}
	}
	return checkGas(tx.inner.GasLimit, tx.inner.Data)
}

func checkGas(gasLimit *big.Int, data []byte) error {
	floor := IntrinsicGas(data)
	if gasLimit.Cmp(new(big.Int).SetUint64(floor)) < 0 {
		return fmt.Errorf("%w: have %v, want at least %d", ErrGasLimitTooLow, gasLimit, floor)
	}
	return nil
}

// Nonce returns the sender account nonce of the transaction.
func (tx *Transaction) Nonce() *big.Int { return new(big.Int).Set(tx.inner.Nonce) }

// GasPrice returns the gas price of the transaction.
func (tx *Transaction) GasPrice() *big.Int { return new(big.Int).Set(tx.inner.GasPrice) }

// Gas returns the gas limit of the transaction.
func (tx *Transaction) Gas() *big.Int { return new(big.Int).Set(tx.inner.GasLimit) }

// Value returns the ether amount of the transaction.
func (tx *Transaction) Value() *big.Int { return new(big.Int).Set(tx.inner.Value) }

// To returns the recipient address of the transaction.
// For contract-creation transactions, To returns nil.
func (tx *Transaction) To() *common.Address { return copyAddressPtr(tx.inner.To) }

// Data returns the input data of the transaction.
func (tx *Transaction) Data() []byte { return common.CopyBytes(tx.inner.Data) }

// DataBin is an alias of Data.
func (tx *Transaction) DataBin() []byte { return tx.Data() }

// DataHex returns the input data as 0x prefixed hex.
func (tx *Transaction) DataHex() string { return hexutil.Encode(tx.inner.Data) }

// Cost returns gas * gasPrice + value.
func (tx *Transaction) Cost() *big.Int {
	total := new(big.Int).Mul(tx.inner.GasPrice, tx.inner.GasLimit)
	return total.Add(total, tx.inner.Value)
}

// ChainID returns the chain id the transaction is bound to, or nil.
func (tx *Transaction) ChainID() *big.Int { return copyBig(tx.chainID) }

// Protected reports whether the transaction is signed with replay protection.
func (tx *Transaction) Protected() bool {
	return tx.chainID != nil && !IsLegacyV(tx.inner.V)
}

// RawSignatureValues returns the V, R, S signature values of the transaction.
// The return values should not be modified by the caller.
func (tx *Transaction) RawSignatureValues() (v, r, s *big.Int) {
	return tx.inner.V, tx.inner.R, tx.inner.S
}

// IsSigned reports whether any of v, r, s is non-zero.
func (tx *Transaction) IsSigned() bool {
	return tx.inner.V.Sign() != 0 || tx.inner.R.Sign() != 0 || tx.inner.S.Sign() != 0
}

// Signature returns the signature held by the transaction, or nil when it is
// unsigned. The result is cached until the signature changes.
func (tx *Transaction) Signature() *Signature {
	if !tx.IsSigned() {
		return nil
	}
	if sig := tx.sig.Load(); sig != nil {
		return sig.Copy()
	}
	sig := &Signature{V: copyBig(tx.inner.V), R: copyBig(tx.inner.R), S: copyBig(tx.inner.S)}
	tx.sig.Store(sig)
	return sig.Copy()
}

// SetData replaces the input data. The gas limit must still cover the
// intrinsic gas of the new data.
func (tx *Transaction) SetData(data []byte) error {
	if err := checkGas(tx.inner.GasLimit, data); err != nil {
		return err
	}
	tx.inner.Data = common.CopyBytes(data)
	if tx.inner.Data == nil {
		tx.inner.Data = []byte{}
	}
	tx.invalidateCaches()
	return nil
}

// SetDataString sets the input data from text. With hex data configured the
// text is decoded as hex, with or without 0x prefix. Otherwise the raw bytes
// of s are used.
func (tx *Transaction) SetDataString(s string) error {
	if !tx.dataHex {
		return tx.SetData([]byte(s))
	}
	data, err := decodeHexText(s)
	if err != nil {
		return fmt.Errorf("invalid hex data: %w", err)
	}
	return tx.SetData(data)
}

// SetChainID rebinds the transaction to another chain. A change invalidates
// the signature: v, r and s are zeroed and every derived value is dropped.
// Setting the current chain id again is a no-op.
func (tx *Transaction) SetChainID(id *big.Int) {
	id = NormalizeChainID(id)
	if sameChainID(tx.chainID, id) {
		return
	}
	tx.chainID = id
	tx.inner.V, tx.inner.R, tx.inner.S = new(big.Int), new(big.Int), new(big.Int)
	tx.invalidateCaches()
}

func (tx *Transaction) invalidateCaches() {
	tx.hash.Store(nil)
	tx.sig.Store(nil)
	tx.from.Store(nil)
}

// signingScheme selects the shape of the signing preimage.
type signingScheme int

const (
	legacyScheme  signingScheme = iota // six fields
	eip155Scheme                       // six fields and chainID, 0, 0
)

func (tx *Transaction) scheme() signingScheme {
	if tx.Protected() {
		return eip155Scheme
	}
	return legacyScheme
}

func (tx *Transaction) baseFields() []rlp.Value {
	to := rlp.Bytes(nil)
	if tx.inner.To != nil {
		to = rlp.Bytes(tx.inner.To.Bytes())
	}
	return []rlp.Value{
		rlp.BigInt(tx.inner.Nonce),
		rlp.BigInt(tx.inner.GasPrice),
		rlp.BigInt(tx.inner.GasLimit),
		to,
		rlp.BigInt(tx.inner.Value),
		rlp.Bytes(tx.inner.Data),
	}
}

func (tx *Transaction) unsignedValue() rlp.Value {
	fields := tx.baseFields()
	if tx.scheme() == eip155Scheme {
		fields = append(fields, rlp.BigInt(tx.chainID), rlp.Uint64(0), rlp.Uint64(0))
	}
	return rlp.NewList(fields...)
}

func (tx *Transaction) encodedValue() rlp.Value {
	fields := append(tx.baseFields(), rlp.BigInt(tx.inner.V), rlp.BigInt(tx.inner.R), rlp.BigInt(tx.inner.S))
	return rlp.NewList(fields...)
}

// UnsignedEncoding returns the signing preimage. Replay protected
// transactions append chainID, 0, 0 to the six payload fields.
func (tx *Transaction) UnsignedEncoding() ([]byte, error) {
	return rlp.EncodeToBytes(tx.unsignedValue())
}

// SigningHash returns the hash to be signed by the sender.
func (tx *Transaction) SigningHash() (common.Hash, error) {
	return rlpHash(tx.unsignedValue())
}

// Encode returns the canonical encoding of all nine fields.
func (tx *Transaction) Encode() ([]byte, error) {
	return rlp.EncodeToBytes(tx.encodedValue())
}

// Hex returns the 0x prefixed hex of the canonical encoding.
func (tx *Transaction) Hex() string {
	enc, _ := tx.Encode()
	return hexutil.Encode(enc)
}

// Hash returns the transaction hash.
func (tx *Transaction) Hash() common.Hash {
	if hash := tx.hash.Load(); hash != nil {
		return *hash
	}
	h, _ := rlpHash(tx.encodedValue())
	tx.hash.Store(&h)
	return h
}

// ID returns the transaction hash as 0x prefixed hex.
func (tx *Transaction) ID() string {
	return tx.Hash().Hex()
}

// Equal reports whether both transactions have the same nine wire fields.
func (tx *Transaction) Equal(other *Transaction) bool {
	if other == nil {
		return false
	}
	a, b := tx.inner, other.inner
	if (a.To == nil) != (b.To == nil) || (a.To != nil && *a.To != *b.To) {
		return false
	}
	return a.Nonce.Cmp(b.Nonce) == 0 &&
		a.GasPrice.Cmp(b.GasPrice) == 0 &&
		a.GasLimit.Cmp(b.GasLimit) == 0 &&
		a.Value.Cmp(b.Value) == 0 &&
		bytes.Equal(a.Data, b.Data) &&
		a.V.Cmp(b.V) == 0 &&
		a.R.Cmp(b.R) == 0 &&
		a.S.Cmp(b.S) == 0
}

// Copy returns a deep copy of the transaction without its caches.
func (tx *Transaction) Copy() *Transaction {
	return &Transaction{
		inner:   tx.inner.copy(),
		chainID: copyBig(tx.chainID),
		dataHex: tx.dataHex,
	}
}

// Fields returns a copy of the wire fields.
func (tx *Transaction) Fields() TxData {
	return tx.inner.copy()
}

// DecodeTransaction parses a transaction from its canonical encoding. The
// input may be binary or hex text with or without 0x prefix. The chain id is
// taken from v, not from cfg.
func DecodeTransaction(cfg Config, input []byte) (*Transaction, error) {
	raw := input
	if isHexText(input) {
		dec, err := decodeHexText(string(input))
		if err != nil {
			return nil, err
		}
		raw = dec
	}
	val, err := rlp.DecodeBytes(raw)
	if err != nil {
		return nil, err
	}
	items, err := val.Items()
	if err != nil {
		return nil, err
	}
	if len(items) != 9 {
		return nil, fmt.Errorf("%w, got %d", ErrTxFieldCount, len(items))
	}
	var (
		fields TxData
		ints   = []**big.Int{&fields.Nonce, &fields.GasPrice, &fields.GasLimit, nil, &fields.Value, nil, &fields.V, &fields.R, &fields.S}
		names  = []string{"nonce", "gasPrice", "gas", "to", "value", "data", "v", "r", "s"}
	)
	for i, item := range items {
		switch i {
		case 3:
			b, err := item.AsBytes()
			if err != nil {
				return nil, fmt.Errorf("tx field %s: %w", names[i], err)
			}
			if len(b) != 0 && len(b) != common.AddressLength {
				return nil, fmt.Errorf("tx field %s: %w", names[i], errInvalidTo)
			}
			if len(b) == common.AddressLength {
				to := common.BytesToAddress(b)
				fields.To = &to
			}
		case 5:
			b, err := item.AsBytes()
			if err != nil {
				return nil, fmt.Errorf("tx field %s: %w", names[i], err)
			}
			fields.Data = b
		default:
			x, err := item.AsBigInt()
			if err != nil {
				return nil, fmt.Errorf("tx field %s: %w", names[i], err)
			}
			*ints[i] = x
		}
	}
	return NewTransaction(cfg, fields, WithChainID(ChainIDFromV(fields.V)))
}

// ParseAddress normalizes a recipient given as text. The empty string means
// contract creation and yields nil. Otherwise 40 hex digits with optional 0x
// prefix are required.
func ParseAddress(s string) (*common.Address, error) {
	if s == "" || s == "0x" {
		return nil, nil
	}
	if !common.IsHexAddress(s) {
		return nil, fmt.Errorf("%w: %s", common.ErrInvalidAddress, s)
	}
	addr := common.HexToAddress(s)
	return &addr, nil
}

// isHexText reports whether input looks like hex text rather than binary.
// Binary transactions start with a list header (>= 0xc0), which is never a
// printable character.
func isHexText(input []byte) bool {
	s := strings.TrimSpace(string(input))
	if common.Has0xPrefix(s) {
		return true
	}
	return common.IsHex(s)
}

func decodeHexText(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if common.Has0xPrefix(s) {
		s = s[2:]
	}
	return hex.DecodeString(s)
}

func sameChainID(a, b *big.Int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Cmp(b) == 0
}

// copyAddressPtr copies an address.
func copyAddressPtr(a *common.Address) *common.Address {
	if a == nil {
		return nil
	}
	cpy := *a
	return &cpy
}

func bigOrZero(x *big.Int) *big.Int {
	if x == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(x)
}
