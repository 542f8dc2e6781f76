// Copyright 2021 The go-ethereum Authors
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
	"encoding/json"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethsign/ethsign/common"
)

// txJSON is the JSON representation of transactions.
type txJSON struct {
	Nonce    *hexutil.Big    `json:"nonce"`
	GasPrice *hexutil.Big    `json:"gasPrice"`
	Gas      *hexutil.Big    `json:"gas"`
	To       *common.Address `json:"to"`
	Value    *hexutil.Big    `json:"value"`
	Input    *hexutil.Bytes  `json:"input"`
	V        *hexutil.Big    `json:"v"`
	R        *hexutil.Big    `json:"r"`
	S        *hexutil.Big    `json:"s"`

	// Only used for encoding.
	ChainID *hexutil.Big    `json:"chainId,omitempty"`
	Hash    common.Hash     `json:"hash"`
	From    *common.Address `json:"from,omitempty"`
}

// MarshalJSON marshals as JSON with a hash field.
func (tx *Transaction) MarshalJSON() ([]byte, error) {
	var enc txJSON
	enc.Nonce = (*hexutil.Big)(tx.inner.Nonce)
	enc.GasPrice = (*hexutil.Big)(tx.inner.GasPrice)
	enc.Gas = (*hexutil.Big)(tx.inner.GasLimit)
	enc.To = tx.To()
	enc.Value = (*hexutil.Big)(tx.inner.Value)
	enc.Input = (*hexutil.Bytes)(&tx.inner.Data)
	enc.V = (*hexutil.Big)(tx.inner.V)
	enc.R = (*hexutil.Big)(tx.inner.R)
	enc.S = (*hexutil.Big)(tx.inner.S)
	if tx.chainID != nil {
		enc.ChainID = (*hexutil.Big)(tx.chainID)
	}
	enc.Hash = tx.Hash()
	if from, ok := tx.From(); ok {
		enc.From = &from
	}
	return json.Marshal(&enc)
}

// UnmarshalJSON unmarshals from JSON. The chain id is taken from chainId when
// present and from v otherwise. Validation is the same as for NewTransaction.
//
// 链 ID 优先取 chainId 字段，其次从 v 推导。
func (tx *Transaction) UnmarshalJSON(input []byte) error {
	var dec txJSON
	if err := json.Unmarshal(input, &dec); err != nil {
		return err
	}
	var fields TxData
	if dec.Nonce == nil {
		return errors.New("missing required field 'nonce' in transaction")
	}
	fields.Nonce = dec.Nonce.ToInt()
	if dec.GasPrice == nil {
		return errors.New("missing required field 'gasPrice' in transaction")
	}
	fields.GasPrice = dec.GasPrice.ToInt()
	if dec.Gas == nil {
		return errors.New("missing required field 'gas' in transaction")
	}
	fields.GasLimit = dec.Gas.ToInt()
	fields.To = dec.To
	if dec.Value == nil {
		return errors.New("missing required field 'value' in transaction")
	}
	fields.Value = dec.Value.ToInt()
	if dec.Input != nil {
		fields.Data = *dec.Input
	}
	if dec.V != nil {
		fields.V = dec.V.ToInt()
	}
	if dec.R != nil {
		fields.R = dec.R.ToInt()
	}
	if dec.S != nil {
		fields.S = dec.S.ToInt()
	}

	chainID := ChainIDFromV(fields.V)
	if dec.ChainID != nil {
		chainID = dec.ChainID.ToInt()
	}
	parsed, err := NewTransaction(DefaultConfig(), fields, WithChainID(chainID))
	if err != nil {
		return err
	}
	tx.inner = parsed.inner
	tx.chainID = parsed.chainID
	tx.dataHex = parsed.dataHex
	tx.invalidateCaches()
	return nil
}

// Map returns the presentation form of the transaction keyed by field name.
// Numeric fields are *big.Int, to is the checksummed address or the empty
// string, and data is hex text or raw bytes depending on the data mode.
func (tx *Transaction) Map() map[string]interface{} {
	to := ""
	if tx.inner.To != nil {
		to = tx.inner.To.Hex()
	}
	var data interface{} = tx.Data()
	if tx.dataHex {
		data = tx.DataHex()
	}
	m := map[string]interface{}{
		"nonce":     tx.Nonce(),
		"gas_price": tx.GasPrice(),
		"gas_limit": tx.Gas(),
		"to":        to,
		"value":     tx.Value(),
		"data":      data,
		"v":         new(big.Int).Set(tx.inner.V),
		"r":         new(big.Int).Set(tx.inner.R),
		"s":         new(big.Int).Set(tx.inner.S),
	}
	if tx.chainID != nil {
		m["chain_id"] = tx.ChainID()
	}
	return m
}
