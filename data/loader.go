// Copyright 2021-2023
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package data

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
)

type rawStatement struct {
	Ticker          string             `json:"ticker" toml:"ticker"`
	Period          string             `json:"period" toml:"period"`
	IncomeStatement map[string]float64 `json:"income_statement" toml:"income_statement"`
	BalanceSheet    map[string]float64 `json:"balance_sheet" toml:"balance_sheet"`
	CashFlow        map[string]float64 `json:"cash_flow" toml:"cash_flow"`
	MarketData      map[string]float64 `json:"market_data" toml:"market_data"`
}

type rawStatementFile struct {
	Statements []*rawStatement `toml:"statement"`
}

func (raw *rawStatement) statement() (*FinancialStatement, error) {
	fs := NewFinancialStatement(strings.TrimSpace(raw.Ticker), raw.Period)
	sections := map[Section]map[string]float64{
		IncomeStatement: raw.IncomeStatement,
		BalanceSheet:    raw.BalanceSheet,
		CashFlow:        raw.CashFlow,
		MarketData:      raw.MarketData,
	}
	for section, values := range sections {
		for k, v := range values {
			if err := fs.Set(section, Field(strings.ToLower(k)), v); err != nil {
				return nil, err
			}
		}
	}
	return fs, nil
}

// convertStatements keeps statements that fail Validate; the screener
// records them as failed entries so the rest of the batch still runs
func convertStatements(raws []*rawStatement) ([]*FinancialStatement, error) {
	if len(raws) == 0 {
		return nil, ErrNoStatements
	}

	statements := make([]*FinancialStatement, 0, len(raws))
	for idx, raw := range raws {
		if raw == nil {
			log.Warn().Int("Index", idx).Msg("statement will not be screened: null entry")
			statements = append(statements, nil)
			continue
		}
		fs, err := raw.statement()
		if err != nil {
			log.Warn().Err(err).Int("Index", idx).Str("Ticker", raw.Ticker).Msg("malformed statement")
			return nil, fmt.Errorf("statement %d: %w", idx, err)
		}
		if err := fs.Validate(); err != nil {
			log.Warn().Err(err).Int("Index", idx).Str("Ticker", raw.Ticker).Msg("statement will not be screened")
		}
		statements = append(statements, fs)
	}
	return statements, nil
}

// ParseJSON reads a JSON array of statements
func ParseJSON(r io.Reader) ([]*FinancialStatement, error) {
	var raws []*rawStatement
	if err := json.NewDecoder(r).Decode(&raws); err != nil {
		return nil, err
	}
	return convertStatements(raws)
}

// ParseTOML reads statements stored as an array of `[[statement]]` tables
func ParseTOML(r io.Reader) ([]*FinancialStatement, error) {
	var file rawStatementFile
	if err := toml.NewDecoder(r).Decode(&file); err != nil {
		return nil, err
	}
	return convertStatements(file.Statements)
}

// LoadStatements reads statements from a .json or .toml file
func LoadStatements(fn string) ([]*FinancialStatement, error) {
	subLog := log.With().Str("FileName", fn).Logger()

	var parse func(io.Reader) ([]*FinancialStatement, error)
	switch strings.ToLower(filepath.Ext(fn)) {
	case ".json":
		parse = ParseJSON
	case ".toml":
		parse = ParseTOML
	default:
		subLog.Error().Msg("unsupported statement file format")
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(fn))
	}

	f, err := os.Open(fn)
	if err != nil {
		subLog.Error().Err(err).Msg("could not open statement file")
		return nil, err
	}
	defer f.Close()

	statements, err := parse(f)
	if err != nil {
		subLog.Error().Err(err).Msg("could not parse statement file")
		return nil, err
	}

	subLog.Debug().Int("NumStatements", len(statements)).Msg("loaded statements")
	return statements, nil
}
