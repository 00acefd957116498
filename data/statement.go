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
	"math"
	"strings"
)

// Section identifies one of the four groups of a financial statement
type Section string

const (
	IncomeStatement Section = "income_statement"
	BalanceSheet    Section = "balance_sheet"
	CashFlow        Section = "cash_flow"
	MarketData      Section = "market_data"
)

// Sections lists every statement section in presentation order
var Sections = []Section{IncomeStatement, BalanceSheet, CashFlow, MarketData}

// Field is the fixed name of a line item within a statement section
type Field string

// Income statement fields
const (
	Revenue         Field = "revenue"
	CostOfGoodsSold Field = "cost_of_goods_sold"
	GrossProfit     Field = "gross_profit"
	OperatingIncome Field = "operating_income"
	InterestExpense Field = "interest_expense"
	NetIncome       Field = "net_income"
)

// Balance sheet fields
const (
	Cash               Field = "cash"
	Receivables        Field = "receivables"
	Inventory          Field = "inventory"
	CurrentAssets      Field = "current_assets"
	TotalAssets        Field = "total_assets"
	CurrentLiabilities Field = "current_liabilities"
	TotalLiabilities   Field = "total_liabilities"
	TotalEquity        Field = "total_equity"
)

// Cash flow fields
const (
	OperatingCashFlow   Field = "operating_cash_flow"
	CapitalExpenditures Field = "capital_expenditures"
)

// Market data fields
const (
	StockPrice        Field = "stock_price"
	SharesOutstanding Field = "shares_outstanding"
)

// Values maps a field name to its reported value
type Values map[Field]float64

// FinancialStatement is the reported data for one company over one period.
// A statement is treated as immutable once loaded; nothing in this module
// writes to its maps after construction.
type FinancialStatement struct {
	Ticker          string `json:"ticker" toml:"ticker"`
	Period          string `json:"period,omitempty" toml:"period,omitempty"`
	IncomeStatement Values `json:"income_statement" toml:"income_statement"`
	BalanceSheet    Values `json:"balance_sheet" toml:"balance_sheet"`
	CashFlow        Values `json:"cash_flow" toml:"cash_flow"`
	MarketData      Values `json:"market_data" toml:"market_data"`
}

// NewFinancialStatement returns an empty statement for the given ticker
func NewFinancialStatement(ticker, period string) *FinancialStatement {
	return &FinancialStatement{
		Ticker:          strings.ToUpper(ticker),
		Period:          period,
		IncomeStatement: make(Values),
		BalanceSheet:    make(Values),
		CashFlow:        make(Values),
		MarketData:      make(Values),
	}
}

// Section returns the values stored for the requested section
func (fs *FinancialStatement) Section(section Section) (Values, error) {
	switch section {
	case IncomeStatement:
		return fs.IncomeStatement, nil
	case BalanceSheet:
		return fs.BalanceSheet, nil
	case CashFlow:
		return fs.CashFlow, nil
	case MarketData:
		return fs.MarketData, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSection, section)
	}
}

// Set stores a value in the named section. It is only used while building
// a statement from a loader.
func (fs *FinancialStatement) Set(section Section, field Field, value float64) error {
	values, err := fs.Section(section)
	if err != nil {
		return err
	}
	if values == nil {
		values = make(Values)
		switch section {
		case IncomeStatement:
			fs.IncomeStatement = values
		case BalanceSheet:
			fs.BalanceSheet = values
		case CashFlow:
			fs.CashFlow = values
		case MarketData:
			fs.MarketData = values
		}
	}
	values[field] = value
	return nil
}

// Lookup searches every section for field and reports whether it was found
func (fs *FinancialStatement) Lookup(field Field) (float64, bool) {
	for _, values := range []Values{fs.IncomeStatement, fs.BalanceSheet, fs.CashFlow, fs.MarketData} {
		if val, ok := values[field]; ok {
			return val, true
		}
	}
	return 0, false
}

// Validate checks the statement is usable by the ratio engine: it must
// name a ticker and every value must be a finite number.
func (fs *FinancialStatement) Validate() error {
	if strings.TrimSpace(fs.Ticker) == "" {
		return ErrMissingTicker
	}

	for _, section := range Sections {
		values, _ := fs.Section(section)
		for field, val := range values {
			if math.IsNaN(val) || math.IsInf(val, 0) {
				return fmt.Errorf("%w: %s %s.%s", ErrInvalidValue, fs.Ticker, section, field)
			}
		}
	}

	return nil
}
