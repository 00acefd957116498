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

package ratio

import (
	"strings"

	"github.com/goccy/go-json"
	"github.com/penny-vault/pv-screener/data"
)

// Name identifies a computed ratio
type Name string

// Liquidity
const (
	CurrentRatio Name = "current_ratio"
	QuickRatio   Name = "quick_ratio"
	CashRatio    Name = "cash_ratio"
	AcidTest     Name = "acid_test"
)

// Profitability
const (
	GrossMargin     Name = "gross_margin"
	OperatingMargin Name = "operating_margin"
	NetMargin       Name = "net_margin"
	ROA             Name = "roa"
	ROE             Name = "roe"
	EPS             Name = "eps"
)

// Leverage
const (
	DebtToEquity     Name = "debt_to_equity"
	DebtToAssets     Name = "debt_to_assets"
	EquityRatio      Name = "equity_ratio"
	InterestCoverage Name = "interest_coverage"
)

// Efficiency
const (
	AssetTurnover       Name = "asset_turnover"
	InventoryTurnover   Name = "inventory_turnover"
	ReceivablesTurnover Name = "receivables_turnover"
	DSO                 Name = "dso"
)

// Market / valuation
const (
	BookValuePerShare Name = "book_value_per_share"
	PERatio           Name = "pe_ratio"
	PBRatio           Name = "pb_ratio"
	MarketToBook      Name = "market_to_book"
)

// Cash flow
const (
	OperatingCashFlowRatio Name = "operating_cash_flow_ratio"
	FreeCashFlowMargin     Name = "free_cash_flow_margin"
)

// Group is a named family of ratios used for presentation
type Group struct {
	Title string
	Names []Name
}

// Groups lists every ratio produced by Compute in presentation order
var Groups = []Group{
	{Title: "Liquidity", Names: []Name{CurrentRatio, QuickRatio, CashRatio, AcidTest}},
	{Title: "Profitability", Names: []Name{GrossMargin, OperatingMargin, NetMargin, ROA, ROE, EPS}},
	{Title: "Leverage", Names: []Name{DebtToEquity, DebtToAssets, EquityRatio, InterestCoverage}},
	{Title: "Efficiency", Names: []Name{AssetTurnover, InventoryTurnover, ReceivablesTurnover, DSO}},
	{Title: "Valuation", Names: []Name{BookValuePerShare, PERatio, PBRatio, MarketToBook}},
	{Title: "Cash Flow", Names: []Name{OperatingCashFlowRatio, FreeCashFlowMargin}},
}

const daysPerYear = 365

// Set holds the ratios derived from one financial statement. A Set is
// never modified after Compute returns it.
type Set struct {
	ticker string
	period string
	values map[Name]Value
}

// NewSet builds a Set from already computed values, e.g. when the ratios
// come from a cache instead of a statement
func NewSet(ticker, period string, values map[Name]Value) *Set {
	copied := make(map[Name]Value, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return &Set{ticker: ticker, period: period, values: copied}
}

func (s *Set) Ticker() string {
	return s.ticker
}

func (s *Set) Period() string {
	return s.period
}

// Get returns the named ratio; unknown names are Undefined
func (s *Set) Get(name Name) Value {
	return s.values[name]
}

// Len returns the number of ratios in the set
func (s *Set) Len() int {
	return len(s.values)
}

// Map returns a copy of the ratios
func (s *Set) Map() map[Name]Value {
	out := make(map[Name]Value, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

func (s *Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.values)
}

type statementFields struct {
	fs *data.FinancialStatement
}

func (sf statementFields) get(field data.Field) Value {
	if val, ok := sf.fs.Lookup(field); ok {
		return Of(val)
	}
	return Undefined
}

// Compute derives every ratio for the statement. It never fails: a ratio
// whose inputs are missing or whose divisor is not positive is Undefined.
func Compute(fs *data.FinancialStatement) *Set {
	f := statementFields{fs: fs}

	revenue := f.get(data.Revenue)
	cogs := f.get(data.CostOfGoodsSold)
	grossProfit := f.get(data.GrossProfit)
	if !grossProfit.IsDefined() {
		grossProfit = difference(revenue, cogs)
	}
	operatingIncome := f.get(data.OperatingIncome)
	interestExpense := f.get(data.InterestExpense)
	netIncome := f.get(data.NetIncome)

	cash := f.get(data.Cash)
	receivables := f.get(data.Receivables)
	inventory := f.get(data.Inventory)
	currentAssets := f.get(data.CurrentAssets)
	totalAssets := f.get(data.TotalAssets)
	currentLiabilities := f.get(data.CurrentLiabilities)
	totalLiabilities := f.get(data.TotalLiabilities)
	totalEquity := f.get(data.TotalEquity)

	operatingCashFlow := f.get(data.OperatingCashFlow)
	capex := f.get(data.CapitalExpenditures)

	price := f.get(data.StockPrice)
	shares := f.get(data.SharesOutstanding)

	eps := quotient(netIncome, shares)
	bookValuePerShare := quotient(totalEquity, shares)
	marketCap := Undefined
	if price.IsDefined() && shares.IsDefined() {
		marketCap = Of(price.val * shares.val)
	}

	values := map[Name]Value{
		CurrentRatio: quotient(currentAssets, currentLiabilities),
		QuickRatio:   quotient(difference(currentAssets, inventory), currentLiabilities),
		CashRatio:    quotient(cash, currentLiabilities),
		AcidTest:     quotient(sum(cash, receivables), currentLiabilities),

		GrossMargin:     quotient(grossProfit, revenue).scale(100),
		OperatingMargin: quotient(operatingIncome, revenue).scale(100),
		NetMargin:       quotient(netIncome, revenue).scale(100),
		ROA:             quotient(netIncome, totalAssets).scale(100),
		ROE:             quotient(netIncome, totalEquity).scale(100),
		EPS:             eps,

		DebtToEquity:     quotient(totalLiabilities, totalEquity),
		DebtToAssets:     quotient(totalLiabilities, totalAssets),
		EquityRatio:      quotient(totalEquity, totalAssets),
		InterestCoverage: quotient(operatingIncome, interestExpense),

		AssetTurnover:       quotient(revenue, totalAssets),
		InventoryTurnover:   quotient(cogs, inventory),
		ReceivablesTurnover: quotient(revenue, receivables),
		DSO:                 quotient(receivables, revenue).scale(daysPerYear),

		BookValuePerShare: bookValuePerShare,
		PERatio:           quotient(price, eps),
		PBRatio:           quotient(price, bookValuePerShare),
		MarketToBook:      quotient(marketCap, totalEquity),

		OperatingCashFlowRatio: quotient(operatingCashFlow, currentLiabilities),
		FreeCashFlowMargin:     quotient(difference(operatingCashFlow, capex), revenue).scale(100),
	}

	return &Set{
		ticker: strings.ToUpper(strings.TrimSpace(fs.Ticker)),
		period: fs.Period,
		values: values,
	}
}
