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

package data_test

import (
	"math"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/pv-screener/data"
	"github.com/penny-vault/pv-screener/screener"
)

var _ = Describe("Statements", func() {
	Describe("when building a statement", func() {
		It("should upper case the ticker", func() {
			fs := data.NewFinancialStatement("acme", "2023-FY")
			Expect(fs.Ticker).To(Equal("ACME"))
		})

		It("should store values in the requested section", func() {
			fs := data.NewFinancialStatement("ACME", "2023-FY")
			Expect(fs.Set(data.BalanceSheet, data.CurrentAssets, 200)).To(Succeed())
			Expect(fs.BalanceSheet).To(HaveKeyWithValue(data.CurrentAssets, 200.0))

			val, ok := fs.Lookup(data.CurrentAssets)
			Expect(ok).To(BeTrue())
			Expect(val).To(Equal(200.0))
		})

		It("should reject unknown sections", func() {
			fs := data.NewFinancialStatement("ACME", "2023-FY")
			Expect(fs.Set(data.Section("notes"), data.Cash, 1)).To(MatchError(data.ErrUnknownSection))
		})

		It("should report fields that are missing", func() {
			fs := data.NewFinancialStatement("ACME", "2023-FY")
			_, ok := fs.Lookup(data.Revenue)
			Expect(ok).To(BeFalse())
		})
	})

	DescribeTable("validating statements",
		func(ticker string, val float64, expected error) {
			fs := data.NewFinancialStatement(ticker, "2023-FY")
			Expect(fs.Set(data.IncomeStatement, data.Revenue, val)).To(Succeed())
			err := fs.Validate()
			if expected == nil {
				Expect(err).To(BeNil())
			} else {
				Expect(err).To(MatchError(expected))
			}
		},
		Entry("a complete statement", "ACME", 500.0, nil),
		Entry("a statement without a ticker", "  ", 500.0, data.ErrMissingTicker),
		Entry("a statement with NaN", "ACME", math.NaN(), data.ErrInvalidValue),
		Entry("a statement with infinity", "ACME", math.Inf(1), data.ErrInvalidValue),
	)

	Describe("when parsing statement files", func() {
		Context("with JSON input", func() {
			It("should read every statement", func() {
				input := `[
					{"ticker": "acme", "period": "2023-FY",
					 "income_statement": {"revenue": 500, "net_income": 50},
					 "balance_sheet": {"current_assets": 200, "current_liabilities": 100},
					 "market_data": {"stock_price": 10}},
					{"ticker": "globex", "income_statement": {"revenue": 10}}
				]`
				statements, err := data.ParseJSON(strings.NewReader(input))
				Expect(err).To(BeNil())
				Expect(statements).To(HaveLen(2))
				Expect(statements[0].Ticker).To(Equal("ACME"))
				Expect(statements[0].Period).To(Equal("2023-FY"))
				Expect(statements[0].IncomeStatement).To(HaveKeyWithValue(data.NetIncome, 50.0))
				Expect(statements[0].BalanceSheet).To(HaveKeyWithValue(data.CurrentLiabilities, 100.0))
				Expect(statements[1].CashFlow).To(BeEmpty())
			})

			It("should keep a statement without a ticker for the screener to reject", func() {
				statements, err := data.ParseJSON(strings.NewReader(`[
					{"ticker": "ACME", "income_statement": {"revenue": 1}},
					{"income_statement": {"revenue": 1}}
				]`))
				Expect(err).To(BeNil())
				Expect(statements).To(HaveLen(2))
				Expect(statements[0].Validate()).To(Succeed())
				Expect(statements[1].Validate()).To(MatchError(data.ErrMissingTicker))
			})

			It("should pass a null entry through to the screener", func() {
				statements, err := data.ParseJSON(strings.NewReader(`[{"ticker": "ACME", "income_statement": {"revenue": 1}}, null]`))
				Expect(err).To(BeNil())
				Expect(statements).To(HaveLen(2))
				Expect(statements[1]).To(BeNil())

				report, err := screener.Scan(statements, screener.DefaultCriteria())
				Expect(err).To(BeNil())
				Expect(report.Results()).To(HaveLen(1))
				Expect(report.Failed()).To(HaveLen(1))
			})

			It("should fail on an empty list", func() {
				_, err := data.ParseJSON(strings.NewReader(`[]`))
				Expect(err).To(MatchError(data.ErrNoStatements))
			})
		})

		Context("with TOML input", func() {
			It("should read every statement", func() {
				input := `
[[statement]]
ticker = "ACME"
period = "2023-FY"

[statement.income_statement]
revenue = 500.0
net_income = 50.0

[statement.market_data]
stock_price = 12.5
shares_outstanding = 100.0
`
				statements, err := data.ParseTOML(strings.NewReader(input))
				Expect(err).To(BeNil())
				Expect(statements).To(HaveLen(1))
				Expect(statements[0].MarketData).To(HaveKeyWithValue(data.StockPrice, 12.5))
				Expect(statements[0].IncomeStatement).To(HaveKeyWithValue(data.Revenue, 500.0))
			})

			It("should not drop the batch when one statement has a non-finite value", func() {
				input := `
[[statement]]
ticker = "ACME"
period = "2023-FY"

[statement.balance_sheet]
current_assets = 200.0
current_liabilities = 100.0

[[statement]]
ticker = "BAD"
period = "2023-FY"

[statement.balance_sheet]
current_assets = nan
current_liabilities = 100.0
`
				statements, err := data.ParseTOML(strings.NewReader(input))
				Expect(err).To(BeNil())
				Expect(statements).To(HaveLen(2))

				report, err := screener.Scan(statements, screener.DefaultCriteria())
				Expect(err).To(BeNil())
				Expect(report.Results()).To(HaveLen(1))
				Expect(report.Results()[0].Ticker).To(Equal("ACME"))

				failed := report.Failed()
				Expect(failed).To(HaveLen(1))
				Expect(failed[0].Ticker).To(Equal("BAD"))
				Expect(failed[0].Err).To(MatchError(data.ErrInvalidValue))
			})
		})

		Context("with a file on disk", func() {
			var dir string

			BeforeEach(func() {
				var err error
				dir, err = os.MkdirTemp("", "statements")
				Expect(err).To(BeNil())
				DeferCleanup(os.RemoveAll, dir)
			})

			It("should choose the parser from the extension", func() {
				fn := filepath.Join(dir, "statements.json")
				Expect(os.WriteFile(fn, []byte(`[{"ticker": "ACME", "income_statement": {"revenue": 1}}]`), 0o600)).To(Succeed())
				statements, err := data.LoadStatements(fn)
				Expect(err).To(BeNil())
				Expect(statements).To(HaveLen(1))
			})

			It("should reject unknown extensions", func() {
				fn := filepath.Join(dir, "statements.csv")
				Expect(os.WriteFile(fn, []byte("ticker\n"), 0o600)).To(Succeed())
				_, err := data.LoadStatements(fn)
				Expect(err).To(MatchError(data.ErrUnsupportedFormat))
			})
		})
	})
})
