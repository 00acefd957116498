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

package ratio_test

import (
	"math/rand"

	"github.com/goccy/go-json"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/pv-screener/data"
	"github.com/penny-vault/pv-screener/ratio"
)

func acme() *data.FinancialStatement {
	fs := data.NewFinancialStatement("ACME", "2023-FY")
	fs.IncomeStatement = data.Values{
		data.Revenue:         500,
		data.CostOfGoodsSold: 300,
		data.OperatingIncome: 120,
		data.InterestExpense: 10,
		data.NetIncome:       50,
	}
	fs.BalanceSheet = data.Values{
		data.Cash:               60,
		data.Receivables:        50,
		data.Inventory:          40,
		data.CurrentAssets:      200,
		data.TotalAssets:        800,
		data.CurrentLiabilities: 100,
		data.TotalLiabilities:   400,
		data.TotalEquity:        400,
	}
	fs.CashFlow = data.Values{
		data.OperatingCashFlow:   90,
		data.CapitalExpenditures: 30,
	}
	fs.MarketData = data.Values{
		data.StockPrice:        10,
		data.SharesOutstanding: 100,
	}
	return fs
}

func expectRatio(set *ratio.Set, name ratio.Name, expected float64) {
	val, ok := set.Get(name).Float64()
	ExpectWithOffset(1, ok).To(BeTrue(), "ratio %s should be defined", name)
	ExpectWithOffset(1, val).To(BeNumerically("~", expected, 1e-9), "ratio %s", name)
}

var _ = Describe("Ratio", func() {
	Describe("Value", func() {
		It("should treat undefined as failing every comparison", func() {
			Expect(ratio.Undefined.AtLeast(-1e300)).To(BeFalse())
			Expect(ratio.Undefined.AtMost(1e300)).To(BeFalse())
			Expect(ratio.Undefined.String()).To(Equal("undefined"))
		})

		It("should compare inclusively at the boundary", func() {
			Expect(ratio.Of(10).AtLeast(10)).To(BeTrue())
			Expect(ratio.Of(10).AtMost(10)).To(BeTrue())
		})

		DescribeTable("dividing",
			func(num, den float64, defined bool) {
				Expect(ratio.Divide(num, den).IsDefined()).To(Equal(defined))
			},
			Entry("by a positive number", 1.0, 2.0, true),
			Entry("by zero", 1.0, 0.0, false),
			Entry("by a negative number", 1.0, -2.0, false),
			Entry("zero by a positive number", 0.0, 2.0, true),
		)

		It("should marshal undefined as null", func() {
			b, err := json.Marshal(map[string]ratio.Value{"a": ratio.Of(1.5), "b": ratio.Undefined})
			Expect(err).To(BeNil())
			Expect(string(b)).To(MatchJSON(`{"a": 1.5, "b": null}`))

			var out map[string]ratio.Value
			Expect(json.Unmarshal(b, &out)).To(Succeed())
			Expect(out["a"].Or(0)).To(Equal(1.5))
			Expect(out["b"].IsDefined()).To(BeFalse())
		})
	})

	Describe("when computing ratios for a complete statement", func() {
		var set *ratio.Set

		BeforeEach(func() {
			set = ratio.Compute(acme())
		})

		It("should keep the ticker and period", func() {
			Expect(set.Ticker()).To(Equal("ACME"))
			Expect(set.Period()).To(Equal("2023-FY"))
		})

		It("should normalize the ticker", func() {
			fs := acme()
			fs.Ticker = " acme\t"
			Expect(ratio.Compute(fs).Ticker()).To(Equal("ACME"))
		})

		It("should produce every ratio in Groups", func() {
			count := 0
			for _, group := range ratio.Groups {
				for _, name := range group.Names {
					Expect(set.Get(name).IsDefined()).To(BeTrue(), "ratio %s", name)
					count++
				}
			}
			Expect(set.Len()).To(Equal(count))
		})

		DescribeTable("each ratio",
			func(name ratio.Name, expected float64) {
				expectRatio(set, name, expected)
			},
			Entry("current ratio", ratio.CurrentRatio, 2.0),
			Entry("quick ratio", ratio.QuickRatio, 1.6),
			Entry("cash ratio", ratio.CashRatio, 0.6),
			Entry("acid test", ratio.AcidTest, 1.1),
			Entry("gross margin falls back to revenue - cogs", ratio.GrossMargin, 40.0),
			Entry("operating margin", ratio.OperatingMargin, 24.0),
			Entry("net margin", ratio.NetMargin, 10.0),
			Entry("roa", ratio.ROA, 6.25),
			Entry("roe", ratio.ROE, 12.5),
			Entry("eps", ratio.EPS, 0.5),
			Entry("debt to equity", ratio.DebtToEquity, 1.0),
			Entry("debt to assets", ratio.DebtToAssets, 0.5),
			Entry("equity ratio", ratio.EquityRatio, 0.5),
			Entry("interest coverage", ratio.InterestCoverage, 12.0),
			Entry("asset turnover", ratio.AssetTurnover, 0.625),
			Entry("inventory turnover", ratio.InventoryTurnover, 7.5),
			Entry("receivables turnover", ratio.ReceivablesTurnover, 10.0),
			Entry("dso", ratio.DSO, 36.5),
			Entry("book value per share", ratio.BookValuePerShare, 4.0),
			Entry("pe ratio", ratio.PERatio, 20.0),
			Entry("pb ratio", ratio.PBRatio, 2.5),
			Entry("market to book", ratio.MarketToBook, 2.5),
			Entry("operating cash flow ratio", ratio.OperatingCashFlowRatio, 0.9),
			Entry("free cash flow margin", ratio.FreeCashFlowMargin, 12.0),
		)

		It("should prefer a reported gross profit", func() {
			fs := acme()
			fs.IncomeStatement[data.GrossProfit] = 250
			expectRatio(ratio.Compute(fs), ratio.GrossMargin, 50.0)
		})
	})

	Describe("when a divisor is not positive", func() {
		It("should leave liquidity ratios undefined with zero current liabilities", func() {
			fs := acme()
			fs.BalanceSheet[data.CurrentLiabilities] = 0
			set := ratio.Compute(fs)
			Expect(set.Get(ratio.CurrentRatio).IsDefined()).To(BeFalse())
			Expect(set.Get(ratio.QuickRatio).IsDefined()).To(BeFalse())
			Expect(set.Get(ratio.CashRatio).IsDefined()).To(BeFalse())
			Expect(set.Get(ratio.AcidTest).IsDefined()).To(BeFalse())
		})

		It("should leave equity based ratios undefined with negative equity", func() {
			fs := acme()
			fs.BalanceSheet[data.TotalEquity] = -50
			set := ratio.Compute(fs)
			Expect(set.Get(ratio.DebtToEquity).IsDefined()).To(BeFalse())
			Expect(set.Get(ratio.ROE).IsDefined()).To(BeFalse())
			Expect(set.Get(ratio.PBRatio).IsDefined()).To(BeFalse())
			Expect(set.Get(ratio.MarketToBook).IsDefined()).To(BeFalse())
			expectRatio(set, ratio.EquityRatio, -0.0625)
		})

		It("should leave interest coverage undefined without interest expense", func() {
			fs := acme()
			fs.IncomeStatement[data.InterestExpense] = 0
			Expect(ratio.Compute(fs).Get(ratio.InterestCoverage).IsDefined()).To(BeFalse())
		})

		It("should leave the P/E undefined when earnings are negative", func() {
			fs := acme()
			fs.IncomeStatement[data.NetIncome] = -10
			set := ratio.Compute(fs)
			expectRatio(set, ratio.EPS, -0.1)
			Expect(set.Get(ratio.PERatio).IsDefined()).To(BeFalse())
		})
	})

	Describe("when a field is missing", func() {
		It("should leave dependent ratios undefined", func() {
			fs := acme()
			delete(fs.BalanceSheet, data.Inventory)
			set := ratio.Compute(fs)
			Expect(set.Get(ratio.QuickRatio).IsDefined()).To(BeFalse())
			Expect(set.Get(ratio.InventoryTurnover).IsDefined()).To(BeFalse())
			expectRatio(set, ratio.CurrentRatio, 2.0)
		})

		It("should not fail on an empty statement", func() {
			set := ratio.Compute(data.NewFinancialStatement("EMPTY", ""))
			for _, group := range ratio.Groups {
				for _, name := range group.Names {
					Expect(set.Get(name).IsDefined()).To(BeFalse())
				}
			}
		})
	})

	It("should compute the current ratio exactly for any positive inputs", func() {
		rng := rand.New(rand.NewSource(42))
		for ii := 0; ii < 1000; ii++ {
			ca := rng.Float64()*1e6 + 1e-3
			cl := rng.Float64()*1e6 + 1e-3
			fs := data.NewFinancialStatement("RAND", "")
			fs.BalanceSheet[data.CurrentAssets] = ca
			fs.BalanceSheet[data.CurrentLiabilities] = cl
			val, ok := ratio.Compute(fs).Get(ratio.CurrentRatio).Float64()
			Expect(ok).To(BeTrue())
			Expect(val).To(BeNumerically("~", ca/cl, 1e-9))
		}
	})

	It("should not share its values with callers", func() {
		set := ratio.Compute(acme())
		m := set.Map()
		m[ratio.CurrentRatio] = ratio.Of(-1)
		expectRatio(set, ratio.CurrentRatio, 2.0)
	})
})
