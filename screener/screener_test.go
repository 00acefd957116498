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

package screener_test

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/pv-screener/data"
	"github.com/penny-vault/pv-screener/ratio"
	"github.com/penny-vault/pv-screener/screener"
)

// passing returns ratios that pass every category of DefaultCriteria
func passing() map[ratio.Name]ratio.Value {
	return map[ratio.Name]ratio.Value{
		ratio.CurrentRatio:     ratio.Of(2.0),
		ratio.NetMargin:        ratio.Of(12.0),
		ratio.ROE:              ratio.Of(18.0),
		ratio.DebtToEquity:     ratio.Of(0.5),
		ratio.InterestCoverage: ratio.Of(8.0),
		ratio.AssetTurnover:    ratio.Of(0.9),
		ratio.PERatio:          ratio.Of(15.0),
		ratio.PBRatio:          ratio.Of(2.0),
	}
}

func scoreWith(values map[ratio.Name]ratio.Value, criteria screener.Criteria) *screener.Result {
	return screener.Score(ratio.NewSet("ACME", "2023-FY", values), criteria)
}

var _ = Describe("Screener", func() {
	var criteria screener.Criteria

	BeforeEach(func() {
		criteria = screener.DefaultCriteria()
	})

	DescribeTable("mapping scores to ratings",
		func(score int, rating screener.Rating) {
			Expect(screener.RatingForScore(score)).To(Equal(rating))
		},
		Entry("5", 5, screener.StrongBuy),
		Entry("4", 4, screener.StrongBuy),
		Entry("3", 3, screener.Buy),
		Entry("2", 2, screener.Hold),
		Entry("1", 1, screener.Avoid),
		Entry("0", 0, screener.Avoid),
	)

	Context("with a company passing every category", func() {
		It("should score 5 and rate STRONG_BUY", func() {
			result := scoreWith(passing(), criteria)
			Expect(result.Ticker).To(Equal("ACME"))
			Expect(result.Score).To(Equal(5))
			Expect(result.Rating).To(Equal(screener.StrongBuy))
			Expect(result.WeightedScore).To(BeNumerically("~", 1.0, 1e-9))
			for _, category := range screener.Categories {
				Expect(result.Passed(category)).To(BeTrue())
			}
		})
	})

	DescribeTable("failing a single sub-threshold fails its category",
		func(name ratio.Name, val float64, category screener.Category) {
			values := passing()
			values[name] = ratio.Of(val)
			result := scoreWith(values, criteria)
			Expect(result.Passed(category)).To(BeFalse())
			Expect(result.Score).To(Equal(4))
		},
		Entry("current ratio too low", ratio.CurrentRatio, 1.0, screener.Liquidity),
		Entry("net margin too low", ratio.NetMargin, 5.0, screener.Profitability),
		Entry("roe too low", ratio.ROE, 10.0, screener.Profitability),
		Entry("too much debt", ratio.DebtToEquity, 3.0, screener.Leverage),
		Entry("interest coverage too low", ratio.InterestCoverage, 1.0, screener.Leverage),
		Entry("asset turnover too low", ratio.AssetTurnover, 0.1, screener.Efficiency),
		Entry("p/e too high", ratio.PERatio, 40.0, screener.Valuation),
		Entry("p/b too high", ratio.PBRatio, 5.0, screener.Valuation),
	)

	DescribeTable("an undefined ratio fails its category",
		func(name ratio.Name, category screener.Category) {
			values := passing()
			values[name] = ratio.Undefined
			Expect(scoreWith(values, criteria).Passed(category)).To(BeFalse())
		},
		Entry("current ratio", ratio.CurrentRatio, screener.Liquidity),
		Entry("roe", ratio.ROE, screener.Profitability),
		Entry("debt to equity", ratio.DebtToEquity, screener.Leverage),
		Entry("interest coverage", ratio.InterestCoverage, screener.Leverage),
		Entry("asset turnover", ratio.AssetTurnover, screener.Efficiency),
		Entry("p/e", ratio.PERatio, screener.Valuation),
	)

	It("should fail a missing ratio instead of skipping the category", func() {
		values := passing()
		delete(values, ratio.PBRatio)
		result := scoreWith(values, criteria)
		Expect(result.Passed(screener.Valuation)).To(BeFalse())
		Expect(result.Score).To(Equal(4))
	})

	It("should pass liquidity for a statement with current ratio 2.0", func() {
		fs := data.NewFinancialStatement("ACME", "2023-FY")
		fs.BalanceSheet[data.CurrentAssets] = 200
		fs.BalanceSheet[data.CurrentLiabilities] = 100
		result := screener.Score(ratio.Compute(fs), criteria)
		Expect(result.Passed(screener.Liquidity)).To(BeTrue())
		Expect(result.Score).To(Equal(1))
		Expect(result.Rating).To(Equal(screener.Avoid))
	})

	It("should treat thresholds as inclusive", func() {
		fs := data.NewFinancialStatement("ACME", "2023-FY")
		fs.IncomeStatement[data.NetIncome] = 50
		fs.IncomeStatement[data.Revenue] = 500
		fs.BalanceSheet[data.TotalEquity] = 250
		criteria.Profitability.MinNetMargin = 10.0
		criteria.Profitability.MinROE = 20.0
		result := screener.Score(ratio.Compute(fs), criteria)
		Expect(result.Passed(screener.Profitability)).To(BeTrue())
	})

	It("should only use weights for the weighted score", func() {
		values := passing()
		values[ratio.CurrentRatio] = ratio.Of(0.5)
		values[ratio.PERatio] = ratio.Of(60)
		criteria.Profitability.Weight = 10
		result := scoreWith(values, criteria)
		Expect(result.Score).To(Equal(3))
		Expect(result.Rating).To(Equal(screener.Buy))
		Expect(result.WeightedScore).To(BeNumerically("~", 10+0.20+0.15, 1e-9))
	})

	It("should never lower a score when a single threshold is relaxed", func() {
		rng := rand.New(rand.NewSource(3))
		relaxations := []func(*screener.Criteria, float64){
			func(c *screener.Criteria, d float64) { c.Liquidity.MinCurrentRatio -= d },
			func(c *screener.Criteria, d float64) { c.Profitability.MinNetMargin -= d },
			func(c *screener.Criteria, d float64) { c.Profitability.MinROE -= d },
			func(c *screener.Criteria, d float64) { c.Leverage.MaxDebtToEquity += d },
			func(c *screener.Criteria, d float64) { c.Leverage.MinInterestCoverage -= d },
			func(c *screener.Criteria, d float64) { c.Efficiency.MinAssetTurnover -= d },
			func(c *screener.Criteria, d float64) { c.Valuation.MaxPERatio += d },
			func(c *screener.Criteria, d float64) { c.Valuation.MaxPBRatio += d },
		}
		names := []ratio.Name{
			ratio.CurrentRatio, ratio.NetMargin, ratio.ROE, ratio.DebtToEquity,
			ratio.InterestCoverage, ratio.AssetTurnover, ratio.PERatio, ratio.PBRatio,
		}

		for ii := 0; ii < 500; ii++ {
			values := make(map[ratio.Name]ratio.Value)
			for _, name := range names {
				if rng.Intn(10) == 0 {
					values[name] = ratio.Undefined
				} else {
					values[name] = ratio.Of(rng.Float64() * 40)
				}
			}
			base := screener.DefaultCriteria()
			before := scoreWith(values, base).Score
			for _, relax := range relaxations {
				relaxed := base
				relax(&relaxed, rng.Float64()*10)
				Expect(scoreWith(values, relaxed).Score).To(BeNumerically(">=", before))
			}
		}
	})
})
