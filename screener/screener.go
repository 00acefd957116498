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

// Package screener scores companies against a fixed five category rubric
// (liquidity, profitability, leverage, efficiency and valuation). Each
// category passes or fails; the score is the number of passing categories.
package screener

import (
	"github.com/penny-vault/pv-screener/ratio"
)

// Rating is the recommendation derived from a score
type Rating string

const (
	StrongBuy Rating = "STRONG_BUY"
	Buy       Rating = "BUY"
	Hold      Rating = "HOLD"
	Avoid     Rating = "AVOID"
)

// MaxScore is the score of a company passing every category
const MaxScore = 5

// RatingForScore maps a pass count to its rating
func RatingForScore(score int) Rating {
	switch {
	case score >= 4:
		return StrongBuy
	case score == 3:
		return Buy
	case score == 2:
		return Hold
	default:
		return Avoid
	}
}

// Result is the outcome of screening one company
type Result struct {
	Ticker     string            `json:"ticker"`
	Period     string            `json:"period,omitempty"`
	Categories map[Category]bool `json:"categories"`
	Score      int               `json:"score"`

	// WeightedScore is Σ weight × pass using the criteria weights. It is
	// informational only; Rating is always derived from Score.
	WeightedScore float64 `json:"weightedScore"`
	Rating        Rating  `json:"rating"`
}

// Passed reports whether the category test passed
func (r *Result) Passed(category Category) bool {
	return r.Categories[category]
}

// evaluate runs the test for a single category. Undefined ratios fail.
func evaluate(category Category, ratios *ratio.Set, criteria Criteria) bool {
	switch category {
	case Liquidity:
		return ratios.Get(ratio.CurrentRatio).AtLeast(criteria.Liquidity.MinCurrentRatio)
	case Profitability:
		return ratios.Get(ratio.NetMargin).AtLeast(criteria.Profitability.MinNetMargin) &&
			ratios.Get(ratio.ROE).AtLeast(criteria.Profitability.MinROE)
	case Leverage:
		return ratios.Get(ratio.DebtToEquity).AtMost(criteria.Leverage.MaxDebtToEquity) &&
			ratios.Get(ratio.InterestCoverage).AtLeast(criteria.Leverage.MinInterestCoverage)
	case Efficiency:
		return ratios.Get(ratio.AssetTurnover).AtLeast(criteria.Efficiency.MinAssetTurnover)
	case Valuation:
		return ratios.Get(ratio.PERatio).AtMost(criteria.Valuation.MaxPERatio) &&
			ratios.Get(ratio.PBRatio).AtMost(criteria.Valuation.MaxPBRatio)
	default:
		return false
	}
}

// Score evaluates every category for one company's ratios. Criteria are
// passed explicitly; nothing is read from package state.
func Score(ratios *ratio.Set, criteria Criteria) *Result {
	result := &Result{
		Ticker:     ratios.Ticker(),
		Period:     ratios.Period(),
		Categories: make(map[Category]bool, len(Categories)),
	}

	for _, category := range Categories {
		passed := evaluate(category, ratios, criteria)
		result.Categories[category] = passed
		if passed {
			result.Score++
			result.WeightedScore += criteria.Weight(category)
		}
	}

	result.Rating = RatingForScore(result.Score)
	return result
}
