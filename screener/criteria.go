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

package screener

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
)

// Category is one of the five screening tests
type Category string

const (
	Liquidity     Category = "liquidity"
	Profitability Category = "profitability"
	Leverage      Category = "leverage"
	Efficiency    Category = "efficiency"
	Valuation     Category = "valuation"
)

// Categories lists every category in scoring order
var Categories = []Category{Liquidity, Profitability, Leverage, Efficiency, Valuation}

type LiquidityCriteria struct {
	MinCurrentRatio float64 `json:"minCurrentRatio" toml:"min_current_ratio" mapstructure:"min_current_ratio"`
	Weight          float64 `json:"weight" toml:"weight" mapstructure:"weight"`
}

type ProfitabilityCriteria struct {
	MinNetMargin float64 `json:"minNetMargin" toml:"min_net_margin" mapstructure:"min_net_margin"`
	MinROE       float64 `json:"minRoe" toml:"min_roe" mapstructure:"min_roe"`
	Weight       float64 `json:"weight" toml:"weight" mapstructure:"weight"`
}

type LeverageCriteria struct {
	MaxDebtToEquity     float64 `json:"maxDebtToEquity" toml:"max_debt_to_equity" mapstructure:"max_debt_to_equity"`
	MinInterestCoverage float64 `json:"minInterestCoverage" toml:"min_interest_coverage" mapstructure:"min_interest_coverage"`
	Weight              float64 `json:"weight" toml:"weight" mapstructure:"weight"`
}

type EfficiencyCriteria struct {
	MinAssetTurnover float64 `json:"minAssetTurnover" toml:"min_asset_turnover" mapstructure:"min_asset_turnover"`
	Weight           float64 `json:"weight" toml:"weight" mapstructure:"weight"`
}

type ValuationCriteria struct {
	MaxPERatio float64 `json:"maxPeRatio" toml:"max_pe_ratio" mapstructure:"max_pe_ratio"`
	MaxPBRatio float64 `json:"maxPbRatio" toml:"max_pb_ratio" mapstructure:"max_pb_ratio"`
	Weight     float64 `json:"weight" toml:"weight" mapstructure:"weight"`
}

// Criteria holds the thresholds for every category. Percent based
// thresholds (net margin, ROE) are expressed in percent, e.g. 10 for 10%.
// Weights only feed Result.WeightedScore; they do not change the pass
// count or the rating.
type Criteria struct {
	Liquidity     LiquidityCriteria     `json:"liquidity" toml:"liquidity" mapstructure:"liquidity"`
	Profitability ProfitabilityCriteria `json:"profitability" toml:"profitability" mapstructure:"profitability"`
	Leverage      LeverageCriteria      `json:"leverage" toml:"leverage" mapstructure:"leverage"`
	Efficiency    EfficiencyCriteria    `json:"efficiency" toml:"efficiency" mapstructure:"efficiency"`
	Valuation     ValuationCriteria     `json:"valuation" toml:"valuation" mapstructure:"valuation"`
}

// DefaultCriteria returns the standard screening thresholds
func DefaultCriteria() Criteria {
	return Criteria{
		Liquidity: LiquidityCriteria{
			MinCurrentRatio: 1.5,
			Weight:          0.25,
		},
		Profitability: ProfitabilityCriteria{
			MinNetMargin: 10,
			MinROE:       15,
			Weight:       0.25,
		},
		Leverage: LeverageCriteria{
			MaxDebtToEquity:     2.0,
			MinInterestCoverage: 3.0,
			Weight:              0.20,
		},
		Efficiency: EfficiencyCriteria{
			MinAssetTurnover: 0.5,
			Weight:           0.15,
		},
		Valuation: ValuationCriteria{
			MaxPERatio: 25,
			MaxPBRatio: 3,
			Weight:     0.15,
		},
	}
}

// Weight returns the configured weight for a category
func (c Criteria) Weight(category Category) float64 {
	switch category {
	case Liquidity:
		return c.Liquidity.Weight
	case Profitability:
		return c.Profitability.Weight
	case Leverage:
		return c.Leverage.Weight
	case Efficiency:
		return c.Efficiency.Weight
	case Valuation:
		return c.Valuation.Weight
	default:
		return 0
	}
}

// Validate rejects thresholds that are not numbers and negative weights
func (c Criteria) Validate() error {
	thresholds := map[string]float64{
		"liquidity.min_current_ratio":    c.Liquidity.MinCurrentRatio,
		"profitability.min_net_margin":   c.Profitability.MinNetMargin,
		"profitability.min_roe":          c.Profitability.MinROE,
		"leverage.max_debt_to_equity":    c.Leverage.MaxDebtToEquity,
		"leverage.min_interest_coverage": c.Leverage.MinInterestCoverage,
		"efficiency.min_asset_turnover":  c.Efficiency.MinAssetTurnover,
		"valuation.max_pe_ratio":         c.Valuation.MaxPERatio,
		"valuation.max_pb_ratio":         c.Valuation.MaxPBRatio,
	}
	for name, val := range thresholds {
		if math.IsNaN(val) {
			return fmt.Errorf("%w: %s is not a number", ErrInvalidCriteria, name)
		}
	}

	for _, category := range Categories {
		w := c.Weight(category)
		if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
			return fmt.Errorf("%w: %s.weight must be a non-negative number", ErrInvalidCriteria, category)
		}
	}

	return nil
}

// ParseCriteria decodes criteria from TOML. Keys that are not present keep
// their DefaultCriteria value.
func ParseCriteria(r io.Reader) (Criteria, error) {
	return ParseCriteriaOver(r, DefaultCriteria())
}

// ParseCriteriaOver decodes criteria from TOML on top of base; keys that are
// not present keep their base value
func ParseCriteriaOver(r io.Reader, base Criteria) (Criteria, error) {
	criteria := base
	if err := toml.NewDecoder(r).Decode(&criteria); err != nil {
		return Criteria{}, err
	}
	if err := criteria.Validate(); err != nil {
		return Criteria{}, err
	}
	return criteria, nil
}

// LoadCriteria reads criteria from a TOML file
func LoadCriteria(fn string) (Criteria, error) {
	return LoadCriteriaOver(fn, DefaultCriteria())
}

// LoadCriteriaOver reads a TOML criteria file and applies it over base
func LoadCriteriaOver(fn string, base Criteria) (Criteria, error) {
	f, err := os.Open(fn)
	if err != nil {
		log.Error().Err(err).Str("FileName", fn).Msg("could not open criteria file")
		return Criteria{}, err
	}
	defer f.Close()

	criteria, err := ParseCriteriaOver(f, base)
	if err != nil {
		log.Error().Err(err).Str("FileName", fn).Msg("could not parse criteria file")
		return Criteria{}, err
	}
	return criteria, nil
}
