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

package portfolio

import (
	"errors"
	"fmt"

	"github.com/penny-vault/pv-screener/ratio"
	"github.com/penny-vault/pv-screener/screener"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/floats"
)

var (
	ErrEmptyPortfolio    = errors.New("no qualified company has a positive weight")
	ErrNegativeLeverage  = errors.New("debt to equity is negative")
	ErrNonPositiveProfit = errors.New("return on equity is not positive")
	ErrUndefinedMetric   = errors.New("allocation metric is undefined")
)

// MinQualifyingScore is the lowest screening score eligible for allocation
const MinQualifyingScore = 3

// Candidate is a screened company together with the metrics used to size
// its position
type Candidate struct {
	Result       *screener.Result
	DebtToEquity ratio.Value
	ROE          ratio.Value
}

// CandidatesFromReport pairs every successful screening result with its
// debt to equity and return on equity
func CandidatesFromReport(report *screener.Report) []*Candidate {
	candidates := make([]*Candidate, 0, len(report.Entries))
	for _, entry := range report.Entries {
		if entry.Result == nil || entry.Ratios == nil {
			continue
		}
		candidates = append(candidates, &Candidate{
			Result:       entry.Result,
			DebtToEquity: entry.Ratios.Get(ratio.DebtToEquity),
			ROE:          entry.Ratios.Get(ratio.ROE),
		})
	}
	return candidates
}

// riskAdjustment is 1 / (1 + D/E). Negative equity leaves D/E undefined, so
// ErrNegativeLeverage only arises from a negative ratio supplied directly.
func riskAdjustment(debtToEquity ratio.Value) (float64, error) {
	de, ok := debtToEquity.Float64()
	if !ok {
		return 0, fmt.Errorf("%w: debt to equity", ErrUndefinedMetric)
	}
	if de < 0 {
		return 0, fmt.Errorf("%w: %v", ErrNegativeLeverage, de)
	}
	return 1 / (1 + de), nil
}

// profitAdjustment is ROE expressed as a fraction; ROE arrives in percent
func profitAdjustment(roe ratio.Value) (float64, error) {
	val, ok := roe.Float64()
	if !ok {
		return 0, fmt.Errorf("%w: return on equity", ErrUndefinedMetric)
	}
	if val <= 0 {
		return 0, fmt.Errorf("%w: %v", ErrNonPositiveProfit, val)
	}
	return val / 100, nil
}

// Allocate converts screened candidates into long-only portfolio weights.
//
// Companies scoring below MinQualifyingScore are ignored; when none
// qualify the returned pie is empty and no error is reported. Each
// qualified company starts from score / Σ scores, scaled by
// 1/(1+D/E) and ROE/100. Companies with undefined or negative D/E, or
// with non-positive ROE, are excluded and listed in Pie.Excluded. The
// remaining weights are normalized to sum to 1; if none remain
// ErrEmptyPortfolio is returned.
func Allocate(candidates []*Candidate) (*Pie, error) {
	pie := NewPie()

	qualified := make([]*Candidate, 0, len(candidates))
	seen := make(map[string]bool, len(candidates))
	for _, candidate := range candidates {
		if candidate == nil || candidate.Result == nil {
			continue
		}
		ticker := candidate.Result.Ticker
		if seen[ticker] {
			log.Warn().Str("Ticker", ticker).Msg("ignoring duplicate allocation candidate")
			continue
		}
		seen[ticker] = true
		if candidate.Result.Score >= MinQualifyingScore {
			qualified = append(qualified, candidate)
		}
	}

	if len(qualified) == 0 {
		log.Info().Int("NumCandidates", len(candidates)).Msg("no company qualified for allocation")
		return pie, nil
	}

	scores := make([]float64, len(qualified))
	for idx, candidate := range qualified {
		scores[idx] = float64(candidate.Result.Score)
	}
	totalScore := floats.Sum(scores)

	tickers := make([]string, 0, len(qualified))
	combined := make([]float64, 0, len(qualified))
	for idx, candidate := range qualified {
		ticker := candidate.Result.Ticker
		subLog := log.With().Str("Ticker", ticker).Logger()

		risk, err := riskAdjustment(candidate.DebtToEquity)
		if err != nil {
			subLog.Warn().Err(err).Msg("excluding company from allocation")
			pie.Excluded[ticker] = err
			continue
		}

		profit, err := profitAdjustment(candidate.ROE)
		if err != nil {
			subLog.Debug().Err(err).Msg("excluding company from allocation")
			pie.Excluded[ticker] = err
			continue
		}

		just := &Justification{
			Score:            candidate.Result.Score,
			BaseWeight:       scores[idx] / totalScore,
			RiskAdjustment:   risk,
			ProfitAdjustment: profit,
		}
		just.Combined = just.BaseWeight * just.RiskAdjustment * just.ProfitAdjustment

		pie.Justifications[ticker] = just
		tickers = append(tickers, ticker)
		combined = append(combined, just.Combined)
	}

	total := floats.Sum(combined)
	if len(combined) == 0 || total <= 0 {
		log.Warn().Int("NumQualified", len(qualified)).Int("NumExcluded", len(pie.Excluded)).Msg("nothing left to allocate")
		return nil, ErrEmptyPortfolio
	}

	floats.Scale(1/total, combined)
	for idx, ticker := range tickers {
		pie.Members[ticker] = combined[idx]
	}

	log.Debug().Int("NumMembers", len(pie.Members)).Int("NumExcluded", len(pie.Excluded)).Msg("allocation complete")
	return pie, nil
}
