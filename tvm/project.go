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

package tvm

import (
	"math"

	"github.com/goccy/go-json"
)

// Project is a capital budgeting proposal: an initial outlay followed by a
// sequence of signed cash flows, one per period
type Project struct {
	InitialInvestment float64   `json:"initialInvestment" toml:"initial_investment"`
	CashFlows         []float64 `json:"cashFlows" toml:"cash_flows"`
}

// Metric is a single evaluation result: either a value or the reason it
// could not be computed
type Metric struct {
	Value float64
	Err   error
}

func newMetric(val float64, err error) Metric {
	if err != nil {
		return Metric{Value: math.NaN(), Err: err}
	}
	return Metric{Value: val}
}

func (m Metric) MarshalJSON() ([]byte, error) {
	type metricJSON struct {
		Value *float64 `json:"value"`
		Error string   `json:"error,omitempty"`
	}
	if m.Err != nil {
		return json.Marshal(metricJSON{Error: m.Err.Error()})
	}
	val := m.Value
	return json.Marshal(metricJSON{Value: &val})
}

// Evaluation collects every capital budgeting metric for a project at a
// given required rate of return
type Evaluation struct {
	Rate               float64 `json:"rate"`
	PresentValue       Metric  `json:"presentValue"`
	NPV                Metric  `json:"npv"`
	IRR                Metric  `json:"irr"`
	PaybackPeriod      Metric  `json:"paybackPeriod"`
	DiscountedPayback  Metric  `json:"discountedPaybackPeriod"`
	ProfitabilityIndex Metric  `json:"profitabilityIndex"`
}

func (p Project) NPV(rate float64) (float64, error) {
	return NPV(p.InitialInvestment, p.CashFlows, rate)
}

func (p Project) IRR() (float64, error) {
	return IRR(p.InitialInvestment, p.CashFlows)
}

func (p Project) PaybackPeriod() (float64, error) {
	return PaybackPeriod(p.InitialInvestment, p.CashFlows)
}

// Evaluate computes every metric independently; a failure in one metric is
// recorded on that metric and does not prevent the others
func (p Project) Evaluate(rate float64) *Evaluation {
	eval := &Evaluation{Rate: rate}

	pv, err := PresentValueOfFlows(p.CashFlows, rate)
	eval.PresentValue = newMetric(pv, err)
	eval.NPV = newMetric(p.NPV(rate))
	eval.IRR = newMetric(p.IRR())
	eval.PaybackPeriod = newMetric(p.PaybackPeriod())
	eval.DiscountedPayback = newMetric(DiscountedPaybackPeriod(p.InitialInvestment, p.CashFlows, rate))

	if err != nil {
		eval.ProfitabilityIndex = newMetric(math.NaN(), err)
	} else {
		eval.ProfitabilityIndex = newMetric(ProfitabilityIndex(pv, p.InitialInvestment))
	}

	return eval
}
