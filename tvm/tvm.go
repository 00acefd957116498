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

// Package tvm implements time value of money and capital budgeting
// calculations: discounting, annuities, NPV, IRR, payback period and
// profitability index.
package tvm

import (
	"fmt"
	"math"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/floats"
)

func checkRate(rate float64) error {
	if math.IsNaN(rate) || rate <= -1 {
		return fmt.Errorf("%w: %v", ErrInvalidRate, rate)
	}
	return nil
}

func checkInvestment(initialInvestment float64) error {
	if math.IsNaN(initialInvestment) || initialInvestment <= 0 {
		return fmt.Errorf("%w: initial investment must be positive, got %v", ErrInvalidInput, initialInvestment)
	}
	return nil
}

// PresentValue discounts futureValue back over the given number of periods
//
//	PV = FV / (1+r)^n
func PresentValue(futureValue, rate, periods float64) (float64, error) {
	if err := checkRate(rate); err != nil {
		return math.NaN(), err
	}
	return futureValue / math.Pow(1+rate, periods), nil
}

// FutureValue compounds presentValue forward over the given number of periods
//
//	FV = PV * (1+r)^n
func FutureValue(presentValue, rate, periods float64) (float64, error) {
	if err := checkRate(rate); err != nil {
		return math.NaN(), err
	}
	return presentValue * math.Pow(1+rate, periods), nil
}

// PresentValueAnnuity is the value today of a level payment received at the
// end of each period. A zero rate degrades to payment * periods.
//
//	PV = PMT * (1 - (1+r)^-n) / r
func PresentValueAnnuity(payment, rate, periods float64) (float64, error) {
	if err := checkRate(rate); err != nil {
		return math.NaN(), err
	}
	if rate == 0 {
		return payment * periods, nil
	}
	return payment * (1 - math.Pow(1+rate, -periods)) / rate, nil
}

// FutureValueAnnuity is the value at the end of the last period of a level
// payment received at the end of each period. A zero rate degrades to
// payment * periods.
//
//	FV = PMT * ((1+r)^n - 1) / r
func FutureValueAnnuity(payment, rate, periods float64) (float64, error) {
	if err := checkRate(rate); err != nil {
		return math.NaN(), err
	}
	if rate == 0 {
		return payment * periods, nil
	}
	return payment * (math.Pow(1+rate, periods) - 1) / rate, nil
}

// discount returns cashFlows[t] / (1+rate)^(t+1); the first flow arrives at
// the end of period 1
func discount(cashFlows []float64, rate float64) []float64 {
	discounted := make([]float64, len(cashFlows))
	for t, cf := range cashFlows {
		discounted[t] = cf / math.Pow(1+rate, float64(t+1))
	}
	return discounted
}

// PresentValueOfFlows sums the discounted value of every period cash flow
func PresentValueOfFlows(cashFlows []float64, rate float64) (float64, error) {
	if err := checkRate(rate); err != nil {
		return math.NaN(), err
	}
	return floats.Sum(discount(cashFlows, rate)), nil
}

// NPV computes the net present value of a project
//
//	NPV = -I + Σ CF[t] / (1+r)^(t+1)
func NPV(initialInvestment float64, cashFlows []float64, rate float64) (float64, error) {
	pv, err := PresentValueOfFlows(cashFlows, rate)
	if err != nil {
		return math.NaN(), err
	}
	return pv - initialInvestment, nil
}

// IRR finds the discount rate in [0, 1] at which the project NPV is zero
// using bisection. When NPV at 0% and at 100% have the same sign no root
// is bracketed and ErrNoConvergence is returned rather than a boundary
// value.
func IRR(initialInvestment float64, cashFlows []float64) (float64, error) {
	if err := checkInvestment(initialInvestment); err != nil {
		return math.NaN(), err
	}
	if len(cashFlows) == 0 {
		return math.NaN(), fmt.Errorf("%w: no cash flows", ErrInvalidInput)
	}

	f := func(rate float64) float64 {
		return floats.Sum(discount(cashFlows, rate)) - initialInvestment
	}

	rate, err := bisect(f, 0, 1)
	if err != nil {
		log.Debug().Float64("InitialInvestment", initialInvestment).Int("NumPeriods", len(cashFlows)).
			Float64("NPVAtZero", f(0)).Float64("NPVAtOne", f(1)).Msg("irr is not bracketed by [0, 1]")
		return math.NaN(), err
	}
	return rate, nil
}

func payback(initialInvestment float64, cashFlows []float64) (float64, error) {
	cumulative := 0.0
	for idx, cf := range cashFlows {
		if cumulative+cf >= initialInvestment {
			// period idx+1 is the crossing period; interpolate within it
			return float64(idx) + (initialInvestment-cumulative)/cf, nil
		}
		cumulative += cf
	}
	return math.NaN(), ErrNeverPaysBack
}

// PaybackPeriod returns the fractional number of periods until the
// cumulative cash flow first reaches the initial investment, interpolating
// linearly inside the crossing period. Flows beyond the last given period
// are not extrapolated.
func PaybackPeriod(initialInvestment float64, cashFlows []float64) (float64, error) {
	if err := checkInvestment(initialInvestment); err != nil {
		return math.NaN(), err
	}
	return payback(initialInvestment, cashFlows)
}

// DiscountedPaybackPeriod is PaybackPeriod computed on flows discounted at
// rate
func DiscountedPaybackPeriod(initialInvestment float64, cashFlows []float64, rate float64) (float64, error) {
	if err := checkInvestment(initialInvestment); err != nil {
		return math.NaN(), err
	}
	if err := checkRate(rate); err != nil {
		return math.NaN(), err
	}
	return payback(initialInvestment, discount(cashFlows, rate))
}

// ProfitabilityIndex is the present value of future cash flows per unit of
// initial investment
func ProfitabilityIndex(pvOfCashFlows, initialInvestment float64) (float64, error) {
	if err := checkInvestment(initialInvestment); err != nil {
		return math.NaN(), err
	}
	return pvOfCashFlows / initialInvestment, nil
}
