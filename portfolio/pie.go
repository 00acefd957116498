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
	"sort"

	"github.com/goccy/go-json"
)

// Justification records how a member's weight was derived
type Justification struct {
	Score            int     `json:"score"`
	BaseWeight       float64 `json:"baseWeight"`
	RiskAdjustment   float64 `json:"riskAdjustment"`
	ProfitAdjustment float64 `json:"profitAdjustment"`
	Combined         float64 `json:"combined"`
}

// Pie is a target allocation: ticker to weight, weights summing to 1
type Pie struct {
	Members        map[string]float64
	Justifications map[string]*Justification
	Excluded       map[string]error
}

func NewPie() *Pie {
	return &Pie{
		Members:        make(map[string]float64),
		Justifications: make(map[string]*Justification),
		Excluded:       make(map[string]error),
	}
}

// Struct used for sorting tickers by weight
type Pair struct {
	Key   string
	Value float64
}

type PairList []Pair

func (p PairList) Len() int      { return len(p) }
func (p PairList) Swap(i, j int) { p[i], p[j] = p[j], p[i] }
func (p PairList) Less(i, j int) bool {
	if p[i].Value == p[j].Value {
		return p[i].Key < p[j].Key
	}
	return p[i].Value > p[j].Value
}

// Sorted returns the members ordered by descending weight
func (pie *Pie) Sorted() PairList {
	pairs := make(PairList, 0, len(pie.Members))
	for k, v := range pie.Members {
		pairs = append(pairs, Pair{Key: k, Value: v})
	}
	sort.Sort(pairs)
	return pairs
}

func (pie *Pie) IsEmpty() bool {
	return len(pie.Members) == 0
}

func (pie *Pie) MarshalJSON() ([]byte, error) {
	excluded := make(map[string]string, len(pie.Excluded))
	for k, v := range pie.Excluded {
		excluded[k] = v.Error()
	}
	return json.Marshal(struct {
		Members        map[string]float64        `json:"members"`
		Justifications map[string]*Justification `json:"justifications"`
		Excluded       map[string]string         `json:"excluded,omitempty"`
	}{
		Members:        pie.Members,
		Justifications: pie.Justifications,
		Excluded:       excluded,
	})
}
