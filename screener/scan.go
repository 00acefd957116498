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
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"github.com/penny-vault/pv-screener/data"
	"github.com/penny-vault/pv-screener/ratio"
	"github.com/rs/zerolog/log"
)

// Entry is the outcome of screening one statement in a batch. Exactly one
// of Result and Err is set.
type Entry struct {
	Ticker string
	Ratios *ratio.Set
	Result *Result
	Err    error
}

func (e *Entry) MarshalJSON() ([]byte, error) {
	type entryJSON struct {
		Ticker string     `json:"ticker"`
		Ratios *ratio.Set `json:"ratios,omitempty"`
		Result *Result    `json:"result,omitempty"`
		Error  string     `json:"error,omitempty"`
	}
	out := entryJSON{
		Ticker: e.Ticker,
		Ratios: e.Ratios,
		Result: e.Result,
	}
	if e.Err != nil {
		out.Error = e.Err.Error()
	}
	return json.Marshal(out)
}

// Report collects the outcome of a batch screen
type Report struct {
	Criteria Criteria `json:"criteria"`
	Entries  []*Entry `json:"entries"`
}

// Scan screens every statement. A statement that cannot be screened is
// recorded as a failed entry and the scan continues with the next one. The
// only error returned is for invalid criteria.
//
// Entries are ordered by descending score then ticker; failed entries come
// last.
func Scan(statements []*data.FinancialStatement, criteria Criteria) (*Report, error) {
	if err := criteria.Validate(); err != nil {
		return nil, err
	}

	report := &Report{
		Criteria: criteria,
		Entries:  make([]*Entry, 0, len(statements)),
	}
	seen := make(map[string]bool, len(statements))

	for idx, fs := range statements {
		entry := screenOne(idx, fs, criteria, seen)
		if entry.Err != nil {
			log.Warn().Err(entry.Err).Int("Index", idx).Str("Ticker", entry.Ticker).Msg("could not screen company")
		}
		report.Entries = append(report.Entries, entry)
	}

	sort.SliceStable(report.Entries, func(i, j int) bool {
		a, b := report.Entries[i], report.Entries[j]
		if (a.Err == nil) != (b.Err == nil) {
			return a.Err == nil
		}
		if a.Result != nil && b.Result != nil && a.Result.Score != b.Result.Score {
			return a.Result.Score > b.Result.Score
		}
		return a.Ticker < b.Ticker
	})

	log.Info().Int("NumScreened", len(report.Results())).Int("NumFailed", len(report.Failed())).Msg("screen complete")
	return report, nil
}

func screenOne(idx int, fs *data.FinancialStatement, criteria Criteria, seen map[string]bool) *Entry {
	if fs == nil {
		return &Entry{Err: fmt.Errorf("statement %d: %w", idx, ErrMissingTicker)}
	}

	ticker := strings.ToUpper(strings.TrimSpace(fs.Ticker))
	entry := &Entry{Ticker: ticker}

	if ticker == "" {
		entry.Err = fmt.Errorf("statement %d: %w", idx, ErrMissingTicker)
		return entry
	}
	if err := fs.Validate(); err != nil {
		entry.Err = err
		return entry
	}

	if seen[ticker] {
		entry.Err = fmt.Errorf("%w: %s", ErrDuplicateTicker, ticker)
		return entry
	}
	seen[ticker] = true

	entry.Ratios = ratio.Compute(fs)
	entry.Result = Score(entry.Ratios, criteria)
	return entry
}

// Results returns the successful results in report order
func (r *Report) Results() []*Result {
	results := make([]*Result, 0, len(r.Entries))
	for _, entry := range r.Entries {
		if entry.Result != nil {
			results = append(results, entry.Result)
		}
	}
	return results
}

// Failed returns the entries that could not be screened
func (r *Report) Failed() []*Entry {
	failed := make([]*Entry, 0)
	for _, entry := range r.Entries {
		if entry.Err != nil {
			failed = append(failed, entry)
		}
	}
	return failed
}
