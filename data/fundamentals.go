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

package data

import (
	"context"
	"fmt"

	"github.com/penny-vault/pv-screener/data/database"
	"github.com/penny-vault/pv-screener/observability/opentelemetry"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const fundamentalsSQL = `SELECT ticker, period, section, field, val FROM fundamentals WHERE period=$1 AND ticker=ANY($2) ORDER BY ticker, section, field`

// LoadFundamentals reads the statements for the requested tickers and
// reporting period from the `fundamentals` table. The table stores one row
// per (ticker, period, section, field).
func LoadFundamentals(ctx context.Context, db database.PgxIface, period string, tickers []string) ([]*FinancialStatement, error) {
	ctx, span := otel.Tracer(opentelemetry.Name).Start(ctx, "data.LoadFundamentals")
	defer span.End()

	span.SetAttributes(attribute.String("period", period), attribute.Int("numTickers", len(tickers)))
	subLog := log.With().Str("Period", period).Strs("Tickers", tickers).Logger()

	rows, err := db.Query(ctx, fundamentalsSQL, period, tickers)
	if err != nil {
		span.RecordError(err)
		msg := "could not query fundamentals"
		span.SetStatus(codes.Error, msg)
		subLog.Error().Stack().Err(err).Msg(msg)
		return nil, err
	}
	defer rows.Close()

	statements := make([]*FinancialStatement, 0, len(tickers))
	byTicker := make(map[string]*FinancialStatement, len(tickers))

	for rows.Next() {
		var ticker, rowPeriod, section, field string
		var val float64
		if err := rows.Scan(&ticker, &rowPeriod, &section, &field, &val); err != nil {
			subLog.Error().Stack().Err(err).Msg("could not scan fundamentals row")
			return nil, err
		}

		fs, ok := byTicker[ticker]
		if !ok {
			fs = NewFinancialStatement(ticker, rowPeriod)
			byTicker[ticker] = fs
			statements = append(statements, fs)
		}

		if err := fs.Set(Section(section), Field(field), val); err != nil {
			subLog.Warn().Err(err).Str("Ticker", ticker).Str("Section", section).Msg("ignoring fundamentals row")
		}
	}

	if err := rows.Err(); err != nil {
		subLog.Error().Stack().Err(err).Msg("error while reading fundamentals")
		return nil, err
	}

	if len(statements) == 0 {
		span.SetStatus(codes.Error, "no statements found")
		return nil, fmt.Errorf("%w: period %s", ErrNoStatements, period)
	}

	// invalid statements are returned as is and fail individually when screened
	for _, fs := range statements {
		if err := fs.Validate(); err != nil {
			subLog.Warn().Err(err).Str("Ticker", fs.Ticker).Msg("invalid fundamentals")
		}
	}

	if len(statements) != len(tickers) {
		subLog.Warn().Int("NumRequested", len(tickers)).Int("NumFound", len(statements)).Msg("fundamentals missing for some tickers")
	}

	return statements, nil
}
