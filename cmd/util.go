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

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/penny-vault/pv-screener/common"
	"github.com/penny-vault/pv-screener/data"
	"github.com/penny-vault/pv-screener/data/database"
	"github.com/penny-vault/pv-screener/screener"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	fromDB bool
	period string
)

// addStatementFlags registers the flags shared by commands that read
// financial statements
func addStatementFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&fromDB, "db", false, "read statements from the fundamentals table instead of a file")
	cmd.Flags().StringVar(&period, "period", "", "reporting period to read when --db is set, e.g. 2023-FY")
}

// loadCriteria starts from the defaults, applies the [criteria] table of
// the config file and finally a --criteria file if one was given
func loadCriteria() (screener.Criteria, error) {
	criteria := screener.DefaultCriteria()

	if viper.IsSet("criteria") {
		if err := viper.UnmarshalKey("criteria", &criteria); err != nil {
			log.Error().Err(err).Msg("could not read criteria from config")
			return criteria, err
		}
	}

	if fn := viper.GetString("criteria_file"); fn != "" {
		var err error
		criteria, err = screener.LoadCriteriaOver(fn, criteria)
		if err != nil {
			return criteria, err
		}
	}

	return criteria, criteria.Validate()
}

// loadStatements reads a statement file named by the single argument, or
// with --db the listed tickers for --period from PostgreSQL
func loadStatements(ctx context.Context, args []string) ([]*data.FinancialStatement, error) {
	if !fromDB {
		if len(args) != 1 {
			return nil, fmt.Errorf("expected exactly one statement file, got %d arguments", len(args))
		}
		return data.LoadStatements(args[0])
	}

	if period == "" {
		return nil, fmt.Errorf("--period is required with --db")
	}

	if err := database.Connect(ctx); err != nil {
		return nil, err
	}
	defer database.Close()

	db, err := database.Pool()
	if err != nil {
		return nil, err
	}

	common.ArrToUpper(args)
	return data.LoadFundamentals(ctx, db, period, args)
}

// screenArgs loads the statements and criteria and screens them
func screenArgs(ctx context.Context, args []string) *screener.Report {
	criteria, err := loadCriteria()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid screening criteria")
	}

	statements, err := loadStatements(ctx, args)
	if err != nil {
		log.Fatal().Err(err).Msg("could not load financial statements")
	}

	report, err := screener.Scan(statements, criteria)
	if err != nil {
		log.Fatal().Err(err).Msg("screen failed")
	}
	return report
}

func writeJSON(v interface{}) {
	buf, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("could not encode output")
	}
	buf = append(buf, '\n')
	if _, err := os.Stdout.Write(buf); err != nil {
		log.Fatal().Err(err).Msg("could not write output")
	}
}
