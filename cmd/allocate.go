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
	"github.com/penny-vault/pv-screener/portfolio"
	"github.com/penny-vault/pv-screener/screener"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func init() {
	addStatementFlags(allocateCmd)
	rootCmd.AddCommand(allocateCmd)
}

var allocateCmd = &cobra.Command{
	Use:   "allocate FILE | --db --period PERIOD TICKER...",
	Short: "Build a long-only portfolio from screened companies",
	Long: `Screen every company then weight those scoring at least 3 by score,
leverage and return on equity. Prints the screening report and the
resulting portfolio as JSON.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		report := screenArgs(cmd.Context(), args)

		pie, err := portfolio.Allocate(portfolio.CandidatesFromReport(report))
		if err != nil {
			log.Fatal().Err(err).Msg("allocation failed")
		}

		for ticker, reason := range pie.Excluded {
			log.Warn().Err(reason).Str("Ticker", ticker).Msg("company excluded from portfolio")
		}

		writeJSON(struct {
			Report    *screener.Report `json:"report"`
			Portfolio *portfolio.Pie   `json:"portfolio"`
		}{
			Report:    report,
			Portfolio: pie,
		})
	},
}
