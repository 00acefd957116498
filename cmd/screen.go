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
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func init() {
	addStatementFlags(screenCmd)
	rootCmd.AddCommand(screenCmd)
}

var screenCmd = &cobra.Command{
	Use:   "screen FILE | --db --period PERIOD TICKER...",
	Short: "Compute ratios and screening scores",
	Long: `Compute the financial ratios of every company in FILE (.json or .toml),
score each against the screening criteria and print the report as JSON.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		report := screenArgs(cmd.Context(), args)
		for _, entry := range report.Failed() {
			log.Warn().Err(entry.Err).Str("Ticker", entry.Ticker).Msg("company not screened")
		}
		writeJSON(report)
	},
}
