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
	"os"
	"strconv"

	"github.com/pelletier/go-toml/v2"
	"github.com/penny-vault/pv-screener/tvm"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	projectFile       string
	projectInvestment float64
	projectRate       float64
)

func init() {
	projectCmd.Flags().StringVarP(&projectFile, "file", "f", "", "TOML file with initial_investment and cash_flows")
	projectCmd.Flags().Float64VarP(&projectInvestment, "investment", "i", 0, "initial investment")
	projectCmd.Flags().Float64VarP(&projectRate, "rate", "r", 0.1, "required rate of return per period, e.g. 0.1")

	rootCmd.AddCommand(projectCmd)
}

func readProject(args []string) (tvm.Project, error) {
	var project tvm.Project
	if projectFile != "" {
		fh, err := os.Open(projectFile)
		if err != nil {
			return project, err
		}
		defer fh.Close()
		if err := toml.NewDecoder(fh).Decode(&project); err != nil {
			return project, err
		}
		return project, nil
	}

	project.InitialInvestment = projectInvestment
	project.CashFlows = make([]float64, 0, len(args))
	for _, arg := range args {
		flow, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return project, err
		}
		project.CashFlows = append(project.CashFlows, flow)
	}
	return project, nil
}

var projectCmd = &cobra.Command{
	Use:   "project --investment N --rate R FLOW...",
	Short: "Evaluate a capital budgeting project",
	Long: `Print the present value, NPV, IRR, payback and discounted payback
periods and profitability index of a project as JSON.`,
	Run: func(cmd *cobra.Command, args []string) {
		project, err := readProject(args)
		if err != nil {
			log.Fatal().Err(err).Msg("could not read project")
		}

		if len(project.CashFlows) == 0 {
			log.Fatal().Msg("at least one cash flow is required")
		}

		writeJSON(project.Evaluate(projectRate))
	},
}
