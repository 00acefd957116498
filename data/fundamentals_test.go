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

package data_test

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pashagolub/pgxmock"

	"github.com/penny-vault/pv-screener/data"
	"github.com/penny-vault/pv-screener/pgxmockhelper"
	"github.com/penny-vault/pv-screener/screener"
)

var _ = Describe("Fundamentals", func() {
	var (
		ctx    context.Context
		dbPool pgxmock.PgxConnIface
	)

	BeforeEach(func() {
		var err error
		ctx = context.Background()
		dbPool, err = pgxmock.NewConn()
		Expect(err).To(BeNil())
	})

	AfterEach(func() {
		dbPool.Close(ctx)
	})

	Context("when the fundamentals table has rows for every ticker", func() {
		It("should build one statement per ticker", func() {
			pgxmockhelper.MockFundamentalsQuery(dbPool, "../testdata/fundamentals.csv", "ACME", "GLOBEX")

			statements, err := data.LoadFundamentals(ctx, dbPool, "2023-FY", []string{"ACME", "GLOBEX"})
			Expect(err).To(BeNil())
			Expect(statements).To(HaveLen(2))

			acme := statements[0]
			Expect(acme.Ticker).To(Equal("ACME"))
			Expect(acme.Period).To(Equal("2023-FY"))
			Expect(acme.BalanceSheet).To(HaveKeyWithValue(data.CurrentAssets, 200.0))
			Expect(acme.IncomeStatement).To(HaveKeyWithValue(data.Revenue, 500.0))
			Expect(acme.CashFlow).To(HaveKeyWithValue(data.OperatingCashFlow, 90.0))
			Expect(acme.MarketData).To(HaveKeyWithValue(data.StockPrice, 12.0))

			globex := statements[1]
			Expect(globex.BalanceSheet).To(HaveKeyWithValue(data.TotalEquity, -50.0))

			Expect(dbPool.ExpectationsWereMet()).To(Succeed())
		})
	})

	Context("when the period has no rows", func() {
		It("should return ErrNoStatements", func() {
			pgxmockhelper.MockFundamentalsQuery(dbPool, "../testdata/fundamentals.csv", "INITECH")

			_, err := data.LoadFundamentals(ctx, dbPool, "2023-FY", []string{"INITECH"})
			Expect(err).To(MatchError(data.ErrNoStatements))
		})
	})

	Context("when one ticker has a non-finite value", func() {
		It("should still return every statement", func() {
			rows := pgxmock.NewRows([]string{"ticker", "period", "section", "field", "val"}).
				AddRow("ACME", "2023-FY", "balance_sheet", "current_assets", 200.0).
				AddRow("ACME", "2023-FY", "balance_sheet", "current_liabilities", 100.0).
				AddRow("BAD", "2023-FY", "balance_sheet", "current_assets", math.NaN()).
				AddRow("BAD", "2023-FY", "balance_sheet", "current_liabilities", 100.0)
			dbPool.ExpectQuery("SELECT ticker, period, section, field, val FROM fundamentals").
				WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg()).
				WillReturnRows(rows)

			statements, err := data.LoadFundamentals(ctx, dbPool, "2023-FY", []string{"ACME", "BAD"})
			Expect(err).To(BeNil())
			Expect(statements).To(HaveLen(2))

			report, err := screener.Scan(statements, screener.DefaultCriteria())
			Expect(err).To(BeNil())
			Expect(report.Results()).To(HaveLen(1))
			Expect(report.Failed()).To(HaveLen(1))
			Expect(report.Failed()[0].Ticker).To(Equal("BAD"))
			Expect(report.Failed()[0].Err).To(MatchError(data.ErrInvalidValue))
			Expect(dbPool.ExpectationsWereMet()).To(Succeed())
		})
	})

	Context("when the query fails", func() {
		It("should return the database error", func() {
			dbErr := errors.New("connection reset")
			dbPool.ExpectQuery("SELECT ticker").WillReturnError(dbErr)

			_, err := data.LoadFundamentals(ctx, dbPool, "2023-FY", []string{"ACME"})
			Expect(err).To(MatchError(dbErr))
		})
	})
})
