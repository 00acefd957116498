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

package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/penny-vault/pv-screener/common"
	"github.com/penny-vault/pv-screener/data"
	"github.com/penny-vault/pv-screener/data/database"
	"github.com/penny-vault/pv-screener/observability/opentelemetry"
	"github.com/penny-vault/pv-screener/portfolio"
	"github.com/penny-vault/pv-screener/screener"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ScreenRequest carries either inline statements or a period and list of
// tickers to read from the database. Criteria, when present, override the
// server defaults field by field.
type ScreenRequest struct {
	Statements json.RawMessage `json:"statements"`
	Period     string          `json:"period"`
	Tickers    []string        `json:"tickers"`
	Criteria   json.RawMessage `json:"criteria"`
}

type AllocateResponse struct {
	Report    *screener.Report `json:"report"`
	Portfolio *portfolio.Pie   `json:"portfolio"`
}

func (req *ScreenRequest) criteria() (screener.Criteria, error) {
	criteria := currentCriteria()
	if len(req.Criteria) > 0 {
		if err := json.Unmarshal(req.Criteria, &criteria); err != nil {
			return criteria, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("could not parse criteria: %s", err))
		}
	}
	if err := criteria.Validate(); err != nil {
		return criteria, fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	}
	return criteria, nil
}

func (req *ScreenRequest) statements(ctx context.Context) ([]*data.FinancialStatement, error) {
	if len(req.Statements) > 0 {
		statements, err := data.ParseJSON(bytes.NewReader(req.Statements))
		if err != nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("could not parse statements: %s", err))
		}
		return statements, nil
	}

	if len(req.Tickers) == 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "request must include statements or tickers")
	}

	db, err := database.Pool()
	if err != nil {
		return nil, fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
	}

	common.ArrToUpper(req.Tickers)
	statements, err := data.LoadFundamentals(ctx, db, req.Period, req.Tickers)
	if err != nil {
		if errors.Is(err, data.ErrNoStatements) {
			return nil, fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return nil, fiber.NewError(fiber.StatusInternalServerError, "could not load fundamentals")
	}
	return statements, nil
}

// buildReport decodes the request body and screens every company in it
func buildReport(ctx context.Context, c *fiber.Ctx) (*screener.Report, error) {
	var req ScreenRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("invalid request body: %s", err))
	}

	criteria, err := req.criteria()
	if err != nil {
		return nil, err
	}

	statements, err := req.statements(ctx)
	if err != nil {
		return nil, err
	}

	report, err := screener.Scan(statements, criteria)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	}
	return report, nil
}

func recordError(span trace.Span, err error, msg string) {
	span.RecordError(err)
	span.SetStatus(codes.Error, msg)
}

// Screen computes ratios and screening scores for every submitted company
func Screen(c *fiber.Ctx) error {
	ctx, span := otel.Tracer(opentelemetry.Name).Start(c.UserContext(), "handler.Screen")
	defer span.End()
	span.SetAttributes(opentelemetry.SpanAttributesFromFiber(c)...)

	key := common.CacheKey("screen", c.Body())
	if hit, err := sendCached(ctx, c, key); hit {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return err
	}

	report, err := buildReport(ctx, c)
	if err != nil {
		recordError(span, err, "screen failed")
		return err
	}

	buf, err := json.Marshal(report)
	if err != nil {
		log.Error().Stack().Err(err).Msg("could not encode screening report")
		recordError(span, err, "encode failed")
		return fiber.ErrInternalServerError
	}

	log.Info().Int("NumEntries", len(report.Entries)).Int("NumFailed", len(report.Failed())).Msg("screened companies")
	return sendAndCache(ctx, c, key, buf)
}

// Allocate screens the submitted companies and sizes a long-only
// portfolio from the qualified ones
func Allocate(c *fiber.Ctx) error {
	ctx, span := otel.Tracer(opentelemetry.Name).Start(c.UserContext(), "handler.Allocate")
	defer span.End()
	span.SetAttributes(opentelemetry.SpanAttributesFromFiber(c)...)

	key := common.CacheKey("allocate", c.Body())
	if hit, err := sendCached(ctx, c, key); hit {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return err
	}

	report, err := buildReport(ctx, c)
	if err != nil {
		recordError(span, err, "screen failed")
		return err
	}

	pie, err := portfolio.Allocate(portfolio.CandidatesFromReport(report))
	if err != nil {
		recordError(span, err, "allocation failed")
		if errors.Is(err, portfolio.ErrEmptyPortfolio) {
			return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
		}
		return fiber.ErrInternalServerError
	}

	buf, err := json.Marshal(&AllocateResponse{Report: report, Portfolio: pie})
	if err != nil {
		log.Error().Stack().Err(err).Msg("could not encode allocation")
		recordError(span, err, "encode failed")
		return fiber.ErrInternalServerError
	}

	return sendAndCache(ctx, c, key, buf)
}
