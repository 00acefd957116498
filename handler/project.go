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
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/penny-vault/pv-screener/observability/opentelemetry"
	"github.com/penny-vault/pv-screener/tvm"
	"go.opentelemetry.io/otel"
)

type ProjectRequest struct {
	InitialInvestment float64   `json:"initialInvestment"`
	CashFlows         []float64 `json:"cashFlows"`
	Rate              float64   `json:"rate"`
}

// Project evaluates a capital budgeting proposal. Metrics that cannot be
// computed are reported individually in the response.
func Project(c *fiber.Ctx) error {
	_, span := otel.Tracer(opentelemetry.Name).Start(c.UserContext(), "handler.Project")
	defer span.End()
	span.SetAttributes(opentelemetry.SpanAttributesFromFiber(c)...)

	var req ProjectRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		recordError(span, err, "invalid request body")
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if len(req.CashFlows) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "cashFlows must not be empty")
	}

	project := tvm.Project{
		InitialInvestment: req.InitialInvestment,
		CashFlows:         req.CashFlows,
	}
	return c.JSON(project.Evaluate(req.Rate))
}
