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
	"context"
	"errors"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/penny-vault/pv-screener/common"
	"github.com/penny-vault/pv-screener/middleware"
	"github.com/penny-vault/pv-screener/screener"
	"github.com/rs/zerolog/log"
)

var (
	criteriaLocker sync.RWMutex
	serverCriteria = screener.DefaultCriteria()
)

// SetCriteria replaces the criteria applied when a request does not supply
// its own
func SetCriteria(criteria screener.Criteria) {
	criteriaLocker.Lock()
	defer criteriaLocker.Unlock()
	serverCriteria = criteria
}

func currentCriteria() screener.Criteria {
	criteriaLocker.RLock()
	defer criteriaLocker.RUnlock()
	return serverCriteria
}

type ErrorResponse struct {
	Status    string `json:"status" example:"error"`
	Message   string `json:"message" example:"invalid request body"`
	RequestID string `json:"requestId,omitempty"`
}

// ErrorHandler renders every error as an ErrorResponse
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
	}

	resp := ErrorResponse{
		Status:  "error",
		Message: err.Error(),
	}
	if rid, ok := c.Locals(middleware.RequestIDKey).(string); ok {
		resp.RequestID = rid
	}

	return c.Status(code).JSON(resp)
}

// sendCached writes a cached response if one exists for key
func sendCached(ctx context.Context, c *fiber.Ctx, key string) (bool, error) {
	val, err := common.CacheGet(ctx, key)
	if err != nil {
		if !errors.Is(err, common.ErrCacheMiss) {
			log.Warn().Err(err).Str("Key", key).Msg("could not read from cache")
		}
		return false, nil
	}
	c.Set("X-Cache", "HIT")
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return true, c.Send(val)
}

// sendAndCache writes the encoded response and stores it under key
func sendAndCache(ctx context.Context, c *fiber.Ctx, key string, buf []byte) error {
	if err := common.CacheSet(ctx, key, buf); err != nil {
		log.Warn().Err(err).Str("Key", key).Msg("could not save response to cache")
	}
	c.Set("X-Cache", "MISS")
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(buf)
}
