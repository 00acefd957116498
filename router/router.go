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

package router

import (
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/penny-vault/pv-screener/handler"
	"github.com/penny-vault/pv-screener/middleware"
	"github.com/spf13/viper"
)

// New creates a fiber app with the JSON codec, error handler and
// middleware used by every route
func New() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "pvscreen",
		DisableStartupMessage: true,
		ErrorHandler:          handler.ErrorHandler,
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		BodyLimit:             viper.GetInt("server.body_limit"),
	})

	app.Use(recover.New())
	app.Use(middleware.NewRequestID())

	// Configure CORS
	allowOrigins := viper.GetString("server.allow_origins")
	if allowOrigins == "" {
		allowOrigins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: allowOrigins,
		AllowHeaders: "*",
		AllowMethods: "GET,POST,HEAD",
	}))

	// Setup logging middleware
	app.Use(middleware.NewLogger())

	SetupRoutes(app)
	return app
}

// SetupRoutes setup router api
func SetupRoutes(app *fiber.App) {
	app.Get("/healthz", handler.Ping)

	api := app.Group("/v1")
	api.Get("/", handler.Ping)
	api.Get("/criteria", handler.Criteria)
	api.Post("/screen", handler.Screen)
	api.Post("/allocate", handler.Allocate)
	api.Post("/project", handler.Project)
}
