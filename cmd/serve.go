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
	"os"
	"os/signal"
	"runtime/pprof"
	"syscall"
	"time"

	"github.com/penny-vault/pv-screener/common"
	"github.com/penny-vault/pv-screener/data/database"
	"github.com/penny-vault/pv-screener/handler"
	"github.com/penny-vault/pv-screener/observability/opentelemetry"
	"github.com/penny-vault/pv-screener/router"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	viper.BindEnv("server.port", "PORT")
	serveCmd.Flags().IntP("port", "p", 3000, "Port to run application server on")
	viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))

	viper.BindEnv("cache.redis_url", "REDIS_URL")
	serveCmd.Flags().String("redis-url", "", "Redis server used to share cached responses")
	viper.BindPFlag("cache.redis_url", serveCmd.Flags().Lookup("redis-url"))

	viper.SetDefault("cache.local_size", 128)
	viper.SetDefault("cache.ttl", 3600)

	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the pvscreen server",
	Long:  `Run HTTP server that screens companies, allocates portfolios and evaluates projects`,
	Run: func(cmd *cobra.Command, args []string) {
		if Profile {
			f, err := os.Create("profile.out")
			if err != nil {
				log.Fatal().Err(err).Msg("could not create profile output file")
			}
			if err := pprof.StartCPUProfile(f); err != nil {
				log.Fatal().Err(err).Msg("could not start cpu profile")
			}
			defer pprof.StopCPUProfile()
		}

		if viper.GetString("cache.redis_url") != "" && !viper.IsSet("cache.redis") {
			viper.Set("cache.redis", true)
		}
		if err := common.SetupCache(); err != nil {
			log.Fatal().Err(err).Msg("could not setup cache")
		}

		if opentelemetry.Enabled() {
			shutdown, err := opentelemetry.Setup()
			if err != nil {
				log.Fatal().Err(err).Msg("could not setup tracing")
			}
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("could not flush traces")
				}
			}()
		}

		// the database is optional; without it only inline statements are accepted
		if viper.GetString("database.url") != "" {
			if err := database.Connect(cmd.Context()); err != nil {
				log.Fatal().Err(err).Msg("could not connect to database")
			}
			defer database.Close()
		}

		criteria, err := loadCriteria()
		if err != nil {
			log.Fatal().Err(err).Msg("invalid screening criteria")
		}
		handler.SetCriteria(criteria)

		app := router.New()

		// shutdown cleanly on interrupt
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		go func() {
			sig := <-c // block until signal is read
			log.Info().Str("Signal", sig.String()).Msg("shutting down")
			if err := app.Shutdown(); err != nil {
				log.Error().Err(err).Msg("could not shutdown server")
			}
		}()

		port := viper.GetString("server.port")
		log.Info().Str("Port", port).Msg("starting server")
		if err := app.Listen(":" + port); err != nil {
			log.Error().Err(err).Msg("server stopped")
		}
	},
}
