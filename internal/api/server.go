// Copyright (c) 2026 John Dewey

// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to
// deal in the Software without restriction, including without limitation the
// rights to use, copy, modify, merge, publish, distribute, sublicense, and/or
// sell copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:

// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.

// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING
// FROM, OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER
// DEALINGS IN THE SOFTWARE.

// Package api hosts the gatekeeper's echo server: the gate middleware in
// front of every route plus the health, CSRF and admin audit handlers.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	slogecho "github.com/samber/slog-echo"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/retr0h/gatekeeper/internal/config"
	"github.com/retr0h/gatekeeper/internal/gate"
)

// New initializes a Server with every request passing through g.
func New(
	appConfig config.Config,
	logger *slog.Logger,
	g *gate.Gate,
	opts ...Option,
) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(otelecho.Middleware("gatekeeper"))
	e.Use(slogecho.New(logger))
	e.Use(middleware.Recover())
	e.Use(g.Middleware())

	s := &Server{
		Echo:      e,
		logger:    logger,
		appConfig: appConfig,
		gate:      g,
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.startTime = s.now()
	s.registerRoutes()

	return s
}

func (s *Server) registerRoutes() {
	apiPrefix := s.appConfig.Gate.Routes.APIPrefix
	if apiPrefix == "" {
		apiPrefix = gate.DefaultRoutes().APIPrefix
	}

	s.Echo.GET("/health", s.GetHealth)
	s.Echo.GET(apiPrefix+"/csrf", s.GetCSRFToken)

	if s.store != nil {
		admin := s.Echo.Group(apiPrefix + "/admin/audit")
		admin.GET("", s.GetAuditEvents)
		admin.GET("/stats", s.GetAuditStats)
		admin.GET("/export", s.GetAuditExport)
	}

	if s.metricsHandler != nil {
		s.Echo.GET(s.metricsPath, echo.WrapHandler(s.metricsHandler))
	}
}

// Start starts the Echo server on the configured port without blocking.
func (s *Server) Start() {
	go func() {
		listenAddr := fmt.Sprintf(":%d", s.appConfig.API.Server.Port)
		s.logger.Info("starting server", slog.String("addr", listenAddr))
		if err := s.Echo.Start(listenAddr); err != nil && err != http.ErrServerClosed {
			s.logger.Error(
				"failed to start server",
				slog.String("error", err.Error()),
			)
		}
	}()
}

// Stop gracefully shuts down the Echo server.
func (s *Server) Stop(
	ctx context.Context,
) {
	s.logger.Info("stopping server")

	if err := s.Echo.Shutdown(ctx); err != nil {
		s.logger.Error(
			"server shutdown failed",
			slog.String("error", err.Error()),
		)
	} else {
		s.logger.Info("server stopped gracefully")
	}
}
