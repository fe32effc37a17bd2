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

package gate

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/retr0h/gatekeeper/internal/audit"
	"github.com/retr0h/gatekeeper/internal/bruteforce"
	"github.com/retr0h/gatekeeper/internal/policy"
	"github.com/retr0h/gatekeeper/internal/ratelimit"
)

// Stage names, also used as metric and span attributes.
const (
	StageScreen        = "screen"
	StageRateLimit     = "rate_limit"
	StageAuthenticate  = "authenticate"
	StageRouteSpecific = "route_specific"
	StageRecover       = "recover"
)

// Gate sequences the stages over shared limiter, detector and audit state.
type Gate struct {
	cfg        Config
	logger     *slog.Logger
	policy     *policy.Engine
	limiter    *ratelimit.Limiter
	detector   *bruteforce.Detector
	store      audit.Store
	validator  TokenValidator
	classifier *Classifier
	recorder   Recorder
	tracer     trace.Tracer
	newID      func() string
	stages     []Stage
}

// Option configures a Gate.
type Option func(*Gate)

// WithRecorder sets the decision metrics recorder.
func WithRecorder(
	r Recorder,
) Option {
	return func(g *Gate) {
		g.recorder = r
	}
}

// WithIDGenerator replaces the request id generator.
func WithIDGenerator(
	fn func() string,
) Option {
	return func(g *Gate) {
		g.newID = fn
	}
}

// WithClassifier replaces the classifier derived from Config.Routes.
func WithClassifier(
	c *Classifier,
) Option {
	return func(g *Gate) {
		g.classifier = c
	}
}

// New creates a Gate.
func New(
	logger *slog.Logger,
	cfg Config,
	engine *policy.Engine,
	limiter *ratelimit.Limiter,
	detector *bruteforce.Detector,
	store audit.Store,
	validator TokenValidator,
	opts ...Option,
) *Gate {
	if cfg.AuthTimeout <= 0 {
		cfg.AuthTimeout = DefaultConfig().AuthTimeout
	}

	g := &Gate{
		cfg:        cfg,
		logger:     logger,
		policy:     engine,
		limiter:    limiter,
		detector:   detector,
		store:      store,
		validator:  validator,
		classifier: NewClassifier(cfg.Routes.Rules()),
		recorder:   noopRecorder{},
		tracer:     otel.Tracer("github.com/retr0h/gatekeeper/internal/gate"),
		newID:      uuid.NewString,
	}

	for _, opt := range opts {
		opt(g)
	}

	g.stages = []Stage{
		stageFunc{name: StageScreen, fn: g.screen},
		stageFunc{name: StageRateLimit, fn: g.rateLimit},
		stageFunc{name: StageAuthenticate, fn: g.authenticate},
		stageFunc{name: StageRouteSpecific, fn: g.routeSpecific},
	}

	return g
}

// Stages returns the pipeline in execution order.
func (g *Gate) Stages() []Stage {
	return append([]Stage(nil), g.stages...)
}

// NewRequest resolves client identity, route and credentials for r.
func (g *Gate) NewRequest(
	r *http.Request,
) *Request {
	req := &Request{
		HTTP:     r,
		ClientIP: policy.ClientIP(r, g.cfg.TrustProxy, g.cfg.TrustedProxyCount),
		Route:    g.cfg.Routes.resolve(g.classifier, r.Method, r.URL.Path),
		Header:   http.Header{},
	}

	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		req.token = strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
		req.Bearer = req.token != ""
	} else if g.cfg.AuthCookieName != "" {
		if c, err := r.Cookie(g.cfg.AuthCookieName); err == nil {
			req.token = c.Value
		}
	}

	return req
}

// Evaluate runs every stage against r and returns the first terminal
// verdict, or PassThrough when all stages pass.
func (g *Gate) Evaluate(
	ctx context.Context,
	r *http.Request,
) (*Request, Verdict) {
	req := g.NewRequest(r)
	return req, g.run(ctx, req)
}

func (g *Gate) run(
	ctx context.Context,
	req *Request,
) Verdict {
	for _, stage := range g.stages {
		stageCtx, span := g.tracer.Start(ctx, "gate."+stage.Name())
		verdict := stage.Run(stageCtx, req)

		outcome := "pass"
		if verdict.Terminate {
			outcome = strconv.Itoa(verdict.Response.Status)
		}
		span.SetAttributes(
			attribute.String("gate.outcome", outcome),
			attribute.String("gate.category", string(req.Route.Category)),
		)
		span.End()
		g.recorder.RecordDecision(ctx, stage.Name(), outcome)

		if verdict.Terminate {
			g.logger.DebugContext(
				ctx,
				"request terminated",
				slog.String("stage", stage.Name()),
				slog.Int("status", verdict.Response.Status),
				slog.String("client_ip", req.ClientIP),
				slog.String("path", req.Route.Path),
			)
			return verdict
		}
	}

	return PassThrough()
}

// Finalize merges stage headers, the security header set for the route class
// and, for API routes with an Origin, the CORS headers onto h.
func (g *Gate) Finalize(
	req *Request,
	h http.Header,
) {
	for name, values := range req.Header {
		h[name] = values
	}

	g.policy.ApplyHeaders(h, req.Route.Class)

	if origin := req.HTTP.Header.Get("Origin"); origin != "" && req.Route.API {
		g.policy.CORSHeaders(h, origin)
	}
}

// record stores an audit event. The request context may already be
// cancelled by the client; the write still completes.
func (g *Gate) record(
	ctx context.Context,
	in audit.Input,
) {
	in.UserAgent = policy.Sanitize(in.UserAgent)
	in.ResourceID = policy.Sanitize(in.ResourceID)
	g.store.Record(context.WithoutCancel(ctx), in)
}
