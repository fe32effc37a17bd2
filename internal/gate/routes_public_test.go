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

package gate_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/retr0h/gatekeeper/internal/gate"
	"github.com/retr0h/gatekeeper/internal/ratelimit"
)

type RoutesPublicTestSuite struct {
	suite.Suite

	classifier *gate.Classifier
}

func (s *RoutesPublicTestSuite) SetupTest() {
	s.classifier = gate.NewClassifier(gate.DefaultRoutes().Rules())
}

func (s *RoutesPublicTestSuite) TestClassify() {
	tests := []struct {
		name   string
		method string
		path   string
		want   ratelimit.Category
	}{
		{name: "when admin page", method: http.MethodGet, path: "/admin", want: ratelimit.CategoryAdmin},
		{name: "when admin api write", method: http.MethodPost, path: "/api/admin/users", want: ratelimit.CategoryAdmin},
		{name: "when upload write", method: http.MethodPost, path: "/api/upload/image", want: ratelimit.CategoryUpload},
		{name: "when upload read", method: http.MethodGet, path: "/upload", want: ratelimit.CategoryUpload},
		{name: "when restricted api read", method: http.MethodGet, path: "/api/auth/session", want: ratelimit.CategoryAuth},
		{name: "when restricted api write", method: http.MethodPost, path: "/api/login", want: ratelimit.CategoryAuth},
		{name: "when generic write", method: http.MethodPost, path: "/api/comments", want: ratelimit.CategoryMutation},
		{name: "when page delete", method: http.MethodDelete, path: "/recipes/1", want: ratelimit.CategoryMutation},
		{name: "when generic read", method: http.MethodGet, path: "/recipes", want: ratelimit.CategoryPublic},
		{name: "when head request", method: http.MethodHead, path: "/api/comments", want: ratelimit.CategoryPublic},
		{name: "when options request", method: http.MethodOptions, path: "/api/comments", want: ratelimit.CategoryPublic},
		{name: "when prefix only shares characters", method: http.MethodGet, path: "/administrator", want: ratelimit.CategoryPublic},
		{name: "when login lookalike", method: http.MethodGet, path: "/api/loginx", want: ratelimit.CategoryPublic},
	}

	for _, tc := range tests {
		s.Run(tc.name, func() {
			s.Equal(tc.want, s.classifier.Classify(tc.method, tc.path))
		})
	}
}

func (s *RoutesPublicTestSuite) TestClassifyFirstMatchWins() {
	classifier := gate.NewClassifier([]gate.Rule{
		{Prefix: "/api/admin/upload", Category: ratelimit.CategoryUpload},
		{Prefix: "/api/admin", Category: ratelimit.CategoryAdmin},
	})

	s.Equal(ratelimit.CategoryUpload, classifier.Classify(http.MethodGet, "/api/admin/upload/x"))
	s.Equal(ratelimit.CategoryAdmin, classifier.Classify(http.MethodGet, "/api/admin/users"))
}

func (s *RoutesPublicTestSuite) TestClassifyTrailingSlashPrefix() {
	classifier := gate.NewClassifier([]gate.Rule{
		{Prefix: "/static/", Category: ratelimit.CategoryUpload},
	})

	s.Equal(ratelimit.CategoryUpload, classifier.Classify(http.MethodGet, "/static/app.js"))
	s.Equal(ratelimit.CategoryPublic, classifier.Classify(http.MethodGet, "/static"))
}

func (s *RoutesPublicTestSuite) TestIsMutating() {
	s.False(gate.IsMutating(http.MethodGet))
	s.False(gate.IsMutating(http.MethodHead))
	s.False(gate.IsMutating(http.MethodOptions))
	s.True(gate.IsMutating(http.MethodPost))
	s.True(gate.IsMutating(http.MethodPatch))
	s.True(gate.IsMutating("PROPFIND"))
}

func TestRoutesPublicTestSuite(t *testing.T) {
	suite.Run(t, new(RoutesPublicTestSuite))
}
