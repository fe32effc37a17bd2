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

package authtoken_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/retr0h/gatekeeper/internal/authtoken"
)

type PermissionsPublicTestSuite struct {
	suite.Suite
}

func (s *PermissionsPublicTestSuite) TestResolvePermissions() {
	tests := []struct {
		name              string
		roles             []string
		directPermissions []string
		customRoles       map[string][]string
		expectPerms       []string
		expectMissing     []string
	}{
		{
			name:        "admin role gets all permissions",
			roles:       []string{"admin"},
			expectPerms: authtoken.AllPermissions,
		},
		{
			name:          "editor role can write content but not reach admin",
			roles:         []string{"editor"},
			expectPerms:   []string{authtoken.PermContentWrite, authtoken.PermUpload},
			expectMissing: []string{authtoken.PermAdminAccess, authtoken.PermAuditRead},
		},
		{
			name:          "viewer role is read-only",
			roles:         []string{"viewer"},
			expectPerms:   []string{authtoken.PermContentRead},
			expectMissing: []string{authtoken.PermContentWrite, authtoken.PermAdminAccess},
		},
		{
			name:          "unknown role gets no permissions",
			roles:         []string{"unknown"},
			expectMissing: authtoken.AllPermissions,
		},
		{
			name:          "nil roles gets no permissions",
			expectMissing: authtoken.AllPermissions,
		},
		{
			name:              "direct permissions override roles",
			roles:             []string{"admin"},
			directPermissions: []string{authtoken.PermAuditRead},
			expectPerms:       []string{authtoken.PermAuditRead},
			expectMissing:     []string{authtoken.PermAdminAccess},
		},
		{
			name:  "custom role shadows built-in role",
			roles: []string{"viewer"},
			customRoles: map[string][]string{
				"viewer": {authtoken.PermAuditRead},
			},
			expectPerms:   []string{authtoken.PermAuditRead},
			expectMissing: []string{authtoken.PermContentRead},
		},
		{
			name:        "multiple roles merge permissions",
			roles:       []string{"viewer", "editor"},
			expectPerms: []string{authtoken.PermContentRead, authtoken.PermContentWrite},
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			resolved := authtoken.ResolvePermissions(
				tt.roles,
				tt.directPermissions,
				tt.customRoles,
			)

			for _, p := range tt.expectPerms {
				s.True(resolved[p], "expected permission %s to be present", p)
			}
			for _, p := range tt.expectMissing {
				s.False(resolved[p], "expected permission %s to be absent", p)
			}
		})
	}
}

func (s *PermissionsPublicTestSuite) TestHasPermission() {
	s.True(authtoken.HasPermission(map[string]bool{authtoken.PermAuditRead: true}, authtoken.PermAuditRead))
	s.False(authtoken.HasPermission(map[string]bool{}, authtoken.PermAuditRead))
	s.False(authtoken.HasPermission(nil, authtoken.PermAuditRead))
}

func TestPermissionsPublicTestSuite(t *testing.T) {
	suite.Run(t, new(PermissionsPublicTestSuite))
}
