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

package authtoken

// Permission is a single capability string such as "audit:read".
type Permission = string

// Permissions checked by the gate and the admin API.
const (
	PermContentRead  Permission = "content:read"
	PermContentWrite Permission = "content:write"
	PermUpload       Permission = "upload:write"
	PermAuditRead    Permission = "audit:read"
	PermAuditExport  Permission = "audit:export"
	PermAdminAccess  Permission = "admin:access"
)

// AllPermissions lists every known permission.
var AllPermissions = []Permission{
	PermContentRead,
	PermContentWrite,
	PermUpload,
	PermAuditRead,
	PermAuditExport,
	PermAdminAccess,
}

// DefaultRolePermissions maps built-in roles to permissions.
var DefaultRolePermissions = map[string][]Permission{
	RoleAdmin: AllPermissions,
	RoleEditor: {
		PermContentRead,
		PermContentWrite,
		PermUpload,
	},
	RoleViewer: {
		PermContentRead,
	},
}

// ResolvePermissions expands roles into a permission set. Direct
// permissions, when present, replace role expansion entirely. Custom roles
// shadow built-in roles of the same name.
func ResolvePermissions(
	roles []string,
	directPermissions []string,
	customRoles map[string][]string,
) map[string]bool {
	if len(directPermissions) > 0 {
		set := make(map[string]bool, len(directPermissions))
		for _, p := range directPermissions {
			set[p] = true
		}
		return set
	}

	set := make(map[string]bool)
	for _, role := range roles {
		perms, ok := customRoles[role]
		if !ok {
			perms = DefaultRolePermissions[role]
		}
		for _, p := range perms {
			set[p] = true
		}
	}

	return set
}

// HasPermission reports whether required is in resolved.
func HasPermission(
	resolved map[string]bool,
	required string,
) bool {
	return resolved[required]
}
