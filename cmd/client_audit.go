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

package cmd

import (
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
)

// clientAuditCmd represents the clientAudit command.
var clientAuditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Query the audit log",
}

// auditQueryFlags are shared by the list and export commands.
type auditQueryFlags struct {
	types        []string
	severities   []string
	userID       string
	resourceType string
	resourceID   string
	ip           string
	success      string
	start        string
	end          string
}

func (f *auditQueryFlags) register(
	cmd *cobra.Command,
) {
	cmd.Flags().StringSliceVar(&f.types, "type", nil, "Event types to include")
	cmd.Flags().StringSliceVar(&f.severities, "severity", nil, "Severities to include")
	cmd.Flags().StringVar(&f.userID, "user-id", "", "Acting user")
	cmd.Flags().StringVar(&f.resourceType, "resource-type", "", "Resource kind")
	cmd.Flags().StringVar(&f.resourceID, "resource-id", "", "Resource identifier")
	cmd.Flags().StringVar(&f.ip, "ip", "", "Client IP address")
	cmd.Flags().StringVar(&f.success, "success", "", "Filter by outcome (true or false)")
	cmd.Flags().StringVar(&f.start, "start", "", "Earliest timestamp (RFC 3339)")
	cmd.Flags().StringVar(&f.end, "end", "", "Latest timestamp (RFC 3339)")
}

// values encodes the flags as the admin API's query parameters.
func (f *auditQueryFlags) values() url.Values {
	q := url.Values{}
	for _, t := range f.types {
		q.Add("type", t)
	}
	for _, s := range f.severities {
		q.Add("severity", s)
	}

	set := func(key string, value string) {
		if value != "" {
			q.Set(key, value)
		}
	}
	set("user_id", f.userID)
	set("resource_type", f.resourceType)
	set("resource_id", f.resourceID)
	set("ip", f.ip)
	set("success", f.success)
	set("start", f.start)
	set("end", f.end)

	return q
}

func pageValues(
	q url.Values,
	page int,
	limit int,
) url.Values {
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	return q
}

func init() {
	clientCmd.AddCommand(clientAuditCmd)
}
