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

package policy

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"net/http"
)

const (
	// CSRFHeader carries the submitted token.
	CSRFHeader = "X-CSRF-Token"
	// CSRFCookie carries the issued token.
	CSRFCookie = "csrf-token"
	// CSRFTokenBytes is the amount of entropy in an issued token.
	CSRFTokenBytes = 32
)

var randRead = rand.Read

// IssueCSRFToken returns a new random hex token. Nothing is stored server
// side; the caller sets it as the CSRF cookie.
func IssueCSRFToken() (string, error) {
	b := make([]byte, CSRFTokenBytes)
	if _, err := randRead(b); err != nil {
		return "", fmt.Errorf("generating csrf token: %w", err)
	}

	return hex.EncodeToString(b), nil
}

// ValidateCSRFToken performs the double-submit check: the header and cookie
// must both be present and equal.
func ValidateCSRFToken(
	r *http.Request,
) bool {
	header := r.Header.Get(CSRFHeader)
	if header == "" {
		return false
	}

	cookie, err := r.Cookie(CSRFCookie)
	if err != nil || cookie.Value == "" {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(header), []byte(cookie.Value)) == 1
}

// CSRFCookieFor builds the cookie that pairs with token.
func CSRFCookieFor(
	token string,
	secure bool,
) *http.Cookie {
	return &http.Cookie{
		Name:     CSRFCookie,
		Value:    token,
		Path:     "/",
		Secure:   secure,
		HttpOnly: false,
		SameSite: http.SameSiteStrictMode,
	}
}
