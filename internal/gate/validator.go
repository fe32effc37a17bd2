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
	"fmt"
)

type validateFunc func(ctx context.Context, token string) (bool, error)

func (g *Gate) validatorFunc(
	admin bool,
) validateFunc {
	if g.validator == nil {
		return func(context.Context, string) (bool, error) {
			return false, ErrNoValidator
		}
	}
	if admin {
		return g.validator.IsAdmin
	}

	return g.validator.Validate
}

// callValidator bounds fn by the auth timeout. A timeout or a panic inside
// fn is reported as an error; the caller treats it as unauthenticated.
func (g *Gate) callValidator(
	ctx context.Context,
	token string,
	fn validateFunc,
) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, g.cfg.AuthTimeout)
	defer cancel()

	type result struct {
		ok  bool
		err error
	}

	done := make(chan result, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				done <- result{err: fmt.Errorf("token validator panicked: %v", rec)}
			}
		}()

		ok, err := fn(ctx, token)
		done <- result{ok: ok, err: err}
	}()

	select {
	case res := <-done:
		return res.ok, res.err
	case <-ctx.Done():
		return false, ErrValidatorTimeout
	}
}
