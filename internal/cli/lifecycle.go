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

package cli

import (
	"context"
	"time"
)

// DefaultShutdownTimeout bounds graceful shutdown when none is given.
const DefaultShutdownTimeout = 10 * time.Second

// Lifecycle represents a long-running server or worker.
type Lifecycle interface {
	// Start starts the server without blocking.
	Start()
	// Stop gracefully shuts down the server.
	Stop(ctx context.Context)
}

// RunServer blocks until ctx is cancelled, then stops every server in
// reverse start order and runs the cleanup functions, all sharing one
// shutdown deadline.
func RunServer(
	ctx context.Context,
	timeout time.Duration,
	servers []Lifecycle,
	cleanupFns ...func(context.Context),
) {
	<-ctx.Done()

	if timeout <= 0 {
		timeout = DefaultShutdownTimeout
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		timeout,
	)
	defer cancel()

	for i := len(servers) - 1; i >= 0; i-- {
		servers[i].Stop(shutdownCtx)
	}

	for _, fn := range cleanupFns {
		fn(shutdownCtx)
	}
}
