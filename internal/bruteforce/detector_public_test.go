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

package bruteforce_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/retr0h/gatekeeper/internal/bruteforce"
)

type DetectorPublicTestSuite struct {
	suite.Suite

	now      time.Time
	detector *bruteforce.Detector
}

func (s *DetectorPublicTestSuite) SetupTest() {
	s.now = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	s.detector = bruteforce.New(bruteforce.WithClock(func() time.Time { return s.now }))
}

func (s *DetectorPublicTestSuite) TestRecordAndCheck() {
	tests := []struct {
		name        string
		attempts    int
		maxAttempts int
		gap         time.Duration
		window      time.Duration
		wantBlocked bool
	}{
		{
			name:        "under threshold is not blocked",
			attempts:    3,
			maxAttempts: 3,
			window:      time.Minute,
			wantBlocked: false,
		},
		{
			name:        "over threshold is blocked",
			attempts:    4,
			maxAttempts: 3,
			window:      time.Minute,
			wantBlocked: true,
		},
		{
			name:        "gap longer than window resets",
			attempts:    10,
			maxAttempts: 3,
			gap:         2 * time.Minute,
			window:      time.Minute,
			wantBlocked: false,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.SetupTest()

			var blocked bool
			for i := 0; i < tt.attempts; i++ {
				s.now = s.now.Add(tt.gap)
				blocked = s.detector.RecordAndCheck("10.0.0.1", tt.maxAttempts, tt.window)
			}
			s.Equal(tt.wantBlocked, blocked)
		})
	}
}

func (s *DetectorPublicTestSuite) TestThresholdsPerCallSite() {
	for i := 0; i < 4; i++ {
		s.detector.RecordAndCheck("10.0.0.2", 10, time.Minute)
	}

	s.False(s.detector.IsBlocked("10.0.0.2", 10, time.Minute))
	s.True(s.detector.IsBlocked("10.0.0.2", 3, time.Minute))
	s.True(s.detector.RecordAndCheck("10.0.0.2", 3, time.Minute))
	s.Equal(5, s.detector.Attempts("10.0.0.2"))
}

func (s *DetectorPublicTestSuite) TestIsBlockedDoesNotRecord() {
	s.False(s.detector.IsBlocked("10.0.0.3", 0, time.Minute))
	s.Equal(0, s.detector.Attempts("10.0.0.3"))
	s.Equal(0, s.detector.Len())
}

func (s *DetectorPublicTestSuite) TestSweep() {
	s.detector.RecordAndCheck("old", 5, time.Minute)
	s.now = s.now.Add(90 * time.Second)
	s.detector.RecordAndCheck("fresh", 5, time.Minute)

	s.Equal(1, s.detector.Sweep(time.Minute))
	s.Equal(1, s.detector.Len())
	s.Equal(0, s.detector.Attempts("old"))
	s.Equal(1, s.detector.Attempts("fresh"))
}

func TestDetectorPublicTestSuite(t *testing.T) {
	suite.Run(t, new(DetectorPublicTestSuite))
}
