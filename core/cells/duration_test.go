/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The Tabula Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/


package cells

import (
	"testing"
	"time"
)

func TestFormatDurationCompact(t *testing.T) {
	tests := []struct {
		input    time.Duration
		expected string
	}{
		{0, "0s"},
		{time.Second, "1s"},
		{time.Minute, "1m0s"},
		{90 * time.Minute, "1h30m0s"},
		{24 * time.Hour, "1d"},
		{25 * time.Hour, "1d1h0m0s"},
		{50*time.Hour + 30*time.Minute, "2d2h30m0s"},
		{-time.Hour, "-1h0m0s"},
		{-24 * time.Hour, "-1d"},
		{500 * time.Millisecond, "500ms"},
	}
	for _, tc := range tests {
		t.Run(tc.expected, func(t *testing.T) {
			if got := FormatDurationCompact(tc.input); got != tc.expected {
				t.Errorf("FormatDurationCompact(%v) = %q, want %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestFormatDurationVerbose(t *testing.T) {
	tests := []struct {
		input    time.Duration
		expected string
	}{
		{0, "0 seconds"},
		{time.Second, "1 second"},
		{2 * time.Second, "2 seconds"},
		{time.Hour + 30*time.Minute, "1 hour 30 minutes"},
		{24 * time.Hour, "1 day"},
		{365 * 24 * time.Hour, "365 days"},
		{-2 * time.Minute, "-2 minutes"},
		{1500 * time.Millisecond, "1.500 seconds"},
	}
	for _, tc := range tests {
		t.Run(tc.expected, func(t *testing.T) {
			if got := FormatDurationVerbose(tc.input); got != tc.expected {
				t.Errorf("FormatDurationVerbose(%v) = %q, want %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestDurationRenderer(t *testing.T) {
	render := Duration[deal](DurationVerbose)
	if got := render(48*time.Hour, deal{}).Text; got != "2 days" {
		t.Errorf("render(48h) = %q, want %q", got, "2 days")
	}
	var missing *time.Duration
	if c := render(missing, deal{}); c.Text != Placeholder {
		t.Errorf("render(nil) = %q, want placeholder", c.Text)
	}
	if c := Duration[deal](DurationCompact)("soon", deal{}); c.Text != Placeholder {
		t.Errorf("render(string) = %q, want placeholder", c.Text)
	}
}
