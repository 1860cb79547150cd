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
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DurationStyle selects how Duration renders values.
type DurationStyle int

const (
	// DurationCompact renders Go-style durations with a day unit, e.g. "3d4h0m0s".
	DurationCompact DurationStyle = iota
	// DurationVerbose renders e.g. "2 hours 30 minutes".
	DurationVerbose
)

// Duration renders time.Duration values in style. Anything else renders the
// placeholder.
func Duration[T any](style DurationStyle) Renderer[T] {
	return func(value any, _ T) Cell {
		var d time.Duration
		switch v := value.(type) {
		case time.Duration:
			d = v
		case *time.Duration:
			if v == nil {
				return MissingCell(KindText)
			}
			d = *v
		default:
			return MissingCell(KindText)
		}
		if style == DurationVerbose {
			return TextCell(FormatDurationVerbose(d))
		}
		return TextCell(FormatDurationCompact(d))
	}
}

// FormatDurationCompact returns a compact representation like "2h30m0s" or "3d".
func FormatDurationCompact(d time.Duration) string {
	if d == 0 {
		return "0s"
	}
	var b strings.Builder
	if d < 0 {
		b.WriteString("-")
		d = -d
	}
	days := d / (24 * time.Hour)
	d %= 24 * time.Hour
	if days > 0 {
		b.WriteString(strconv.FormatInt(int64(days), 10))
		b.WriteString("d")
	}
	if d > 0 || days == 0 {
		b.WriteString(d.String())
	}
	return b.String()
}

// FormatDurationVerbose returns a representation like "1 day 2 hours".
func FormatDurationVerbose(d time.Duration) string {
	if d == 0 {
		return "0 seconds"
	}
	negative := d < 0
	if negative {
		d = -d
	}

	var parts []string
	for _, u := range []struct {
		size time.Duration
		name string
	}{
		{24 * time.Hour, "day"},
		{time.Hour, "hour"},
		{time.Minute, "minute"},
	} {
		n := d / u.size
		d %= u.size
		if n > 0 {
			parts = append(parts, plural(int64(n), u.name))
		}
	}

	seconds := d / time.Second
	frac := d % time.Second
	switch {
	case frac != 0:
		parts = append(parts, fmt.Sprintf("%.3f seconds", d.Seconds()))
	case seconds > 0:
		parts = append(parts, plural(int64(seconds), "second"))
	}

	s := strings.Join(parts, " ")
	if negative {
		return "-" + s
	}
	return s
}

func plural(n int64, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return strconv.FormatInt(n, 10) + " " + unit + "s"
}
