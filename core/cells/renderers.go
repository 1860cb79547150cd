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
	"strings"
	"time"
)

// DateLayout is the default layout used by Date.
const DateLayout = "2006-01-02"

// dateParseFormats lists formats to try when a date arrives as a string, in order of preference.
var dateParseFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"02-Jan-2006",
	"Jan 2, 2006",
}

// StatusStyle is the presentation of one status value.
type StatusStyle struct {
	Label string
	Color string
}

// ActionDef declares one entry of an action menu.
type ActionDef struct {
	Name       string // view, edit, delete...
	Label      string
	Permission string // empty means always shown
}

// Text renders any value with its default string form.
func Text[T any]() Renderer[T] {
	return func(value any, _ T) Cell {
		if IsNil(value) {
			return MissingCell(KindText)
		}
		return TextCell(stringOf(value))
	}
}

// Format renders values with fmt.Sprintf(format, value).
func Format[T any](format string) Renderer[T] {
	return func(value any, _ T) Cell {
		if IsNil(value) {
			return MissingCell(KindText)
		}
		return TextCell(fmt.Sprintf(format, deref(value)))
	}
}

// Status maps raw status values through mapping. Values without an entry are
// shown as-is with DefaultStatusColor.
func Status[T any](mapping map[string]StatusStyle) Renderer[T] {
	return func(value any, _ T) Cell {
		if IsNil(value) {
			return MissingCell(KindStatus)
		}
		raw := stringOf(value)
		style, ok := mapping[raw]
		if !ok {
			return Cell{Kind: KindStatus, Text: raw, Color: DefaultStatusColor}
		}
		label := style.Label
		if label == "" {
			label = raw
		}
		color := style.Color
		if color == "" {
			color = DefaultStatusColor
		}
		return Cell{Kind: KindStatus, Text: label, Color: color}
	}
}

// Date formats time values with layout (DateLayout when empty). Missing,
// zero and unparsable values render the placeholder.
func Date[T any](layout string) Renderer[T] {
	if layout == "" {
		layout = DateLayout
	}
	return func(value any, _ T) Cell {
		t, ok := AsTime(value)
		if !ok {
			return MissingCell(KindDate)
		}
		return Cell{Kind: KindDate, Text: t.Format(layout)}
	}
}

// Bool renders one of two states. Anything that is not a bool renders the placeholder.
func Bool[T any]() Renderer[T] {
	return func(value any, _ T) Cell {
		var b bool
		switch v := value.(type) {
		case bool:
			b = v
		case *bool:
			if v == nil {
				return MissingCell(KindBool)
			}
			b = *v
		default:
			return MissingCell(KindBool)
		}
		if b {
			return Cell{Kind: KindBool, Text: "✓", Checked: true}
		}
		return Cell{Kind: KindBool, Text: "✗"}
	}
}

// ActionMenu renders the actions the capability allows. Denied actions are
// left out of the menu entirely.
func ActionMenu[T any](actions []ActionDef, can Capability) Renderer[T] {
	return func(_ any, _ T) Cell {
		cell := Cell{Kind: KindActions}
		for _, a := range actions {
			if !Allowed(a.Permission, can) {
				continue
			}
			label := a.Label
			if label == "" {
				label = a.Name
			}
			cell.Actions = append(cell.Actions, Action{Name: a.Name, Label: label})
		}
		return cell
	}
}

// AsTime converts time-like values. The second result is false for missing,
// zero or unparsable values.
func AsTime(value any) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, !v.IsZero()
	case *time.Time:
		if v == nil {
			return time.Time{}, false
		}
		return *v, !v.IsZero()
	case string:
		return ParseTime(v)
	}
	return time.Time{}, false
}

// ParseTime parses s with the first matching known layout.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateParseFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func stringOf(value any) string {
	switch v := deref(value).(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func deref(value any) any {
	switch v := value.(type) {
	case *string:
		return *v
	case *int:
		return *v
	case *int64:
		return *v
	case *float64:
		return *v
	}
	return value
}
