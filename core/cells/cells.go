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

// Package cells contains the stateless cell renderers shared by every list
// screen. A renderer turns a raw column value (and the row it came from) into
// a Cell, which can be printed as text or emitted as safe HTML.
package cells

import (
	"reflect"

	"github.com/google/safehtml"
	"github.com/google/safehtml/template"
)

// Placeholder is shown for values that are missing.
const Placeholder = "-"

// DefaultStatusColor is used for status values without a mapping entry.
const DefaultStatusColor = "default"

// Kind identifies how a cell is presented.
type Kind int

const (
	KindText Kind = iota
	KindStatus
	KindDate
	KindBool
	KindActions
)

// Action is one entry of a rendered action menu.
type Action struct {
	Name  string
	Label string
}

// Cell is the renderable produced by a Renderer.
type Cell struct {
	Kind    Kind
	Text    string
	Color   string   // status badge color
	Checked bool     // bool cells only
	Missing bool     // the value was nil and Text holds the placeholder
	Actions []Action // action menus only
}

// Renderer renders the value of one column for one row.
type Renderer[T any] func(value any, row T) Cell

// Capability reports whether the current user holds a permission.
type Capability func(permission string) bool

// Allowed reports whether something gated by permission may be shown.
// An empty permission is always allowed; a nil capability allows nothing else.
func Allowed(permission string, can Capability) bool {
	if permission == "" {
		return true
	}
	return can != nil && can(permission)
}

// TextCell returns a plain text cell.
func TextCell(text string) Cell {
	return Cell{Kind: KindText, Text: text}
}

// MissingCell returns a placeholder cell of the given kind.
func MissingCell(kind Kind) Cell {
	return Cell{Kind: kind, Text: Placeholder, Missing: true}
}

// IsNil reports whether v is nil or a nil pointer, map, slice, func, chan or interface.
func IsNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// IsStatus is used by templates.
func (c Cell) IsStatus() bool { return c.Kind == KindStatus }

// IsBool is used by templates.
func (c Cell) IsBool() bool { return c.Kind == KindBool }

// IsActions is used by templates.
func (c Cell) IsActions() bool { return c.Kind == KindActions }

// String returns the plain text form of the cell.
func (c Cell) String() string {
	if c.Kind != KindActions {
		return c.Text
	}
	s := ""
	for i, a := range c.Actions {
		if i > 0 {
			s += " | "
		}
		s += a.Label
	}
	return s
}

var cellTemplate = template.Must(template.New("cell").Parse(
	`{{if .Missing}}<span class="missing">{{.Text}}</span>` +
		`{{else if .IsStatus}}<span class="badge badge-{{.Color}}">{{.Text}}</span>` +
		`{{else if .IsBool}}{{if .Checked}}<span class="bool bool-true">{{.Text}}</span>{{else}}<span class="bool bool-false">{{.Text}}</span>{{end}}` +
		`{{else if .IsActions}}<span class="actions">{{range .Actions}}<span class="action action-{{.Name}}">{{.Label}}</span>{{end}}</span>` +
		`{{else}}{{.Text}}{{end}}`))

// HTML renders the cell as safe HTML. Rendering errors degrade to escaped text.
func (c Cell) HTML() safehtml.HTML {
	h, err := cellTemplate.ExecuteToHTML(c)
	if err != nil {
		return safehtml.HTMLEscaped(c.String())
	}
	return h
}
