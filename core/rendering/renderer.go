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

// Package rendering renders view models to HTML with safehtml templates.
package rendering

import (
	"embed"
	"io"

	"github.com/google/safehtml/template"

	"github.com/google/tabula/core/views"
)

//go:embed templates/*
var templateFS embed.FS

// TableRenderer handles rendering of view models to HTML.
type TableRenderer struct {
	tableTemplate   *template.Template
	landingTemplate *template.Template
	rowTemplate     *template.Template
}

// NewTableRenderer parses the embedded templates.
func NewTableRenderer() (*TableRenderer, error) {
	trustedFS := template.TrustedFSFromEmbed(templateFS)

	tableTemplate, err := template.New("table.html").ParseFS(trustedFS, "templates/table.html")
	if err != nil {
		return nil, err
	}
	landingTemplate, err := template.New("landing.html").ParseFS(trustedFS, "templates/landing.html")
	if err != nil {
		return nil, err
	}
	rowTemplate, err := template.New("row.html").ParseFS(trustedFS, "templates/row.html")
	if err != nil {
		return nil, err
	}

	return &TableRenderer{
		tableTemplate:   tableTemplate,
		landingTemplate: landingTemplate,
		rowTemplate:     rowTemplate,
	}, nil
}

// Render renders a TableViewModel to the provided writer.
func (r *TableRenderer) Render(w io.Writer, vm views.TableViewModel) error {
	return r.tableTemplate.Execute(w, vm)
}

// RenderLanding renders a LandingViewModel to the provided writer.
func (r *TableRenderer) RenderLanding(w io.Writer, vm views.LandingViewModel) error {
	return r.landingTemplate.Execute(w, vm)
}

// RenderRow renders the detail page of an activated row.
func (r *TableRenderer) RenderRow(w io.Writer, vm views.DetailViewModel) error {
	return r.rowTemplate.Execute(w, vm)
}
