// Zaparoo Covers
// Copyright (c) 2025 The Zaparoo Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Zaparoo Covers.
//
// Zaparoo Covers is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Zaparoo Covers is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Zaparoo Covers.  If not, see <http://www.gnu.org/licenses/>.

// Package export writes batch results to disk and reads CSV game lists.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ZaparooProject/zaparoo-covers/v2/pkg/covers"
	"github.com/gocarina/gocsv"
	"github.com/spf13/afero"
)

const (
	FormatJSON = "json"
	FormatCSV  = "csv"

	defaultBaseName = "games-with-covers"
)

// DefaultFileName returns the conventional output file name for a format.
func DefaultFileName(format string) string {
	if format == FormatCSV {
		return defaultBaseName + ".csv"
	}
	return defaultBaseName + ".json"
}

// FormatFromPath picks the output format from a file extension, defaulting
// to JSON.
func FormatFromPath(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return FormatCSV
	}
	return FormatJSON
}

// Encode writes the items in the given format.
func Encode(w io.Writer, items []covers.GameItem, format string) error {
	switch format {
	case FormatJSON, "":
		return EncodeJSON(w, items)
	case FormatCSV:
		return EncodeCSV(w, items)
	default:
		return fmt.Errorf("unsupported export format: %s", format)
	}
}

// EncodeJSON writes the items as an indented JSON array. Items without a
// cover have no imageUrl field.
func EncodeJSON(w io.Writer, items []covers.GameItem) error {
	if items == nil {
		items = []covers.GameItem{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(items); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// EncodeCSV writes the items with a title,systemName,imageUrl header.
func EncodeCSV(w io.Writer, items []covers.GameItem) error {
	if items == nil {
		items = []covers.GameItem{}
	}
	if err := gocsv.Marshal(&items, w); err != nil {
		return fmt.Errorf("failed to encode CSV: %w", err)
	}
	return nil
}

// WriteFile encodes the items and writes them to path, creating parent
// directories as needed.
func WriteFile(fs afero.Fs, path string, items []covers.GameItem, format string) error {
	var buf bytes.Buffer
	if err := Encode(&buf, items, format); err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := fs.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	if err := afero.WriteFile(fs, path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// CSVToJSON converts a CSV game list with title and systemName columns into
// the JSON array accepted by a batch run. Other columns are ignored.
func CSVToJSON(r io.Reader) ([]byte, error) {
	var items []covers.GameItem
	if err := gocsv.Unmarshal(r, &items); err != nil {
		return nil, fmt.Errorf("%w: failed to read CSV: %w", covers.ErrInvalidInput, err)
	}

	type inputItem struct {
		Title      string `json:"title"`
		SystemName string `json:"systemName"`
	}
	out := make([]inputItem, len(items))
	for i, item := range items {
		out[i] = inputItem{Title: item.Title, SystemName: item.SystemName}
	}

	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}
	return data, nil
}
