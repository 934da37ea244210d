// Package io reads and writes simulation records and run manifests.
package io

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
)

// Format names an on-disk encoding.
type Format string

const (
	FormatAuto Format = "auto"
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatXML  Format = "xml"
)

// RecordFormats are the encodings supported for metric records.
var RecordFormats = []Format{FormatCSV, FormatJSON, FormatYAML}

// FormatFromExt maps a file extension to a format, or "" when unknown.
func FormatFromExt(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	case ".xml":
		return FormatXML
	}
	return ""
}

// resolveFormat turns a user supplied format into a concrete one. "" and
// "auto" pick by extension, falling back to fallback. An explicit format must
// agree with a known extension when strict is set.
func resolveFormat(path, format string, fallback Format, strict bool, allowed []Format) (Format, error) {
	actual := Format(strings.ToLower(strings.TrimSpace(format)))
	ext := FormatFromExt(path)
	switch actual {
	case "", FormatAuto:
		actual = ext
		if actual == "" || !slices.Contains(allowed, actual) {
			actual = fallback
		}
	default:
		if !slices.Contains(allowed, actual) {
			return "", fmt.Errorf("unsupported format: %q", format)
		}
		if strict && ext != "" && ext != actual {
			return "", fmt.Errorf("output path extension %q does not match format %q", filepath.Ext(path), actual)
		}
	}
	return actual, nil
}
