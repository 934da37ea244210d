package io

import (
	"fmt"
	"os"
	"strings"

	cdx "github.com/CycloneDX/cyclonedx-go"
)

var bomFormats = []Format{FormatJSON, FormatXML}

// ReadBOM reads a run manifest (JSON or XML).
// The format parameter can be "json", "xml", or "auto" (default).
// If "auto", the format is determined from the file extension, defaulting to JSON.
func ReadBOM(path string, format string) (*cdx.BOM, error) {
	actual, err := resolveFormat(path, format, FormatJSON, false, bomFormats)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	bom := new(cdx.BOM)
	if err := cdx.NewBOMDecoder(f, bomFileFormat(actual)).Decode(bom); err != nil {
		return nil, err
	}
	return bom, nil
}

// WriteBOM writes a run manifest in the specified format.
// If spec is provided, it encodes with that specific CycloneDX version.
func WriteBOM(bom *cdx.BOM, outputPath string, format string, spec string) error {
	actual, err := resolveFormat(outputPath, format, FormatJSON, true, bomFormats)
	if err != nil {
		return err
	}

	var sv cdx.SpecVersion
	if spec != "" {
		var ok bool
		if sv, ok = ParseSpecVersion(spec); !ok {
			return fmt.Errorf("unsupported CycloneDX spec version: %q", spec)
		}
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := cdx.NewBOMEncoder(f, bomFileFormat(actual))
	encoder.SetPretty(true)
	if spec == "" {
		return encoder.Encode(bom)
	}
	return encoder.EncodeVersion(bom, sv)
}

func bomFileFormat(f Format) cdx.BOMFileFormat {
	if f == FormatXML {
		return cdx.BOMFileFormatXML
	}
	return cdx.BOMFileFormatJSON
}

// ParseSpecVersion parses a spec version string to a CycloneDX SpecVersion.
func ParseSpecVersion(s string) (cdx.SpecVersion, bool) {
	switch strings.TrimSpace(s) {
	case "1.4":
		return cdx.SpecVersion1_4, true
	case "1.5":
		return cdx.SpecVersion1_5, true
	case "1.6":
		return cdx.SpecVersion1_6, true
	default:
		return cdx.SpecVersion1_6, false
	}
}
