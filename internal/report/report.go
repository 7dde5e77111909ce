// Package report renders a completed analysis as JSON, YAML or DOCX.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"

	"scholarsync/internal/analysis"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatDOCX Format = "docx"
)

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "docx", "word":
		return FormatDOCX, nil
	default:
		return "", fmt.Errorf("unsupported report format: %s", s)
	}
}

func (f Format) Extension() string {
	return "." + string(f)
}

func (f Format) ContentType() string {
	switch f {
	case FormatYAML:
		return "application/yaml"
	case FormatDOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	default:
		return "application/json"
	}
}

// Encode writes r to w in format f.
func Encode(w io.Writer, f Format, r analysis.AggregateResult) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("encode json report: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("encode yaml report: %w", err)
		}
		return enc.Close()
	case FormatDOCX:
		return encodeDOCX(w, r)
	default:
		return fmt.Errorf("unsupported report format: %s", f)
	}
}

// encodeDOCX goes through a temporary file; the docx writer only saves to paths.
func encodeDOCX(w io.Writer, r analysis.AggregateResult) error {
	tmp, err := os.CreateTemp("", "scholarsync-*.docx")
	if err != nil {
		return fmt.Errorf("create temp docx: %w", err)
	}
	path := tmp.Name()
	_ = tmp.Close()
	defer os.Remove(path)

	if err := SaveDOCX(path, r); err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open docx: %w", err)
	}
	defer f.Close()
	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("copy docx: %w", err)
	}
	return nil
}
