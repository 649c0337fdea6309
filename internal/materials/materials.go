// Package materials loads the course inputs a report is written from: the
// assignment text, a Jupyter notebook split into code and outputs, and an
// optional precomputed retrieval summary.
package materials

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/encoding/charmap"

	"github.com/hyperifyio/note2tex/internal/template"
)

// ErrUnsupported is returned for inputs that need OCR or PDF extraction.
var ErrUnsupported = errors.New("unsupported input format")

// Paths names the input files. Empty paths are skipped.
type Paths struct {
	Assignment string
	Notebook   string
	Summary    string
}

// Load reads every configured input into template.Materials.
func Load(p Paths) (template.Materials, error) {
	var m template.Materials
	var err error
	if m.Assignment, err = ReadText(p.Assignment); err != nil {
		return m, fmt.Errorf("assignment: %w", err)
	}
	if p.Notebook != "" {
		if strings.EqualFold(filepath.Ext(p.Notebook), ".ipynb") {
			nb, err := LoadNotebook(p.Notebook)
			if err != nil {
				return m, fmt.Errorf("notebook: %w", err)
			}
			m.Code, m.Outputs = nb.Code, nb.Outputs
		} else {
			// Plain source files count as code without outputs.
			if m.Code, err = ReadText(p.Notebook); err != nil {
				return m, fmt.Errorf("notebook: %w", err)
			}
		}
	}
	if m.Summary, err = ReadText(p.Summary); err != nil {
		return m, fmt.Errorf("summary: %w", err)
	}
	log.Debug().Int("assignment", len(m.Assignment)).Int("code", len(m.Code)).Int("outputs", len(m.Outputs)).Int("summary", len(m.Summary)).Msg("materials loaded")
	return m, nil
}

// ReadText reads a text file as UTF-8, falling back to Latin-1 for files
// that are not valid UTF-8. An empty path yields an empty string.
func ReadText(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return "", fmt.Errorf("%s: %w: convert the PDF to text first", path, ErrUnsupported)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if utf8.Valid(b) {
		return string(b), nil
	}
	dec, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", path, err)
	}
	log.Debug().Str("path", path).Msg("decoded input as latin-1")
	return string(dec), nil
}

// Notebook is a notebook flattened into code and execution output text.
type Notebook struct {
	Code    string
	Outputs string
	// Images counts image outputs that were skipped.
	Images int
}

type rawNotebook struct {
	Cells []rawCell `json:"cells"`
}

type rawCell struct {
	CellType string          `json:"cell_type"`
	Source   json.RawMessage `json:"source"`
	Outputs  []rawOutput     `json:"outputs"`
}

type rawOutput struct {
	OutputType string                     `json:"output_type"`
	Name       string                     `json:"name"`
	Text       json.RawMessage            `json:"text"`
	Data       map[string]json.RawMessage `json:"data"`
	EName      string                     `json:"ename"`
	EValue     string                     `json:"evalue"`
}

// LoadNotebook parses an .ipynb file.
func LoadNotebook(path string) (Notebook, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Notebook{}, err
	}
	return ParseNotebook(b)
}

// ParseNotebook splits nbformat 4 JSON into code cell sources and their
// textual outputs, each cell separated by a blank line.
func ParseNotebook(b []byte) (Notebook, error) {
	var raw rawNotebook
	if err := json.Unmarshal(b, &raw); err != nil {
		return Notebook{}, fmt.Errorf("parse notebook: %w", err)
	}
	var nb Notebook
	var code, outs []string
	for _, c := range raw.Cells {
		if c.CellType != "code" {
			continue
		}
		if src := strings.TrimSpace(multiline(c.Source)); src != "" {
			code = append(code, src)
		}
		for _, o := range c.Outputs {
			switch o.OutputType {
			case "stream":
				if t := strings.TrimSpace(multiline(o.Text)); t != "" {
					outs = append(outs, t)
				}
			case "execute_result", "display_data":
				if plain, ok := o.Data["text/plain"]; ok {
					if t := strings.TrimSpace(multiline(plain)); t != "" {
						outs = append(outs, t)
					}
				}
				for mime := range o.Data {
					if strings.HasPrefix(mime, "image/") {
						nb.Images++
					}
				}
			case "error":
				outs = append(outs, o.EName+": "+o.EValue)
			}
		}
	}
	nb.Code = strings.Join(code, "\n\n")
	nb.Outputs = strings.Join(outs, "\n\n")
	return nb, nil
}

// multiline decodes an nbformat multiline string, which is either a string
// or a list of lines.
func multiline(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var lines []string
	if err := json.Unmarshal(raw, &lines); err == nil {
		return strings.Join(lines, "")
	}
	return ""
}
