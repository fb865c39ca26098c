package discovery

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"transcheck/internal/domain"
)

// Parser reads case matrix files
type Parser struct{}

// NewParser creates a new Parser
func NewParser() *Parser {
	return &Parser{}
}

// ParseFile reads and decodes one matrix file. The matrix name defaults to the
// file name without its matrix suffix.
func (p *Parser) ParseFile(path string) (*domain.Matrix, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading file %s: %w", path, err)
	}

	m, err := p.Parse(content)
	if err != nil {
		return nil, fmt.Errorf("parse matrix %s: %w", path, err)
	}
	m.Source = path
	if m.Name == "" {
		m.Name = matrixName(path)
	}
	return m, nil
}

// Parse decodes a matrix document. Unknown keys are rejected so typos in
// case fields do not silently change expectations.
func (p *Parser) Parse(content []byte) (*domain.Matrix, error) {
	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)

	var m domain.Matrix
	if err := dec.Decode(&m); err != nil {
		if errors.Is(err, io.EOF) {
			return &m, nil
		}
		return nil, err
	}
	for i := range m.Cases {
		c := &m.Cases[i]
		c.ID = strings.TrimSpace(c.ID)
		if c.RepeatInput > 1 {
			c.Input = strings.Repeat(c.Input, c.RepeatInput)
		}
		if c.Expected != "" {
			o, ok := domain.ParseOutcome(strings.ToLower(string(c.Expected)))
			if !ok {
				return nil, fmt.Errorf("case %q: unknown expected outcome %q", c.ID, c.Expected)
			}
			c.Expected = o
		}
	}
	return &m, nil
}

// ParseFiles parses every file in order.
func (p *Parser) ParseFiles(paths []string) ([]*domain.Matrix, error) {
	matrices := make([]*domain.Matrix, 0, len(paths))
	for _, path := range paths {
		m, err := p.ParseFile(path)
		if err != nil {
			return nil, err
		}
		matrices = append(matrices, m)
	}
	return matrices, nil
}

func matrixName(path string) string {
	base := filepath.Base(path)
	for _, suffix := range MatrixSuffixes {
		if strings.HasSuffix(base, suffix) {
			return strings.TrimSuffix(base, suffix)
		}
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}
