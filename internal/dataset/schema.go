package dataset

import (
	"crypto/sha256"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed schema.yaml
var defaultSchema []byte

// Record fields a schema column can bind to.
const (
	FieldTitle    = "title"
	FieldGenre    = "genre"
	FieldScore    = "score"
	FieldYear     = "year"
	FieldLanguage = "language"
	FieldRuntime  = "runtime"
)

// Column types.
const (
	TypeString = "string"
	TypeNumber = "number"
	TypeYear   = "year"
	TypeList   = "list"
)

// fieldOrder fixes the order columns are checked in, so a row with several
// bad cells is always excluded for the same reason.
var fieldOrder = []string{FieldTitle, FieldGenre, FieldScore, FieldYear, FieldLanguage, FieldRuntime}

var fieldTypes = map[string][]string{
	FieldTitle:    {TypeString},
	FieldGenre:    {TypeString, TypeList},
	FieldScore:    {TypeNumber},
	FieldYear:     {TypeYear, TypeNumber},
	FieldLanguage: {TypeString},
	FieldRuntime:  {TypeNumber},
}

// Schema maps CSV headers onto record fields and types every cell before a
// record is built. A row that does not satisfy it is excluded.
type Schema struct {
	Name        string             `yaml:"name"`
	Version     int                `yaml:"version"`
	Description string             `yaml:"description,omitempty"`
	Columns     map[string]*Column `yaml:"columns"`

	// Fingerprint is the SHA-256 of the raw YAML; computed at load time.
	Fingerprint string `yaml:"-"`
}

// Column describes one record field.
//
// Columns support two declaration styles:
//
//	Shorthand (scalar): runtime: number
//	Long form (mapping): score:
//	                        type: number!
//	                        aliases: [IMDB Score]
//
// Append "!" to the type to make the column required: a row with an empty or
// untypeable cell is then excluded instead of getting a zero value.
type Column struct {
	Type     string   `yaml:"type"`
	Required bool     `yaml:"required,omitempty"`
	Aliases  []string `yaml:"aliases,omitempty"`
	Min      *float64 `yaml:"min,omitempty"`
	Max      *float64 `yaml:"max,omitempty"`
}

// UnmarshalYAML accepts both the shorthand and the long form.
func (c *Column) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		return c.parseType(value.Value)
	}

	type columnAlias Column
	var alias columnAlias
	if err := value.Decode(&alias); err != nil {
		return err
	}
	*c = Column(alias)

	if c.Type == "" {
		return fmt.Errorf("column missing 'type'")
	}
	return c.parseType(c.Type)
}

func (c *Column) parseType(s string) error {
	if strings.HasSuffix(s, "!") {
		c.Required = true
		s = strings.TrimSuffix(s, "!")
	}
	switch s {
	case TypeString, TypeNumber, TypeYear, TypeList:
		c.Type = s
	default:
		return fmt.Errorf("unsupported type %q (must be: string, number, year, list)", s)
	}
	return nil
}

// Validate checks that the schema is structurally usable.
func (s *Schema) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("schema name is required")
	}
	if s.Version < 1 {
		return fmt.Errorf("version must be >= 1")
	}
	if len(s.Columns) == 0 {
		return fmt.Errorf("schema must define at least one column")
	}
	if _, ok := s.Columns[FieldTitle]; !ok {
		return fmt.Errorf("column %q is required", FieldTitle)
	}

	for name, col := range s.Columns {
		if col == nil {
			return fmt.Errorf("column %q: type cannot be empty", name)
		}
		allowed, ok := fieldTypes[name]
		if !ok {
			return fmt.Errorf("column %q: unknown record field", name)
		}
		if !contains(allowed, col.Type) {
			return fmt.Errorf("column %q: type %q not allowed (want one of %v)", name, col.Type, allowed)
		}
		if col.Min != nil && col.Max != nil && *col.Min > *col.Max {
			return fmt.Errorf("column %q: min (%g) cannot exceed max (%g)", name, *col.Min, *col.Max)
		}
		if (col.Min != nil || col.Max != nil) && col.Type == TypeString {
			return fmt.Errorf("column %q: string columns do not support min/max", name)
		}
	}
	return nil
}

// Headers returns the header names a column answers to in priority order:
// the aliases, then the field name itself.
func (c *Column) Headers(field string) []string {
	out := make([]string, 0, len(c.Aliases)+1)
	out = append(out, c.Aliases...)
	out = append(out, field)
	return out
}

// ParseSchema decodes and validates a YAML schema definition.
func ParseSchema(data []byte) (*Schema, error) {
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse dataset schema: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dataset schema: %w", err)
	}
	s.Fingerprint = fmt.Sprintf("%x", sha256.Sum256(data))
	return &s, nil
}

// LoadSchema reads the schema at path, or returns the built-in schema when
// path is empty.
func LoadSchema(path string) (*Schema, error) {
	if path == "" {
		return DefaultSchema(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading dataset schema %s: %w", path, err)
	}
	return ParseSchema(data)
}

// DefaultSchema returns the built-in schema for the Netflix Originals CSV.
func DefaultSchema() *Schema {
	s, err := ParseSchema(defaultSchema)
	if err != nil {
		panic(fmt.Sprintf("built-in dataset schema: %v", err))
	}
	return s
}

func contains(xs []string, s string) bool {
	for _, x := range xs {
		if x == s {
			return true
		}
	}
	return false
}
