// Package profile loads declarative register-map profiles from YAML.
//
// A profile names a device layout once and carries everything a session
// needs to talk to it: the field map, the encoding configuration and the
// transport addressing unit. Profiles resolve through the shared schema
// cache, so profile names must be unique process-wide.
//
//	p, err := profile.Load("sunspec-inverter.yaml")
//	if err != nil { ... }
//	s, err := p.Resolve()
//
// A set of reference profiles ships embedded in the package, see
// Builtin and BuiltinNames.
package profile

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/regmap-proto/regmap-go/pkg/frame"
	"github.com/regmap-proto/regmap-go/pkg/schema"
)

// Profile is a parsed register-map profile.
type Profile struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Unit        string        `yaml:"unit"`
	Config      EncodingBlock `yaml:"config"`
	Fields      []FieldDef    `yaml:"fields"`
}

// EncodingBlock carries the encoding choices of a profile. Empty values
// fall back to the package defaults (word-wide booleans, word-swapped
// order).
type EncodingBlock struct {
	BoolWidth string `yaml:"bool_width"`
	ByteOrder string `yaml:"byte_order"`
}

// FieldDef is a single field of a profile. Base names the underlying
// integer kind of enum fields and must be empty everywhere else.
type FieldDef struct {
	Key     string `yaml:"key"`
	Address uint16 `yaml:"address"`
	Kind    string `yaml:"kind"`
	Base    string `yaml:"base,omitempty"`
}

// Parse parses and validates a YAML profile.
func Parse(data []byte) (*Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing profile: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Load reads and parses a YAML profile from a file.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profile: %w", err)
	}
	return Parse(data)
}

// ---------------------------------------------------------------------------
// Validation
// ---------------------------------------------------------------------------

// Validate checks the profile for authoring mistakes: a missing name,
// unknown kinds, units or orders, enum fields without an integer base,
// and duplicate field keys.
func (p *Profile) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: profile has no name", schema.ErrInvalidConfig)
	}
	if len(p.Fields) == 0 {
		return fmt.Errorf("profile %q: %w", p.Name, schema.ErrEmptyLayout)
	}

	if _, err := p.FrameUnit(); err != nil {
		return fmt.Errorf("profile %q: %w", p.Name, err)
	}
	if _, err := p.SchemaConfig(); err != nil {
		return fmt.Errorf("profile %q: %w", p.Name, err)
	}

	seen := make(map[string]bool, len(p.Fields))
	for _, f := range p.Fields {
		if f.Key == "" {
			return fmt.Errorf("profile %q: %w: field at address %d has no key",
				p.Name, schema.ErrInvalidConfig, f.Address)
		}
		if seen[f.Key] {
			return fmt.Errorf("profile %q: %w: duplicate field key %q",
				p.Name, schema.ErrInvalidConfig, f.Key)
		}
		seen[f.Key] = true

		if err := f.check(); err != nil {
			return fmt.Errorf("profile %q: field %q: %w", p.Name, f.Key, err)
		}
	}
	return nil
}

func (f FieldDef) check() error {
	if f.Kind == "enum" {
		base, err := schema.ParseKind(f.Base)
		if err != nil {
			return fmt.Errorf("enum base: %w", err)
		}
		if !base.Integer() {
			return fmt.Errorf("%w: enum base %q is not an integer kind",
				schema.ErrUnsupportedKind, f.Base)
		}
		return nil
	}

	if _, err := schema.ParseKind(f.Kind); err != nil {
		return err
	}
	if f.Base != "" {
		return fmt.Errorf("%w: base %q on non-enum field",
			schema.ErrInvalidConfig, f.Base)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Derived configuration
// ---------------------------------------------------------------------------

// SchemaConfig returns the encoding configuration the profile declares.
// Missing values take the package defaults.
func (p *Profile) SchemaConfig() (schema.Config, error) {
	cfg := schema.DefaultConfig()

	if p.Config.BoolWidth != "" {
		w, err := schema.ParseBoolWidth(p.Config.BoolWidth)
		if err != nil {
			return schema.Config{}, err
		}
		cfg.BoolWidth = w
	}
	if p.Config.ByteOrder != "" {
		o, err := schema.ParseByteOrder(p.Config.ByteOrder)
		if err != nil {
			return schema.Config{}, err
		}
		cfg.ByteOrder = o
	}
	return cfg, nil
}

// FrameUnit returns the transport addressing unit the profile declares,
// defaulting to registers.
func (p *Profile) FrameUnit() (frame.Unit, error) {
	if p.Unit == "" {
		return frame.UnitRegister, nil
	}
	return frame.ParseUnit(p.Unit)
}

// ---------------------------------------------------------------------------
// Resolution
// ---------------------------------------------------------------------------

// Layout adapts the profile to the schema registry.
func (p *Profile) Layout() schema.Layout {
	return schema.NewLayout(p.Name, p.declare)
}

func (p *Profile) declare(b *schema.Builder) {
	for _, f := range p.Fields {
		if f.Kind == "enum" {
			base, err := schema.ParseKind(f.Base)
			if err != nil {
				continue // caught by Validate
			}
			b.Enum(schema.Key(f.Key), f.Address, base)
			continue
		}
		kind, err := schema.ParseKind(f.Kind)
		if err != nil {
			continue
		}
		b.Field(schema.Key(f.Key), f.Address, kind)
	}
}

// Resolve validates the profile and resolves it to a schema under its
// own declared configuration, going through the shared schema cache.
func (p *Profile) Resolve() (*schema.Schema, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	cfg, err := p.SchemaConfig()
	if err != nil {
		return nil, err
	}
	return schema.Resolve(p.Layout(), cfg)
}
