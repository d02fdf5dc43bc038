package schema

import (
	"errors"
	"testing"
)

func TestBuilderKindSizes(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		declare func(b *Builder)
		key     Key
		size    int
		kind    Kind
	}{
		{"uint8", DefaultConfig(), func(b *Builder) { b.Uint8("f", 0) }, "f", 1, KindUint8},
		{"int8", DefaultConfig(), func(b *Builder) { b.Int8("f", 0) }, "f", 1, KindInt8},
		{"uint16", DefaultConfig(), func(b *Builder) { b.Uint16("f", 0) }, "f", 2, KindUint16},
		{"int16", DefaultConfig(), func(b *Builder) { b.Int16("f", 0) }, "f", 2, KindInt16},
		{"uint32", DefaultConfig(), func(b *Builder) { b.Uint32("f", 0) }, "f", 4, KindUint32},
		{"int32", DefaultConfig(), func(b *Builder) { b.Int32("f", 0) }, "f", 4, KindInt32},
		{"uint64", DefaultConfig(), func(b *Builder) { b.Uint64("f", 0) }, "f", 8, KindUint64},
		{"int64", DefaultConfig(), func(b *Builder) { b.Int64("f", 0) }, "f", 8, KindInt64},
		{"float32", DefaultConfig(), func(b *Builder) { b.Float32("f", 0) }, "f", 4, KindFloat32},
		{"float64", DefaultConfig(), func(b *Builder) { b.Float64("f", 0) }, "f", 8, KindFloat64},
		{
			"bool byte",
			Config{BoolWidth: BoolByte, ByteOrder: OrderBigEndian},
			func(b *Builder) { b.Bool("f", 0) }, "f", 1, KindBool,
		},
		{
			"bool word",
			Config{BoolWidth: BoolWord, ByteOrder: OrderBigEndian},
			func(b *Builder) { b.Bool("f", 0) }, "f", 2, KindBool,
		},
		{
			"bool dword",
			Config{BoolWidth: BoolDword, ByteOrder: OrderBigEndian},
			func(b *Builder) { b.Bool("f", 0) }, "f", 4, KindBool,
		},
		{
			"enum uint16",
			DefaultConfig(),
			func(b *Builder) { b.Enum("f", 0, KindUint16) }, "f", 2, KindUint16,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder(tt.cfg)
			tt.declare(b)
			s, err := b.Resolve()
			if err != nil {
				t.Fatalf("Resolve failed: %v", err)
			}
			f, err := s.Field(tt.key)
			if err != nil {
				t.Fatalf("Field(%q) failed: %v", tt.key, err)
			}
			if f.Size != tt.size {
				t.Errorf("size = %d, want %d", f.Size, tt.size)
			}
			if f.Kind != tt.kind {
				t.Errorf("kind = %s, want %s", f.Kind, tt.kind)
			}
		})
	}
}

func TestBuilderEmptyLayout(t *testing.T) {
	_, err := NewBuilder(DefaultConfig()).Resolve()
	if !errors.Is(err, ErrEmptyLayout) {
		t.Errorf("expected ErrEmptyLayout, got %v", err)
	}
}

func TestBuilderInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero config", Config{}},
		{"bad bool width", Config{BoolWidth: 3, ByteOrder: OrderBigEndian}},
		{"bad byte order", Config{BoolWidth: BoolByte, ByteOrder: ByteOrder(9)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBuilder(tt.cfg).Uint16("f", 0).Resolve()
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestBuilderEnumBase(t *testing.T) {
	t.Run("IntegerBase", func(t *testing.T) {
		s, err := NewBuilder(DefaultConfig()).Enum("mode", 0, KindInt32).Resolve()
		if err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
		f, _ := s.Field("mode")
		if !f.Enum {
			t.Error("expected Enum flag set")
		}
		if f.Kind != KindInt32 {
			t.Errorf("kind = %s, want int32", f.Kind)
		}
	})

	t.Run("FloatBaseRejected", func(t *testing.T) {
		_, err := NewBuilder(DefaultConfig()).Enum("mode", 0, KindFloat32).Resolve()
		if !errors.Is(err, ErrUnsupportedKind) {
			t.Errorf("expected ErrUnsupportedKind, got %v", err)
		}
	})

	t.Run("BoolBaseRejected", func(t *testing.T) {
		_, err := NewBuilder(DefaultConfig()).Enum("mode", 0, KindBool).Resolve()
		if !errors.Is(err, ErrUnsupportedKind) {
			t.Errorf("expected ErrUnsupportedKind, got %v", err)
		}
	})
}

func TestBuilderFieldKind(t *testing.T) {
	s, err := NewBuilder(DefaultConfig()).Field("f", 4, KindUint32).Resolve()
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	f, _ := s.Field("f")
	if f.Kind != KindUint32 || f.Size != 4 {
		t.Errorf("got kind %s size %d, want uint32 size 4", f.Kind, f.Size)
	}

	_, err = NewBuilder(DefaultConfig()).Field("f", 0, KindInvalid).Resolve()
	if !errors.Is(err, ErrUnsupportedKind) {
		t.Errorf("expected ErrUnsupportedKind, got %v", err)
	}
}

func TestBuilderDuplicateKey(t *testing.T) {
	s, err := NewBuilder(DefaultConfig()).
		Uint16("f", 0).
		Uint32("f", 10).
		Resolve()
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if s.Len() != 1 {
		t.Fatalf("expected 1 field after duplicate key, got %d", s.Len())
	}
	f, err := s.Field("f")
	if err != nil {
		t.Fatalf("Field failed: %v", err)
	}
	if f.Address != 10 || f.Kind != KindUint32 {
		t.Errorf("expected last registration to win, got address %d kind %s", f.Address, f.Kind)
	}
}

func TestBuilderDuplicateAddress(t *testing.T) {
	s, err := NewBuilder(DefaultConfig()).
		Uint16("first", 0).
		Uint16("second", 0).
		Resolve()
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if s.Len() != 1 {
		t.Fatalf("expected 1 field after duplicate address, got %d", s.Len())
	}
	if _, err := s.Field("first"); !errors.Is(err, ErrUnknownField) {
		t.Errorf("expected earlier key to be displaced, got %v", err)
	}
	f, err := s.Field("second")
	if err != nil {
		t.Fatalf("Field failed: %v", err)
	}
	if f.Address != 0 {
		t.Errorf("address = %d, want 0", f.Address)
	}
}

func TestBuilderAddressSpaceBound(t *testing.T) {
	t.Run("LastRegisterFits", func(t *testing.T) {
		s, err := NewBuilder(DefaultConfig()).Uint16("f", 0xFFFE).Resolve()
		if err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
		f, _ := s.Field("f")
		if f.End() != 0x10000 {
			t.Errorf("End() = %#x, want 0x10000", f.End())
		}
	})

	t.Run("PastEndRejected", func(t *testing.T) {
		_, err := NewBuilder(DefaultConfig()).Uint32("f", 0xFFFE).Resolve()
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}

func TestBuilderEmptyKey(t *testing.T) {
	_, err := NewBuilder(DefaultConfig()).Uint16("", 0).Resolve()
	if err == nil {
		t.Error("expected error for empty field key")
	}
}
