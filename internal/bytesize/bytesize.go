// Package bytesize parses and prints human-readable sizes such as "1Mi" or
// "64KB", used for record and fragment limits in configuration.
package bytesize

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ByteSize is a size in bytes. It decodes from plain numbers or from a
// number followed by a binary (Ki, Mi, Gi, Ti, optionally with a trailing B)
// or decimal (K, M, G, T, optionally with a trailing B) unit.
type ByteSize uint64

const (
	B  ByteSize = 1
	KB ByteSize = 1000 * B
	MB ByteSize = 1000 * KB
	GB ByteSize = 1000 * MB
	TB ByteSize = 1000 * GB

	KiB ByteSize = 1 << 10
	MiB ByteSize = 1 << 20
	GiB ByteSize = 1 << 30
	TiB ByteSize = 1 << 40
)

// units maps a lower-cased suffix to its multiplier.
var units = map[string]ByteSize{
	"": B, "b": B,
	"k": KB, "kb": KB, "ki": KiB, "kib": KiB,
	"m": MB, "mb": MB, "mi": MiB, "mib": MiB,
	"g": GB, "gb": GB, "gi": GiB, "gib": GiB,
	"t": TB, "tb": TB, "ti": TiB, "tib": TiB,
}

// Parse reads s as a ByteSize. Surrounding spaces and a space between the
// number and the unit are allowed; units are case-insensitive.
func Parse(s string) (ByteSize, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty byte size")
	}

	split := strings.IndexFunc(s, func(r rune) bool {
		return (r < '0' || r > '9') && r != '.'
	})
	num, unit := s, ""
	if split >= 0 {
		num, unit = s[:split], strings.TrimSpace(s[split:])
	}
	if num == "" {
		return 0, fmt.Errorf("invalid byte size %q", s)
	}

	mult, ok := units[strings.ToLower(unit)]
	if !ok {
		return 0, fmt.Errorf("unknown byte size unit %q", unit)
	}

	if !strings.Contains(num, ".") {
		n, err := strconv.ParseUint(num, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid byte size %q: %w", s, err)
		}
		if n > math.MaxUint64/uint64(mult) {
			return 0, fmt.Errorf("byte size %q overflows", s)
		}
		return ByteSize(n) * mult, nil
	}

	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid byte size %q: %w", s, err)
	}
	v := f * float64(mult)
	if v >= math.MaxUint64 {
		return 0, fmt.Errorf("byte size %q overflows", s)
	}
	return ByteSize(v), nil
}

// MustParse is like Parse but panics on error. For constants and tests.
func MustParse(s string) ByteSize {
	b, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return b
}

// UnmarshalText lets ByteSize decode from config strings.
func (b *ByteSize) UnmarshalText(text []byte) error {
	v, err := Parse(string(text))
	if err != nil {
		return err
	}
	*b = v
	return nil
}

// MarshalText writes the exact size in the largest binary unit that divides
// it, so the value survives a round trip through a config file.
func (b ByteSize) MarshalText() ([]byte, error) {
	for _, u := range [...]struct {
		size   ByteSize
		suffix string
	}{{TiB, "Ti"}, {GiB, "Gi"}, {MiB, "Mi"}, {KiB, "Ki"}} {
		if b >= u.size && b%u.size == 0 {
			return []byte(strconv.FormatUint(uint64(b/u.size), 10) + u.suffix), nil
		}
	}
	return []byte(strconv.FormatUint(uint64(b), 10)), nil
}

// String rounds to two decimals in the largest fitting binary unit.
func (b ByteSize) String() string {
	switch {
	case b >= TiB:
		return fmt.Sprintf("%.2fTiB", float64(b)/float64(TiB))
	case b >= GiB:
		return fmt.Sprintf("%.2fGiB", float64(b)/float64(GiB))
	case b >= MiB:
		return fmt.Sprintf("%.2fMiB", float64(b)/float64(MiB))
	case b >= KiB:
		return fmt.Sprintf("%.2fKiB", float64(b)/float64(KiB))
	}
	return fmt.Sprintf("%dB", uint64(b))
}

// Uint32 converts b for wire-level limits, failing when it does not fit.
func (b ByteSize) Uint32() (uint32, error) {
	if b > math.MaxUint32 {
		return 0, fmt.Errorf("byte size %s exceeds 32 bits", b)
	}
	return uint32(b), nil
}
