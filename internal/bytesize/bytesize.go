// Package bytesize parses human-readable byte sizes used in configuration,
// such as "256Mi", "1G" or plain byte counts.
package bytesize

import (
	"fmt"
	"strconv"
	"strings"
)

// ByteSize is a size in bytes that unmarshals from strings like "512Mi",
// "100MB" or "1073741824".
//
// Binary suffixes (Ki, Mi, Gi, Ti) multiply by 1024; decimal suffixes
// (K, M, G, T, optionally followed by B) multiply by 1000. A bare number
// or a trailing "B" means bytes.
type ByteSize uint64

const (
	B  ByteSize = 1
	KB ByteSize = 1000
	MB ByteSize = 1000 * KB
	GB ByteSize = 1000 * MB
	TB ByteSize = 1000 * GB

	KiB ByteSize = 1024
	MiB ByteSize = 1024 * KiB
	GiB ByteSize = 1024 * MiB
	TiB ByteSize = 1024 * GiB
)

// Parse parses a human-readable byte size string.
func Parse(s string) (ByteSize, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty byte size")
	}

	// Split the numeric prefix from the unit suffix.
	i := 0
	for i < len(s) && (s[i] >= '0' && s[i] <= '9' || s[i] == '.') {
		i++
	}
	numStr := s[:i]
	unit := strings.ToLower(strings.TrimSpace(s[i:]))

	if numStr == "" {
		return 0, fmt.Errorf("invalid byte size %q", s)
	}

	mult, ok := unitMultiplier(unit)
	if !ok {
		return 0, fmt.Errorf("unknown byte size unit %q", s[i:])
	}

	if strings.Contains(numStr, ".") {
		f, err := strconv.ParseFloat(numStr, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid byte size %q", s)
		}
		return ByteSize(f * float64(mult)), nil
	}

	n, err := strconv.ParseUint(numStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid byte size %q", s)
	}
	return ByteSize(n) * mult, nil
}

func unitMultiplier(unit string) (ByteSize, bool) {
	switch unit {
	case "", "b":
		return B, true
	case "k", "kb":
		return KB, true
	case "m", "mb":
		return MB, true
	case "g", "gb":
		return GB, true
	case "t", "tb":
		return TB, true
	case "ki", "kib":
		return KiB, true
	case "mi", "mib":
		return MiB, true
	case "gi", "gib":
		return GiB, true
	case "ti", "tib":
		return TiB, true
	}
	return 0, false
}

// UnmarshalText implements encoding.TextUnmarshaler so ByteSize fields can be
// decoded directly from config files.
func (b *ByteSize) UnmarshalText(text []byte) error {
	size, err := Parse(string(text))
	if err != nil {
		return err
	}
	*b = size
	return nil
}

// String returns the size using the largest exact binary unit.
func (b ByteSize) String() string {
	switch {
	case b >= TiB && b%TiB == 0:
		return fmt.Sprintf("%dTi", uint64(b/TiB))
	case b >= GiB && b%GiB == 0:
		return fmt.Sprintf("%dGi", uint64(b/GiB))
	case b >= MiB && b%MiB == 0:
		return fmt.Sprintf("%dMi", uint64(b/MiB))
	case b >= KiB && b%KiB == 0:
		return fmt.Sprintf("%dKi", uint64(b/KiB))
	default:
		return strconv.FormatUint(uint64(b), 10)
	}
}

// Bytes returns the size as an int64 for APIs that take signed lengths.
func (b ByteSize) Bytes() int64 {
	return int64(b)
}
