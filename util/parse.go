package util

import (
	"strconv"
	"strings"
)

var sizeUnits = []struct {
	suffix string
	factor int64
}{
	{"GB", 1 << 30},
	{"MB", 1 << 20},
	{"KB", 1 << 10},
	{"B", 1},
}

// ParseSize converts a size such as "512KB", "1MB" or "2048" into bytes.
// Unparseable or non-positive values yield def.
func ParseSize(s string, def int64) int64 {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return def
	}
	factor := int64(1)
	for _, u := range sizeUnits {
		if strings.HasSuffix(s, u.suffix) {
			factor = u.factor
			s = strings.TrimSpace(strings.TrimSuffix(s, u.suffix))
			break
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return def
	}
	return n * factor
}

// MaskSecret keeps the first visible characters of a credential for logs.
// Empty secrets stay empty so "not configured" remains visible.
func MaskSecret(s string, visible int) string {
	if s == "" {
		return ""
	}
	if len(s) <= visible {
		return "***"
	}
	return s[:visible] + "***"
}
