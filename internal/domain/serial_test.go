package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatSerial(t *testing.T) {
	tests := []struct {
		name     string
		value    int64
		expected string
	}{
		{"первый номер", 1, "00001"},
		{"двузначный", 42, "00042"},
		{"пятизначный без дополнения", 12345, "12345"},
		{"максимальный пятизначный", 99999, "99999"},
		{"переполнение дает более длинную строку", 100000, "100000"},
		{"ноль", 0, "00000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatSerial(tt.value))
		})
	}
}

func TestFormatSerial_Sequential(t *testing.T) {
	// N-й договор владельца получает серийный номер pad5(N)
	seen := make(map[string]bool)
	for n := int64(1); n <= 1000; n++ {
		s := FormatSerial(n)
		assert.Len(t, s, 5)
		assert.False(t, seen[s], "серийный номер %s выдан повторно", s)
		seen[s] = true
	}
}
