package utils

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateEnrollmentCodeFormat(t *testing.T) {
	format := regexp.MustCompile(`^[A-Z0-9]{8}$`)
	for i := 0; i < 100; i++ {
		code := GenerateEnrollmentCode()
		assert.Regexp(t, format, code)
	}
}

func TestGenerateEnrollmentCodeVaries(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		seen[GenerateEnrollmentCode()] = true
	}
	// 36^8 possible codes; 1000 draws colliding down to a handful would
	// mean a broken generator.
	assert.Greater(t, len(seen), 990)
}
