package utils

import (
	"math/rand"
)

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateEnrollmentCode generates an 8-character uppercase alphanumeric
// enrollment code. Uniqueness across classrooms is enforced by the caller's
// retry loop against the unique index, not here.
func GenerateEnrollmentCode() string {
	code := make([]byte, 8)
	for i := range code {
		code[i] = codeAlphabet[rand.Intn(len(codeAlphabet))]
	}
	return string(code)
}
