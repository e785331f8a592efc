package inventory

import (
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
)

// Clock abstracts time retrieval so business logic is deterministic in tests.
type Clock interface {
	Now() time.Time
}

// RealClock returns the actual current time.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// IDGenerator abstracts unique ID generation so tests are deterministic.
type IDGenerator interface {
	New() string
}

// UUIDGenerator produces random UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) New() string { return uuid.New().String() }

// CodeGenerator produces candidate shareable codes. The repository retries on
// collision, so implementations need not guarantee uniqueness.
type CodeGenerator interface {
	Code() string
}

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// ShareableCodeLength is the fixed length of item shareable codes.
const ShareableCodeLength = 6

// RandomCodeGenerator produces random six-character uppercase-alphanumeric
// codes.
type RandomCodeGenerator struct{}

func (RandomCodeGenerator) Code() string {
	b := make([]byte, ShareableCodeLength)
	for i := range b {
		b[i] = codeAlphabet[rand.IntN(len(codeAlphabet))]
	}
	return string(b)
}
