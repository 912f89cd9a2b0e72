package pkguid

import "github.com/google/uuid"

type StringID interface {
	Generate() string
}

type UUID struct{}

func NewUUID() *UUID {
	return &UUID{}
}

func (UUID) Generate() string {
	return uuid.NewString()
}

// Stable returns the same identifier for the same name, so values derived from
// identical inputs (e.g. the same sequence of offers) share one id.
func Stable(name string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()
}
