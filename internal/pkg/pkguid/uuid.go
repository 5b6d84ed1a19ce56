package pkguid

import "github.com/google/uuid"

// StringID is satisfied by every generator in this package.
type StringID interface {
	Generate() string
}

// UUID hands out random version 4 UUIDs. Uploaded files are keyed by them.
type UUID struct{}

func NewUUID() *UUID {
	return &UUID{}
}

func (*UUID) Generate() string {
	return uuid.Must(uuid.NewRandom()).String()
}

// Canonical parses value as a UUID and returns its lower-case hyphenated form.
func Canonical(value string) (string, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
