package core

import "github.com/google/uuid"

// Identifier names a GPU-side resource (texture, kernel, context) in logs.
type Identifier struct {
	uuid.UUID
	Kind string
}

func NewIdentifier(kind string) Identifier {
	return Identifier{
		UUID: uuid.New(),
		Kind: kind,
	}
}

func (id Identifier) String() string {
	return id.Kind + "/" + id.UUID.String()[:8]
}
