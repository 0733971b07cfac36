// Package memory holds a mutex-guarded in-process implementation of
// storage.Storage. It backs unit tests and local development; the session
// bound semantics are identical to the postgres implementation.
package memory

import (
	"sync"

	"github.com/creatorly/identity-service/internal/models"
)

type Storage struct {
	mu       sync.Mutex
	users    map[string]models.User
	byEmail  map[string]string
	sessions map[string]models.Session
	profiles map[string]models.Profile
	kycDocs  map[string]models.KYCDocument
}

func NewStorage() *Storage {
	return &Storage{
		users:    make(map[string]models.User),
		byEmail:  make(map[string]string),
		sessions: make(map[string]models.Session),
		profiles: make(map[string]models.Profile),
		kycDocs:  make(map[string]models.KYCDocument),
	}
}
