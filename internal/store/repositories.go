package store

import "github.com/MKhiriev/go-otp-keeper/internal/logger"

// Repositories aggregates every repository the services need.
type Repositories struct {
	UserRepository    UserRepository
	AccountRepository AccountRepository
}

// NewRepositories wires all repositories to one database handle.
func NewRepositories(db *DB, logger *logger.Logger) *Repositories {
	return &Repositories{
		UserRepository:    NewUserRepository(db, logger),
		AccountRepository: NewAccountRepository(db, logger),
	}
}
