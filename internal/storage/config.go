package storage

import (
	"errors"
	"fmt"
)

// Config holds storage configuration
type Config struct {
	Type string // only "local" is supported
	Dir  string // root directory for local storage
}

var ErrNotExist = errors.New("document does not exist")

// New builds the DocumentStore selected by cfg.
func New(cfg Config) (DocumentStore, error) {
	switch cfg.Type {
	case "", "local":
		return NewLocalStorage(cfg.Dir)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", cfg.Type)
	}
}

// SignedContractKey is where the signed copy of a contract document lives.
func SignedContractKey(contractID int32) string {
	return fmt.Sprintf("contratos/%d/assinado.html", contractID)
}
