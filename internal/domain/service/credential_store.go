// Package service defines the domain service interfaces implemented by infra.
package service

import "campus/internal/domain/entity"

// CredentialStore owns the current token pair. It is a process-wide
// singleton, constructed once and injected; the auth gateway's refresh path
// and the sign-in/sign-out usecase are its only writers.
type CredentialStore interface {
	// Get returns the current pair and whether one is present.
	Get() (entity.TokenPair, bool)
	// Set replaces the pair wholesale and persists it.
	Set(pair entity.TokenPair) error
	// Clear removes the pair from memory and durable storage.
	Clear() error
}
