package catalog

import "github.com/playtaste/playtaste/domain/repository"

// WithMaxAge filters games to those with required_age at or below the
// given ceiling. Interpreted by the game store.
func WithMaxAge(age int) repository.Option {
	return repository.WithParam("max_age", age)
}
