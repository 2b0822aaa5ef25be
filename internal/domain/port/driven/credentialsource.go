package driven

import "github.com/ericfisherdev/catsfarm/internal/domain/model"

// CredentialSource loads the ordered credential list once at startup.
type CredentialSource interface {
	Load() ([]model.Credential, error)
}
