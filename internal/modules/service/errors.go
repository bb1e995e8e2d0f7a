package service

import (
	"errors"

	"github.com/emotionlab/server/internal/infra/httpclient"
	"github.com/emotionlab/server/internal/modules/repo"
)

// Service layer errors for better error handling
var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrRoundNotFound    = errors.New("round not found")
	ErrChildNotFound    = errors.New("child not found")
	ErrSessionCompleted = errors.New("session already completed")

	// Input errors surfaced as validation_error
	ErrRoundOutOfRange = errors.New("round number outside session range")
	ErrRoundMismatch   = errors.New("round does not belong to session")
)

// translate maps lower-layer sentinels onto service sentinels, keeping the original
// error in the chain.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repo.ErrSessionNotFound):
		return errors.Join(ErrSessionNotFound, err)
	case errors.Is(err, repo.ErrRoundNotFound):
		return errors.Join(ErrRoundNotFound, err)
	case errors.Is(err, repo.ErrSessionClosed):
		return errors.Join(ErrSessionCompleted, err)
	case errors.Is(err, httpclient.ErrChildNotFound):
		return errors.Join(ErrChildNotFound, err)
	default:
		return err
	}
}
