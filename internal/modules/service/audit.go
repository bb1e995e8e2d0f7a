package service

import (
	"context"
	"sync"
	"time"

	"github.com/emotionlab/server/internal/modules/model"
	"github.com/emotionlab/server/internal/modules/repo"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

const auditWriteTimeout = 10 * time.Second

// AuditEntry is one generation stage run, fallback included.
type AuditEntry struct {
	Kind        model.GenerationKind
	SessionID   *uuid.UUID
	RoundNumber *int
	Metadata    model.StageMetadata
	Input       any
	Output      any
}

type auditPayload struct {
	Kind        model.GenerationKind `json:"kind"`
	SessionID   *uuid.UUID           `json:"session_id,omitempty"`
	RoundNumber *int                 `json:"round_number,omitempty"`
	Metadata    model.StageMetadata  `json:"metadata"`
	Input       any                  `json:"input"`
	Output      any                  `json:"output"`
}

type AuditRecorder interface {
	// Record writes e in the background. It never blocks on storage and never fails.
	Record(ctx context.Context, e AuditEntry)
	// Wait blocks until all in-flight writes have finished.
	Wait()
}

type auditRecorder struct {
	logs    repo.GenerationLogRepo
	archive Archiver
	log     *zap.Logger
	wg      sync.WaitGroup
}

// NewAuditRecorder builds a recorder; archive may be nil when S3 is disabled.
func NewAuditRecorder(logs repo.GenerationLogRepo, archive Archiver, log *zap.Logger) AuditRecorder {
	return &auditRecorder{logs: logs, archive: archive, log: log}
}

func (a *auditRecorder) Record(ctx context.Context, e AuditEntry) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditWriteTimeout)
		defer cancel()
		a.write(wctx, e)
	}()
}

func (a *auditRecorder) write(ctx context.Context, e AuditEntry) {
	row := &model.GenerationLog{
		Kind:         e.Kind,
		SessionID:    e.SessionID,
		RoundNumber:  e.RoundNumber,
		Model:        e.Metadata.Model,
		ElapsedMS:    e.Metadata.ElapsedMS,
		FallbackUsed: e.Metadata.FallbackUsed,
		SafetyFlags:  datatypes.JSONSlice[string](e.Metadata.SafetyFlags),
		Reason:       e.Metadata.Reason,
	}
	if row.SafetyFlags == nil {
		row.SafetyFlags = datatypes.JSONSlice[string]{}
	}

	if a.archive != nil {
		meta, err := a.archive.UploadJSON(ctx, string(e.Kind), auditPayload{
			Kind:        e.Kind,
			SessionID:   e.SessionID,
			RoundNumber: e.RoundNumber,
			Metadata:    e.Metadata,
			Input:       e.Input,
			Output:      e.Output,
		})
		if err != nil {
			a.log.Warn("archive generation payload", zap.String("kind", string(e.Kind)), zap.Error(err))
		} else {
			row.PayloadKey = meta.Key
		}
	}

	if err := a.logs.Create(ctx, row); err != nil {
		a.log.Warn("write generation log", zap.String("kind", string(e.Kind)), zap.Error(err))
	}
}

func (a *auditRecorder) Wait() { a.wg.Wait() }
