package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/posadmin-api/internal/domain/entity"
)

// DraftStore keeps sale drafts with a sliding idle TTL. Get returns nil, nil
// when the draft does not exist or has expired, and a successful Get or Save
// extends the TTL.
type DraftStore interface {
	Get(ctx context.Context, id uuid.UUID) (*entity.SaleDraft, error)
	Save(ctx context.Context, draft *entity.SaleDraft) error
	Delete(ctx context.Context, id uuid.UUID) error
}
