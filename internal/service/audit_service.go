package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"dashboard-api/internal/model"
)

// AuditStore persists security-relevant events.
type AuditStore interface {
	Insert(ctx context.Context, entry model.AuditEntry) error
	List(ctx context.Context, limit int, offset int) ([]model.AuditEntry, error)
	Count(ctx context.Context) (int, error)
}

type AuditService struct {
	store AuditStore
}

func NewAuditService(store AuditStore) *AuditService {
	return &AuditService{store: store}
}

func (s *AuditService) Record(ctx context.Context, actorID string, action string, detail string) error {
	action = strings.TrimSpace(action)
	if action == "" {
		return fmt.Errorf("audit action is required: %w", model.ErrInvalidInput)
	}

	entry := model.AuditEntry{
		ID:        uuid.NewString(),
		ActorID:   actorID,
		Action:    action,
		Detail:    detail,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.Insert(ctx, entry); err != nil {
		return fmt.Errorf("record audit entry: %w", err)
	}
	return nil
}

func (s *AuditService) List(ctx context.Context, limit int, offset int) ([]model.AuditEntry, int, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	entries, err := s.store.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.store.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}
