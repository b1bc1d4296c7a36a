package repository

import (
	"context"

	"incentix/rewardhub/internal/model"
)

type ParticipantRepository interface {
	Create(ctx context.Context, p *model.Participant) error
	GetByID(ctx context.Context, id string) (*model.Participant, error)
	Update(ctx context.Context, p *model.Participant) error
}
