package repository

import (
	"context"

	"gorm.io/gorm"

	"incentix/rewardhub/internal/model"
)

type pgParticipantRepository struct {
	db *gorm.DB
}

func NewPGParticipantRepository(db *gorm.DB) ParticipantRepository {
	return &pgParticipantRepository{db: db}
}

func (r *pgParticipantRepository) Create(ctx context.Context, p *model.Participant) error {
	return dbFrom(ctx, r.db).Create(p).Error
}

func (r *pgParticipantRepository) GetByID(ctx context.Context, id string) (*model.Participant, error) {
	var p model.Participant
	if err := dbFrom(ctx, r.db).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *pgParticipantRepository) Update(ctx context.Context, p *model.Participant) error {
	return dbFrom(ctx, r.db).Save(p).Error
}
