package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/you/phoneauthsvc/domain"
)

// ChallengeRepositoryImpl implements domain.ChallengeRepository using GORM
type ChallengeRepositoryImpl struct {
	db *gorm.DB
}

// DBChallenge represents the database model for Challenge (with GORM tags)
type DBChallenge struct {
	ID        uint      `gorm:"primaryKey"`
	Phone     string    `gorm:"index;size:32;not null"`
	CodeHash  string    `gorm:"size:128;not null"`
	IssuedAt  time.Time `gorm:"index;not null"`
	ExpiresAt time.Time `gorm:"index;not null"`
}

// TableName returns the table name for GORM
func (DBChallenge) TableName() string {
	return "otp_challenges"
}

// NewChallengeRepository creates a new challenge repository
func NewChallengeRepository(db *gorm.DB) domain.ChallengeRepository {
	return &ChallengeRepositoryImpl{db: db}
}

// Create implements domain.ChallengeRepository
func (r *ChallengeRepositoryImpl) Create(ctx context.Context, ch *domain.Challenge) error {
	dbCh := r.domainToDB(ch)
	if err := r.db.WithContext(ctx).Create(dbCh).Error; err != nil {
		return err
	}
	ch.ID = dbCh.ID
	return nil
}

// FindActiveByPhone implements domain.ChallengeRepository. Expired rows are
// never matched; they stay behind until re-issue traffic overwrites them or
// a later cleanup removes them.
func (r *ChallengeRepositoryImpl) FindActiveByPhone(ctx context.Context, phone string, now time.Time) ([]*domain.Challenge, error) {
	var rows []DBChallenge
	err := r.db.WithContext(ctx).
		Where("phone = ? AND expires_at > ?", phone, now).
		Order("issued_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	challenges := make([]*domain.Challenge, 0, len(rows))
	for i := range rows {
		challenges = append(challenges, r.dbToDomain(&rows[i]))
	}
	return challenges, nil
}

// Consume implements domain.ChallengeRepository. The delete is keyed on the
// primary id, so when two verifiers race for the same challenge exactly one
// observes RowsAffected == 1.
func (r *ChallengeRepositoryImpl) Consume(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&DBChallenge{}, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// Delete implements domain.ChallengeRepository
func (r *ChallengeRepositoryImpl) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&DBChallenge{}, id).Error
}

func (r *ChallengeRepositoryImpl) domainToDB(ch *domain.Challenge) *DBChallenge {
	return &DBChallenge{
		ID:        ch.ID,
		Phone:     ch.Phone,
		CodeHash:  ch.CodeHash,
		IssuedAt:  ch.IssuedAt,
		ExpiresAt: ch.ExpiresAt,
	}
}

func (r *ChallengeRepositoryImpl) dbToDomain(dbCh *DBChallenge) *domain.Challenge {
	return &domain.Challenge{
		ID:        dbCh.ID,
		Phone:     dbCh.Phone,
		CodeHash:  dbCh.CodeHash,
		IssuedAt:  dbCh.IssuedAt,
		ExpiresAt: dbCh.ExpiresAt,
	}
}
