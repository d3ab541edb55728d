package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/you/phoneauthsvc/domain"
)

// PhoneIndexRepositoryImpl implements domain.PhoneIndexRepository using GORM.
// The unique phone column turns resolution into an indexed lookup instead of
// a full platform scan.
type PhoneIndexRepositoryImpl struct {
	db *gorm.DB
}

// DBPhoneIdentity represents the phone to identity mapping row
type DBPhoneIdentity struct {
	Phone      string    `gorm:"primaryKey;size:32"`
	IdentityID string    `gorm:"uniqueIndex;size:64;not null"`
	CreatedAt  time.Time ``
}

// TableName returns the table name for GORM
func (DBPhoneIdentity) TableName() string {
	return "phone_identities"
}

// NewPhoneIndexRepository creates a new phone index repository
func NewPhoneIndexRepository(db *gorm.DB) domain.PhoneIndexRepository {
	return &PhoneIndexRepositoryImpl{db: db}
}

// Find implements domain.PhoneIndexRepository
func (r *PhoneIndexRepositoryImpl) Find(ctx context.Context, phone string) (string, error) {
	var row DBPhoneIdentity
	err := r.db.WithContext(ctx).Where("phone = ?", phone).First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", domain.ErrIdentityNotFound
		}
		return "", err
	}
	return row.IdentityID, nil
}

// Save implements domain.PhoneIndexRepository. Concurrent resolvers may both
// attempt the write; last one wins and both map to the same identity.
func (r *PhoneIndexRepositoryImpl) Save(ctx context.Context, phone, identityID string) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "phone"}},
		DoUpdates: clause.AssignmentColumns([]string{"identity_id"}),
	}).Create(&DBPhoneIdentity{Phone: phone, IdentityID: identityID}).Error
}
