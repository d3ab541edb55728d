package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/you/phoneauthsvc/domain"
)

// ProfileRepositoryImpl implements domain.ProfileRepository using GORM
type ProfileRepositoryImpl struct {
	db *gorm.DB
}

// DBProfile represents the database model for Profile (with GORM tags)
type DBProfile struct {
	IdentityID   string    `gorm:"primaryKey;size:64"`
	Phone        string    `gorm:"index;size:32"`
	Name         string    `gorm:"size:255"`
	Age          int       ``
	Income       float64   ``
	Expenses     float64   ``
	Savings      float64   ``
	RiskScore    int       ``
	RiskCategory string    `gorm:"size:32"`
	Role         string    `gorm:"index;size:64"`
	CreatedAt    time.Time `gorm:"index"`
	UpdatedAt    time.Time `gorm:"index"`
}

// TableName returns the table name for GORM
func (DBProfile) TableName() string {
	return "profiles"
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *gorm.DB) domain.ProfileRepository {
	return &ProfileRepositoryImpl{db: db}
}

// Upsert implements domain.ProfileRepository. Keyed on identity id, so a
// retried registration updates the existing row instead of duplicating it.
func (r *ProfileRepositoryImpl) Upsert(ctx context.Context, p *domain.Profile) error {
	dbProfile := r.domainToDB(p)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "identity_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"phone", "name", "age", "income", "expenses", "savings",
			"risk_score", "risk_category", "role", "updated_at",
		}),
	}).Create(dbProfile).Error
}

// FindByIdentity implements domain.ProfileRepository
func (r *ProfileRepositoryImpl) FindByIdentity(ctx context.Context, identityID string) (*domain.Profile, error) {
	var dbProfile DBProfile
	err := r.db.WithContext(ctx).Where("identity_id = ?", identityID).First(&dbProfile).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrProfileNotFound
		}
		return nil, err
	}
	return r.dbToDomain(&dbProfile), nil
}

func (r *ProfileRepositoryImpl) domainToDB(p *domain.Profile) *DBProfile {
	return &DBProfile{
		IdentityID:   p.IdentityID,
		Phone:        p.Phone,
		Name:         p.Name,
		Age:          p.Age,
		Income:       p.Income,
		Expenses:     p.Expenses,
		Savings:      p.Savings,
		RiskScore:    p.RiskScore,
		RiskCategory: p.RiskCategory,
		Role:         p.Role,
	}
}

func (r *ProfileRepositoryImpl) dbToDomain(dbProfile *DBProfile) *domain.Profile {
	return &domain.Profile{
		IdentityID:   dbProfile.IdentityID,
		Phone:        dbProfile.Phone,
		Name:         dbProfile.Name,
		Age:          dbProfile.Age,
		Income:       dbProfile.Income,
		Expenses:     dbProfile.Expenses,
		Savings:      dbProfile.Savings,
		RiskScore:    dbProfile.RiskScore,
		RiskCategory: dbProfile.RiskCategory,
		Role:         dbProfile.Role,
		CreatedAt:    dbProfile.CreatedAt,
		UpdatedAt:    dbProfile.UpdatedAt,
	}
}
