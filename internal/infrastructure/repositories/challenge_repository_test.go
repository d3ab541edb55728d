package repositories

import (
	"context"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/you/phoneauthsvc/domain"
)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	if err := db.AutoMigrate(&DBChallenge{}, &DBProfile{}, &DBPhoneIdentity{}); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	return db
}

func TestChallengeRepositoryImpl_FindActiveByPhone(t *testing.T) {
	base := time.Now().Truncate(time.Second)

	tests := []struct {
		name      string
		setupData func(db *gorm.DB)
		phone     string
		now       time.Time
		wantCount int
		wantFirst string // code hash of the expected newest challenge
	}{
		{
			name: "newest first when several are outstanding",
			setupData: func(db *gorm.DB) {
				db.Create(&DBChallenge{Phone: "+15550001111", CodeHash: "older", IssuedAt: base, ExpiresAt: base.Add(5 * time.Minute)})
				db.Create(&DBChallenge{Phone: "+15550001111", CodeHash: "newer", IssuedAt: base.Add(time.Minute), ExpiresAt: base.Add(6 * time.Minute)})
			},
			phone:     "+15550001111",
			now:       base.Add(2 * time.Minute),
			wantCount: 2,
			wantFirst: "newer",
		},
		{
			name: "expired rows are filtered out",
			setupData: func(db *gorm.DB) {
				db.Create(&DBChallenge{Phone: "+15550001111", CodeHash: "expired", IssuedAt: base.Add(-10 * time.Minute), ExpiresAt: base.Add(-5 * time.Minute)})
				db.Create(&DBChallenge{Phone: "+15550001111", CodeHash: "live", IssuedAt: base, ExpiresAt: base.Add(5 * time.Minute)})
			},
			phone:     "+15550001111",
			now:       base,
			wantCount: 1,
			wantFirst: "live",
		},
		{
			name: "other phones do not leak in",
			setupData: func(db *gorm.DB) {
				db.Create(&DBChallenge{Phone: "+15550002222", CodeHash: "foreign", IssuedAt: base, ExpiresAt: base.Add(5 * time.Minute)})
			},
			phone:     "+15550001111",
			now:       base,
			wantCount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := setupTestDB(t)
			tt.setupData(db)
			repo := NewChallengeRepository(db)

			got, err := repo.FindActiveByPhone(context.Background(), tt.phone, tt.now)
			if err != nil {
				t.Fatalf("FindActiveByPhone() error = %v", err)
			}
			if len(got) != tt.wantCount {
				t.Fatalf("FindActiveByPhone() returned %d challenges, want %d", len(got), tt.wantCount)
			}
			if tt.wantCount > 0 && got[0].CodeHash != tt.wantFirst {
				t.Errorf("FindActiveByPhone() newest = %q, want %q", got[0].CodeHash, tt.wantFirst)
			}
		})
	}
}

func TestChallengeRepositoryImpl_Create(t *testing.T) {
	db := setupTestDB(t)
	repo := NewChallengeRepository(db)

	ch := &domain.Challenge{
		Phone:     "+15550001111",
		CodeHash:  "hash",
		IssuedAt:  time.Now(),
		ExpiresAt: time.Now().Add(5 * time.Minute),
	}
	if err := repo.Create(context.Background(), ch); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if ch.ID == 0 {
		t.Error("Create() did not backfill the challenge id")
	}
}

func TestChallengeRepositoryImpl_Consume(t *testing.T) {
	db := setupTestDB(t)
	repo := NewChallengeRepository(db)
	ctx := context.Background()

	ch := &domain.Challenge{
		Phone:     "+15550001111",
		CodeHash:  "hash",
		IssuedAt:  time.Now(),
		ExpiresAt: time.Now().Add(5 * time.Minute),
	}
	if err := repo.Create(ctx, ch); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	consumed, err := repo.Consume(ctx, ch.ID)
	if err != nil {
		t.Fatalf("Consume() error = %v", err)
	}
	if !consumed {
		t.Fatal("first Consume() = false, want true")
	}

	// The row is gone, so the second consumer loses
	consumed, err = repo.Consume(ctx, ch.ID)
	if err != nil {
		t.Fatalf("second Consume() error = %v", err)
	}
	if consumed {
		t.Error("second Consume() = true, want false")
	}
}

func TestChallengeRepositoryImpl_ConsumeUnknownID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewChallengeRepository(db)

	consumed, err := repo.Consume(context.Background(), 9999)
	if err != nil {
		t.Fatalf("Consume() error = %v", err)
	}
	if consumed {
		t.Error("Consume() of unknown id = true, want false")
	}
}

func TestChallengeRepositoryImpl_Delete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewChallengeRepository(db)
	ctx := context.Background()

	ch := &domain.Challenge{
		Phone:     "+15550001111",
		CodeHash:  "hash",
		IssuedAt:  time.Now(),
		ExpiresAt: time.Now().Add(5 * time.Minute),
	}
	if err := repo.Create(ctx, ch); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := repo.Delete(ctx, ch.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	active, err := repo.FindActiveByPhone(ctx, ch.Phone, time.Now())
	if err != nil {
		t.Fatalf("FindActiveByPhone() error = %v", err)
	}
	if len(active) != 0 {
		t.Errorf("challenge survived Delete(), got %d rows", len(active))
	}
}

func TestChallengeRepositoryImpl_MultipleOutstandingPerPhone(t *testing.T) {
	db := setupTestDB(t)
	repo := NewChallengeRepository(db)
	ctx := context.Background()
	base := time.Now().Truncate(time.Second)

	for i := 0; i < 3; i++ {
		ch := &domain.Challenge{
			Phone:     "+15550001111",
			CodeHash:  "hash",
			IssuedAt:  base.Add(time.Duration(i) * time.Second),
			ExpiresAt: base.Add(5 * time.Minute),
		}
		if err := repo.Create(ctx, ch); err != nil {
			t.Fatalf("Create() #%d error = %v", i, err)
		}
	}

	active, err := repo.FindActiveByPhone(ctx, "+15550001111", base)
	if err != nil {
		t.Fatalf("FindActiveByPhone() error = %v", err)
	}
	if len(active) != 3 {
		t.Errorf("got %d outstanding challenges, want 3", len(active))
	}
}
