package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/you/phoneauthsvc/domain"
)

func TestPhoneIndexRepositoryImpl_SaveAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPhoneIndexRepository(db)
	ctx := context.Background()

	if err := repo.Save(ctx, "+15550001111", "id-0001"); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := repo.Find(ctx, "+15550001111")
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if got != "id-0001" {
		t.Errorf("Find() = %q, want %q", got, "id-0001")
	}
}

func TestPhoneIndexRepositoryImpl_FindUnknownPhone(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPhoneIndexRepository(db)

	_, err := repo.Find(context.Background(), "+15559998888")
	if !errors.Is(err, domain.ErrIdentityNotFound) {
		t.Errorf("Find() error = %v, want ErrIdentityNotFound", err)
	}
}

func TestPhoneIndexRepositoryImpl_SaveIsUpsert(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPhoneIndexRepository(db)
	ctx := context.Background()

	if err := repo.Save(ctx, "+15550001111", "id-0001"); err != nil {
		t.Fatalf("first Save() error = %v", err)
	}
	// Racing resolvers both write; the mapping stays single-rowed
	if err := repo.Save(ctx, "+15550001111", "id-0002"); err != nil {
		t.Fatalf("second Save() error = %v", err)
	}

	var count int64
	if err := db.Model(&DBPhoneIdentity{}).Count(&count).Error; err != nil {
		t.Fatalf("count error = %v", err)
	}
	if count != 1 {
		t.Fatalf("got %d index rows, want 1", count)
	}

	got, err := repo.Find(ctx, "+15550001111")
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if got != "id-0002" {
		t.Errorf("Find() = %q, want the last written identity", got)
	}
}
