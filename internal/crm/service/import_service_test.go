package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/alims/leadcrm/internal/config"
	"github.com/alims/leadcrm/internal/crm/entity"
	"github.com/alims/leadcrm/internal/crm/repository"
	"github.com/alims/leadcrm/internal/crm/testutil"
)

func newImportEnv(t *testing.T) (*gorm.DB, *repository.Repositories, *ImportService) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	catalog := NewCatalogService(repos.Field)
	mapping := NewMappingService(repos.Mapping, catalog)
	imports := NewImportService(repos.Customer, repos.FileImport, mapping, catalog, nil,
		config.ImportConfig{MaxFileBytes: 10 << 20, MaxRows: 1000}, zap.NewNop())
	return db, repos, imports
}

func TestImportRunLegacyMapping(t *testing.T) {
	db, repos, imports := newImportEnv(t)
	ctx := context.Background()
	owner := testutil.SeedUser(t, db, "mgr-1", "Manager", entity.RoleManager)

	data := []byte("name,phone_number,email\nAlice,111222333,alice@test.com\nBob,444555666,bob@test.com\n")

	result, err := imports.Run(ctx, owner.ID, "leads.csv", data, nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.Total != 2 || result.Successful != 2 || result.Failed != 0 {
		t.Fatalf("unexpected counters: %+v", result)
	}

	customer, err := repos.Customer.FindByPhone(ctx, "111222333")
	if err != nil {
		t.Fatalf("imported customer not found: %v", err)
	}
	if customer.Name != "Alice" || customer.Email != "alice@test.com" {
		t.Errorf("unexpected customer: %+v", customer)
	}

	record, err := repos.FileImport.FindByID(ctx, result.ImportID)
	if err != nil {
		t.Fatalf("import record not found: %v", err)
	}
	if record.TotalRecords != 2 || record.SuccessfulRecords != 2 {
		t.Errorf("counters not finalized: %+v", record)
	}
}

func TestImportRunRowFailuresAreCollected(t *testing.T) {
	db, _, imports := newImportEnv(t)
	ctx := context.Background()
	owner := testutil.SeedUser(t, db, "mgr-1", "Manager", entity.RoleManager)

	// second row is missing a name, third is missing the phone
	data := []byte("name,phone_number\nAlice,111\n,222\nCarol,\n")

	result, err := imports.Run(ctx, owner.ID, "leads.csv", data, nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.Total != 3 || result.Successful != 1 || result.Failed != 2 {
		t.Fatalf("unexpected counters: %+v", result)
	}
	if len(result.RowErrors) != 2 {
		t.Fatalf("expected 2 row errors, got %d", len(result.RowErrors))
	}
	if result.RowErrors[0].Row != 3 {
		t.Errorf("expected first failure on spreadsheet row 3, got %d", result.RowErrors[0].Row)
	}
}

func TestImportRunMissingRequiredColumn(t *testing.T) {
	db, repos, imports := newImportEnv(t)
	ctx := context.Background()
	owner := testutil.SeedUser(t, db, "mgr-1", "Manager", entity.RoleManager)

	data := []byte("name,email\nAlice,alice@test.com\n")

	_, err := imports.Run(ctx, owner.ID, "leads.csv", data, nil)
	if !errors.Is(err, ErrMissingRequiredColumn) {
		t.Fatalf("expected ErrMissingRequiredColumn, got %v", err)
	}

	// fail-fast means no audit record was left behind
	records, total, err := repos.FileImport.FindAll(ctx, owner.ID, 0, 10)
	if err != nil {
		t.Fatalf("FindAll failed: %v", err)
	}
	if total != 0 || len(records) != 0 {
		t.Errorf("expected no import records, got %d", total)
	}
}

func TestImportRunColumnMatchIsCaseSensitive(t *testing.T) {
	db, repos, imports := newImportEnv(t)
	ctx := context.Background()
	owner := testutil.SeedUser(t, db, "mgr-1", "Manager", entity.RoleManager)

	catalog := NewCatalogService(repos.Field)
	mapping := NewMappingService(repos.Mapping, catalog)
	created, err := mapping.Create(ctx, owner.ID, &CreateMappingRequest{
		Name: "strict layout",
		Fields: []MappingFieldRequest{
			{CSVColumn: "Name", FieldName: "name", IsRequired: true},
			{CSVColumn: "Phone", FieldName: "phone_number", IsRequired: true},
		},
	})
	if err != nil {
		t.Fatalf("mapping create failed: %v", err)
	}

	// header says "phone", the mapping wants "Phone"
	data := []byte("Name,phone\nAlice,111222333\n")

	if _, err := imports.Run(ctx, owner.ID, "leads.csv", data, &created.ID); !errors.Is(err, ErrMissingRequiredColumn) {
		t.Fatalf("expected ErrMissingRequiredColumn for a case mismatch, got %v", err)
	}
}

func TestImportRunHeaderOnlyFile(t *testing.T) {
	db, repos, imports := newImportEnv(t)
	ctx := context.Background()
	owner := testutil.SeedUser(t, db, "mgr-1", "Manager", entity.RoleManager)

	data := []byte("name,phone_number\n")

	result, err := imports.Run(ctx, owner.ID, "leads.csv", data, nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.Total != 0 || result.Successful != 0 || result.Failed != 0 {
		t.Fatalf("expected zero counters, got %+v", result)
	}

	record, err := repos.FileImport.FindByID(ctx, result.ImportID)
	if err != nil {
		t.Fatalf("import record not found: %v", err)
	}
	if record.TotalRecords != 0 || record.SuccessfulRecords != 0 || record.FailedRecords != 0 {
		t.Errorf("counters not finalized at zero: %+v", record)
	}

	var count int64
	db.Model(&entity.Customer{}).Count(&count)
	if count != 0 {
		t.Errorf("expected no customers, got %d", count)
	}
}

func TestImportRunUpsertMergesByPhone(t *testing.T) {
	db, repos, imports := newImportEnv(t)
	ctx := context.Background()
	owner := testutil.SeedUser(t, db, "mgr-1", "Manager", entity.RoleManager)

	first := []byte("name,phone_number,address\nAlice,111222333,12 Hill Road\n")
	if _, err := imports.Run(ctx, owner.ID, "first.csv", first, nil); err != nil {
		t.Fatalf("first run failed: %v", err)
	}

	// same phone again with an email and no address
	second := []byte("name,phone_number,email\nAlice Smith,111222333,alice@test.com\n")
	result, err := imports.Run(ctx, owner.ID, "second.csv", second, nil)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if result.Successful != 1 {
		t.Fatalf("unexpected counters: %+v", result)
	}

	var count int64
	db.Model(&entity.Customer{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected 1 customer after upsert, got %d", count)
	}

	customer, err := repos.Customer.FindByPhone(ctx, "111222333")
	if err != nil {
		t.Fatalf("customer not found: %v", err)
	}
	if customer.Name != "Alice Smith" {
		t.Errorf("name not updated: %q", customer.Name)
	}
	if customer.Email != "alice@test.com" {
		t.Errorf("email not merged: %q", customer.Email)
	}
	if customer.Address != "12 Hill Road" {
		t.Errorf("empty cell erased the address: %q", customer.Address)
	}
}

func TestImportRunCustomFieldMapping(t *testing.T) {
	db, repos, imports := newImportEnv(t)
	ctx := context.Background()
	owner := testutil.SeedUser(t, db, "mgr-1", "Manager", entity.RoleManager)

	catalog := NewCatalogService(repos.Field)
	if _, err := catalog.CreateField(ctx, owner.ID, &CreateFieldRequest{
		Name: "budget", Label: "Budget", FieldType: entity.FieldTypeNumber,
	}); err != nil {
		t.Fatalf("CreateField failed: %v", err)
	}

	mapping := NewMappingService(repos.Mapping, catalog)
	created, err := mapping.Create(ctx, owner.ID, &CreateMappingRequest{
		Name: "budget layout",
		Fields: []MappingFieldRequest{
			{CSVColumn: "Full Name", FieldType: entity.MappingFieldBase, FieldName: "name", IsRequired: true},
			{CSVColumn: "Mobile", FieldType: entity.MappingFieldBase, FieldName: "phone_number", IsRequired: true},
			{CSVColumn: "Budget", FieldType: entity.MappingFieldCustom, FieldName: "budget"},
		},
	})
	if err != nil {
		t.Fatalf("mapping create failed: %v", err)
	}

	data := []byte("Full Name,Mobile,Budget\nAlice,111222333,5000\nBob,444555666,not-a-number\n")

	result, err := imports.Run(ctx, owner.ID, "leads.csv", data, &created.ID)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.Successful != 1 || result.Failed != 1 {
		t.Fatalf("unexpected counters: %+v", result)
	}

	customer, err := repos.Customer.FindByPhone(ctx, "111222333")
	if err != nil {
		t.Fatalf("customer not found: %v", err)
	}
	if customer.CustomData["budget"].(float64) != 5000 {
		t.Errorf("custom data not stored: %v", customer.CustomData)
	}
}
