package service

import (
	"context"
	"testing"

	"github.com/alims/leadcrm/internal/crm/entity"
	"github.com/alims/leadcrm/internal/crm/repository"
	"github.com/alims/leadcrm/internal/crm/testutil"
)

func newMappingEnv(t *testing.T) (*repository.Repositories, *MappingService, string) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	owner := testutil.SeedUser(t, db, "mgr-1", "Manager", entity.RoleManager)
	catalog := NewCatalogService(repos.Field)
	return repos, NewMappingService(repos.Mapping, catalog), owner.ID
}

func baseFieldsRequest() []MappingFieldRequest {
	return []MappingFieldRequest{
		{CSVColumn: "Full Name", FieldName: "name", IsRequired: true},
		{CSVColumn: "Mobile", FieldName: "phone_number", IsRequired: true},
	}
}

func TestMappingCreateValidatesTargets(t *testing.T) {
	_, mappings, owner := newMappingEnv(t)
	ctx := context.Background()

	if _, err := mappings.Create(ctx, owner, &CreateMappingRequest{
		Name: "bad base",
		Fields: []MappingFieldRequest{
			{CSVColumn: "X", FieldName: "no_such_field"},
		},
	}); err == nil {
		t.Error("expected error for unknown base field")
	}

	if _, err := mappings.Create(ctx, owner, &CreateMappingRequest{
		Name: "bad custom",
		Fields: []MappingFieldRequest{
			{CSVColumn: "X", FieldType: entity.MappingFieldCustom, FieldName: "ghost"},
		},
	}); err == nil {
		t.Error("expected error for unknown custom field")
	}

	if _, err := mappings.Create(ctx, owner, &CreateMappingRequest{
		Name: "dup column",
		Fields: []MappingFieldRequest{
			{CSVColumn: "Name", FieldName: "name"},
			{CSVColumn: "Name", FieldName: "notes"},
		},
	}); err == nil {
		t.Error("expected error for duplicate column")
	}

	// columns that differ only in case are distinct bindings
	if _, err := mappings.Create(ctx, owner, &CreateMappingRequest{
		Name: "case distinct",
		Fields: []MappingFieldRequest{
			{CSVColumn: "Name", FieldName: "name"},
			{CSVColumn: "name", FieldName: "notes"},
		},
	}); err != nil {
		t.Errorf("case-distinct columns should be accepted: %v", err)
	}
}

func TestMappingDefaultIsExclusive(t *testing.T) {
	_, mappings, owner := newMappingEnv(t)
	ctx := context.Background()

	first, err := mappings.Create(ctx, owner, &CreateMappingRequest{
		Name: "first", IsDefault: true, Fields: baseFieldsRequest(),
	})
	if err != nil {
		t.Fatalf("create first failed: %v", err)
	}

	second, err := mappings.Create(ctx, owner, &CreateMappingRequest{
		Name: "second", IsDefault: true, Fields: baseFieldsRequest(),
	})
	if err != nil {
		t.Fatalf("create second failed: %v", err)
	}

	reloaded, err := mappings.Get(ctx, first.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if reloaded.IsDefault {
		t.Error("first mapping should have lost its default flag")
	}

	if err := mappings.SetDefault(ctx, first.ID, owner); err != nil {
		t.Fatalf("SetDefault failed: %v", err)
	}
	reloaded2, _ := mappings.Get(ctx, second.ID)
	if reloaded2.IsDefault {
		t.Error("second mapping should have lost its default flag")
	}
}

func TestMappingResolveChain(t *testing.T) {
	_, mappings, owner := newMappingEnv(t)
	ctx := context.Background()

	// nothing configured: legacy builtin layout
	fields, id, err := mappings.Resolve(ctx, owner, nil)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if id != nil {
		t.Error("legacy layout should have a nil mapping id")
	}
	if len(fields) != 5 {
		t.Fatalf("expected 5 legacy fields, got %d", len(fields))
	}
	if fields[0].FieldName != "name" || !fields[0].IsRequired {
		t.Errorf("unexpected legacy field: %+v", fields[0])
	}

	// owner default takes over
	created, err := mappings.Create(ctx, owner, &CreateMappingRequest{
		Name: "mine", IsDefault: true, Fields: baseFieldsRequest(),
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	fields, id, err = mappings.Resolve(ctx, owner, nil)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if id == nil || *id != created.ID {
		t.Errorf("expected default mapping %s, got %v", created.ID, id)
	}
	if len(fields) != 2 {
		t.Errorf("expected 2 fields, got %d", len(fields))
	}

	// explicit id wins over the default
	other, err := mappings.Create(ctx, owner, &CreateMappingRequest{
		Name: "other", Fields: baseFieldsRequest(),
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	_, id, err = mappings.Resolve(ctx, owner, &other.ID)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if id == nil || *id != other.ID {
		t.Errorf("expected explicit mapping %s, got %v", other.ID, id)
	}

	// a mapping owned by someone else cannot be picked explicitly
	if _, _, err := mappings.Resolve(ctx, "someone-else", &other.ID); err != ErrPermissionDenied {
		t.Errorf("expected ErrPermissionDenied for a non-owned mapping, got %v", err)
	}
}

func TestMappingUpdateReplacesFields(t *testing.T) {
	_, mappings, owner := newMappingEnv(t)
	ctx := context.Background()

	created, err := mappings.Create(ctx, owner, &CreateMappingRequest{
		Name: "layout", Fields: baseFieldsRequest(),
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	newName := "renamed"
	updated, err := mappings.Update(ctx, created.ID, owner, &UpdateMappingRequest{
		Name: &newName,
		Fields: []MappingFieldRequest{
			{CSVColumn: "Name", FieldName: "name", IsRequired: true},
			{CSVColumn: "Phone", FieldName: "phone_number", IsRequired: true},
			{CSVColumn: "City", FieldName: "area"},
		},
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Name != "renamed" {
		t.Errorf("name not updated: %q", updated.Name)
	}
	if len(updated.Fields) != 3 {
		t.Fatalf("expected field set replaced with 3, got %d", len(updated.Fields))
	}

	// a different user cannot edit it
	if _, err := mappings.Update(ctx, created.ID, "someone-else", &UpdateMappingRequest{Name: &newName}); err != ErrPermissionDenied {
		t.Errorf("expected ErrPermissionDenied, got %v", err)
	}
}
