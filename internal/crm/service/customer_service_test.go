package service

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"github.com/alims/leadcrm/internal/crm/entity"
	"github.com/alims/leadcrm/internal/crm/repository"
	"github.com/alims/leadcrm/internal/crm/testutil"
)

func newCustomerEnv(t *testing.T) (*gorm.DB, *CustomerService) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	return db, NewCustomerService(repos.Customer, repos.User)
}

func TestChangeStatusRecordsHistory(t *testing.T) {
	db, customers := newCustomerEnv(t)
	ctx := context.Background()
	manager := testutil.SeedUser(t, db, "mgr-1", "Manager", entity.RoleManager)
	customer := testutil.SeedCustomer(t, db, "cust-1", "Alice", "111", nil)
	actor := Actor{ID: manager.ID, Role: entity.RoleManager}

	first, err := customers.ChangeStatus(ctx, actor, customer.ID, entity.StatusValid, "verified")
	if err != nil {
		t.Fatalf("ChangeStatus failed: %v", err)
	}
	if first.PreviousStatus != nil {
		t.Errorf("first transition should have nil previous status, got %v", *first.PreviousStatus)
	}
	if first.NewStatus != entity.StatusValid || first.Notes != "verified" {
		t.Errorf("unexpected history entry: %+v", first)
	}

	second, err := customers.ChangeStatus(ctx, actor, customer.ID, entity.StatusInterested, "")
	if err != nil {
		t.Fatalf("second ChangeStatus failed: %v", err)
	}
	if second.PreviousStatus == nil || *second.PreviousStatus != entity.StatusValid {
		t.Errorf("previous status not recorded: %+v", second)
	}

	entries, err := customers.History(ctx, actor, customer.ID)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(entries))
	}
	// newest first
	if entries[0].NewStatus != entity.StatusInterested {
		t.Errorf("history not ordered newest first: %+v", entries[0])
	}
}

func TestChangeStatusValidation(t *testing.T) {
	db, customers := newCustomerEnv(t)
	ctx := context.Background()
	manager := testutil.SeedUser(t, db, "mgr-1", "Manager", entity.RoleManager)
	customer := testutil.SeedCustomer(t, db, "cust-1", "Alice", "111", nil)
	actor := Actor{ID: manager.ID, Role: entity.RoleManager}

	if _, err := customers.ChangeStatus(ctx, actor, customer.ID, "LOST", ""); err != ErrInvalidStatus {
		t.Errorf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestCounsellorScope(t *testing.T) {
	db, customers := newCustomerEnv(t)
	ctx := context.Background()
	counsellor := testutil.SeedUser(t, db, "cns-1", "Counsellor", entity.RoleCounsellor)
	other := testutil.SeedUser(t, db, "cns-2", "Other", entity.RoleCounsellor)

	mine := testutil.SeedCustomer(t, db, "cust-1", "Alice", "111", &counsellor.ID)
	theirs := testutil.SeedCustomer(t, db, "cust-2", "Bob", "222", &other.ID)
	testutil.SeedCustomer(t, db, "cust-3", "Carol", "333", nil)

	actor := Actor{ID: counsellor.ID, Role: entity.RoleCounsellor}

	// listing is forced to own assignments even with a filter
	list, total, err := customers.List(ctx, actor, repository.CustomerFilter{AssignedTo: other.ID}, 0, 10)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 1 || list[0].ID != mine.ID {
		t.Fatalf("counsellor listing not scoped: total=%d", total)
	}

	if _, err := customers.Get(ctx, actor, theirs.ID); err != ErrPermissionDenied {
		t.Errorf("expected ErrPermissionDenied on other's customer, got %v", err)
	}
	if _, err := customers.ChangeStatus(ctx, actor, theirs.ID, entity.StatusValid, ""); err != ErrPermissionDenied {
		t.Errorf("expected ErrPermissionDenied on status change, got %v", err)
	}
	if _, err := customers.ChangeStatus(ctx, actor, mine.ID, entity.StatusValid, ""); err != nil {
		t.Errorf("counsellor should move own customer: %v", err)
	}
}

func TestBulkAssign(t *testing.T) {
	db, customers := newCustomerEnv(t)
	ctx := context.Background()
	manager := testutil.SeedUser(t, db, "mgr-1", "Manager", entity.RoleManager)
	counsellor := testutil.SeedUser(t, db, "cns-1", "Counsellor", entity.RoleCounsellor)
	c1 := testutil.SeedCustomer(t, db, "cust-1", "Alice", "111", nil)
	c2 := testutil.SeedCustomer(t, db, "cust-2", "Bob", "222", nil)
	actor := Actor{ID: manager.ID, Role: entity.RoleManager}

	// unknown ids are skipped, not fatal
	assigned, err := customers.BulkAssign(ctx, actor, []string{c1.ID, c2.ID, "missing"}, counsellor.ID)
	if err != nil {
		t.Fatalf("BulkAssign failed: %v", err)
	}
	if assigned != 2 {
		t.Errorf("expected 2 assigned, got %d", assigned)
	}

	// counsellors cannot bulk assign
	if _, err := customers.BulkAssign(ctx, Actor{ID: counsellor.ID, Role: entity.RoleCounsellor}, []string{c1.ID}, counsellor.ID); err != ErrPermissionDenied {
		t.Errorf("expected ErrPermissionDenied, got %v", err)
	}

	// assignee must be an active counsellor
	if _, err := customers.BulkAssign(ctx, actor, []string{c1.ID}, manager.ID); err != ErrNotCounsellor {
		t.Errorf("expected ErrNotCounsellor, got %v", err)
	}
}

func TestRandomAssign(t *testing.T) {
	db, customers := newCustomerEnv(t)
	ctx := context.Background()
	manager := testutil.SeedUser(t, db, "mgr-1", "Manager", entity.RoleManager)
	counsellor := testutil.SeedUser(t, db, "cns-1", "Counsellor", entity.RoleCounsellor)
	testutil.SeedCustomer(t, db, "cust-1", "Alice", "111", nil)
	testutil.SeedCustomer(t, db, "cust-2", "Bob", "222", nil)
	testutil.SeedCustomer(t, db, "cust-3", "Carol", "333", nil)
	actor := Actor{ID: manager.ID, Role: entity.RoleManager}

	// count larger than the pool is clamped
	assigned, err := customers.RandomAssign(ctx, actor, counsellor.ID, 10)
	if err != nil {
		t.Fatalf("RandomAssign failed: %v", err)
	}
	if assigned != 3 {
		t.Errorf("expected clamp to pool size 3, got %d", assigned)
	}

	var remaining int64
	db.Model(&entity.Customer{}).Where("assigned_to IS NULL").Count(&remaining)
	if remaining != 0 {
		t.Errorf("expected empty pool, %d left", remaining)
	}

	// empty pool is an error
	if _, err := customers.RandomAssign(ctx, actor, counsellor.ID, 1); err != ErrNoUnassignedCustomers {
		t.Errorf("expected ErrNoUnassignedCustomers, got %v", err)
	}
}

func TestCreateCustomerRejectsDuplicatePhone(t *testing.T) {
	db, customers := newCustomerEnv(t)
	ctx := context.Background()
	testutil.SeedCustomer(t, db, "cust-1", "Alice", "111222333", nil)

	_, err := customers.Create(ctx, &CreateCustomerRequest{
		Name:        "Clone",
		PhoneNumber: "111-222-333",
	})
	if err != ErrPhoneTaken {
		t.Errorf("expected ErrPhoneTaken after normalization, got %v", err)
	}
}
