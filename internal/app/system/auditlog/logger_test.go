package auditlog_test

import (
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/propertyflow/internal/app/store/audit"
	"github.com/dalemusser/propertyflow/internal/app/system/auditlog"
	"github.com/dalemusser/propertyflow/internal/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_NilLogger(t *testing.T) {
	var logger *auditlog.Logger
	ctx, cancel := testutil.TestContext()
	defer cancel()
	req := httptest.NewRequest("GET", "/", nil)

	logger.Log(ctx, audit.Event{EventType: "test"})
	logger.LoginSuccess(ctx, req, testutil.AdminUser(), testutil.TestCompany())
	logger.Logout(ctx, req, "1", "company-1")
}

func TestLogger_ConfigLog_WritesZapOnly(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := auditlog.New(nil, zap.New(core), auditlog.Config{Auth: auditlog.ModeLog})
	ctx, cancel := testutil.TestContext()
	defer cancel()

	req := httptest.NewRequest("POST", "/auth/signin", nil)
	req.RemoteAddr = "203.0.113.9:40000"
	logger.LoginSuccess(ctx, req, testutil.ManagerUser(), testutil.TestCompany())
	logger.LoginFailed(ctx, req, "x@acme.test", "ACME-00001", "invalid credentials")

	entries := logs.FilterMessage("audit event").All()
	if len(entries) != 2 {
		t.Fatalf("got %d audit entries, want 2", len(entries))
	}

	ok := entries[0].ContextMap()
	if ok["event_type"] != audit.EventLoginSuccess || ok["user_id"] != "2" || ok["company_id"] != "company-1" {
		t.Errorf("login success fields: %v", ok)
	}
	if ok["ip"] != "203.0.113.9" {
		t.Errorf("ip: got %v", ok["ip"])
	}
	if entries[0].Level != zap.InfoLevel {
		t.Errorf("success level: got %v", entries[0].Level)
	}

	failed := entries[1].ContextMap()
	if failed["failure_reason"] != "invalid credentials" || failed["detail_company_code"] != "ACME-00001" {
		t.Errorf("login failed fields: %v", failed)
	}
	if entries[1].Level != zap.WarnLevel {
		t.Errorf("failure level: got %v", entries[1].Level)
	}
}

func TestLogger_ConfigOff(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := auditlog.New(nil, zap.New(core), auditlog.Config{Auth: auditlog.ModeOff})
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger.Logout(ctx, httptest.NewRequest("GET", "/logout", nil), "1", "company-1")

	if logs.Len() != 0 {
		t.Errorf("expected nothing logged when off, got %d entries", logs.Len())
	}
}

func TestLogger_ConfigDB(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	core, logs := observer.New(zap.DebugLevel)
	logger := auditlog.New(store, zap.New(core), auditlog.Config{Auth: auditlog.ModeDB})
	ctx, cancel := testutil.TestContext()
	defer cancel()

	req := httptest.NewRequest("GET", "/", nil)
	logger.LoginSuccess(ctx, req, testutil.ManagerUser(), testutil.TestCompany())
	logger.CompanyOnboarded(ctx, req, "owner@beta.test", "Beta Homes")

	events, err := store.Query(ctx, audit.QueryFilter{UserID: "2"})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events for user, want 1", len(events))
	}
	if events[0].CompanyID != "company-1" || !events[0].Success {
		t.Errorf("stored event: %+v", events[0])
	}

	onboarded, err := store.Query(ctx, audit.QueryFilter{EventType: audit.EventCompanyOnboarded})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(onboarded) != 1 || onboarded[0].Details["company_name"] != "Beta Homes" {
		t.Errorf("onboarded events: %+v", onboarded)
	}

	if logs.FilterMessage("audit event").Len() != 0 {
		t.Error("db mode must not write audit entries to zap")
	}
}

func TestLogger_DefaultsToAll(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := auditlog.New(nil, zap.New(core), auditlog.Config{})
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger.PasswordResetRequested(ctx, httptest.NewRequest("POST", "/", nil), "a@b.test", "ACME-00001", true)

	if logs.FilterMessage("audit event").Len() != 1 {
		t.Error("empty config should log to zap")
	}
}
