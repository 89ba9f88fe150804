package session

import (
	"fmt"
	"testing"

	"github.com/ForensightLabs/forensight-console/internal/models"
)

func TestCaseStoreAddGet(t *testing.T) {
	store, err := NewCaseStore(4)
	if err != nil {
		t.Fatalf("NewCaseStore: %v", err)
	}

	store.Add(&models.CaseReport{CaseID: "case-1", Summary: "first"})
	store.Add(nil)
	store.Add(&models.CaseReport{Summary: "no id"}) // ignored

	if store.Len() != 1 {
		t.Errorf("expected 1 case, got %d", store.Len())
	}

	report, ok := store.Get("case-1")
	if !ok || report.Summary != "first" {
		t.Errorf("expected case-1 back, got %v (ok=%v)", report, ok)
	}
	if _, ok := store.Get("missing"); ok {
		t.Error("unknown case should not be found")
	}
}

func TestCaseStoreEvictsOldest(t *testing.T) {
	store, err := NewCaseStore(2)
	if err != nil {
		t.Fatalf("NewCaseStore: %v", err)
	}

	for i := 1; i <= 3; i++ {
		store.Add(&models.CaseReport{CaseID: fmt.Sprintf("case-%d", i)})
	}

	if store.Len() != 2 {
		t.Errorf("expected 2 cases after eviction, got %d", store.Len())
	}
	if _, ok := store.Get("case-1"); ok {
		t.Error("oldest case should have been evicted")
	}
	if _, ok := store.Get("case-3"); !ok {
		t.Error("newest case should survive")
	}
}
