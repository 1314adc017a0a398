package testsupport

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFixture(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "test.txt")
	testContent := []byte("test fixture content")

	if err := os.WriteFile(testFile, testContent, 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	result := LoadFixture(t, testFile)
	if string(result) != string(testContent) {
		t.Errorf("expected %q, got %q", testContent, result)
	}
}

func TestLoadFixtureJSON(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "test.json")
	testData := map[string]interface{}{
		"name":  "test",
		"value": 42,
	}

	jsonData, err := json.Marshal(testData)
	if err != nil {
		t.Fatalf("failed to marshal test data: %v", err)
	}

	if err := os.WriteFile(testFile, jsonData, 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	var result map[string]interface{}
	LoadFixtureJSON(t, testFile, &result)

	if result["name"] != "test" {
		t.Errorf("expected name=test, got %v", result["name"])
	}
	if result["value"] != float64(42) { // JSON unmarshals numbers as float64
		t.Errorf("expected value=42, got %v", result["value"])
	}
}

func TestFixturePath(t *testing.T) {
	if got := FixturePath("scenarios.json"); got != filepath.Join("testdata", "scenarios.json") {
		t.Errorf("unexpected fixture path %q", got)
	}
}

func TestFakeStore_FaultInjection(t *testing.T) {
	store := NewFakeStore()
	ctx := context.Background()

	store.Fail("get", "broken", nil)

	if _, _, err := store.Get(ctx, "broken"); !errors.Is(err, ErrInjected) {
		t.Fatalf("expected injected error, got %v", err)
	}

	if err := store.Set(ctx, "ok", 1, 0); err != nil {
		t.Fatalf("unexpected set error: %v", err)
	}
	if _, found, err := store.Get(ctx, "ok"); err != nil || !found {
		t.Fatalf("expected hit, got found=%v err=%v", found, err)
	}

	if store.Calls("get") != 2 {
		t.Errorf("expected 2 get calls, got %d", store.Calls("get"))
	}
}

func TestFakeStore_Expiry(t *testing.T) {
	store := NewFakeStore()
	ctx := context.Background()

	now := time.Now()
	store.SetClock(func() time.Time { return now })

	if err := store.Set(ctx, "k", "v", time.Second); err != nil {
		t.Fatalf("unexpected set error: %v", err)
	}
	now = now.Add(time.Second)

	if _, found, _ := store.Get(ctx, "k"); found {
		t.Error("expected entry to expire at its deadline")
	}
}
