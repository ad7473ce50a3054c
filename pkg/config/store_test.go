package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func writeJSON(t *testing.T, path string, v any) {
	t.Helper()
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
}

func TestNewFileStore(t *testing.T) {
	t.Run("custom path", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.json")

		store, err := NewFileStore(configPath)
		if err != nil {
			t.Fatalf("NewFileStore failed: %v", err)
		}
		if store.Path() != configPath {
			t.Errorf("Expected path %s, got %s", configPath, store.Path())
		}
		if all, _ := store.GetAll(); len(all) != 0 {
			t.Errorf("New store should be empty, got %v", all)
		}
	})

	t.Run("default path", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("HOME", home)

		store, err := NewFileStore("")
		if err != nil {
			t.Fatalf("NewFileStore with empty path failed: %v", err)
		}
		if want := filepath.Join(home, ".aread", "config.json"); store.Path() != want {
			t.Errorf("Expected default path %s, got %s", want, store.Path())
		}
	})

	t.Run("loads existing file", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.json")
		writeJSON(t, configPath, map[string]any{
			"version":  "1.0",
			"sections": map[string]any{"service": map[string]any{"url": "https://x.example"}},
		})

		store, err := NewFileStore(configPath)
		if err != nil {
			t.Fatalf("NewFileStore failed: %v", err)
		}
		section, _ := store.GetSection("service")
		if section["url"] != "https://x.example" {
			t.Errorf("Expected url to load, got %v", section["url"])
		}
	})

	t.Run("rejects invalid JSON", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.json")
		if err := os.WriteFile(configPath, []byte("{invalid json}"), 0600); err != nil {
			t.Fatal(err)
		}
		if _, err := NewFileStore(configPath); err == nil {
			t.Error("Expected error for invalid JSON")
		}
	})
}

func TestFileStore_Load(t *testing.T) {
	t.Run("missing file is empty", func(t *testing.T) {
		store := &FileStore{path: filepath.Join(t.TempDir(), "none.json")}
		if err := store.Load(); err != nil {
			t.Fatalf("Load should not fail for non-existent file: %v", err)
		}
		all, _ := store.GetAll()
		if len(all) != 0 {
			t.Error("Expected empty config for non-existent file")
		}
	})

	t.Run("discards unsaved changes", func(t *testing.T) {
		store, _ := NewFileStore(filepath.Join(t.TempDir(), "config.json"))
		store.SetSection("service", map[string]any{"url": "https://x.example"})

		if err := store.Load(); err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		section, _ := store.GetSection("service")
		if len(section) != 0 {
			t.Errorf("Expected reload to drop unsaved data, got %v", section)
		}
	})

	t.Run("sees changes written by another store", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.json")
		reader, _ := NewFileStore(path)
		writer, _ := NewFileStore(path)

		writer.SetSection("service", map[string]any{"token": "abc"})
		if err := writer.Save(); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		if err := reader.Load(); err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		section, _ := reader.GetSection("service")
		if section["token"] != "abc" {
			t.Errorf("Expected token abc, got %v", section["token"])
		}
	})
}

func TestFileStore_Save(t *testing.T) {
	t.Run("writes versioned document", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.json")
		store, _ := NewFileStore(configPath)
		store.SetSection("browser", map[string]any{"driver": "chromedp"})

		if err := store.Save(); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		data, err := os.ReadFile(configPath)
		if err != nil {
			t.Fatalf("Failed to read saved config: %v", err)
		}
		var doc struct {
			Version  string                    `json:"version"`
			Sections map[string]map[string]any `json:"sections"`
		}
		if err := json.Unmarshal(data, &doc); err != nil {
			t.Fatalf("Saved config is not valid JSON: %v", err)
		}
		if doc.Version != "1.0" {
			t.Errorf("Expected version 1.0, got %q", doc.Version)
		}
		if doc.Sections["browser"]["driver"] != "chromedp" {
			t.Errorf("Section not saved, got %v", doc.Sections)
		}
	})

	t.Run("creates nested directory with private file", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "nested", "dir", "config.json")
		store, _ := NewFileStore(configPath)
		store.SetSection("service", map[string]any{"token": "secret"})

		if err := store.Save(); err != nil {
			t.Fatalf("Save should create nested directories: %v", err)
		}
		info, err := os.Stat(configPath)
		if err != nil {
			t.Fatalf("Config file missing: %v", err)
		}
		if perm := info.Mode().Perm(); perm != 0600 {
			t.Errorf("Expected 0600 permissions, got %o", perm)
		}
		if _, err := os.Stat(configPath + ".tmp"); !os.IsNotExist(err) {
			t.Error("Temp file should be gone after save")
		}
	})

	t.Run("survives reopen", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.json")
		store, _ := NewFileStore(configPath)
		store.SetSection("service", map[string]any{"url": "u"})
		if err := store.Save(); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		reopened, err := NewFileStore(configPath)
		if err != nil {
			t.Fatalf("NewFileStore failed: %v", err)
		}
		if section, _ := reopened.GetSection("service"); section["url"] != "u" {
			t.Errorf("Expected url u after reopen, got %v", section["url"])
		}
	})
}

func TestFileStore_Copies(t *testing.T) {
	store := &FileStore{data: map[string]map[string]any{"service": {"url": "a"}}}

	section, _ := store.GetSection("service")
	section["url"] = "modified"
	if again, _ := store.GetSection("service"); again["url"] != "a" {
		t.Error("GetSection result modification affected store data")
	}

	input := map[string]any{"url": "b"}
	store.SetSection("service", input)
	input["url"] = "modified"
	if again, _ := store.GetSection("service"); again["url"] != "b" {
		t.Error("SetSection input modification affected store data")
	}

	all, _ := store.GetAll()
	all["service"]["url"] = "modified"
	if again, _ := store.GetSection("service"); again["url"] != "b" {
		t.Error("GetAll result modification affected store data")
	}

	if empty, _ := store.GetSection("nonexistent"); len(empty) != 0 {
		t.Error("Expected empty map for non-existent section")
	}
}
