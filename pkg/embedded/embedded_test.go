package embedded

import (
	"errors"
	"testing"
	"testing/fstest"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"data/combos/sword.yaml": {Data: []byte("combos: []\n")},
		"data/clips/a.yaml":      {Data: []byte("name: a\n")},
		"data/clips/b.yaml":      {Data: []byte("name: b\n")},
		"data/audio/hit.wav":     {Data: []byte("RIFF")},
	}
}

// TestNotInitialized 测试未初始化时的行为
func TestNotInitialized(t *testing.T) {
	Init(nil)

	if IsInitialized() {
		t.Error("Expected IsInitialized() to return false before Init()")
	}
	if _, err := ReadFile("data/clips/a.yaml"); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Expected ErrNotInitialized from ReadFile, got %v", err)
	}
	if _, err := Glob("data/clips/*.yaml"); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Expected ErrNotInitialized from Glob, got %v", err)
	}
	if Exists("data/clips/a.yaml") {
		t.Error("Expected Exists() to return false before Init()")
	}
}

func TestAccess(t *testing.T) {
	Init(testFS())
	defer Init(nil)

	data, err := ReadFile("./data/clips/a.yaml")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "name: a\n" {
		t.Errorf("Unexpected content %q", data)
	}

	if !Exists("data/combos/sword.yaml") {
		t.Error("Expected data/combos/sword.yaml to exist")
	}
	if Exists("data/combos/missing.yaml") {
		t.Error("Expected data/combos/missing.yaml not to exist")
	}

	matches, err := Glob("data/clips/*.yaml")
	if err != nil {
		t.Fatalf("Glob failed: %v", err)
	}
	if len(matches) != 2 || matches[0] != "data/clips/a.yaml" {
		t.Errorf("Unexpected matches %v", matches)
	}

	entries, err := ReadDir("data")
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 3 {
		t.Errorf("Expected 3 entries under data/, got %d", len(entries))
	}

	sub, err := Sub("data/audio")
	if err != nil {
		t.Fatalf("Sub failed: %v", err)
	}
	if _, err := sub.Open("hit.wav"); err != nil {
		t.Errorf("Expected hit.wav in sub FS: %v", err)
	}
}

func TestUnknownPrefix(t *testing.T) {
	Init(testFS())
	defer Init(nil)

	tests := []string{"assets/a.png", "clips/a.yaml", "../data/x"}
	for _, path := range tests {
		t.Run(path, func(t *testing.T) {
			if _, err := ReadFile(path); err == nil {
				t.Errorf("Expected error for %s", path)
			}
		})
	}
}
