package transcription

import "testing"

func TestFingerprintDeterministic(t *testing.T) {
	a := Fingerprint([]byte("audio bytes"))
	b := Fingerprint([]byte("audio bytes"))
	if a != b {
		t.Error("expected identical fingerprints for identical bytes")
	}
	if a == Fingerprint([]byte("different bytes")) {
		t.Error("expected different fingerprints for different bytes")
	}
	if len(a) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(a))
	}
}

func TestCacheKeyNamespacing(t *testing.T) {
	fp := Fingerprint([]byte("x"))
	if CacheKey(fp, "base", "en") == CacheKey(fp, "large", "en") {
		t.Error("expected different keys for different models")
	}
	if CacheKey(fp, "base", "en") == CacheKey(fp, "base", "fr") {
		t.Error("expected different keys for different languages")
	}
}

func TestModelCatalog(t *testing.T) {
	if !IsValidModel(DefaultModel) {
		t.Errorf("default model %q not in catalog", DefaultModel)
	}
	for _, name := range []string{"tiny", "base", "small", "medium", "large"} {
		if !IsValidModel(name) {
			t.Errorf("expected %q in catalog", name)
		}
	}
	if IsValidModel("huge") {
		t.Error("unexpected model accepted")
	}
	if len(ModelNames()) != len(Models) {
		t.Error("ModelNames length mismatch")
	}
}

func TestLanguageCatalog(t *testing.T) {
	if !IsValidLanguage(DefaultLanguage) {
		t.Errorf("default language %q not in catalog", DefaultLanguage)
	}
	for _, code := range []string{"en", "es", "fr"} {
		if !IsValidLanguage(code) {
			t.Errorf("expected %q in catalog", code)
		}
	}
	if IsValidLanguage("de") {
		t.Error("unexpected language accepted")
	}
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if cfg.Provider != "whisper" {
		t.Errorf("expected whisper default provider, got %q", cfg.Provider)
	}
	if cfg.Model != DefaultModel {
		t.Errorf("expected default model, got %q", cfg.Model)
	}
	if cfg.Timeout == 0 {
		t.Error("expected nonzero default timeout")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := Config{Model: "huge", Language: "en"}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown model")
	}
	cfg = Config{Model: "base", Language: "zz"}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown language")
	}
	cfg = Config{Model: "base", Language: "en", CacheMaxEntries: -1}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for negative cache bound")
	}
}
