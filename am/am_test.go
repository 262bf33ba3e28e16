package am

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

func TestLoad_Defaults(t *testing.T) {
	// Create isolated viper instance without loading user/project config
	v := viper.New()
	SetDefaults(v)

	cfg, err := LoadWithViper(v)
	if err != nil {
		t.Fatalf("LoadWithViper() failed: %v", err)
	}

	if cfg.Database.Path != DefaultDatabasePath {
		t.Errorf("expected default database path %q, got %q", DefaultDatabasePath, cfg.Database.Path)
	}
	if cfg.Database.BusyTimeoutMS != DefaultBusyTimeoutMS {
		t.Errorf("expected busy timeout %d, got %d", DefaultBusyTimeoutMS, cfg.Database.BusyTimeoutMS)
	}
	if cfg.Ontology.Mode != "strict" {
		t.Errorf("expected strict ontology mode, got %q", cfg.Ontology.Mode)
	}
	if cfg.Traversal.NetworkDepth != 3 {
		t.Errorf("expected network depth 3, got %d", cfg.Traversal.NetworkDepth)
	}
	if cfg.Traversal.HierarchyDistance != 10 {
		t.Errorf("expected hierarchy distance 10, got %d", cfg.Traversal.HierarchyDistance)
	}
}

func TestValidate_ZeroValues(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:    "zero value config is valid",
			config:  Config{},
			wantErr: false,
		},
		{
			name:    "negative busy timeout is invalid",
			config:  Config{Database: DatabaseConfig{BusyTimeoutMS: -1}},
			wantErr: true,
		},
		{
			name:    "lenient mode is valid",
			config:  Config{Ontology: OntologyConfig{Mode: "lenient"}},
			wantErr: false,
		},
		{
			name:    "unknown mode is invalid",
			config:  Config{Ontology: OntologyConfig{Mode: "relaxed"}},
			wantErr: true,
		},
		{
			name:    "zero network depth is valid (default)",
			config:  Config{Traversal: TraversalConfig{NetworkDepth: 0}},
			wantErr: false,
		},
		{
			name:    "negative network depth is invalid",
			config:  Config{Traversal: TraversalConfig{NetworkDepth: -2}},
			wantErr: true,
		},
		{
			name:    "negative hierarchy distance is invalid",
			config:  Config{Traversal: TraversalConfig{HierarchyDistance: -1}},
			wantErr: true,
		},
		{
			name:    "negative page size is invalid",
			config:  Config{Listing: ListingConfig{PageSize: -5}},
			wantErr: true,
		},
		{
			name:    "negative verbosity is invalid",
			config:  Config{Log: LogConfig{Verbosity: -1}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSetDefaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	tests := []struct {
		key      string
		expected interface{}
	}{
		{"database.path", "topicdb.db"},
		{"database.busy_timeout_ms", 5000},
		{"log.json", false},
		{"log.verbosity", 0},
		{"ontology.mode", "strict"},
		{"traversal.network_depth", 3},
		{"traversal.hierarchy_distance", 10},
		{"listing.page_size", 100},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got := v.Get(tt.key)
			if got != tt.expected {
				t.Errorf("default %s = %v, want %v", tt.key, got, tt.expected)
			}
		})
	}
}

func TestFindProjectConfig(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("found in parent directory", func(t *testing.T) {
		subDir := filepath.Join(tmpDir, "test1", "subdir")
		os.MkdirAll(subDir, DefaultDirPermissions)
		os.WriteFile(filepath.Join(tmpDir, "test1", ConfigFileName), []byte(""), DefaultFilePermissions)

		oldWd, _ := os.Getwd()
		defer os.Chdir(oldWd)
		os.Chdir(subDir)

		result := findProjectConfig()
		if result == "" {
			t.Fatal("expected to find config file")
		}
		if !filepath.IsAbs(result) {
			t.Error("expected absolute path")
		}
		if filepath.Base(result) != ConfigFileName {
			t.Errorf("expected %s, got %s", ConfigFileName, filepath.Base(result))
		}
	})

	t.Run("no config found", func(t *testing.T) {
		subDir := filepath.Join(tmpDir, "test2", "subdir")
		os.MkdirAll(subDir, DefaultDirPermissions)

		oldWd, _ := os.Getwd()
		defer os.Chdir(oldWd)
		os.Chdir(subDir)

		result := findProjectConfig()
		if result != "" {
			t.Errorf("expected empty string, got %s", result)
		}
	})
}

func TestLoad_EnvOverridesFiles(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	userConfig := filepath.Join(home, UserConfigDir, ConfigFileName)
	os.MkdirAll(filepath.Dir(userConfig), DefaultDirPermissions)
	os.WriteFile(userConfig, []byte("[database]\npath = \"from-file.db\"\n\n[ontology]\nmode = \"lenient\"\n"), DefaultFilePermissions)

	t.Setenv("TOPICDB_DATABASE_PATH", "from-env.db")

	Reset()
	defer Reset()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Database.Path != "from-env.db" {
		t.Errorf("expected env var to win, got %q", cfg.Database.Path)
	}
	if cfg.Ontology.Mode != "lenient" {
		t.Errorf("expected user file mode lenient, got %q", cfg.Ontology.Mode)
	}
}

func TestSaveAndLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", ConfigFileName)

	cfg := Default()
	cfg.Database.Path = "/var/lib/topicdb/maps.db"
	cfg.Ontology.Mode = "lenient"
	cfg.Traversal.NetworkDepth = 5

	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() failed: %v", err)
	}

	if *loaded != *cfg {
		t.Errorf("round trip mismatch: got %+v, want %+v", loaded, cfg)
	}

	// A second save keeps the previous file as a backup
	cfg.Listing.PageSize = 25
	if err := Save(cfg, path); err != nil {
		t.Fatalf("second Save() failed: %v", err)
	}
	if _, err := os.Stat(path + ".back1"); err != nil {
		t.Errorf("expected backup file: %v", err)
	}
}

func TestSave_RejectsInvalid(t *testing.T) {
	cfg := Default()
	cfg.Ontology.Mode = "sometimes"

	if err := Save(cfg, filepath.Join(t.TempDir(), ConfigFileName)); err == nil {
		t.Error("expected Save() to reject invalid config")
	}
}

func TestGetters_FallBackToDefaults(t *testing.T) {
	cfg := &Config{}

	if cfg.GetDatabasePath() != DefaultDatabasePath {
		t.Errorf("expected %q, got %q", DefaultDatabasePath, cfg.GetDatabasePath())
	}
	if cfg.GetNetworkDepth() != DefaultNetworkDepth {
		t.Errorf("expected %d, got %d", DefaultNetworkDepth, cfg.GetNetworkDepth())
	}
	if cfg.GetHierarchyDistance() != DefaultHierarchyDistance {
		t.Errorf("expected %d, got %d", DefaultHierarchyDistance, cfg.GetHierarchyDistance())
	}
	if cfg.GetPageSize() != DefaultPageSize {
		t.Errorf("expected %d, got %d", DefaultPageSize, cfg.GetPageSize())
	}
}
