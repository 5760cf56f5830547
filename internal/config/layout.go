package config

import (
	"path/filepath"

	"github.com/spf13/viper"
)

// Config file names inside the config directory.
const (
	TagsFile            = "tags.json"
	VendorTagsFile      = "vendor_tags.json"
	MainCategoriesFile  = "main_categories.json"
	CompletedMonthsFile = "completed_months.json"
)

// Layout describes where the flat-file store lives on disk.
type Layout struct {
	DataDir   string // Root data directory
	RawDir    string // Raw bank exports awaiting tagging
	StoreFile string // Unified store of tagged transactions
	ConfigDir string // JSON configuration tables
}

// DefaultLayout resolves the store layout from viper configuration,
// falling back to ~/.local/share/tagflow.
func DefaultLayout() Layout {
	dataDir := viper.GetString("data.dir")
	if dataDir == "" {
		dataDir = "~/.local/share/tagflow"
	}
	return NewLayout(ExpandPath(dataDir))
}

// NewLayout builds the store layout rooted at dataDir.
func NewLayout(dataDir string) Layout {
	return Layout{
		DataDir:   dataDir,
		RawDir:    filepath.Join(dataDir, "raw"),
		StoreFile: filepath.Join(dataDir, "store.csv"),
		ConfigDir: filepath.Join(dataDir, "config"),
	}
}

// ConfigFile returns the full path of a named JSON config file.
func (l Layout) ConfigFile(name string) string {
	return filepath.Join(l.ConfigDir, name)
}
