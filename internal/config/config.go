// Package config is the typed, TOML-backed user configuration (spec.md
// §6 "Persisted state"): key bindings, default sort/filter, favorite
// directories, file-type handlers, date-format default, and log handler
// registration. Missing fields default from Template, replacing the
// teacher's bespoke JSON loader (internal/config/config.go) with
// github.com/BurntSushi/toml per SPEC_FULL.md's ambient-stack
// commitment.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileName is the per-user config file, resolved relative to the user's
// config directory (os.UserConfigDir), not the working directory --
// unlike the teacher's project-local ".contexTUI.json", this config is a
// user preference, not a per-project artifact (spec.md §6 describes no
// per-project scoping).
const FileName = "dualpane.toml"

// SortField mirrors filelist.SortMode as a TOML-friendly string so the
// config package has no dependency on filelist.
type SortField string

const (
	SortByName      SortField = "name"
	SortBySize      SortField = "size"
	SortByMTime     SortField = "mtime"
	SortByExtension SortField = "extension"
)

// DateFormat selects the short or full datetime column (spec.md §4.5).
type DateFormat string

const (
	DateFormatShort DateFormat = "short"
	DateFormatFull  DateFormat = "full"
)

// FileTypeHandler maps an extension (without the dot, lowercase) to an
// external command invoked on "open" (spec.md §4.7 "open file diff
// invokes an external handler"; §6 "file-type handlers").
type FileTypeHandler struct {
	Extensions []string `toml:"extensions"`
	Command    string   `toml:"command"`
}

// LogHandlers is the output-boundary handler registration (spec.md
// §4.9/§6 "handler registration").
type LogHandlers struct {
	Stdout           bool   `toml:"stdout"`
	BroadcastEnabled bool   `toml:"broadcast_enabled"`
	BroadcastAddr    string `toml:"broadcast_addr"`
}

// KeyBindings maps a named action to a free-form key label (e.g.
// "ctrl+c", "F5"). It is loaded but not read by the key dispatchers in
// internal/app and internal/mainscreen, whose bindings are fixed in code.
type KeyBindings map[string]string

// Config is the full typed configuration value (spec.md §6 "the core
// reads a typed configuration value and treats missing fields as
// defaults supplied by a template").
type Config struct {
	DefaultSortField SortField         `toml:"default_sort_field"`
	DefaultSortDesc  bool              `toml:"default_sort_descending"`
	DefaultFilter    string            `toml:"default_filter"`
	ShowHiddenFiles  bool              `toml:"show_hidden_files"`
	SplitRatio       float64           `toml:"split_ratio"`
	LogPaneFraction  float64           `toml:"log_pane_fraction"`
	DateFormat       DateFormat        `toml:"date_format"`
	TabWidth         int               `toml:"tab_width"`
	FavoriteDirs     []string          `toml:"favorite_dirs"`
	FileTypeHandlers []FileTypeHandler `toml:"file_type_handlers"`
	LogHandlers      LogHandlers       `toml:"log_handlers"`
	KeyBindings      KeyBindings       `toml:"key_bindings"`
}

// Template is the default configuration; any field absent from the
// user's file is taken from here (spec.md §6).
func Template() Config {
	return Config{
		DefaultSortField: SortByName,
		DefaultSortDesc:  false,
		DefaultFilter:    "",
		ShowHiddenFiles:  false,
		SplitRatio:       0.5,
		LogPaneFraction:  0.2,
		DateFormat:       DateFormatShort,
		TabWidth:         4,
		FavoriteDirs:     nil,
		FileTypeHandlers: nil,
		LogHandlers:      LogHandlers{Stdout: true},
		KeyBindings:      KeyBindings{},
	}
}

// Path resolves the config file location under the user's config
// directory, creating the parent directory if absent.
func Path() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	appDir := filepath.Join(dir, "dualpane")
	if err := os.MkdirAll(appDir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(appDir, FileName), nil
}

// Load reads the config file, filling any field the file omits from
// Template. A missing file or malformed TOML yields the template
// unchanged (spec.md §6 "missing fields default").
func Load() Config {
	cfg := Template()
	path, err := Path()
	if err != nil {
		return cfg
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}
	var parsed Config
	if _, err := toml.Decode(string(data), &parsed); err != nil {
		return cfg
	}
	mergeDefaults(&parsed, cfg)
	return parsed
}

// mergeDefaults fills zero-valued fields of parsed from def, implementing
// the "missing fields default from a template" rule field by field since
// TOML decoding leaves absent keys at their Go zero value.
func mergeDefaults(parsed *Config, def Config) {
	if parsed.DefaultSortField == "" {
		parsed.DefaultSortField = def.DefaultSortField
	}
	if parsed.SplitRatio == 0 {
		parsed.SplitRatio = def.SplitRatio
	}
	if parsed.LogPaneFraction == 0 {
		parsed.LogPaneFraction = def.LogPaneFraction
	}
	if parsed.DateFormat == "" {
		parsed.DateFormat = def.DateFormat
	}
	if parsed.TabWidth == 0 {
		parsed.TabWidth = def.TabWidth
	}
	if parsed.KeyBindings == nil {
		parsed.KeyBindings = def.KeyBindings
	}
}

// Save writes cfg back to the user's config file.
func Save(cfg Config) error {
	path, err := Path()
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}
