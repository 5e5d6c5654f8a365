package feeders

import (
	"os"

	"github.com/BurntSushi/toml"
)

// TomlFeeder reads a TOML file.
type TomlFeeder struct {
	Path string
}

// NewTomlFeeder creates a TomlFeeder for filePath.
func NewTomlFeeder(filePath string) TomlFeeder {
	return TomlFeeder{Path: filePath}
}

// Feed decodes the whole file into target.
func (t TomlFeeder) Feed(target any) error {
	if err := checkTarget(target); err != nil {
		return err
	}
	data, err := os.ReadFile(t.Path)
	if err != nil {
		return wrapReadError("toml", t.Path, err)
	}
	if err := toml.Unmarshal(data, target); err != nil {
		return wrapParseError("toml", t.Path, err)
	}
	return nil
}

// FeedKey decodes a single top-level key into target.
func (t TomlFeeder) FeedKey(key string, target any) error {
	return feedKey(t, key, target, toml.Marshal, toml.Unmarshal, "toml")
}
