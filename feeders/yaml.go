package feeders

import (
	"os"

	"gopkg.in/yaml.v3"
)

// YamlFeeder reads a YAML file.
type YamlFeeder struct {
	Path string
}

// NewYamlFeeder creates a YamlFeeder for filePath.
func NewYamlFeeder(filePath string) YamlFeeder {
	return YamlFeeder{Path: filePath}
}

// Feed decodes the whole file into target.
func (y YamlFeeder) Feed(target any) error {
	if err := checkTarget(target); err != nil {
		return err
	}
	data, err := os.ReadFile(y.Path)
	if err != nil {
		return wrapReadError("yaml", y.Path, err)
	}
	if err := yaml.Unmarshal(data, target); err != nil {
		return wrapParseError("yaml", y.Path, err)
	}
	return nil
}

// FeedKey decodes a single top-level key into target.
func (y YamlFeeder) FeedKey(key string, target any) error {
	return feedKey(y, key, target, yaml.Marshal, yaml.Unmarshal, "yaml")
}
