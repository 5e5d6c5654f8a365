package feeders

import (
	"encoding/json"
	"os"
)

// JSONFeeder reads a JSON file.
type JSONFeeder struct {
	Path string
}

// NewJSONFeeder creates a JSONFeeder for filePath.
func NewJSONFeeder(filePath string) JSONFeeder {
	return JSONFeeder{Path: filePath}
}

// Feed decodes the whole file into target.
func (j JSONFeeder) Feed(target any) error {
	if err := checkTarget(target); err != nil {
		return err
	}
	data, err := os.ReadFile(j.Path)
	if err != nil {
		return wrapReadError("json", j.Path, err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return wrapParseError("json", j.Path, err)
	}
	return nil
}

// FeedKey decodes a single top-level key into target.
func (j JSONFeeder) FeedKey(key string, target any) error {
	return feedKey(j, key, target, json.Marshal, json.Unmarshal, "json")
}
