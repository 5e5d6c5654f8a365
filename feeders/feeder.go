// Package feeders provides configuration feeders reading role configurations and bundle
// manifests from YAML, TOML and JSON files and from environment variables.
package feeders

import (
	"fmt"
	"path/filepath"
	"reflect"
	"strings"
)

// Feeder populates target from its source.
type Feeder interface {
	Feed(target any) error
}

// KeyFeeder populates target from a single top-level key of its source.
type KeyFeeder interface {
	Feeder
	FeedKey(key string, target any) error
}

// ForPath returns the file feeder matching the extension of path.
func ForPath(path string) (KeyFeeder, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return NewYamlFeeder(path), nil
	case ".toml":
		return NewTomlFeeder(path), nil
	case ".json":
		return NewJSONFeeder(path), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedPath, path)
	}
}

// feedKey reads the whole document into a map, picks key and decodes it into target by
// re-encoding it in the source format. A missing key leaves target untouched.
func feedKey(
	feeder Feeder,
	key string,
	target any,
	marshalFunc func(any) ([]byte, error),
	unmarshalFunc func([]byte, any) error,
	fileType string,
) error {
	var allData map[string]any
	if err := feeder.Feed(&allData); err != nil {
		return err
	}

	value, exists := allData[key]
	if !exists {
		return nil
	}

	valueBytes, err := marshalFunc(value)
	if err != nil {
		return fmt.Errorf("%w: %s key %q: %w", ErrKeyRemarshal, fileType, key, err)
	}
	if err := unmarshalFunc(valueBytes, target); err != nil {
		return fmt.Errorf("%w: %s key %q: %w", ErrFileParse, fileType, key, err)
	}
	return nil
}

func checkTarget(target any) error {
	rv := reflect.ValueOf(target)
	if !rv.IsValid() || rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("%w, got %T", ErrTargetNotPtr, target)
	}
	return nil
}
