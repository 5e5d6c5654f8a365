package feeders

import (
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/golobby/cast"
)

// EnvFeeder fills fields tagged `env:"NAME"` from environment variables. Prefix and Suffix
// are optional and joined to the tag with underscores: Prefix_NAME_Suffix, upper-cased.
// Unset or empty variables leave the field untouched.
type EnvFeeder struct {
	Prefix string
	Suffix string
}

// NewEnvFeeder creates an EnvFeeder without affixes.
func NewEnvFeeder() EnvFeeder {
	return EnvFeeder{}
}

// NewAffixedEnvFeeder creates an EnvFeeder reading PREFIX_NAME_SUFFIX variables.
func NewAffixedEnvFeeder(prefix, suffix string) EnvFeeder {
	return EnvFeeder{Prefix: prefix, Suffix: suffix}
}

// Feed populates the struct pointed to by structure.
func (f EnvFeeder) Feed(structure any) error {
	rv := reflect.ValueOf(structure)
	if !rv.IsValid() || rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("%w: got %T", ErrEnvInvalidStructure, structure)
	}
	return f.processStructFields(rv.Elem())
}

func (f EnvFeeder) processStructFields(rv reflect.Value) error {
	for i := 0; i < rv.NumField(); i++ {
		field := rv.Field(i)
		fieldType := rv.Type().Field(i)
		if !fieldType.IsExported() {
			continue
		}
		if err := f.processField(field, &fieldType); err != nil {
			return fmt.Errorf("error in field '%s': %w", fieldType.Name, err)
		}
	}
	return nil
}

func (f EnvFeeder) processField(field reflect.Value, fieldType *reflect.StructField) error {
	envTag, tagged := fieldType.Tag.Lookup("env")

	switch field.Kind() {
	case reflect.Struct:
		if !tagged {
			return f.processStructFields(field)
		}
	case reflect.Pointer:
		if field.Elem().Kind() == reflect.Struct && !field.IsNil() {
			return f.processStructFields(field.Elem())
		}
		if tagged {
			return fmt.Errorf("%w: %s", ErrEnvUnsupportedPointer, fieldType.Name)
		}
		return nil
	}

	if !tagged || envTag == "" || envTag == "-" {
		return nil
	}
	return f.setFieldFromEnv(field, envTag)
}

func (f EnvFeeder) variableName(tag string) string {
	name := strings.ToUpper(tag)
	if f.Prefix != "" {
		name = strings.ToUpper(strings.TrimSuffix(f.Prefix, "_")) + "_" + name
	}
	if f.Suffix != "" {
		name = name + "_" + strings.ToUpper(strings.TrimPrefix(f.Suffix, "_"))
	}
	return name
}

func (f EnvFeeder) setFieldFromEnv(field reflect.Value, tag string) error {
	value := os.Getenv(f.variableName(tag))
	if value == "" {
		return nil
	}
	if !field.CanSet() {
		return ErrEnvFieldCannotBeSet
	}

	converted, err := cast.FromType(value, field.Type())
	if err != nil {
		return fmt.Errorf("%w to %v: %w", ErrEnvConversionFailed, field.Type(), err)
	}
	field.Set(reflect.ValueOf(converted).Convert(field.Type()))
	return nil
}
