package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/GoCodeAlone/voiper"
)

// ErrInvalidManifests is returned when at least one manifest fails validation
var ErrInvalidManifests = errors.New("invalid bundle manifests")

// ErrUnknownFormat is returned for an output format other than yaml, toml or json
var ErrUnknownFormat = errors.New("unknown manifest format")

// NewBundlesCommand creates the bundles command
func NewBundlesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bundles",
		Short: "Work with bundle manifests",
		Long:  `Validate and convert the YAML, TOML or JSON manifests that map bundle identifiers to surface types.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(NewBundlesValidateCommand())
	cmd.AddCommand(NewBundlesConvertCommand())

	return cmd
}

// NewBundlesValidateCommand checks manifests without loading them into an application
func NewBundlesValidateCommand() *cobra.Command {
	var types []string

	cmd := &cobra.Command{
		Use:   "validate FILE...",
		Short: "Validate bundle manifests",
		Long: `Validate checks that every bundle and identifier is named and unique. With --types it also
checks that every referenced surface type is one of the given names.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			failed := 0
			for _, path := range args {
				summary, err := validateManifest(path, types)
				if err != nil {
					failed++
					fmt.Fprintf(out, "%s: %s\n", path, err)
					continue
				}
				fmt.Fprintf(out, "%s: ok (%s)\n", path, summary)
			}
			if failed > 0 {
				return fmt.Errorf("%w: %d of %d", ErrInvalidManifests, failed, len(args))
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&types, "types", nil, "Registered surface type names to check references against")

	return cmd
}

func validateManifest(path string, types []string) (string, error) {
	manifest, err := voiper.ReadManifest(path)
	if err != nil {
		return "", err
	}
	if err := manifest.Validate(); err != nil {
		return "", err
	}

	surfaces := 0
	var unknown []string
	known := make(map[string]bool, len(types))
	for _, t := range types {
		known[t] = true
	}
	for _, bundle := range manifest.Bundles {
		surfaces += len(bundle.Surfaces)
		if len(types) == 0 {
			continue
		}
		for _, surface := range bundle.Surfaces {
			if !known[surface.TypeName()] {
				unknown = append(unknown, fmt.Sprintf("%s/%s -> %s", bundle.Name, surface.Identifier, surface.TypeName()))
			}
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return "", fmt.Errorf("%w: %s", voiper.ErrSurfaceTypeNotRegistered, strings.Join(unknown, ", "))
	}
	return fmt.Sprintf("%d bundles, %d surfaces", len(manifest.Bundles), surfaces), nil
}

// NewBundlesConvertCommand rewrites a manifest in another format
func NewBundlesConvertCommand() *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "convert FILE",
		Short: "Convert a bundle manifest to another format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manifest, err := voiper.ReadManifest(args[0])
			if err != nil {
				return err
			}
			if err := manifest.Validate(); err != nil {
				return err
			}

			data, err := EncodeManifest(manifest, format)
			if err != nil {
				return err
			}
			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "to", "t", "yaml", "Output format: yaml, toml or json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file, stdout when empty")

	return cmd
}

// EncodeManifest encodes manifest as yaml, toml or json.
func EncodeManifest(manifest *voiper.Manifest, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "yaml", "yml":
		return yaml.Marshal(manifest)
	case "toml":
		return toml.Marshal(manifest)
	case "json":
		data, err := json.MarshalIndent(manifest, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}
