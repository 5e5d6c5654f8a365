package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"unicode"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
	"golang.org/x/tools/imports"
	"gopkg.in/yaml.v3"

	"github.com/GoCodeAlone/voiper"
)

// ErrInvalidModuleName is returned for names that cannot become a Go package
var ErrInvalidModuleName = errors.New("module name must start with a letter and contain only letters and digits")

// ModuleOptions contains the configuration for generating a new module
type ModuleOptions struct {
	ModuleName       string
	PackageName      string
	OutputDir        string
	PresenterConfig  bool
	InteractorConfig bool
	RouterConfig     bool
	Bundle           string
	Async            bool
	GenerateTests    bool
	Interactive      bool
}

// PresenterConfigType is the presenter configuration type used in generated code.
func (o *ModuleOptions) PresenterConfigType() string {
	return configType(o.PresenterConfig, "PresenterConfig")
}

// InteractorConfigType is the interactor configuration type used in generated code.
func (o *ModuleOptions) InteractorConfigType() string {
	return configType(o.InteractorConfig, "InteractorConfig")
}

// RouterConfigType is the router configuration type used in generated code.
func (o *ModuleOptions) RouterConfigType() string {
	return configType(o.RouterConfig, "RouterConfig")
}

// HasConfig reports whether any role takes a configuration.
func (o *ModuleOptions) HasConfig() bool {
	return o.PresenterConfig || o.InteractorConfig || o.RouterConfig
}

func configType(enabled bool, name string) string {
	if enabled {
		return name
	}
	return "voiper.Unit"
}

// SetOptionsFn lets tests supply options instead of prompting. Returning true skips prompts.
var SetOptionsFn func(*ModuleOptions) bool

// NewGenerateModuleCommand creates a command for generating Voiper modules
func NewGenerateModuleCommand() *cobra.Command {
	options := &ModuleOptions{}

	cmd := &cobra.Command{
		Use:   "module",
		Short: "Generate a new four-role module",
		Long: `Generate a package holding a surface, presenter, interactor and router together with
the module declaration that wires them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := promptForModuleInfo(options); err != nil {
				return fmt.Errorf("gathering module information: %w", err)
			}

			dir, err := generateModuleFiles(options)
			if err != nil {
				return fmt.Errorf("generating module: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Successfully generated module '%s' in %s\n", options.ModuleName, dir)
			reportImport(out, dir)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&options.OutputDir, "output", "o", ".", "Directory where the module package will be created")
	flags.StringVarP(&options.ModuleName, "name", "n", "", "Name of the module, e.g. Login")
	flags.BoolVar(&options.PresenterConfig, "presenter-config", false, "Give the presenter a configuration struct")
	flags.BoolVar(&options.InteractorConfig, "interactor-config", false, "Give the interactor a configuration struct")
	flags.BoolVar(&options.RouterConfig, "router-config", false, "Give the router a configuration struct")
	flags.StringVar(&options.Bundle, "bundle", "", "Look the surface up in this bundle instead of allocating it")
	flags.BoolVar(&options.Async, "async", false, "Generate suspending constructors")
	flags.BoolVar(&options.GenerateTests, "tests", true, "Generate a module creation test")
	flags.BoolVarP(&options.Interactive, "interactive", "i", false, "Ask for module features interactively")

	return cmd
}

// promptForModuleInfo fills in what the flags left open
func promptForModuleInfo(options *ModuleOptions) error {
	if SetOptionsFn != nil && SetOptionsFn(options) {
		return finishOptions(options)
	}

	if options.ModuleName == "" {
		namePrompt := &survey.Input{
			Message: "What is the name of your module?",
			Help:    "Used for the package name and the module name in logs and the catalog.",
		}
		if err := survey.AskOne(namePrompt, &options.ModuleName, DefaultSurveyIO.AskOptions(survey.WithValidator(survey.Required))...); err != nil {
			return err
		}
	}

	if options.Interactive {
		answers := struct {
			PresenterConfig  bool
			InteractorConfig bool
			RouterConfig     bool
			Async            bool
			GenerateTests    bool
		}{GenerateTests: true}

		questions := []*survey.Question{
			{Name: "PresenterConfig", Prompt: &survey.Confirm{Message: "Does the presenter need configuration?"}},
			{Name: "InteractorConfig", Prompt: &survey.Confirm{Message: "Does the interactor need configuration?", Default: true}},
			{Name: "RouterConfig", Prompt: &survey.Confirm{Message: "Does the router need configuration?"}},
			{Name: "Async", Prompt: &survey.Confirm{Message: "Do the constructors need to suspend (I/O, context)?"}},
			{Name: "GenerateTests", Prompt: &survey.Confirm{Message: "Generate a module creation test?", Default: true}},
		}
		if err := survey.Ask(questions, &answers, DefaultSurveyIO.AskOptions()...); err != nil {
			return err
		}
		options.PresenterConfig = answers.PresenterConfig
		options.InteractorConfig = answers.InteractorConfig
		options.RouterConfig = answers.RouterConfig
		options.Async = answers.Async
		options.GenerateTests = answers.GenerateTests

		if options.Bundle == "" {
			bundlePrompt := &survey.Input{
				Message: "Bundle to look the surface up in (empty to allocate it directly):",
			}
			if err := survey.AskOne(bundlePrompt, &options.Bundle, DefaultSurveyIO.AskOptions()...); err != nil {
				return err
			}
		}
	}

	return finishOptions(options)
}

func finishOptions(options *ModuleOptions) error {
	options.ModuleName = strings.TrimSpace(options.ModuleName)
	if !validModuleName(options.ModuleName) {
		return fmt.Errorf("%w: %q", ErrInvalidModuleName, options.ModuleName)
	}
	if options.PackageName == "" {
		options.PackageName = strings.ToLower(options.ModuleName)
	}
	if options.OutputDir == "" {
		options.OutputDir = "."
	}
	return nil
}

func validModuleName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case unicode.IsLetter(r):
		case unicode.IsDigit(r) && i > 0:
		default:
			return false
		}
	}
	return true
}

// generateModuleFiles writes the module package and returns its directory
func generateModuleFiles(options *ModuleOptions) (string, error) {
	dir := filepath.Join(options.OutputDir, options.PackageName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	files := []struct {
		name string
		tmpl *template.Template
		skip bool
	}{
		{name: "view.go", tmpl: viewTemplate},
		{name: "presenter.go", tmpl: presenterTemplate},
		{name: "interactor.go", tmpl: interactorTemplate},
		{name: "router.go", tmpl: routerTemplate},
		{name: "config.go", tmpl: configTemplate, skip: !options.HasConfig()},
		{name: "module.go", tmpl: moduleTemplate},
		{name: "module_test.go", tmpl: moduleTestTemplate, skip: !options.GenerateTests},
	}

	for _, file := range files {
		if file.skip {
			continue
		}
		if err := writeGoFile(filepath.Join(dir, file.name), file.tmpl, options); err != nil {
			return "", err
		}
	}

	if options.Bundle != "" {
		if err := writeSampleManifest(filepath.Join(dir, "bundles.yaml"), options); err != nil {
			return "", err
		}
	}
	return dir, nil
}

func writeGoFile(path string, tmpl *template.Template, options *ModuleOptions) error {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, options); err != nil {
		return fmt.Errorf("failed to render %s: %w", filepath.Base(path), err)
	}

	src, err := imports.Process(path, buf.Bytes(), &imports.Options{Comments: true, TabIndent: true, TabWidth: 8})
	if err != nil {
		return fmt.Errorf("failed to format %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, src, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}

// writeSampleManifest declares the generated surface in its bundle, under the names the
// generated module looks it up by.
func writeSampleManifest(path string, options *ModuleOptions) error {
	manifest := voiper.Manifest{Bundles: []voiper.BundleSpec{{
		Name:     options.Bundle,
		Surfaces: []voiper.SurfaceSpec{{Identifier: "View", Type: options.PackageName + ".View"}},
	}}}
	if err := manifest.Validate(); err != nil {
		return err
	}

	data, err := yaml.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("failed to encode sample manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write sample manifest: %w", err)
	}
	return nil
}

func reportImport(out io.Writer, dir string) {
	mod, err := FindGoModule(dir)
	if err != nil {
		fmt.Fprintf(out, "Note: %s; add the package to a module requiring %s\n", err, FrameworkModule)
		return
	}
	importPath, err := mod.ImportPath(dir)
	if err == nil {
		fmt.Fprintf(out, "Import the module as %s\n", importPath)
	}
	if !mod.RequiresFramework {
		fmt.Fprintf(out, "Module %s does not require %s yet; run: go get %s\n", mod.Path, FrameworkModule, FrameworkModule)
	}
}
