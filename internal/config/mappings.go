package config

import (
	"fmt"
	"os"
	"sort"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"

	apperrors "github.com/welldanyogia/webrana-uploadable/internal/errors"
	"github.com/welldanyogia/webrana-uploadable/internal/mapping"
	"github.com/welldanyogia/webrana-uploadable/internal/validator"
)

// mappingEntry is one mapping as written in YAML. Flags and service ids
// are pointers so that unset values can be filled from the defaults;
// merging must not dereference them or an explicit false or "" would
// count as unset. A null value (~) is the same as leaving the key out.
type mappingEntry struct {
	UploadDestination string `yaml:"upload_destination"`
	URIPrefix         string `yaml:"uri_prefix"`
	Namer             *string `yaml:"namer"`
	DirectoryNamer    *string `yaml:"directory_namer"`
	DeleteOnRemove    *bool   `yaml:"delete_on_remove"`
	DeleteOnUpdate    *bool   `yaml:"delete_on_update"`
	InjectOnLoad      *bool   `yaml:"inject_on_load"`
}

type mappingsFile struct {
	Defaults mappingEntry            `yaml:"defaults"`
	Mappings map[string]mappingEntry `yaml:"mappings"`
}

func boolPtr(b bool) *bool { return &b }

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// builtinDefaults apply below the file's own defaults section
var builtinDefaults = mappingEntry{
	DeleteOnRemove: boolPtr(true),
	DeleteOnUpdate: boolPtr(true),
	InjectOnLoad:   boolPtr(false),
}

// LoadMappingsFile reads and parses an upload mappings YAML file
func LoadMappingsFile(path string) (mapping.Configs, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload mappings file: %w", err)
	}
	return ParseMappings(data)
}

// ParseMappings parses upload mappings from YAML. Each mapping inherits
// unset fields from the defaults section, then from the built-in
// defaults (delete_on_remove and delete_on_update on, inject_on_load off).
// An empty namer or directory_namer clears the one set by the defaults.
func ParseMappings(data []byte) (mapping.Configs, error) {
	var file mappingsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidMappingConfig, err)
	}
	if len(file.Mappings) == 0 {
		return nil, fmt.Errorf("%w: no mappings declared", apperrors.ErrInvalidMappingConfig)
	}

	defaults := file.Defaults
	if err := mergo.Merge(&defaults, builtinDefaults, mergo.WithoutDereference); err != nil {
		return nil, fmt.Errorf("failed to apply built-in mapping defaults: %w", err)
	}

	names := make([]string, 0, len(file.Mappings))
	for name := range file.Mappings {
		names = append(names, name)
	}
	sort.Strings(names)

	configs := make(mapping.Configs, len(file.Mappings))
	for _, name := range names {
		entry := file.Mappings[name]
		if err := mergo.Merge(&entry, defaults, mergo.WithoutDereference); err != nil {
			return nil, fmt.Errorf("failed to apply defaults to mapping %q: %w", name, err)
		}
		if err := validateEntry(name, entry); err != nil {
			return nil, err
		}
		configs[name] = mapping.Config{
			UploadDestination: entry.UploadDestination,
			URIPrefix:         entry.URIPrefix,
			Namer:             deref(entry.Namer),
			DirectoryNamer:    deref(entry.DirectoryNamer),
			DeleteOnRemove:    *entry.DeleteOnRemove,
			DeleteOnUpdate:    *entry.DeleteOnUpdate,
			InjectOnLoad:      *entry.InjectOnLoad,
		}
	}
	return configs, nil
}

func validateEntry(name string, e mappingEntry) error {
	if err := validator.ValidateMappingName(name); err != nil {
		return fmt.Errorf("%w: mapping %q: %v", apperrors.ErrInvalidMappingConfig, name, err)
	}
	if err := validator.ValidateDestination(e.UploadDestination); err != nil {
		return fmt.Errorf("%w: mapping %q: upload_destination: %v", apperrors.ErrInvalidMappingConfig, name, err)
	}
	if err := validator.ValidateServiceID(deref(e.Namer)); err != nil {
		return fmt.Errorf("%w: mapping %q: namer: %v", apperrors.ErrInvalidMappingConfig, name, err)
	}
	if err := validator.ValidateServiceID(deref(e.DirectoryNamer)); err != nil {
		return fmt.Errorf("%w: mapping %q: directory_namer: %v", apperrors.ErrInvalidMappingConfig, name, err)
	}
	return nil
}
