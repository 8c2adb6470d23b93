package mapping

// Config is one named upload mapping from the static configuration
type Config struct {
	// UploadDestination is the storage prefix (directory or key prefix)
	// files of this mapping are written under
	UploadDestination string `yaml:"upload_destination" json:"upload_destination"`
	// URIPrefix is prepended to the storage key to build public URIs
	URIPrefix string `yaml:"uri_prefix" json:"uri_prefix"`
	// Namer is a service id; empty means the original filename is kept
	Namer string `yaml:"namer" json:"namer,omitempty"`
	// DirectoryNamer is a service id; empty means no subdirectory
	DirectoryNamer string `yaml:"directory_namer" json:"directory_namer,omitempty"`
	DeleteOnRemove bool   `yaml:"delete_on_remove" json:"delete_on_remove"`
	DeleteOnUpdate bool   `yaml:"delete_on_update" json:"delete_on_update"`
	InjectOnLoad   bool   `yaml:"inject_on_load" json:"inject_on_load"`
}

// Configs maps a mapping name to its configuration
type Configs map[string]Config

// Clone returns an independent copy
func (c Configs) Clone() Configs {
	out := make(Configs, len(c))
	for name, cfg := range c {
		out[name] = cfg
	}
	return out
}

// Lookup returns the configuration of a mapping
func (c Configs) Lookup(name string) (Config, bool) {
	cfg, ok := c[name]
	return cfg, ok
}
