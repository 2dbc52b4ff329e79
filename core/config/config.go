package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"collection-reconciler/core/logger"
	"collection-reconciler/core/reconcile"
	"collection-reconciler/core/server"
	"collection-reconciler/core/source"
	"collection-reconciler/core/storage"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Source is the database treated as the reference side.
	Source source.Config `mapstructure:"source"`
	// Target is the database compared against the source.
	Target source.Config `mapstructure:"target"`
	// Collections lists the collections to reconcile.
	Collections []CollectionConfig `mapstructure:"collections"`
	// Reconcile holds engine settings.
	Reconcile ReconcileConfig `mapstructure:"reconcile"`
	// Output controls where results are written.
	Output OutputConfig `mapstructure:"output"`
	// Server holds configuration for the HTTP server.
	Server server.Config `mapstructure:"server"`
	// Storage holds configuration for report archival (e.g., S3, Minio).
	Storage storage.Config `mapstructure:"storage"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`

	// LegacySource and LegacyTarget accept the source_db/target_db keys.
	LegacySource source.Config `mapstructure:"source_db"`
	LegacyTarget source.Config `mapstructure:"target_db"`
}

// CollectionConfig configures one collection.
type CollectionConfig struct {
	// Name is the collection (or table) name.
	Name string `mapstructure:"name"`
	// ExcludeFields lists field paths ignored during comparison.
	ExcludeFields []string `mapstructure:"exclude_fields"`
	// IdentityField overrides reconcile.identity_field for this collection.
	IdentityField string `mapstructure:"identity_field"`
	// IgnoreOrder compares sequences as multisets.
	IgnoreOrder bool `mapstructure:"ignore_order"`
}

// ReconcileConfig holds engine settings.
type ReconcileConfig struct {
	// IdentityField is the default identity field.
	IdentityField string `mapstructure:"identity_field" default:"_id"`
	// Concurrency bounds how many collections run at once.
	Concurrency int `mapstructure:"concurrency" default:"4"`
	// CacheTTLSeconds keeps fetched snapshots for HTTP requests. Zero disables caching.
	CacheTTLSeconds int `mapstructure:"cache_ttl_seconds" default:"0"`
}

// OutputConfig controls report delivery.
type OutputConfig struct {
	// Format is json, yaml or none for the stdout report.
	Format string `mapstructure:"format" default:"json"`
	// Archive uploads each report to object storage.
	Archive bool `mapstructure:"archive" default:"false"`
	// ArchivePrefix is the key prefix for archived reports.
	ArchivePrefix string `mapstructure:"archive_prefix" default:"reports"`
	// FailOnDiff makes the reconcile command exit non-zero when differences exist.
	FailOnDiff bool `mapstructure:"fail_on_diff" default:"false"`
}

var validFormats = map[string]struct{}{"json": {}, "yaml": {}, "none": {}}

// LoadConfig loads configuration from a config file in path (config.yaml,
// config.json, ...), environment variables and a .env file in path.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.AddConfigPath(path)
	return load(v, path)
}

// LoadConfigFile loads configuration from an explicit file. The .env file is
// read from the file's directory.
func LoadConfigFile(file string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(file)
	return load(v, filepath.Dir(file))
}

func load(v *viper.Viper, envDir string) (*Config, error) {
	// Ignore error if file doesn't exist (e.g. production)
	_ = godotenv.Overload(filepath.Join(envDir, ".env"))

	// Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")

	// Map environment variables to nested keys (e.g. SOURCE_HOST -> source.host)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if v.InConfig("source_db") && !v.InConfig("source") {
		config.Source = config.LegacySource
	}
	if v.InConfig("target_db") && !v.InConfig("target") {
		config.Target = config.LegacyTarget
	}

	return &config, nil
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	// If it's a pointer, get the element
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		// Skip if no tag
		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		// Lists come from the config file only; an empty default would
		// shadow them during decoding.
		if field.Type.Kind() == reflect.Slice {
			continue
		}

		defaultValue := field.Tag.Get("default")
		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, defaultValue)
	}
}

// Validate checks the whole configuration and reports every problem found.
func (c *Config) Validate() error {
	var errs []error

	if err := c.Source.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("source: %w", err))
	}
	if err := c.Target.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("target: %w", err))
	}

	if len(c.Collections) == 0 {
		errs = append(errs, errors.New("collections: at least one collection is required"))
	}

	seen := make(map[string]struct{}, len(c.Collections))
	for i, col := range c.Collections {
		if col.Name == "" {
			errs = append(errs, fmt.Errorf("collections[%d]: name is required", i))
			continue
		}
		if _, dup := seen[col.Name]; dup {
			errs = append(errs, fmt.Errorf("collections[%d]: %q is listed twice", i, col.Name))
		}
		seen[col.Name] = struct{}{}

		identity := c.identityFor(col)
		for _, field := range col.ExcludeFields {
			if strings.TrimSpace(field) == "" {
				errs = append(errs, fmt.Errorf("collections[%d]: empty exclude field", i))
			}
			if field == identity {
				errs = append(errs, fmt.Errorf("collections[%d]: identity field %q cannot be excluded", i, identity))
			}
		}
	}

	if c.Reconcile.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("reconcile.concurrency must be at least 1, got %d", c.Reconcile.Concurrency))
	}
	if c.Reconcile.CacheTTLSeconds < 0 {
		errs = append(errs, errors.New("reconcile.cache_ttl_seconds cannot be negative"))
	}
	if _, ok := validFormats[c.Output.Format]; !ok {
		errs = append(errs, fmt.Errorf("output.format %q is not one of json, yaml, none", c.Output.Format))
	}

	return errors.Join(errs...)
}

func (c *Config) identityFor(col CollectionConfig) string {
	if col.IdentityField != "" {
		return col.IdentityField
	}
	if c.Reconcile.IdentityField != "" {
		return c.Reconcile.IdentityField
	}
	return reconcile.DefaultIdentityField
}

// CollectionSpecs returns the reconcile specs in configuration order.
func (c *Config) CollectionSpecs() []reconcile.CollectionSpec {
	specs := make([]reconcile.CollectionSpec, 0, len(c.Collections))
	for _, col := range c.Collections {
		specs = append(specs, reconcile.CollectionSpec{
			Name:          col.Name,
			IdentityField: c.identityFor(col),
			ExcludeFields: col.ExcludeFields,
			IgnoreOrder:   col.IgnoreOrder,
		})
	}
	return specs
}

// SelectSpecs returns the specs for the named collections, in configuration
// order. An empty selection returns every spec.
func (c *Config) SelectSpecs(names []string) ([]reconcile.CollectionSpec, error) {
	all := c.CollectionSpecs()
	if len(names) == 0 {
		return all, nil
	}

	wanted := make(map[string]struct{}, len(names))
	for _, n := range names {
		wanted[n] = struct{}{}
	}

	var out []reconcile.CollectionSpec
	for _, spec := range all {
		if _, ok := wanted[spec.Name]; ok {
			out = append(out, spec)
			delete(wanted, spec.Name)
		}
	}
	if len(wanted) > 0 {
		var missing []string
		for n := range wanted {
			missing = append(missing, n)
		}
		sort.Strings(missing)
		return nil, fmt.Errorf("unknown collections: %s", strings.Join(missing, ", "))
	}
	return out, nil
}
