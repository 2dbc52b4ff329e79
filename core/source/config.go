package source

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"collection-reconciler/core/database"
)

const (
	DriverMongoDB  = "mongodb"
	DriverMySQL    = database.DriverMySQL
	DriverPostgres = database.DriverPostgres
	DriverDynamoDB = "dynamodb"
)

// Config describes one side of a reconciliation.
type Config struct {
	// Driver selects the database kind (mongodb, mysql, postgres, dynamodb).
	Driver string `mapstructure:"driver" default:"mongodb"`
	// URI is a full connection string. When set, Host/Port/credentials are ignored.
	URI string `mapstructure:"uri" default:""`
	// Host is the database host.
	Host string `mapstructure:"host" default:"localhost"`
	// Port is the database port. Zero selects the driver default.
	Port int `mapstructure:"port" default:"0"`
	// Username is the database user.
	Username string `mapstructure:"username" default:""`
	// Password is the database password.
	Password string `mapstructure:"password" default:""`
	// AuthSource is the MongoDB authentication database.
	AuthSource string `mapstructure:"authsource" default:"admin"`
	// Database is the database (or schema) name.
	Database string `mapstructure:"db_name" default:""`
	// Region is the AWS region for DynamoDB.
	Region string `mapstructure:"region" default:""`
	// Endpoint overrides the DynamoDB endpoint (e.g., DynamoDB Local).
	Endpoint string `mapstructure:"endpoint" default:""`
	// SSLMode is passed to postgres connections.
	SSLMode string `mapstructure:"ssl_mode" default:"disable"`
	// TimeoutSeconds bounds connection setup and the initial ping.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}

// Validate checks that the config names a supported driver and enough
// connection details to reach it.
func (c Config) Validate() error {
	var errs []error

	switch c.Driver {
	case DriverMongoDB, DriverMySQL, DriverPostgres:
		if c.URI == "" && c.Host == "" {
			errs = append(errs, errors.New("host or uri is required"))
		}
		if c.Database == "" && (c.Driver != DriverMongoDB || c.URI == "") {
			errs = append(errs, errors.New("db_name is required"))
		}
	case DriverDynamoDB:
	default:
		errs = append(errs, fmt.Errorf("unsupported driver %q", c.Driver))
	}

	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d is out of range", c.Port))
	}

	return errors.Join(errs...)
}

// MongoURI returns the connection string for MongoDB.
func (c Config) MongoURI() string {
	if c.URI != "" {
		return c.URI
	}
	port := c.Port
	if port == 0 {
		port = 27017
	}

	u := url.URL{
		Scheme: "mongodb",
		Host:   c.Host + ":" + strconv.Itoa(port),
		Path:   "/",
	}
	if c.Username != "" {
		u.User = url.UserPassword(c.Username, c.Password)
		if c.AuthSource != "" {
			u.RawQuery = url.Values{"authSource": []string{c.AuthSource}}.Encode()
		}
	}
	return u.String()
}

// DatabaseConfig maps this config onto a SQL connection config.
func (c Config) DatabaseConfig() database.Config {
	return database.Config{
		Host:           c.Host,
		Port:           c.Port,
		User:           c.Username,
		Password:       c.Password,
		Name:           c.Database,
		Driver:         c.Driver,
		SSLMode:        c.SSLMode,
		TimeoutSeconds: c.TimeoutSeconds,
	}
}

func (c Config) timeoutSeconds() int {
	if c.TimeoutSeconds <= 0 {
		return 30
	}
	return c.TimeoutSeconds
}
