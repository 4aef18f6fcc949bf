package config

import (
	"fmt"

	"github.com/jinzhu/copier"
	dbutils "github.com/tendant/db-utils/db"
)

// DatabaseConfig holds PostgreSQL configuration for the dev backend
type DatabaseConfig struct {
	Host     string `env:"SKYCAST_PG_HOST" env-default:"localhost"`
	Port     uint16 `env:"SKYCAST_PG_PORT" env-default:"5432"`
	Database string `env:"SKYCAST_PG_DATABASE" env-default:"skycast_auth"`
	User     string `env:"SKYCAST_PG_USER" env-default:"skycast"`
	Password string `env:"SKYCAST_PG_PASSWORD" env-default:"pwd"`
}

// ToDatabaseURL converts the config to a PostgreSQL connection URL
func (d DatabaseConfig) ToDatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Database)
}

// ToDbConfig converts the config to a db-utils DbConfig
func (d DatabaseConfig) ToDbConfig() (dbutils.DbConfig, error) {
	var dbConfig dbutils.DbConfig
	if err := copier.Copy(&dbConfig, &d); err != nil {
		return dbutils.DbConfig{}, fmt.Errorf("failed to copy database config: %w", err)
	}
	return dbConfig, nil
}
