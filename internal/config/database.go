package config

import (
	"fmt"
	"sync"

	"github.com/spf13/viper"
)

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	TimeZone string
}

var (
	dbConfig *DBConfig
	dbOnce   sync.Once
)

func LoadDBConfig() *DBConfig {
	dbOnce.Do(func() {
		dbConfig = newDBConfig(environment())
	})
	return dbConfig
}

func newDBConfig(v *viper.Viper) *DBConfig {
	return &DBConfig{
		Host:     v.GetString("db_host"),
		Port:     v.GetString("db_port"),
		User:     v.GetString("db_user"),
		Password: v.GetString("db_password"),
		Name:     v.GetString("db_name"),
		SSLMode:  v.GetString("db_sslmode"),
		TimeZone: v.GetString("db_timezone"),
	}
}

// DSN renders the connection string understood by the pgx driver.
func (c *DBConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		c.Host,
		c.User,
		c.Password,
		c.Name,
		c.Port,
		c.SSLMode,
		c.TimeZone,
	)
}
