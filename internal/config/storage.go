package config

import (
	"sync"

	"github.com/spf13/viper"
)

type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

var (
	storageConfig *StorageConfig
	storageOnce   sync.Once
)

func LoadStorageConfig() *StorageConfig {
	storageOnce.Do(func() {
		storageConfig = newStorageConfig(environment())
	})
	return storageConfig
}

func newStorageConfig(v *viper.Viper) *StorageConfig {
	return &StorageConfig{
		Endpoint:  v.GetString("storage_endpoint"),
		AccessKey: v.GetString("storage_access_key"),
		SecretKey: v.GetString("storage_secret_key"),
		Bucket:    v.GetString("storage_bucket"),
		UseSSL:    v.GetBool("storage_use_ssl"),
	}
}
