package config

import (
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const (
	// DatadirKey is the local data directory to store the internal state of
	// the daemon
	DatadirKey = "DATA_DIR_PATH"
	// LogLevelKey are the different logging levels. For reference on the values https://godoc.org/github.com/sirupsen/logrus#Level
	LogLevelKey = "LOG_LEVEL"
	// AuthorityKey is the identity owning the market record, allowed to
	// update parameters and resolve disputes
	AuthorityKey = "MARKET_AUTHORITY"
	// EscrowAccountKey is the ledger account holding funds in transit
	// between parties
	EscrowAccountKey = "ESCROW_ACCOUNT"
	// DbTypeKey is the storage backend to use. Either "badger" or "inmemory"
	DbTypeKey = "DB_TYPE"

	DbLocation = "db"
)

var vip *viper.Viper

func init() {
	vip = viper.New()
	vip.SetEnvPrefix("HASHMARKET")
	vip.AutomaticEnv()

	vip.SetDefault(LogLevelKey, 4)
	vip.SetDefault(DatadirKey, defaultDatadir())
	vip.SetDefault(EscrowAccountKey, "escrow")
	vip.SetDefault(DbTypeKey, "badger")
}

// GetString ...
func GetString(key string) string {
	return vip.GetString(key)
}

// GetInt ...
func GetInt(key string) int {
	return vip.GetInt(key)
}

// GetDatadir returns the data dir, creating it if missing.
func GetDatadir() string {
	return vip.GetString(DatadirKey)
}

// Validate makes sure the daemon is provided a meaningful configuration.
func Validate() error {
	if len(vip.GetString(AuthorityKey)) <= 0 {
		return fmt.Errorf("%s must be set", AuthorityKey)
	}

	dbType := vip.GetString(DbTypeKey)
	if dbType != "badger" && dbType != "inmemory" {
		return fmt.Errorf("%s must be either badger or inmemory", DbTypeKey)
	}

	return initDatadir()
}

func initDatadir() error {
	datadir := GetDatadir()
	if err := os.MkdirAll(filepath.Join(datadir, DbLocation), os.ModeDir|0755); err != nil {
		return err
	}
	return nil
}

func defaultDatadir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		log.WithError(err).Warn("cannot detect home directory, using the working directory")
		return ".hashmarketd"
	}
	return filepath.Join(home, ".hashmarketd")
}
