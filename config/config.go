package config

import (
	json "encoding/json"
	"flag"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/mysql"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

var configFilePath = flag.String("config_filepath", "./config/config.json", "")
var initiated bool = false

const DEVELOPMENT = "development"

type Configuration struct {
	Env        string `json:"env"`
	Port       int    `json:"port"`
	DbHost     string `json:"db_host"`
	DbPort     int    `json:"db_port"`
	DbUser     string `json:"db_user"`
	DbName     string `json:"db_name"`
	DbPassword string `json:"db_password"`

	// Analysis tunables. Zero values are replaced with the documented
	// defaults so an older config file keeps its behavior.
	MaxQueryLimit         int `json:"max_query_limit"`
	MinConversionsDefault int `json:"min_conversions_default"`
	SessionTimeoutMinutes int `json:"session_timeout_minutes"`
	TitleTruncateLen      int `json:"title_truncate_len"`
	ContentTruncateLen    int `json:"content_truncate_len"`
}

type Services struct {
	Db *gorm.DB
}

var configuration *Configuration = nil
var services *Services = nil

func initFlags() {
	flag.Parse()
}

func initLogging() {
	// Log as JSON instead of the default ASCII formatter.
	log.SetFormatter(&log.JSONFormatter{})
}

func initConfigFromFile() error {
	configFileAbsPath, _ := filepath.Abs(*configFilePath)
	raw, err := ioutil.ReadFile(configFileAbsPath)
	if err != nil {
		log.WithFields(log.Fields{"file": configFileAbsPath}).Error("Failed to load config")
		return err
	}

	json.Unmarshal(raw, &configuration)
	applyDefaults(configuration)
	log.WithFields(log.Fields{"file": configFileAbsPath, "config": &configuration}).Info("Config File Loaded")
	return nil
}

func applyDefaults(c *Configuration) {
	if c.MaxQueryLimit <= 0 {
		c.MaxQueryLimit = 5000
	}
	if c.MinConversionsDefault <= 0 {
		c.MinConversionsDefault = 5
	}
	if c.SessionTimeoutMinutes <= 0 {
		c.SessionTimeoutMinutes = 30
	}
	if c.TitleTruncateLen <= 0 {
		c.TitleTruncateLen = 20
	}
	if c.ContentTruncateLen <= 0 {
		c.ContentTruncateLen = 15
	}
}

// initEnvOverrides lets deployments override database credentials without
// editing the config file. The .env file is optional.
func initEnvOverrides() {
	godotenv.Load()

	if v := os.Getenv("DB_HOST"); v != "" {
		configuration.DbHost = v
	}
	if v := os.Getenv("DB_USER"); v != "" {
		configuration.DbUser = v
	}
	if v := os.Getenv("DB_NAME"); v != "" {
		configuration.DbName = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		configuration.DbPassword = v
	}
}

func initServices() error {
	db, err := gorm.Open("mysql", fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=true",
		configuration.DbUser,
		configuration.DbPassword,
		configuration.DbHost,
		configuration.DbPort,
		configuration.DbName))
	if err != nil {
		log.WithFields(log.Fields{"err": err}).Error("Failed Db Initialization")
		return err
	}

	// Connection Pooling.
	db.DB().SetMaxIdleConns(10)
	db.DB().SetMaxOpenConns(100)

	log.Info("Db Service initialized")

	services = &Services{Db: db}
	return nil
}

func Init() error {
	if initiated {
		return fmt.Errorf("Config already initialized")
	}
	initFlags()
	initLogging()
	err := initConfigFromFile()
	if err != nil {
		return err
	}
	initEnvOverrides()

	err = initServices()
	if err != nil {
		return err
	}

	initiated = true
	return nil
}

// InitTest sets up configuration with defaults and no database, for
// tests that exercise request handling without a live store.
func InitTest() {
	initLogging()
	configuration = &Configuration{Env: DEVELOPMENT, Port: 8080}
	applyDefaults(configuration)
}

func IsDevelopment() bool {
	return configuration != nil && configuration.Env == DEVELOPMENT
}

func GetConfig() *Configuration {
	return configuration
}

func GetServices() *Services {
	return services
}
