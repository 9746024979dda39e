package core

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	ServerConf struct {
		Host            string
		Port            string
		ShutdownTimeout time.Duration
	}

	DatabaseConf struct {
		Engine        string
		Name          string
		Host          string
		Port          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	Config struct {
		Env      string
		Debug    bool
		TestMode bool
		AppName  string
		Build    string

		SecretKey        []byte
		DefaultFromEmail string
		FrontendBaseURL  string

		// session policies; all minute-of-day based (see core/clock.go)
		JoinPastTolerance   time.Duration
		JoinFutureTolerance time.Duration
		LateTolerance       time.Duration
		MaterializeInterval time.Duration
		JWTExpirationDelta  time.Duration

		RollbarToken   string
		SendgridAPIKey string

		Server   ServerConf
		Database DatabaseConf
	}
)

func (c DatabaseConf) Address() string {
	return net.JoinHostPort(c.Host, c.Port)
}

func (c ServerConf) Address() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// NewConfig loads the app configuration from the environment with defaults
// suitable for local development. A `config/.env.<env>` file is loaded first
// if it exists.
func NewConfig() *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("appName", "ConvenientEdu")
	conf.SetDefault("build", "dev")
	conf.SetDefault("secretKey", "p0q5-wer)enb$+57=dz&uoxh2(h!x)#*c2(#yg4h^$cegm2emy")
	conf.SetDefault("defaultFromEmail", "noreply@localhost")
	conf.SetDefault("frontendBaseURL", "http://localhost:3000")
	conf.SetDefault("joinPastTolerance", 50*time.Minute)
	conf.SetDefault("joinFutureTolerance", 10*time.Minute)
	conf.SetDefault("lateTolerance", 10*time.Minute)
	conf.SetDefault("materializeInterval", 10*time.Minute)
	conf.SetDefault("jwtExpirationDelta", 7*24*time.Hour)
	conf.SetDefault("rollbarToken", "")
	conf.SetDefault("sendgridApiKey", "")
	conf.SetDefault("serverHost", "0.0.0.0")
	conf.SetDefault("serverPort", "8000")
	conf.SetDefault("serverShutdownTimeout", 5*time.Second)
	conf.SetDefault("databaseEngine", "postgres")
	conf.SetDefault("databaseName", "convenientedu")
	conf.SetDefault("databaseHost", "localhost")
	conf.SetDefault("databasePort", "5432")
	conf.SetDefault("databaseUser", "portal")
	conf.SetDefault("databasePassword", "portal")
	conf.SetDefault("databaseAdminUser", "")
	conf.SetDefault("databaseAdminPassword", "")
	conf.SetDefault("databaseDisableTLS", true)

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	if env == "" {
		env = "DEV"
	}
	conf.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			panic(fmt.Sprintf("config.godotenv(%s): %v", dotEnvPath, err))
		}
	}
	conf.AutomaticEnv()

	return &Config{
		Env:                 env,
		Debug:               conf.GetBool("debug"),
		TestMode:            env == "TEST",
		AppName:             conf.GetString("appName"),
		Build:               conf.GetString("build"),
		SecretKey:           []byte(conf.GetString("secretKey")),
		DefaultFromEmail:    conf.GetString("defaultFromEmail"),
		FrontendBaseURL:     conf.GetString("frontendBaseURL"),
		JoinPastTolerance:   conf.GetDuration("joinPastTolerance"),
		JoinFutureTolerance: conf.GetDuration("joinFutureTolerance"),
		LateTolerance:       conf.GetDuration("lateTolerance"),
		MaterializeInterval: conf.GetDuration("materializeInterval"),
		JWTExpirationDelta:  conf.GetDuration("jwtExpirationDelta"),
		RollbarToken:        conf.GetString("rollbarToken"),
		SendgridAPIKey:      conf.GetString("sendgridApiKey"),
		Server: ServerConf{
			Host:            conf.GetString("serverHost"),
			Port:            conf.GetString("serverPort"),
			ShutdownTimeout: conf.GetDuration("serverShutdownTimeout"),
		},
		Database: DatabaseConf{
			Engine:        conf.GetString("databaseEngine"),
			Name:          conf.GetString("databaseName"),
			Host:          conf.GetString("databaseHost"),
			Port:          conf.GetString("databasePort"),
			User:          conf.GetString("databaseUser"),
			Password:      conf.GetString("databasePassword"),
			AdminUser:     conf.GetString("databaseAdminUser"),
			AdminPassword: conf.GetString("databaseAdminPassword"),
			DisableTLS:    conf.GetBool("databaseDisableTLS"),
		},
	}
}
