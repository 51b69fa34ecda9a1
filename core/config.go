package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	ServerConfig struct {
		Host            string
		Address         string
		DebugHost       string
		ReadTimeout     time.Duration
		WriteTimeout    time.Duration
		ShutdownTimeout time.Duration
	}

	// APIConfig points at the remote API holding students, assignments and submissions.
	APIConfig struct {
		BaseURL string
		Timeout time.Duration
	}

	SessionConfig struct {
		Backend       string // cookie | redis
		CookieName    string
		MaxAge        time.Duration
		Secure        bool
		RedisAddr     string
		RedisPassword string
		RedisDB       int
	}

	Config struct {
		Env      string
		Build    string
		AppName  string
		Debug    bool
		TestMode bool
		WorkDir  string

		SecretKey      string
		RollbarToken   string
		SendgridApiKey string
		AuditEmail     string

		Server  ServerConfig
		API     APIConfig
		Session SessionConfig

		defaultFromEmail string
	}
)

// NewConfig reads defaults, the optional `config/.env.<env>` file and the environment.
// Environment keys are prefixed with ENV, e.g. `DEV_API_BASEURL`.
func NewConfig() *Config {
	conf := viper.New()

	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("build", "dev")
	conf.SetDefault("appName", "Medical Coding")
	conf.SetDefault("secretKey", "k3q9-zt!mfw2$6p=ux&c0dh(r!b)#*q8(#ne7^$xlgs4amv")
	conf.SetDefault("defaultFromEmail", "noreply@localhost")
	conf.SetDefault("auditEmail", "audit@localhost")
	conf.SetDefault("rollbarToken", "")
	conf.SetDefault("sendgridApiKey", "")

	conf.SetDefault("server.host", "localhost")
	conf.SetDefault("server.address", ":8000")
	conf.SetDefault("server.debugHost", ":4000")
	conf.SetDefault("server.readTimeout", 5*time.Second)
	conf.SetDefault("server.writeTimeout", 10*time.Second)
	conf.SetDefault("server.shutdownTimeout", 5*time.Second)

	conf.SetDefault("api.baseURL", "http://localhost:5000")
	conf.SetDefault("api.timeout", 15*time.Second)

	conf.SetDefault("session.backend", "cookie")
	conf.SetDefault("session.cookieName", "user")
	conf.SetDefault("session.maxAge", 7*24*time.Hour)
	conf.SetDefault("session.secure", false)
	conf.SetDefault("session.redisAddr", "localhost:6379")
	conf.SetDefault("session.redisPassword", "")
	conf.SetDefault("session.redisDB", 0)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		conf.SetDefault("testMode", true)
	}
	conf.SetEnvPrefix(env)
	conf.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	wd := Getwd()

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	return &Config{
		Env:      env,
		Build:    conf.GetString("build"),
		AppName:  conf.GetString("appName"),
		Debug:    conf.GetBool("debug"),
		TestMode: conf.GetBool("testMode"),
		WorkDir:  wd,

		SecretKey:        conf.GetString("secretKey"),
		RollbarToken:     conf.GetString("rollbarToken"),
		SendgridApiKey:   conf.GetString("sendgridApiKey"),
		AuditEmail:       conf.GetString("auditEmail"),
		defaultFromEmail: conf.GetString("defaultFromEmail"),

		Server: ServerConfig{
			Host:            conf.GetString("server.host"),
			Address:         conf.GetString("server.address"),
			DebugHost:       conf.GetString("server.debugHost"),
			ReadTimeout:     conf.GetDuration("server.readTimeout"),
			WriteTimeout:    conf.GetDuration("server.writeTimeout"),
			ShutdownTimeout: conf.GetDuration("server.shutdownTimeout"),
		},
		API: APIConfig{
			BaseURL: strings.TrimRight(conf.GetString("api.baseURL"), "/"),
			Timeout: conf.GetDuration("api.timeout"),
		},
		Session: SessionConfig{
			Backend:       strings.ToLower(conf.GetString("session.backend")),
			CookieName:    conf.GetString("session.cookieName"),
			MaxAge:        conf.GetDuration("session.maxAge"),
			Secure:        conf.GetBool("session.secure"),
			RedisAddr:     conf.GetString("session.redisAddr"),
			RedisPassword: conf.GetString("session.redisPassword"),
			RedisDB:       conf.GetInt("session.redisDB"),
		},
	}
}

func (c *Config) DefaultFromEmail() mail.Address {
	return mail.Address{Name: c.AppName, Address: c.defaultFromEmail}
}

// NewTestConfig returns a config that never touches the environment.
func NewTestConfig() *Config {
	return &Config{
		Env:              "TEST",
		Build:            "test",
		AppName:          "Medical Coding",
		TestMode:         true,
		SecretKey:        "secret",
		AuditEmail:       "audit@test.cd",
		defaultFromEmail: "noreply@test.cd",
		Server: ServerConfig{
			Host:            "localhost",
			ShutdownTimeout: time.Second,
		},
		API: APIConfig{
			BaseURL: "http://localhost:5000",
			Timeout: 5 * time.Second,
		},
		Session: SessionConfig{
			Backend:    "cookie",
			CookieName: "user",
			MaxAge:     time.Hour,
		},
	}
}
