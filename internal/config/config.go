package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Port    int    `toml:"port"`
	DataDir string `toml:"data_dir"`

	OpenAIKey   string `toml:"openai_key"`
	OpenAIModel string `toml:"openai_model"`

	SMTPHost        string   `toml:"smtp_host"`
	SMTPPort        int      `toml:"smtp_port"`
	EmailUsername   string   `toml:"email_username"`
	EmailPassword   string   `toml:"email_password"`
	EmailRecipients []string `toml:"email_recipients"`

	ScreenshotAPIURL string `toml:"screenshot_api_url"`
	AlertSoundCmd    string `toml:"alert_sound_cmd"`

	// "file" (legacy JSON layout) or "sqlite"
	LedgerBackend string `toml:"ledger_backend"`

	// Postgres DSN for the analytics sink; empty = analytics off
	AnalyticsDSN string `toml:"analytics_dsn"`

	AdminPassword string `toml:"admin_password"`
	JWTSecret     string `toml:"jwt_secret"`
}

func Load() *Config {

	// Парсим PORT
	port, err := strconv.Atoi(os.Getenv("PORT"))
	if err != nil {
		port = 8080 // fallback
	}

	smtpPort, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil {
		smtpPort = 465
	}

	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = "gpt-4o-mini" // дефолтная модель
	}

	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}

	smtpHost := os.Getenv("SMTP_HOST")
	if smtpHost == "" {
		smtpHost = "smtp.gmail.com"
	}

	backend := os.Getenv("LEDGER_BACKEND")
	if backend == "" {
		backend = "file"
	}

	var recipients []string
	for _, r := range strings.Split(os.Getenv("EMAIL_RECIPIENTS"), ",") {
		if r = strings.TrimSpace(r); r != "" {
			recipients = append(recipients, r)
		}
	}

	cfg := &Config{
		Port:    port,
		DataDir: dataDir,

		OpenAIKey:   os.Getenv("OPENAI_API_KEY"),
		OpenAIModel: model,

		SMTPHost:        smtpHost,
		SMTPPort:        smtpPort,
		EmailUsername:   os.Getenv("EMAIL_USERNAME"),
		EmailPassword:   os.Getenv("EMAIL_PASSWORD"),
		EmailRecipients: recipients,

		ScreenshotAPIURL: os.Getenv("SCREENSHOT_API_URL"),
		AlertSoundCmd:    os.Getenv("ALERT_SOUND_CMD"),

		LedgerBackend: backend,
		AnalyticsDSN:  os.Getenv("ANALYTICS_DSN"),

		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
	}

	// Optional TOML overlay: values from the file win over env.
	if path := os.Getenv("ALIBI_CONFIG"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			log.Println("⚠️ Config file ignored:", err)
		}
	}

	return cfg
}

func (c *Config) mergeFile(path string) error {
	_, err := toml.DecodeFile(path, c)
	return err
}

func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}
