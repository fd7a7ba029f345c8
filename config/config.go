package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	"github.com/mrsingh-rishi/voicescribe/stt"
)

// Server configures the proxy endpoint.
type Server struct {
	Port       string
	GroqAPIKey string
	GroqAPIURL string
	Model      string
	JWTSecret  string
}

// Client configures the terminal recorder.
type Client struct {
	ServerURL   string
	Direct      bool
	APIKey      string
	BaseURL     string
	Model       string
	JWTSecret   string
	OutDir      string
	LogFile     string
	Interval    time.Duration
	MinInterval time.Duration
	MinSize     int
	SampleRate  int
}

// LoadDotEnv loads .env files into the process environment when present.
func LoadDotEnv(files ...string) {
	if err := godotenv.Load(files...); err != nil {
		log.Println("No .env file found, falling back to environment variables")
	}
}

func LoadServer() (Server, error) {
	cfg := Server{
		Port:       getenv("PORT", "3000"),
		GroqAPIKey: os.Getenv("GROQ_API_KEY"),
		GroqAPIURL: getenv("GROQ_API_URL", stt.DefaultGroqURL),
		Model:      getenv("TRANSCRIPTION_MODEL", stt.DefaultModel),
		JWTSecret:  os.Getenv("PROXY_JWT_SECRET"),
	}
	if _, err := strconv.Atoi(cfg.Port); err != nil {
		return cfg, errors.Wrapf(err, "PORT %q", cfg.Port)
	}
	if cfg.GroqAPIKey == "" {
		// not fatal: the endpoint reports the missing key per request
		log.Println("GROQ_API_KEY is not set, transcription requests will fail")
	}
	return cfg, nil
}

// LoadClient reads client defaults from the environment; flags override them.
func LoadClient() (Client, error) {
	cfg := Client{
		ServerURL:   getenv("VOICESCRIBE_SERVER", "http://localhost:3000"),
		APIKey:      os.Getenv("GROQ_API_KEY"),
		BaseURL:     getenv("GROQ_BASE_URL", stt.DefaultGroqBase),
		Model:       getenv("TRANSCRIPTION_MODEL", stt.DefaultModel),
		JWTSecret:   os.Getenv("PROXY_JWT_SECRET"),
		OutDir:      getenv("VOICESCRIBE_OUT", "."),
		LogFile:     getenv("VOICESCRIBE_LOG", "voicescribe.log"),
		Interval:    time.Second,
		MinInterval: 4 * time.Second,
		MinSize:     500,
		SampleRate:  16000,
	}

	var err error
	if cfg.Direct, err = getbool("VOICESCRIBE_DIRECT", false); err != nil {
		return cfg, err
	}
	if cfg.Interval, err = getduration("VOICESCRIBE_INTERVAL", cfg.Interval); err != nil {
		return cfg, err
	}
	if cfg.MinInterval, err = getduration("VOICESCRIBE_MIN_INTERVAL", cfg.MinInterval); err != nil {
		return cfg, err
	}
	if cfg.MinSize, err = getint("VOICESCRIBE_MIN_SIZE", cfg.MinSize); err != nil {
		return cfg, err
	}
	if cfg.SampleRate, err = getint("VOICESCRIBE_SAMPLE_RATE", cfg.SampleRate); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks values that flags may have changed after loading.
func (c Client) Validate() error {
	switch {
	case c.Interval <= 0:
		return errors.New("capture interval must be positive")
	case c.MinInterval < 0:
		return errors.New("minimum send interval must not be negative")
	case c.MinSize < 0:
		return errors.New("minimum size must not be negative")
	case c.SampleRate <= 0:
		return errors.New("sample rate must be positive")
	case !c.Direct && c.ServerURL == "":
		return errors.New("server url is required unless running direct")
	}
	return nil
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getint(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, errors.Wrapf(err, "%s", key)
	}
	return n, nil
}

func getbool(key string, def bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, errors.Wrapf(err, "%s", key)
	}
	return b, nil
}

func getduration(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def, errors.Wrapf(err, "%s", key)
	}
	return d, nil
}
