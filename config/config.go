package config

import (
	"os"
	"path/filepath"
	"reelsmith/internal/appdirs"

	"github.com/BurntSushi/toml"
)

type Server struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

type App struct {
	// Proxy for outbound HTTP clients, empty means direct.
	Proxy string `toml:"proxy"`
}

type Queue struct {
	// RedisAddr enables the asynq-backed queue. Empty falls back to the
	// in-process task runner.
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	Concurrency   int    `toml:"concurrency"`
}

type Oss struct {
	Enabled         bool   `toml:"enabled"`
	Endpoint        string `toml:"endpoint"`
	Region          string `toml:"region"`
	Bucket          string `toml:"bucket"`
	AccessKeyID     string `toml:"access_key_id"`
	AccessKeySecret string `toml:"access_key_secret"`
	// AssetPrefix is the object-key prefix of the clip bank.
	AssetPrefix string `toml:"asset_prefix"`
	// OutputPrefix is where rendered videos and thumbnails are uploaded.
	OutputPrefix string `toml:"output_prefix"`
}

type Ocr struct {
	// Backend selects the primary recognizer: "tesseract" or "remote".
	Backend        string   `toml:"backend"`
	Languages      []string `toml:"languages"`
	RemoteURL      string   `toml:"remote_url"`
	RemoteAPIKey   string   `toml:"remote_api_key"`
	TimeoutSecond  int      `toml:"timeout_second"`
	MinConfidence  float64  `toml:"min_confidence"`
	MaxSampleDepth int      `toml:"max_sample_depth"`
}

type Captioner struct {
	BaseUrl        string `toml:"base_url"`
	ApiKey         string `toml:"api_key"`
	Model          string `toml:"model"`
	TimeoutSecond  int    `toml:"timeout_second"`
	CandidateCount int    `toml:"candidate_count"`
}

type Render struct {
	RegionPadding  int     `toml:"region_padding"`
	FallbackTopPct float64 `toml:"fallback_top_pct"`
	WatermarkLabel string  `toml:"watermark_label"`
	LogoPath       string  `toml:"logo_path"`
	FontPath       string  `toml:"font_path"`
}

type Selection struct {
	// MaxBatch caps how many videos one batch request may generate.
	MaxBatch int `toml:"max_batch"`
}

type Config struct {
	Server    Server    `toml:"server"`
	App       App       `toml:"app"`
	Queue     Queue     `toml:"queue"`
	Oss       Oss       `toml:"oss"`
	Ocr       Ocr       `toml:"ocr"`
	Captioner Captioner `toml:"captioner"`
	Render    Render    `toml:"render"`
	Selection Selection `toml:"selection"`
}

var Conf Config

var resolveConfigPath = func() (string, error) {
	paths, err := appdirs.Resolve()
	if err != nil {
		return "", err
	}
	return paths.ConfigFile, nil
}

func ResolveConfigPath() (string, error) {
	return resolveConfigPath()
}

func defaultConfig() Config {
	return Config{
		Server: Server{
			Host: "127.0.0.1",
			Port: 8888,
		},
		Queue: Queue{
			Concurrency: 3,
		},
		Ocr: Ocr{
			Backend:        "tesseract",
			Languages:      []string{"eng"},
			TimeoutSecond:  30,
			MinConfidence:  30,
			MaxSampleDepth: 12,
		},
		Captioner: Captioner{
			Model:          "gpt-4o-mini",
			TimeoutSecond:  45,
			CandidateCount: 8,
		},
		Render: Render{
			RegionPadding:  25,
			FallbackTopPct: 0.25,
			WatermarkLabel: "Reelsmith",
		},
		Selection: Selection{
			MaxBatch: 10,
		},
	}
}

// LoadOrCreateConfig loads the config file, writing the default one first
// when it does not exist. The returned bool reports whether a new file was
// created.
func LoadOrCreateConfig() (bool, error) {
	configPath, err := resolveConfigPath()
	if err != nil {
		return false, err
	}

	if _, err = os.Stat(configPath); os.IsNotExist(err) {
		Conf = defaultConfig()
		if err = SaveConfig(); err != nil {
			return false, err
		}
		return true, nil
	}

	if _, err = toml.DecodeFile(configPath, &Conf); err != nil {
		return false, err
	}
	applyDefaults(&Conf)
	return false, nil
}

// SaveConfig writes the current Conf to the resolved config path, creating
// parent directories as needed.
func SaveConfig() error {
	configPath, err := resolveConfigPath()
	if err != nil {
		return err
	}

	if err = os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return err
	}

	file, err := os.Create(configPath)
	if err != nil {
		return err
	}
	defer file.Close()

	return toml.NewEncoder(file).Encode(Conf)
}

// applyDefaults backfills zero values so a hand-trimmed config file still
// yields a runnable setup.
func applyDefaults(c *Config) {
	def := defaultConfig()
	if c.Server.Host == "" {
		c.Server.Host = def.Server.Host
	}
	if c.Server.Port == 0 {
		c.Server.Port = def.Server.Port
	}
	if c.Queue.Concurrency <= 0 {
		c.Queue.Concurrency = def.Queue.Concurrency
	}
	if c.Ocr.Backend == "" {
		c.Ocr.Backend = def.Ocr.Backend
	}
	if len(c.Ocr.Languages) == 0 {
		c.Ocr.Languages = def.Ocr.Languages
	}
	if c.Ocr.TimeoutSecond <= 0 {
		c.Ocr.TimeoutSecond = def.Ocr.TimeoutSecond
	}
	if c.Ocr.MinConfidence <= 0 {
		c.Ocr.MinConfidence = def.Ocr.MinConfidence
	}
	if c.Ocr.MaxSampleDepth <= 0 {
		c.Ocr.MaxSampleDepth = def.Ocr.MaxSampleDepth
	}
	if c.Captioner.Model == "" {
		c.Captioner.Model = def.Captioner.Model
	}
	if c.Captioner.TimeoutSecond <= 0 {
		c.Captioner.TimeoutSecond = def.Captioner.TimeoutSecond
	}
	if c.Captioner.CandidateCount <= 0 {
		c.Captioner.CandidateCount = def.Captioner.CandidateCount
	}
	if c.Render.RegionPadding <= 0 {
		c.Render.RegionPadding = def.Render.RegionPadding
	}
	if c.Render.FallbackTopPct <= 0 {
		c.Render.FallbackTopPct = def.Render.FallbackTopPct
	}
	if c.Render.WatermarkLabel == "" {
		c.Render.WatermarkLabel = def.Render.WatermarkLabel
	}
	if c.Selection.MaxBatch <= 0 {
		c.Selection.MaxBatch = def.Selection.MaxBatch
	}
}
