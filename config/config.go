package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Service struct {
	URL string `mapstructure:"url"`
}

type TTSService struct {
	URL     string `mapstructure:"url"`
	Voice   string `mapstructure:"voice"`
	Timeout int    `mapstructure:"timeout"` // seconds
}

type Services struct {
	ASR Service    `mapstructure:"asr"`
	TTS TTSService `mapstructure:"tts"`
}

type Audio struct {
	SampleRate int `mapstructure:"sample_rate"`
	FrameSize  int `mapstructure:"frame_size"`
}

type LipSync struct {
	Library       string `mapstructure:"library"`
	RequireNative bool   `mapstructure:"require_native"`
}

type Export struct {
	Formats []string `mapstructure:"formats"`
}

// Model describes one transcription model the speech session can load.
type Model struct {
	Backend  string `mapstructure:"backend"` // "openai" or "remote"
	Model    string `mapstructure:"model"`
	URL      string `mapstructure:"url"`
	APIKey   string `mapstructure:"api_key"`
	Language string `mapstructure:"language"`
}

type Speech struct {
	DefaultModel string           `mapstructure:"default_model"`
	Models       map[string]Model `mapstructure:"models"`
}

type Server struct {
	Addr string `mapstructure:"addr"`
}

type Root struct {
	Pipeline struct {
		Name      string `mapstructure:"name"`
		Version   string `mapstructure:"version"`
		LogLvl    string `mapstructure:"log_level"`
		LogFormat string `mapstructure:"log_format"`
	} `mapstructure:"pipeline"`
	Audio    Audio    `mapstructure:"audio"`
	LipSync  LipSync  `mapstructure:"lipsync"`
	Export   Export   `mapstructure:"export"`
	Services Services `mapstructure:"services"`
	Speech   Speech   `mapstructure:"speech"`
	Server   Server   `mapstructure:"server"`
	Paths    struct {
		Outputs string `mapstructure:"outputs"`
		History string `mapstructure:"history"`
	} `mapstructure:"paths"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("pipeline.name", "lipsync-pipeline")
	v.SetDefault("pipeline.version", "1.0")
	v.SetDefault("pipeline.log_level", "info")
	v.SetDefault("pipeline.log_format", "text")
	v.SetDefault("audio.sample_rate", 48000)
	v.SetDefault("audio.frame_size", 1024)
	v.SetDefault("lipsync.library", "")
	v.SetDefault("lipsync.require_native", false)
	v.SetDefault("export.formats", []string{"json", "csv"})
	v.SetDefault("services.asr.url", "http://localhost:9000")
	v.SetDefault("services.tts.url", "http://localhost:5000")
	v.SetDefault("services.tts.voice", "")
	v.SetDefault("services.tts.timeout", 30)
	v.SetDefault("speech.default_model", "whisper-1")
	v.SetDefault("speech.models", map[string]any{
		"whisper-1": map[string]any{"backend": "openai", "model": "whisper-1", "language": "en"},
	})
	v.SetDefault("server.addr", ":8000")
	v.SetDefault("paths.outputs", "outputs")
	v.SetDefault("paths.history", "")
}

// Load reads the YAML config. An explicit path wins; otherwise the
// environment-specific locations are tried. A missing file leaves defaults
// and LIPSYNC_* environment overrides in effect.
func Load(path string) (*Root, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("LIPSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		path = guess()
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	var cfg Root
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func guess() string {
	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	for _, p := range []string{
		filepath.Join("config", env, "config.yaml"),
		filepath.Join("src", "shared", "config.yaml"),
	} {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func DurSeconds(n int) time.Duration { return time.Duration(n) * time.Second }
