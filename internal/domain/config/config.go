package config

import (
	"net/url"
	"os"
	"strings"
	"time"

	domainerr "github.com/pbarilla/blog/internal/domain/errors"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Site    SiteConfig    `yaml:"site"`
	Content ContentConfig `yaml:"content"`
	Serve   ServeConfig   `yaml:"serve"`
	Render  RenderConfig  `yaml:"render"`
}

type SiteConfig struct {
	Title       string `yaml:"title"`
	Author      string `yaml:"author"`
	Description string `yaml:"description"`
}

type SourceMode string

const (
	SourceFS   SourceMode = "fs"
	SourceHTTP SourceMode = "http"
)

type ContentConfig struct {
	Mode      SourceMode `yaml:"mode"`
	Dir       string     `yaml:"dir"`
	BaseURL   string     `yaml:"base_url"`
	Catalog   string     `yaml:"catalog"`
	Extension string     `yaml:"extension"`
}

type ServeConfig struct {
	Addr      string `yaml:"addr"`
	StaticDir string `yaml:"static_dir"`
}

type RenderConfig struct {
	PollInterval Duration `yaml:"poll_interval"`
	ReadyTimeout Duration `yaml:"ready_timeout"`
}

// Duration parses "100ms" style strings from YAML.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func Default() Config {
	return Config{
		Site: SiteConfig{
			Title: "Blog",
		},
		Content: ContentConfig{
			Mode:      SourceFS,
			Dir:       "content",
			Catalog:   "posts.json",
			Extension: ".md",
		},
		Serve: ServeConfig{
			Addr: ":8080",
		},
		Render: RenderConfig{
			PollInterval: Duration(100 * time.Millisecond),
			ReadyTimeout: Duration(10 * time.Second),
		},
	}
}

func (c Config) Validate() error {
	var ve domainerr.ValidationError

	if strings.TrimSpace(c.Site.Title) == "" {
		ve.Add("site.title", "must not be empty")
	}

	switch c.Content.Mode {
	case "", SourceFS:
		if strings.TrimSpace(c.Content.Dir) == "" {
			ve.Add("content.dir", "must not be empty")
		}
	case SourceHTTP:
		if strings.TrimSpace(c.Content.BaseURL) == "" {
			ve.Add("content.base_url", "must not be empty")
		} else if !isValidAbsURL(c.Content.BaseURL) {
			ve.Add("content.base_url", "must be a valid absolute URL")
		}
	default:
		ve.Add("content.mode", "must be 'fs' or 'http'")
	}

	if strings.TrimSpace(c.Content.Catalog) == "" {
		ve.Add("content.catalog", "must not be empty")
	}
	if ext := strings.TrimSpace(c.Content.Extension); ext != "" && !strings.HasPrefix(ext, ".") {
		ve.Add("content.extension", "must start with '.'")
	}

	if strings.TrimSpace(c.Serve.Addr) == "" {
		ve.Add("serve.addr", "must not be empty")
	}

	if c.Render.PollInterval < 0 {
		ve.Add("render.poll_interval", "must not be negative")
	}
	if c.Render.ReadyTimeout < 0 {
		ve.Add("render.ready_timeout", "must not be negative")
	}

	if ve.HasAny() {
		return ve
	}
	return nil
}

func isValidAbsURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != ""
}

func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	// Unmarshal over Default(): fields present in the file override the
	// defaults, everything else keeps them.
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func LoadOrDefault(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if err := cfg.Validate(); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
