package runtimeconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// fileSchema constrains the on-disk JSON config before it is decoded into
// Config, so typos surface with a location instead of silently defaulting.
const fileSchema = `{
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "title": {"type": "string"},
    "destination_folder": {"type": "string"},
    "max_blocks_per_request": {"type": "integer", "minimum": 2},
    "markdown": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "extensions": {"type": "array", "items": {"type": "string"}}
      }
    },
    "diagram": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "enabled": {"type": "boolean"},
        "server_url": {"type": "string"},
        "theme": {"type": "string"},
        "background_color": {"type": "string"},
        "width": {"type": "integer", "minimum": 0},
        "height": {"type": "integer", "minimum": 0},
        "timeout": {"type": "string"}
      }
    },
    "media": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "image_base_dir": {"type": "string"},
        "download_remote_images": {"type": "boolean"},
        "max_fetch_bytes": {"type": "integer", "minimum": 0},
        "fetch_timeout": {"type": "string"}
      }
    },
    "remote": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "base_url": {"type": "string"},
        "web_base_url": {"type": "string"},
        "app_id": {"type": "string"},
        "app_secret": {"type": "string"},
        "timeout": {"type": "string"},
        "transfer_owner_to": {"type": "string"}
      }
    },
    "state": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "enabled": {"type": "boolean"},
        "path": {"type": "string"}
      }
    },
    "logging": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "provider": {"type": "string"},
        "level": {"type": "string"},
        "format": {"type": "string"},
        "add_source": {"type": "boolean"},
        "focus": {"type": "array", "items": {"type": "string"}}
      }
    }
  }
}`

type fileConfig struct {
	Title               string `json:"title"`
	DestinationFolder   string `json:"destination_folder"`
	MaxBlocksPerRequest int    `json:"max_blocks_per_request"`
	Markdown            struct {
		Extensions []string `json:"extensions"`
	} `json:"markdown"`
	Diagram struct {
		Enabled         bool   `json:"enabled"`
		ServerURL       string `json:"server_url"`
		Theme           string `json:"theme"`
		BackgroundColor string `json:"background_color"`
		Width           int    `json:"width"`
		Height          int    `json:"height"`
		Timeout         string `json:"timeout"`
	} `json:"diagram"`
	Media struct {
		ImageBaseDir         string `json:"image_base_dir"`
		DownloadRemoteImages *bool  `json:"download_remote_images"`
		MaxFetchBytes        int64  `json:"max_fetch_bytes"`
		FetchTimeout         string `json:"fetch_timeout"`
	} `json:"media"`
	Remote struct {
		BaseURL         string `json:"base_url"`
		WebBaseURL      string `json:"web_base_url"`
		AppID           string `json:"app_id"`
		AppSecret       string `json:"app_secret"`
		Timeout         string `json:"timeout"`
		TransferOwnerTo string `json:"transfer_owner_to"`
	} `json:"remote"`
	State struct {
		Enabled *bool  `json:"enabled"`
		Path    string `json:"path"`
	} `json:"state"`
	Logging struct {
		Provider  string   `json:"provider"`
		Level     string   `json:"level"`
		Format    string   `json:"format"`
		AddSource bool     `json:"add_source"`
		Focus     []string `json:"focus"`
	} `json:"logging"`
}

// LoadFile reads a JSON config file, validates it against the embedded
// schema, and layers it over DefaultConfig.
func LoadFile(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("docsync config: read %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse validates and decodes a raw JSON config document.
func Parse(raw []byte) (Config, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("config.json", strings.NewReader(fileSchema)); err != nil {
		return Config{}, fmt.Errorf("docsync config: register schema: %w", err)
	}
	schema, err := compiler.Compile("config.json")
	if err != nil {
		return Config{}, fmt.Errorf("docsync config: compile schema: %w", err)
	}

	var document any
	if err := json.Unmarshal(raw, &document); err != nil {
		return Config{}, fmt.Errorf("docsync config: parse json: %w", err)
	}
	if err := schema.Validate(document); err != nil {
		return Config{}, fmt.Errorf("docsync config: invalid config file: %w", err)
	}

	var file fileConfig
	if err := json.Unmarshal(raw, &file); err != nil {
		return Config{}, fmt.Errorf("docsync config: decode config: %w", err)
	}
	return file.apply(DefaultConfig())
}

func (f fileConfig) apply(cfg Config) (Config, error) {
	if f.Title != "" {
		cfg.Title = f.Title
	}
	if f.DestinationFolder != "" {
		cfg.DestinationFolder = f.DestinationFolder
	}
	if f.MaxBlocksPerRequest != 0 {
		cfg.MaxBlocksPerRequest = f.MaxBlocksPerRequest
	}
	if len(f.Markdown.Extensions) > 0 {
		cfg.Markdown.Extensions = f.Markdown.Extensions
	}

	cfg.Diagram.Enabled = f.Diagram.Enabled
	if f.Diagram.ServerURL != "" {
		cfg.Diagram.ServerURL = f.Diagram.ServerURL
	}
	if f.Diagram.Theme != "" {
		cfg.Diagram.Theme = f.Diagram.Theme
	}
	if f.Diagram.BackgroundColor != "" {
		cfg.Diagram.BackgroundColor = f.Diagram.BackgroundColor
	}
	if f.Diagram.Width != 0 {
		cfg.Diagram.Width = f.Diagram.Width
	}
	if f.Diagram.Height != 0 {
		cfg.Diagram.Height = f.Diagram.Height
	}
	if err := applyDuration(&cfg.Diagram.Timeout, f.Diagram.Timeout, "diagram.timeout"); err != nil {
		return Config{}, err
	}

	if f.Media.ImageBaseDir != "" {
		cfg.Media.ImageBaseDir = f.Media.ImageBaseDir
	}
	if f.Media.DownloadRemoteImages != nil {
		cfg.Media.DownloadRemoteImages = *f.Media.DownloadRemoteImages
	}
	if f.Media.MaxFetchBytes != 0 {
		cfg.Media.MaxFetchBytes = f.Media.MaxFetchBytes
	}
	if err := applyDuration(&cfg.Media.FetchTimeout, f.Media.FetchTimeout, "media.fetch_timeout"); err != nil {
		return Config{}, err
	}

	if f.Remote.BaseURL != "" {
		cfg.Remote.BaseURL = f.Remote.BaseURL
	}
	if f.Remote.WebBaseURL != "" {
		cfg.Remote.WebBaseURL = f.Remote.WebBaseURL
	}
	if f.Remote.AppID != "" {
		cfg.Remote.AppID = f.Remote.AppID
	}
	if f.Remote.AppSecret != "" {
		cfg.Remote.AppSecret = f.Remote.AppSecret
	}
	if f.Remote.TransferOwnerTo != "" {
		cfg.Remote.TransferOwnerTo = f.Remote.TransferOwnerTo
	}
	if err := applyDuration(&cfg.Remote.Timeout, f.Remote.Timeout, "remote.timeout"); err != nil {
		return Config{}, err
	}

	if f.State.Enabled != nil {
		cfg.State.Enabled = *f.State.Enabled
	}
	if f.State.Path != "" {
		cfg.State.Path = f.State.Path
	}

	if f.Logging.Provider != "" {
		cfg.Logging.Provider = f.Logging.Provider
	}
	if f.Logging.Level != "" {
		cfg.Logging.Level = f.Logging.Level
	}
	if f.Logging.Format != "" {
		cfg.Logging.Format = f.Logging.Format
	}
	cfg.Logging.AddSource = f.Logging.AddSource
	if len(f.Logging.Focus) > 0 {
		cfg.Logging.Focus = f.Logging.Focus
	}

	return cfg, nil
}

func applyDuration(dst *time.Duration, raw, field string) error {
	if raw == "" {
		return nil
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("docsync config: invalid %s duration %q: %w", field, raw, err)
	}
	*dst = parsed
	return nil
}
