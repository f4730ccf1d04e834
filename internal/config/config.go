package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the process-wide configuration, built once at startup and passed
// explicitly to every component.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Log         LogConfig         `mapstructure:"log"`
	Storage     StorageConfig     `mapstructure:"storage"`
	Attachments AttachmentsConfig `mapstructure:"attachments"`
	LLM         LLMConfig         `mapstructure:"llm"`
	MCP         MCPConfig         `mapstructure:"mcp"`
	Agent       AgentConfig       `mapstructure:"agent"`
	ThreadStore ThreadStoreConfig `mapstructure:"thread_store"`
	AWS         AWSConfig         `mapstructure:"aws"`
}

// ServerConfig HTTP server settings
type ServerConfig struct {
	Host               string        `mapstructure:"host"`
	Port               int           `mapstructure:"port"`
	Mode               string        `mapstructure:"mode"`
	ReadTimeout        time.Duration `mapstructure:"read_timeout"`
	WriteTimeout       time.Duration `mapstructure:"write_timeout"`
	MaxRequestBodySize int           `mapstructure:"max_request_body_size"` // MB
	PublicBaseURL      string        `mapstructure:"public_base_url"`
}

// LogConfig logging settings
type LogConfig struct {
	Level     string `mapstructure:"level"`
	Format    string `mapstructure:"format"`
	Output    string `mapstructure:"output"`
	FilePath  string `mapstructure:"file_path"`
	AddSource bool   `mapstructure:"add_source"`
}

// StorageConfig locates the two flat file stores.
type StorageConfig struct {
	UploadDir string `mapstructure:"upload_dir"`
	OutputDir string `mapstructure:"output_dir"`
	// LocalRoot is the directory local image URLs are resolved against.
	LocalRoot string `mapstructure:"local_root"`
}

// AttachmentsConfig controls attachment resolution.
type AttachmentsConfig struct {
	// ContainerName replaces loopback hosts in file URLs so the tool server
	// can reach them from its own container.
	ContainerName string `mapstructure:"container_name"`
}

// LLMConfig OpenAI-compatible chat completions endpoint
type LLMConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	APIKey      string        `mapstructure:"api_key"`
	APIKeyParam string        `mapstructure:"api_key_param"` // SSM parameter name, used when api_key is empty
	Model       string        `mapstructure:"model"`
	Temperature float64       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxTokens   int           `mapstructure:"max_tokens"`
}

// MCPConfig tool-protocol servers keyed by name
type MCPConfig struct {
	Servers        map[string]MCPServerConfig `mapstructure:"servers"`
	ConnectTimeout time.Duration              `mapstructure:"connect_timeout"`
}

// MCPServerConfig one tool server
type MCPServerConfig struct {
	Transport string `mapstructure:"transport"` // streamable_http, sse, stdio
	URL       string `mapstructure:"url"`
	Command   string `mapstructure:"command"`
}

// AgentConfig agent loop settings
type AgentConfig struct {
	SystemPrompt string `mapstructure:"system_prompt"`
	MaxSteps     int    `mapstructure:"max_steps"`
}

// ThreadStoreConfig selects the conversation history backend.
type ThreadStoreConfig struct {
	Driver        string         `mapstructure:"driver"` // memory, mysql, postgres, dynamodb
	Database      DatabaseConfig `mapstructure:"database"`
	DynamoDBTable string         `mapstructure:"dynamodb_table"`
}

// DatabaseConfig SQL connection settings
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// AWSConfig shared AWS SDK settings
type AWSConfig struct {
	Region   string `mapstructure:"region"`
	Endpoint string `mapstructure:"endpoint"`
}

const envPrefix = "CHATBOT"

// legacyEnv maps the plain variable names used by existing deployments onto
// config keys.
var legacyEnv = map[string]string{
	"llm.api_key":                "OPENAI_API_KEY",
	"attachments.container_name": "CONTAINER_NAME",
	"storage.upload_dir":         "UPLOAD_DIR",
	"storage.output_dir":         "OUTPUT_DIR",
	"mcp.servers.excel.url":      "MCP_SERVER_URL",
}

// Load reads configuration from the given file (or ./configs/config.yaml),
// a .env file in the working directory, and the environment.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range legacyEnv {
		if err := v.BindEnv(key, envPrefix+"_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("failed to bind env %s: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !(configPath != "" && errors.Is(err, os.ErrNotExist)) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.applyMCPDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", 60*time.Second)
	v.SetDefault("server.write_timeout", 0)
	v.SetDefault("server.max_request_body_size", 50)
	v.SetDefault("server.public_base_url", "http://localhost:8000")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output", "stdout")

	v.SetDefault("storage.upload_dir", "uploads")
	v.SetDefault("storage.output_dir", "outputs")
	v.SetDefault("storage.local_root", ".")

	v.SetDefault("attachments.container_name", "excel-container")

	v.SetDefault("llm.base_url", "https://api.openai.com/v1")
	v.SetDefault("llm.model", "gpt-5")
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.timeout", 5*time.Minute)

	v.SetDefault("mcp.connect_timeout", 15*time.Second)

	v.SetDefault("agent.max_steps", 25)

	v.SetDefault("thread_store.driver", "memory")
	v.SetDefault("thread_store.database.max_open_conns", 10)
	v.SetDefault("thread_store.database.max_idle_conns", 2)
	v.SetDefault("thread_store.database.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("thread_store.dynamodb_table", "chatbot-threads")
}

// applyMCPDefaults registers the spreadsheet tool server when none is
// configured and fills in missing transports.
func (c *Config) applyMCPDefaults() {
	if len(c.MCP.Servers) == 0 {
		c.MCP.Servers = map[string]MCPServerConfig{
			"excel": {Transport: "streamable_http", URL: "http://localhost:8017/mcp"},
		}
	}
	for name, srv := range c.MCP.Servers {
		if srv.Transport == "" {
			srv.Transport = "streamable_http"
			c.MCP.Servers[name] = srv
		}
	}
}

// Validate checks the loaded configuration.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.Mode != "debug" && c.Server.Mode != "release" {
		return fmt.Errorf("invalid server mode: %s, must be 'debug' or 'release'", c.Server.Mode)
	}
	if c.Server.PublicBaseURL == "" {
		return fmt.Errorf("server.public_base_url is required")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return fmt.Errorf("invalid log format: %s, must be 'json' or 'text'", c.Log.Format)
	}

	if c.Storage.UploadDir == "" || c.Storage.OutputDir == "" {
		return fmt.Errorf("storage.upload_dir and storage.output_dir are required")
	}
	if c.Attachments.ContainerName == "" {
		return fmt.Errorf("attachments.container_name is required")
	}

	if c.LLM.Model == "" {
		return fmt.Errorf("llm.model is required")
	}

	if len(c.MCP.Servers) == 0 {
		return fmt.Errorf("at least one mcp server is required")
	}
	for name, srv := range c.MCP.Servers {
		switch srv.Transport {
		case "streamable_http", "sse":
			if srv.URL == "" {
				return fmt.Errorf("mcp.servers.%s.url is required", name)
			}
		case "stdio":
			if srv.Command == "" {
				return fmt.Errorf("mcp.servers.%s.command is required", name)
			}
		default:
			return fmt.Errorf("invalid transport %q for mcp server %s", srv.Transport, name)
		}
	}

	if c.Agent.MaxSteps <= 0 {
		return fmt.Errorf("agent.max_steps must be positive")
	}

	switch c.ThreadStore.Driver {
	case "memory":
	case "mysql", "postgres":
		if c.ThreadStore.Database.Host == "" {
			return fmt.Errorf("thread_store.database.host is required for driver %s", c.ThreadStore.Driver)
		}
	case "dynamodb":
		if c.ThreadStore.DynamoDBTable == "" {
			return fmt.Errorf("thread_store.dynamodb_table is required")
		}
	default:
		return fmt.Errorf("invalid thread_store.driver: %s", c.ThreadStore.Driver)
	}

	return nil
}

// GetServerAddr returns host:port
func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// GetReadTimeout returns the server read timeout
func (c *Config) GetReadTimeout() time.Duration {
	return c.Server.ReadTimeout
}

// GetWriteTimeout returns the server write timeout
func (c *Config) GetWriteTimeout() time.Duration {
	return c.Server.WriteTimeout
}

// UploadURL is the public URL of an uploaded file.
func (c *Config) UploadURL(name string) string {
	return strings.TrimRight(c.Server.PublicBaseURL, "/") + "/uploads/" + name
}

// OutputBaseURL is the public URL prefix of generated artifacts.
func (c *Config) OutputBaseURL() string {
	return strings.TrimRight(c.Server.PublicBaseURL, "/") + "/outputs"
}
