package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultStake is used whenever a stake input cannot be parsed.
	DefaultStake = 2
	// DefaultPageSize is the history page served to the dashboard.
	DefaultPageSize = 30
	// DefaultSender is the automated croupier whose messages are classified.
	DefaultSender = "redbot"

	defaultChannel    = "spam"
	defaultListenAddr = ":8080"
	defaultDataDir    = "./wal"
)

// Config holds everything the daemon needs to run.
type Config struct {
	// ChatURL is the WebSocket endpoint of the chat feed.
	ChatURL string
	// Channel is the chat room to join.
	Channel string
	// Sender is the automated sender whose messages drive the ledger.
	Sender string
	// DefaultStake replaces unparseable or sub-1 stake input.
	DefaultStake int64
	// PageSize is the history page size for the dashboard.
	PageSize int
	// ListenAddr is the dashboard bind address.
	ListenAddr string
	// DataDir is the root for WAL history and state files.
	DataDir string
	// EnableUt allows under-threshold wagers.
	EnableUt bool
	// ShutdownTimeout bounds graceful HTTP shutdown.
	ShutdownTimeout time.Duration
}

// ConfigTmp is the yaml layout, shared with the setup wizard.
type ConfigTmp struct {
	ChatURL         string        `yaml:"chat_url"`
	Channel         string        `yaml:"channel,omitempty"`
	Sender          string        `yaml:"sender,omitempty"`
	DefaultStake    int64         `yaml:"default_stake,omitempty"`
	PageSize        int           `yaml:"page_size,omitempty"`
	ListenAddr      string        `yaml:"listen_addr,omitempty"`
	DataDir         string        `yaml:"data_dir,omitempty"`
	EnableUt        bool          `yaml:"enable_ut,omitempty"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout,omitempty"`
}

// Get loads configuration from the yaml file named by -config, falling back
// to CLI flags when the flag is empty.
func Get() (Config, error) {
	configPath := flag.String("config", "", "path to yaml config")
	chatURL := flag.String("chat-url", "", "websocket url of the chat feed, example: wss://host/chat")
	channel := flag.String("channel", defaultChannel, "chat channel to join")
	sender := flag.String("sender", DefaultSender, "automated sender whose messages are classified")
	defaultStake := flag.Int64("default-stake", DefaultStake, "fallback stake in bits for invalid input")
	pageSize := flag.Int("page-size", DefaultPageSize, "history page size")
	listenAddr := flag.String("listen", defaultListenAddr, "dashboard listen address")
	dataDir := flag.String("data-dir", defaultDataDir, "directory for WAL history and state")
	enableUt := flag.Bool("enable-ut", false, "allow under-threshold wagers")
	flag.Parse()

	if *configPath != "" {
		return getYaml(*configPath)
	}

	cfg := Config{
		ChatURL:      *chatURL,
		Channel:      *channel,
		Sender:       *sender,
		DefaultStake: *defaultStake,
		PageSize:     *pageSize,
		ListenAddr:   *listenAddr,
		DataDir:      *dataDir,
		EnableUt:     *enableUt,
	}

	return applyDefaults(cfg)
}

func getYaml(path string) (Config, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var tmp ConfigTmp
	if err := yaml.Unmarshal(payload, &tmp); err != nil {
		return Config{}, fmt.Errorf("incorrect yaml config: %w", err)
	}

	cfg := Config{
		ChatURL:         tmp.ChatURL,
		Channel:         tmp.Channel,
		Sender:          tmp.Sender,
		DefaultStake:    tmp.DefaultStake,
		PageSize:        tmp.PageSize,
		ListenAddr:      tmp.ListenAddr,
		DataDir:         tmp.DataDir,
		EnableUt:        tmp.EnableUt,
		ShutdownTimeout: tmp.ShutdownTimeout,
	}

	return applyDefaults(cfg)
}

func applyDefaults(cfg Config) (Config, error) {
	if cfg.ChatURL == "" {
		return Config{}, fmt.Errorf("chat feed url is required (set chat_url in yaml or --chat-url)")
	}
	if cfg.Channel == "" {
		cfg.Channel = defaultChannel
	}
	if cfg.Sender == "" {
		cfg.Sender = DefaultSender
	}
	if cfg.DefaultStake < 1 {
		cfg.DefaultStake = DefaultStake
	}
	if cfg.PageSize < 1 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = defaultListenAddr
	}
	if cfg.DataDir == "" {
		cfg.DataDir = defaultDataDir
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 5 * time.Second
	}

	return cfg, nil
}
