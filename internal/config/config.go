package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/litetable/litetable-sink/internal/sink"
)

const (
	configFileName = "litetable-sink.conf"
)

// Config mirrors the on-disk configuration file. Values are read as-is;
// components validate the ones they consume.
type Config struct {
	StoreAddress string
	StorePort    int

	ListenPort     int
	EnableTLS      bool
	MaxConnections int

	SystemFamily    string
	WriteBody       bool
	AttrPrefix      string
	WriteBufferSize int64
	DurableWrites   bool
	EnsureFamilies  []string

	CDCSourceAddress string
	CDCSourcePort    int
	CDCReplay        bool

	Debug bool
}

// NewConfig reads the sink configuration from the LiteTable home directory.
// write_body and durable_writes default to true; attr_prefix defaults to the
// standard prefix only when the key is absent, so an explicitly empty prefix
// still means "match every attribute".
func NewConfig() (*Config, error) {
	liteTableDir, err := GetLitetableDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get LiteTable directory: %w", err)
	}

	configPath := filepath.Join(liteTableDir, configFileName)
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("sink is not installed or configuration file not found")
	}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	config := &Config{
		WriteBody:     true,
		DurableWrites: true,
	}
	attrPrefixSeen := false

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip comments and empty lines
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		switch key {
		case "store_address":
			config.StoreAddress = value
		case "store_port":
			config.StorePort, err = strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("invalid store port value: %w", err)
			}
		case "listen_port":
			config.ListenPort, err = strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("invalid listen port value: %w", err)
			}
		case "enable_tls":
			config.EnableTLS = value == "true"
		case "max_connections":
			config.MaxConnections, err = strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("invalid max connections value: %w", err)
			}
		case "system_family":
			config.SystemFamily = value
		case "write_body":
			config.WriteBody = value == "true"
		case "attr_prefix":
			config.AttrPrefix = value
			attrPrefixSeen = true
		case "write_buffer_size":
			config.WriteBufferSize, err = strconv.ParseInt(value, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid write buffer size value: %w", err)
			}
		case "durable_writes":
			config.DurableWrites = value == "true"
		case "ensure_families":
			for _, f := range strings.Split(value, ",") {
				if f = strings.TrimSpace(f); f != "" {
					config.EnsureFamilies = append(config.EnsureFamilies, f)
				}
			}
		case "cdc_source_address":
			config.CDCSourceAddress = value
		case "cdc_source_port":
			config.CDCSourcePort, err = strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("invalid CDC source port value: %w", err)
			}
		case "cdc_replay":
			config.CDCReplay = value == "true"
		case "debug":
			config.Debug = value == "true"
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if !attrPrefixSeen {
		config.AttrPrefix = sink.DefaultAttrPrefix
	}

	return config, nil
}
