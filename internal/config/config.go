package config

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

const (
	defaultConfigPath = "/etc/batchgen/config.ini"
	configPathEnv     = "BATCHGEN_CONFIG"
)

// Default content types for the caregiving brand. Used when the config file
// has no [types] section (each still needs a command template to actually
// generate anything).
var defaultTypeNames = []string{"validation", "tips", "mythbust", "selfcare", "story"}

type Config struct {
	Hostname         string
	AppEnv           string
	BaseOutputFolder string

	// Generator behavior.
	TaskTimeoutSeconds int
	DefaultCount       int
	DefaultWorkers     int

	// TypeNames is the ordered set of known content types; TypeCommands maps
	// each to its shell command template (may be empty for a known type that
	// has no generator wired yet).
	TypeNames    []string
	TypeCommands map[string]string

	DBEnabled  bool
	DBURL      string
	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	RabbitMQEnabled  bool
	RabbitMQHost     string
	RabbitMQPort     int
	RabbitMQUser     string
	RabbitMQPassword string
	RabbitMQVHost    string
}

// Load reads the INI config file. A missing file is not an error: the tool
// runs fine on built-in defaults (no DB, no queue, default type set), so the
// config file only has to exist where operators want those extras.
func Load() (Config, error) {
	configPath := os.Getenv(configPathEnv)
	if configPath == "" {
		configPath = defaultConfigPath
	}
	return LoadPath(configPath)
}

// LoadPath reads a specific INI config file path.
func LoadPath(configPath string) (Config, error) {
	ini, err := readINI(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return defaults(), nil
		}
		return Config{}, fmt.Errorf("load config %s: %w", configPath, err)
	}

	cfg := defaults()
	if host := ini.get("app", "hostname"); host != "" {
		cfg.Hostname = host
	}
	cfg.AppEnv = ini.getDefault("app", "env", cfg.AppEnv)
	if folder := ini.get("app", "base_output_folder"); folder != "" {
		cfg.BaseOutputFolder = folder
	}

	cfg.TaskTimeoutSeconds = ini.getIntDefault("generator", "timeout_seconds", cfg.TaskTimeoutSeconds)
	cfg.DefaultCount = ini.getIntDefault("generator", "default_count", cfg.DefaultCount)
	cfg.DefaultWorkers = ini.getIntDefault("generator", "default_workers", cfg.DefaultWorkers)

	if types := ini.section("types"); len(types) > 0 {
		names := make([]string, 0, len(types))
		commands := make(map[string]string, len(types))
		for name, command := range types {
			names = append(names, name)
			commands[name] = command
		}
		// Map iteration order is random; keep expansion deterministic.
		sort.Strings(names)
		cfg.TypeNames = names
		cfg.TypeCommands = commands
	}

	cfg.DBEnabled = ini.getBoolDefault("db", "enabled", false)
	cfg.DBURL = firstNonEmpty(ini.get("db", "url"), ini.get("db", "database_url"))
	cfg.DBHost = ini.getDefault("db", "host", "127.0.0.1")
	cfg.DBPort = ini.getIntDefault("db", "port", 5432)
	cfg.DBName = ini.getDefault("db", "name", "batchgen")
	cfg.DBUser = ini.getDefault("db", "user", "batchgen")
	cfg.DBPassword = ini.get("db", "password")
	cfg.DBSSLMode = ini.getDefault("db", "sslmode", "prefer")

	cfg.RabbitMQEnabled = ini.getBoolDefault("rabbitmq", "enabled", false)
	cfg.RabbitMQHost = ini.getDefault("rabbitmq", "host", "127.0.0.1")
	cfg.RabbitMQPort = ini.getIntDefault("rabbitmq", "port", 5672)
	cfg.RabbitMQUser = ini.getDefault("rabbitmq", "user", "guest")
	cfg.RabbitMQPassword = ini.getDefault("rabbitmq", "password", "guest")
	cfg.RabbitMQVHost = ini.getDefault("rabbitmq", "vhost", "/")

	return cfg, nil
}

func defaults() Config {
	cfg := Config{
		AppEnv:             "production",
		BaseOutputFolder:   "./output",
		TaskTimeoutSeconds: 300,
		DefaultCount:       5,
		DefaultWorkers:     3,
		TypeNames:          append([]string(nil), defaultTypeNames...),
		TypeCommands:       map[string]string{},
	}
	if host, err := os.Hostname(); err == nil {
		cfg.Hostname = host
	}
	return cfg
}

// KnownType reports whether name is in the configured content-type set.
func (c Config) KnownType(name string) bool {
	for _, t := range c.TypeNames {
		if t == name {
			return true
		}
	}
	return false
}

func (c Config) DBConnString() string {
	if c.DBURL != "" {
		return c.DBURL
	}
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		c.DBHost,
		c.DBPort,
		c.DBName,
		c.DBUser,
		c.DBPassword,
		c.DBSSLMode,
	)
}

func (c Config) RabbitMQURL() string {
	vhost := strings.TrimPrefix(c.RabbitMQVHost, "/")
	return fmt.Sprintf(
		"amqp://%s:%s@%s:%d/%s",
		c.RabbitMQUser,
		c.RabbitMQPassword,
		c.RabbitMQHost,
		c.RabbitMQPort,
		vhost,
	)
}

type iniData struct {
	sections map[string]map[string]string
}

func readINI(path string) (iniData, error) {
	file, err := os.Open(path)
	if err != nil {
		return iniData{}, err
	}
	defer file.Close()

	data := iniData{sections: map[string]map[string]string{}}
	section := "default"
	data.sections[section] = map[string]string{}

	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section = strings.TrimSpace(line[1 : len(line)-1])
			section = strings.ToLower(section)
			if section == "" {
				return iniData{}, fmt.Errorf("invalid section header at line %d", lineNo)
			}
			if _, ok := data.sections[section]; !ok {
				data.sections[section] = map[string]string{}
			}
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return iniData{}, fmt.Errorf("invalid line %d: %q", lineNo, line)
		}
		key = strings.ToLower(strings.TrimSpace(key))
		if key == "" {
			return iniData{}, fmt.Errorf("empty key at line %d", lineNo)
		}
		value = strings.TrimSpace(value)
		value = trimQuotes(value)
		data.sections[section][key] = value
	}
	if err := scanner.Err(); err != nil {
		return iniData{}, err
	}
	return data, nil
}

func trimQuotes(value string) string {
	if len(value) < 2 {
		return value
	}
	if value[0] == '"' && value[len(value)-1] == '"' {
		return value[1 : len(value)-1]
	}
	if value[0] == '\'' && value[len(value)-1] == '\'' {
		return value[1 : len(value)-1]
	}
	return value
}

func (ini iniData) section(name string) map[string]string {
	return ini.sections[strings.ToLower(name)]
}

func (ini iniData) get(section, key string) string {
	if len(ini.sections) == 0 {
		return ""
	}
	section = strings.ToLower(section)
	key = strings.ToLower(key)
	if section == "" {
		section = "default"
	}
	if values, ok := ini.sections[section]; ok {
		return values[key]
	}
	return ""
}

func (ini iniData) getDefault(section, key, fallback string) string {
	value := ini.get(section, key)
	if value == "" {
		return fallback
	}
	return value
}

func (ini iniData) getIntDefault(section, key string, fallback int) int {
	value := ini.get(section, key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func (ini iniData) getBoolDefault(section, key string, fallback bool) bool {
	value := strings.ToLower(ini.get(section, key))
	switch value {
	case "":
		return fallback
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
