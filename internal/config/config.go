package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml"
)

// Known keys: log.level, root.nonce

const (
	KeyLogLevel  = "log.level"
	KeyRootNonce = "root.nonce"

	DefaultLogLevel = "info"
)

// ErrNoValue is returned when neither repo nor global config sets a key
var ErrNoValue = errors.New("no config value")

// Settings is the typed view of the keys the tool reads
type Settings struct {
	LogLevel  string
	RootNonce string
}

func globalConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	cfgDir := filepath.Join(home, ".config", "evolog")
	if err := os.MkdirAll(cfgDir, 0755); err != nil {
		return "", err
	}
	return filepath.Join(cfgDir, "config.toml"), nil
}

func repoConfigPath(repoPath string) string {
	return filepath.Join(repoPath, ".evolog", "config", "config.toml")
}

func loadToml(path string) (*toml.Tree, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		tree, err := toml.TreeFromMap(map[string]interface{}{})
		if err != nil {
			return nil, fmt.Errorf("failed to create empty config: %w", err)
		}
		return tree, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	tree, err := toml.LoadBytes(b)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return tree, nil
}

func saveToml(tree *toml.Tree, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(tree.String()), 0644)
}

// SetGlobalConfigValue sets key=val in ~/.config/evolog/config.toml
func SetGlobalConfigValue(key, val string) error {
	gp, err := globalConfigPath()
	if err != nil {
		return err
	}
	tree, err := loadToml(gp)
	if err != nil {
		return err
	}
	tree.Set(key, val)
	return saveToml(tree, gp)
}

// SetRepoConfigValue sets key=val in .evolog/config/config.toml
func SetRepoConfigValue(repoPath, key, val string) error {
	rp := repoConfigPath(repoPath)
	tree, err := loadToml(rp)
	if err != nil {
		return err
	}
	tree.Set(key, val)
	return saveToml(tree, rp)
}

// GetConfigValue => repo-level override, else global
func GetConfigValue(repoPath, key string) (string, error) {
	var repoTree *toml.Tree
	if repoPath != "" {
		rt, err := loadToml(repoConfigPath(repoPath))
		if err != nil {
			return "", err
		}
		repoTree = rt
	}
	var globalTree *toml.Tree
	if gp, err := globalConfigPath(); err == nil {
		globalTree, _ = loadToml(gp)
	}

	if repoTree != nil {
		if v := repoTree.Get(key); v != nil {
			return fmt.Sprintf("%v", v), nil
		}
	}
	if globalTree != nil {
		if v := globalTree.Get(key); v != nil {
			return fmt.Sprintf("%v", v), nil
		}
	}
	return "", fmt.Errorf("%w for %s", ErrNoValue, key)
}

// Load resolves Settings for repoPath, filling defaults for unset keys
func Load(repoPath string) (Settings, error) {
	s := Settings{LogLevel: DefaultLogLevel}
	for key, dst := range map[string]*string{
		KeyLogLevel:  &s.LogLevel,
		KeyRootNonce: &s.RootNonce,
	} {
		v, err := GetConfigValue(repoPath, key)
		if errors.Is(err, ErrNoValue) {
			continue
		}
		if err != nil {
			return Settings{}, err
		}
		*dst = v
	}
	return s, nil
}
