package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/utilitywarehouse/git-pushmirror/repository"
	"github.com/utilitywarehouse/git-pushmirror/workspace"
	"gopkg.in/yaml.v3"
)

type configFormat int

const (
	formatYAML configFormat = iota
	formatJSON
	formatTOML
)

// formatOf returns config format based on file extension,
// unknown extensions are decoded as yaml
func formatOf(path string) configFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return formatJSON
	case ".toml":
		return formatTOML
	default:
		return formatYAML
	}
}

func parseConfigFile(path string) (*workspace.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	format := formatOf(path)

	raw := make(map[string]interface{})
	if err := unmarshal(format, data, &raw); err != nil {
		return nil, err
	}

	if err := validateConfig(raw); err != nil {
		return nil, err
	}

	conf := &workspace.Config{}
	if err := decodeStrict(format, data, conf); err != nil {
		return nil, err
	}

	return conf, nil
}

func unmarshal(format configFormat, data []byte, v interface{}) error {
	switch format {
	case formatJSON:
		return json.Unmarshal(data, v)
	case formatTOML:
		return toml.Unmarshal(data, v)
	default:
		return yaml.Unmarshal(data, v)
	}
}

// decodeStrict decodes config and errors on keys which doesn't map to any field
func decodeStrict(format configFormat, data []byte, conf *workspace.Config) error {
	switch format {
	case formatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		return dec.Decode(conf)
	case formatTOML:
		return toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(conf)
	default:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		return dec.Decode(conf)
	}
}

func validateConfig(raw map[string]interface{}) error {
	// workspace and configurations sections are mandatory
	if _, ok := raw["workspace"]; !ok {
		return fmt.Errorf("workspace config section is missing")
	}

	if _, ok := raw["configurations"]; !ok {
		return fmt.Errorf("configurations config section is missing")
	}

	// check config sections for unexpected keys
	allowedWorkspaceConfig := getAllowedKeys(workspace.Config{})
	if key := findUnexpectedKey(raw, allowedWorkspaceConfig); key != "" {
		return fmt.Errorf("unexpected key: .%v", key)
	}

	if err := validateAuth(raw, ""); err != nil {
		return err
	}

	configurations, ok := raw["configurations"].([]interface{})
	if !ok && raw["configurations"] != nil {
		return fmt.Errorf("configurations config section is not valid")
	}

	// check each configuration in "configurations" section
	allowedConfigurationKeys := getAllowedKeys(workspace.Configuration{})
	allowedMirrorKeys := getAllowedKeys(repository.Config{})

	for _, configInterface := range configurations {
		configMap, ok := configInterface.(map[string]interface{})
		if !ok {
			return fmt.Errorf("configurations config section is not valid")
		}
		configPath := fmt.Sprintf(".configurations[%v]", configMap["name"])

		if key := findUnexpectedKey(configMap, allowedConfigurationKeys); key != "" {
			return fmt.Errorf("unexpected key: %s.%v", configPath, key)
		}

		if err := validateAuth(configMap, configPath); err != nil {
			return err
		}

		mirrors, ok := configMap["mirrors"].([]interface{})
		if !ok && configMap["mirrors"] != nil {
			return fmt.Errorf("mirrors config section is not valid in %s", configPath)
		}

		// check each mirror in "mirrors" section of each configuration
		for _, mirrorInterface := range mirrors {
			mirrorMap, ok := mirrorInterface.(map[string]interface{})
			if !ok {
				return fmt.Errorf("mirrors config section is not valid in %s", configPath)
			}
			mirrorPath := fmt.Sprintf("%s.mirrors[%v]", configPath, mirrorMap["src"])

			if key := findUnexpectedKey(mirrorMap, allowedMirrorKeys); key != "" {
				return fmt.Errorf("unexpected key: %s.%v", mirrorPath, key)
			}

			if err := validateAuth(mirrorMap, mirrorPath); err != nil {
				return err
			}
		}
	}

	return nil
}

// validateAuth checks "auth" section of the given config section if present
func validateAuth(section map[string]interface{}, path string) error {
	auth, ok := section["auth"]
	if !ok || auth == nil {
		return nil
	}

	authMap, ok := auth.(map[string]interface{})
	if !ok {
		return fmt.Errorf("auth config section is not valid in %s.auth", path)
	}

	allowedAuthKeys := getAllowedKeys(repository.Auth{})
	if key := findUnexpectedKey(authMap, allowedAuthKeys); key != "" {
		return fmt.Errorf("unexpected key: %s.auth.%v", path, key)
	}

	return nil
}

// getAllowedKeys retrieves a list of allowed keys from the specified struct
func getAllowedKeys(config interface{}) []string {
	var allowedKeys []string
	val := reflect.ValueOf(config)
	typ := reflect.TypeOf(config)

	for i := 0; i < val.NumField(); i++ {
		field := typ.Field(i)
		yamlTag := field.Tag.Get("yaml")
		if yamlTag != "" {
			allowedKeys = append(allowedKeys, yamlTag)
		}
	}
	return allowedKeys
}

func findUnexpectedKey(raw map[string]interface{}, allowedKeys []string) string {
	for key := range raw {
		if !slices.Contains(allowedKeys, key) {
			return key
		}
	}

	return ""
}
