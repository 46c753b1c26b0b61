package utils

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const (
	configurationReadErrorTemplateConstant   = "unable to read configuration file: %w"
	configurationDecodeErrorTemplateConstant = "unable to decode configuration: %w"
	environmentKeySeparatorConstant          = "."
	environmentKeyReplacementConstant        = "_"
	configurationTagNameConstant             = "mapstructure"
)

// ConfigurationMetadata reports details about the resolved configuration source.
type ConfigurationMetadata struct {
	ConfigFileUsed string
}

// ConfigurationLoader resolves layered application configuration: embedded
// defaults, then configuration files from the search paths (or an explicit
// file), then environment variables.
type ConfigurationLoader struct {
	configurationName   string
	configurationType   string
	environmentPrefix   string
	searchPaths         []string
	embeddedContent     []byte
	embeddedContentType string
}

// NewConfigurationLoader constructs a loader for the named configuration.
func NewConfigurationLoader(configurationName string, configurationType string, environmentPrefix string, searchPaths []string) *ConfigurationLoader {
	return &ConfigurationLoader{
		configurationName: configurationName,
		configurationType: configurationType,
		environmentPrefix: environmentPrefix,
		searchPaths:       append([]string{}, searchPaths...),
	}
}

// SetEmbeddedConfiguration registers embedded default configuration content.
func (loader *ConfigurationLoader) SetEmbeddedConfiguration(content []byte, contentType string) {
	loader.embeddedContent = append([]byte{}, content...)
	loader.embeddedContentType = contentType
}

// LoadConfiguration merges configuration layers into the target structure. An
// explicit file path takes precedence over the search paths; a missing
// configuration file is not an error when no explicit path was given.
func (loader *ConfigurationLoader) LoadConfiguration(explicitFilePath string, defaultValues map[string]any, target any) (ConfigurationMetadata, error) {
	viperInstance := viper.New()
	viperInstance.SetConfigName(loader.configurationName)
	viperInstance.SetConfigType(loader.configurationType)

	for defaultKey, defaultValue := range defaultValues {
		viperInstance.SetDefault(defaultKey, defaultValue)
	}

	if len(loader.embeddedContent) > 0 {
		embeddedViper := viper.New()
		embeddedViper.SetConfigType(loader.embeddedContentType)
		if readError := embeddedViper.ReadConfig(bytes.NewReader(loader.embeddedContent)); readError != nil {
			return ConfigurationMetadata{}, fmt.Errorf(configurationReadErrorTemplateConstant, readError)
		}
		if mergeError := viperInstance.MergeConfigMap(embeddedViper.AllSettings()); mergeError != nil {
			return ConfigurationMetadata{}, fmt.Errorf(configurationReadErrorTemplateConstant, mergeError)
		}
	}

	trimmedExplicitPath := strings.TrimSpace(explicitFilePath)
	if len(trimmedExplicitPath) > 0 {
		viperInstance.SetConfigFile(trimmedExplicitPath)
		if readError := viperInstance.MergeInConfig(); readError != nil {
			return ConfigurationMetadata{}, fmt.Errorf(configurationReadErrorTemplateConstant, readError)
		}
	} else {
		for _, searchPath := range loader.searchPaths {
			viperInstance.AddConfigPath(searchPath)
		}
		if readError := viperInstance.MergeInConfig(); readError != nil {
			var configFileNotFound viper.ConfigFileNotFoundError
			if !errors.As(readError, &configFileNotFound) {
				return ConfigurationMetadata{}, fmt.Errorf(configurationReadErrorTemplateConstant, readError)
			}
		}
	}

	viperInstance.SetEnvPrefix(loader.environmentPrefix)
	viperInstance.SetEnvKeyReplacer(strings.NewReplacer(environmentKeySeparatorConstant, environmentKeyReplacementConstant))
	viperInstance.AutomaticEnv()

	decoderOptions := func(decoderConfiguration *mapstructure.DecoderConfig) {
		decoderConfiguration.TagName = configurationTagNameConstant
		decoderConfiguration.WeaklyTypedInput = true
	}
	if decodeError := viperInstance.Unmarshal(target, decoderOptions); decodeError != nil {
		return ConfigurationMetadata{}, fmt.Errorf(configurationDecodeErrorTemplateConstant, decodeError)
	}

	return ConfigurationMetadata{ConfigFileUsed: viperInstance.ConfigFileUsed()}, nil
}
