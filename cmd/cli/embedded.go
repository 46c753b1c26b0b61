package cli

import _ "embed"

//go:embed config.yaml
var embeddedDefaultConfigurationContent []byte

// EmbeddedDefaultConfiguration returns the built-in configuration document and its content type.
func EmbeddedDefaultConfiguration() ([]byte, string) {
	return embeddedDefaultConfigurationContent, configurationTypeConstant
}
