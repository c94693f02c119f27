package config

import (
	"os"
	"regexp"
	"strings"
)

// ${VAR} or ${VAR:-fallback}
var envVarRegex = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:-[^}]*)?\}`)

func substituteEnvVars(content []byte) []byte {
	return envVarRegex.ReplaceAllFunc(content, func(match []byte) []byte {
		groups := envVarRegex.FindSubmatch(match)
		if value, exists := os.LookupEnv(string(groups[1])); exists && value != "" {
			return []byte(value)
		}
		if len(groups[2]) > 0 {
			return []byte(strings.TrimPrefix(string(groups[2]), ":-"))
		}
		return match
	})
}
