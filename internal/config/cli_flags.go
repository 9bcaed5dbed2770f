package config

import "github.com/spf13/cobra"

// flagKeys maps global flag names to configuration keys
var flagKeys = map[string]string{
	"user-agent": keyUserAgent,
	"proxy":      keyProxy,
	"timeout":    keyTimeout,
	"json":       keyJSONLog,
}

// RegisterFlags registers common CLI flags on the provided root command
func RegisterFlags(cmd *cobra.Command) {
	if cmd == nil {
		return
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress all output except errors")
	cmd.PersistentFlags().Bool("json", false, "Log in JSON format")
	cmd.PersistentFlags().String("proxy", "", "Comma-separated proxies used for browsers and downloads (e.g., http://localhost:8080)")
	cmd.PersistentFlags().String("timeout", DefaultHTTPTimeout.String(), "Timeout of a single image download")
	cmd.PersistentFlags().String("user-agent", "", "Custom user agent string")
	cmd.PersistentFlags().String("config", "", "Path to configuration file (default ./.artcrawl.yaml or ~/.artcrawl.yaml)")
}
