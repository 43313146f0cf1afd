package flags

import (
	"strings"

	"github.com/samber/lo"
	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	LogFormat = "log-format"
	LogLevel  = "log-level"
	LogSource = "log-source"

	TemplatesFile = "templates-file"
	Scheduler     = "scheduler"
	Provider      = "provider"
)

// Setup declares the persistent flags and binds them to viper so every flag
// can also be set through the HOSTFACTORY_* environment.
func Setup(flags *flag.FlagSet) {
	flags.String(LogFormat, "text", "log format (json, text)")
	flags.String(LogLevel, "INFO", "minimum log level")
	flags.Bool(LogSource, false, "add source code location to logs")

	flags.String(TemplatesFile, "templates.yaml", "path to the templates file")
	flags.String(Scheduler, "hostfactory", "output format for scheduler integration (hostfactory, plain)")
	flags.String(Provider, "direct", "default provider strategy")

	viper.SetEnvPrefix("hostfactory")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	lo.Must0(viper.BindPFlags(flags))
}
