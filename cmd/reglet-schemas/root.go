package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/reglet-dev/reglet-schema-registry/config"
)

type rootOptions struct {
	configPath string
	dir        string
	logLevel   string
	logFormat  string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "reglet-schemas",
		Short:         "JSON Schema registry served over the Model Context Protocol",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	opts.addFlags(cmd.PersistentFlags())

	cmd.AddCommand(
		newServeCmd(opts),
		newListCmd(opts),
		newGetCmd(opts),
		newCreateCmd(opts),
		newInstantiateCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

func (o *rootOptions) addFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.configPath, "config", "", "path to a YAML config file")
	fs.StringVar(&o.dir, "dir", "", "schema directory (overrides config and "+config.EnvSchemaDir+")")
	fs.StringVar(&o.logLevel, "log-level", "", "log level: debug, info, warn, error")
	fs.StringVar(&o.logFormat, "log-format", "", "log format: json or console")
}

// load resolves the configuration; flags win over file and environment.
func (o *rootOptions) load() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.dir != "" {
		cfg.SchemaDir = o.dir
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if o.logFormat != "" {
		cfg.Log.Format = o.logFormat
	}
	return cfg, cfg.Validate()
}
