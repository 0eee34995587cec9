package config

import "flag"

// parseFlags defines the config flags on fs and parses args.
// If sources is non-nil, it records SourceFlag for every flag given.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string, sources map[string]ConfigSource) error {
	if fs == nil {
		fs = flag.NewFlagSet("taskflow", flag.ContinueOnError)
	}

	flagToField := make(map[string]string)
	for _, f := range fields(cfg) {
		fs.Var(f.value, f.flag, f.usage)
		flagToField[f.flag] = f.key
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if sources != nil {
		fs.Visit(func(f *flag.Flag) {
			if key, ok := flagToField[f.Name]; ok {
				sources[key] = SourceFlag
			}
		})
	}
	return nil
}
