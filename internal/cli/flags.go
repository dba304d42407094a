package cli

import (
	"fmt"
	"strings"
)

// options are the flags shared by every command.
type options struct {
	configPath string
	root       string
	mode       string
	pinPolicy  string
	noPostStep bool
	verbose    bool
	force      bool
	args       []string // positional arguments
}

// parseFlags accepts "--name value" and "--name=value" for value flags.
func parseFlags(args []string) (options, error) {
	var o options
	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch arg {
		case "--no-post-step":
			o.noPostStep = true
			continue
		case "-v", "--verbose":
			o.verbose = true
			continue
		case "--force":
			o.force = true
			continue
		}

		name, value, hasValue := strings.Cut(arg, "=")
		var dst *string
		switch name {
		case "--config":
			dst = &o.configPath
		case "--root":
			dst = &o.root
		case "--mode":
			dst = &o.mode
		case "--pin-policy":
			dst = &o.pinPolicy
		default:
			if strings.HasPrefix(arg, "-") {
				return o, fmt.Errorf("unknown flag: %s", arg)
			}
			o.args = append(o.args, arg)
			continue
		}

		if !hasValue {
			if i+1 >= len(args) {
				return o, fmt.Errorf("flag %s requires a value", name)
			}
			i++
			value = args[i]
		}
		if value == "" {
			return o, fmt.Errorf("flag %s requires a value", name)
		}
		*dst = value
	}
	return o, nil
}
