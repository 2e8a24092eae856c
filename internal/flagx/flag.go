// Package flagx lets several flag sets share one command line: each set
// parses only the arguments it declares and ignores the rest.
package flagx

import (
	"flag"
	"os"
	"strings"
)

// FilterArgs returns the arguments of args that belong to allowedFlags,
// keeping each flag's value when it is given as a separate argument.
//
// Supported formats:
//
//	-c conf.json
//	--config=conf.json
//
// Flags listed in boolFlags never take the following argument as a value.
func FilterArgs(args []string, allowedFlags []string, boolFlags ...string) []string {
	matched, _ := splitArgs(args, allowedFlags, boolFlags)
	return matched
}

func splitArgs(args []string, allowedFlags []string, boolFlags []string) (matched, rest []string) {
	allowed := make(map[string]bool, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = false
	}
	for _, f := range boolFlags {
		if _, ok := allowed[f]; ok {
			allowed[f] = true
		}
	}

	matched = make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name, _, _ := strings.Cut(arg, "=")
			if _, ok := allowed[name]; ok {
				matched = append(matched, arg)
			} else {
				rest = append(rest, arg)
			}
			continue
		}

		isBool, ok := allowed[arg]
		if !ok {
			rest = append(rest, arg)
			continue
		}
		matched = append(matched, arg)
		if !isBool && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			matched = append(matched, args[i+1])
			i++
		}
	}

	return matched, rest
}

// FilterFor narrows args to the flags declared in fs, in both their -name
// and --name spellings, treating boolean flags correctly.
func FilterFor(fs *flag.FlagSet, args []string) []string {
	names, bools := declared(fs)
	matched, _ := splitArgs(args, names, bools)
	return matched
}

// Positional returns the arguments of args that no flag declared in fs
// claims, such as a subcommand and its operands.
func Positional(fs *flag.FlagSet, args []string) []string {
	names, bools := declared(fs)
	_, rest := splitArgs(args, names, bools)
	return rest
}

func declared(fs *flag.FlagSet) (names, bools []string) {
	fs.VisitAll(func(f *flag.Flag) {
		for _, prefix := range []string{"-", "--"} {
			names = append(names, prefix+f.Name)
			if bf, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && bf.IsBoolFlag() {
				bools = append(bools, prefix+f.Name)
			}
		}
	})
	return names, bools
}

// JsonConfigFlags extracts the config file path given via -c or -config
// from os.Args. It returns "" when neither is present.
func JsonConfigFlags() string {
	var config string

	fs := flag.NewFlagSet("json", flag.ContinueOnError)
	fs.StringVar(&config, "config", "", "Path to config file")
	fs.StringVar(&config, "c", "", "Path to config file (short)")
	_ = fs.Parse(FilterFor(fs, os.Args[1:]))

	return config
}
