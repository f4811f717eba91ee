package paths

import (
	"flag"
	"strings"
)

// SetupFilePathFlag creates a new string flag with the passed name with a sane
// default for the path to the file, if found using the Find function. If not,
// the flag defaults to an empty string.
func SetupFilePathFlag(fileName, flagName string, flagPtr *string) {
	flag.StringVar(flagPtr, flagName, Find(fileName), "Path to "+fileName)
}

// FromFlag returns the source described by a flag value: an http(s) URL
// becomes an HTTP source, anything else a local directory. An empty value
// searches the default asset directories.
func FromFlag(value string) Source {
	switch {
	case value == "":
		return Default()
	case strings.HasPrefix(value, "http://"), strings.HasPrefix(value, "https://"):
		return HTTP{Base: value}
	default:
		return Dir(value)
	}
}
