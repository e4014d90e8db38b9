package jsonrpc2

import (
	"fmt"
)

// Version is a JSONRPC protocol version.
type Version int

const (
	// Version1 is JSONRPC 1.0: no "jsonrpc" field, ids are required and
	// params are always positional.
	Version1 Version = 1
	// Version2 is JSONRPC 2.0.
	Version2 Version = 2
)

const (
	version1Tag = "1.0"
	version2Tag = "2.0"
)

// orDefault returns Version2 for the unspecified zero value.
func (v Version) orDefault() Version {
	if v == 0 {
		return Version2
	}
	return v
}

func (v Version) String() string {
	switch v {
	case Version1:
		return version1Tag
	case Version2:
		return version2Tag
	}
	return fmt.Sprintf("Version(%d)", int(v))
}

// ParseVersion returns the Version for a "jsonrpc" marker value.
func ParseVersion(tag string) (Version, error) {
	switch tag {
	case version1Tag:
		return Version1, nil
	case version2Tag:
		return Version2, nil
	}
	return 0, fmt.Errorf("unsupported version: %q", tag)
}
