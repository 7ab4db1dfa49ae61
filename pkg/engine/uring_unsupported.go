//go:build !linux

package engine

import "errors"

var errLinuxOnly = errors.New("only supported on Linux")

func openUring(path string, direct bool) (Target, error) {
	return nil, errLinuxOnly
}

func openAIO(path string, direct bool) (Target, error) {
	return nil, errLinuxOnly
}
