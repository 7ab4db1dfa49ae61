//go:build !linux

package engine

const directFlag = 0
