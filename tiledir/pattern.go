// Package tiledir exports tileset tiles as individual PNG files with paths
// like "/tiles/{i}_{m}.png" and imports them back.
package tiledir

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/eak1mov/go-tileset/tile"
)

var ErrInvalidPattern = errors.New("tiledir: invalid file pattern")

const (
	indexPlaceholder = "{i}"
	levelPlaceholder = "{m}"
)

func validatePattern(pattern string) error {
	if !strings.Contains(pattern, indexPlaceholder) {
		return fmt.Errorf("%w: placeholder %v not found", ErrInvalidPattern, indexPlaceholder)
	}
	return nil
}

// hasLevels reports whether the pattern can hold mip levels other than the
// base level.
func hasLevels(pattern string) bool {
	return strings.Contains(pattern, levelPlaceholder)
}

func formatPattern(pattern string, i tile.Index, m int) string {
	result := pattern
	result = strings.ReplaceAll(result, indexPlaceholder, strconv.Itoa(int(i)))
	result = strings.ReplaceAll(result, levelPlaceholder, strconv.Itoa(m))
	return result
}
