package tiledir

import (
	"cmp"
	"fmt"
	"image"
	_ "image/png"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/eak1mov/go-tileset/atlas"
	"github.com/eak1mov/go-tileset/layout"
	"github.com/eak1mov/go-tileset/texture"
	"github.com/eak1mov/go-tileset/tile"
)

// Reader reads tile levels written by Writer.
type Reader struct {
	filePattern string
	rootDir     string
	pathRegexp  *regexp.Regexp
}

// Level identifies a file of the directory.
type Level struct {
	Tile  tile.Index
	Level int
}

// NewReader creates a new Reader for the given file pattern (e.g. "/home/user/tiles/{i}/{m}.png").
func NewReader(filePattern string) (*Reader, error) {
	if err := validatePattern(filePattern); err != nil {
		return nil, err
	}

	regexPattern := regexp.QuoteMeta(filepath.ToSlash(filePattern))
	regexPattern = strings.ReplaceAll(regexPattern, regexp.QuoteMeta(indexPlaceholder), `(?P<i>\d+)`)
	regexPattern = strings.ReplaceAll(regexPattern, regexp.QuoteMeta(levelPlaceholder), `(?P<m>\d+)`)
	pathRegex, err := regexp.Compile("^" + regexPattern + "$")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPattern, err)
	}

	path0 := formatPattern(filePattern, 0, 0)
	path1 := formatPattern(filePattern, 1, 1)
	for path0 != path1 {
		path0 = filepath.Dir(path0)
		path1 = filepath.Dir(path1)
	}

	return &Reader{filePattern: filePattern, rootDir: path0, pathRegexp: pathRegex}, nil
}

// ReadLevel decodes mip level m of tile i into the given format.
func (r *Reader) ReadLevel(i tile.Index, m int, format texture.Format) (*texture.Image, error) {
	return decodeFile(formatPattern(r.filePattern, i, m), format)
}

// Levels lists the files matching the pattern, ordered by tile and level.
func (r *Reader) Levels() ([]Level, error) {
	var levels []Level
	err := filepath.WalkDir(r.rootDir, func(filePath string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		matches := r.pathRegexp.FindStringSubmatch(filepath.ToSlash(filePath))
		if matches == nil {
			return nil
		}
		i, err := strconv.ParseUint(matches[r.pathRegexp.SubexpIndex("i")], 10, 16)
		if err != nil {
			return fmt.Errorf("%w: %v: %w", ErrInvalidPattern, filePath, err)
		}
		m := 0
		if index := r.pathRegexp.SubexpIndex("m"); index >= 0 {
			m, err = strconv.Atoi(matches[index])
			if err != nil {
				return fmt.Errorf("%w: %v: %w", ErrInvalidPattern, filePath, err)
			}
		}
		levels = append(levels, Level{Tile: tile.Index(i), Level: m})
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.SortFunc(levels, func(a, b Level) int {
		return cmp.Or(cmp.Compare(a.Tile, b.Tile), cmp.Compare(a.Level, b.Level))
	})
	return levels, nil
}

// Sources returns the base level of every tile as a single-tile atlas
// source, ordered by tile index.
func (r *Reader) Sources(format texture.Format) ([]atlas.Source, error) {
	levels, err := r.Levels()
	if err != nil {
		return nil, err
	}
	var sources []atlas.Source
	for _, l := range levels {
		if l.Level != 0 {
			continue
		}
		img, err := r.ReadLevel(l.Tile, 0, format)
		if err != nil {
			return nil, err
		}
		sources = append(sources, atlas.Source{Image: img, Layout: layout.Single{}})
	}
	return sources, nil
}

func decodeFile(filePath string, format texture.Format) (*texture.Image, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("tiledir: %v: %w", filePath, err)
	}
	return texture.FromImage(img, format)
}
