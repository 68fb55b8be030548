// Package cache stores built tilesets in an SQLite database, keyed by the
// fingerprint of their inputs, so unchanged descriptions are not rebuilt.
//
// Note: User must properly initialize the sqlite3 library generic driver
// (e.g. import _ "github.com/mattn/go-sqlite3") before using this package.
package cache

import (
	"bytes"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/eak1mov/go-tileset/texture"
	"github.com/eak1mov/go-tileset/ts"
	"github.com/eak1mov/go-tileset/ts/spec"
	"github.com/fxamacker/cbor/v2"
)

// Meta summarizes a cached tileset without decoding its data.
type Meta struct {
	TileWidth   int              `cbor:"1,keyasint"`
	TileHeight  int              `cbor:"2,keyasint"`
	Count       int              `cbor:"3,keyasint"`
	Format      texture.Format   `cbor:"4,keyasint"`
	Mips        int              `cbor:"5,keyasint"`
	Compression spec.Compression `cbor:"6,keyasint"`
	Size        int              `cbor:"7,keyasint"`
}

// Formats and compression methods are stored by name.
var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encOptions := cbor.CoreDetEncOptions()
	encOptions.TextMarshaler = cbor.TextMarshalerTextString
	encMode, err = encOptions.EncMode()
	if err != nil {
		panic("cache: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{TextUnmarshaler: cbor.TextUnmarshalerTextString}.DecMode()
	if err != nil {
		panic("cache: CBOR decoder initialization failed: " + err.Error())
	}
}

// Cache is an open tileset cache database.
type Cache struct {
	db      *sql.DB
	getStmt *sql.Stmt
	putStmt *sql.Stmt
	logger  *slog.Logger
	options []ts.Option
}

type cacheConfig struct {
	Logger  *slog.Logger
	Options []ts.Option
}

type Option func(*cacheConfig)

func WithLogger(logger *slog.Logger) Option {
	return func(c *cacheConfig) { c.Logger = logger }
}

// WithSaveOptions sets the options used to encode stored tilesets.
func WithSaveOptions(opts ...ts.Option) Option {
	return func(c *cacheConfig) { c.Options = opts }
}

// Open opens or creates the cache database at filePath.
//
// The returned Cache must be closed after use to release database resources.
func Open(filePath string, opts ...Option) (c *Cache, err error) {
	config := cacheConfig{
		Logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&config)
	}

	db, err := sql.Open("sqlite3", filePath)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			db.Close()
		}
	}()

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS tilesets (
			key BLOB PRIMARY KEY,
			meta BLOB,
			data BLOB
		);
	`)
	if err != nil {
		return nil, err
	}

	getStmt, err := db.Prepare("SELECT meta, data FROM tilesets WHERE key = ?")
	if err != nil {
		return nil, err
	}
	putStmt, err := db.Prepare("INSERT OR REPLACE INTO tilesets (key, meta, data) VALUES (?, ?, ?)")
	if err != nil {
		getStmt.Close()
		return nil, err
	}

	return &Cache{
		db:      db,
		getStmt: getStmt,
		putStmt: putStmt,
		logger:  config.Logger,
		options: config.Options,
	}, nil
}

func (c *Cache) Close() error {
	return errors.Join(c.getStmt.Close(), c.putStmt.Close(), c.db.Close())
}

// Put stores f under key, replacing any previous entry.
func (c *Cache) Put(key Key, f *spec.File) error {
	var buffer bytes.Buffer
	if err := ts.Save(&buffer, f, c.options...); err != nil {
		return err
	}
	meta, err := encMode.Marshal(Meta{
		TileWidth:   f.TileSize.Width,
		TileHeight:  f.TileSize.Height,
		Count:       f.TileCount,
		Format:      f.Format,
		Mips:        f.Mips,
		Compression: spec.Compression(buffer.Bytes()[0]),
		Size:        buffer.Len(),
	})
	if err != nil {
		return err
	}
	if _, err := c.putStmt.Exec(key[:], meta, buffer.Bytes()); err != nil {
		return err
	}
	c.logger.Debug("tileset: cache stored", "key", key, "bytes", buffer.Len())
	return nil
}

// Get loads the tileset stored under key. It returns false if there is none.
func (c *Cache) Get(key Key) (*ts.Tileset, Meta, bool, error) {
	var metaData, data []byte
	if err := c.getStmt.QueryRow(key[:]).Scan(&metaData, &data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.logger.Debug("tileset: cache miss", "key", key)
			return nil, Meta{}, false, nil
		}
		return nil, Meta{}, false, err
	}

	var meta Meta
	if err := decMode.Unmarshal(metaData, &meta); err != nil {
		return nil, Meta{}, false, fmt.Errorf("cache: entry %v: %w", key, err)
	}
	t, err := ts.Load(bytes.NewReader(data))
	if err != nil {
		return nil, Meta{}, false, fmt.Errorf("cache: entry %v: %w", key, err)
	}
	c.logger.Debug("tileset: cache hit", "key", key, "tiles", t.Count())
	return t, meta, true, nil
}

// Len returns the number of cached tilesets.
func (c *Cache) Len() (int, error) {
	var n int
	err := c.db.QueryRow("SELECT COUNT(*) FROM tilesets").Scan(&n)
	return n, err
}
