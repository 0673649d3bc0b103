package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lunagic/radar/radar"
)

const compilePrefix = "radar-compile"

// NewCompileCache wraps driver so compiled statements are remembered in
// cacheDriver for ttl. Every other capability goes straight to driver.
//
// A cached statement decodes to parameters of the same types and values the
// driver produced. Queries or statements holding values without an exact
// encoding (structs, pointers, named types) are compiled every time.
func NewCompileCache(driver radar.Driver, cacheDriver Driver, ttl time.Duration) *CompileCache {
	return &CompileCache{
		Driver: driver,
		cache:  cacheDriver,
		ttl:    ttl,
	}
}

type CompileCache struct {
	radar.Driver
	cache Driver
	ttl   time.Duration
}

func (driver *CompileCache) Compile(ctx context.Context, query radar.Query) (radar.Statement, error) {
	key, cacheable := driver.key(query)
	if !cacheable {
		return driver.Driver.Compile(ctx, query)
	}

	if statement, err := driver.load(ctx, key); err == nil {
		return statement, nil
	}

	statement, err := driver.Driver.Compile(ctx, query)
	if err != nil {
		return radar.Statement{}, err
	}

	if entry, ok := newStatementEntry(statement); ok {
		if payload, err := json.Marshal(entry); err == nil {
			// A failed store only costs a recompile next time
			_ = driver.cache.Store(ctx, key, payload, driver.ttl)
		}
	}

	return statement, nil
}

// Purge forgets every statement compiled for this dialect, for use after the
// schema changes.
func (driver *CompileCache) Purge(ctx context.Context) error {
	return driver.cache.Purge(ctx, driver.prefix())
}

func (driver *CompileCache) prefix() string {
	return fmt.Sprintf("%s-%s-", compilePrefix, driver.Dialect())
}

func (driver *CompileCache) load(ctx context.Context, key string) (radar.Statement, error) {
	payload, err := driver.cache.Load(ctx, key)
	if err != nil {
		return radar.Statement{}, err
	}

	entry := statementEntry{}
	if err := json.Unmarshal(payload, &entry); err != nil {
		return radar.Statement{}, err
	}

	return entry.statement()
}

// compileKey is what a cache key is hashed from. Where and Insert carry their
// value types so that, for example, []byte("abc") and "YWJj" differ.
type compileKey struct {
	Select *radar.Selection `json:"select"`
	From   *radar.Source    `json:"from"`
	Where  value            `json:"where"`
	Insert value            `json:"insert"`
	Into   string           `json:"into"`
	Limit  *int             `json:"limit"`
}

func (driver *CompileCache) key(query radar.Query) (string, bool) {
	where, ok := encodeValue(query.Where)
	if !ok {
		return "", false
	}

	insert, ok := encodeValue(query.Insert)
	if !ok {
		return "", false
	}

	encoded, err := json.Marshal(compileKey{
		Select: query.Select,
		From:   query.From,
		Where:  where,
		Insert: insert,
		Into:   query.Into,
		Limit:  query.Limit,
	})
	if err != nil {
		return "", false
	}

	return fmt.Sprintf("%s%x", driver.prefix(), sha256.Sum256(encoded)), true
}
