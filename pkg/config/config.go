// Copyright 2021 Matrix Origin
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap/zapcore"

	"github.com/computronium/hashlist/pkg/common/moerr"
	"github.com/computronium/hashlist/pkg/container/hashtable"
	"github.com/computronium/hashlist/pkg/logutil"
)

const (
	defaultInitialSize  = 16384
	defaultLineSentinel = -1
	defaultHashFunc     = "hsieh"
	defaultLoadWorkers  = 4
)

// Config is the configuration of the text index tools.
type Config struct {
	Table TableConfig       `toml:"table"`
	Store StoreConfig       `toml:"store"`
	Log   logutil.LogConfig `toml:"log"`
}

// TableConfig sizes the index of every list.
type TableConfig struct {
	//initial size of an index, its capacity is twice that. default is 16384
	InitialSize int `toml:"initialSize"`

	//key marking an empty index cell, never a valid line id. default is -1
	LineSentinel int `toml:"lineSentinel"`

	//hash function for string keys: hsieh, djb2, sdbm, polynomial or universal. default is hsieh
	HashFunc string `toml:"hashFunc"`
}

type StoreConfig struct {
	//number of files read at the same time. default is 4
	LoadWorkers int `toml:"loadWorkers"`
}

var hashFuncs = map[string]hashtable.HashFunc{
	"hsieh":      hashtable.HsiehHash,
	"djb2":       hashtable.DJB2Hash,
	"sdbm":       hashtable.SDBMHash,
	"polynomial": hashtable.PolynomialHash,
	"universal":  hashtable.UniversalHash,
}

// PathExists reports whether path exists and whether it is a regular file.
var PathExists = func(path string) (bool, bool, error) {
	fi, err := os.Stat(path)
	if err == nil {
		return true, !fi.IsDir(), nil
	}
	return false, false, err
}

// Load reads the toml file at path, fills the defaults and validates the
// result.
func Load(path string) (*Config, error) {
	exists, isFile, err := PathExists(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, moerr.ConvertGoError(moerr.Context(), err)
	}
	if !exists {
		return nil, moerr.NewFileNotFoundNoCtx(path)
	}
	if !isFile {
		return nil, moerr.NewBadConfigNoCtx("%s is a directory", path)
	}
	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, moerr.NewBadConfigNoCtx("%s: %v", path, err)
	}
	return cfg, cfg.prepare()
}

// Decode parses a toml document, fills the defaults and validates the
// result.
func Decode(data string) (*Config, error) {
	cfg := &Config{}
	if _, err := toml.Decode(data, cfg); err != nil {
		return nil, moerr.NewBadConfigNoCtx("%v", err)
	}
	return cfg, cfg.prepare()
}

// Default returns a configuration holding the default values.
func Default() *Config {
	cfg := &Config{}
	cfg.FillDefault()
	return cfg
}

func (c *Config) prepare() error {
	c.FillDefault()
	return c.Validate()
}

// FillDefault sets every unset field to its default.
func (c *Config) FillDefault() {
	if c.Table.InitialSize == 0 {
		c.Table.InitialSize = defaultInitialSize
	}
	if c.Table.LineSentinel == 0 {
		c.Table.LineSentinel = defaultLineSentinel
	}
	if c.Table.HashFunc == "" {
		c.Table.HashFunc = defaultHashFunc
	}
	c.Table.HashFunc = strings.ToLower(c.Table.HashFunc)
	if c.Store.LoadWorkers == 0 {
		c.Store.LoadWorkers = defaultLoadWorkers
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
}

// Validate checks the values after FillDefault.
func (c *Config) Validate() error {
	if c.Table.InitialSize < 0 {
		return moerr.NewBadConfigNoCtx("table.initialSize %d is negative", c.Table.InitialSize)
	}
	if c.Table.LineSentinel >= 0 {
		return moerr.NewBadConfigNoCtx("table.lineSentinel %d may collide with a line id", c.Table.LineSentinel)
	}
	if _, ok := hashFuncs[c.Table.HashFunc]; !ok {
		return moerr.NewBadConfigNoCtx("table.hashFunc %q is unknown", c.Table.HashFunc)
	}
	if c.Store.LoadWorkers < 0 {
		return moerr.NewBadConfigNoCtx("store.loadWorkers %d is negative", c.Store.LoadWorkers)
	}
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return moerr.NewBadConfigNoCtx("log.level %q is unknown", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return moerr.NewBadConfigNoCtx("log.format %q is unknown", c.Log.Format)
	}
	return nil
}

// StringHasher returns the hasher selected by HashFunc.
func (c *TableConfig) StringHasher() hashtable.StringHasher {
	return hashtable.StringHasher{Fn: hashFuncs[c.HashFunc]}
}
