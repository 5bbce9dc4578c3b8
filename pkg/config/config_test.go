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
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/prashantv/gostub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/computronium/hashlist/pkg/common/moerr"
	"github.com/computronium/hashlist/pkg/container/hashtable"
)

const sampleConfig = `
[table]
initialSize = 2
hashFunc = "DJB2"

[store]
loadWorkers = 2

[log]
level = "debug"
format = "json"
max-size = 64
`

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 16384, cfg.Table.InitialSize)
	assert.Equal(t, -1, cfg.Table.LineSentinel)
	assert.Equal(t, "hsieh", cfg.Table.HashFunc)
	assert.Equal(t, 4, cfg.Store.LoadWorkers)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	require.NoError(t, cfg.Validate())
}

func TestDecode(t *testing.T) {
	cfg, err := Decode(sampleConfig)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Table.InitialSize)
	assert.Equal(t, -1, cfg.Table.LineSentinel)
	assert.Equal(t, "djb2", cfg.Table.HashFunc)
	assert.Equal(t, 2, cfg.Store.LoadWorkers)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 64, cfg.Log.MaxSize)

	h := cfg.Table.StringHasher()
	assert.Equal(t, hashtable.DJB2Hash("abc", 64), h.Hash("abc", 64))
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		doc  string
	}{
		{"negative size", "[table]\ninitialSize = -2\n"},
		{"sentinel is a line id", "[table]\nlineSentinel = 3\n"},
		{"unknown hash", "[table]\nhashFunc = \"md5\"\n"},
		{"negative workers", "[store]\nloadWorkers = -1\n"},
		{"unknown level", "[log]\nlevel = \"loud\"\n"},
		{"unknown format", "[log]\nformat = \"xml\"\n"},
		{"not toml", "[table\n"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Decode(c.doc)
			require.True(t, moerr.IsMoErrCode(err, moerr.ErrBadConfig), "%v", err)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "textidx.toml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Table.InitialSize)

	_, err = Load(filepath.Join(dir, "missing.toml"))
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrFileNotFound))

	_, err = Load(dir)
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrBadConfig))
}

func TestLoadStatFailure(t *testing.T) {
	stubs := gostub.Stub(&PathExists, func(string) (bool, bool, error) {
		return false, false, errors.New("permission denied")
	})
	defer stubs.Reset()

	_, err := Load("/etc/textidx.toml")
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInternal))

	stubs.Stub(&PathExists, func(string) (bool, bool, error) {
		return false, false, nil
	})
	_, err = Load("/etc/textidx.toml")
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrFileNotFound))
}
