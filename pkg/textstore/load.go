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

package textstore

import (
	"bufio"
	"context"
	"io"
	"os"
	"sync"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/computronium/hashlist/pkg/common/moerr"
)

const readBufferSize = 0x10000

var openFile = func(path string) (io.ReadCloser, error) {
	return os.Open(path)
}

// readLines splits r into lines numbered from 0. Every line keeps its
// terminator; a last line without one is kept as well.
func readLines(r io.Reader, fileName string) ([]*Line, error) {
	br := bufio.NewReaderSize(r, readBufferSize)
	var lines []*Line
	for {
		s, err := br.ReadString('\n')
		if len(s) > 0 {
			lines = append(lines, newLine(fileName, s, len(lines)))
		}
		if err == io.EOF {
			return lines, nil
		}
		if err != nil {
			return nil, moerr.ConvertGoError(moerr.Context(), err)
		}
	}
}

// Load appends the lines read from r and returns how many there were.
func (t *Text) Load(r io.Reader, fileName string) (int, error) {
	lines, err := readLines(r, fileName)
	if err != nil {
		return 0, err
	}
	if err := t.appendLines(lines); err != nil {
		return 0, err
	}
	t.logger.Debug("text loaded", zap.String("file", fileName), zap.Int("lines", len(lines)))
	return len(lines), nil
}

func readFile(path string) ([]*Line, error) {
	if path == "" {
		return nil, moerr.NewInvalidArgNoCtx("file name", path)
	}
	f, err := openFile(path)
	if err != nil {
		return nil, moerr.ConvertGoError(moerr.Context(), err)
	}
	defer f.Close()
	return readLines(f, path)
}

// LoadFile appends the lines of the file at path.
func (t *Text) LoadFile(path string) (int, error) {
	lines, err := readFile(path)
	if err != nil {
		return 0, err
	}
	if err := t.appendLines(lines); err != nil {
		return 0, err
	}
	t.logger.Debug("text loaded", zap.String("file", path), zap.Int("lines", len(lines)))
	return len(lines), nil
}

// LoadFiles reads the files with up to workers files open at a time and
// appends them in the order of paths. Nothing is appended when one of the
// files cannot be read.
func (t *Text) LoadFiles(ctx context.Context, paths []string, workers int) (int, error) {
	if workers <= 0 {
		workers = 1
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return 0, moerr.NewInternalErrorNoCtx("create load pool: %v", err)
	}
	defer pool.Release()

	results := make([][]*Line, len(paths))
	errs := make([]error, len(paths))
	var wg sync.WaitGroup
	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			wg.Wait()
			return 0, moerr.NewInternalErrorNoCtx("load canceled: %v", err)
		}
		i, path := i, path
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			results[i], errs[i] = readFile(path)
		}); err != nil {
			wg.Done()
			wg.Wait()
			return 0, moerr.NewInternalErrorNoCtx("submit %s: %v", path, err)
		}
	}
	wg.Wait()

	for i := range paths {
		if errs[i] != nil {
			return 0, errs[i]
		}
	}
	n := 0
	for i, lines := range results {
		if err := t.appendLines(lines); err != nil {
			return n, err
		}
		n += len(lines)
		t.logger.Debug("text loaded", zap.String("file", paths[i]), zap.Int("lines", len(lines)))
	}
	return n, nil
}
