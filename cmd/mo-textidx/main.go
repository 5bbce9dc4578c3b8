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

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/computronium/hashlist/pkg/common/moerr"
	"github.com/computronium/hashlist/pkg/config"
	"github.com/computronium/hashlist/pkg/logutil"
	"github.com/computronium/hashlist/pkg/textstore"
)

const (
	exitOK = iota
	exitUsage
	exitFailure
)

type options struct {
	configFile string
	show       bool
	distinct   bool
	line       int
	files      []string
}

func parseArgs(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("mo-textidx", flag.ContinueOnError)
	fs.SetOutput(stderr)
	o := &options{}
	fs.StringVar(&o.configFile, "cfg", "", "toml configuration, defaults are used when empty")
	fs.BoolVar(&o.show, "show", false, "print every line as line[id]:text")
	fs.BoolVar(&o.distinct, "distinct", false, "count repeated lines")
	fs.IntVar(&o.line, "line", -1, "print the line with this id")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "usage: mo-textidx [flags] file...\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	o.files = fs.Args()
	if len(o.files) == 0 {
		fs.Usage()
		return nil, flag.ErrHelp
	}
	return o, nil
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func setupLogger(cfg *config.Config) {
	logutil.SetupLogger(&cfg.Log)
}

func run(ctx context.Context, o *options, stdout io.Writer) error {
	cfg, err := loadConfig(o.configFile)
	if err != nil {
		return err
	}
	setupLogger(cfg)

	txt, err := textstore.New(cfg.Table)
	if err != nil {
		return err
	}
	defer txt.Close()

	n, err := txt.LoadFiles(ctx, o.files, cfg.Store.LoadWorkers)
	if err != nil {
		return err
	}
	stats := txt.Stats()
	logutil.Info("files loaded",
		zap.Int("files", len(o.files)),
		zap.Int("lines", n),
		zap.Int("bytes", txt.NBytes()),
		zap.Uint64("capacity", stats.Capacity),
		zap.Uint64("collisions", stats.Collisions))

	if o.line >= 0 {
		l, ok := txt.Get(o.line)
		if !ok {
			return moerr.NewKeyNotFoundNoCtx(o.line)
		}
		fmt.Fprintf(stdout, "%s:%d:%s", l.FileName, l.RealID, l.Text)
	}
	if o.show {
		if err := txt.Show(stdout); err != nil {
			return err
		}
	}
	if o.distinct {
		distinct, dups, err := txt.Distinct(cfg.Table.StringHasher())
		if err != nil {
			return err
		}
		ds := distinct.Stats()
		distinct.ReleaseAll(nil)
		fmt.Fprintf(stdout, "distinct %d repeated %d collisions %d estimate %d\n",
			ds.Len, dups, ds.Collisions, txt.EstimateDistinct())
	}
	fmt.Fprintf(stdout, "lines %d bytes %d load %.3f\n", n, txt.NBytes(), stats.LoadFactor)
	return nil
}

func main() {
	o, err := parseArgs(os.Args[1:], os.Stderr)
	if err != nil {
		os.Exit(exitUsage)
	}
	if err := run(context.Background(), o, os.Stdout); err != nil {
		logutil.Error("mo-textidx failed", zap.Error(err))
		fmt.Fprintf(os.Stderr, "mo-textidx: %v\n", err)
		os.Exit(exitFailure)
	}
	os.Exit(exitOK)
}
