// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package badger

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
)

// Backend owns the BadgerDB instance shared by the document repository
// and the vector index.
type Backend struct {
	db     *badger.DB
	logger *slog.Logger
}

// slogAdapter routes badger's internal logging through slog.
type slogAdapter struct {
	logger *slog.Logger
}

var _ badger.Logger = (*slogAdapter)(nil)

func (a *slogAdapter) Errorf(msg string, items ...any) {
	a.logger.Error(fmt.Sprintf(msg, items...))
}

func (a *slogAdapter) Warningf(msg string, items ...any) {
	a.logger.Warn(fmt.Sprintf(msg, items...))
}

func (a *slogAdapter) Infof(msg string, items ...any) {
	a.logger.Info(fmt.Sprintf(msg, items...))
}

func (a *slogAdapter) Debugf(msg string, items ...any) {
	a.logger.Debug(fmt.Sprintf(msg, items...))
}

// OpenBackend opens a BadgerDB database at filePath, creating the
// directory when missing. With inMemory set the path is ignored and
// nothing touches disk.
func OpenBackend(filePath string, inMemory bool) (*Backend, error) {
	logger := slog.Default().With("component", "storage.badger")

	var opts badger.Options
	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := ensureDir(filePath); err != nil {
			return nil, err
		}
		opts = badger.DefaultOptions(filePath)
	}
	opts.Logger = &slogAdapter{logger: logger}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &Backend{db: db, logger: logger}, nil
}

func ensureDir(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return os.MkdirAll(path, 0755)
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}
	return nil
}

// Close closes the underlying database.
func (b *Backend) Close() error {
	return b.db.Close()
}

// WithTx runs fn inside a BadgerDB transaction. A write transaction is
// created when isWrite is set; fn is responsible for committing. The
// transaction is discarded on error.
func (b *Backend) WithTx(fn func(tx *badger.Txn) error, isWrite bool) error {
	tx := b.db.NewTransaction(isWrite)
	defer tx.Discard()
	return fn(tx)
}
