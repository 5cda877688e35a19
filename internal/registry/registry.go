// Package registry persists named descriptor texts in a SQLite (local
// file or Turso libsql) database via gorm, and exposes them as a
// typetree.ReferenceScope so parses can resolve names against
// previously registered descriptors instead of only an in-process
// scope. Connection setup mirrors the teacher's db.Connect: local
// DSNs use the pure-Go glebarez/sqlite driver, libsql:// and
// https:// DSNs go through the libsql client wrapped in gorm's own
// sqlite Dialector.
package registry

import (
	"crypto/sha256"
	"database/sql"
	"database/sql/driver"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	localsqlite "github.com/glebarez/sqlite"
	libsql "github.com/tursodatabase/libsql-client-go/libsql"
	"gorm.io/datatypes"
	remotesqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/celix-project/dynitype/internal/abi"
	"github.com/celix-project/dynitype/internal/dfilog"
	"github.com/celix-project/dynitype/internal/errs"
	"github.com/celix-project/dynitype/internal/parser"
	"github.com/celix-project/dynitype/internal/typetree"
	"github.com/google/uuid"

	"github.com/celix-project/dynitype/models"
)

// Connect opens dsn — a local file path, or a libsql://.../https://
// URL for a remote Turso database — runs migrations, and returns the
// *gorm.DB. debug enables gorm's own query logger at Info level,
// exactly as the teacher's db.Connect does.
func Connect(dsn string, debug bool) (*gorm.DB, error) {
	if !isURL(dsn) {
		if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create registry directory: %w", err)
			}
		}
	}

	gcfg := &gorm.Config{}
	if debug {
		gcfg.Logger = logger.Default.LogMode(logger.Info)
	}

	var (
		dialector gorm.Dialector
		conn      *sql.DB
	)
	if isURL(dsn) {
		var (
			connector driver.Connector
			err       error
		)
		if token := os.Getenv("DFICTL_LIBSQL_AUTH_TOKEN"); token != "" {
			connector, err = libsql.NewConnector(dsn, libsql.WithAuthToken(token))
		} else {
			connector, err = libsql.NewConnector(dsn)
		}
		if err != nil {
			return nil, fmt.Errorf("create libsql connector: %w", err)
		}
		conn = sql.OpenDB(connector)
		dialector = remotesqlite.New(remotesqlite.Config{DriverName: "libsql", Conn: conn, DSN: dsn})
	} else {
		dialector = localsqlite.Open(dsn)
	}

	db, err := gorm.Open(dialector, gcfg)
	if err != nil {
		if conn != nil {
			conn.Close()
		}
		return nil, fmt.Errorf("connect registry: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("migrate registry: %w", err)
	}
	return db, nil
}

func isURL(dsn string) bool {
	return len(dsn) > 6 && (dsn[:6] == "libsql" ||
		(len(dsn) > 7 && dsn[:7] == "http://") ||
		(len(dsn) > 8 && dsn[:8] == "https://"))
}

// Migrate applies the registry's schema.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.DescriptorRecord{})
}

// Scope is a typetree.ReferenceScope backed by the registry. It lazily
// parses and caches each record the first time it's looked up, so a
// busy resolver doesn't re-parse the same descriptor on every
// reference.
type Scope struct {
	db     *gorm.DB
	oracle abi.Oracle
	log    dfilog.Logger

	mu    sync.Mutex
	cache map[string]*typetree.Node
}

// NewScope builds a Scope over db.
func NewScope(db *gorm.DB, oracle abi.Oracle, log dfilog.Logger) *Scope {
	if oracle == nil {
		oracle = abi.DefaultOracle{}
	}
	if log == nil {
		log = dfilog.Nop{}
	}
	return &Scope{db: db, oracle: oracle, log: log, cache: map[string]*typetree.Node{}}
}

// Lookup implements typetree.ReferenceScope.
func (s *Scope) Lookup(name string) (*typetree.Node, bool) {
	s.mu.Lock()
	if n, ok := s.cache[name]; ok {
		s.mu.Unlock()
		return n, true
	}
	s.mu.Unlock()

	var rec models.DescriptorRecord
	if err := s.db.Where("name = ?", name).First(&rec).Error; err != nil {
		return nil, false
	}

	n, err := parser.ParseString(rec.Text, parser.Options{Name: name, Oracle: s.oracle, Logger: s.log, ExtScope: s})
	if err != nil {
		s.log.Errorf("registry: stored descriptor %q failed to parse: %v", name, err)
		return nil, false
	}

	s.mu.Lock()
	s.cache[name] = n
	s.mu.Unlock()
	return n, true
}

// ErrDigestConflict is returned by Put when name is already registered
// with different descriptor text.
var ErrDigestConflict = errs.New(errs.CodeParseError, "descriptor name already registered with different content")

// Put registers text under name, content-addressed by its SHA-256
// digest. Re-registering the same name with identical text is a no-op;
// re-registering with different text fails with ErrDigestConflict
// rather than silently overwriting a live reference target.
func (s *Scope) Put(name, text string) error {
	digest := sha256Hex(text)

	var existing models.DescriptorRecord
	err := s.db.Where("name = ?", name).First(&existing).Error
	switch {
	case err == nil:
		if existing.Digest != digest {
			return ErrDigestConflict
		}
		return nil
	case err == gorm.ErrRecordNotFound:
		// fall through to insert
	default:
		return err
	}

	rec := models.DescriptorRecord{
		ID:     uuid.NewString(),
		Name:   name,
		Text:   text,
		Digest: digest,
		Meta:   datatypes.JSONMap{"registered_via": "dfictl"},
	}
	return s.db.Create(&rec).Error
}

// Get returns the raw descriptor text registered under name.
func (s *Scope) Get(name string) (string, error) {
	var rec models.DescriptorRecord
	if err := s.db.Where("name = ?", name).First(&rec).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", errs.New(errs.CodeNotFound, "no descriptor registered under %q", name)
		}
		return "", err
	}
	return rec.Text, nil
}

// List returns every registered name.
func (s *Scope) List() ([]string, error) {
	var recs []models.DescriptorRecord
	if err := s.db.Select("name").Find(&recs).Error; err != nil {
		return nil, err
	}
	names := make([]string, len(recs))
	for i, r := range recs {
		names[i] = r.Name
	}
	return names, nil
}

func sha256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
