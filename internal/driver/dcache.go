package driver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"borrowck/internal/diag"
	"borrowck/internal/ownership"
	"borrowck/internal/pipeline"
	"borrowck/internal/project"
	"borrowck/internal/source"
	"borrowck/internal/version"
)

// Current schema version - increment when DiskPayload format changes
const diskCacheSchemaVersion uint16 = 1

// DiskCache хранит результаты проверки файлов на диске по хешу содержимого.
// Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// DiskPayload is the cached verdict of one script.
type DiskPayload struct {
	// Schema version for safe invalidation when format changes
	Schema uint16 `msgpack:"schema"`

	Path        string         `msgpack:"path"`
	ContentHash project.Digest `msgpack:"content_hash"`

	Diagnostics []CachedDiagnostic `msgpack:"diags"`
	Funcs       []CachedFunc       `msgpack:"funcs"`
	Skipped     []string           `msgpack:"skipped,omitempty"`
}

// CachedDiagnostic is a diagnostic with spans reduced to byte offsets; the
// file is known from the cache key.
type CachedDiagnostic struct {
	Severity uint8        `msgpack:"sev"`
	Code     uint16       `msgpack:"code"`
	Message  string       `msgpack:"msg"`
	Start    uint32       `msgpack:"start"`
	End      uint32       `msgpack:"end"`
	Notes    []CachedNote `msgpack:"notes,omitempty"`
}

type CachedNote struct {
	Start uint32 `msgpack:"start"`
	End   uint32 `msgpack:"end"`
	Msg   string `msgpack:"msg"`
}

// CachedFunc keeps the per-function verdict.
type CachedFunc struct {
	Name      string `msgpack:"name"`
	Ops       int    `msgpack:"ops"`
	Violation uint8  `msgpack:"violation,omitempty"`
	Message   string `msgpack:"message,omitempty"`
	Start     uint32 `msgpack:"start,omitempty"`
	End       uint32 `msgpack:"end,omitempty"`
}

// OpenDiskCache initializes and returns a disk cache at the standard location.
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenDiskCacheAt(filepath.Join(base, app))
}

// OpenDiskCacheAt opens a cache rooted at dir.
func OpenDiskCacheAt(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache dir: %w", err)
	}
	return &DiskCache{dir: dir}, nil
}

// Dir returns the cache root.
func (c *DiskCache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

func (c *DiskCache) pathFor(key project.Digest) string {
	hexKey := key.String()
	// Для удобства читаемости/очистки - подкаталог "files".
	return filepath.Join(c.dir, "files", hexKey[:2], hexKey+".mp")
}

// Put serializes and writes a payload to the disk cache.
func (c *DiskCache) Put(key project.Digest, payload *DiskPayload) (err error) {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		// после успешного Rename временного файла уже нет
		if rmErr := os.Remove(f.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) && err == nil {
			err = rmErr
		}
	}()

	if err := msgpack.NewEncoder(f).Encode(payload); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(f.Name(), p)
}

// Get reads and deserializes a payload from the disk cache.
func (c *DiskCache) Get(key project.Digest, out *DiskPayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()
	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, err
	}
	if out.Schema != diskCacheSchemaVersion {
		return false, nil
	}
	return true, nil
}

// DropAll invalidates the cache.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	// тривиально: переименуем каталог и удалим
	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	return os.RemoveAll(old)
}

// cacheKey salts the content hash with everything that changes the verdict.
func (r *run) cacheKey() (project.Digest, bool) {
	if !r.opts.cacheable() {
		return project.Digest{}, false
	}
	salt := fmt.Sprintf("schema=%d;version=%s;max=%d", diskCacheSchemaVersion, version.String(), r.opts.maxDiagnostics())
	return project.Combine(project.Digest(r.res.File.Hash), []byte(salt)), true
}

// restore replays a cached verdict. Diagnostics of the lex stage are already
// in the bag and are not stored twice.
func (r *run) restore(key project.Digest) bool {
	var payload DiskPayload
	ok, err := r.opts.Cache.Get(key, &payload)
	if err != nil {
		// битый кеш не мешает проверке
		diag.ReportWarning(r.reporter, diag.IOCacheError, source.Span{File: r.res.File.ID}, fmt.Sprintf("cache read failed: %v", err)).Emit()
		return false
	}
	if !ok || payload.ContentHash != project.Digest(r.res.File.Hash) {
		return false
	}
	r.emit(pipeline.StageCache, pipeline.StatusWorking, nil)
	fileID := r.res.File.ID
	for _, cd := range payload.Diagnostics {
		d := diag.New(diag.Severity(cd.Severity), diag.Code(cd.Code), source.Span{File: fileID, Start: cd.Start, End: cd.End}, cd.Message)
		for _, n := range cd.Notes {
			d = d.WithNote(source.Span{File: fileID, Start: n.Start, End: n.End}, n.Msg)
		}
		r.reporter.Report(d.Code, d.Severity, d.Primary, d.Message, d.Notes)
	}
	for _, cf := range payload.Funcs {
		report := FuncReport{Name: cf.Name, Ops: cf.Ops}
		if cf.Violation != 0 {
			report.Violation = &ownership.Violation{
				Kind:    ownership.ViolationKind(cf.Violation),
				Span:    source.Span{File: fileID, Start: cf.Start, End: cf.End},
				Message: cf.Message,
			}
		}
		r.res.Funcs = append(r.res.Funcs, report)
	}
	r.res.Skipped = payload.Skipped
	r.res.Cached = true
	return true
}

func (r *run) store(key project.Digest, useCache bool) {
	if !useCache {
		return
	}
	payload := &DiskPayload{
		Schema:      diskCacheSchemaVersion,
		Path:        r.res.Path,
		ContentHash: project.Digest(r.res.File.Hash),
		Skipped:     r.res.Skipped,
	}
	for _, d := range r.res.Bag.Items() {
		if strings.HasPrefix(d.Code.ID(), "LEX") || d.Code == diag.IOCacheError {
			continue
		}
		cd := CachedDiagnostic{
			Severity: uint8(d.Severity),
			Code:     uint16(d.Code),
			Message:  d.Message,
			Start:    d.Primary.Start,
			End:      d.Primary.End,
		}
		for _, n := range d.Notes {
			cd.Notes = append(cd.Notes, CachedNote{Start: n.Span.Start, End: n.Span.End, Msg: n.Msg})
		}
		payload.Diagnostics = append(payload.Diagnostics, cd)
	}
	for _, fn := range r.res.Funcs {
		cf := CachedFunc{Name: fn.Name, Ops: fn.Ops}
		if v := fn.Violation; v != nil {
			cf.Violation = uint8(v.Kind)
			cf.Message = v.Message
			cf.Start, cf.End = v.Span.Start, v.Span.End
		}
		payload.Funcs = append(payload.Funcs, cf)
	}
	if err := r.opts.Cache.Put(key, payload); err != nil {
		diag.ReportWarning(r.reporter, diag.IOCacheError, source.Span{File: r.res.File.ID}, fmt.Sprintf("cache write failed: %v", err)).Emit()
	}
}
