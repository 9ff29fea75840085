package mapper

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"recordmap/internal/metrics"
	"recordmap/internal/schema"
	"recordmap/internal/storage"
	"recordmap/internal/storage/sqlite"
)

func userDescriptor(t *testing.T) schema.Descriptor {
	t.Helper()
	d, err := schema.New("user",
		schema.Column{Name: "id", Type: "integer", PrimaryKey: true, AutoIncrement: true},
		schema.Column{Name: "first_name", Type: "text"},
		schema.Column{Name: "last_name", Type: "text"},
		schema.Column{Name: "email", Type: "text"},
		schema.Column{Name: "gender", Type: "text"},
		schema.Column{Name: "ip_address", Type: "text"},
	)
	if err != nil {
		t.Fatalf("schema.New() error = %v", err)
	}
	return d
}

// openMemory opens an in-memory SQLite session closed at test end.
func openMemory(t *testing.T) *storage.Session {
	t.Helper()
	sess, err := storage.Open(context.Background(), storage.Config{Kind: sqlite.Kind, DSN: ":memory:"}, zerolog.Nop())
	if err != nil {
		t.Fatalf("storage.Open() error = %v", err)
	}
	t.Cleanup(func() { _ = sess.Close(false) })
	return sess
}

// newUsers returns a mapper over a freshly created user table.
func newUsers(t *testing.T, sess *storage.Session) *Mapper {
	t.Helper()
	m, err := New(userDescriptor(t), sess.Dialect())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := m.CreateTable(context.Background(), sess.Ext()); err != nil {
		t.Fatalf("CreateTable() error = %v", err)
	}
	return m
}

var ada = map[string]any{
	"first_name": "Ada",
	"last_name":  "Lovelace",
	"email":      "ada@example.com",
	"gender":     "Female",
	"ip_address": "10.0.0.1",
}

func TestNew(t *testing.T) {
	t.Parallel()

	if _, err := New(schema.Descriptor{}, sqlite.Dialect{}); err == nil {
		t.Fatalf("New(zero descriptor) error = nil")
	}
	if _, err := New(userDescriptor(t), nil); err == nil {
		t.Fatalf("New(nil dialect) error = nil")
	}

	m, err := New(userDescriptor(t), sqlite.Dialect{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if m.TableName() != "user" || m.PrimaryKeyName() != "id" {
		t.Fatalf("TableName/PrimaryKeyName = %q/%q", m.TableName(), m.PrimaryKeyName())
	}
	cols := m.Columns()
	if len(cols) != 6 || cols[0] != (Column{Name: "id", Type: "integer", PrimaryKey: true, AutoIncrement: true}) {
		t.Fatalf("Columns() = %+v", cols)
	}
	if cols[5].Name != "ip_address" || cols[5].PrimaryKey {
		t.Fatalf("Columns()[5] = %+v", cols[5])
	}
}

func TestStatements(t *testing.T) {
	t.Parallel()

	m, err := New(userDescriptor(t), sqlite.Dialect{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if want := `SELECT "id", "first_name", "last_name", "email", "gender", "ip_address" FROM "user" WHERE "id" = ?`; m.selectSQL != want {
		t.Fatalf("selectSQL = %q", m.selectSQL)
	}
	if want := `UPDATE "user" SET "first_name" = ?, "last_name" = ?, "email" = ?, "gender" = ?, "ip_address" = ? WHERE "id" = ?`; m.updateSQL != want {
		t.Fatalf("updateSQL = %q", m.updateSQL)
	}
	if want := `DELETE FROM "user" WHERE "id" = ?`; m.deleteSQL != want {
		t.Fatalf("deleteSQL = %q", m.deleteSQL)
	}
}

func TestRecord_UnknownColumn(t *testing.T) {
	t.Parallel()

	m, err := New(userDescriptor(t), sqlite.Dialect{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := m.NewRecord(map[string]any{"nickname": "x"}); !errors.Is(err, ErrUnknownColumn) {
		t.Fatalf("NewRecord(nickname) error = %v, want ErrUnknownColumn", err)
	}

	rec, err := m.NewRecord(nil)
	if err != nil {
		t.Fatalf("NewRecord(nil) error = %v", err)
	}
	if err := rec.Set("age", 3); !errors.Is(err, ErrUnknownColumn) {
		t.Fatalf("Set(age) error = %v, want ErrUnknownColumn", err)
	}
	if err := rec.Set("email", "x@example.com"); err != nil {
		t.Fatalf("Set(email) error = %v", err)
	}
	if v, ok := rec.Get("email"); !ok || v != "x@example.com" {
		t.Fatalf("Get(email) = %v, %v", v, ok)
	}
	if rec.Saved() || rec.PrimaryKey() != nil {
		t.Fatalf("new record reports saved")
	}
}

func TestSaveThenGet_RoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sess := openMemory(t)
	m := newUsers(t, sess)

	rec, err := m.NewRecord(ada)
	if err != nil {
		t.Fatalf("NewRecord() error = %v", err)
	}
	pk, err := m.Save(ctx, sess.Ext(), rec)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if pk != int64(1) || rec.PrimaryKey() != int64(1) {
		t.Fatalf("Save() pk = %v, record pk = %v, want 1", pk, rec.PrimaryKey())
	}

	got, err := m.GetByPrimaryKey(ctx, sess.Ext(), pk)
	if err != nil {
		t.Fatalf("GetByPrimaryKey() error = %v", err)
	}
	if !got.Saved() || got.PrimaryKey() != int64(1) {
		t.Fatalf("fetched pk = %v", got.PrimaryKey())
	}
	vals := got.Values()
	delete(vals, "id")
	if !reflect.DeepEqual(map[string]any(vals), ada) {
		t.Fatalf("fetched values = %v, want %v", vals, ada)
	}

	second, err := m.NewRecord(map[string]any{"email": "b@example.com"})
	if err != nil {
		t.Fatalf("NewRecord() error = %v", err)
	}
	if pk, err := m.Save(ctx, sess.Ext(), second); err != nil || pk != int64(2) {
		t.Fatalf("second Save() = %v, %v, want 2", pk, err)
	}
	got, err = m.GetByPrimaryKey(ctx, sess.Ext(), int64(2))
	if err != nil {
		t.Fatalf("GetByPrimaryKey(2) error = %v", err)
	}
	if v, _ := got.Get("first_name"); v != nil {
		t.Fatalf("unset column = %v, want nil", v)
	}

	d, err := schema.New("attachment",
		schema.Column{Name: "id", Type: "integer", PrimaryKey: true, AutoIncrement: true},
		schema.Column{Name: "name", Type: "text"},
		schema.Column{Name: "payload", Type: "blob"},
	)
	if err != nil {
		t.Fatalf("schema.New() error = %v", err)
	}
	files, _ := New(d, sess.Dialect())
	if err := files.CreateTable(ctx, sess.Ext()); err != nil {
		t.Fatalf("CreateTable() error = %v", err)
	}
	want := map[string]any{"name": "raw.bin", "payload": []byte{0xff, 0x00, 0x01}}
	blob, _ := files.NewRecord(want)
	id, err := files.Save(ctx, sess.Ext(), blob)
	if err != nil {
		t.Fatalf("Save(blob) error = %v", err)
	}
	got, err = files.GetByPrimaryKey(ctx, sess.Ext(), id)
	if err != nil {
		t.Fatalf("GetByPrimaryKey(blob) error = %v", err)
	}
	vals = got.Values()
	delete(vals, "id")
	if !reflect.DeepEqual(map[string]any(vals), want) {
		t.Fatalf("fetched blob values = %#v, want %#v", vals, want)
	}
}

func TestSave_UpdateIsIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sess := openMemory(t)
	m := newUsers(t, sess)

	rec, _ := m.NewRecord(ada)
	pk, err := m.Save(ctx, sess.Ext(), rec)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	before, err := m.GetByPrimaryKey(ctx, sess.Ext(), pk)
	if err != nil {
		t.Fatalf("GetByPrimaryKey() error = %v", err)
	}
	got, err := m.Save(ctx, sess.Ext(), before)
	if err != nil || got != nil {
		t.Fatalf("update Save() = %v, %v, want nil, nil", got, err)
	}
	after, err := m.GetByPrimaryKey(ctx, sess.Ext(), pk)
	if err != nil {
		t.Fatalf("GetByPrimaryKey() error = %v", err)
	}
	if !reflect.DeepEqual(before.Values(), after.Values()) {
		t.Fatalf("values changed: %v -> %v", before.Values(), after.Values())
	}

	if err := after.Set("email", "countess@example.com"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if _, err := m.Save(ctx, sess.Ext(), after); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	changed, _ := m.GetByPrimaryKey(ctx, sess.Ext(), pk)
	if v, _ := changed.Get("email"); v != "countess@example.com" {
		t.Fatalf("email = %v after update", v)
	}
}

func TestDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sess := openMemory(t)
	m := newUsers(t, sess)

	rec, _ := m.NewRecord(ada)
	if err := m.Delete(ctx, sess.Ext(), rec); !errors.Is(err, ErrNotSaved) {
		t.Fatalf("Delete(unsaved) error = %v, want ErrNotSaved", err)
	}

	pk, err := m.Save(ctx, sess.Ext(), rec)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := m.Delete(ctx, sess.Ext(), rec); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if rec.Saved() {
		t.Fatalf("record still saved after Delete")
	}
	if _, err := m.GetByPrimaryKey(ctx, sess.Ext(), pk); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetByPrimaryKey(deleted) error = %v, want ErrNotFound", err)
	}

	// A deleted record saves as a new row.
	again, err := m.Save(ctx, sess.Ext(), rec)
	if err != nil {
		t.Fatalf("re-Save() error = %v", err)
	}
	if again == pk {
		t.Fatalf("re-Save() reused pk %v", pk)
	}

	stale, _ := m.GetByPrimaryKey(ctx, sess.Ext(), again)
	if err := m.Delete(ctx, sess.Ext(), stale); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	stale.pk = again
	if err := m.Delete(ctx, sess.Ext(), stale); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Delete(missing row) error = %v, want ErrNotFound", err)
	}

	// Updating a vanished row is not an error.
	stale.pk = again
	if got, err := m.Save(ctx, sess.Ext(), stale); err != nil || got != nil {
		t.Fatalf("Save(missing row) = %v, %v, want nil, nil", got, err)
	}
	if _, err := m.GetByPrimaryKey(ctx, sess.Ext(), again); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Save(missing row) recreated it: %v", err)
	}
}

func TestCreateTable_Idempotent(t *testing.T) {
	t.Parallel()

	sess := openMemory(t)
	m := newUsers(t, sess)
	for i := 0; i < 2; i++ {
		if err := m.CreateTable(context.Background(), sess.Ext()); err != nil {
			t.Fatalf("CreateTable() call %d error = %v", i+2, err)
		}
	}
}

func TestErrors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sess := openMemory(t)
	m, err := New(userDescriptor(t), sess.Dialect())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	rec, _ := m.NewRecord(ada)
	if _, err := m.Save(ctx, sess.Ext(), rec); err == nil {
		t.Fatalf("Save() without table error = nil")
	}
	if _, err := m.GetByPrimaryKey(ctx, sess.Ext(), 1); err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("GetByPrimaryKey() without table error = %v, want driver error", err)
	}

	other, _ := New(userDescriptor(t), sess.Dialect())
	foreign, _ := other.NewRecord(nil)
	if _, err := m.Save(ctx, sess.Ext(), foreign); !errors.Is(err, ErrForeignRecord) {
		t.Fatalf("Save(foreign) error = %v, want ErrForeignRecord", err)
	}
	if err := m.Delete(ctx, sess.Ext(), nil); !errors.Is(err, ErrForeignRecord) {
		t.Fatalf("Delete(nil) error = %v, want ErrForeignRecord", err)
	}
}

func TestNaturalKey(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sess := openMemory(t)
	d, err := schema.New("setting",
		schema.Column{Name: "name", PrimaryKey: true},
		schema.Column{Name: "value"},
	)
	if err != nil {
		t.Fatalf("schema.New() error = %v", err)
	}
	m, _ := New(d, sess.Dialect())
	if err := m.CreateTable(ctx, sess.Ext()); err != nil {
		t.Fatalf("CreateTable() error = %v", err)
	}

	noKey, _ := m.NewRecord(map[string]any{"value": "x"})
	if _, err := m.Save(ctx, sess.Ext(), noKey); err == nil {
		t.Fatalf("Save() without natural key error = nil")
	}

	rec, _ := m.NewRecord(map[string]any{"name": "theme", "value": "dark"})
	if pk, err := m.Save(ctx, sess.Ext(), rec); err != nil || pk != "theme" {
		t.Fatalf("Save() = %v, %v, want theme", pk, err)
	}
	_ = rec.Set("value", "light")
	if _, err := m.Save(ctx, sess.Ext(), rec); err != nil {
		t.Fatalf("update Save() error = %v", err)
	}
	got, err := m.GetByPrimaryKey(ctx, sess.Ext(), "theme")
	if err != nil {
		t.Fatalf("GetByPrimaryKey() error = %v", err)
	}
	if v, _ := got.Get("value"); v != "light" {
		t.Fatalf("value = %v, want light", v)
	}
}

// returningDialect asks for the generated key through RETURNING, which SQLite
// supports, so the query-row key path runs against the same engine.
type returningDialect struct{ sqlite.Dialect }

func (returningDialect) InsertSQL(table string, cols []string, key string) (string, bool) {
	q := storage.BuildInsert(sqlite.Dialect{}.QuoteIdent, table, cols, storage.InsertOptions{
		Suffix: "RETURNING " + sqlite.Dialect{}.QuoteIdent(key),
	})
	return q, true
}

func TestSave_ReturningKey(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sess := openMemory(t)
	m, err := New(userDescriptor(t), returningDialect{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := m.CreateTable(ctx, sess.Ext()); err != nil {
		t.Fatalf("CreateTable() error = %v", err)
	}
	rec, _ := m.NewRecord(ada)
	pk, err := m.Save(ctx, sess.Ext(), rec)
	if err != nil || pk != int64(1) {
		t.Fatalf("Save() = %v, %v, want 1", pk, err)
	}
}

func TestSave_InTransaction(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sess := openMemory(t)
	m := newUsers(t, sess)

	if err := sess.Begin(ctx); err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	rec, _ := m.NewRecord(ada)
	pk, err := m.Save(ctx, sess.Ext(), rec)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := sess.Rollback(); err != nil {
		t.Fatalf("Rollback() error = %v", err)
	}
	if _, err := m.GetByPrimaryKey(ctx, sess.Ext(), pk); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetByPrimaryKey(rolled back) error = %v, want ErrNotFound", err)
	}
}

// countingBackend records counter increments keyed by op and status.
type countingBackend struct {
	mu     sync.Mutex
	counts map[string]float64
}

func (b *countingBackend) IncCounter(name string, delta float64, l metrics.Labels) {
	if name != metrics.OpTotal {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.counts[l["table"]+"/"+l["op"]+"/"+l["status"]] += delta
}
func (b *countingBackend) ObserveHistogram(string, float64, metrics.Labels) {}
func (b *countingBackend) Flush() error                                     { return nil }

// Not parallel: installs a global metrics backend.
func TestOperationsRecordMetrics(t *testing.T) {
	b := &countingBackend{counts: map[string]float64{}}
	metrics.SetBackend(b)
	t.Cleanup(metrics.Reset)

	ctx := context.Background()
	sess := openMemory(t)
	m := newUsers(t, sess)

	rec, _ := m.NewRecord(ada)
	pk, _ := m.Save(ctx, sess.Ext(), rec)
	_, _ = m.Save(ctx, sess.Ext(), rec)
	_, _ = m.GetByPrimaryKey(ctx, sess.Ext(), pk)
	_ = m.Delete(ctx, sess.Ext(), rec)
	_, _ = m.GetByPrimaryKey(ctx, sess.Ext(), pk)

	want := map[string]float64{
		"user/create_table/success": 1,
		"user/save_insert/success":  1,
		"user/save_update/success":  1,
		"user/get/success":          1,
		"user/delete/success":       1,
		"user/get/failure":          1,
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if !reflect.DeepEqual(b.counts, want) {
		t.Fatalf("counts = %v, want %v", b.counts, want)
	}
}

func BenchmarkSave(b *testing.B) {
	ctx := context.Background()
	sess, err := storage.Open(ctx, storage.Config{Kind: sqlite.Kind, DSN: ":memory:"}, zerolog.Nop())
	if err != nil {
		b.Fatalf("storage.Open() error = %v", err)
	}
	defer sess.Close(false)

	d, _ := schema.New("user",
		schema.Column{Name: "id", Type: "integer", PrimaryKey: true, AutoIncrement: true},
		schema.Column{Name: "email"},
	)
	m, _ := New(d, sess.Dialect())
	if err := m.CreateTable(ctx, sess.Ext()); err != nil {
		b.Fatalf("CreateTable() error = %v", err)
	}

	start := time.Now()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rec, _ := m.NewRecord(map[string]any{"email": "bench@example.com"})
		if _, err := m.Save(ctx, sess.Ext(), rec); err != nil {
			b.Fatalf("Save() error = %v", err)
		}
	}
	b.ReportMetric(float64(b.N)/time.Since(start).Seconds(), "rows/s")
}
