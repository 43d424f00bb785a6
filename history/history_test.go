package history

import (
	"fmt"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pevans/mipsize/autosize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helper: create a test lookup store
func createTestLookupStore(t *testing.T) *LookupStore {
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "test.db")
	store, err := NewLookupStore(dbPath)
	require.NoError(t, err, "should create lookup store")
	t.Cleanup(func() { store.Close() })
	return store
}

// Test helper: create a sample resolution
func createTestResolution(model string, size int) *autosize.Resolution {
	return &autosize.Resolution{
		Path:    "/data/logs/" + model + autosize.InitSuffix,
		Segment: model + autosize.InitSuffix,
		Model:   model,
		URL:     autosize.InstanceURL(autosize.DefaultCatalogURL, model),
		Size:    size,
	}
}

// TestNewLookupStore_CreatesDatabase verifies database creation
func TestNewLookupStore_CreatesDatabase(t *testing.T) {
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "test.db")

	store, err := NewLookupStore(dbPath)
	require.NoError(t, err, "should create store")
	require.NotNil(t, store, "store should not be nil")
	defer store.Close()

	lookups, err := store.List(LookupFilter{})
	require.NoError(t, err, "should be able to query database")
	assert.Empty(t, lookups, "new database should have no lookups")
}

// TestNewLookupStore_ExistingDatabase verifies reopening keeps data
func TestNewLookupStore_ExistingDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := NewLookupStore(dbPath)
	require.NoError(t, err)
	lookup, err := store.Record("/a/markshare-init.csv", createTestResolution("markshare", 62), nil)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := NewLookupStore(dbPath)
	require.NoError(t, err, "should reopen existing database")
	defer reopened.Close()

	got, err := reopened.Get(lookup.LookupID)
	require.NoError(t, err)
	require.NotNil(t, got.Size)
	assert.Equal(t, 62, *got.Size)
}

// TestRecord_Success verifies a successful resolution is stored
func TestRecord_Success(t *testing.T) {
	store := createTestLookupStore(t)
	res := createTestResolution("markshare", 62)

	before := time.Now()
	lookup, err := store.Record(res.Path, res, nil)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, lookup.LookupID, "should generate UUID")
	assert.True(t, lookup.Succeeded())
	assert.Nil(t, lookup.ErrorKind)
	assert.Nil(t, lookup.Error)

	got, err := store.Get(lookup.LookupID)
	require.NoError(t, err)
	assert.Equal(t, res.Path, got.Path)
	require.NotNil(t, got.Model)
	assert.Equal(t, "markshare", *got.Model)
	require.NotNil(t, got.URL)
	assert.Equal(t, "https://miplib.zib.de/instance_details_markshare.html", *got.URL)
	require.NotNil(t, got.Size)
	assert.Equal(t, 62, *got.Size)
	assert.WithinDuration(t, before, got.ResolvedAt, 5*time.Second)
}

// TestRecord_Failures verifies failed resolutions keep kind, message and URL
func TestRecord_Failures(t *testing.T) {
	tests := []struct {
		name  string
		path  string
		err   error
		model *string
		url   *string
		kind  autosize.Kind
	}{
		{
			name:  "wrong format",
			path:  "/data/logs/markshare.csv",
			err:   &autosize.WrongFormatError{Name: "markshare.csv"},
			kind:  autosize.KindWrongFormat,
			model: nil,
			url:   nil,
		},
		{
			name:  "remote lookup",
			path:  "/data/logs/missing-init.csv",
			err:   &autosize.RemoteLookupError{URL: "https://miplib.zib.de/instance_details_missing.html", StatusCode: 404, Reason: "Not Found"},
			kind:  autosize.KindRemoteLookup,
			model: ptr("missing"),
			url:   ptr("https://miplib.zib.de/instance_details_missing.html"),
		},
		{
			name:  "size not found",
			path:  "/data/logs/odd-init.csv",
			err:   &autosize.SizeNotFoundError{Model: "odd", URL: "https://miplib.zib.de/instance_details_odd.html"},
			kind:  autosize.KindSizeNotFound,
			model: ptr("odd"),
			url:   ptr("https://miplib.zib.de/instance_details_odd.html"),
		},
		{
			name:  "wrapped transport",
			path:  "/data/logs/net-init.csv",
			err:   fmt.Errorf("resolve: %w", &autosize.TransportError{URL: "https://miplib.zib.de/instance_details_net.html", Err: http.ErrHandlerTimeout}),
			kind:  autosize.KindTransport,
			model: ptr("net"),
			url:   ptr("https://miplib.zib.de/instance_details_net.html"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := createTestLookupStore(t)

			lookup, err := store.Record(tt.path, nil, tt.err)
			require.NoError(t, err)
			assert.False(t, lookup.Succeeded())

			got, err := store.Get(lookup.LookupID)
			require.NoError(t, err)

			assert.Nil(t, got.Size, "failed lookups must not carry a size")
			require.NotNil(t, got.ErrorKind)
			assert.Equal(t, string(tt.kind), *got.ErrorKind)
			require.NotNil(t, got.Error)
			assert.Equal(t, tt.err.Error(), *got.Error)
			assert.Equal(t, tt.model, got.Model)
			assert.Equal(t, tt.url, got.URL)
		})
	}
}

// TestGet_NotFound verifies unknown IDs
func TestGet_NotFound(t *testing.T) {
	store := createTestLookupStore(t)

	_, err := store.Get(uuid.New())
	assert.ErrorIs(t, err, ErrLookupNotFound)
}

// TestList_NewestFirst verifies ordering and pagination
func TestList_NewestFirst(t *testing.T) {
	store := createTestLookupStore(t)

	var ids []uuid.UUID
	for i := 0; i < 5; i++ {
		res := createTestResolution(fmt.Sprintf("m%d", i), i)
		lookup, err := store.Record(res.Path, res, nil)
		require.NoError(t, err)
		ids = append(ids, lookup.LookupID)
	}

	all, err := store.List(LookupFilter{})
	require.NoError(t, err)
	require.Len(t, all, 5)
	for i, lookup := range all {
		assert.Equal(t, ids[4-i], lookup.LookupID, "should list newest first")
	}

	page, err := store.List(LookupFilter{Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, ids[3], page[0].LookupID)
	assert.Equal(t, ids[2], page[1].LookupID)

	rest, err := store.List(LookupFilter{Offset: 3})
	require.NoError(t, err)
	assert.Len(t, rest, 2, "offset without limit should return the remainder")

	count, err := store.Count(LookupFilter{Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 5, count, "count should ignore pagination")
}

// TestList_Filters verifies model and outcome filtering
func TestList_Filters(t *testing.T) {
	store := createTestLookupStore(t)

	_, err := store.Record("a/markshare-init.csv", createTestResolution("markshare", 62), nil)
	require.NoError(t, err)
	_, err = store.Record("b/markshare-init.csv", nil, &autosize.TransportError{URL: "u", Err: http.ErrServerClosed})
	require.NoError(t, err)
	_, err = store.Record("c/other-init.csv", createTestResolution("other", 7), nil)
	require.NoError(t, err)

	model := "markshare"
	byModel, err := store.List(LookupFilter{Model: &model})
	require.NoError(t, err)
	assert.Len(t, byModel, 2)

	failed := true
	onlyFailed, err := store.List(LookupFilter{Failed: &failed})
	require.NoError(t, err)
	require.Len(t, onlyFailed, 1)
	assert.Equal(t, "b/markshare-init.csv", onlyFailed[0].Path)

	succeeded := false
	both, err := store.Count(LookupFilter{Model: &model, Failed: &succeeded})
	require.NoError(t, err)
	assert.Equal(t, 1, both)
}

// TestDelete verifies single deletion
func TestDelete(t *testing.T) {
	store := createTestLookupStore(t)
	lookup, err := store.Record("x-init.csv", createTestResolution("x", 1), nil)
	require.NoError(t, err)

	require.NoError(t, store.Delete(lookup.LookupID))

	_, err = store.Get(lookup.LookupID)
	assert.ErrorIs(t, err, ErrLookupNotFound)

	assert.ErrorIs(t, store.Delete(lookup.LookupID), ErrLookupNotFound)
}

// TestClear verifies every lookup is removed
func TestClear(t *testing.T) {
	store := createTestLookupStore(t)
	for i := 0; i < 3; i++ {
		_, err := store.Record("x-init.csv", createTestResolution("x", i), nil)
		require.NoError(t, err)
	}

	removed, err := store.Clear()
	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)

	count, err := store.Count(LookupFilter{})
	require.NoError(t, err)
	assert.Zero(t, count)
}

func ptr(s string) *string {
	return &s
}

// TestList_ModelFilterSkipsWrongFormat verifies unparseable names are not
// indexed under their file name
func TestList_ModelFilterSkipsWrongFormat(t *testing.T) {
	store := createTestLookupStore(t)

	_, err := store.Record("/data/logs/markshare.csv", nil, &autosize.WrongFormatError{Name: "markshare.csv"})
	require.NoError(t, err)

	model := "markshare.csv"
	lookups, err := store.List(LookupFilter{Model: &model})
	require.NoError(t, err)
	assert.Empty(t, lookups)
}
