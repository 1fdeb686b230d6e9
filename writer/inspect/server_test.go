package inspect

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ugparu/isobmff/format/bmff"
	bt "github.com/ugparu/isobmff/format/bmff/bmfftest"
)

func do(t *testing.T, s *Server, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(method, path, r))
	return w
}

func TestInspect(t *testing.T) {
	t.Parallel()
	s := New(DefaultConfig())

	w := do(t, s, http.MethodPost, "/inspect", bt.MinimalMovie())
	require.Equal(t, http.StatusOK, w.Code)

	var m bmff.Movie
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	require.Equal(t, "isom", m.MajorBrand)
	require.Equal(t, uint32(1000), m.Timescale)
	require.Len(t, m.Tracks, 1)
	require.Equal(t, []uint64{48, 4096, 8192}, m.Tracks[0].ChunkOffsets)

	w = do(t, s, http.MethodPost, "/inspect", bt.HeifImage())
	require.Equal(t, http.StatusOK, w.Code)
	m = bmff.Movie{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	require.Equal(t, uint32(1), m.PrimaryItem)
	require.Len(t, m.Items, 2)
}

func TestInspectTree(t *testing.T) {
	t.Parallel()
	s := New(DefaultConfig())

	userType := [16]byte{0xa5, 0xd4, 0x0b, 0x30}
	in := bt.Cat(bt.MinimalMovie(), bt.UUIDBox(userType, bt.Zeros(4)))
	w := do(t, s, http.MethodPost, "/inspect/tree", in)
	require.Equal(t, http.StatusOK, w.Code)

	var nodes []*Node
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &nodes))
	require.Len(t, nodes, 4)
	require.Equal(t, "ftyp", nodes[0].Type)
	require.Equal(t, "moov", nodes[1].Type)
	require.Equal(t, 8, nodes[1].HeaderSize)
	require.Equal(t, nodes[0].Size, uint64(nodes[1].Offset))
	require.Equal(t, "mvhd", nodes[1].Children[0].Type)
	require.Equal(t, "trak", nodes[1].Children[1].Type)
	require.Equal(t, "uuid", nodes[3].Type)
	require.Equal(t, 24, nodes[3].HeaderSize)
	require.Equal(t, "a5d40b30-0000-0000-0000-000000000000", nodes[3].UserType)
	require.Zero(t, nodes[3].Trailing)
	require.Empty(t, nodes[3].Children)
}

func TestInspect_Rejections(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.MaxBodyBytes = 64
	s := New(cfg)

	w := do(t, s, http.MethodPost, "/inspect", bt.MinimalMovie())
	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	w = do(t, s, http.MethodPost, "/inspect/tree", bt.Box("moov", bt.FullBox("stco", 0, 0, bt.U32(1000))))
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var body struct {
		Error string   `json:"error"`
		Path  []string `json:"path"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, []string{"moov", "stco"}, body.Path)

	// decodes, but there is nothing to summarize
	w = do(t, s, http.MethodPost, "/inspect", bt.Box("free"))
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.Contains(t, w.Body.String(), "ftyp")
}

func TestInspect_MaxDepth(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.MaxDepth = 2
	s := New(cfg)

	w := do(t, s, http.MethodPost, "/inspect/tree", bt.MinimalMovie())
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.Contains(t, w.Body.String(), "too deep")
}

func TestHealthAndMetrics(t *testing.T) {
	t.Parallel()
	s := New(DefaultConfig())

	w := do(t, s, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	require.Equal(t, http.StatusOK, do(t, s, http.MethodPost, "/inspect", bt.MinimalMovie()).Code)
	require.Equal(t, http.StatusUnprocessableEntity, do(t, s, http.MethodPost, "/inspect", bt.U32(3)).Code)

	w = do(t, s, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	out := w.Body.String()
	require.Contains(t, out, `bmff_parse_total{result="ok"} 1`)
	require.Contains(t, out, `bmff_parse_total{result="invalid"} 1`)
	require.Contains(t, out, "bmff_boxes_decoded 13")
	require.Contains(t, out, "bmff_parse_seconds_count 1")
}

func TestPprofRoutes(t *testing.T) {
	t.Parallel()

	w := do(t, New(DefaultConfig()), http.MethodGet, "/debug/pprof/cmdline", nil)
	require.Equal(t, http.StatusOK, w.Code)

	cfg := DefaultConfig()
	cfg.Pprof = false
	w = do(t, New(cfg), http.MethodGet, "/debug/pprof/cmdline", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), cfg)

	dir := t.TempDir()
	path := filepath.Join(dir, "inspect.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen: 127.0.0.1:9000\nlog_level: debug\nmax_depth: 8\n"), 0o600))
	cfg, err = LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:9000", cfg.Listen)
	require.Equal(t, int64(defaultMaxBodyBytes), cfg.MaxBodyBytes)
	require.Equal(t, 8, cfg.MaxDepth)
	require.True(t, cfg.Pprof)
	lvl, err := cfg.Level()
	require.NoError(t, err)
	require.Equal(t, "debug", lvl.String())

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, nil, 0o600))
	cfg, err = LoadConfig(empty)
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), cfg)

	for name, body := range map[string]string{
		"size.yaml":  "max_body_bytes: 0\n",
		"level.yaml": "log_level: loud\n",
		"depth.yaml": "max_depth: -1\n",
		"bad.yaml":   "listen: [\n",
	} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
		_, err = LoadConfig(path)
		require.Error(t, err, name)
	}

	_, err = LoadConfig(filepath.Join(dir, "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
