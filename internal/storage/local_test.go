package storage

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-signage-cms/internal/domain"
)

// 真实走一遍 multipart 编解码，拿到和 gin 一样的 FileHeader
func makeFileHeader(t *testing.T, filename, ctype string, body []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	h.Set("Content-Type", ctype)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(body)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["file"][0]
}

func TestSaveImageAndDelete(t *testing.T) {
	root := t.TempDir()
	l := NewLocal(root, "/uploads", 10, false)

	fh := makeFileHeader(t, "photo.PNG", "image/png", []byte("fake png bytes"))
	p, err := l.SaveImage("lobby", fh)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(p, "/uploads/lobby/"))
	assert.True(t, strings.HasSuffix(p, ".png"), "extension lowercased: %s", p)

	rel := strings.TrimPrefix(p, "/uploads/")
	onDisk := filepath.Join(root, filepath.FromSlash(rel))
	_, err = os.Stat(onDisk)
	require.NoError(t, err)

	require.NoError(t, l.Delete(p))
	_, err = os.Stat(onDisk)
	assert.True(t, os.IsNotExist(err))
}

func TestSaveImageRejectsBadFiles(t *testing.T) {
	l := NewLocal(t.TempDir(), "/uploads", 1, false)

	cases := []struct {
		name, filename, ctype string
		body                  []byte
	}{
		{"wrong extension", "notes.txt", "text/plain", []byte("hi")},
		{"mime mismatch", "photo.png", "image/jpeg", []byte("hi")},
		{"svg disabled", "logo.svg", "image/svg+xml", []byte("<svg/>")},
		{"oversize", "big.png", "image/png", bytes.Repeat([]byte("x"), (1<<20)+1)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fh := makeFileHeader(t, tc.filename, tc.ctype, tc.body)
			_, err := l.SaveImage("f", fh)
			assert.Equal(t, domain.KindValidation, domain.KindOf(err))
		})
	}
}

func TestSaveImageSVGWhenAllowed(t *testing.T) {
	l := NewLocal(t.TempDir(), "/uploads", 10, true)

	fh := makeFileHeader(t, "logo.svg", "image/svg+xml", []byte("<svg/>"))
	p, err := l.SaveImage("logos", fh)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(p, ".svg"))
}

func TestDeleteIgnoresForeignPaths(t *testing.T) {
	root := t.TempDir()
	l := NewLocal(root, "/uploads", 10, false)

	// 不在自家前缀下的路径直接跳过
	assert.NoError(t, l.Delete("https://example.com/x.png"))
	assert.NoError(t, l.Delete("/etc/passwd"))

	// 越界路径不删
	outside := filepath.Join(filepath.Dir(root), "victim.txt")
	require.NoError(t, os.WriteFile(outside, []byte("keep me"), 0o644))
	_ = l.Delete("/uploads/../victim.txt")
	_, err := os.Stat(outside)
	assert.NoError(t, err)
}

func TestRemoveFolderGuards(t *testing.T) {
	root := t.TempDir()
	l := NewLocal(root, "/uploads", 10, false)

	sub := filepath.Join(root, "gone")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	require.NoError(t, l.RemoveFolder("gone"))
	_, err := os.Stat(sub)
	assert.True(t, os.IsNotExist(err))

	// 空名和带 .. 的一律不动
	assert.NoError(t, l.RemoveFolder(""))
	assert.NoError(t, l.RemoveFolder("../somewhere"))
}
