package zip

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteArchive(t *testing.T) {
	var buf bytes.Buffer
	err := WriteArchive(&buf, []Asset{
		{Filename: "cover.webp", MIME: "image/webp", Data: []byte("one")},
		{Filename: "../../cover.webp", MIME: "image/webp", Data: []byte("two")},
		{Filename: "notes/thumb.png", MIME: "image/png", Data: []byte("three")},
	})
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	require.Len(t, zr.File, 3)

	want := map[string]string{"cover.webp": "one", "cover-2.webp": "two", "thumb.png": "three"}
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		require.Equal(t, want[f.Name], string(data), f.Name)
	}
}

func TestWriteArchiveRejectsEmptyName(t *testing.T) {
	var buf bytes.Buffer
	require.Error(t, WriteArchive(&buf, []Asset{{Filename: "  ", Data: []byte("x")}}))
}
