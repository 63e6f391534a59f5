package ar

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/midbel/elfsym/internal/elftest"
	"github.com/midbel/tape"
	"github.com/midbel/tape/ar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsArchive(t *testing.T) {
	assert.True(t, IsArchive([]byte("!<arch>\nfoo")))
	assert.False(t, IsArchive([]byte("!<arch>")))
	assert.False(t, IsArchive([]byte("\x7fELF")))
	assert.False(t, IsArchive(nil))
}

func TestResolveName(t *testing.T) {
	table := []byte("a_rather_long_object_name.o/\nsecond_long_object_name.o/\n")
	data := []struct {
		Name string
		Want string
		Err  bool
	}{
		{Name: "hello.o/", Want: "hello.o"},
		{Name: "hello.o", Want: "hello.o"},
		{Name: "/0", Want: "a_rather_long_object_name.o"},
		{Name: "/29", Want: "second_long_object_name.o"},
		{Name: "/4", Want: "ther_long_object_name.o"},
		{Name: "/1000", Err: true},
		{Name: "/-1", Err: true},
		{Name: "/abc", Err: true},
	}
	for _, d := range data {
		got, err := resolveName(d.Name, table)
		if d.Err {
			assert.ErrorIs(t, err, ErrLongName, d.Name)
			continue
		}
		require.NoError(t, err, d.Name)
		assert.Equal(t, d.Want, got)
	}
}

func TestNewReaderInvalid(t *testing.T) {
	_, err := NewReader(strings.NewReader("\x7fELF\x02\x01\x01"))
	assert.ErrorIs(t, err, ErrMagic)

	_, err = NewReader(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrMagic)
}

func TestReader(t *testing.T) {
	var (
		buf   bytes.Buffer
		files = []struct {
			Name string
			Data string
		}{
			{Name: "first.o", Data: "odd"},
			{Name: "__.SYMDEF", Data: "index"},
			{Name: "second.o", Data: "even"},
		}
	)
	aw, err := ar.NewWriter(&buf)
	require.NoError(t, err)
	for _, f := range files {
		h := tape.Header{
			Filename: f.Name,
			Mode:     0644,
			Size:     int64(len(f.Data)),
			ModTime:  time.Unix(0, 0),
		}
		require.NoError(t, aw.WriteHeader(&h))
		_, err := io.WriteString(aw, f.Data)
		require.NoError(t, err)
	}
	require.NoError(t, aw.Close())

	file := filepath.Join(t.TempDir(), "libtest.a")
	require.NoError(t, os.WriteFile(file, buf.Bytes(), 0o644))

	ms, err := List(file)
	require.NoError(t, err)
	require.Len(t, ms, 2)
	assert.Equal(t, "first.o", ms[0].Name)
	assert.Equal(t, []byte("odd"), ms[0].Data)
	assert.Equal(t, int64(3), ms[0].Size)
	assert.Equal(t, "second.o", ms[1].Name)
	assert.Equal(t, []byte("even"), ms[1].Data)
}

func TestReaderGNU(t *testing.T) {
	data := elftest.Archive(
		elftest.Member{Name: "a_rather_long_object_name.o", Data: []byte("odd")},
		elftest.Member{Name: "short.o", Data: []byte("short")},
		elftest.Member{Name: "second_long_object_name.o", Data: []byte("even")},
	)
	file := filepath.Join(t.TempDir(), "libgnu.a")
	require.NoError(t, os.WriteFile(file, data, 0o644))

	ms, err := List(file)
	require.NoError(t, err)
	require.Len(t, ms, 3)

	assert.Equal(t, "a_rather_long_object_name.o", ms[0].Name)
	assert.Equal(t, []byte("odd"), ms[0].Data)
	assert.Equal(t, "/0", ms[0].Header.Filename)
	assert.Equal(t, int64(0o644), ms[0].Header.Mode)

	assert.Equal(t, "short.o", ms[1].Name)
	assert.Equal(t, []byte("short"), ms[1].Data)
	assert.Equal(t, int64(5), ms[1].Size)

	assert.Equal(t, "second_long_object_name.o", ms[2].Name)
	assert.Equal(t, []byte("even"), ms[2].Data)
}

func TestReaderSymbolIndexOnly(t *testing.T) {
	r, err := NewReader(bytes.NewReader(elftest.Archive(elftest.Member{Name: "b.o", Data: []byte("b")})))
	require.NoError(t, err)

	m, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "b.o", m.Name)

	_, err = r.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestReaderBlankFields(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(magic)
	member(&buf, "//", "", "long_enough_member_name.o/\n")
	member(&buf, "/0", "", "z")

	ms := readAll(t, &buf)
	require.Len(t, ms, 1)
	assert.Equal(t, "long_enough_member_name.o", ms[0].Name)
	assert.Equal(t, []byte("z"), ms[0].Data)
	assert.Equal(t, int64(0), ms[0].Header.Uid)
}

func TestReaderInvalid(t *testing.T) {
	data := []struct {
		Name string
		Data func(*bytes.Buffer)
		Err  error
	}{
		{
			Name: "numeric",
			Data: func(b *bytes.Buffer) { member(b, "x.o/", "abc", "xx") },
			Err:  ErrHeader,
		},
		{
			Name: "truncated-header",
			Data: func(b *bytes.Buffer) { b.WriteString("x.o/            0") },
			Err:  ErrHeader,
		},
		{
			Name: "terminator",
			Data: func(b *bytes.Buffer) {
				fmt.Fprintf(b, "%-16s%-12d%-6d%-6d%-8o%-10d!!", "x.o/", 0, 0, 0, 0644, 2)
				b.WriteString("xx")
			},
			Err: ErrHeader,
		},
		{
			Name: "truncated-data",
			Data: func(b *bytes.Buffer) {
				fmt.Fprintf(b, "%-16s%-12d%-6d%-6d%-8o%-10d`\n", "x.o/", 0, 0, 0, 0644, 100)
				b.WriteString("short")
			},
			Err: ErrSize,
		},
		{
			Name: "negative-size",
			Data: func(b *bytes.Buffer) {
				fmt.Fprintf(b, "%-16s%-12d%-6d%-6d%-8o%-10d`\n", "x.o/", 0, 0, 0, 0644, -1)
			},
			Err: ErrSize,
		},
		{
			Name: "long-name",
			Data: func(b *bytes.Buffer) { member(b, "/12", "", "xx") },
			Err:  ErrLongName,
		},
	}
	for _, d := range data {
		t.Run(d.Name, func(t *testing.T) {
			var buf bytes.Buffer
			buf.Write(magic)
			d.Data(&buf)

			r, err := NewReader(&buf)
			require.NoError(t, err)
			_, err = r.Next()
			assert.ErrorIs(t, err, d.Err)

			_, again := r.Next()
			assert.Equal(t, err, again)
		})
	}
}

func readAll(t *testing.T, r io.Reader) []*Member {
	t.Helper()
	rs, err := NewReader(r)
	require.NoError(t, err)

	var ms []*Member
	for {
		m, err := rs.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		ms = append(ms, m)
	}
	return ms
}

// member writes a header with every numeric field set to id, a blank id
// giving blank fields.
func member(buf *bytes.Buffer, name, id, data string) {
	fmt.Fprintf(buf, "%-16s%-12s%-6s%-6s%-8s%-10d`\n", name, id, id, id, id, len(data))
	buf.WriteString(data)
	if len(data)%2 == 1 {
		buf.WriteByte('\n')
	}
}
