package elftest

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Member is a file stored by Archive.
type Member struct {
	Name string
	Data []byte
}

// Archive lays out members the way GNU ar does: a symbol index "/", a
// long name table "//" with blank numeric fields when a name does not
// fit in the header, then the members. Every member is padded to an even
// offset with a newline.
func Archive(members ...Member) []byte {
	var (
		buf   bytes.Buffer
		names bytes.Buffer
		refs  = make([]string, len(members))
	)
	for i, m := range members {
		if len(m.Name) < 16 {
			refs[i] = m.Name + "/"
			continue
		}
		refs[i] = fmt.Sprintf("/%d", names.Len())
		names.WriteString(m.Name + "/\n")
	}
	if names.Len()%2 == 1 {
		names.WriteByte('\n')
	}

	// one symbol named "main" pointing at the first member: 13 bytes, so
	// the index itself needs padding.
	var index bytes.Buffer
	binary.Write(&index, binary.BigEndian, uint32(1))
	binary.Write(&index, binary.BigEndian, uint32(0))
	index.WriteString("main\x00")

	buf.WriteString("!<arch>\n")
	writeMember(&buf, "/", "0", "0", "0", "0", index.Bytes())
	if names.Len() > 0 {
		writeMember(&buf, "//", "", "", "", "", names.Bytes())
	}
	for i, m := range members {
		writeMember(&buf, refs[i], "0", "0", "0", "644", m.Data)
	}
	return buf.Bytes()
}

func writeMember(w *bytes.Buffer, name, when, uid, gid, mode string, data []byte) {
	fmt.Fprintf(w, "%-16s%-12s%-6s%-6s%-8s%-10d`\n", name, when, uid, gid, mode, len(data))
	w.Write(data)
	if len(data)%2 == 1 {
		w.WriteByte('\n')
	}
}
