package elf

import (
	"bytes"

	goelf "debug/elf"
)

// Identify reports whether b starts with the ELF signature.
func Identify(b []byte) bool {
	return len(b) >= len(magic) && bytes.Equal(b[:len(magic)], magic)
}

// DecodeHeader validates the identification bytes and decodes the file
// header with the layout selected by the class byte.
func DecodeHeader(b []byte) (Header, error) {
	_, h, err := decodeHeader(b)
	return h, err
}

func decodeHeader(b []byte) (*layout, Header, error) {
	if !Identify(b) {
		return nil, Header{}, offsetError(StageIdentify, -1, 0, ErrMagic)
	}
	if len(b) < identLen {
		return nil, Header{}, offsetError(StageIdentify, -1, uint64(len(b)), ErrBounds)
	}
	class := Class(b[goelf.EI_CLASS])
	lay, ok := layoutOf(class)
	if !ok {
		return nil, Header{}, offsetError(StageIdentify, -1, goelf.EI_CLASS, ErrClass)
	}
	switch data := Data(b[goelf.EI_DATA]); data {
	case DataLSB:
	case DataMSB:
		unsupported := UnsupportedError{
			Field: "data encoding",
			Value: int(data),
		}
		return nil, Header{}, offsetError(StageIdentify, -1, goelf.EI_DATA, &unsupported)
	default:
		return nil, Header{}, offsetError(StageIdentify, -1, goelf.EI_DATA, ErrData)
	}
	if len(b) < lay.headerSize {
		return nil, Header{}, offsetError(StageHeader, -1, uint64(len(b)), ErrBounds)
	}
	h, err := lay.header(b)
	if err != nil {
		return nil, Header{}, offsetError(StageHeader, -1, 0, err)
	}
	return lay, h, nil
}
