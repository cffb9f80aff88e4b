package snapshot

import (
	"fmt"
	"io"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zstd"
)

// Format and Version identify the snapshot layout in the header record.
const (
	Format  = "vtree-snapshot"
	Version = 1
)

// Record types.
const (
	recordHeader = "header"
	recordFolder = "folder"
	recordFile   = "file"
	recordEnd    = "end"
)

// record is the single CBOR item type of a snapshot stream. Fields unused
// by a record type are omitted.
type record struct {
	Type    string    `cbor:"type"`
	Format  string    `cbor:"format,omitempty"`
	Version int       `cbor:"version,omitempty"`
	Backend string    `cbor:"backend,omitempty"`
	Path    string    `cbor:"path,omitempty"`
	ModTime time.Time `cbor:"mod_time"`
	Size    int64     `cbor:"size,omitempty"`
	Hash    string    `cbor:"hash,omitempty"`
	Content []byte    `cbor:"content,omitempty"`
	Folders int       `cbor:"folders,omitempty"`
	Files   int       `cbor:"files,omitempty"`
}

var encMode cbor.EncMode

var decMode cbor.DecMode

func init() {
	var err error

	encOptions := cbor.CoreDetEncOptions()
	encOptions.Time = cbor.TimeRFC3339Nano
	encMode, err = encOptions.EncMode()
	if err != nil {
		panic("snapshot: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		MaxNestedLevels:   16,
		MaxMapPairs:       64,
		ExtraReturnErrors: cbor.ExtraDecErrorUnknownField,
	}.DecMode()
	if err != nil {
		panic("snapshot: CBOR decoder initialization failed: " + err.Error())
	}
}

// maxContentLen bounds a single file's content in one record.
var maxContentLen = 1 << 30

// writer compresses and encodes records.
type writer struct {
	zw  *zstd.Encoder
	enc *cbor.Encoder
}

func newWriter(w io.Writer) (*writer, error) {
	zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, err
	}
	return &writer{zw: zw, enc: encMode.NewEncoder(zw)}, nil
}

func (w *writer) write(rec record) error {
	return w.enc.Encode(rec)
}

// Close flushes the compressed stream. It does not close the destination.
func (w *writer) Close() error {
	return w.zw.Close()
}

// reader decompresses and decodes records.
type reader struct {
	zr  *zstd.Decoder
	dec *cbor.Decoder
}

func newReader(r io.Reader) (*reader, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	return &reader{zr: zr, dec: decMode.NewDecoder(zr)}, nil
}

// next returns io.EOF at the clean end of the stream.
func (r *reader) next() (record, error) {
	var rec record
	if err := r.dec.Decode(&rec); err != nil {
		return record{}, err
	}
	if len(rec.Content) > maxContentLen {
		return record{}, fmt.Errorf("%s content is %d bytes, limit %d", rec.Path, len(rec.Content), maxContentLen)
	}
	return rec, nil
}

func (r *reader) Close() {
	r.zr.Close()
}
