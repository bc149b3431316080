package dseries

import (
	"io"

	"github.com/klauspost/compress/zip"

	dserrors "github.com/mwestland/go-dseries/errors"
)

// WriteArchive renders the document v as a single compressed archive with
// the same internal layout as the foldered target. Entries are written in
// sorted order with zeroed creator and timestamp metadata, so archives
// produced from equal documents are byte-identical across machines and
// runs. The archive is written to completion or not at all.
func WriteArchive(w io.Writer, v any) error {
	set, err := MarshalFileSet(v)
	if err != nil {
		return err
	}

	zw := zip.NewWriter(w)
	for _, name := range set.Names() {
		// A zero FileHeader pins CreatorVersion and Modified, which is
		// what makes the output reproducible.
		fw, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
		if err != nil {
			return &dserrors.IOFault{Op: "create archive entry", Path: name, Err: err}
		}
		if _, err := fw.Write(set[name]); err != nil {
			return &dserrors.IOFault{Op: "write archive entry", Path: name, Err: err}
		}
	}
	if err := zw.Close(); err != nil {
		return &dserrors.IOFault{Op: "close archive", Err: err}
	}
	return nil
}

// ReadArchive reconstructs the document v from an archive produced by
// WriteArchive (or by the calculation engine, which preserves the layout).
func ReadArchive(r io.ReaderAt, size int64, v any, opts ...Option) error {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return &dserrors.IOFault{Op: "open archive", Err: err}
	}
	set := FileSet{}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return &dserrors.IOFault{Op: "open archive entry", Path: f.Name, Err: err}
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return &dserrors.IOFault{Op: "read archive entry", Path: f.Name, Err: err}
		}
		set[f.Name] = data
	}
	return UnmarshalFileSet(set, v, opts...)
}
