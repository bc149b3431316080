package dseries

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"reflect"
	"sort"

	dserrors "github.com/mwestland/go-dseries/errors"
	"github.com/mwestland/go-dseries/plan"
)

// FileSet is the foldered representation of a document: a flat map from
// slash-separated relative paths to file contents. Collections map to one
// folder per element type; everything else lives at the root.
type FileSet map[string][]byte

// Names returns the paths in deterministic (sorted) order.
func (fs FileSet) Names() []string {
	names := make([]string, 0, len(fs))
	for name := range fs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WriteDir materializes the file set under dir, creating folders as
// needed. Unrelated existing entries are left alone; the write is not
// transactional, so callers needing atomicity should target a temporary
// location and move it into place.
func (fs FileSet) WriteDir(dir string) error {
	for _, name := range fs.Names() {
		target := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return &dserrors.IOFault{Op: "mkdir", Path: filepath.Dir(target), Err: err}
		}
		if err := os.WriteFile(target, fs[name], 0o644); err != nil {
			return &dserrors.IOFault{Op: "write", Path: target, Err: err}
		}
	}
	return nil
}

// ReadDir loads every .json file under dir into a FileSet.
func ReadDir(dir string) (FileSet, error) {
	out := FileSet{}
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(p) != ".json" {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		out[filepath.ToSlash(rel)] = data
		return nil
	})
	if err != nil {
		return nil, &dserrors.IOFault{Op: "read dir", Path: dir, Err: err}
	}
	return out, nil
}

// MarshalFileSet renders the document v as its foldered representation.
// Each top-level collection maps to one folder named after its element
// type's group; the n-th element (0-indexed) writes to <name>.json for the
// first element and <name>_<n>.json for subsequent ones. Non-list fields
// write to <name>.json at the root. Leaves serialize as self-contained
// JSON documents rather than bracketed text.
func MarshalFileSet(v any) (FileSet, error) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, fmt.Errorf("dseries: cannot serialize nil document")
		}
		rv = rv.Elem()
	}
	sc, err := schemaOf(rv.Type())
	if err != nil {
		return nil, err
	}
	if sc.kind != plan.KindBlock {
		return nil, &dserrors.SchemaError{Type: rv.Type().String(), Msg: "foldered target requires a plain block root"}
	}

	out := FileSet{}
	for i := range sc.fields {
		f := &sc.fields[i]
		fv := rv.Field(f.index)
		if f.optional {
			if fv.IsNil() {
				continue
			}
			fv = fv.Elem()
		}
		ft := fv.Type()

		switch {
		case ft.Kind() == reflect.Slice:
			et := elemStructType(ft)
			if et == nil {
				return nil, &dserrors.SchemaError{Type: rv.Type().String(), Msg: "foldered collections require structure elements"}
			}
			esc, err := schemaOf(et)
			if err != nil {
				return nil, err
			}
			for j := 0; j < fv.Len(); j++ {
				name := esc.file
				if j > 0 {
					name = fmt.Sprintf("%s_%d", esc.file, j)
				}
				data, err := encodeJSON(fv.Index(j))
				if err != nil {
					return nil, err
				}
				out[path.Join(esc.group, name+".json")] = data
			}

		case ft.Kind() == reflect.Struct && ft.Implements(kindedType):
			fsc, err := schemaOf(ft)
			if err != nil {
				return nil, err
			}
			data, err := encodeJSON(fv)
			if err != nil {
				return nil, err
			}
			out[fsc.file+".json"] = data

		default:
			return nil, &dserrors.SchemaError{
				Type: rv.Type().String(),
				Msg:  "foldered target cannot serialize non-structure field " + rv.Type().Field(f.index).Name,
			}
		}
	}
	return out, nil
}

// UnmarshalFileSet reconstructs the document v from its foldered
// representation. Missing files leave the corresponding field at its zero
// value; present files must parse completely.
func UnmarshalFileSet(set FileSet, v any, opts ...Option) error {
	o, err := buildOptions(opts)
	if err != nil {
		return err
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("dseries: UnmarshalFileSet(non-pointer %T or nil)", v)
	}
	target := rv.Elem()
	sc, err := schemaOf(target.Type())
	if err != nil {
		return err
	}
	if sc.kind != plan.KindBlock {
		return &dserrors.SchemaError{Type: target.Type().String(), Msg: "foldered target requires a plain block root"}
	}

	for i := range sc.fields {
		f := &sc.fields[i]
		fv := target.Field(f.index)
		ft := fv.Type()
		if f.optional {
			ft = ft.Elem()
		}

		switch {
		case ft.Kind() == reflect.Slice:
			et := elemStructType(ft)
			if et == nil {
				return &dserrors.SchemaError{Type: target.Type().String(), Msg: "foldered collections require structure elements"}
			}
			esc, err := schemaOf(et)
			if err != nil {
				return err
			}
			if f.optional {
				if fv.IsNil() {
					fv.Set(reflect.New(ft))
				}
				fv = fv.Elem()
			}
			out := reflect.MakeSlice(ft, 0, 0)
			for j := 0; ; j++ {
				name := esc.file
				if j > 0 {
					name = fmt.Sprintf("%s_%d", esc.file, j)
				}
				data, ok := set[path.Join(esc.group, name+".json")]
				if !ok {
					break
				}
				ev := reflect.New(et)
				if err := decodeJSON(data, ev.Interface(), path.Join(esc.group, name+".json")); err != nil {
					return err
				}
				if ft.Elem().Kind() == reflect.Pointer {
					out = reflect.Append(out, ev)
				} else {
					out = reflect.Append(out, ev.Elem())
				}
			}
			fv.Set(out)

		case ft.Kind() == reflect.Struct && ft.Implements(kindedType):
			fsc, err := schemaOf(ft)
			if err != nil {
				return err
			}
			data, ok := set[fsc.file+".json"]
			if !ok {
				continue
			}
			if f.optional {
				if fv.IsNil() {
					fv.Set(reflect.New(ft))
				}
				fv = fv.Elem()
			}
			if err := decodeJSON(data, fv.Addr().Interface(), fsc.file+".json"); err != nil {
				return err
			}

		default:
			return &dserrors.SchemaError{
				Type: target.Type().String(),
				Msg:  "foldered target cannot serialize non-structure field " + target.Type().Field(f.index).Name,
			}
		}
	}

	return gateVersion(v, o)
}

func encodeJSON(rv reflect.Value) ([]byte, error) {
	data, err := json.MarshalIndent(rv.Interface(), "", "    ")
	if err != nil {
		return nil, fmt.Errorf("dseries: %w", err)
	}
	return data, nil
}

func decodeJSON(data []byte, v any, name string) error {
	if err := json.Unmarshal(data, v); err != nil {
		return &dserrors.FormatError{Section: name, Msg: err.Error()}
	}
	return nil
}
