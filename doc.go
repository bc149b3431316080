/*
Package dseries implements the structural codec behind the D-Series family
of geotechnical exchange formats: bracketed, section-delimited text files
used to pass input and output between engineering tools and external
calculation engines. The API mirrors the standard `encoding/json` package
where possible.

A schema type declares its structural kind by embedding one of the kind
markers, and its field layout through ordinary struct declarations:

	type Layer struct {
		dseries.Tree
		Material     int
		TopLevel     float64
		OCRValue     float64
	}

	type SoilProfile struct {
		dseries.Block
		Name   dseries.Opaque
		Layers []Layer
	}

Marshal renders such a document as flat section text:

	data, err := dseries.Marshal(&profile)

and Unmarshal reconstructs it, validating section frames and collection
counts strictly:

	var profile SoilProfile
	err := dseries.Unmarshal(data, &profile)

Two more render targets share the same declarations: MarshalFileSet maps
the document onto a folder of self-contained JSON files, and WriteArchive
packs that same layout into a reproducible compressed archive.

All three targets are driven by one emission plan (see Plan and the plan
package), so writing and reading stay symmetric for any schema built from
the structural kinds: for documents built purely from typed constructors,
parsing a rendered document yields the original field for field.
*/
package dseries
