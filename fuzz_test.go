//go:build go1.18

package dseries_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	dseries "github.com/mwestland/go-dseries"
	dserrors "github.com/mwestland/go-dseries/errors"
)

func FuzzRoundTrip(f *testing.F) {
	// Seed the corpus with valid documents from testdata. This gives the
	// fuzzer good starting points for the section grammar.
	seedFiles, err := filepath.Glob("testdata/*.foi")
	if err != nil {
		f.Fatalf("failed to find seed files: %v", err)
	}
	for _, file := range seedFiles {
		data, err := os.ReadFile(file)
		if err != nil {
			f.Fatalf("failed to read seed file %s: %v", file, err)
		}
		f.Add(data)
	}

	// Edge cases worth seeding by hand.
	f.Add([]byte(""))
	f.Add([]byte("[VERSION]\n[END OF VERSION]\n"))
	f.Add([]byte("[SOIL COLLECTION]\n0 = number of items\n[END OF SOIL COLLECTION]\n"))
	f.Add([]byte("[VERSION]\nSoil=1010\n"))
	f.Add([]byte("987654321.00000"))

	f.Fuzz(func(t *testing.T, originalData []byte) {
		// 1. Parse the fuzzed data. Invalid input must fail with an error,
		// never a panic; the fuzz engine detects panics on its own.
		var v1 inputFile
		if err := dseries.Unmarshal(originalData, &v1); err != nil {
			return
		}

		// 2. A document our own parser accepted must render cleanly. The
		// write-time validation hook may still reject it (the parser does
		// not check the run identification height), but nothing else may
		// fail.
		rendered, err := dseries.Marshal(&v1)
		if err != nil {
			var ierr *dserrors.IntegrityError
			require.ErrorAs(t, err, &ierr, "Marshal failed for a successfully parsed document")
			return
		}

		// 3. The rendering must parse back without error.
		var v2 inputFile
		err = dseries.Unmarshal(rendered, &v2)
		require.NoError(t, err, "Unmarshal failed on our own rendered output")
	})
}
