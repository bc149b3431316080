package dseries_test

import (
	"bytes"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/require"

	dseries "github.com/mwestland/go-dseries"
)

func TestArchiveRoundTrip(t *testing.T) {
	doc := newStabilityFile()

	var buf bytes.Buffer
	require.NoError(t, dseries.WriteArchive(&buf, &doc))

	var got stabilityFile
	require.NoError(t, dseries.ReadArchive(bytes.NewReader(buf.Bytes()), int64(buf.Len()), &got))
	require.Equal(t, doc, got)
}

func TestArchiveIsReproducible(t *testing.T) {
	doc := newStabilityFile()

	var first, second bytes.Buffer
	require.NoError(t, dseries.WriteArchive(&first, &doc))
	require.NoError(t, dseries.WriteArchive(&second, &doc))
	require.Equal(t, first.Bytes(), second.Bytes())
}

func TestArchiveEntryOrder(t *testing.T) {
	doc := newStabilityFile()

	var buf bytes.Buffer
	require.NoError(t, dseries.WriteArchive(&buf, &doc))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	names := make([]string, len(zr.File))
	for i, f := range zr.File {
		names[i] = f.Name
	}
	require.Equal(t, []string{
		"project_info.json",
		"stages/stage.json",
		"stages/stage_1.json",
	}, names)
}

func TestReadArchiveBadInput(t *testing.T) {
	var got stabilityFile
	err := dseries.ReadArchive(bytes.NewReader([]byte("not a zip")), 9, &got)
	require.Error(t, err)
}
