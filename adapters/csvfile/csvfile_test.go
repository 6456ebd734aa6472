package csvfile

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"bizwiz/internal/errors"
	"bizwiz/internal/textenc"

	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestRead_UTF8(t *testing.T) {
	path := writeFile(t, "orders.csv", []byte("id,amount\n1,9.5\n2,\n"))

	res, err := Read(path, Options{SkipDetect: true})
	require.NoError(t, err)
	assert.Equal(t, textenc.UTF8, res.Encoding)
	assert.Equal(t, []string{"id", "amount"}, res.Frame.Names())
	assert.Equal(t, series.Float, res.Frame.Col("amount").Type())
	assert.True(t, res.Frame.Col("amount").Elem(1).IsNA())
}

func TestRead_BOMFallsBackToUTF8Sig(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("name\nAnn\n")...)
	path := writeFile(t, "bom.csv", data)

	res, err := Read(path, Options{SkipDetect: true})
	require.NoError(t, err)
	assert.Equal(t, textenc.UTF8Sig, res.Encoding)
	assert.Equal(t, []string{"name"}, res.Frame.Names())
}

func TestRead_Latin1(t *testing.T) {
	path := writeFile(t, "latin.csv", []byte("city\nMontr\xe9al\n"))

	res, err := Read(path, Options{SkipDetect: true})
	require.NoError(t, err)
	assert.Equal(t, textenc.ISO88591, res.Encoding)
	assert.Equal(t, "Montréal", res.Frame.Col("city").Elem(0).String())
}

func TestRead_StringsOnlyKeepsZeros(t *testing.T) {
	path := writeFile(t, "zips.csv", []byte("zip;city\n00501;Holtsville\n"))

	res, err := Read(path, Options{Delimiter: ';', StringsOnly: true})
	require.NoError(t, err)
	assert.Equal(t, "00501", res.Frame.Col("zip").Elem(0).String())
}

func TestRead_NoEncodingSucceeded(t *testing.T) {
	path := writeFile(t, "ragged.csv", []byte("a,b\n1,2,3\n"))

	_, err := Read(path, Options{})
	require.Error(t, err)
	assert.Equal(t, errors.CodeEncoding, errors.GetCode(err))

	var noEnc *textenc.NoEncodingError
	require.True(t, stderrors.As(err, &noEnc))
	assert.NotEmpty(t, noEnc.Attempts)
	assert.Equal(t, noEnc.Error(), err.Error())
}

func TestRead_Missing(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "nope.csv"), Options{})
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
}

func TestWrite_RoundTrip(t *testing.T) {
	src := writeFile(t, "in.csv", []byte("k,v\na,1\nb,2\n"))
	res, err := Read(src, Options{})
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, Write(res.Frame, out))

	back, err := Read(out, Options{})
	require.NoError(t, err)
	assert.Equal(t, res.Frame.Records(), back.Frame.Records())
}
