package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDate(t *testing.T) {
	cases := []struct {
		input string
		want  string
		ok    bool
	}{
		{input: "5.3.1999", want: "05.03.1999", ok: true},
		{input: "15.03.2005 (Abnahme)", want: "15.03.2005", ok: true},
		{input: "15. März 2005", want: "15.03.2005", ok: true},
		{input: "1.Okt 2010", want: "01.10.2010", ok: true},
		{input: "3. DEZ 2001", want: "03.12.2001", ok: true},
		{input: "Ausmusterung 12. Mai 2010", want: "12.05.2010", ok: true},
		{input: "7. June 1991", want: "07.06.1991", ok: true},
		{input: "März 2005", ok: false},
		{input: "12. Brumaire 2005", ok: false},
		{input: "1999", ok: false},
		{input: "", ok: false},
	}

	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			got, ok := NormalizeDate(tc.input)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestExtractMainDateSince(t *testing.T) {
	got := ExtractMainDate("2.6.1991\nÜberführung 10.06.1991", SinceMode)
	require.NotNil(t, got)
	assert.Equal(t, "02.06.1991", *got)

	got = ExtractMainDate("Abnahme am\n4. Juli 1992", SinceMode)
	require.NotNil(t, got)
	assert.Equal(t, "04.07.1992", *got)

	got = ExtractMainDate("geplant 12.05.2026 oder später", SinceMode)
	require.NotNil(t, got)
	assert.Equal(t, "12.05.2026", *got)

	assert.Nil(t, ExtractMainDate("unbekannt", SinceMode))
	assert.Nil(t, ExtractMainDate("  ", SinceMode))
}

func TestExtractMainDateUntil(t *testing.T) {
	got := ExtractMainDate("Ausmusterung 12. Mai 2010", UntilMode)
	require.NotNil(t, got)
	assert.Equal(t, "12.05.2010", *got)

	got = ExtractMainDate("01.01.2000\n31.12.2009", UntilMode)
	require.NotNil(t, got)
	assert.Equal(t, "31.12.2009", *got)

	got = ExtractMainDate("ausgemustert 3. Juni 1998\nVerschrottung folgt", UntilMode)
	require.NotNil(t, got)
	assert.Equal(t, "03.06.1998", *got)

	got = ExtractMainDate("Verschrottung nach Unfall am 03.06.1998\nin Eschede", UntilMode)
	require.NotNil(t, got)
	assert.Equal(t, "03.06.1998", *got)
}

func TestExtractMainDateUntilNeedsKeyword(t *testing.T) {
	assert.Nil(t, ExtractMainDate("Unfall am 03.06.1998\nin Eschede", UntilMode))
	assert.Nil(t, ExtractMainDate("im Einsatz", UntilMode))
}
