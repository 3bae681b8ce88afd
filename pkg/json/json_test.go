package json

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRecordsArray(t *testing.T) {
	records, err := DecodeRecords(strings.NewReader(`[{"color":"red","age":31},{"color":"blue","age":40.5}]`))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "red", records[0]["color"])
	assert.Equal(t, Number("31"), records[0]["age"])
	assert.Equal(t, Number("40.5"), records[1]["age"])
}

func TestDecodeRecordsLines(t *testing.T) {
	input := "{\"color\":\"red\"}\n{\"color\":\"green\"}\n\n{\"color\":\"blue\"}\n"

	records, err := DecodeRecords(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "blue", records[2]["color"])
}

func TestDecodeRecordsEmpty(t *testing.T) {
	records, err := DecodeRecords(strings.NewReader("  \n"))
	require.NoError(t, err)
	assert.Nil(t, records)
}

func TestDecodeRecordsMalformed(t *testing.T) {
	_, err := DecodeRecords(strings.NewReader(`{"color":"red"}` + "\n" + `{"color":`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "record 2")
}

func TestUnmarshalStrictRejectsUnknownFields(t *testing.T) {
	var v struct {
		Name string `json:"name"`
	}

	require.NoError(t, UnmarshalStrict([]byte(`{"name":"age"}`), &v))
	assert.Equal(t, "age", v.Name)

	assert.Error(t, UnmarshalStrict([]byte(`{"name":"age","typo":1}`), &v))
}
