package output

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// serverRow is a minimal row shared by the JSON and YAML handler tests.
type serverRow struct {
	ID   int    `json:"id"   yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

func TestNewJSONHandler_Writer(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	h := NewJSONHandler[serverRow](buf, 2)
	require.Equal(t, buf, h.Writer())
}

func TestJSONHandler_HandleResults(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	h := NewJSONHandler[serverRow](buf, 2)

	samples := []serverRow{{ID: 1, Name: "market-data"}, {ID: 2, Name: "payments"}}
	err := h.HandleResults(samples...)
	require.NoError(t, err)

	// The output should be valid JSON with "results" key containing the array
	expected := `{
  "results": [
    {
      "id": 1,
      "name": "market-data"
    },
    {
      "id": 2,
      "name": "payments"
    }
  ]
}` + "\n"
	require.Equal(t, expected, buf.String())
}

func TestJSONHandler_HandleResults_Empty(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	h := NewJSONHandler[serverRow](buf, 0)

	err := h.HandleResults(nil...)
	require.NoError(t, err)

	// With zero indent, expect compact JSON
	expected := `{"results":null}` + "\n"
	require.Equal(t, expected, buf.String())
}

func TestJSONHandler_HandleError(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	h := NewJSONHandler[serverRow](buf, 4)

	testErr := errors.New("something went wrong")
	err := h.HandleError(testErr)
	require.NoError(t, err)

	// Check that the JSON contains the error message under "error"
	expected := `{
    "error": "something went wrong"
}` + "\n"
	require.Equal(t, expected, buf.String())
}

func TestJSONHandler_HandleError_EmptyMessage(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	h := NewJSONHandler[serverRow](buf, 0)

	err := h.HandleError(errors.New(""))
	require.NoError(t, err)

	// Even empty error string should be marshaled
	expected := `{"error":""}` + "\n"
	require.Equal(t, expected, buf.String())
}

func TestJSONHandler_HandleResult(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	h := NewJSONHandler[serverRow](buf, 0)

	require.NoError(t, h.HandleResult(serverRow{ID: 7, Name: "market-data"}))
	require.Equal(t, `{"result":{"id":7,"name":"market-data"}}`+"\n", buf.String())
}
