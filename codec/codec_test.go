package codec

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type report struct {
	Name     string  `json:"name"`
	Subgrids int     `json:"subgrids"`
	Offset   int64   `json:"offset"`
	Mean     float64 `json:"mean"`
}

func TestByName(t *testing.T) {
	for _, name := range []string{"json", "go-json"} {
		c, ok := ByName(name)
		require.True(t, ok)
		assert.Equal(t, name, c.Name())
	}
	_, ok := ByName("msgpack")
	assert.False(t, ok)
}

func TestCodecsAgree(t *testing.T) {
	r := report{Name: "WY2003/NLDAS.APCP.daily.sum.001.pfb", Subgrids: 2304, Offset: 1 << 33, Mean: 0.25}

	std, err := JSON{}.Marshal(r)
	require.NoError(t, err)
	fast, err := GoJSON{}.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, string(std), string(fast))

	var back report
	require.NoError(t, GoJSON{}.Unmarshal(fast, &back))
	assert.Equal(t, r, back)
}

func TestEncode(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, nil, report{Name: "a", Subgrids: 9}))
	assert.Equal(t, `{"name":"a","subgrids":9,"offset":0,"mean":0}`+"\n", buf.String())

	err := Encode(&buf, JSON{}, report{Mean: math.NaN()})
	assert.ErrorContains(t, err, "codec json marshal failed")
}
