package mtl

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeRoundTrip(t *testing.T) {
	doc, err := ParseFile(sampleMTL)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, doc))

	again, err := Parse(&buf)
	require.NoError(t, err)
	assert.Equal(t, doc, again)
}

func TestEncodeKeepsKinds(t *testing.T) {
	root := Group{
		"A": IntValue(3),
		"B": FloatValue(3),
		"C": TextValue("12"),
		"D": BoolValue(false),
		"E": TextValue(`say "hi"`),
		"F": FloatValue(math.Inf(-1)),
		"G": Group{"H": FloatValue(1e-5)},
	}

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, root))
	assert.Equal(t, `A = 3
B = 3.0
C = "12"
D = false
E = "say \"hi\""
F = -Infinity
GROUP = G
  H = 1e-05
END_GROUP = G
END
`, buf.String())

	again, err := Parse(&buf)
	require.NoError(t, err)
	assert.Equal(t, root, again)
}

func TestEncodeNaN(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, Group{"N": FloatValue(math.NaN())}))
	assert.Equal(t, "N = NaN\nEND\n", buf.String())

	again, err := Parse(&buf)
	require.NoError(t, err)
	v, err := GetValue(again, "N")
	require.NoError(t, err)
	assert.Equal(t, Float, v.Kind)
	f, _ := v.Float()
	assert.True(t, math.IsNaN(f))
}
