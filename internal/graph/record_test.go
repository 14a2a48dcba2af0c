package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dbnav/internal/ir"
	"github.com/roach88/dbnav/internal/scale"
)

func TestGraphRecordRoundTrip(t *testing.T) {
	cat := catalog(t)
	g := chain(t)
	require.NoError(t, g.SetLabel("e1", ir.IRString("Dune")))
	require.NoError(t, g.ToggleDisplay("x1", mName))
	require.NoError(t, g.SetPosition("x3", Point{X: -4, Y: 9}))
	_, err := g.AddRNode(mPublished, []string{"x2"}, nil)
	require.NoError(t, err)
	require.NoError(t, g.SetLabel("e4", scale.Label(1950, 1959)))

	first := canonical(t, g)

	decodedValue, err := ir.UnmarshalIRValue([]byte(first))
	require.NoError(t, err)
	decoded, err := FromRecord(decodedValue, cat)
	require.NoError(t, err)

	assert.Equal(t, first, canonical(t, decoded))
	assert.Equal(t, g.NodeIDs(), decoded.NodeIDs())

	x := decoded.AddNode("Book", nil)
	assert.Equal(t, "x5", x, "counters survive the round trip")
}

func TestFromRecordNeverReusesIDs(t *testing.T) {
	g := chain(t)
	rec := g.Record()
	rec["next_node"] = ir.IRInt(1)
	rec["next_rnode"] = ir.IRInt(1)

	decoded, err := FromRecord(rec, g.Catalog())
	require.NoError(t, err)

	e, err := decoded.AddRNode(mWrote, []string{"x1", ""}, nil)
	require.NoError(t, err)
	assert.Equal(t, "e4", e)
	assert.Equal(t, []string{"x1", "x2", "x3", "x4", "x5"}, decoded.NodeIDs())
	assert.Equal(t, []string{"e1", "e2", "e3", "e4"}, decoded.RNodeIDs())
}

func TestGraphRecordEmptyDisplayDecodesNil(t *testing.T) {
	g := New(catalog(t))

	decoded, err := FromRecord(g.Record(), g.Catalog())
	require.NoError(t, err)

	node, _ := decoded.Node("x1")
	assert.Nil(t, node.Display)
}

func TestFromRecordRejectsDanglingEndpoint(t *testing.T) {
	g := chain(t)
	rec := g.Record()
	delete(rec["nodes"].(ir.IRObject), "x4")

	_, err := FromRecord(rec, g.Catalog())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dangling endpoint x4")
}

func TestSignatureIgnoresPositions(t *testing.T) {
	g := chain(t)
	before, err := g.Fingerprint()
	require.NoError(t, err)

	require.NoError(t, g.SetPosition("x1", Point{X: 999, Y: 999}))
	after, err := g.Fingerprint()
	require.NoError(t, err)
	assert.Equal(t, before, after)

	require.NoError(t, g.SetLabel("e1", ir.IRString("D")))
	changed, err := g.Fingerprint()
	require.NoError(t, err)
	assert.NotEqual(t, before, changed)
}
