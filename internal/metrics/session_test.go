package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mediabench/mediabench/pkg/types"
)

func TestSessionMarkSeen(t *testing.T) {
	s := NewSession("local", types.UnknownLocation)

	assert.True(t, s.MarkSeen("http://origin/a.png"))
	assert.False(t, s.MarkSeen("http://origin/a.png"))
	assert.True(t, s.MarkSeen("http://origin/b.png"))
}

func TestSessionExportOneShot(t *testing.T) {
	s := NewSession("local", types.UnknownLocation)

	assert.False(t, s.Exported())
	assert.True(t, s.BeginExport())
	assert.True(t, s.Exported())

	// Every later attempt is refused.
	assert.False(t, s.BeginExport())
	assert.False(t, s.BeginExport())
}

func TestSessionRecordsCopy(t *testing.T) {
	s := NewSession("local", types.UnknownLocation)
	s.Append(types.MetricRecord{FileName: "a.png"})
	s.Append(types.MetricRecord{FileName: "b.png"})

	got := s.Records()
	assert.Len(t, got, 2)
	assert.Equal(t, "a.png", got[0].FileName)
	assert.Equal(t, "b.png", got[1].FileName)

	got[0].FileName = "mutated"
	assert.Equal(t, "a.png", s.Records()[0].FileName)
}

func TestSessionIDsUnique(t *testing.T) {
	a := NewSession("local", types.UnknownLocation)
	b := NewSession("local", types.UnknownLocation)
	assert.NotEqual(t, a.ID, b.ID)
}
