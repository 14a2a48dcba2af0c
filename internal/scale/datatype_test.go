package scale

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindsFor(t *testing.T) {
	tests := []struct {
		datatype string
		expected []Kind
	}{
		{"varchar", []Kind{KindPrefix}},
		{"VARCHAR(255)", []Kind{KindPrefix}},
		{"text", []Kind{KindPrefix}},
		{"date", []Kind{KindDateInterval}},
		{"datetime", []Kind{KindDateInterval}},
		{"boolean", []Kind{KindBoolean}},
		{"tinyint(1)", []Kind{KindBoolean}},
		{"int", nil},
		{"tinyint(4)", nil},
		{"blob", nil},
	}

	for _, tt := range tests {
		t.Run(tt.datatype, func(t *testing.T) {
			assert.Equal(t, tt.expected, KindsFor(tt.datatype))
		})
	}
}

func TestAdmissible(t *testing.T) {
	assert.True(t, Admissible("text", KindPrefix))
	assert.False(t, Admissible("text", KindDateInterval))
	assert.True(t, Admissible("date", KindDateInterval))
	assert.False(t, Admissible("int", KindBoolean))
}
