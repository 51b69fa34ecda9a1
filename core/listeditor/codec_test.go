package listeditor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{in: "A01.1, B02.2 ,C03.3", want: []string{"A01.1", "B02.2", "C03.3"}},
		{in: "", want: []string{}},
		{in: " , ,", want: []string{}},
		{in: "99213", want: []string{"99213"}},
		{in: "E11.9,,I10, ", want: []string{"E11.9", "I10"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitList(tt.in))
		})
	}
}

func TestJoinList(t *testing.T) {
	assert.Equal(t, "A01.1, B02.2", JoinList([]string{"A01.1", "B02.2"}))
	assert.Equal(t, "", JoinList(nil))
	assert.Equal(t, "A01.1, B02.2, C03.3", NormalizeList("A01.1, B02.2 ,C03.3"))
}
