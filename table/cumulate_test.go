package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCumulateFitsWithinMax(t *testing.T) {
	end, consumed := Cumulate([]int{10, 10, 10, 10}, 0, 0, 25)
	assert.Equal(t, 1, end)
	assert.Equal(t, 20, consumed)
}

func TestCumulateAlwaysAdvancesOneUnit(t *testing.T) {
	end, consumed := Cumulate([]int{100}, 0, 0, 10)
	assert.Equal(t, 0, end)
	assert.Equal(t, 100, consumed)
}

func TestCumulateAccountsForHeaderSize(t *testing.T) {
	end, consumed := Cumulate([]int{10, 10, 10}, 15, 0, 25)
	assert.Equal(t, 0, end)
	assert.Equal(t, 10, consumed)
}

func TestCumulateStartPastEnd(t *testing.T) {
	end, consumed := Cumulate([]int{1, 2}, 0, 5, 10)
	assert.Equal(t, 5, end)
	assert.Equal(t, 0, consumed)
}
