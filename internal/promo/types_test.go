package promo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartition(t *testing.T) {
	list := CodeList{
		{Code: "A"},
		{Code: "B", Expired: true},
		{Code: "C"},
	}

	event := list.Partition()
	assert.Equal(t, []string{"A", "C"}, event.Active)
	assert.Equal(t, []string{"B"}, event.Expired)
	assert.Equal(t, 3, event.Len())
	assert.Equal(t, "A B C", list.String())
}

func TestEventJSONUsesEmptyArrays(t *testing.T) {
	data, err := CodeList{{Code: "CODE3", Expired: true}}.Partition().JSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"active":[],"expired":["CODE3"]}`, string(data))

	data, err = Event{}.JSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"active":[],"expired":[]}`, string(data))
}
