package stockview

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectChart(t *testing.T) {
	records := sample()

	c := ProjectChart(records, time.UTC)

	require.Len(t, c.Labels, len(records))
	require.Len(t, c.Series, len(records))
	for i, r := range records {
		assert.Equal(t, r.Datetime.Format(LabelLayout), c.Labels[i])
		assert.Equal(t, r.Close, c.Series[i])
	}
	assert.Equal(t, "2024-01-01 00:00", c.Labels[0])
}

func TestProjectChart_Location(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	c := ProjectChart(sample()[:1], tokyo)
	assert.Equal(t, "2024-01-01 09:00", c.Labels[0])
}

func TestProjectChart_Empty(t *testing.T) {
	c := ProjectChart(nil, nil)

	assert.NotNil(t, c.Labels)
	assert.NotNil(t, c.Series)
	assert.Empty(t, c.Labels)
	assert.Empty(t, c.Series)

	b, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `{"labels":[],"series":[]}`, string(b))
}
