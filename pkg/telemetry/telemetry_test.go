package telemetry

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPoint() Point {
	return Point{
		Channel: ChannelTemperature,
		Fields:  map[string]float64{"temperature": 21.5, "dew_point": 9.25},
		Tags:    map[string]string{"station": "kitchen"},
		Time:    time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestPoint_FieldNames(t *testing.T) {
	assert.Equal(t, []string{"dew_point", "temperature"}, testPoint().FieldNames())
}

func TestPoint_EncodeDecode(t *testing.T) {
	p := testPoint()
	data, err := p.Encode()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"channel":"temperature"`)

	got, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, p.Channel, got.Channel)
	assert.Equal(t, p.Fields, got.Fields)
	assert.Equal(t, p.Tags, got.Tags)
	assert.True(t, p.Time.Equal(got.Time))
}

func TestDecode_Invalid(t *testing.T) {
	_, err := Decode([]byte("{"))
	assert.Error(t, err)
}

func TestMulti(t *testing.T) {
	boom := errors.New("boom")
	var got []string

	m := Multi{
		SinkFunc(func(p Point) error { got = append(got, "a:"+p.Channel); return nil }),
		SinkFunc(func(p Point) error { return &WriteError{Sink: "b", Channel: p.Channel, Err: boom} }),
		SinkFunc(func(p Point) error { got = append(got, "c:"+p.Channel); return nil }),
	}

	err := m.Emit(Point{Channel: ChannelCO2})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"a:co2", "c:co2"}, got, "a failing sink does not stop the others")

	var we *WriteError
	require.ErrorAs(t, err, &we)
	assert.Equal(t, "b: write co2 failed: boom", we.Error())
}

func TestMulti_Empty(t *testing.T) {
	assert.NoError(t, Multi{}.Emit(testPoint()))
	assert.NoError(t, Discard.Emit(testPoint()))
}
