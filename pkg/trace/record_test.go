package trace

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testRecord() *Record {
	return &Record{
		Time:   time.Date(2019, 6, 1, 12, 30, 0, 5000, time.UTC),
		Device: "modem-1",
		Port:   2,
		Kind:   KindRx,
		Data:   []byte("+CPIN: READY\r\n"),
	}
}

func TestRecordEncoding(t *testing.T) {
	r := testRecord()
	b, err := r.Marshal()
	require.NoError(t, err)
	decoded, err := Unmarshal(b)
	require.NoError(t, err)
	require.True(t, r.Time.Equal(decoded.Time))
	decoded.Time = r.Time
	require.Equal(t, r, decoded)

	ev := &Record{Time: r.Time, Device: "modem-1", Port: 2, Kind: KindEvent, Event: "frame-error"}
	js, err := ev.MarshalJSON()
	require.NoError(t, err)
	require.Contains(t, string(js), `"event":"frame-error"`)
	decoded, err = UnmarshalJSON(js)
	require.NoError(t, err)
	require.Equal(t, "frame-error", decoded.Event)
	require.Nil(t, decoded.Data)
}

func TestRecordWithoutKind(t *testing.T) {
	b, err := (&Record{Time: time.Now()}).Marshal()
	require.NoError(t, err)
	_, err = Unmarshal(b)
	require.Error(t, err)
}

func TestMulti(t *testing.T) {
	var got []Kind
	m := Multi{
		Func(func(r *Record) { got = append(got, r.Kind) }),
		Nop{},
		Func(func(r *Record) { got = append(got, r.Kind) }),
	}
	m.Trace(&Record{Kind: KindOpen})
	require.Equal(t, []Kind{KindOpen, KindOpen}, got)
}
