package trace

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/golang/protobuf/jsonpb"
	"github.com/golang/protobuf/proto"
	"github.com/golang/protobuf/ptypes"
	structpb "github.com/golang/protobuf/ptypes/struct"
)

// Kind is the kind of a Record.
type Kind string

// Record kinds.
const (
	KindOpen  Kind = "open"
	KindClose Kind = "close"
	KindTx    Kind = "tx"
	KindRx    Kind = "rx"
	KindEvent Kind = "event"
)

// Record is one observation on a port.
type Record struct {
	Time   time.Time
	Device string
	Port   int
	Kind   Kind
	Data   []byte
	// Event names the driver event of KindEvent records, or the failure of
	// KindTx/KindRx records.
	Event string
}

// Struct converts r into a protobuf Struct.
func (r *Record) Struct() (*structpb.Struct, error) {
	ts, err := ptypes.TimestampProto(r.Time)
	if err != nil {
		return nil, err
	}
	s := &structpb.Struct{Fields: map[string]*structpb.Value{
		"time":   stringValue(ptypes.TimestampString(ts)),
		"device": stringValue(r.Device),
		"port":   {Kind: &structpb.Value_NumberValue{NumberValue: float64(r.Port)}},
		"kind":   stringValue(string(r.Kind)),
	}}
	if len(r.Data) > 0 {
		s.Fields["data"] = stringValue(base64.StdEncoding.EncodeToString(r.Data))
	}
	if r.Event != "" {
		s.Fields["event"] = stringValue(r.Event)
	}
	return s, nil
}

// FromStruct reverses Struct.
func FromStruct(s *structpb.Struct) (*Record, error) {
	f := s.GetFields()
	r := &Record{
		Device: f["device"].GetStringValue(),
		Port:   int(f["port"].GetNumberValue()),
		Kind:   Kind(f["kind"].GetStringValue()),
		Event:  f["event"].GetStringValue(),
	}
	if r.Kind == "" {
		return nil, fmt.Errorf("trace record without kind")
	}
	if str := f["time"].GetStringValue(); str != "" {
		t, err := time.Parse(time.RFC3339Nano, str)
		if err != nil {
			return nil, fmt.Errorf("trace record time: %w", err)
		}
		r.Time = t
	}
	if str := f["data"].GetStringValue(); str != "" {
		data, err := base64.StdEncoding.DecodeString(str)
		if err != nil {
			return nil, fmt.Errorf("trace record data: %w", err)
		}
		r.Data = data
	}
	return r, nil
}

// Marshal encodes r in protobuf binary form.
func (r *Record) Marshal() ([]byte, error) {
	s, err := r.Struct()
	if err != nil {
		return nil, err
	}
	return proto.Marshal(s)
}

// Unmarshal decodes a Record encoded by Marshal.
func Unmarshal(b []byte) (*Record, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(b, &s); err != nil {
		return nil, err
	}
	return FromStruct(&s)
}

// MarshalJSON encodes r as JSON text.
func (r *Record) MarshalJSON() ([]byte, error) {
	s, err := r.Struct()
	if err != nil {
		return nil, err
	}
	str, err := (&jsonpb.Marshaler{}).MarshalToString(s)
	if err != nil {
		return nil, err
	}
	return []byte(str), nil
}

// UnmarshalJSON decodes a Record encoded by MarshalJSON.
func UnmarshalJSON(b []byte) (*Record, error) {
	var s structpb.Struct
	if err := jsonpb.UnmarshalString(string(b), &s); err != nil {
		return nil, err
	}
	return FromStruct(&s)
}

func stringValue(s string) *structpb.Value {
	return &structpb.Value{Kind: &structpb.Value_StringValue{StringValue: s}}
}
