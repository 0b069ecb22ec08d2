package value

import (
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"
)

// ToProto converts v into a protobuf Value.
func ToProto(v Value) (*structpb.Value, error) {
	pv, err := structpb.NewValue(ToAny(v))
	if err != nil {
		return nil, fmt.Errorf("failed to convert value to protobuf: %w", err)
	}
	return pv, nil
}

// FromProto converts a protobuf Value into a Value. A nil input yields Null.
func FromProto(pv *structpb.Value) Value {
	if pv == nil {
		return Null{}
	}
	return FromAny(pv.AsInterface())
}

// MapToProto converts a Map into a protobuf Struct.
func MapToProto(m Map) (*structpb.Struct, error) {
	raw, ok := ToAny(m).(map[string]any)
	if !ok {
		raw = map[string]any{}
	}
	s, err := structpb.NewStruct(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to convert map to protobuf: %w", err)
	}
	return s, nil
}
