package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// Roll is a student's roll number. Clients send it either as a JSON string or
// as a number, and older documents may store it as a BSON number; it is
// always written and compared as a string.
type Roll string

func (r *Roll) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*r = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = Roll(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("roll must be a string or a number: %w", err)
	}
	*r = Roll(n.String())
	return nil
}

func (r *Roll) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	v := bson.RawValue{Type: t, Value: data}
	switch t {
	case bsontype.String:
		*r = Roll(v.StringValue())
	case bsontype.Int32:
		*r = Roll(strconv.FormatInt(int64(v.Int32()), 10))
	case bsontype.Int64:
		*r = Roll(strconv.FormatInt(v.Int64(), 10))
	case bsontype.Double:
		*r = Roll(strconv.FormatFloat(v.Double(), 'f', -1, 64))
	case bsontype.Null, bsontype.Undefined:
		*r = ""
	default:
		return fmt.Errorf("roll: cannot decode BSON %s", t)
	}
	return nil
}
