package model

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// ID is an upstream identifier. Some endpoints send numeric ids and others
// send strings, so both decode into the same type.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

// MarshalJSON writes canonical integer ids back as numbers and everything
// else, "007" and "+5" included, as strings.
func (id ID) MarshalJSON() ([]byte, error) {
	if id == "" {
		return []byte("null"), nil
	}
	if id.canonicalInt() {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// canonicalInt reports whether id is a plain int64: digits only, no sign,
// no leading zero.
func (id ID) canonicalInt() bool {
	s := string(id)
	if s == "" || (len(s) > 1 && s[0] == '0') {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	_, err := strconv.ParseInt(s, 10, 64)
	return err == nil
}

func (id ID) String() string {
	return string(id)
}
