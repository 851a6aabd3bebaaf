package models

import (
	"encoding/json"
	"testing"

	"github.com/matryer/is"
)

func TestJSONScan(t *testing.T) {
	is := is.New(t)

	var j JSON
	is.NoErr(j.Scan([]byte(`{"a":1}`)))
	is.Equal(string(j), `{"a":1}`)
	is.NoErr(j.Scan(`[1,2]`))
	is.Equal(string(j), `[1,2]`)
	is.NoErr(j.Scan(nil))
	is.True(j.IsZero())

	if err := j.Scan(42); err == nil {
		t.Errorf("Scan(42) => nil, want error")
	}
}

func TestJSONValue(t *testing.T) {
	is := is.New(t)

	v, err := JSON(nil).Value()
	is.NoErr(err)
	is.Equal(v, nil)

	v, err = JSON("null").Value()
	is.NoErr(err)
	is.Equal(v, nil)

	v, err = EmptyObject.Value()
	is.NoErr(err)
	is.Equal(v, "{}")
}

func TestJSONInStruct(t *testing.T) {
	is := is.New(t)

	var m Membership
	is.NoErr(json.Unmarshal([]byte(`{"custom_data":{"shirt":"L"}}`), &m))
	is.Equal(string(m.CustomData), `{"shirt":"L"}`)

	m.CustomData = nil
	b, err := json.Marshal(struct {
		Data JSON `json:"data"`
	}{m.CustomData})
	is.NoErr(err)
	is.Equal(string(b), `{"data":null}`)
}

func TestJSONOrDefault(t *testing.T) {
	if got := JSON(nil).OrDefault(EmptyObject); string(got) != "{}" {
		t.Errorf("OrDefault() => %q, want %q", got, "{}")
	}
	if got := JSON(`[1]`).OrDefault(EmptyObject); string(got) != "[1]" {
		t.Errorf("OrDefault() => %q, want %q", got, "[1]")
	}
}

func TestMembershipStatusValid(t *testing.T) {
	for _, s := range []MembershipStatus{"pending", "active", "rejected", "expired"} {
		if !s.Valid() {
			t.Errorf("%q.Valid() => false, want true", s)
		}
	}
	if MembershipStatus("cancelled").Valid() {
		t.Errorf("cancelled.Valid() => true, want false")
	}
}
