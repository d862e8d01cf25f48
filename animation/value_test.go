package animation

import "testing"

func TestParseValue(t *testing.T) {
	cases := []struct {
		tag, payload string
		want         Value
		wantErr      bool
	}{
		{"int", "42", Int(42), false},
		{"float", "0.5", Float(0.5), false},
		{"bool", "true", Bool(true), false},
		{"string", "left", String("left"), false},
		{"entity", "9", Entity(9), false},
		{"", "", Value{}, false},
		{"vector", "1,2", Value{}, false},
		{"int", "many", Value{}, true},
	}
	for _, c := range cases {
		t.Run(c.tag+"_"+c.payload, func(t *testing.T) {
			got, err := ParseValue(c.tag, c.payload)
			if (err != nil) != c.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, c.wantErr)
			}
			if got != c.want {
				t.Fatalf("ParseValue = %v, want %v", got, c.want)
			}
			if !c.wantErr && !got.IsNone() {
				if back, _ := ParseValue(got.Tag(), got.Payload()); back != got {
					t.Fatalf("payload round trip lost %v", got)
				}
			}
		})
	}
}

func TestValueAccessorsCheckKind(t *testing.T) {
	v := Float(1.5)
	if _, ok := v.AsInt(); ok {
		t.Fatalf("float must not read as int")
	}
	if f, ok := v.AsFloat(); !ok || f != 1.5 {
		t.Fatalf("AsFloat = %v %v", f, ok)
	}
	if v.Kind() != KindFloat || v.Kind().String() != "float" {
		t.Fatalf("unexpected kind %v", v.Kind())
	}
}
