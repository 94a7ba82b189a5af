package resolve

import "testing"

func TestParseSpec(t *testing.T) {
	tests := []struct {
		name string
		args map[string]string
		want Spec
	}{
		{
			name: "full spec",
			args: map[string]string{
				KeyObjectType: "joint",
				KeyObjectName: "shoulder",
				KeyProperty:   "pos",
				KeyIndex:      "0",
			},
			want: Spec{ObjectType: "joint", ObjectName: "shoulder", Property: "pos", Index: intp(0)},
		},
		{
			name: "defaults fill absent fields",
			args: map[string]string{KeyObjectName: "motor1"},
			want: Spec{ObjectType: "actuator", ObjectName: "motor1", Property: "ctrl"},
		},
		{
			name: "type and property lowercased",
			args: map[string]string{
				KeyObjectType: " Joint ",
				KeyObjectName: "Shoulder",
				KeyProperty:   "POS",
			},
			want: Spec{ObjectType: "joint", ObjectName: "Shoulder", Property: "pos"},
		},
		{
			name: "malformed index treated as absent",
			args: map[string]string{KeyObjectName: "motor1", KeyIndex: "first"},
			want: Spec{ObjectType: "actuator", ObjectName: "motor1", Property: "ctrl"},
		},
		{
			name: "negative index treated as absent",
			args: map[string]string{KeyObjectName: "motor1", KeyIndex: "-2"},
			want: Spec{ObjectType: "actuator", ObjectName: "motor1", Property: "ctrl"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseSpec(tt.args, "actuator", "ctrl")
			if got.ObjectType != tt.want.ObjectType ||
				got.ObjectName != tt.want.ObjectName ||
				got.Property != tt.want.Property {
				t.Errorf("ParseSpec() = %+v, want %+v", got, tt.want)
			}
			switch {
			case got.Index == nil && tt.want.Index != nil:
				t.Errorf("expected index %d, got none", *tt.want.Index)
			case got.Index != nil && tt.want.Index == nil:
				t.Errorf("expected no index, got %d", *got.Index)
			case got.Index != nil && *got.Index != *tt.want.Index:
				t.Errorf("expected index %d, got %d", *tt.want.Index, *got.Index)
			}
		})
	}
}

func TestIntOrNone(t *testing.T) {
	tests := []struct {
		in   string
		want *int
	}{
		{"0", intp(0)},
		{" 7 ", intp(7)},
		{"", nil},
		{"abc", nil},
		{"-1", nil},
		{"1.5", nil},
	}

	for _, tt := range tests {
		got := IntOrNone(tt.in)
		if (got == nil) != (tt.want == nil) {
			t.Errorf("IntOrNone(%q) = %v, want %v", tt.in, got, tt.want)
			continue
		}
		if got != nil && *got != *tt.want {
			t.Errorf("IntOrNone(%q) = %d, want %d", tt.in, *got, *tt.want)
		}
	}
}

func TestIntOrDefault(t *testing.T) {
	tests := []struct {
		in   string
		def  int
		min  int
		want int
	}{
		{"5", 1, 1, 5},
		{"", 1, 1, 1},
		{"junk", 1, 1, 1},
		{"0", 1, 1, 1},
		{"-3", 1, 1, 1},
		{"100", 1, 1, 100},
	}

	for _, tt := range tests {
		if got := IntOrDefault(tt.in, tt.def, tt.min); got != tt.want {
			t.Errorf("IntOrDefault(%q, %d, %d) = %d, want %d", tt.in, tt.def, tt.min, got, tt.want)
		}
	}
}
