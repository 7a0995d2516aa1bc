package errprop

import (
	"flag"
	"testing"
)

func TestDispatchText(t *testing.T) {
	tests := []struct {
		in      string
		want    Dispatch
		wantErr bool
	}{
		{"", DispatchStatic, false},
		{"static", DispatchStatic, false},
		{"vta", DispatchVTA, false},
		{"cha", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var d Dispatch
			err := d.UnmarshalText([]byte(tt.in))
			if (err != nil) != tt.wantErr {
				t.Fatalf("UnmarshalText(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err == nil && d != tt.want {
				t.Errorf("UnmarshalText(%q) = %v, want %v", tt.in, d, tt.want)
			}
		})
	}
}

func TestDispatchFlag(t *testing.T) {
	var d Dispatch
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.Var(&d, "dispatch", "")
	if err := fs.Parse([]string{"-dispatch", "vta"}); err != nil {
		t.Fatal(err)
	}
	if d != DispatchVTA {
		t.Errorf("dispatch = %v, want vta", d)
	}
	if got := fs.Lookup("dispatch").Value.(flag.Getter).Get(); got != DispatchVTA {
		t.Errorf("Get() = %v, want vta", got)
	}

	if _, err := Dispatch(7).MarshalText(); err == nil {
		t.Error("MarshalText of an invalid value succeeded")
	}
}
