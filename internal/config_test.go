package internal

import "testing"

func TestModeSetters(t *testing.T) {
	tests := []struct {
		name string
		set  func(bool)
		get  func() bool
	}{
		{"quiet", SetQuiet, IsQuiet},
		{"debug", SetDebug, IsDebug},
		{"verbose", SetVerbose, IsVerbose},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			initial := tt.get()
			defer tt.set(initial)

			tt.set(true)
			if !tt.get() {
				t.Fatal("mode not enabled after set")
			}

			tt.set(false)
			if tt.get() {
				t.Fatal("mode still enabled after clear")
			}
		})
	}
}

func TestModesDefaultOff(t *testing.T) {
	// The raw linker-flag defaults are "false"; nothing should be on in a
	// plain test binary.
	if IsQuiet() || IsDebug() || IsVerbose() {
		t.Fatalf("modes = quiet:%v debug:%v verbose:%v, want all off",
			IsQuiet(), IsDebug(), IsVerbose())
	}
}
