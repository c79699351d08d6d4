package suggest

import (
	"encoding/json"
	"testing"
)

func TestClassify_LowerIsWorse(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		want  Severity
	}{
		{"well below major", 0.55, SeverityMajor},
		{"at major", 0.65, SeverityRegular},
		{"between", 0.70, SeverityRegular},
		{"at regular", 0.75, SeverityMinor},
		{"above regular", 0.90, SeverityMinor},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.value, 0.75, 0.65, false); got != tc.want {
				t.Errorf("Classify(%.2f) = %s, want %s", tc.value, got, tc.want)
			}
		})
	}
}

func TestClassify_HigherIsWorse(t *testing.T) {
	tests := []struct {
		value float64
		want  Severity
	}{
		{0.05, SeverityMinor},
		{0.10, SeverityMinor},
		{0.15, SeverityRegular},
		{0.20, SeverityRegular},
		{0.25, SeverityMajor},
	}
	for _, tc := range tests {
		if got := Classify(tc.value, 0.10, 0.20, true); got != tc.want {
			t.Errorf("Classify(%.2f, higher is worse) = %s, want %s", tc.value, got, tc.want)
		}
	}
}

func TestClassify_Monotonic(t *testing.T) {
	for _, higherIsWorse := range []bool{true, false} {
		regular, major := 0.75, 0.65
		if higherIsWorse {
			regular, major = 0.20, 0.40
		}
		prev := Classify(-1, regular, major, higherIsWorse)
		for i := 0; i <= 200; i++ {
			v := -1 + float64(i)*0.01
			got := Classify(v, regular, major, higherIsWorse)
			if higherIsWorse && got < prev {
				t.Fatalf("severity decreased from %s to %s at %.2f (higher is worse)", prev, got, v)
			}
			if !higherIsWorse && got > prev {
				t.Fatalf("severity increased from %s to %s at %.2f (lower is worse)", prev, got, v)
			}
			prev = got
		}
	}
}

func TestThresholds_Validate(t *testing.T) {
	tests := []struct {
		name    string
		th      Thresholds
		wantErr bool
	}{
		{"lower is worse ok", Thresholds{Regular: 0.75, Major: 0.65}, false},
		{"lower is worse inverted", Thresholds{Regular: 0.65, Major: 0.75}, true},
		{"higher is worse ok", Thresholds{Regular: 0.1, Major: 0.2, HigherIsWorse: true}, false},
		{"higher is worse inverted", Thresholds{Regular: 0.2, Major: 0.1, HigherIsWorse: true}, true},
		{"equal is allowed", Thresholds{Regular: 0.5, Major: 0.5}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.th.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestOffsets_For(t *testing.T) {
	th := DefaultOffsets.For(0.8, false)
	if th.Regular != 0.8-0.05 || th.Major != 0.8-0.15 || th.HigherIsWorse {
		t.Errorf("For(0.8, false) = %+v", th)
	}
	if err := th.Validate(); err != nil {
		t.Errorf("derived thresholds should validate: %v", err)
	}

	th = DefaultOffsets.For(0.3, true)
	if th.Regular != 0.3+0.05 || th.Major != 0.3+0.15 || !th.HigherIsWorse {
		t.Errorf("For(0.3, true) = %+v", th)
	}
	if err := th.Validate(); err != nil {
		t.Errorf("derived thresholds should validate: %v", err)
	}
}

func TestOffsets_Validate(t *testing.T) {
	if err := (Offsets{Regular: 0.2, Major: 0.1}).Validate(); err == nil {
		t.Error("expected error for major offset smaller than regular")
	}
	if err := (Offsets{Regular: -0.1, Major: 0.1}).Validate(); err == nil {
		t.Error("expected error for negative offset")
	}
	if err := DefaultOffsets.Validate(); err != nil {
		t.Errorf("default offsets invalid: %v", err)
	}
}

func TestSeverity_TextRoundTrip(t *testing.T) {
	for _, s := range []Severity{SeverityMinor, SeverityRegular, SeverityMajor} {
		data, err := json.Marshal(s)
		if err != nil {
			t.Fatalf("marshal %s: %v", s, err)
		}
		var back Severity
		if err := json.Unmarshal(data, &back); err != nil {
			t.Fatalf("unmarshal %s: %v", data, err)
		}
		if back != s {
			t.Errorf("round trip %s -> %s", s, back)
		}
	}

	if _, err := ParseSeverity("critical"); err == nil {
		t.Error("expected error for unknown severity")
	}
	if s, err := ParseSeverity(" MAJOR "); err != nil || s != SeverityMajor {
		t.Errorf("ParseSeverity(MAJOR) = %v, %v", s, err)
	}
}
