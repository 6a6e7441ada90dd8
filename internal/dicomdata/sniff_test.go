package dicomdata

import "testing"

func dicomBuffer(length int) []byte {
	buf := make([]byte, length)
	if length >= 132 {
		copy(buf[128:132], "DICM")
	}
	return buf
}

func TestIsDicom(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
		want bool
	}{
		{"empty", nil, false},
		{"short buffer", dicomBuffer(131), false},
		{"exact preamble length", dicomBuffer(132), true},
		{"longer buffer", dicomBuffer(140), true},
		{"magic missing", make([]byte, 200), false},
		{"magic at wrong offset", append([]byte("DICM"), make([]byte, 200)...), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsDicom(tt.buf); got != tt.want {
				t.Errorf("IsDicom = %v, want %v", got, tt.want)
			}
		})
	}
}

// A buffer that sniffs positive is treated as DICOM no matter what the
// filename extension claims; the sniff itself only sees bytes.
func TestIsDicom_IgnoresExtensionClaims(t *testing.T) {
	buf := dicomBuffer(140)
	if !IsDicom(buf) {
		t.Fatal("140-byte buffer with DICM magic should sniff positive")
	}
}
