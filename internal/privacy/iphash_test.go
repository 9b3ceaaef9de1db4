package privacy

import "testing"

func TestNewIPHasher_RejectsEmptySalt(t *testing.T) {
	t.Parallel()

	if _, err := NewIPHasher(""); err != ErrEmptySalt {
		t.Errorf("NewIPHasher(\"\") error = %v, want ErrEmptySalt", err)
	}
}

func TestHash_Deterministic(t *testing.T) {
	t.Parallel()

	h, err := NewIPHasher("test-salt")
	if err != nil {
		t.Fatalf("NewIPHasher() error = %v", err)
	}

	if h.Hash("192.168.1.100") != h.Hash("192.168.1.100") {
		t.Error("same IP should produce same hash")
	}
}

func TestHash_Length(t *testing.T) {
	t.Parallel()

	h, err := NewIPHasher("test-salt")
	if err != nil {
		t.Fatalf("NewIPHasher() error = %v", err)
	}

	tests := []struct {
		name string
		ip   string
	}{
		{"IPv4", "192.168.1.1"},
		{"IPv6 localhost", "::1"},
		{"IPv6 full", "2001:0db8:85a3:0000:0000:8a2e:0370:7334"},
		{"empty", ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := h.Hash(tt.ip); len(got) != 16 {
				t.Errorf("Hash(%q) length = %d, want 16", tt.ip, len(got))
			}
		})
	}
}

func TestHash_SaltChangesOutput(t *testing.T) {
	t.Parallel()

	h1, _ := NewIPHasher("salt-one")
	h2, _ := NewIPHasher("salt-two")

	if h1.Hash("8.8.8.8") == h2.Hash("8.8.8.8") {
		t.Error("different salts should produce different hashes")
	}
}

func TestHash_LongSalt(t *testing.T) {
	t.Parallel()

	long := make([]byte, 200)
	for i := range long {
		long[i] = byte('a' + i%26)
	}

	h, err := NewIPHasher(string(long))
	if err != nil {
		t.Fatalf("NewIPHasher() with long salt error = %v", err)
	}
	if got := h.Hash("10.0.0.1"); len(got) != 16 {
		t.Errorf("Hash() length = %d, want 16", len(got))
	}
}
