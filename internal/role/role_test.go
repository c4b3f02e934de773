package role

import "testing"

func TestProfile_InitialRole(t *testing.T) {
	p := NewProfile()
	if p.Current() != None {
		t.Errorf("Expected initial role None, got %s", p.Current())
	}
}

func TestProfile_Select(t *testing.T) {
	p := NewProfile()

	labels, err := p.Select(Patient)
	if err != nil {
		t.Fatalf("Select(Patient) failed: %v", err)
	}
	if p.Current() != Patient {
		t.Errorf("Expected Patient, got %s", p.Current())
	}
	if labels.Output != "Provider's Language (Translation for doctor)" {
		t.Errorf("Unexpected patient output label: %q", labels.Output)
	}

	labels, err = p.Select(Provider)
	if err != nil {
		t.Fatalf("Select(Provider) failed: %v", err)
	}
	if p.Current() != Provider {
		t.Errorf("Expected Provider, got %s", p.Current())
	}
	if labels.Output != "Patient's Language (Translation for patient)" {
		t.Errorf("Unexpected provider output label: %q", labels.Output)
	}
	if labels.Input != "Your Language (What you speak)" {
		t.Errorf("Unexpected input label: %q", labels.Input)
	}
}

func TestProfile_SelectNone(t *testing.T) {
	p := NewProfile()
	p.Select(Provider)

	if _, err := p.Select(None); err == nil {
		t.Error("Expected error selecting None")
	}
	if p.Current() != Provider {
		t.Errorf("Expected role to stay Provider, got %s", p.Current())
	}
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		in      string
		want    Role
		wantErr bool
	}{
		{"patient", Patient, false},
		{" Provider ", Provider, false},
		{"doctor", None, true},
		{"", None, true},
	}

	for _, tt := range tests {
		got, err := ParseRole(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseRole(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseRole(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
