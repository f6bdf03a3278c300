package domain

import "testing"

func TestNormalizePhone(t *testing.T) {
	cases := map[string]string{
		" +7 999 123 45 67 ": "+79991234567",
		"+79991234567":       "+79991234567",
		"8 999 1234567":      "89991234567",
	}
	for in, want := range cases {
		if got := NormalizePhone(in); got != want {
			t.Errorf("NormalizePhone(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFullName(t *testing.T) {
	p := Participant{FirstName: "Иван", LastName: "Петров"}
	if got := p.FullName(); got != "Иван Петров" {
		t.Fatalf("unexpected full name: %q", got)
	}
}

func TestDuplicateError(t *testing.T) {
	err := &DuplicateError{Field: DuplicatePhone}
	if err.Error() != "participant already exists: duplicate phone" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}
