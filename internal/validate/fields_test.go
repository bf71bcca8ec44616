package validate

import "testing"

func TestFieldErrors(t *testing.T) {
	t.Run("empty set has no errors", func(t *testing.T) {
		errs := FieldErrors{}
		if errs.Any() {
			t.Error("expected no errors")
		}
	})

	t.Run("accumulates messages per field", func(t *testing.T) {
		errs := FieldErrors{}
		errs.Add("quantity", "must be at least 1")
		errs.Add("quantity", "must be an integer")
		errs.Add("customer_email", "must be a valid email address")

		if !errs.Any() {
			t.Fatal("expected errors")
		}
		if len(errs["quantity"]) != 2 {
			t.Errorf("expected 2 quantity messages, got %d", len(errs["quantity"]))
		}
		if errs.Error() == "" {
			t.Error("expected non-empty error string")
		}
	})
}

func TestEmail(t *testing.T) {
	valid := []string{"jane@example.com", "a.b+tag@sub.example.org"}
	for _, s := range valid {
		if !Email(s) {
			t.Errorf("expected %q to be valid", s)
		}
	}

	invalid := []string{"", "not-an-email", "Jane Doe <jane@example.com>", "@example.com"}
	for _, s := range invalid {
		if Email(s) {
			t.Errorf("expected %q to be invalid", s)
		}
	}
}

func TestPhone(t *testing.T) {
	valid := []string{"5551234567", "+1 (555) 123-4567", "555 123 4567"}
	for _, s := range valid {
		if !Phone(s) {
			t.Errorf("expected %q to be valid", s)
		}
	}

	invalid := []string{"", "555-1234", "call me maybe", "+1 (555) 123-4567 ext 99887"}
	for _, s := range invalid {
		if Phone(s) {
			t.Errorf("expected %q to be invalid", s)
		}
	}
}
