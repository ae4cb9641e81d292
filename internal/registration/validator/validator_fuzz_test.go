//go:build go1.18

package validator

import (
	"testing"

	"regdesk/internal/registration/models"
)

// FuzzValidateField checks that every known field returns a verdict for any
// input, and that the message is present exactly when the value is rejected.
func FuzzValidateField(f *testing.F) {
	f.Add("")
	f.Add("   ")
	f.Add("a@b.co")
	f.Add("123-456-7890")
	f.Add("((()))---+")
	f.Add(string([]byte{0xff, 0xfe, 0x00}))
	f.Add("Ada Lovelace")

	f.Fuzz(func(t *testing.T, input string) {
		for _, id := range models.FieldOrder {
			res, err := ValidateField(id, input)
			if err != nil {
				t.Fatalf("known field %s returned error: %v", id, err)
			}
			if res.Valid != (res.Message == "") {
				t.Errorf("%s: valid=%v with message %q", id, res.Valid, res.Message)
			}
			if res.Valid && res.Kind != "" {
				t.Errorf("%s: valid result carries kind %q", id, res.Kind)
			}
			if blank := models.TrimValue(input) == ""; blank != (res.Kind == models.KindFieldRequired) {
				t.Errorf("%s: blank=%v but kind %q", id, blank, res.Kind)
			}
		}
	})
}
