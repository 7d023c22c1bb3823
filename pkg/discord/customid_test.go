package discord

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestCustomIDRoundTrip(t *testing.T) {
	ids := []CustomID{
		NewCustomID(ScopeButton, "dismiss", "123456789", "987654321"),
		NewCustomID(ScopeModal, "editDescription", "42"),
		NewCustomID(ScopeCollector, "page", "next"),
		NewCustomID(ScopeInstance, "session", "abc", "1", "2", "3"),
	}

	for _, id := range ids {
		encoded, err := id.Encode()
		if err != nil {
			t.Fatalf("Encode(%v) returned error: %v", id, err)
		}

		decoded, err := DecodeCustomID(encoded)
		if err != nil {
			t.Fatalf("DecodeCustomID(%q) returned error: %v", encoded, err)
		}

		if !reflect.DeepEqual(normalize(id), normalize(decoded)) {
			t.Errorf("round trip of %v = %v", id, decoded)
		}
	}
}

// normalize maps nil and empty tertiary slices to the same value; the wire
// format cannot tell them apart and neither should comparisons.
func normalize(id CustomID) CustomID {
	if len(id.Tertiary) == 0 {
		id.Tertiary = nil
	}
	return id
}

func TestEncodeRejectsDelimiter(t *testing.T) {
	ids := []CustomID{
		NewCustomID(ScopeButton, "dis:miss", "123"),
		NewCustomID(ScopeButton, "dismiss", "1:23"),
		NewCustomID(ScopeButton, "dismiss", "123", "a:b"),
	}

	for _, id := range ids {
		if _, err := id.Encode(); !errors.Is(err, ErrInvalidCustomID) {
			t.Errorf("Encode(%v) error = %v, want ErrInvalidCustomID", id, err)
		}
	}
}

func TestEncodeRejectsOverlongID(t *testing.T) {
	id := NewCustomID(ScopeButton, "dismiss", strings.Repeat("x", maxCustomIDLength))

	if _, err := id.Encode(); !errors.Is(err, ErrInvalidCustomID) {
		t.Errorf("Encode() error = %v, want ErrInvalidCustomID", err)
	}
}

func TestDecodeRejectsShortIDs(t *testing.T) {
	raws := []string{"", "button", "button:dismiss", "somethingelse"}

	for _, raw := range raws {
		if _, err := DecodeCustomID(raw); !errors.Is(err, ErrInvalidCustomID) {
			t.Errorf("DecodeCustomID(%q) error = %v, want ErrInvalidCustomID", raw, err)
		}
	}
}

func TestDecodeKeepsExtraSegments(t *testing.T) {
	id, err := DecodeCustomID("button:dismiss:chan:user:extra")
	if err != nil {
		t.Fatalf("DecodeCustomID returned error: %v", err)
	}

	if id.Scope != ScopeButton {
		t.Errorf("Scope = %v, want %v", id.Scope, ScopeButton)
	}
	if id.Primary != "dismiss" {
		t.Errorf("Primary = %v, want %v", id.Primary, "dismiss")
	}
	if id.Secondary != "chan" {
		t.Errorf("Secondary = %v, want %v", id.Secondary, "chan")
	}
	if len(id.Tertiary) != 2 || id.Tertiary[0] != "user" || id.Tertiary[1] != "extra" {
		t.Errorf("Tertiary = %v, want [user extra]", id.Tertiary)
	}
}

func TestMustEncodePanicsOnInvalid(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustEncode should panic on delimiter-bearing fields")
		}
	}()

	NewCustomID(ScopeButton, "bad:name", "123").MustEncode()
}
