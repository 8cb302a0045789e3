package validation

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

const (
	validAddress = "0x1234567890123456789012345678901234567890"
	validAssetID = validAddress + ":1"
)

func validPayload() map[string]any {
	return map[string]any{
		"id":         validAssetID,
		"creator_id": validAddress,
		"media": []any{
			map[string]any{"media_id": "m1", "hash": strings.Repeat("a", 64)},
		},
	}
}

func fields(vs []Violation) []string {
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		out = append(out, v.Field)
	}
	return out
}

func TestValidateAcceptsCanonicalPayload(t *testing.T) {
	t.Parallel()

	got := ValidateRegistrationPayload(validPayload())
	if len(got) != 0 {
		t.Fatalf("expected no violations, got %v", got)
	}
}

func TestValidateAcceptsCamelCaseAliases(t *testing.T) {
	t.Parallel()

	payload := map[string]any{
		"id":        validAssetID,
		"creatorId": validAddress,
		"media": []any{
			map[string]any{"mediaId": "m1", "hash": strings.Repeat("b", 64)},
		},
	}
	if got := ValidateRegistrationPayload(payload); len(got) != 0 {
		t.Fatalf("expected no violations, got %v", got)
	}
}

func TestValidateRules(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(p map[string]any)
		want   []string
	}{
		{
			name:   "bad id",
			mutate: func(p map[string]any) { p["id"] = "not-an-address" },
			want:   []string{"id"},
		},
		{
			name:   "missing id",
			mutate: func(p map[string]any) { delete(p, "id") },
			want:   []string{"id"},
		},
		{
			name:   "non string id",
			mutate: func(p map[string]any) { p["id"] = 42.0 },
			want:   []string{"id"},
		},
		{
			name:   "id without 0x prefix",
			mutate: func(p map[string]any) { p["id"] = strings.ToUpper(validAddress[2:]) },
			want:   []string{"id"},
		},
		{
			name:   "id with 0X prefix and upper hex",
			mutate: func(p map[string]any) { p["id"] = "0X" + strings.ToUpper(validAddress[2:]) + ":9" },
			want:   []string{},
		},
		{
			name:   "id with non numeric token",
			mutate: func(p map[string]any) { p["id"] = validAddress + ":abc" },
			want:   []string{"id"},
		},
		{
			name:   "missing creator",
			mutate: func(p map[string]any) { delete(p, "creator_id") },
			want:   []string{"creator_id"},
		},
		{
			name:   "creator with token suffix",
			mutate: func(p map[string]any) { p["creator_id"] = validAssetID },
			want:   []string{"creator_id"},
		},
		{
			name: "bad media hash",
			mutate: func(p map[string]any) {
				p["media"] = []any{map[string]any{"media_id": "m1", "hash": "xyz"}}
			},
			want: []string{"media.0.hash"},
		},
		{
			name: "upper case hash is rejected",
			mutate: func(p map[string]any) {
				p["media"] = []any{map[string]any{"media_id": "m1", "hash": strings.Repeat("A", 64)}}
			},
			want: []string{"media.0.hash"},
		},
		{
			name: "missing media id",
			mutate: func(p map[string]any) {
				p["media"] = []any{map[string]any{"hash": strings.Repeat("a", 64)}}
			},
			want: []string{"media.0.media_id"},
		},
		{
			name: "second entry bad on both fields",
			mutate: func(p map[string]any) {
				p["media"] = []any{
					map[string]any{"media_id": "m1", "hash": strings.Repeat("a", 64)},
					map[string]any{"media_id": "", "hash": ""},
				}
			},
			want: []string{"media.1.media_id", "media.1.hash"},
		},
		{
			name: "non object entry",
			mutate: func(p map[string]any) {
				p["media"] = []any{"oops"}
			},
			want: []string{"media.0.media_id", "media.0.hash"},
		},
		{
			name:   "media is a string",
			mutate: func(p map[string]any) { p["media"] = "oops" },
			want:   []string{"media"},
		},
		{
			name:   "media missing",
			mutate: func(p map[string]any) { delete(p, "media") },
			want:   []string{"media"},
		},
		{
			name:   "empty media accepted",
			mutate: func(p map[string]any) { p["media"] = []any{} },
			want:   []string{},
		},
		{
			name: "everything wrong keeps rule order",
			mutate: func(p map[string]any) {
				p["id"] = "x"
				p["creator_id"] = "y"
				p["media"] = map[string]any{"0": "z"}
			},
			want: []string{"id", "creator_id", "media"},
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			p := validPayload()
			tc.mutate(p)
			got := fields(ValidateRegistrationPayload(p))
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("violations: got=%v want=%v", got, tc.want)
			}
		})
	}
}

func TestValidateShortCircuitsOnNonArrayMedia(t *testing.T) {
	t.Parallel()

	p := validPayload()
	p["media"] = "oops"
	got := ValidateRegistrationPayload(p)
	if len(got) != 1 {
		t.Fatalf("expected exactly one violation, got %v", got)
	}
	if got[0].Field != "media" || got[0].Message != MsgShouldBeArray {
		t.Fatalf("unexpected violation: %+v", got[0])
	}
}

func TestValidateMessages(t *testing.T) {
	t.Parallel()

	p := validPayload()
	p["media"] = []any{map[string]any{"hash": "xyz"}}
	got := ValidateRegistrationPayload(p)
	want := []Violation{
		{Field: "media.0.media_id", Message: "Field required"},
		{Field: "media.0.hash", Message: "Should match pattern ^[a-f0-9]{64}$", ObservedValue: "xyz"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got=%+v want=%+v", got, want)
	}
}

func TestValidateDoesNotMutate(t *testing.T) {
	t.Parallel()

	p := validPayload()
	p["id"] = "0xABC"
	before, _ := json.Marshal(p)
	_ = ValidateRegistrationPayload(p)
	after, _ := json.Marshal(p)
	if string(before) != string(after) {
		t.Fatalf("payload mutated: before=%s after=%s", before, after)
	}
}

func TestValidateNilPayload(t *testing.T) {
	t.Parallel()

	got := fields(ValidateRegistrationPayload(nil))
	want := []string{"id", "creator_id", "media"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got=%v want=%v", got, want)
	}
}

func TestValidateFromJSONBody(t *testing.T) {
	t.Parallel()

	body := `{"id":"` + validAssetID + `","creator_id":"` + validAddress + `","media":[{"media_id":"m1","hash":"` + strings.Repeat("c", 64) + `"}],"metadata":{"title":"x"}}`
	var p map[string]any
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got := ValidateRegistrationPayload(p); len(got) != 0 {
		t.Fatalf("expected no violations, got %v", got)
	}
}
