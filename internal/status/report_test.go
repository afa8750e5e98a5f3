package status

import (
	"bytes"
	"testing"
)

func TestReporterPolicies(t *testing.T) {
	failed := New(ShareManager, ShareExists)
	ok := New(ShareManager, OK)

	tests := []struct {
		name    string
		policy  Policy
		code    Code
		success string
		failure string
		want    string
	}{
		{
			name:    "detailed success",
			policy:  Detailed,
			code:    ok,
			success: "addShare successful",
			failure: "Error on addShare!",
			want:    "addShare successful\n",
		},
		{
			name:    "detailed failure",
			policy:  Detailed,
			code:    failed,
			success: "addShare successful",
			failure: "Error on addShare!",
			want:    "[SHARE_EXISTS error in component SHARE_MANAGER - error-code: 10101]\n--> Error on addShare!\n",
		},
		{
			name:   "detailed failure without message",
			policy: Detailed,
			code:   failed,
			want:   "[SHARE_EXISTS error in component SHARE_MANAGER - error-code: 10101]\n",
		},
		{
			name:    "plain success",
			policy:  Plain,
			code:    ok,
			success: "vCard verification successful...",
			failure: "Error on vCard pin verification!",
			want:    "vCard verification successful...\n",
		},
		{
			name:    "plain failure",
			policy:  Plain,
			code:    New(AddressBookManager, PINVerificationFailed),
			success: "vCard verification successful...",
			failure: "Error on vCard pin verification!",
			want:    "Error on vCard pin verification!\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			NewReporter(&buf, false).Report(tt.policy, tt.code, tt.success, tt.failure)
			if got := buf.String(); got != tt.want {
				t.Fatalf("got %q want %q", got, tt.want)
			}
		})
	}
}

func TestReporterErrorIgnoresOK(t *testing.T) {
	var buf bytes.Buffer
	NewReporter(&buf, false).Error(New(General, OK), "ignored")
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
}

func TestParsePolicy(t *testing.T) {
	tests := map[string]Policy{"": Detailed, "Detailed": Detailed, " plain ": Plain}
	for raw, want := range tests {
		got, err := ParsePolicy(raw)
		if err != nil {
			t.Fatalf("ParsePolicy(%q) error: %v", raw, err)
		}
		if got != want {
			t.Fatalf("ParsePolicy(%q) = %v want %v", raw, got, want)
		}
	}
	if _, err := ParsePolicy("loud"); err == nil {
		t.Fatalf("expected error for unknown policy")
	}
}
