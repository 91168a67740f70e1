package chat

import "testing"

func TestMaskedKey(t *testing.T) {
	cases := []struct {
		key  string
		want string
	}{
		{"", ""},
		{"ab", "**"},
		{"abcd", "****"},
		{"sk-test-123456", "********3456"},
	}
	for _, tc := range cases {
		got := Settings{APIKey: tc.key}.MaskedKey()
		if got != tc.want {
			t.Errorf("MaskedKey(%q) = %q, want %q", tc.key, got, tc.want)
		}
	}
}

func TestConfigured(t *testing.T) {
	if !(Settings{Provider: ProviderMock}).Configured() {
		t.Error("mock provider should be configured without a key")
	}
	if (Settings{Provider: ProviderOpenAI}).Configured() {
		t.Error("openai without a key should not be configured")
	}
	if !(Settings{Provider: ProviderOpenAI, APIKey: "sk-x"}).Configured() {
		t.Error("openai with a key should be configured")
	}
	if (Settings{}).Configured() {
		t.Error("empty settings should not be configured")
	}
}

func TestValidProvider(t *testing.T) {
	for _, p := range []string{ProviderOpenAI, ProviderGemini, ProviderMock} {
		if !ValidProvider(p) {
			t.Errorf("expected %q to be valid", p)
		}
	}
	if ValidProvider("anthropic") {
		t.Error("unknown provider should be invalid")
	}
}
