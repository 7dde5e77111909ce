package providers

import "testing"

func TestParseProviderList(t *testing.T) {
	refs := ParseProviderList("mock|openai:key1|openai:key2")
	if len(refs) != 3 {
		t.Fatalf("expected 3 providers got %d", len(refs))
	}
	if refs[1].Name != "openai" || refs[1].KeyAlias != "key1" {
		t.Fatalf("unexpected parse result: %+v", refs[1])
	}
}

func TestParseProviderListNormalises(t *testing.T) {
	refs := ParseProviderList(" Gemini | gemini |ollama:qwen2.5:7b||")
	if len(refs) != 2 {
		t.Fatalf("expected duplicates and blanks dropped, got %+v", refs)
	}
	if refs[0].Name != "gemini" {
		t.Fatalf("expected lowercased name, got %q", refs[0].Name)
	}
	if refs[1].KeyAlias != "qwen2.5:7b" {
		t.Fatalf("alias should keep everything after the first colon, got %q", refs[1].KeyAlias)
	}
}

func TestParseProviderListEmptyDefaultsToMock(t *testing.T) {
	refs := ParseProviderList("")
	if len(refs) != 1 || refs[0].Name != "mock" {
		t.Fatalf("expected mock default, got %+v", refs)
	}
}
