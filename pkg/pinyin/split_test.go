package pinyin

import (
	"slices"
	"strings"
	"testing"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty", "", nil},
		{"single syllable", "hao", []string{"hao"}},
		{"two syllables", "nihao", []string{"ni", "hao"}},
		{"longest wins", "xian", []string{"xian"}},
		{"greedy misreading", "fangan", []string{"fang", "an"}},
		{"six letters", "zhuangshuang", []string{"zhuang", "shuang"}},
		{"sentence", "woaizhongguo", []string{"wo", "ai", "zhong", "guo"}},
		{"v for u umlaut", "lvse", []string{"lv", "se"}},
		{"unknown letters", "vvv", []string{"v", "v", "v"}},
		{"digits and spaces", "ni hao1", []string{"ni", " ", "hao", "1"}},
		{"uppercase is not folded", "NIhao", []string{"N", "I", "hao"}},
		{"multibyte fallback", "你hao", []string{"你", "hao"}},
		{"umlaut is raw", "nü", []string{"n", "ü"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Split(tt.input)
			if !slices.Equal(got, tt.want) {
				t.Errorf("Split(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSplitCoversInput(t *testing.T) {
	inputs := []string{
		"",
		"a",
		"zhongguorenmin",
		"qwrtpsdfghjklzxcvbnm",
		"ni😀hao",
		"\xffxian\xfe",
		"ngnmngm",
		"chuangchuangchuang",
	}

	for _, in := range inputs {
		segs := Split(in)
		if joined := strings.Join(segs, ""); joined != in {
			t.Errorf("Split(%q) joined back to %q", in, joined)
		}
		for _, s := range segs {
			if s == "" {
				t.Errorf("Split(%q) produced an empty segment", in)
			}
			if !IsSyllable(s) && len([]rune(s)) != 1 {
				t.Errorf("Split(%q) produced %q, neither a syllable nor one rune", in, s)
			}
		}
	}
}

func TestInventory(t *testing.T) {
	for _, s := range []string{"a", "m", "ng", "zhuang", "nue", "lv"} {
		if !IsSyllable(s) {
			t.Errorf("IsSyllable(%q) = false", s)
		}
	}
	for _, s := range []string{"", "v", "Ni", "nü", "zhuangx", "xi'an"} {
		if IsSyllable(s) {
			t.Errorf("IsSyllable(%q) = true", s)
		}
	}

	all := Syllables()
	if len(all) != Count() {
		t.Fatalf("Syllables() returned %d, Count() is %d", len(all), Count())
	}
	if !slices.IsSorted(all) {
		t.Error("Syllables() is not sorted")
	}
	for _, s := range all {
		if n := len(s); n < 1 || n > MaxSyllableLen {
			t.Errorf("syllable %q has length %d", s, n)
		}
		if strings.ToLower(s) != s {
			t.Errorf("syllable %q is not lowercase", s)
		}
	}

	all[0] = "mutated"
	if Syllables()[0] == "mutated" {
		t.Error("Syllables() exposed the inventory")
	}
}
