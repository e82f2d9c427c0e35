package dictionary

import (
	"cmp"
	"slices"
)

// Source is one dictionary in the catalog. Every entry read from it is
// inserted with the source's Priority.
type Source struct {
	Name     string `toml:"name"`
	Path     string `toml:"path"`
	Enabled  bool   `toml:"enabled"`
	Priority int    `toml:"priority"`
	Tag      string `toml:"tag"`
	// Punctuation sources keep their keys verbatim instead of folding them.
	Punctuation bool `toml:"punctuation"`
}

// DefaultSources is the built-in catalog, relative to the dictionary dir.
func DefaultSources() []Source {
	return []Source{
		{Name: "一级字", Path: "chinese/first_dict/dict.json", Enabled: true, Priority: 100, Tag: "chinese"},
		{Name: "词组词典", Path: "chinese/first_dict/dict_cizu.json", Enabled: true, Priority: 90, Tag: "chinese"},
		{Name: "二级字", Path: "chinese/second_dict/level-2_char_en.json", Enabled: true, Priority: 80, Tag: "chinese"},
		{Name: "生僻字", Path: "chinese/third_dict/level-3_char_en.json", Enabled: false, Priority: 70, Tag: "chinese"},
		{Name: "三字词语", Path: "chinese/second_dict/three_character_word.json", Enabled: true, Priority: 60, Tag: "chinese"},
		{Name: "四字词语", Path: "chinese/second_dict/four_character_word.json", Enabled: true, Priority: 50, Tag: "chinese"},
		{Name: "标点符号", Path: "chinese/punctuation.json", Enabled: true, Priority: 40, Tag: "chinese", Punctuation: true},
		{Name: "N5", Path: "japanese/N5.json", Priority: 10, Tag: "japanese"},
		{Name: "N4", Path: "japanese/N4.json", Priority: 10, Tag: "japanese"},
		{Name: "N3", Path: "japanese/N3.json", Priority: 10, Tag: "japanese"},
		{Name: "N2", Path: "japanese/N2.json", Priority: 10, Tag: "japanese"},
		{Name: "N1", Path: "japanese/N1.json", Priority: 10, Tag: "japanese"},
		{Name: "kana", Path: "japanese/kana.json", Priority: 10, Tag: "japanese"},
	}
}

// Enabled returns the enabled sources ordered by descending priority. Equal
// priorities keep catalog order.
func Enabled(sources []Source) []Source {
	var out []Source
	for _, s := range sources {
		if s.Enabled {
			out = append(out, s)
		}
	}
	slices.SortStableFunc(out, func(a, b Source) int {
		return cmp.Compare(b.Priority, a.Priority)
	})
	return out
}

// ByTag returns the sources carrying tag, in catalog order.
func ByTag(sources []Source, tag string) []Source {
	var out []Source
	for _, s := range sources {
		if s.Tag == tag {
			out = append(out, s)
		}
	}
	return out
}
