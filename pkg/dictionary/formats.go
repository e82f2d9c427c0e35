package dictionary

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// ErrUnknownFormat is returned for files whose extension maps to no reader.
var ErrUnknownFormat = errors.New("unknown dictionary format")

// FileFormat represents the dictionary file formats the loader can read
type FileFormat int

const (
	FormatUnknown FileFormat = iota
	FormatJSON               // key -> string | [string | {char, en}]
	FormatTSV                // key<TAB>text[<TAB>desc] lines
	FormatMsgpack            // packed []Entry
)

// FormatInfo contains metadata about a dictionary file format
type FormatInfo struct {
	Format      FileFormat
	Description string
	Extensions  []string
	MinSize     int64
}

var supportedFormats = map[FileFormat]FormatInfo{
	FormatJSON: {
		Format:      FormatJSON,
		Description: "JSON Dictionary",
		Extensions:  []string{".json"},
		MinSize:     2, // {}
	},
	FormatTSV: {
		Format:      FormatTSV,
		Description: "Tab Separated Dictionary",
		Extensions:  []string{".tsv", ".txt"},
		MinSize:     0,
	},
	FormatMsgpack: {
		Format:      FormatMsgpack,
		Description: "Packed Dictionary",
		Extensions:  []string{".msgpack", ".mpk"},
		MinSize:     1, // array header
	},
}

func (f FileFormat) String() string {
	if info, ok := supportedFormats[f]; ok {
		return info.Description
	}
	return "unknown"
}

// DetectFormat maps a file name to its format by extension.
func DetectFormat(filename string) (FileFormat, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	for format, info := range supportedFormats {
		if slices.Contains(info.Extensions, ext) {
			return format, nil
		}
	}
	return FormatUnknown, fmt.Errorf("%s: %w", filename, ErrUnknownFormat)
}

// ValidateFile checks that filename exists, has a known extension and is
// large enough for its format.
func ValidateFile(filename string) (FileFormat, error) {
	format, err := DetectFormat(filename)
	if err != nil {
		return FormatUnknown, err
	}

	fileInfo, err := os.Stat(filename)
	if err != nil {
		return format, fmt.Errorf("failed to stat file %s: %w", filename, err)
	}
	if fileInfo.IsDir() {
		return format, fmt.Errorf("%s is a directory", filename)
	}

	info := supportedFormats[format]
	if fileInfo.Size() < info.MinSize {
		return format, fmt.Errorf("file %s is too small (%d bytes) for format %s (minimum: %d bytes)",
			filename, fileInfo.Size(), info.Description, info.MinSize)
	}
	return format, nil
}

// ListSupportedFormats returns all supported formats, ordered by format.
func ListSupportedFormats() []FormatInfo {
	formats := make([]FormatInfo, 0, len(supportedFormats))
	for _, info := range supportedFormats {
		formats = append(formats, info)
	}
	slices.SortFunc(formats, func(a, b FormatInfo) int { return int(a.Format) - int(b.Format) })
	return formats
}

// ReadFile validates filename and reads its entries in file order. Keys are
// returned as written; normalization is left to the loader.
func ReadFile(filename string) ([]Entry, error) {
	format, err := ValidateFile(filename)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open dictionary %s: %w", filename, err)
	}
	defer file.Close()

	entries, err := Read(bufio.NewReader(file), format)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	log.Debugf("Read %d entries from %s (%s)", len(entries), filename, format)
	return entries, nil
}

// Read decodes entries of the given format from r.
func Read(r io.Reader, format FileFormat) ([]Entry, error) {
	switch format {
	case FormatJSON:
		return readJSON(r)
	case FormatTSV:
		return readTSV(r)
	case FormatMsgpack:
		return readMsgpack(r)
	}
	return nil, ErrUnknownFormat
}

// WriteMsgpack packs entries into the msgpack dictionary format.
func WriteMsgpack(w io.Writer, entries []Entry) error {
	enc := msgpack.NewEncoder(w)
	enc.UseCompactInts(true)
	return enc.Encode(entries)
}

// readJSON streams the top-level object so entries keep the key order of the
// file.
func readJSON(r io.Reader) ([]Entry, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected a JSON object, got %v", tok)
	}

	var entries []Entry
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected key token %v", tok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("key %q: %w", key, err)
		}
		items, err := decodeJSONValue(raw)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", key, err)
		}
		for _, it := range items {
			entries = append(entries, Entry{Key: key, Text: it.Text, Desc: it.Desc})
		}
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return entries, nil
}

// decodeJSONValue turns one dictionary value into entries. A value is a
// string, an object with "char" or "text" and an optional "en", or a list of
// those. Anything else yields an entry without text, which the loader skips.
func decodeJSONValue(raw json.RawMessage) ([]Entry, error) {
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, err
	}
	items, ok := value.([]any)
	if !ok {
		items = []any{value}
	}

	out := make([]Entry, 0, len(items))
	for _, item := range items {
		out = append(out, jsonEntry(item))
	}
	return out, nil
}

func jsonEntry(item any) Entry {
	switch v := item.(type) {
	case string:
		return Entry{Text: v}
	case map[string]any:
		text, _ := v["char"].(string)
		if text == "" {
			text, _ = v["text"].(string)
		}
		var desc string
		switch en := v["en"].(type) {
		case nil:
		case string:
			desc = en
		default:
			desc = fmt.Sprint(en)
		}
		return Entry{Text: text, Desc: desc}
	default:
		log.Debugf("Skipping dictionary item %v", item)
		return Entry{}
	}
}

func readTSV(r io.Reader) ([]Entry, error) {
	var entries []Entry
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			log.Warnf("Skipping malformed line %d: %q", lineNum, line)
			continue
		}
		e := Entry{Key: fields[0], Text: fields[1]}
		if len(fields) > 2 {
			e.Desc = fields[2]
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func readMsgpack(r io.Reader) ([]Entry, error) {
	var entries []Entry
	if err := msgpack.NewDecoder(r).Decode(&entries); err != nil {
		return nil, err
	}
	return entries, nil
}
